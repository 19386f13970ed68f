package application

import (
	pkgDomain "github.com/mateusmacedo/go-reservas/pkg/domain"
)

type query[T any] struct {
	name string
	data T
}

func (q query[T]) QueryName() string {
	return q.name
}

func (q query[T]) Payload() T {
	return q.data
}

// NewQuery cria uma consulta com nome e dados.
func NewQuery[T any](name string, data T) pkgDomain.Query[T] {
	return query[T]{name: name, data: data}
}

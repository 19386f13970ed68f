package application

import (
	pkgDomain "github.com/mateusmacedo/go-reservas/pkg/domain"
)

// command é a implementação comum dos comandos das fatias; o nome decide o manipulador.
type command[T any] struct {
	name string
	data T
}

func (c command[T]) CommandName() string {
	return c.name
}

func (c command[T]) Payload() T {
	return c.data
}

// NewCommand cria um comando com nome e dados.
func NewCommand[T any](name string, data T) pkgDomain.Command[T] {
	return command[T]{name: name, data: data}
}

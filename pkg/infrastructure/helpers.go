package infrastructure

import (
	"github.com/google/uuid"

	"github.com/mateusmacedo/go-reservas/pkg/domain"
)

func GenerateUUID() string {
	return uuid.New().String()
}

// NewUUIDGenerator devolve o gerador de IDs usado pelas entidades persistidas.
func NewUUIDGenerator() domain.IDGenerator[string] {
	return GenerateUUID
}

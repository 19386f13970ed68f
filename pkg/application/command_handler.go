package application

import (
	"context"

	"github.com/mateusmacedo/go-reservas/pkg/domain"
)

// CommandHandler executa um comando. Comandos não devolvem dados; quem precisa do
// resultado consulta o estado pelo QueryBus depois do Dispatch.
type CommandHandler[C domain.Command[T], T any] interface {
	Handle(ctx context.Context, command C) error
}

// CommandBus encaminha comandos para o manipulador registrado pelo nome.
type CommandBus[C domain.Command[T], T any] interface {
	RegisterHandler(commandName string, handler CommandHandler[C, T])
	Dispatch(ctx context.Context, command C) error
}

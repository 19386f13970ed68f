package application

import (
	"github.com/mateusmacedo/go-reservas/internal/application"
	"github.com/mateusmacedo/go-reservas/internal/authz"
	"github.com/mateusmacedo/go-reservas/internal/domain"
	pkgApp "github.com/mateusmacedo/go-reservas/pkg/application"
	pkgDomain "github.com/mateusmacedo/go-reservas/pkg/domain"
)

const (
	CreateTripCommandName = "CreateTrip"
	UpdateTripCommandName = "UpdateTrip"
	DeleteTripCommandName = "DeleteTrip"
)

// TripFields são os campos informados; nil significa "não alterar" na atualização.
type TripFields struct {
	Destination   *string
	DepartureDate *domain.Date
	ReturnDate    *domain.Date
	Price         *float64
}

// TripCommandData serve aos três comandos. Na criação TripID já vem gerado.
type TripCommandData struct {
	Actor  authz.Actor
	TripID string
	Fields TripFields
}

type TripCommand = pkgDomain.Command[TripCommandData]

type CommandBus = pkgApp.CommandBus[TripCommand, TripCommandData]

func NewCreateTripCommand(data TripCommandData) TripCommand {
	return application.NewCommand(CreateTripCommandName, data)
}

func NewUpdateTripCommand(data TripCommandData) TripCommand {
	return application.NewCommand(UpdateTripCommandName, data)
}

func NewDeleteTripCommand(data TripCommandData) TripCommand {
	return application.NewCommand(DeleteTripCommandName, data)
}

package application

import (
	"github.com/mateusmacedo/go-reservas/internal/application"
	"github.com/mateusmacedo/go-reservas/internal/authz"
	pkgApp "github.com/mateusmacedo/go-reservas/pkg/application"
	pkgDomain "github.com/mateusmacedo/go-reservas/pkg/domain"
)

const (
	CreateReservationCommandName = "CreateReservation"
	UpdateReservationCommandName = "UpdateReservation"
	DeleteReservationCommandName = "DeleteReservation"

	// variantes das rotas /reservas/admin
	AdminCreateReservationCommandName = "AdminCreateReservation"
	AdminUpdateReservationCommandName = "AdminUpdateReservation"
	AdminDeleteReservationCommandName = "AdminDeleteReservation"
)

// ReservationFields são os campos informados; nil significa "não alterar".
// UserID só é considerado para administradores.
type ReservationFields struct {
	TripID *string
	Seats  *int
	UserID *string
}

type ReservationCommandData struct {
	Actor         authz.Actor
	ReservationID string
	Fields        ReservationFields
}

type ReservationCommand = pkgDomain.Command[ReservationCommandData]

type CommandBus = pkgApp.CommandBus[ReservationCommand, ReservationCommandData]

func NewCreateReservationCommand(data ReservationCommandData) ReservationCommand {
	return application.NewCommand(CreateReservationCommandName, data)
}

func NewUpdateReservationCommand(data ReservationCommandData) ReservationCommand {
	return application.NewCommand(UpdateReservationCommandName, data)
}

func NewDeleteReservationCommand(data ReservationCommandData) ReservationCommand {
	return application.NewCommand(DeleteReservationCommandName, data)
}

func NewAdminCreateReservationCommand(data ReservationCommandData) ReservationCommand {
	return application.NewCommand(AdminCreateReservationCommandName, data)
}

func NewAdminUpdateReservationCommand(data ReservationCommandData) ReservationCommand {
	return application.NewCommand(AdminUpdateReservationCommandName, data)
}

func NewAdminDeleteReservationCommand(data ReservationCommandData) ReservationCommand {
	return application.NewCommand(AdminDeleteReservationCommandName, data)
}

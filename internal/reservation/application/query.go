package application

import (
	"github.com/mateusmacedo/go-reservas/internal/application"
	"github.com/mateusmacedo/go-reservas/internal/authz"
	"github.com/mateusmacedo/go-reservas/internal/domain"
	pkgApp "github.com/mateusmacedo/go-reservas/pkg/application"
	pkgDomain "github.com/mateusmacedo/go-reservas/pkg/domain"
)

const (
	ListReservationsQueryName      = "ListReservations"
	FindReservationQueryName       = "FindReservation"
	AdminListReservationsQueryName = "AdminListReservations"
	AdminFindReservationQueryName  = "AdminFindReservation"
)

type ReservationQueryData struct {
	Actor         authz.Actor
	ReservationID string
}

type ReservationQuery = pkgDomain.Query[ReservationQueryData]

type ListQueryBus = pkgApp.QueryBus[ReservationQuery, ReservationQueryData, []domain.Reservation]

type FindQueryBus = pkgApp.QueryBus[ReservationQuery, ReservationQueryData, domain.Reservation]

func NewListReservationsQuery(data ReservationQueryData) ReservationQuery {
	return application.NewQuery(ListReservationsQueryName, data)
}

func NewFindReservationQuery(data ReservationQueryData) ReservationQuery {
	return application.NewQuery(FindReservationQueryName, data)
}

func NewAdminListReservationsQuery(data ReservationQueryData) ReservationQuery {
	return application.NewQuery(AdminListReservationsQueryName, data)
}

func NewAdminFindReservationQuery(data ReservationQueryData) ReservationQuery {
	return application.NewQuery(AdminFindReservationQueryName, data)
}

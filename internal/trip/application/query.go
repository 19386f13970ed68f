package application

import (
	"github.com/mateusmacedo/go-reservas/internal/application"
	"github.com/mateusmacedo/go-reservas/internal/authz"
	"github.com/mateusmacedo/go-reservas/internal/domain"
	pkgApp "github.com/mateusmacedo/go-reservas/pkg/application"
	pkgDomain "github.com/mateusmacedo/go-reservas/pkg/domain"
)

const (
	ListTripsQueryName = "ListTrips"
	FindTripQueryName  = "FindTrip"
)

type TripQueryData struct {
	Actor  authz.Actor
	TripID string
}

type TripQuery = pkgDomain.Query[TripQueryData]

type ListQueryBus = pkgApp.QueryBus[TripQuery, TripQueryData, []domain.Trip]

type FindQueryBus = pkgApp.QueryBus[TripQuery, TripQueryData, domain.Trip]

func NewListTripsQuery(data TripQueryData) TripQuery {
	return application.NewQuery(ListTripsQueryName, data)
}

func NewFindTripQuery(data TripQueryData) TripQuery {
	return application.NewQuery(FindTripQueryName, data)
}

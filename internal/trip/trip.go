package trip

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	internalApp "github.com/mateusmacedo/go-reservas/internal/application"
	"github.com/mateusmacedo/go-reservas/internal/domain"
	"github.com/mateusmacedo/go-reservas/internal/trip/application"
	"github.com/mateusmacedo/go-reservas/internal/trip/infrastructure"
	pkgApp "github.com/mateusmacedo/go-reservas/pkg/application"
	pkgDomain "github.com/mateusmacedo/go-reservas/pkg/domain"
	pkgInfra "github.com/mateusmacedo/go-reservas/pkg/infrastructure"
)

// TripSlice é o catálogo de viagens: barramentos, manipuladores e rotas HTTP.
type TripSlice struct {
	httpHandler *infrastructure.TripHTTPHandler
}

func NewTripSlice(
	store domain.Store,
	eventBus internalApp.EventBus,
	idGenerator pkgDomain.IDGenerator[string],
	logger pkgApp.AppLogger,
) *TripSlice {
	commandBus := pkgInfra.NewSimpleCommandBus[application.TripCommand, application.TripCommandData](logger)
	listBus := pkgInfra.NewSimpleQueryBus[application.TripQuery, application.TripQueryData, []domain.Trip](logger)
	findBus := pkgInfra.NewSimpleQueryBus[application.TripQuery, application.TripQueryData, domain.Trip](logger)

	commandBus.RegisterHandler(application.CreateTripCommandName, application.NewCreateTripHandler(store, eventBus, logger))
	commandBus.RegisterHandler(application.UpdateTripCommandName, application.NewUpdateTripHandler(store, eventBus, logger))
	commandBus.RegisterHandler(application.DeleteTripCommandName, application.NewDeleteTripHandler(store, eventBus, logger))
	listBus.RegisterHandler(application.ListTripsQueryName, application.NewListTripsHandler(store, logger))
	findBus.RegisterHandler(application.FindTripQueryName, application.NewFindTripHandler(store, logger))

	return &TripSlice{
		httpHandler: infrastructure.NewTripHTTPHandler(commandBus, listBus, findBus, idGenerator, logger),
	}
}

func (s *TripSlice) RegisterRoutes(router chi.Router, requireAdmin func(http.Handler) http.Handler) {
	s.httpHandler.RegisterRoutes(router, requireAdmin)
}

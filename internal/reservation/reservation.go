package reservation

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	internalApp "github.com/mateusmacedo/go-reservas/internal/application"
	"github.com/mateusmacedo/go-reservas/internal/domain"
	"github.com/mateusmacedo/go-reservas/internal/reservation/application"
	"github.com/mateusmacedo/go-reservas/internal/reservation/infrastructure"
	pkgApp "github.com/mateusmacedo/go-reservas/pkg/application"
	pkgDomain "github.com/mateusmacedo/go-reservas/pkg/domain"
	pkgInfra "github.com/mateusmacedo/go-reservas/pkg/infrastructure"
)

// ReservationSlice é o livro de reservas, com as rotas do utilizador e as de administração.
type ReservationSlice struct {
	httpHandler *infrastructure.ReservationHTTPHandler
}

func NewReservationSlice(
	store domain.Store,
	eventBus internalApp.EventBus,
	idGenerator pkgDomain.IDGenerator[string],
	logger pkgApp.AppLogger,
) *ReservationSlice {
	commandBus := pkgInfra.NewSimpleCommandBus[application.ReservationCommand, application.ReservationCommandData](logger)
	listBus := pkgInfra.NewSimpleQueryBus[application.ReservationQuery, application.ReservationQueryData, []domain.Reservation](logger)
	findBus := pkgInfra.NewSimpleQueryBus[application.ReservationQuery, application.ReservationQueryData, domain.Reservation](logger)

	commandBus.RegisterHandler(application.CreateReservationCommandName, application.NewCreateReservationHandler(store, eventBus, logger))
	commandBus.RegisterHandler(application.UpdateReservationCommandName, application.NewUpdateReservationHandler(store, eventBus, logger))
	commandBus.RegisterHandler(application.DeleteReservationCommandName, application.NewDeleteReservationHandler(store, eventBus, logger))
	commandBus.RegisterHandler(application.AdminCreateReservationCommandName, application.NewAdminCreateReservationHandler(store, eventBus, logger))
	commandBus.RegisterHandler(application.AdminUpdateReservationCommandName, application.NewAdminUpdateReservationHandler(store, eventBus, logger))
	commandBus.RegisterHandler(application.AdminDeleteReservationCommandName, application.NewAdminDeleteReservationHandler(store, eventBus, logger))
	listBus.RegisterHandler(application.ListReservationsQueryName, application.NewListReservationsHandler(store, logger))
	listBus.RegisterHandler(application.AdminListReservationsQueryName, application.NewAdminListReservationsHandler(store, logger))
	findBus.RegisterHandler(application.FindReservationQueryName, application.NewFindReservationHandler(store, logger))
	findBus.RegisterHandler(application.AdminFindReservationQueryName, application.NewAdminFindReservationHandler(store, logger))

	return &ReservationSlice{
		httpHandler: infrastructure.NewReservationHTTPHandler(commandBus, listBus, findBus, idGenerator, logger),
	}
}

func (s *ReservationSlice) RegisterRoutes(router chi.Router, requireAdmin func(http.Handler) http.Handler) {
	s.httpHandler.RegisterRoutes(router, requireAdmin)
}

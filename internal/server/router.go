// Package server monta a API: componentes a partir da configuração, fatias e rotas.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	internalApp "github.com/mateusmacedo/go-reservas/internal/application"
	"github.com/mateusmacedo/go-reservas/internal/auth"
	authInfra "github.com/mateusmacedo/go-reservas/internal/auth/infrastructure"
	"github.com/mateusmacedo/go-reservas/internal/domain"
	"github.com/mateusmacedo/go-reservas/internal/identity"
	"github.com/mateusmacedo/go-reservas/internal/reservation"
	"github.com/mateusmacedo/go-reservas/internal/trip"
	pkgApp "github.com/mateusmacedo/go-reservas/pkg/application"
	pkgDomain "github.com/mateusmacedo/go-reservas/pkg/domain"
	"github.com/mateusmacedo/go-reservas/pkg/infrastructure/web"
)

// Dependencies são os colaboradores compartilhados pelas fatias.
type Dependencies struct {
	Store       domain.Store
	Authority   *auth.Authority
	Hasher      auth.PasswordHasher
	EventBus    internalApp.EventBus
	IDGenerator pkgDomain.IDGenerator[string]
	Logger      pkgApp.AppLogger
}

func NewRouter(deps Dependencies) http.Handler {
	tripSlice := trip.NewTripSlice(deps.Store, deps.EventBus, deps.IDGenerator, deps.Logger)
	reservationSlice := reservation.NewReservationSlice(deps.Store, deps.EventBus, deps.IDGenerator, deps.Logger)
	identitySlice := identity.NewIdentitySlice(deps.Store, deps.Authority, deps.Hasher, deps.EventBus, deps.IDGenerator, deps.Logger)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(web.AccessLog(deps.Logger))
	router.Use(middleware.Recoverer)

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		web.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	identitySlice.RegisterPublicRoutes(router)

	requireAdmin := authInfra.RequireAdmin(deps.Logger)
	router.Group(func(private chi.Router) {
		private.Use(authInfra.Authenticate(deps.Authority, deps.Store.Users(), deps.Logger))
		identitySlice.RegisterRoutes(private, requireAdmin)
		tripSlice.RegisterRoutes(private, requireAdmin)
		reservationSlice.RegisterRoutes(private, requireAdmin)
	})

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		web.Error(w, r, deps.Logger, pkgDomain.NewNotFoundError("Recurso não encontrado."))
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		web.JSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "Método não permitido."})
	})
	return router
}

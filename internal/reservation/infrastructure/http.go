package infrastructure

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mateusmacedo/go-reservas/internal/auth"
	"github.com/mateusmacedo/go-reservas/internal/domain"
	"github.com/mateusmacedo/go-reservas/internal/reservation/application"
	pkgApp "github.com/mateusmacedo/go-reservas/pkg/application"
	pkgDomain "github.com/mateusmacedo/go-reservas/pkg/domain"
	"github.com/mateusmacedo/go-reservas/pkg/infrastructure/web"
)

const requestTimeout = 10 * time.Second

type createReservationRequest struct {
	ViagemID *string `json:"viagem_id" validate:"required"`
	Lugares  *int    `json:"lugares" validate:"required,min=1"`
}

type adminCreateReservationRequest struct {
	UserID   *string `json:"user_id" validate:"required"`
	ViagemID *string `json:"viagem_id" validate:"required"`
	Lugares  *int    `json:"lugares" validate:"required,min=1"`
}

type updateReservationRequest struct {
	ViagemID *string `json:"viagem_id"`
	Lugares  *int    `json:"lugares" validate:"omitempty,min=1"`
	UserID   *string `json:"user_id"`
}

// variant agrupa as diferenças entre as rotas do utilizador e as de /reservas/admin.
type variant struct {
	create  func(application.ReservationCommandData) application.ReservationCommand
	update  func(application.ReservationCommandData) application.ReservationCommand
	delete  func(application.ReservationCommandData) application.ReservationCommand
	list    func(application.ReservationQueryData) application.ReservationQuery
	find    func(application.ReservationQueryData) application.ReservationQuery
	created string
	updated string
	deleted string
}

var (
	ownerVariant = variant{
		create:  application.NewCreateReservationCommand,
		update:  application.NewUpdateReservationCommand,
		delete:  application.NewDeleteReservationCommand,
		list:    application.NewListReservationsQuery,
		find:    application.NewFindReservationQuery,
		created: "Reserva criada com sucesso!",
		updated: "Reserva atualizada com sucesso!",
		deleted: "Reserva eliminada com sucesso.",
	}
	adminVariant = variant{
		create:  application.NewAdminCreateReservationCommand,
		update:  application.NewAdminUpdateReservationCommand,
		delete:  application.NewAdminDeleteReservationCommand,
		list:    application.NewAdminListReservationsQuery,
		find:    application.NewAdminFindReservationQuery,
		created: "Reserva criada com sucesso pelo administrador!",
		updated: "Reserva atualizada com sucesso pelo administrador!",
		deleted: "Reserva eliminada com sucesso pelo administrador.",
	}
)

type ReservationHTTPHandler struct {
	commandBus  application.CommandBus
	listBus     application.ListQueryBus
	findBus     application.FindQueryBus
	idGenerator pkgDomain.IDGenerator[string]
	logger      pkgApp.AppLogger
}

func NewReservationHTTPHandler(
	commandBus application.CommandBus,
	listBus application.ListQueryBus,
	findBus application.FindQueryBus,
	idGenerator pkgDomain.IDGenerator[string],
	logger pkgApp.AppLogger,
) *ReservationHTTPHandler {
	return &ReservationHTTPHandler{
		commandBus:  commandBus,
		listBus:     listBus,
		findBus:     findBus,
		idGenerator: idGenerator,
		logger:      logger,
	}
}

// HandleList devolve {"reservas": [...]}, com o escopo decidido pelo papel do ator.
func (h *ReservationHTTPHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	reservations, ok := h.list(w, r, ownerVariant)
	if !ok {
		return
	}
	web.JSON(w, http.StatusOK, map[string]interface{}{"reservas": reservations})
}

func (h *ReservationHTTPHandler) HandleAdminList(w http.ResponseWriter, r *http.Request) {
	reservations, ok := h.list(w, r, adminVariant)
	if !ok {
		return
	}
	web.JSON(w, http.StatusOK, reservations)
}

func (h *ReservationHTTPHandler) HandleShow(w http.ResponseWriter, r *http.Request) {
	h.show(w, r, ownerVariant)
}

func (h *ReservationHTTPHandler) HandleAdminShow(w http.ResponseWriter, r *http.Request) {
	h.show(w, r, adminVariant)
}

func (h *ReservationHTTPHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createReservationRequest
	if err := web.Bind(r, &req); err != nil {
		web.Error(w, r, h.logger, err)
		return
	}
	h.create(w, r, ownerVariant, application.ReservationFields{
		TripID: req.ViagemID,
		Seats:  req.Lugares,
	})
}

func (h *ReservationHTTPHandler) HandleAdminCreate(w http.ResponseWriter, r *http.Request) {
	var req adminCreateReservationRequest
	if err := web.Bind(r, &req); err != nil {
		web.Error(w, r, h.logger, err)
		return
	}
	h.create(w, r, adminVariant, application.ReservationFields{
		TripID: req.ViagemID,
		Seats:  req.Lugares,
		UserID: req.UserID,
	})
}

func (h *ReservationHTTPHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, ownerVariant)
}

func (h *ReservationHTTPHandler) HandleAdminUpdate(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, adminVariant)
}

func (h *ReservationHTTPHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	h.delete(w, r, ownerVariant)
}

func (h *ReservationHTTPHandler) HandleAdminDelete(w http.ResponseWriter, r *http.Request) {
	h.delete(w, r, adminVariant)
}

// RegisterRoutes registra as rotas de reservas. As rotas /reservas/admin passam por
// requireAdmin e são registradas antes de /reservas/{id}.
func (h *ReservationHTTPHandler) RegisterRoutes(router chi.Router, requireAdmin func(http.Handler) http.Handler) {
	router.Group(func(admin chi.Router) {
		admin.Use(requireAdmin)
		admin.Get("/reservas/admin", h.HandleAdminList)
		admin.Post("/reservas/admin", h.HandleAdminCreate)
		admin.Get("/reservas/admin/{id}", h.HandleAdminShow)
		admin.Put("/reservas/admin/{id}", h.HandleAdminUpdate)
		admin.Delete("/reservas/admin/{id}", h.HandleAdminDelete)
	})

	router.Get("/reservas", h.HandleList)
	router.Post("/reservas", h.HandleCreate)
	router.Get("/reservas/{id}", h.HandleShow)
	router.Put("/reservas/{id}", h.HandleUpdate)
	router.Delete("/reservas/{id}", h.HandleDelete)
}

func (h *ReservationHTTPHandler) list(w http.ResponseWriter, r *http.Request, v variant) ([]domain.Reservation, bool) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	reservations, err := h.listBus.Dispatch(ctx, v.list(application.ReservationQueryData{
		Actor: auth.ActorFromContext(ctx),
	}))
	if err != nil {
		web.Error(w, r, h.logger, err)
		return nil, false
	}
	return reservations, true
}

func (h *ReservationHTTPHandler) show(w http.ResponseWriter, r *http.Request, v variant) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	reservation, err := h.find(ctx, v, chi.URLParam(r, "id"))
	if err != nil {
		web.Error(w, r, h.logger, err)
		return
	}
	web.JSON(w, http.StatusOK, reservation)
}

func (h *ReservationHTTPHandler) create(w http.ResponseWriter, r *http.Request, v variant, fields application.ReservationFields) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	id := h.idGenerator()
	err := h.commandBus.Dispatch(ctx, v.create(application.ReservationCommandData{
		Actor:         auth.ActorFromContext(ctx),
		ReservationID: id,
		Fields:        fields,
	}))
	if err != nil {
		web.Error(w, r, h.logger, err)
		return
	}

	reservation, err := h.find(ctx, v, id)
	if err != nil {
		web.Error(w, r, h.logger, err)
		return
	}
	web.JSON(w, http.StatusCreated, map[string]interface{}{
		"message": v.created,
		"reserva": reservation,
	})
}

func (h *ReservationHTTPHandler) update(w http.ResponseWriter, r *http.Request, v variant) {
	var req updateReservationRequest
	if err := web.Bind(r, &req); err != nil {
		web.Error(w, r, h.logger, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	id := chi.URLParam(r, "id")
	err := h.commandBus.Dispatch(ctx, v.update(application.ReservationCommandData{
		Actor:         auth.ActorFromContext(ctx),
		ReservationID: id,
		Fields: application.ReservationFields{
			TripID: req.ViagemID,
			Seats:  req.Lugares,
			UserID: req.UserID,
		},
	}))
	if err != nil {
		web.Error(w, r, h.logger, err)
		return
	}

	reservation, err := h.find(ctx, v, id)
	if err != nil {
		web.Error(w, r, h.logger, err)
		return
	}
	web.JSON(w, http.StatusOK, map[string]interface{}{
		"message": v.updated,
		"reserva": reservation,
	})
}

func (h *ReservationHTTPHandler) delete(w http.ResponseWriter, r *http.Request, v variant) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	err := h.commandBus.Dispatch(ctx, v.delete(application.ReservationCommandData{
		Actor:         auth.ActorFromContext(ctx),
		ReservationID: chi.URLParam(r, "id"),
	}))
	if err != nil {
		web.Error(w, r, h.logger, err)
		return
	}
	web.Message(w, http.StatusOK, v.deleted)
}

func (h *ReservationHTTPHandler) find(ctx context.Context, v variant, id string) (domain.Reservation, error) {
	return h.findBus.Dispatch(ctx, v.find(application.ReservationQueryData{
		Actor:         auth.ActorFromContext(ctx),
		ReservationID: id,
	}))
}

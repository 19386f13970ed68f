package infrastructure

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mateusmacedo/go-reservas/internal/auth"
	"github.com/mateusmacedo/go-reservas/internal/domain"
	"github.com/mateusmacedo/go-reservas/internal/trip/application"
	pkgApp "github.com/mateusmacedo/go-reservas/pkg/application"
	pkgDomain "github.com/mateusmacedo/go-reservas/pkg/domain"
	"github.com/mateusmacedo/go-reservas/pkg/infrastructure/web"
)

const requestTimeout = 10 * time.Second

type createTripRequest struct {
	Destino      string   `json:"destino" validate:"required,max=255"`
	DataPartida  string   `json:"data_partida" validate:"required,datetime=2006-01-02"`
	DataRegresso string   `json:"data_regresso" validate:"required,datetime=2006-01-02"`
	Preco        *float64 `json:"preco" validate:"required,min=0,max=99999999.99"`
}

type updateTripRequest struct {
	Destino      *string  `json:"destino" validate:"omitempty,max=255"`
	DataPartida  *string  `json:"data_partida" validate:"omitempty,datetime=2006-01-02"`
	DataRegresso *string  `json:"data_regresso" validate:"omitempty,datetime=2006-01-02"`
	Preco        *float64 `json:"preco" validate:"omitempty,min=0,max=99999999.99"`
}

type TripHTTPHandler struct {
	commandBus  application.CommandBus
	listBus     application.ListQueryBus
	findBus     application.FindQueryBus
	idGenerator pkgDomain.IDGenerator[string]
	logger      pkgApp.AppLogger
}

func NewTripHTTPHandler(
	commandBus application.CommandBus,
	listBus application.ListQueryBus,
	findBus application.FindQueryBus,
	idGenerator pkgDomain.IDGenerator[string],
	logger pkgApp.AppLogger,
) *TripHTTPHandler {
	return &TripHTTPHandler{
		commandBus:  commandBus,
		listBus:     listBus,
		findBus:     findBus,
		idGenerator: idGenerator,
		logger:      logger,
	}
}

func (h *TripHTTPHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	trips, err := h.listBus.Dispatch(ctx, application.NewListTripsQuery(application.TripQueryData{
		Actor: auth.ActorFromContext(ctx),
	}))
	if err != nil {
		web.Error(w, r, h.logger, err)
		return
	}
	web.JSON(w, http.StatusOK, trips)
}

func (h *TripHTTPHandler) HandleShow(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	trip, err := h.find(ctx, chi.URLParam(r, "id"))
	if err != nil {
		web.Error(w, r, h.logger, err)
		return
	}
	web.JSON(w, http.StatusOK, trip)
}

func (h *TripHTTPHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createTripRequest
	if err := web.Bind(r, &req); err != nil {
		web.Error(w, r, h.logger, err)
		return
	}

	fields, err := req.fields()
	if err != nil {
		web.Error(w, r, h.logger, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	id := h.idGenerator()
	err = h.commandBus.Dispatch(ctx, application.NewCreateTripCommand(application.TripCommandData{
		Actor:  auth.ActorFromContext(ctx),
		TripID: id,
		Fields: fields,
	}))
	if err != nil {
		web.Error(w, r, h.logger, err)
		return
	}

	trip, err := h.find(ctx, id)
	if err != nil {
		web.Error(w, r, h.logger, err)
		return
	}
	web.JSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Viagem criada com sucesso!",
		"viagem":  trip,
	})
}

func (h *TripHTTPHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req updateTripRequest
	if err := web.Bind(r, &req); err != nil {
		web.Error(w, r, h.logger, err)
		return
	}

	fields, err := req.fields()
	if err != nil {
		web.Error(w, r, h.logger, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	id := chi.URLParam(r, "id")
	err = h.commandBus.Dispatch(ctx, application.NewUpdateTripCommand(application.TripCommandData{
		Actor:  auth.ActorFromContext(ctx),
		TripID: id,
		Fields: fields,
	}))
	if err != nil {
		web.Error(w, r, h.logger, err)
		return
	}

	trip, err := h.find(ctx, id)
	if err != nil {
		web.Error(w, r, h.logger, err)
		return
	}
	web.JSON(w, http.StatusOK, map[string]interface{}{
		"message": "Viagem atualizada com sucesso.",
		"viagem":  trip,
	})
}

func (h *TripHTTPHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	err := h.commandBus.Dispatch(ctx, application.NewDeleteTripCommand(application.TripCommandData{
		Actor:  auth.ActorFromContext(ctx),
		TripID: chi.URLParam(r, "id"),
	}))
	if err != nil {
		web.Error(w, r, h.logger, err)
		return
	}
	web.Message(w, http.StatusOK, "Viagem eliminada com sucesso.")
}

// RegisterRoutes registra as rotas de viagens; as de escrita passam por requireAdmin.
func (h *TripHTTPHandler) RegisterRoutes(router chi.Router, requireAdmin func(http.Handler) http.Handler) {
	router.Get("/viagens", h.HandleList)
	router.Get("/viagens/{id}", h.HandleShow)

	router.Group(func(admin chi.Router) {
		admin.Use(requireAdmin)
		admin.Post("/viagens", h.HandleCreate)
		admin.Put("/viagens/{id}", h.HandleUpdate)
		admin.Patch("/viagens/{id}", h.HandleUpdate)
		admin.Delete("/viagens/{id}", h.HandleDelete)
	})
}

func (h *TripHTTPHandler) find(ctx context.Context, id string) (domain.Trip, error) {
	return h.findBus.Dispatch(ctx, application.NewFindTripQuery(application.TripQueryData{
		Actor:  auth.ActorFromContext(ctx),
		TripID: id,
	}))
}

func (req createTripRequest) fields() (application.TripFields, error) {
	departure, err := domain.ParseDate(req.DataPartida)
	if err != nil {
		return application.TripFields{}, pkgDomain.NewFieldError("data_partida", "O campo data partida não é uma data válida.")
	}
	ret, err := domain.ParseDate(req.DataRegresso)
	if err != nil {
		return application.TripFields{}, pkgDomain.NewFieldError("data_regresso", "O campo data regresso não é uma data válida.")
	}
	return application.TripFields{
		Destination:   &req.Destino,
		DepartureDate: &departure,
		ReturnDate:    &ret,
		Price:         req.Preco,
	}, nil
}

func (req updateTripRequest) fields() (application.TripFields, error) {
	fields := application.TripFields{
		Destination: req.Destino,
		Price:       req.Preco,
	}
	if req.DataPartida != nil {
		d, err := domain.ParseDate(*req.DataPartida)
		if err != nil {
			return fields, pkgDomain.NewFieldError("data_partida", "O campo data partida não é uma data válida.")
		}
		fields.DepartureDate = &d
	}
	if req.DataRegresso != nil {
		d, err := domain.ParseDate(*req.DataRegresso)
		if err != nil {
			return fields, pkgDomain.NewFieldError("data_regresso", "O campo data regresso não é uma data válida.")
		}
		fields.ReturnDate = &d
	}
	return fields, nil
}

package application

import (
	"context"
	"strconv"

	"github.com/mateusmacedo/go-reservas/internal/application"
	"github.com/mateusmacedo/go-reservas/internal/authz"
	"github.com/mateusmacedo/go-reservas/internal/domain"
	pkgApp "github.com/mateusmacedo/go-reservas/pkg/application"
	pkgDomain "github.com/mateusmacedo/go-reservas/pkg/domain"
)

const (
	MsgTripNotFound = "Viagem não encontrada."

	msgCreateDenied = "Acesso negado. Apenas administradores podem criar viagens."
	msgUpdateDenied = "Acesso negado. Apenas administradores podem editar viagens."
	msgDeleteDenied = "Acesso negado. Apenas administradores podem apagar viagens."
)

func tripChange(actor authz.Actor, trip domain.Trip) domain.ChangeData {
	return domain.ChangeData{
		Entity:   "viagem",
		EntityID: trip.ID,
		ActorID:  actor.ID,
		Details: map[string]string{
			"destino":       trip.Destination,
			"data_partida":  trip.DepartureDate.String(),
			"data_regresso": trip.ReturnDate.String(),
		},
	}
}

// apply copia para trip os campos informados.
func (f TripFields) apply(trip *domain.Trip) {
	if f.Destination != nil {
		trip.Destination = *f.Destination
	}
	if f.DepartureDate != nil {
		trip.DepartureDate = *f.DepartureDate
	}
	if f.ReturnDate != nil {
		trip.ReturnDate = *f.ReturnDate
	}
	if f.Price != nil {
		trip.Price = *f.Price
	}
}

type createTripHandler struct {
	store    domain.Store
	eventBus application.EventBus
	logger   pkgApp.AppLogger
}

func NewCreateTripHandler(store domain.Store, eventBus application.EventBus, logger pkgApp.AppLogger) pkgApp.CommandHandler[TripCommand, TripCommandData] {
	return &createTripHandler{store: store, eventBus: eventBus, logger: logger}
}

func (h *createTripHandler) Handle(ctx context.Context, command TripCommand) error {
	if err := application.CheckContext(ctx, h.logger); err != nil {
		return err
	}

	data := command.Payload()
	if err := application.Authorize(data.Actor, authz.TripCreate, "", msgCreateDenied); err != nil {
		return err
	}

	trip := domain.Trip{ID: data.TripID}
	data.Fields.apply(&trip)
	fields := trip.Validate()
	if data.Fields.Price == nil {
		fields = addField(fields, "preco", "O campo preco é obrigatório.")
	}
	if err := application.ValidationError(fields); err != nil {
		return err
	}

	if err := h.store.Trips().Create(ctx, trip); err != nil {
		pkgApp.LogError(ctx, h.logger, "Erro ao salvar viagem", err, map[string]interface{}{"trip_id": trip.ID})
		return pkgDomain.NewInternalError(err)
	}

	pkgApp.LogInfo(ctx, h.logger, "Viagem criada", map[string]interface{}{"trip_id": trip.ID, "actor_id": data.Actor.ID})
	application.PublishChange(ctx, h.eventBus, h.logger, domain.TripCreatedEvent, tripChange(data.Actor, trip))
	return nil
}

type updateTripHandler struct {
	store    domain.Store
	eventBus application.EventBus
	logger   pkgApp.AppLogger
}

func NewUpdateTripHandler(store domain.Store, eventBus application.EventBus, logger pkgApp.AppLogger) pkgApp.CommandHandler[TripCommand, TripCommandData] {
	return &updateTripHandler{store: store, eventBus: eventBus, logger: logger}
}

func (h *updateTripHandler) Handle(ctx context.Context, command TripCommand) error {
	if err := application.CheckContext(ctx, h.logger); err != nil {
		return err
	}

	data := command.Payload()
	if err := application.Authorize(data.Actor, authz.TripUpdate, "", msgUpdateDenied); err != nil {
		return err
	}

	trip, err := h.store.Trips().FindByID(ctx, data.TripID)
	if err != nil {
		return application.StoreError(err, MsgTripNotFound)
	}

	data.Fields.apply(&trip)
	if err := application.ValidationError(trip.Validate()); err != nil {
		return err
	}

	if err := h.store.Trips().Update(ctx, trip); err != nil {
		pkgApp.LogError(ctx, h.logger, "Erro ao atualizar viagem", err, map[string]interface{}{"trip_id": trip.ID})
		return application.StoreError(err, MsgTripNotFound)
	}

	pkgApp.LogInfo(ctx, h.logger, "Viagem atualizada", map[string]interface{}{"trip_id": trip.ID, "actor_id": data.Actor.ID})
	application.PublishChange(ctx, h.eventBus, h.logger, domain.TripUpdatedEvent, tripChange(data.Actor, trip))
	return nil
}

type deleteTripHandler struct {
	store    domain.Store
	eventBus application.EventBus
	logger   pkgApp.AppLogger
}

func NewDeleteTripHandler(store domain.Store, eventBus application.EventBus, logger pkgApp.AppLogger) pkgApp.CommandHandler[TripCommand, TripCommandData] {
	return &deleteTripHandler{store: store, eventBus: eventBus, logger: logger}
}

// Handle apaga as reservas da viagem e a viagem numa única transação.
func (h *deleteTripHandler) Handle(ctx context.Context, command TripCommand) error {
	if err := application.CheckContext(ctx, h.logger); err != nil {
		return err
	}

	data := command.Payload()
	if err := application.Authorize(data.Actor, authz.TripDelete, "", msgDeleteDenied); err != nil {
		return err
	}

	var (
		trip    domain.Trip
		removed int64
	)
	err := h.store.Transaction(ctx, func(tx domain.Store) error {
		var err error
		if trip, err = tx.Trips().FindByID(ctx, data.TripID); err != nil {
			return err
		}
		if removed, err = tx.Reservations().DeleteByTrip(ctx, trip.ID); err != nil {
			return err
		}
		return tx.Trips().Delete(ctx, trip.ID)
	})
	if err != nil {
		return application.StoreError(err, MsgTripNotFound)
	}

	pkgApp.LogInfo(ctx, h.logger, "Viagem eliminada", map[string]interface{}{
		"trip_id":              trip.ID,
		"reservations_removed": removed,
		"actor_id":             data.Actor.ID,
	})
	change := tripChange(data.Actor, trip)
	change.Details["reservas_removidas"] = strconv.FormatInt(removed, 10)
	application.PublishChange(ctx, h.eventBus, h.logger, domain.TripDeletedEvent, change)
	return nil
}

type listTripsHandler struct {
	store  domain.Store
	logger pkgApp.AppLogger
}

func NewListTripsHandler(store domain.Store, logger pkgApp.AppLogger) pkgApp.QueryHandler[TripQuery, TripQueryData, []domain.Trip] {
	return &listTripsHandler{store: store, logger: logger}
}

func (h *listTripsHandler) Handle(ctx context.Context, query TripQuery) ([]domain.Trip, error) {
	if err := application.CheckContext(ctx, h.logger); err != nil {
		return nil, err
	}
	if err := application.Authorize(query.Payload().Actor, authz.TripList, "", ""); err != nil {
		return nil, err
	}

	trips, err := h.store.Trips().List(ctx)
	if err != nil {
		pkgApp.LogError(ctx, h.logger, "Erro ao listar viagens", err, nil)
		return nil, pkgDomain.NewInternalError(err)
	}
	return trips, nil
}

type findTripHandler struct {
	store  domain.Store
	logger pkgApp.AppLogger
}

func NewFindTripHandler(store domain.Store, logger pkgApp.AppLogger) pkgApp.QueryHandler[TripQuery, TripQueryData, domain.Trip] {
	return &findTripHandler{store: store, logger: logger}
}

// Handle devolve a viagem com as reservas.
func (h *findTripHandler) Handle(ctx context.Context, query TripQuery) (domain.Trip, error) {
	if err := application.CheckContext(ctx, h.logger); err != nil {
		return domain.Trip{}, err
	}

	data := query.Payload()
	if err := application.Authorize(data.Actor, authz.TripView, "", ""); err != nil {
		return domain.Trip{}, err
	}

	trip, err := h.store.Trips().FindWithReservations(ctx, data.TripID)
	if err != nil {
		return domain.Trip{}, application.StoreError(err, MsgTripNotFound)
	}
	return trip, nil
}

func addField(fields map[string][]string, name, message string) map[string][]string {
	if fields == nil {
		fields = make(map[string][]string)
	}
	fields[name] = append(fields[name], message)
	return fields
}

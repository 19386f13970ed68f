package application

import (
	"context"
	"errors"
	"strconv"

	"github.com/mateusmacedo/go-reservas/internal/application"
	"github.com/mateusmacedo/go-reservas/internal/authz"
	"github.com/mateusmacedo/go-reservas/internal/domain"
	pkgApp "github.com/mateusmacedo/go-reservas/pkg/application"
	pkgDomain "github.com/mateusmacedo/go-reservas/pkg/domain"
)

const (
	MsgReservationNotFound = "Reserva não encontrada."

	msgNotOwner          = "Acesso negado. Esta reserva não pertence ao utilizador."
	msgAdminListDenied   = "Acesso negado. Apenas administradores podem listar todas as reservas."
	msgAdminViewDenied   = "Acesso negado. Apenas administradores podem ver detalhes de qualquer reserva."
	msgAdminCreateDenied = "Acesso negado. Apenas administradores podem criar reservas para outros utilizadores."
	msgAdminUpdateDenied = "Acesso negado. Apenas administradores podem atualizar qualquer reserva."
	msgAdminDeleteDenied = "Acesso negado. Apenas administradores podem eliminar qualquer reserva."

	msgTripRequired  = "O campo viagem id é obrigatório."
	msgTripInvalid   = "O viagem id selecionado é inválido."
	msgUserRequired  = "O campo user id é obrigatório."
	msgUserInvalid   = "O user id selecionado é inválido."
	msgSeatsRequired = "O campo lugares é obrigatório."
)

func reservationChange(actor authz.Actor, reservation domain.Reservation) domain.ChangeData {
	return domain.ChangeData{
		Entity:   "reserva",
		EntityID: reservation.ID,
		ActorID:  actor.ID,
		Details: map[string]string{
			"user_id":   reservation.UserID,
			"viagem_id": reservation.TripID,
			"lugares":   strconv.Itoa(reservation.Seats),
		},
	}
}

// checkReferences confere que a viagem e o usuário da reserva existem. As falhas são
// erros de validação nos campos viagem_id e user_id.
func checkReferences(ctx context.Context, store domain.Store, reservation domain.Reservation, checkUser bool) error {
	fields := make(map[string][]string)

	if _, err := store.Trips().FindByID(ctx, reservation.TripID); errors.Is(err, domain.ErrNotFound) {
		fields["viagem_id"] = append(fields["viagem_id"], msgTripInvalid)
	} else if err != nil {
		return pkgDomain.NewInternalError(err)
	}

	if checkUser {
		if _, err := store.Users().FindByID(ctx, reservation.UserID); errors.Is(err, domain.ErrNotFound) {
			fields["user_id"] = append(fields["user_id"], msgUserInvalid)
		} else if err != nil {
			return pkgDomain.NewInternalError(err)
		}
	}
	return application.ValidationError(fields)
}

// reservationStoreError trata a chave estrangeira rejeitada pelo banco como viagem inválida.
func reservationStoreError(err error) error {
	if errors.Is(err, domain.ErrForeignKey) {
		return pkgDomain.NewFieldError("viagem_id", msgTripInvalid)
	}
	return application.StoreError(err, MsgReservationNotFound)
}

type createReservationHandler struct {
	store    domain.Store
	eventBus application.EventBus
	logger   pkgApp.AppLogger
	admin    bool
}

// NewCreateReservationHandler cria reservas do próprio ator.
func NewCreateReservationHandler(store domain.Store, eventBus application.EventBus, logger pkgApp.AppLogger) pkgApp.CommandHandler[ReservationCommand, ReservationCommandData] {
	return &createReservationHandler{store: store, eventBus: eventBus, logger: logger}
}

// NewAdminCreateReservationHandler cria reservas para o usuário informado em user_id.
func NewAdminCreateReservationHandler(store domain.Store, eventBus application.EventBus, logger pkgApp.AppLogger) pkgApp.CommandHandler[ReservationCommand, ReservationCommandData] {
	return &createReservationHandler{store: store, eventBus: eventBus, logger: logger, admin: true}
}

func (h *createReservationHandler) Handle(ctx context.Context, command ReservationCommand) error {
	if err := application.CheckContext(ctx, h.logger); err != nil {
		return err
	}

	data := command.Payload()
	ownerID := data.Actor.ID
	if h.admin {
		if err := application.Authorize(data.Actor, authz.ReservationManage, "", msgAdminCreateDenied); err != nil {
			return err
		}
		ownerID = ""
		if data.Fields.UserID != nil {
			ownerID = *data.Fields.UserID
		}
	}
	if err := application.Authorize(data.Actor, authz.ReservationCreate, ownerID, ""); err != nil {
		return err
	}

	reservation := domain.Reservation{ID: data.ReservationID, UserID: ownerID}
	if data.Fields.TripID != nil {
		reservation.TripID = *data.Fields.TripID
	}
	if data.Fields.Seats != nil {
		reservation.Seats = *data.Fields.Seats
	}

	fields := reservation.Validate()
	if data.Fields.Seats == nil {
		fields = overrideField(fields, "lugares", msgSeatsRequired)
	}
	if reservation.TripID == "" {
		fields = overrideField(fields, "viagem_id", msgTripRequired)
	}
	if reservation.UserID == "" {
		fields = overrideField(fields, "user_id", msgUserRequired)
	}
	if err := application.ValidationError(fields); err != nil {
		return err
	}
	if err := checkReferences(ctx, h.store, reservation, h.admin); err != nil {
		return err
	}

	if err := h.store.Reservations().Create(ctx, reservation); err != nil {
		return reservationStoreError(err)
	}

	pkgApp.LogInfo(ctx, h.logger, "Reserva criada", map[string]interface{}{
		"reservation_id": reservation.ID,
		"trip_id":        reservation.TripID,
		"user_id":        reservation.UserID,
		"actor_id":       data.Actor.ID,
	})
	application.PublishChange(ctx, h.eventBus, h.logger, domain.ReservationCreatedEvent, reservationChange(data.Actor, reservation))
	return nil
}

type updateReservationHandler struct {
	store    domain.Store
	eventBus application.EventBus
	logger   pkgApp.AppLogger
	admin    bool
}

func NewUpdateReservationHandler(store domain.Store, eventBus application.EventBus, logger pkgApp.AppLogger) pkgApp.CommandHandler[ReservationCommand, ReservationCommandData] {
	return &updateReservationHandler{store: store, eventBus: eventBus, logger: logger}
}

func NewAdminUpdateReservationHandler(store domain.Store, eventBus application.EventBus, logger pkgApp.AppLogger) pkgApp.CommandHandler[ReservationCommand, ReservationCommandData] {
	return &updateReservationHandler{store: store, eventBus: eventBus, logger: logger, admin: true}
}

// Handle altera viagem e lugares. Só um administrador troca o dono da reserva;
// o user_id enviado por outro usuário é ignorado.
func (h *updateReservationHandler) Handle(ctx context.Context, command ReservationCommand) error {
	if err := application.CheckContext(ctx, h.logger); err != nil {
		return err
	}

	data := command.Payload()
	if h.admin {
		if err := application.Authorize(data.Actor, authz.ReservationManage, "", msgAdminUpdateDenied); err != nil {
			return err
		}
	}

	reservation, err := h.store.Reservations().FindByID(ctx, data.ReservationID)
	if err != nil {
		return application.StoreError(err, MsgReservationNotFound)
	}
	if err := application.Authorize(data.Actor, authz.ReservationUpdate, reservation.UserID, msgNotOwner); err != nil {
		return err
	}

	reservation.User, reservation.Trip = nil, nil
	checkUser := false
	if data.Fields.TripID != nil {
		reservation.TripID = *data.Fields.TripID
	}
	if data.Fields.Seats != nil {
		reservation.Seats = *data.Fields.Seats
	}
	if data.Fields.UserID != nil && data.Actor.IsAdmin() {
		reservation.UserID = *data.Fields.UserID
		checkUser = true
	}

	if err := application.ValidationError(reservation.Validate()); err != nil {
		return err
	}
	if err := checkReferences(ctx, h.store, reservation, checkUser); err != nil {
		return err
	}

	if err := h.store.Reservations().Update(ctx, reservation); err != nil {
		return reservationStoreError(err)
	}

	pkgApp.LogInfo(ctx, h.logger, "Reserva atualizada", map[string]interface{}{
		"reservation_id": reservation.ID,
		"actor_id":       data.Actor.ID,
	})
	application.PublishChange(ctx, h.eventBus, h.logger, domain.ReservationUpdatedEvent, reservationChange(data.Actor, reservation))
	return nil
}

type deleteReservationHandler struct {
	store    domain.Store
	eventBus application.EventBus
	logger   pkgApp.AppLogger
	admin    bool
}

func NewDeleteReservationHandler(store domain.Store, eventBus application.EventBus, logger pkgApp.AppLogger) pkgApp.CommandHandler[ReservationCommand, ReservationCommandData] {
	return &deleteReservationHandler{store: store, eventBus: eventBus, logger: logger}
}

func NewAdminDeleteReservationHandler(store domain.Store, eventBus application.EventBus, logger pkgApp.AppLogger) pkgApp.CommandHandler[ReservationCommand, ReservationCommandData] {
	return &deleteReservationHandler{store: store, eventBus: eventBus, logger: logger, admin: true}
}

func (h *deleteReservationHandler) Handle(ctx context.Context, command ReservationCommand) error {
	if err := application.CheckContext(ctx, h.logger); err != nil {
		return err
	}

	data := command.Payload()
	if h.admin {
		if err := application.Authorize(data.Actor, authz.ReservationManage, "", msgAdminDeleteDenied); err != nil {
			return err
		}
	}

	reservation, err := h.store.Reservations().FindByID(ctx, data.ReservationID)
	if err != nil {
		return application.StoreError(err, MsgReservationNotFound)
	}
	if err := application.Authorize(data.Actor, authz.ReservationDelete, reservation.UserID, msgNotOwner); err != nil {
		return err
	}

	if err := h.store.Reservations().Delete(ctx, reservation.ID); err != nil {
		return application.StoreError(err, MsgReservationNotFound)
	}

	pkgApp.LogInfo(ctx, h.logger, "Reserva eliminada", map[string]interface{}{
		"reservation_id": reservation.ID,
		"actor_id":       data.Actor.ID,
	})
	application.PublishChange(ctx, h.eventBus, h.logger, domain.ReservationDeletedEvent, reservationChange(data.Actor, reservation))
	return nil
}

type listReservationsHandler struct {
	store  domain.Store
	logger pkgApp.AppLogger
	admin  bool
}

// NewListReservationsHandler lista as reservas visíveis ao ator: todas para o
// administrador, as próprias para os demais.
func NewListReservationsHandler(store domain.Store, logger pkgApp.AppLogger) pkgApp.QueryHandler[ReservationQuery, ReservationQueryData, []domain.Reservation] {
	return &listReservationsHandler{store: store, logger: logger}
}

func NewAdminListReservationsHandler(store domain.Store, logger pkgApp.AppLogger) pkgApp.QueryHandler[ReservationQuery, ReservationQueryData, []domain.Reservation] {
	return &listReservationsHandler{store: store, logger: logger, admin: true}
}

func (h *listReservationsHandler) Handle(ctx context.Context, query ReservationQuery) ([]domain.Reservation, error) {
	if err := application.CheckContext(ctx, h.logger); err != nil {
		return nil, err
	}

	actor := query.Payload().Actor
	action, message := authz.ReservationList, ""
	if h.admin {
		action, message = authz.ReservationManage, msgAdminListDenied
	}
	if err := application.Authorize(actor, action, "", message); err != nil {
		return nil, err
	}

	filter := domain.ReservationFilter{WithUser: true, WithTrip: true}
	if !actor.IsAdmin() {
		filter = domain.ReservationFilter{UserID: actor.ID, WithTrip: true}
	}

	reservations, err := h.store.Reservations().List(ctx, filter)
	if err != nil {
		pkgApp.LogError(ctx, h.logger, "Erro ao listar reservas", err, map[string]interface{}{"actor_id": actor.ID})
		return nil, pkgDomain.NewInternalError(err)
	}
	return reservations, nil
}

type findReservationHandler struct {
	store  domain.Store
	logger pkgApp.AppLogger
	admin  bool
}

func NewFindReservationHandler(store domain.Store, logger pkgApp.AppLogger) pkgApp.QueryHandler[ReservationQuery, ReservationQueryData, domain.Reservation] {
	return &findReservationHandler{store: store, logger: logger}
}

func NewAdminFindReservationHandler(store domain.Store, logger pkgApp.AppLogger) pkgApp.QueryHandler[ReservationQuery, ReservationQueryData, domain.Reservation] {
	return &findReservationHandler{store: store, logger: logger, admin: true}
}

// Handle devolve a reserva com o usuário e a viagem.
func (h *findReservationHandler) Handle(ctx context.Context, query ReservationQuery) (domain.Reservation, error) {
	if err := application.CheckContext(ctx, h.logger); err != nil {
		return domain.Reservation{}, err
	}

	data := query.Payload()
	if h.admin {
		if err := application.Authorize(data.Actor, authz.ReservationManage, "", msgAdminViewDenied); err != nil {
			return domain.Reservation{}, err
		}
	}

	reservation, err := h.store.Reservations().FindByID(ctx, data.ReservationID)
	if err != nil {
		return domain.Reservation{}, application.StoreError(err, MsgReservationNotFound)
	}
	if err := application.Authorize(data.Actor, authz.ReservationView, reservation.UserID, msgNotOwner); err != nil {
		return domain.Reservation{}, err
	}
	return reservation, nil
}

// overrideField troca as mensagens de name por message.
func overrideField(fields map[string][]string, name, message string) map[string][]string {
	if fields == nil {
		fields = make(map[string][]string)
	}
	fields[name] = []string{message}
	return fields
}

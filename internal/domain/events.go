package domain

import (
	"time"

	pkgDomain "github.com/mateusmacedo/go-reservas/pkg/domain"
)

const (
	TripCreatedEvent        = "TripCreated"
	TripUpdatedEvent        = "TripUpdated"
	TripDeletedEvent        = "TripDeleted"
	ReservationCreatedEvent = "ReservationCreated"
	ReservationUpdatedEvent = "ReservationUpdated"
	ReservationDeletedEvent = "ReservationDeleted"
	UserRegisteredEvent     = "UserRegistered"
	UserCreatedEvent        = "UserCreated"
	UserUpdatedEvent        = "UserUpdated"
	UserDeletedEvent        = "UserDeleted"
	UserLoggedOutEvent      = "UserLoggedOut"
)

// ChangeEvents lista todos os eventos publicados pela API.
var ChangeEvents = []string{
	TripCreatedEvent,
	TripUpdatedEvent,
	TripDeletedEvent,
	ReservationCreatedEvent,
	ReservationUpdatedEvent,
	ReservationDeletedEvent,
	UserRegisteredEvent,
	UserCreatedEvent,
	UserUpdatedEvent,
	UserDeletedEvent,
	UserLoggedOutEvent,
}

// ChangeData descreve uma alteração já gravada.
type ChangeData struct {
	Entity     string            `json:"entity"`
	EntityID   string            `json:"entity_id"`
	ActorID    string            `json:"actor_id,omitempty"`
	Details    map[string]string `json:"details,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
}

type ChangeEvent = pkgDomain.Event[ChangeData]

type changeEvent struct {
	name string
	data ChangeData
}

func NewChangeEvent(name string, data ChangeData) ChangeEvent {
	if data.OccurredAt.IsZero() {
		data.OccurredAt = time.Now().UTC()
	}
	return &changeEvent{name: name, data: data}
}

func (e *changeEvent) EventName() string {
	return e.name
}

func (e *changeEvent) Payload() ChangeData {
	return e.data
}

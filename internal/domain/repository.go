package domain

import (
	"context"
	"errors"
)

var (
	// ErrNotFound indica que o registro procurado não existe.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate indica violação de unicidade (hoje, só o e-mail do usuário).
	ErrDuplicate = errors.New("duplicate record")
	// ErrForeignKey indica referência a uma viagem ou usuário inexistente.
	ErrForeignKey = errors.New("foreign key violation")
)

type UserRepository interface {
	Create(ctx context.Context, user User) error
	Update(ctx context.Context, user User) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (User, error)
	FindByEmail(ctx context.Context, email string) (User, error)
	// FindWithReservations devolve o usuário com as reservas e as respectivas viagens.
	FindWithReservations(ctx context.Context, id string) (User, error)
	List(ctx context.Context) ([]User, error)
}

type TripRepository interface {
	Create(ctx context.Context, trip Trip) error
	Update(ctx context.Context, trip Trip) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (Trip, error)
	// FindWithReservations devolve a viagem com as reservas.
	FindWithReservations(ctx context.Context, id string) (Trip, error)
	List(ctx context.Context) ([]Trip, error)
}

// ReservationFilter restringe a listagem de reservas. Campos vazios não filtram.
type ReservationFilter struct {
	UserID string
	TripID string
	// WithUser e WithTrip carregam as associações.
	WithUser bool
	WithTrip bool
}

type ReservationRepository interface {
	Create(ctx context.Context, reservation Reservation) error
	Update(ctx context.Context, reservation Reservation) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (Reservation, error)
	List(ctx context.Context, filter ReservationFilter) ([]Reservation, error)
	DeleteByTrip(ctx context.Context, tripID string) (int64, error)
	DeleteByUser(ctx context.Context, userID string) (int64, error)
}

// Store agrupa os repositórios. Transaction executa fn com repositórios ligados a
// uma única transação: se fn devolver erro nada é gravado.
type Store interface {
	Users() UserRepository
	Trips() TripRepository
	Reservations() ReservationRepository
	Transaction(ctx context.Context, fn func(tx Store) error) error
}

package infrastructure

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/mateusmacedo/go-reservas/internal/domain"
	"github.com/mateusmacedo/go-reservas/pkg/application"
)

type memoryState struct {
	users        map[string]domain.User
	trips        map[string]domain.Trip
	reservations map[string]domain.Reservation
}

func newMemoryState() *memoryState {
	return &memoryState{
		users:        make(map[string]domain.User),
		trips:        make(map[string]domain.Trip),
		reservations: make(map[string]domain.Reservation),
	}
}

func (s *memoryState) clone() *memoryState {
	c := newMemoryState()
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.trips {
		c.trips[k] = v
	}
	for k, v := range s.reservations {
		c.reservations[k] = v
	}
	return c
}

type locker interface {
	Lock()
	Unlock()
	RLock()
	RUnlock()
}

// noLock é usado dentro de uma transação, que já segura o lock do store raiz.
type noLock struct{}

func (noLock) Lock()    {}
func (noLock) Unlock()  {}
func (noLock) RLock()   {}
func (noLock) RUnlock() {}

// InMemoryStore implementa domain.Store em memória, com as mesmas regras do esquema
// relacional: e-mail único, chaves estrangeiras e exclusão em cascata das reservas.
// Transações trabalham sobre uma cópia do estado e são serializadas entre si.
type InMemoryStore struct {
	mu     locker
	state  *memoryState
	inTx   bool
	now    func() time.Time
	logger application.AppLogger
}

func NewInMemoryStore(logger application.AppLogger) *InMemoryStore {
	return &InMemoryStore{
		mu:     &sync.RWMutex{},
		state:  newMemoryState(),
		now:    time.Now,
		logger: logger,
	}
}

func (s *InMemoryStore) Users() domain.UserRepository {
	return &inMemoryUserRepository{store: s}
}

func (s *InMemoryStore) Trips() domain.TripRepository {
	return &inMemoryTripRepository{store: s}
}

func (s *InMemoryStore) Reservations() domain.ReservationRepository {
	return &inMemoryReservationRepository{store: s}
}

func (s *InMemoryStore) Transaction(ctx context.Context, fn func(tx domain.Store) error) error {
	if s.inTx {
		return fn(s)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &InMemoryStore{
		mu:     noLock{},
		state:  s.state.clone(),
		inTx:   true,
		now:    s.now,
		logger: s.logger,
	}
	if err := fn(tx); err != nil {
		application.LogDebug(ctx, s.logger, "memory transaction rolled back", map[string]interface{}{
			"error": err.Error(),
		})
		return err
	}
	s.state = tx.state
	return nil
}

func (s *InMemoryStore) timestamp() time.Time {
	return s.now().UTC()
}

// withAssociations preenche User e Trip conforme o filtro. Chamar com o lock de leitura.
func (s *InMemoryStore) withAssociations(r domain.Reservation, withUser, withTrip bool) domain.Reservation {
	if withUser {
		if u, ok := s.state.users[r.UserID]; ok {
			u.Reservations = nil
			r.User = &u
		}
	}
	if withTrip {
		if t, ok := s.state.trips[r.TripID]; ok {
			t.Reservations = nil
			r.Trip = &t
		}
	}
	return r
}

func (s *InMemoryStore) reservationsWhere(match func(domain.Reservation) bool) []domain.Reservation {
	result := make([]domain.Reservation, 0)
	for _, r := range s.state.reservations {
		if match(r) {
			result = append(result, r)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})
	return result
}

func (s *InMemoryStore) deleteReservationsWhere(match func(domain.Reservation) bool) int64 {
	var removed int64
	for id, r := range s.state.reservations {
		if match(r) {
			delete(s.state.reservations, id)
			removed++
		}
	}
	return removed
}

type inMemoryUserRepository struct {
	store *InMemoryStore
}

func (r *inMemoryUserRepository) emailTaken(email, exceptID string) bool {
	for id, u := range r.store.state.users {
		if id != exceptID && u.Email == email {
			return true
		}
	}
	return false
}

func (r *inMemoryUserRepository) Create(ctx context.Context, user domain.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, exists := r.store.state.users[user.ID]; exists || r.emailTaken(user.Email, "") {
		return domain.ErrDuplicate
	}
	now := r.store.timestamp()
	user.CreatedAt, user.UpdatedAt = now, now
	user.Reservations = nil
	r.store.state.users[user.ID] = user

	application.LogDebug(ctx, r.store.logger, "user stored", map[string]interface{}{
		"user_id": user.ID,
	})
	return nil
}

func (r *inMemoryUserRepository) Update(ctx context.Context, user domain.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	current, exists := r.store.state.users[user.ID]
	if !exists {
		return domain.ErrNotFound
	}
	if r.emailTaken(user.Email, user.ID) {
		return domain.ErrDuplicate
	}
	user.CreatedAt = current.CreatedAt
	user.UpdatedAt = r.store.timestamp()
	user.Reservations = nil
	r.store.state.users[user.ID] = user
	return nil
}

func (r *inMemoryUserRepository) Delete(ctx context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, exists := r.store.state.users[id]; !exists {
		return domain.ErrNotFound
	}
	// ON DELETE CASCADE
	r.store.deleteReservationsWhere(func(res domain.Reservation) bool { return res.UserID == id })
	delete(r.store.state.users, id)
	return nil
}

func (r *inMemoryUserRepository) FindByID(ctx context.Context, id string) (domain.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	user, exists := r.store.state.users[id]
	if !exists {
		return domain.User{}, domain.ErrNotFound
	}
	return user, nil
}

func (r *inMemoryUserRepository) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, u := range r.store.state.users {
		if u.Email == email {
			return u, nil
		}
	}
	return domain.User{}, domain.ErrNotFound
}

func (r *inMemoryUserRepository) FindWithReservations(ctx context.Context, id string) (domain.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	user, exists := r.store.state.users[id]
	if !exists {
		return domain.User{}, domain.ErrNotFound
	}
	user.Reservations = r.store.reservationsWhere(func(res domain.Reservation) bool { return res.UserID == id })
	for i := range user.Reservations {
		user.Reservations[i] = r.store.withAssociations(user.Reservations[i], false, true)
	}
	return user, nil
}

func (r *inMemoryUserRepository) List(ctx context.Context) ([]domain.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	users := make([]domain.User, 0, len(r.store.state.users))
	for _, u := range r.store.state.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool {
		if !users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].CreatedAt.Before(users[j].CreatedAt)
		}
		return users[i].ID < users[j].ID
	})
	return users, nil
}

type inMemoryTripRepository struct {
	store *InMemoryStore
}

func (r *inMemoryTripRepository) Create(ctx context.Context, trip domain.Trip) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, exists := r.store.state.trips[trip.ID]; exists {
		return domain.ErrDuplicate
	}
	now := r.store.timestamp()
	trip.CreatedAt, trip.UpdatedAt = now, now
	trip.Reservations = nil
	r.store.state.trips[trip.ID] = trip

	application.LogDebug(ctx, r.store.logger, "trip stored", map[string]interface{}{
		"trip_id": trip.ID,
	})
	return nil
}

func (r *inMemoryTripRepository) Update(ctx context.Context, trip domain.Trip) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	current, exists := r.store.state.trips[trip.ID]
	if !exists {
		return domain.ErrNotFound
	}
	trip.CreatedAt = current.CreatedAt
	trip.UpdatedAt = r.store.timestamp()
	trip.Reservations = nil
	r.store.state.trips[trip.ID] = trip
	return nil
}

func (r *inMemoryTripRepository) Delete(ctx context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, exists := r.store.state.trips[id]; !exists {
		return domain.ErrNotFound
	}
	// ON DELETE CASCADE
	r.store.deleteReservationsWhere(func(res domain.Reservation) bool { return res.TripID == id })
	delete(r.store.state.trips, id)
	return nil
}

func (r *inMemoryTripRepository) FindByID(ctx context.Context, id string) (domain.Trip, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	trip, exists := r.store.state.trips[id]
	if !exists {
		return domain.Trip{}, domain.ErrNotFound
	}
	return trip, nil
}

func (r *inMemoryTripRepository) FindWithReservations(ctx context.Context, id string) (domain.Trip, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	trip, exists := r.store.state.trips[id]
	if !exists {
		return domain.Trip{}, domain.ErrNotFound
	}
	trip.Reservations = r.store.reservationsWhere(func(res domain.Reservation) bool { return res.TripID == id })
	return trip, nil
}

func (r *inMemoryTripRepository) List(ctx context.Context) ([]domain.Trip, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	trips := make([]domain.Trip, 0, len(r.store.state.trips))
	for _, t := range r.store.state.trips {
		trips = append(trips, t)
	}
	sort.Slice(trips, func(i, j int) bool {
		if !trips[i].CreatedAt.Equal(trips[j].CreatedAt) {
			return trips[i].CreatedAt.Before(trips[j].CreatedAt)
		}
		return trips[i].ID < trips[j].ID
	})
	return trips, nil
}

type inMemoryReservationRepository struct {
	store *InMemoryStore
}

func (r *inMemoryReservationRepository) checkReferences(res domain.Reservation) error {
	if _, ok := r.store.state.trips[res.TripID]; !ok {
		return domain.ErrForeignKey
	}
	if _, ok := r.store.state.users[res.UserID]; !ok {
		return domain.ErrForeignKey
	}
	return nil
}

func (r *inMemoryReservationRepository) Create(ctx context.Context, reservation domain.Reservation) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, exists := r.store.state.reservations[reservation.ID]; exists {
		return domain.ErrDuplicate
	}
	if err := r.checkReferences(reservation); err != nil {
		return err
	}
	now := r.store.timestamp()
	reservation.CreatedAt, reservation.UpdatedAt = now, now
	reservation.User, reservation.Trip = nil, nil
	r.store.state.reservations[reservation.ID] = reservation

	application.LogDebug(ctx, r.store.logger, "reservation stored", map[string]interface{}{
		"reservation_id": reservation.ID,
	})
	return nil
}

func (r *inMemoryReservationRepository) Update(ctx context.Context, reservation domain.Reservation) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	current, exists := r.store.state.reservations[reservation.ID]
	if !exists {
		return domain.ErrNotFound
	}
	if err := r.checkReferences(reservation); err != nil {
		return err
	}
	reservation.CreatedAt = current.CreatedAt
	reservation.UpdatedAt = r.store.timestamp()
	reservation.User, reservation.Trip = nil, nil
	r.store.state.reservations[reservation.ID] = reservation
	return nil
}

func (r *inMemoryReservationRepository) Delete(ctx context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, exists := r.store.state.reservations[id]; !exists {
		return domain.ErrNotFound
	}
	delete(r.store.state.reservations, id)
	return nil
}

func (r *inMemoryReservationRepository) FindByID(ctx context.Context, id string) (domain.Reservation, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	reservation, exists := r.store.state.reservations[id]
	if !exists {
		return domain.Reservation{}, domain.ErrNotFound
	}
	return r.store.withAssociations(reservation, true, true), nil
}

func (r *inMemoryReservationRepository) List(ctx context.Context, filter domain.ReservationFilter) ([]domain.Reservation, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	result := r.store.reservationsWhere(func(res domain.Reservation) bool {
		return (filter.UserID == "" || res.UserID == filter.UserID) &&
			(filter.TripID == "" || res.TripID == filter.TripID)
	})
	for i := range result {
		result[i] = r.store.withAssociations(result[i], filter.WithUser, filter.WithTrip)
	}
	return result, nil
}

func (r *inMemoryReservationRepository) DeleteByTrip(ctx context.Context, tripID string) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return r.store.deleteReservationsWhere(func(res domain.Reservation) bool { return res.TripID == tripID }), nil
}

func (r *inMemoryReservationRepository) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return r.store.deleteReservationsWhere(func(res domain.Reservation) bool { return res.UserID == userID }), nil
}

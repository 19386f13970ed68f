package application_test

import (
	"context"
	"sync"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/mateusmacedo/go-reservas/internal/authz"
	"github.com/mateusmacedo/go-reservas/internal/domain"
	"github.com/mateusmacedo/go-reservas/internal/infrastructure"
	"github.com/mateusmacedo/go-reservas/internal/trip/application"
	pkgApp "github.com/mateusmacedo/go-reservas/pkg/application"
	pkgDomain "github.com/mateusmacedo/go-reservas/pkg/domain"
	pkgInfra "github.com/mateusmacedo/go-reservas/pkg/infrastructure"
	zapAdapter "github.com/mateusmacedo/go-reservas/pkg/infrastructure/zaplogger/adapter"
)

var (
	admin = authz.Actor{ID: "admin-1", Role: domain.RoleAdmin}
	user  = authz.Actor{ID: "user-1", Role: domain.RoleUser}
)

type recorder struct {
	mu     sync.Mutex
	events []domain.ChangeEvent
}

func (r *recorder) Handle(_ context.Context, event domain.ChangeEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *recorder) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.events))
	for _, e := range r.events {
		names = append(names, e.EventName())
	}
	return names
}

type fixture struct {
	store  *infrastructure.InMemoryStore
	bus    pkgApp.EventBus[domain.ChangeEvent, domain.ChangeData]
	events *recorder
	logger pkgApp.AppLogger
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	logger := zapAdapter.NewZapAppLoggerFrom(zaptest.NewLogger(t))
	bus := pkgInfra.NewSimpleEventBus[domain.ChangeEvent, domain.ChangeData](logger)
	events := &recorder{}
	for _, name := range domain.ChangeEvents {
		bus.RegisterHandler(name, events)
	}
	return fixture{store: infrastructure.NewInMemoryStore(logger), bus: bus, events: events, logger: logger}
}

// success marca os casos sem erro; KindInternal é o valor zero de ErrorKind.
const success = pkgDomain.ErrorKind(-1)

func ptr[T any](v T) *T {
	return &v
}

func lisbon() application.TripFields {
	return application.TripFields{
		Destination:   ptr("Lisbon"),
		DepartureDate: ptr(domain.NewDate(2025, 1, 1)),
		ReturnDate:    ptr(domain.NewDate(2025, 1, 10)),
		Price:         ptr(100.0),
	}
}

func (f fixture) create(t *testing.T, id string) {
	t.Helper()
	handler := application.NewCreateTripHandler(f.store, f.bus, f.logger)
	err := handler.Handle(context.Background(), application.NewCreateTripCommand(application.TripCommandData{
		Actor: admin, TripID: id, Fields: lisbon(),
	}))
	if err != nil {
		t.Fatalf("create trip: %v", err)
	}
}

func TestCreateTrip(t *testing.T) {
	tests := []struct {
		name   string
		actor  authz.Actor
		mutate func(*application.TripFields)
		kind   pkgDomain.ErrorKind
	}{
		{"admin creates", admin, func(*application.TripFields) {}, success},
		{"same day return", admin, func(f *application.TripFields) { f.ReturnDate = f.DepartureDate }, success},
		{"user denied", user, func(*application.TripFields) {}, pkgDomain.KindPermissionDenied},
		{"anonymous denied", authz.Actor{}, func(*application.TripFields) {}, pkgDomain.KindPermissionDenied},
		{"return before departure", admin, func(f *application.TripFields) { f.ReturnDate = ptr(domain.NewDate(2024, 12, 31)) }, pkgDomain.KindValidation},
		{"missing price", admin, func(f *application.TripFields) { f.Price = nil }, pkgDomain.KindValidation},
		{"negative price", admin, func(f *application.TripFields) { f.Price = ptr(-1.0) }, pkgDomain.KindValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			fields := lisbon()
			tt.mutate(&fields)

			err := application.NewCreateTripHandler(f.store, f.bus, f.logger).Handle(context.Background(),
				application.NewCreateTripCommand(application.TripCommandData{Actor: tt.actor, TripID: "t1", Fields: fields}))

			if tt.kind == success {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if _, err := f.store.Trips().FindByID(context.Background(), "t1"); err != nil {
					t.Errorf("trip not stored: %v", err)
				}
				if names := f.events.names(); len(names) != 1 || names[0] != domain.TripCreatedEvent {
					t.Errorf("events = %v", names)
				}
				return
			}
			if pkgDomain.KindOf(err) != tt.kind {
				t.Fatalf("kind = %v, want %v (err %v)", pkgDomain.KindOf(err), tt.kind, err)
			}
			if _, err := f.store.Trips().FindByID(context.Background(), "t1"); err == nil {
				t.Error("trip stored despite error")
			}
			if len(f.events.names()) != 0 {
				t.Errorf("events published on failure: %v", f.events.names())
			}
		})
	}
}

func TestUpdateTripPartial(t *testing.T) {
	f := newFixture(t)
	f.create(t, "t1")
	ctx := context.Background()
	handler := application.NewUpdateTripHandler(f.store, f.bus, f.logger)

	err := handler.Handle(ctx, application.NewUpdateTripCommand(application.TripCommandData{
		Actor: admin, TripID: "t1", Fields: application.TripFields{Price: ptr(120.0)},
	}))
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	trip, _ := f.store.Trips().FindByID(ctx, "t1")
	if trip.Price != 120 || trip.Destination != "Lisbon" {
		t.Errorf("trip = %+v", trip)
	}

	// regresso passa a ficar antes da partida já gravada
	err = handler.Handle(ctx, application.NewUpdateTripCommand(application.TripCommandData{
		Actor: admin, TripID: "t1", Fields: application.TripFields{ReturnDate: ptr(domain.NewDate(2024, 6, 1))},
	}))
	if !pkgDomain.IsKind(err, pkgDomain.KindValidation) {
		t.Errorf("err = %v, want validation", err)
	}

	err = handler.Handle(ctx, application.NewUpdateTripCommand(application.TripCommandData{
		Actor: admin, TripID: "missing", Fields: application.TripFields{Price: ptr(1.0)},
	}))
	if !pkgDomain.IsKind(err, pkgDomain.KindNotFound) {
		t.Errorf("err = %v, want not found", err)
	}

	err = handler.Handle(ctx, application.NewUpdateTripCommand(application.TripCommandData{
		Actor: user, TripID: "t1", Fields: application.TripFields{Price: ptr(1.0)},
	}))
	if !pkgDomain.IsKind(err, pkgDomain.KindPermissionDenied) {
		t.Errorf("err = %v, want permission denied", err)
	}
}

func TestDeleteTripCascades(t *testing.T) {
	f := newFixture(t)
	f.create(t, "t1")
	ctx := context.Background()

	if err := f.store.Users().Create(ctx, domain.User{ID: user.ID, Name: "Ana", Email: "ana@example.com", Role: domain.RoleUser}); err != nil {
		t.Fatalf("create user: %v", err)
	}
	for _, id := range []string{"r1", "r2"} {
		if err := f.store.Reservations().Create(ctx, domain.Reservation{ID: id, UserID: user.ID, TripID: "t1", Seats: 1}); err != nil {
			t.Fatalf("create reservation: %v", err)
		}
	}

	handler := application.NewDeleteTripHandler(f.store, f.bus, f.logger)
	if err := handler.Handle(ctx, application.NewDeleteTripCommand(application.TripCommandData{Actor: admin, TripID: "t1"})); err != nil {
		t.Fatalf("delete: %v", err)
	}

	left, _ := f.store.Reservations().List(ctx, domain.ReservationFilter{})
	if len(left) != 0 {
		t.Errorf("reservations left = %d", len(left))
	}

	f.events.mu.Lock()
	last := f.events.events[len(f.events.events)-1]
	f.events.mu.Unlock()
	if last.EventName() != domain.TripDeletedEvent || last.Payload().Details["reservas_removidas"] != "2" {
		t.Errorf("event = %s %v", last.EventName(), last.Payload().Details)
	}

	err := handler.Handle(ctx, application.NewDeleteTripCommand(application.TripCommandData{Actor: admin, TripID: "t1"}))
	if !pkgDomain.IsKind(err, pkgDomain.KindNotFound) {
		t.Errorf("second delete = %v, want not found", err)
	}
}

func TestFindTripIncludesReservations(t *testing.T) {
	f := newFixture(t)
	f.create(t, "t1")
	ctx := context.Background()

	_ = f.store.Users().Create(ctx, domain.User{ID: user.ID, Name: "Ana", Email: "ana@example.com", Role: domain.RoleUser})
	_ = f.store.Reservations().Create(ctx, domain.Reservation{ID: "r1", UserID: user.ID, TripID: "t1", Seats: 2})

	trip, err := application.NewFindTripHandler(f.store, f.logger).Handle(ctx,
		application.NewFindTripQuery(application.TripQueryData{Actor: user, TripID: "t1"}))
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(trip.Reservations) != 1 {
		t.Errorf("reservations = %d, want 1", len(trip.Reservations))
	}

	trips, err := application.NewListTripsHandler(f.store, f.logger).Handle(ctx,
		application.NewListTripsQuery(application.TripQueryData{Actor: user}))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(trips) != 1 {
		t.Errorf("trips = %d, want 1", len(trips))
	}
}

package infrastructure

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"

	"github.com/mateusmacedo/go-reservas/internal/domain"
	zapAdapter "github.com/mateusmacedo/go-reservas/pkg/infrastructure/zaplogger/adapter"
)

var _ domain.Store = (*GormStore)(nil)

// sqliteStore abre um GormStore sobre um arquivo sqlite com as mesmas opções do postgres.
func sqliteStore(t *testing.T) *GormStore {
	t.Helper()
	logger := zapAdapter.NewZapAppLoggerFrom(zaptest.NewLogger(t))
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "reservas.db")), &gorm.Config{
		TranslateError: true,
		Logger:         NewGormLogger(logger, time.Second),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	store := NewGormStore(db, logger)
	ctx := context.Background()
	for _, u := range []domain.User{
		{ID: "u1", Name: "Ana", Email: "ana@example.com", PasswordHash: "x", Role: domain.RoleUser},
		{ID: "u2", Name: "Rui", Email: "rui@example.com", PasswordHash: "x", Role: domain.RoleAdmin},
	} {
		if err := store.Users().Create(ctx, u); err != nil {
			t.Fatalf("create user %s: %v", u.ID, err)
		}
	}
	trip := domain.Trip{ID: "t1", Destination: "Lisbon", DepartureDate: domain.NewDate(2025, 1, 1), ReturnDate: domain.NewDate(2025, 1, 10), Price: 100}
	if err := store.Trips().Create(ctx, trip); err != nil {
		t.Fatalf("create trip: %v", err)
	}
	for _, r := range []domain.Reservation{
		{ID: "r1", UserID: "u1", TripID: "t1", Seats: 2},
		{ID: "r2", UserID: "u2", TripID: "t1", Seats: 1},
	} {
		if err := store.Reservations().Create(ctx, r); err != nil {
			t.Fatalf("create reservation %s: %v", r.ID, err)
		}
	}
	return store
}

func TestGormUserEmailUnique(t *testing.T) {
	store := sqliteStore(t)
	ctx := context.Background()

	err := store.Users().Create(ctx, domain.User{ID: "u3", Name: "Outra", Email: "ana@example.com", PasswordHash: "x", Role: domain.RoleUser})
	if !errors.Is(err, domain.ErrDuplicate) {
		t.Errorf("create duplicate = %v, want ErrDuplicate", err)
	}

	rui, err := store.Users().FindByID(ctx, "u2")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	rui.Email = "ana@example.com"
	if err := store.Users().Update(ctx, rui); !errors.Is(err, domain.ErrDuplicate) {
		t.Errorf("update to taken email = %v, want ErrDuplicate", err)
	}

	rui.Email = "rui@example.com"
	rui.Name = "Rui Costa"
	if err := store.Users().Update(ctx, rui); err != nil {
		t.Errorf("update keeping own email: %v", err)
	}
	got, _ := store.Users().FindByEmail(ctx, "rui@example.com")
	if got.Name != "Rui Costa" || got.Role != domain.RoleAdmin {
		t.Errorf("user = %+v", got)
	}
}

func TestGormNoRowsIsNotFound(t *testing.T) {
	store := sqliteStore(t)
	ctx := context.Background()

	tests := []struct {
		name string
		run  func() error
	}{
		{"update user", func() error {
			return store.Users().Update(ctx, domain.User{ID: "ghost", Name: "X", Email: "x@example.com", Role: domain.RoleUser})
		}},
		{"delete user", func() error { return store.Users().Delete(ctx, "ghost") }},
		{"update trip", func() error {
			return store.Trips().Update(ctx, domain.Trip{ID: "ghost", Destination: "X", DepartureDate: domain.NewDate(2025, 1, 1), ReturnDate: domain.NewDate(2025, 1, 1)})
		}},
		{"delete trip", func() error { return store.Trips().Delete(ctx, "ghost") }},
		{"update reservation", func() error {
			return store.Reservations().Update(ctx, domain.Reservation{ID: "ghost", UserID: "u1", TripID: "t1", Seats: 1})
		}},
		{"delete reservation", func() error { return store.Reservations().Delete(ctx, "ghost") }},
		{"find user", func() error {
			_, err := store.Users().FindByID(ctx, "ghost")
			return err
		}},
		{"find trip", func() error {
			_, err := store.Trips().FindWithReservations(ctx, "ghost")
			return err
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.run(); !errors.Is(err, domain.ErrNotFound) {
				t.Errorf("err = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestGormTransactionRollback(t *testing.T) {
	store := sqliteStore(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := store.Transaction(ctx, func(tx domain.Store) error {
		if _, err := tx.Reservations().DeleteByTrip(ctx, "t1"); err != nil {
			return err
		}
		if err := tx.Trips().Delete(ctx, "t1"); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}

	trip, err := store.Trips().FindWithReservations(ctx, "t1")
	if err != nil {
		t.Fatalf("trip gone after rollback: %v", err)
	}
	if len(trip.Reservations) != 2 {
		t.Errorf("reservations = %d, want 2", len(trip.Reservations))
	}
}

func TestGormCascadeInTransaction(t *testing.T) {
	store := sqliteStore(t)
	ctx := context.Background()

	var removed int64
	err := store.Transaction(ctx, func(tx domain.Store) error {
		var err error
		if removed, err = tx.Reservations().DeleteByUser(ctx, "u1"); err != nil {
			return err
		}
		return tx.Users().Delete(ctx, "u1")
	})
	if err != nil {
		t.Fatalf("transaction: %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}

	left, err := store.Reservations().List(ctx, domain.ReservationFilter{WithUser: true, WithTrip: true})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(left) != 1 || left[0].ID != "r2" || left[0].User == nil || left[0].Trip == nil {
		t.Errorf("reservations left = %+v", left)
	}
	if _, err := store.Users().FindByID(ctx, "u1"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("find deleted user = %v, want ErrNotFound", err)
	}
}

package application_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/mateusmacedo/go-reservas/internal/auth"
	"github.com/mateusmacedo/go-reservas/internal/authz"
	"github.com/mateusmacedo/go-reservas/internal/domain"
	"github.com/mateusmacedo/go-reservas/internal/identity/application"
	"github.com/mateusmacedo/go-reservas/internal/infrastructure"
	pkgApp "github.com/mateusmacedo/go-reservas/pkg/application"
	pkgDomain "github.com/mateusmacedo/go-reservas/pkg/domain"
	pkgInfra "github.com/mateusmacedo/go-reservas/pkg/infrastructure"
	zapAdapter "github.com/mateusmacedo/go-reservas/pkg/infrastructure/zaplogger/adapter"
)

var (
	admin = authz.Actor{ID: "admin-1", Role: domain.RoleAdmin}
	alice = authz.Actor{ID: "user-1", Role: domain.RoleUser}
	bob   = authz.Actor{ID: "user-2", Role: domain.RoleUser}
)

// stubTokens registra os tokens invalidados e pode falhar sob demanda.
type stubTokens struct {
	invalidated []string
	failWith    error
}

func (s *stubTokens) Issue(context.Context, string) (auth.Token, domain.User, error) {
	return auth.Token{}, domain.User{}, errors.New("not used")
}

func (s *stubTokens) Authenticate(context.Context, string, string) (auth.Token, domain.User, error) {
	return auth.Token{}, domain.User{}, auth.ErrInvalidCredentials
}

func (s *stubTokens) Invalidate(_ context.Context, raw string) error {
	if s.failWith != nil {
		return s.failWith
	}
	s.invalidated = append(s.invalidated, raw)
	return nil
}

type fixture struct {
	store  *infrastructure.InMemoryStore
	hasher auth.PasswordHasher
	tokens *stubTokens
	bus    pkgApp.EventBus[domain.ChangeEvent, domain.ChangeData]
	logger pkgApp.AppLogger
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	logger := zapAdapter.NewZapAppLoggerFrom(zaptest.NewLogger(t))
	store := infrastructure.NewInMemoryStore(logger)
	ctx := context.Background()

	for _, u := range []domain.User{
		{ID: admin.ID, Name: "Admin", Email: "admin@example.com", Role: domain.RoleAdmin},
		{ID: alice.ID, Name: "Alice", Email: "alice@example.com", Role: domain.RoleUser},
		{ID: bob.ID, Name: "Bob", Email: "bob@example.com", Role: domain.RoleUser},
	} {
		if err := store.Users().Create(ctx, u); err != nil {
			t.Fatalf("create user: %v", err)
		}
	}
	if err := store.Trips().Create(ctx, domain.Trip{
		ID: "t1", Destination: "Lisbon", DepartureDate: domain.NewDate(2025, 1, 1), ReturnDate: domain.NewDate(2025, 1, 10),
	}); err != nil {
		t.Fatalf("create trip: %v", err)
	}
	for _, r := range []domain.Reservation{
		{ID: "r1", UserID: alice.ID, TripID: "t1", Seats: 1},
		{ID: "r2", UserID: alice.ID, TripID: "t1", Seats: 2},
		{ID: "r3", UserID: bob.ID, TripID: "t1", Seats: 1},
	} {
		if err := store.Reservations().Create(ctx, r); err != nil {
			t.Fatalf("create reservation: %v", err)
		}
	}

	return fixture{
		store:  store,
		hasher: auth.NewBcryptHasher(4),
		tokens: &stubTokens{},
		bus:    pkgInfra.NewSimpleEventBus[domain.ChangeEvent, domain.ChangeData](logger),
		logger: logger,
	}
}

func ptr[T any](v T) *T {
	return &v
}

func (f fixture) countReservations(t *testing.T, userID string) int {
	t.Helper()
	list, err := f.store.Reservations().List(context.Background(), domain.ReservationFilter{UserID: userID})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	return len(list)
}

func TestRegisterUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	handler := application.NewRegisterUserHandler(f.store, f.hasher, f.bus, f.logger)

	role := domain.RoleAdmin
	err := handler.Handle(ctx, application.NewRegisterUserCommand(application.UserCommandData{
		UserID: "new-1",
		Fields: application.UserFields{Name: ptr("Carla"), Email: ptr("carla@example.com"), Password: ptr("secret1"), Role: &role},
	}))
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	user, err := f.store.Users().FindByID(ctx, "new-1")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if user.Role != domain.RoleUser {
		t.Errorf("role = %v, want user", user.Role)
	}
	if user.PasswordHash == "secret1" || f.hasher.Compare(user.PasswordHash, "secret1") != nil {
		t.Error("password not hashed")
	}
}

func TestRegisterUserValidation(t *testing.T) {
	tests := []struct {
		name   string
		fields application.UserFields
		field  string
	}{
		{"duplicate email", application.UserFields{Name: ptr("Outra"), Email: ptr("alice@example.com"), Password: ptr("secret1")}, "email"},
		{"missing password", application.UserFields{Name: ptr("Outra"), Email: ptr("outra@example.com")}, "password"},
		{"missing name", application.UserFields{Email: ptr("outra@example.com"), Password: ptr("secret1")}, "name"},
		{"password over 72 bytes", application.UserFields{Name: ptr("Outra"), Email: ptr("outra@example.com"), Password: ptr(strings.Repeat("a", 80))}, "password"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			err := application.NewRegisterUserHandler(f.store, f.hasher, f.bus, f.logger).Handle(context.Background(),
				application.NewRegisterUserCommand(application.UserCommandData{UserID: "new-1", Fields: tt.fields}))

			var appErr *pkgDomain.Error
			if !errors.As(err, &appErr) || appErr.Kind != pkgDomain.KindValidation {
				t.Fatalf("err = %v, want validation", err)
			}
			if len(appErr.Fields[tt.field]) == 0 {
				t.Errorf("fields = %v, want error on %s", appErr.Fields, tt.field)
			}
		})
	}
}

func TestUpdateProfileKeepsRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	role := domain.RoleAdmin
	err := application.NewUpdateProfileHandler(f.store, f.hasher, f.bus, f.logger).Handle(ctx,
		application.NewUpdateProfileCommand(application.UserCommandData{
			Actor: alice, UserID: alice.ID,
			Fields: application.UserFields{Name: ptr("Alice Silva"), Role: &role},
		}))
	if err != nil {
		t.Fatalf("update profile: %v", err)
	}
	user, _ := f.store.Users().FindByID(ctx, alice.ID)
	if user.Name != "Alice Silva" || user.Role != domain.RoleUser {
		t.Errorf("user = %+v", user)
	}

	err = application.NewUpdateProfileHandler(f.store, f.hasher, f.bus, f.logger).Handle(ctx,
		application.NewUpdateProfileCommand(application.UserCommandData{
			Actor: alice, UserID: alice.ID, Fields: application.UserFields{Email: ptr("bob@example.com")},
		}))
	if !pkgDomain.IsKind(err, pkgDomain.KindValidation) {
		t.Errorf("taken email = %v, want validation", err)
	}
}

func TestUpdateUserByAdmin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	handler := application.NewUpdateUserHandler(f.store, f.hasher, f.bus, f.logger)

	role := domain.RoleAdmin
	err := handler.Handle(ctx, application.NewUpdateUserCommand(application.UserCommandData{
		Actor: admin, UserID: bob.ID, Fields: application.UserFields{Role: &role},
	}))
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	user, _ := f.store.Users().FindByID(ctx, bob.ID)
	if user.Role != domain.RoleAdmin {
		t.Errorf("role = %v, want admin", user.Role)
	}

	err = handler.Handle(ctx, application.NewUpdateUserCommand(application.UserCommandData{
		Actor: alice, UserID: alice.ID, Fields: application.UserFields{Role: &role},
	}))
	if !pkgDomain.IsKind(err, pkgDomain.KindPermissionDenied) {
		t.Errorf("user promoting self = %v, want permission denied", err)
	}
}

func TestDeleteUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	handler := application.NewDeleteUserHandler(f.store, f.bus, f.logger)

	tests := []struct {
		name   string
		actor  authz.Actor
		target string
		kind   pkgDomain.ErrorKind
	}{
		{"user cannot delete others", bob, alice.ID, pkgDomain.KindPermissionDenied},
		{"admin cannot delete self", admin, admin.ID, pkgDomain.KindInvalidOperation},
		{"unknown user", admin, "ghost", pkgDomain.KindNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := handler.Handle(ctx, application.NewDeleteUserCommand(application.UserCommandData{Actor: tt.actor, UserID: tt.target}))
			if !pkgDomain.IsKind(err, tt.kind) {
				t.Errorf("err = %v, want %v", err, tt.kind)
			}
		})
	}

	if err := handler.Handle(ctx, application.NewDeleteUserCommand(application.UserCommandData{Actor: admin, UserID: alice.ID})); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := f.store.Users().FindByID(ctx, alice.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("user still present: %v", err)
	}
	if n := f.countReservations(t, alice.ID); n != 0 {
		t.Errorf("reservations left = %d", n)
	}
	if n := f.countReservations(t, bob.ID); n != 1 {
		t.Errorf("other reservations = %d, want 1", n)
	}
}

func TestDeleteAccount(t *testing.T) {
	t.Run("admin refused", func(t *testing.T) {
		f := newFixture(t)
		err := application.NewDeleteAccountHandler(f.store, f.tokens, f.bus, f.logger).Handle(context.Background(),
			application.NewDeleteAccountCommand(application.UserCommandData{Actor: admin, RawToken: "tok"}))
		if !pkgDomain.IsKind(err, pkgDomain.KindInvalidOperation) {
			t.Errorf("err = %v, want invalid operation", err)
		}
	})

	t.Run("user deletes own account", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.Background()
		err := application.NewDeleteAccountHandler(f.store, f.tokens, f.bus, f.logger).Handle(ctx,
			application.NewDeleteAccountCommand(application.UserCommandData{Actor: alice, RawToken: "tok"}))
		if err != nil {
			t.Fatalf("delete account: %v", err)
		}
		if _, err := f.store.Users().FindByID(ctx, alice.ID); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("user still present: %v", err)
		}
		if n := f.countReservations(t, alice.ID); n != 0 {
			t.Errorf("reservations left = %d", n)
		}
		if len(f.tokens.invalidated) != 1 || f.tokens.invalidated[0] != "tok" {
			t.Errorf("invalidated = %v", f.tokens.invalidated)
		}
	})

	t.Run("revocation failure rolls back", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.Background()
		f.tokens.failWith = errors.New("redis down")

		err := application.NewDeleteAccountHandler(f.store, f.tokens, f.bus, f.logger).Handle(ctx,
			application.NewDeleteAccountCommand(application.UserCommandData{Actor: alice, RawToken: "tok"}))
		if !pkgDomain.IsKind(err, pkgDomain.KindInternal) {
			t.Fatalf("err = %v, want internal", err)
		}
		if _, err := f.store.Users().FindByID(ctx, alice.ID); err != nil {
			t.Errorf("user removed despite rollback: %v", err)
		}
		if n := f.countReservations(t, alice.ID); n != 2 {
			t.Errorf("reservations = %d, want 2", n)
		}
	})
}

func TestLogout(t *testing.T) {
	f := newFixture(t)
	handler := application.NewLogoutHandler(f.tokens, f.bus, f.logger)

	if err := handler.Handle(context.Background(), application.NewLogoutCommand(application.UserCommandData{Actor: alice, RawToken: "tok"})); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if len(f.tokens.invalidated) != 1 {
		t.Errorf("invalidated = %v", f.tokens.invalidated)
	}

	f.tokens.failWith = errors.New("redis down")
	err := handler.Handle(context.Background(), application.NewLogoutCommand(application.UserCommandData{Actor: alice, RawToken: "tok"}))
	var appErr *pkgDomain.Error
	if !errors.As(err, &appErr) || appErr.Kind != pkgDomain.KindInternal || appErr.Message != "Falha ao fazer logout" {
		t.Errorf("err = %v, want internal logout failure", err)
	}
}

func TestUserQueries(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	users, err := application.NewListUsersHandler(f.store, f.logger).Handle(ctx, application.NewListUsersQuery(application.UserQueryData{Actor: admin}))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(users) != 3 {
		t.Errorf("users = %d, want 3", len(users))
	}
	if _, err := application.NewListUsersHandler(f.store, f.logger).Handle(ctx, application.NewListUsersQuery(application.UserQueryData{Actor: alice})); !pkgDomain.IsKind(err, pkgDomain.KindPermissionDenied) {
		t.Errorf("user listing = %v, want permission denied", err)
	}

	user, err := application.NewFindUserHandler(f.store, f.logger).Handle(ctx, application.NewFindUserQuery(application.UserQueryData{Actor: admin, UserID: alice.ID}))
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(user.Reservations) != 2 {
		t.Errorf("reservations = %d, want 2", len(user.Reservations))
	}

	profile, err := application.NewProfileHandler(f.store, f.logger).Handle(ctx, application.NewProfileQuery(application.UserQueryData{Actor: bob, UserID: bob.ID}))
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if profile.Email != "bob@example.com" {
		t.Errorf("profile = %+v", profile)
	}
}

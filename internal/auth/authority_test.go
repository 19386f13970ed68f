package auth_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/mateusmacedo/go-reservas/internal/auth"
	"github.com/mateusmacedo/go-reservas/internal/domain"
	"github.com/mateusmacedo/go-reservas/internal/infrastructure"
	pkgDomain "github.com/mateusmacedo/go-reservas/pkg/domain"
	zapAdapter "github.com/mateusmacedo/go-reservas/pkg/infrastructure/zaplogger/adapter"
)

type clock struct {
	now time.Time
}

func (c *clock) Now() time.Time {
	return c.now
}

type fixture struct {
	authority  *auth.Authority
	store      *infrastructure.InMemoryStore
	revocation *auth.MemoryRevocationStore
	clock      *clock
	user       domain.User
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	logger := zapAdapter.NewZapAppLoggerFrom(zaptest.NewLogger(t))
	store := infrastructure.NewInMemoryStore(logger)
	hasher := auth.NewBcryptHasher(4)
	revocation := auth.NewMemoryRevocationStore()
	c := &clock{now: time.Now()}

	hash, err := hasher.Hash("secret1")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	user := domain.User{ID: "user-1", Name: "Ana", Email: "ana@example.com", PasswordHash: hash, Role: domain.RoleUser}
	if err := store.Users().Create(context.Background(), user); err != nil {
		t.Fatalf("create user: %v", err)
	}

	authority, err := auth.NewAuthority(auth.Options{
		Secret: []byte("test-secret"),
		TTL:    time.Hour,
		Issuer: "go-reservas",
		Now:    c.Now,
	}, store.Users(), hasher, revocation, logger)
	if err != nil {
		t.Fatalf("new authority: %v", err)
	}
	return fixture{authority: authority, store: store, revocation: revocation, clock: c, user: user}
}

func TestNewAuthorityRequiresSecret(t *testing.T) {
	logger := zapAdapter.NewZapAppLoggerFrom(zaptest.NewLogger(t))
	_, err := auth.NewAuthority(auth.Options{}, nil, auth.NewBcryptHasher(4), auth.NewMemoryRevocationStore(), logger)
	if err == nil {
		t.Fatal("expected error for empty secret")
	}
}

func TestTokenLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	token, user, err := f.authority.Authenticate(ctx, "ana@example.com", "secret1")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if user.ID != f.user.ID {
		t.Errorf("user = %q, want %q", user.ID, f.user.ID)
	}
	if token.TokenType != auth.TokenType || token.ExpiresIn != 3600 {
		t.Errorf("token = %+v", token)
	}

	identity, err := f.authority.Verify(ctx, token.AccessToken)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if identity.UserID != f.user.ID || identity.Role != domain.RoleUser {
		t.Errorf("identity = %+v", identity)
	}

	if err := f.authority.Invalidate(ctx, token.AccessToken); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if _, err := f.authority.Verify(ctx, token.AccessToken); !errors.Is(err, auth.ErrUnauthenticated) {
		t.Errorf("verify after invalidate = %v, want ErrUnauthenticated", err)
	}
	// segunda invalidação não falha
	if err := f.authority.Invalidate(ctx, token.AccessToken); err != nil {
		t.Errorf("second invalidate: %v", err)
	}
	if f.revocation.Len() != 1 {
		t.Errorf("revocation entries = %d, want 1", f.revocation.Len())
	}
}

func TestInvalidateLeavesOtherTokensValid(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, _, err := f.authority.Issue(ctx, f.user.ID)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	second, _, err := f.authority.Issue(ctx, f.user.ID)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if err := f.authority.Invalidate(ctx, first.AccessToken); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if _, err := f.authority.Verify(ctx, second.AccessToken); err != nil {
		t.Errorf("second token rejected: %v", err)
	}
}

func TestAuthenticateIsOpaque(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"wrong password", "ana@example.com", "wrong"},
		{"unknown email", "nobody@example.com", "secret1"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := f.authority.Authenticate(ctx, tt.email, tt.password)
			if !errors.Is(err, auth.ErrInvalidCredentials) {
				t.Fatalf("err = %v, want ErrInvalidCredentials", err)
			}
			if pkgDomain.KindOf(err) != pkgDomain.KindUnauthenticated {
				t.Errorf("kind = %v", pkgDomain.KindOf(err))
			}
		})
	}
}

func TestVerifyRejects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	token, _, err := f.authority.Issue(ctx, f.user.ID)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	logger := zapAdapter.NewZapAppLoggerFrom(zaptest.NewLogger(t))
	other, err := auth.NewAuthority(auth.Options{Secret: []byte("other-secret")}, f.store.Users(), auth.NewBcryptHasher(4), auth.NewMemoryRevocationStore(), logger)
	if err != nil {
		t.Fatalf("new authority: %v", err)
	}
	foreign, _, err := other.Issue(ctx, f.user.ID)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"garbage", "not-a-jwt"},
		{"tampered", token.AccessToken + "x"},
		{"other secret", foreign.AccessToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := f.authority.Verify(ctx, tt.raw); !errors.Is(err, auth.ErrUnauthenticated) {
				t.Errorf("err = %v, want ErrUnauthenticated", err)
			}
		})
	}
}

func TestVerifyExpired(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	token, _, err := f.authority.Issue(ctx, f.user.ID)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	f.clock.now = f.clock.now.Add(2 * time.Hour)

	if _, err := f.authority.Verify(ctx, token.AccessToken); !errors.Is(err, auth.ErrUnauthenticated) {
		t.Errorf("err = %v, want ErrUnauthenticated", err)
	}
	// token expirado não entra na lista de revogação
	if err := f.authority.Invalidate(ctx, token.AccessToken); err != nil {
		t.Errorf("invalidate expired: %v", err)
	}
	if f.revocation.Len() != 0 {
		t.Errorf("revocation entries = %d, want 0", f.revocation.Len())
	}
}

func TestIssueUnknownUser(t *testing.T) {
	f := newFixture(t)
	if _, _, err := f.authority.Issue(context.Background(), "missing"); !errors.Is(err, auth.ErrCredential) {
		t.Errorf("err = %v, want ErrCredential", err)
	}
}

func TestMemoryRevocationCleanup(t *testing.T) {
	ctx := context.Background()
	store := auth.NewMemoryRevocationStore()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	_ = store.Revoke(ctx, "expired", now.Add(-time.Minute))
	_ = store.Revoke(ctx, "live", now.Add(time.Minute))

	removed, err := store.Cleanup(ctx, now)
	if err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
	if revoked, _ := store.IsRevoked(ctx, "live"); !revoked {
		t.Error("live entry was removed")
	}
	if revoked, _ := store.IsRevoked(ctx, "expired"); revoked {
		t.Error("expired entry is still present")
	}
}

func TestRunCleanupStopsOnCancel(t *testing.T) {
	logger := zapAdapter.NewZapAppLoggerFrom(zaptest.NewLogger(t))
	store := auth.NewMemoryRevocationStore()
	_ = store.Revoke(context.Background(), "old", time.Now().Add(-time.Hour))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		auth.RunCleanup(ctx, store, 5*time.Millisecond, logger)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for store.Len() != 0 {
		select {
		case <-deadline:
			t.Fatal("cleanup did not run")
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("RunCleanup did not return after cancel")
	}
}

func TestBcryptHasher(t *testing.T) {
	hasher := auth.NewBcryptHasher(4)
	hash, err := hasher.Hash("secret1")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "secret1" {
		t.Fatal("hash equals plain password")
	}
	if err := hasher.Compare(hash, "secret1"); err != nil {
		t.Errorf("compare: %v", err)
	}
	if err := hasher.Compare(hash, "other"); !errors.Is(err, auth.ErrInvalidCredentials) {
		t.Errorf("compare mismatch = %v", err)
	}
	if _, err := hasher.Hash(strings.Repeat("a", 73)); !errors.Is(err, auth.ErrPasswordTooLong) {
		t.Errorf("hash 73 bytes = %v, want ErrPasswordTooLong", err)
	}
	if _, err := hasher.Hash(strings.Repeat("a", 72)); err != nil {
		t.Errorf("hash 72 bytes: %v", err)
	}
}

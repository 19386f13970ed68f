package infrastructure

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/mateusmacedo/go-reservas/internal/auth"
	"github.com/mateusmacedo/go-reservas/internal/domain"
	pkgApp "github.com/mateusmacedo/go-reservas/pkg/application"
	pkgDomain "github.com/mateusmacedo/go-reservas/pkg/domain"
	"github.com/mateusmacedo/go-reservas/pkg/infrastructure/web"
)

const msgAdminOnly = "Acesso restrito a administradores."

// TokenVerifier é a parte da autoridade de tokens usada pelo middleware.
type TokenVerifier interface {
	Verify(ctx context.Context, raw string) (auth.Identity, error)
}

// Authenticate exige um token Bearer válido e recarrega o usuário do banco: o papel
// vale pelo registro atual, não pelo que estava no token. Usuário apagado é 401.
func Authenticate(verifier TokenVerifier, users domain.UserRepository, logger pkgApp.AppLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r)
			if !ok {
				web.Error(w, r, logger, auth.ErrUnauthenticated)
				return
			}

			identity, err := verifier.Verify(r.Context(), raw)
			if err != nil {
				web.Error(w, r, logger, err)
				return
			}

			user, err := users.FindByID(r.Context(), identity.UserID)
			if errors.Is(err, domain.ErrNotFound) {
				web.Error(w, r, logger, auth.ErrUnauthenticated)
				return
			}
			if err != nil {
				web.Error(w, r, logger, pkgDomain.NewInternalError(err))
				return
			}

			ctx := auth.ContextWithPrincipal(r.Context(), auth.Principal{
				User:     user,
				Identity: identity,
				RawToken: raw,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin deixa passar apenas administradores. Vem depois de Authenticate.
func RequireAdmin(logger pkgApp.AppLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !auth.ActorFromContext(r.Context()).IsAdmin() {
				web.Error(w, r, logger, pkgDomain.NewPermissionDeniedError(msgAdminOnly))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

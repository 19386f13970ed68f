package auth

import (
	"context"

	"github.com/mateusmacedo/go-reservas/internal/authz"
	"github.com/mateusmacedo/go-reservas/internal/domain"
)

// Principal é o resultado da autenticação de uma requisição.
type Principal struct {
	User     domain.User
	Identity Identity
	// RawToken é o token apresentado, usado para invalidá-lo no logout.
	RawToken string
}

func (p Principal) Actor() authz.Actor {
	return authz.Actor{ID: p.User.ID, Role: p.User.Role}
}

type principalKey struct{}

func ContextWithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

// ActorFromContext devolve o ator da requisição ou o ator vazio, que a política sempre nega.
func ActorFromContext(ctx context.Context) authz.Actor {
	p, ok := PrincipalFromContext(ctx)
	if !ok {
		return authz.Actor{}
	}
	return p.Actor()
}

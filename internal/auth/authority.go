// Package auth emite, autentica, verifica e invalida os tokens de acesso.
//
// Os tokens são JWT assinados com HS256 e verificáveis sem consulta ao banco; a única
// informação guardada no servidor é a lista de tokens revogados (logout), indexada pelo jti.
package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/mateusmacedo/go-reservas/internal/domain"
	pkgApp "github.com/mateusmacedo/go-reservas/pkg/application"
	pkgDomain "github.com/mateusmacedo/go-reservas/pkg/domain"
)

const (
	TokenType  = "bearer"
	DefaultTTL = time.Hour
)

// Token é a resposta de login/registro.
type Token struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresIn   int       `json:"expires_in"`
	ExpiresAt   time.Time `json:"-"`
}

// Identity é o que um token válido afirma.
type Identity struct {
	UserID    string
	Role      domain.Role
	TokenID   string
	ExpiresAt time.Time
}

type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

type Options struct {
	Secret []byte
	TTL    time.Duration
	Issuer string
	// Now substitui o relógio nos testes.
	Now func() time.Time
}

type Authority struct {
	secret     []byte
	ttl        time.Duration
	issuer     string
	now        func() time.Time
	users      domain.UserRepository
	hasher     PasswordHasher
	revocation RevocationStore
	logger     pkgApp.AppLogger

	dummyOnce sync.Once
	dummyHash string
}

func NewAuthority(opts Options, users domain.UserRepository, hasher PasswordHasher, revocation RevocationStore, logger pkgApp.AppLogger) (*Authority, error) {
	if len(opts.Secret) == 0 {
		return nil, errors.New("auth: empty signing secret")
	}
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Authority{
		secret:     opts.Secret,
		ttl:        opts.TTL,
		issuer:     opts.Issuer,
		now:        opts.Now,
		users:      users,
		hasher:     hasher,
		revocation: revocation,
		logger:     logger,
	}, nil
}

// Issue emite um token para o usuário userID com o papel atual dele.
func (a *Authority) Issue(ctx context.Context, userID string) (Token, domain.User, error) {
	user, err := a.users.FindByID(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return Token{}, domain.User{}, ErrCredential
	}
	if err != nil {
		return Token{}, domain.User{}, pkgDomain.NewInternalError(err)
	}

	token, err := a.sign(user)
	if err != nil {
		return Token{}, domain.User{}, pkgDomain.NewInternalError(err)
	}
	return token, user, nil
}

// Authenticate confere e-mail e senha e emite um token.
func (a *Authority) Authenticate(ctx context.Context, email, password string) (Token, domain.User, error) {
	user, err := a.users.FindByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		// mesmo custo de uma senha errada
		_ = a.hasher.Compare(a.dummy(), password)
		return Token{}, domain.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return Token{}, domain.User{}, pkgDomain.NewInternalError(err)
	}

	if err := a.hasher.Compare(user.PasswordHash, password); err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			return Token{}, domain.User{}, ErrInvalidCredentials
		}
		return Token{}, domain.User{}, pkgDomain.NewInternalError(err)
	}

	token, err := a.sign(user)
	if err != nil {
		return Token{}, domain.User{}, pkgDomain.NewInternalError(err)
	}

	pkgApp.LogInfo(ctx, a.logger, "user authenticated", map[string]interface{}{
		"user_id": user.ID,
	})
	return token, user, nil
}

// Verify resolve o token apresentado. Token malformado, com assinatura errada,
// expirado ou revogado resulta em ErrUnauthenticated.
func (a *Authority) Verify(ctx context.Context, raw string) (Identity, error) {
	identity, err := a.parse(raw)
	if err != nil {
		pkgApp.LogDebug(ctx, a.logger, "token rejected", map[string]interface{}{
			"reason": err.Error(),
		})
		return Identity{}, ErrUnauthenticated
	}

	revoked, err := a.revocation.IsRevoked(ctx, identity.TokenID)
	if err != nil {
		return Identity{}, pkgDomain.NewInternalError(err)
	}
	if revoked {
		return Identity{}, ErrUnauthenticated
	}
	return identity, nil
}

// Invalidate revoga o token. Um token que já não é válido não muda nada.
func (a *Authority) Invalidate(ctx context.Context, raw string) error {
	identity, err := a.parse(raw)
	if err != nil {
		return nil
	}

	revoked, err := a.revocation.IsRevoked(ctx, identity.TokenID)
	if err != nil {
		return pkgDomain.NewInternalError(err)
	}
	if revoked {
		return nil
	}

	if err := a.revocation.Revoke(ctx, identity.TokenID, identity.ExpiresAt); err != nil {
		return pkgDomain.NewInternalError(err)
	}

	pkgApp.LogInfo(ctx, a.logger, "token revoked", map[string]interface{}{
		"user_id":  identity.UserID,
		"token_id": identity.TokenID,
	})
	return nil
}

// TTL é a validade dos tokens emitidos.
func (a *Authority) TTL() time.Duration {
	return a.ttl
}

func (a *Authority) sign(user domain.User) (Token, error) {
	now := a.now()
	expiresAt := now.Add(a.ttl)

	claims := Claims{
		Role: user.Role.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ID:        uuid.NewString(),
			Issuer:    a.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return Token{}, err
	}

	return Token{
		AccessToken: signed,
		TokenType:   TokenType,
		ExpiresIn:   int(a.ttl / time.Second),
		ExpiresAt:   expiresAt,
	}, nil
}

func (a *Authority) parse(raw string) (Identity, error) {
	if raw == "" {
		return Identity{}, errors.New("missing token")
	}

	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.now),
	}
	if a.issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(a.issuer))
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, parserOpts...)
	if err != nil {
		return Identity{}, err
	}
	if !token.Valid {
		return Identity{}, errors.New("invalid token")
	}

	role, err := domain.ParseRole(claims.Role)
	if err != nil {
		return Identity{}, err
	}
	if claims.Subject == "" || claims.ID == "" {
		return Identity{}, errors.New("token without subject or id")
	}

	return Identity{
		UserID:    claims.Subject,
		Role:      role,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

func (a *Authority) dummy() string {
	a.dummyOnce.Do(func() {
		hash, err := a.hasher.Hash(uuid.NewString())
		if err == nil {
			a.dummyHash = hash
		}
	})
	return a.dummyHash
}

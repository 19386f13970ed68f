package server

import (
	"context"
	"errors"

	"github.com/mateusmacedo/go-reservas/internal/auth"
	"github.com/mateusmacedo/go-reservas/internal/config"
	"github.com/mateusmacedo/go-reservas/internal/domain"
	pkgApp "github.com/mateusmacedo/go-reservas/pkg/application"
	pkgDomain "github.com/mateusmacedo/go-reservas/pkg/domain"
)

// EnsureAdmin cria o administrador configurado se o e-mail ainda não existir.
// Um usuário existente com esse e-mail é mantido como está. Devolve true se criou.
func EnsureAdmin(ctx context.Context, store domain.Store, hasher auth.PasswordHasher, cfg config.AdminConfig, idGenerator pkgDomain.IDGenerator[string], logger pkgApp.AppLogger) (bool, error) {
	if cfg.Email == "" {
		return false, nil
	}

	existing, err := store.Users().FindByEmail(ctx, cfg.Email)
	if err == nil {
		if !existing.IsAdmin() {
			pkgApp.LogWarn(ctx, logger, "bootstrap admin email belongs to a non-admin user", nil, map[string]interface{}{
				"user_id": existing.ID,
			})
		}
		return false, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return false, err
	}

	hash, err := hasher.Hash(cfg.Password)
	if err != nil {
		return false, err
	}
	admin := domain.User{
		ID:           idGenerator(),
		Name:         cfg.Name,
		Email:        cfg.Email,
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
	}
	if err := store.Users().Create(ctx, admin); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return false, nil
		}
		return false, err
	}

	pkgApp.LogInfo(ctx, logger, "bootstrap admin created", map[string]interface{}{
		"user_id": admin.ID,
		"email":   admin.Email,
	})
	return true, nil
}

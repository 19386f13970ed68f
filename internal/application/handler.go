package application

import (
	"context"
	"errors"

	"github.com/mateusmacedo/go-reservas/internal/authz"
	"github.com/mateusmacedo/go-reservas/internal/domain"
	pkgApp "github.com/mateusmacedo/go-reservas/pkg/application"
	pkgDomain "github.com/mateusmacedo/go-reservas/pkg/domain"
)

// MsgAccessDenied é a mensagem padrão de permissão negada.
const MsgAccessDenied = "Acesso negado."

// Authorize devolve PermissionDenied com message quando a política nega a ação.
func Authorize(actor authz.Actor, action authz.Action, ownerID, message string) error {
	if authz.Can(actor, action, ownerID) {
		return nil
	}
	if message == "" {
		message = MsgAccessDenied
	}
	return pkgDomain.NewPermissionDeniedError(message)
}

// CheckContext interrompe o manipulador se a requisição já foi cancelada.
func CheckContext(ctx context.Context, logger pkgApp.AppLogger) error {
	if err := ctx.Err(); err != nil {
		pkgApp.LogError(ctx, logger, "Contexto cancelado", err, nil)
		return err
	}
	return nil
}

// StoreError traduz os erros do repositório: ErrNotFound vira NotFound com
// notFoundMessage e o resto vira erro interno.
func StoreError(err error, notFoundMessage string) error {
	var appErr *pkgDomain.Error
	switch {
	case err == nil:
		return nil
	case errors.As(err, &appErr):
		return err
	case errors.Is(err, domain.ErrNotFound):
		return pkgDomain.NewNotFoundError(notFoundMessage)
	default:
		return pkgDomain.NewInternalError(err)
	}
}

// ValidationError devolve nil quando fields está vazio.
func ValidationError(fields map[string][]string) error {
	if len(fields) == 0 {
		return nil
	}
	return pkgDomain.NewValidationError(fields)
}

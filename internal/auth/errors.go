package auth

import (
	"errors"

	pkgDomain "github.com/mateusmacedo/go-reservas/pkg/domain"
)

var (
	// ErrInvalidCredentials não diz se o e-mail existe ou se a senha está errada.
	ErrInvalidCredentials = pkgDomain.NewError(pkgDomain.KindUnauthenticated, "Credenciais inválidas")
	ErrUnauthenticated    = pkgDomain.NewError(pkgDomain.KindUnauthenticated, "Não autenticado.")
	// ErrCredential é devolvido por Issue quando o usuário não existe.
	ErrCredential = pkgDomain.NewError(pkgDomain.KindUnauthenticated, "Não foi possível emitir o token.")
	// ErrPasswordTooLong: o bcrypt só aceita senhas de até 72 bytes.
	ErrPasswordTooLong = errors.New("password longer than 72 bytes")
)

package application

import (
	"github.com/mateusmacedo/go-reservas/internal/application"
	"github.com/mateusmacedo/go-reservas/internal/authz"
	"github.com/mateusmacedo/go-reservas/internal/domain"
	pkgApp "github.com/mateusmacedo/go-reservas/pkg/application"
	pkgDomain "github.com/mateusmacedo/go-reservas/pkg/domain"
)

const (
	RegisterUserCommandName  = "RegisterUser"
	CreateUserCommandName    = "CreateUser"
	UpdateUserCommandName    = "UpdateUser"
	DeleteUserCommandName    = "DeleteUser"
	UpdateProfileCommandName = "UpdateProfile"
	DeleteAccountCommandName = "DeleteAccount"
	LogoutCommandName        = "Logout"
)

// UserFields são os campos informados; nil significa "não alterar".
// Password vem em texto puro e é transformado em hash pelo manipulador.
type UserFields struct {
	Name     *string
	Email    *string
	Password *string
	Role     *domain.Role
}

// UserCommandData serve a todos os comandos de usuário. No registro e na criação
// UserID já vem gerado; RawToken é o token da requisição (logout e exclusão da conta).
type UserCommandData struct {
	Actor    authz.Actor
	UserID   string
	Fields   UserFields
	RawToken string
}

type UserCommand = pkgDomain.Command[UserCommandData]

type CommandBus = pkgApp.CommandBus[UserCommand, UserCommandData]

func NewRegisterUserCommand(data UserCommandData) UserCommand {
	return application.NewCommand(RegisterUserCommandName, data)
}

func NewCreateUserCommand(data UserCommandData) UserCommand {
	return application.NewCommand(CreateUserCommandName, data)
}

func NewUpdateUserCommand(data UserCommandData) UserCommand {
	return application.NewCommand(UpdateUserCommandName, data)
}

func NewDeleteUserCommand(data UserCommandData) UserCommand {
	return application.NewCommand(DeleteUserCommandName, data)
}

func NewUpdateProfileCommand(data UserCommandData) UserCommand {
	return application.NewCommand(UpdateProfileCommandName, data)
}

func NewDeleteAccountCommand(data UserCommandData) UserCommand {
	return application.NewCommand(DeleteAccountCommandName, data)
}

func NewLogoutCommand(data UserCommandData) UserCommand {
	return application.NewCommand(LogoutCommandName, data)
}

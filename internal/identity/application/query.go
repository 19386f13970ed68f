package application

import (
	"github.com/mateusmacedo/go-reservas/internal/application"
	"github.com/mateusmacedo/go-reservas/internal/auth"
	"github.com/mateusmacedo/go-reservas/internal/authz"
	"github.com/mateusmacedo/go-reservas/internal/domain"
	pkgApp "github.com/mateusmacedo/go-reservas/pkg/application"
	pkgDomain "github.com/mateusmacedo/go-reservas/pkg/domain"
)

const (
	ListUsersQueryName = "ListUsers"
	FindUserQueryName  = "FindUser"
	ProfileQueryName   = "Profile"

	LoginQueryName        = "Login"
	IssueSessionQueryName = "IssueSession"
)

type UserQueryData struct {
	Actor  authz.Actor
	UserID string
}

type UserQuery = pkgDomain.Query[UserQueryData]

type ListQueryBus = pkgApp.QueryBus[UserQuery, UserQueryData, []domain.User]

type FindQueryBus = pkgApp.QueryBus[UserQuery, UserQueryData, domain.User]

func NewListUsersQuery(data UserQueryData) UserQuery {
	return application.NewQuery(ListUsersQueryName, data)
}

func NewFindUserQuery(data UserQueryData) UserQuery {
	return application.NewQuery(FindUserQueryName, data)
}

func NewProfileQuery(data UserQueryData) UserQuery {
	return application.NewQuery(ProfileQueryName, data)
}

// SessionQueryData leva as credenciais do login ou, depois do registro, o UserID.
type SessionQueryData struct {
	Email    string
	Password string
	UserID   string
}

// Session é o token emitido com o usuário a quem pertence.
type Session struct {
	Token auth.Token
	User  domain.User
}

type SessionQuery = pkgDomain.Query[SessionQueryData]

type SessionQueryBus = pkgApp.QueryBus[SessionQuery, SessionQueryData, Session]

func NewLoginQuery(data SessionQueryData) SessionQuery {
	return application.NewQuery(LoginQueryName, data)
}

func NewIssueSessionQuery(data SessionQueryData) SessionQuery {
	return application.NewQuery(IssueSessionQueryName, data)
}

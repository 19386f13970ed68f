package identity

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	internalApp "github.com/mateusmacedo/go-reservas/internal/application"
	"github.com/mateusmacedo/go-reservas/internal/auth"
	"github.com/mateusmacedo/go-reservas/internal/domain"
	"github.com/mateusmacedo/go-reservas/internal/identity/application"
	"github.com/mateusmacedo/go-reservas/internal/identity/infrastructure"
	pkgApp "github.com/mateusmacedo/go-reservas/pkg/application"
	pkgDomain "github.com/mateusmacedo/go-reservas/pkg/domain"
	pkgInfra "github.com/mateusmacedo/go-reservas/pkg/infrastructure"
)

// IdentitySlice reúne sessão (registro, login, logout), perfil e gestão de usuários.
type IdentitySlice struct {
	httpHandler *infrastructure.IdentityHTTPHandler
}

func NewIdentitySlice(
	store domain.Store,
	tokens application.TokenAuthority,
	hasher auth.PasswordHasher,
	eventBus internalApp.EventBus,
	idGenerator pkgDomain.IDGenerator[string],
	logger pkgApp.AppLogger,
) *IdentitySlice {
	commandBus := pkgInfra.NewSimpleCommandBus[application.UserCommand, application.UserCommandData](logger)
	listBus := pkgInfra.NewSimpleQueryBus[application.UserQuery, application.UserQueryData, []domain.User](logger)
	findBus := pkgInfra.NewSimpleQueryBus[application.UserQuery, application.UserQueryData, domain.User](logger)
	sessionBus := pkgInfra.NewSimpleQueryBus[application.SessionQuery, application.SessionQueryData, application.Session](logger)

	commandBus.RegisterHandler(application.RegisterUserCommandName, application.NewRegisterUserHandler(store, hasher, eventBus, logger))
	commandBus.RegisterHandler(application.CreateUserCommandName, application.NewCreateUserHandler(store, hasher, eventBus, logger))
	commandBus.RegisterHandler(application.UpdateUserCommandName, application.NewUpdateUserHandler(store, hasher, eventBus, logger))
	commandBus.RegisterHandler(application.UpdateProfileCommandName, application.NewUpdateProfileHandler(store, hasher, eventBus, logger))
	commandBus.RegisterHandler(application.DeleteUserCommandName, application.NewDeleteUserHandler(store, eventBus, logger))
	commandBus.RegisterHandler(application.DeleteAccountCommandName, application.NewDeleteAccountHandler(store, tokens, eventBus, logger))
	commandBus.RegisterHandler(application.LogoutCommandName, application.NewLogoutHandler(tokens, eventBus, logger))
	listBus.RegisterHandler(application.ListUsersQueryName, application.NewListUsersHandler(store, logger))
	findBus.RegisterHandler(application.FindUserQueryName, application.NewFindUserHandler(store, logger))
	findBus.RegisterHandler(application.ProfileQueryName, application.NewProfileHandler(store, logger))
	sessionBus.RegisterHandler(application.LoginQueryName, application.NewLoginHandler(tokens, logger))
	sessionBus.RegisterHandler(application.IssueSessionQueryName, application.NewIssueSessionHandler(tokens, logger))

	return &IdentitySlice{
		httpHandler: infrastructure.NewIdentityHTTPHandler(commandBus, listBus, findBus, sessionBus, idGenerator, logger),
	}
}

func (s *IdentitySlice) RegisterPublicRoutes(router chi.Router) {
	s.httpHandler.RegisterPublicRoutes(router)
}

func (s *IdentitySlice) RegisterRoutes(router chi.Router, requireAdmin func(http.Handler) http.Handler) {
	s.httpHandler.RegisterRoutes(router, requireAdmin)
}

package infrastructure

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mateusmacedo/go-reservas/internal/auth"
	"github.com/mateusmacedo/go-reservas/internal/domain"
	"github.com/mateusmacedo/go-reservas/internal/identity/application"
	pkgApp "github.com/mateusmacedo/go-reservas/pkg/application"
	pkgDomain "github.com/mateusmacedo/go-reservas/pkg/domain"
	"github.com/mateusmacedo/go-reservas/pkg/infrastructure/web"
)

const requestTimeout = 10 * time.Second

type registerRequest struct {
	Name     string `json:"name" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// loginRequest não tem validação: credenciais ausentes são apenas credenciais inválidas.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type createUserRequest struct {
	Name     string  `json:"name" validate:"required,max=255"`
	Email    string  `json:"email" validate:"required,email,max=255"`
	Password string  `json:"password" validate:"required,min=6,max=72"`
	Role     *string `json:"role" validate:"omitempty,oneof=admin user"`
}

type updateUserRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=1,max=255"`
	Email    *string `json:"email" validate:"omitempty,email,max=255"`
	Password *string `json:"password" validate:"omitempty,min=6,max=72"`
	Role     *string `json:"role" validate:"omitempty,oneof=admin user"`
}

type updateProfileRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=1,max=255"`
	Email    *string `json:"email" validate:"omitempty,email,max=255"`
	Password *string `json:"password" validate:"omitempty,min=6,max=72"`
}

// sessionResponse é o corpo de login e registro.
type sessionResponse struct {
	Message     string            `json:"message,omitempty"`
	AccessToken string            `json:"access_token"`
	TokenType   string            `json:"token_type"`
	ExpiresIn   int               `json:"expires_in"`
	User        domain.PublicUser `json:"user"`
}

type IdentityHTTPHandler struct {
	commandBus  application.CommandBus
	listBus     application.ListQueryBus
	findBus     application.FindQueryBus
	sessionBus  application.SessionQueryBus
	idGenerator pkgDomain.IDGenerator[string]
	logger      pkgApp.AppLogger
}

func NewIdentityHTTPHandler(
	commandBus application.CommandBus,
	listBus application.ListQueryBus,
	findBus application.FindQueryBus,
	sessionBus application.SessionQueryBus,
	idGenerator pkgDomain.IDGenerator[string],
	logger pkgApp.AppLogger,
) *IdentityHTTPHandler {
	return &IdentityHTTPHandler{
		commandBus:  commandBus,
		listBus:     listBus,
		findBus:     findBus,
		sessionBus:  sessionBus,
		idGenerator: idGenerator,
		logger:      logger,
	}
}

func (h *IdentityHTTPHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := web.Bind(r, &req); err != nil {
		web.Error(w, r, h.logger, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	id := h.idGenerator()
	err := h.commandBus.Dispatch(ctx, application.NewRegisterUserCommand(application.UserCommandData{
		UserID: id,
		Fields: application.UserFields{
			Name:     &req.Name,
			Email:    &req.Email,
			Password: &req.Password,
		},
	}))
	if err != nil {
		web.Error(w, r, h.logger, err)
		return
	}

	session, err := h.sessionBus.Dispatch(ctx, application.NewIssueSessionQuery(application.SessionQueryData{UserID: id}))
	if err != nil {
		web.Error(w, r, h.logger, err)
		return
	}
	web.JSON(w, http.StatusCreated, newSessionResponse("Utilizador registado com sucesso!", session))
}

func (h *IdentityHTTPHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := web.Bind(r, &req); err != nil {
		web.Error(w, r, h.logger, auth.ErrInvalidCredentials)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	session, err := h.sessionBus.Dispatch(ctx, application.NewLoginQuery(application.SessionQueryData{
		Email:    req.Email,
		Password: req.Password,
	}))
	if err != nil {
		web.Error(w, r, h.logger, err)
		return
	}
	web.JSON(w, http.StatusOK, newSessionResponse("", session))
}

func (h *IdentityHTTPHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	principal, _ := auth.PrincipalFromContext(ctx)
	err := h.commandBus.Dispatch(ctx, application.NewLogoutCommand(application.UserCommandData{
		Actor:    principal.Actor(),
		RawToken: principal.RawToken,
	}))
	if err != nil {
		web.Error(w, r, h.logger, err)
		return
	}
	web.Message(w, http.StatusOK, "Logout com sucesso")
}

func (h *IdentityHTTPHandler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	actor := auth.ActorFromContext(ctx)
	user, err := h.findBus.Dispatch(ctx, application.NewProfileQuery(application.UserQueryData{
		Actor:  actor,
		UserID: actor.ID,
	}))
	if err != nil {
		web.Error(w, r, h.logger, err)
		return
	}
	web.JSON(w, http.StatusOK, user)
}

func (h *IdentityHTTPHandler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req updateProfileRequest
	if err := web.Bind(r, &req); err != nil {
		web.Error(w, r, h.logger, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	actor := auth.ActorFromContext(ctx)
	err := h.commandBus.Dispatch(ctx, application.NewUpdateProfileCommand(application.UserCommandData{
		Actor:  actor,
		UserID: actor.ID,
		Fields: application.UserFields{
			Name:     req.Name,
			Email:    req.Email,
			Password: req.Password,
		},
	}))
	if err != nil {
		web.Error(w, r, h.logger, err)
		return
	}

	user, err := h.findBus.Dispatch(ctx, application.NewProfileQuery(application.UserQueryData{
		Actor:  actor,
		UserID: actor.ID,
	}))
	if err != nil {
		web.Error(w, r, h.logger, err)
		return
	}
	web.JSON(w, http.StatusOK, map[string]interface{}{
		"message": "Perfil atualizado com sucesso!",
		"user":    user,
	})
}

func (h *IdentityHTTPHandler) HandleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	principal, _ := auth.PrincipalFromContext(ctx)
	err := h.commandBus.Dispatch(ctx, application.NewDeleteAccountCommand(application.UserCommandData{
		Actor:    principal.Actor(),
		UserID:   principal.User.ID,
		RawToken: principal.RawToken,
	}))
	if err != nil {
		web.Error(w, r, h.logger, err)
		return
	}
	web.Message(w, http.StatusOK, "Conta eliminada com sucesso!")
}

func (h *IdentityHTTPHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	users, err := h.listBus.Dispatch(ctx, application.NewListUsersQuery(application.UserQueryData{
		Actor: auth.ActorFromContext(ctx),
	}))
	if err != nil {
		web.Error(w, r, h.logger, err)
		return
	}
	web.JSON(w, http.StatusOK, users)
}

func (h *IdentityHTTPHandler) HandleShow(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	user, err := h.find(ctx, chi.URLParam(r, "id"))
	if err != nil {
		web.Error(w, r, h.logger, err)
		return
	}
	web.JSON(w, http.StatusOK, user)
}

func (h *IdentityHTTPHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := web.Bind(r, &req); err != nil {
		web.Error(w, r, h.logger, err)
		return
	}

	role, err := parseRole(req.Role)
	if err != nil {
		web.Error(w, r, h.logger, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	id := h.idGenerator()
	err = h.commandBus.Dispatch(ctx, application.NewCreateUserCommand(application.UserCommandData{
		Actor:  auth.ActorFromContext(ctx),
		UserID: id,
		Fields: application.UserFields{
			Name:     &req.Name,
			Email:    &req.Email,
			Password: &req.Password,
			Role:     role,
		},
	}))
	if err != nil {
		web.Error(w, r, h.logger, err)
		return
	}

	user, err := h.find(ctx, id)
	if err != nil {
		web.Error(w, r, h.logger, err)
		return
	}
	web.JSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Utilizador criado com sucesso!",
		"user":    user,
	})
}

func (h *IdentityHTTPHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req updateUserRequest
	if err := web.Bind(r, &req); err != nil {
		web.Error(w, r, h.logger, err)
		return
	}

	role, err := parseRole(req.Role)
	if err != nil {
		web.Error(w, r, h.logger, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	id := chi.URLParam(r, "id")
	err = h.commandBus.Dispatch(ctx, application.NewUpdateUserCommand(application.UserCommandData{
		Actor:  auth.ActorFromContext(ctx),
		UserID: id,
		Fields: application.UserFields{
			Name:     req.Name,
			Email:    req.Email,
			Password: req.Password,
			Role:     role,
		},
	}))
	if err != nil {
		web.Error(w, r, h.logger, err)
		return
	}

	user, err := h.find(ctx, id)
	if err != nil {
		web.Error(w, r, h.logger, err)
		return
	}
	web.JSON(w, http.StatusOK, map[string]interface{}{
		"message": "Utilizador atualizado com sucesso!",
		"user":    user,
	})
}

func (h *IdentityHTTPHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	err := h.commandBus.Dispatch(ctx, application.NewDeleteUserCommand(application.UserCommandData{
		Actor:  auth.ActorFromContext(ctx),
		UserID: chi.URLParam(r, "id"),
	}))
	if err != nil {
		web.Error(w, r, h.logger, err)
		return
	}
	web.Message(w, http.StatusOK, "Utilizador eliminado com sucesso.")
}

// RegisterPublicRoutes registra registro e login, que não exigem token.
func (h *IdentityHTTPHandler) RegisterPublicRoutes(router chi.Router) {
	router.Post("/register", h.HandleRegister)
	router.Post("/login", h.HandleLogin)
}

// RegisterRoutes registra as rotas autenticadas; a gestão de usuários passa por requireAdmin.
func (h *IdentityHTTPHandler) RegisterRoutes(router chi.Router, requireAdmin func(http.Handler) http.Handler) {
	router.Post("/logout", h.HandleLogout)
	router.Get("/perfil", h.HandleProfile)
	router.Put("/perfil", h.HandleUpdateProfile)
	router.Delete("/user", h.HandleDeleteAccount)

	router.Group(func(admin chi.Router) {
		admin.Use(requireAdmin)
		admin.Get("/users", h.HandleList)
		admin.Post("/users", h.HandleCreate)
		admin.Get("/users/{id}", h.HandleShow)
		admin.Put("/users/{id}", h.HandleUpdate)
		admin.Patch("/users/{id}", h.HandleUpdate)
		admin.Delete("/users/{id}", h.HandleDelete)
	})
}

func (h *IdentityHTTPHandler) find(ctx context.Context, id string) (domain.User, error) {
	return h.findBus.Dispatch(ctx, application.NewFindUserQuery(application.UserQueryData{
		Actor:  auth.ActorFromContext(ctx),
		UserID: id,
	}))
}

func newSessionResponse(message string, session application.Session) sessionResponse {
	return sessionResponse{
		Message:     message,
		AccessToken: session.Token.AccessToken,
		TokenType:   session.Token.TokenType,
		ExpiresIn:   session.Token.ExpiresIn,
		User:        session.User.Public(),
	}
}

func parseRole(raw *string) (*domain.Role, error) {
	if raw == nil {
		return nil, nil
	}
	role, err := domain.ParseRole(*raw)
	if err != nil {
		return nil, pkgDomain.NewFieldError("role", "O campo role selecionado é inválido.")
	}
	return &role, nil
}

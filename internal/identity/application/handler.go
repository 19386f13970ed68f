package application

import (
	"context"
	"errors"
	"strconv"

	"github.com/mateusmacedo/go-reservas/internal/application"
	"github.com/mateusmacedo/go-reservas/internal/auth"
	"github.com/mateusmacedo/go-reservas/internal/authz"
	"github.com/mateusmacedo/go-reservas/internal/domain"
	pkgApp "github.com/mateusmacedo/go-reservas/pkg/application"
	pkgDomain "github.com/mateusmacedo/go-reservas/pkg/domain"
)

const (
	MsgUserNotFound = "Utilizador não encontrado."

	msgEmailTaken         = "O email já está em uso."
	msgPasswordRequired   = "O campo password é obrigatório."
	msgPasswordTooLong    = "O campo password não pode ter mais de 72 bytes."
	msgDeleteSelfByAdmin  = "Não é possível eliminar a sua própria conta através desta rota."
	msgAdminAccountDelete = "Administradores não podem eliminar suas próprias contas por motivos de segurança."
	msgLogoutFailed       = "Falha ao fazer logout"
)

// TokenAuthority é a parte da autoridade de tokens usada pelas sessões.
type TokenAuthority interface {
	Issue(ctx context.Context, userID string) (auth.Token, domain.User, error)
	Authenticate(ctx context.Context, email, password string) (auth.Token, domain.User, error)
	Invalidate(ctx context.Context, raw string) error
}

func userChange(actor authz.Actor, user domain.User) domain.ChangeData {
	return domain.ChangeData{
		Entity:   "user",
		EntityID: user.ID,
		ActorID:  actor.ID,
		Details: map[string]string{
			"email": user.Email,
			"role":  user.Role.String(),
		},
	}
}

// userWriter concentra a gravação de usuários: hash da senha, e-mail único e validação.
type userWriter struct {
	store    domain.Store
	hasher   auth.PasswordHasher
	eventBus application.EventBus
	logger   pkgApp.AppLogger
}

func (w userWriter) apply(user *domain.User, fields UserFields) error {
	if fields.Name != nil {
		user.Name = *fields.Name
	}
	if fields.Email != nil {
		user.Email = *fields.Email
	}
	if fields.Role != nil {
		user.Role = *fields.Role
	}
	if fields.Password != nil {
		hash, err := w.hasher.Hash(*fields.Password)
		if errors.Is(err, auth.ErrPasswordTooLong) {
			return pkgDomain.NewFieldError("password", msgPasswordTooLong)
		}
		if err != nil {
			return pkgDomain.NewInternalError(err)
		}
		user.PasswordHash = hash
	}
	return nil
}

// ensureEmailFree falha se email pertence a outro usuário que não selfID.
func (w userWriter) ensureEmailFree(ctx context.Context, email, selfID string) error {
	existing, err := w.store.Users().FindByEmail(ctx, email)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return nil
	case err != nil:
		return pkgDomain.NewInternalError(err)
	case existing.ID != selfID:
		return pkgDomain.NewFieldError("email", msgEmailTaken)
	default:
		return nil
	}
}

func (w userWriter) create(ctx context.Context, userID string, fields UserFields) (domain.User, error) {
	if fields.Password == nil || *fields.Password == "" {
		return domain.User{}, pkgDomain.NewFieldError("password", msgPasswordRequired)
	}

	user := domain.User{ID: userID, Role: domain.RoleUser}
	if err := w.apply(&user, fields); err != nil {
		return domain.User{}, err
	}
	if err := application.ValidationError(user.Validate()); err != nil {
		return domain.User{}, err
	}
	if err := w.ensureEmailFree(ctx, user.Email, ""); err != nil {
		return domain.User{}, err
	}

	if err := w.store.Users().Create(ctx, user); err != nil {
		pkgApp.LogError(ctx, w.logger, "Erro ao salvar utilizador", err, map[string]interface{}{"user_id": user.ID})
		return domain.User{}, userStoreError(err)
	}
	return user, nil
}

func (w userWriter) update(ctx context.Context, userID string, fields UserFields) (domain.User, error) {
	user, err := w.store.Users().FindByID(ctx, userID)
	if err != nil {
		return domain.User{}, application.StoreError(err, MsgUserNotFound)
	}

	if fields.Email != nil && *fields.Email != user.Email {
		if err := w.ensureEmailFree(ctx, *fields.Email, user.ID); err != nil {
			return domain.User{}, err
		}
	}
	if err := w.apply(&user, fields); err != nil {
		return domain.User{}, err
	}
	if err := application.ValidationError(user.Validate()); err != nil {
		return domain.User{}, err
	}

	if err := w.store.Users().Update(ctx, user); err != nil {
		pkgApp.LogError(ctx, w.logger, "Erro ao atualizar utilizador", err, map[string]interface{}{"user_id": user.ID})
		return domain.User{}, userStoreError(err)
	}
	return user, nil
}

// userStoreError trata o e-mail duplicado detectado pelo banco como erro de validação.
func userStoreError(err error) error {
	if errors.Is(err, domain.ErrDuplicate) {
		return pkgDomain.NewFieldError("email", msgEmailTaken)
	}
	return application.StoreError(err, MsgUserNotFound)
}

type registerUserHandler struct {
	userWriter
}

func NewRegisterUserHandler(store domain.Store, hasher auth.PasswordHasher, eventBus application.EventBus, logger pkgApp.AppLogger) pkgApp.CommandHandler[UserCommand, UserCommandData] {
	return &registerUserHandler{userWriter{store: store, hasher: hasher, eventBus: eventBus, logger: logger}}
}

// Handle cria a conta pública. O papel é sempre user.
func (h *registerUserHandler) Handle(ctx context.Context, command UserCommand) error {
	if err := application.CheckContext(ctx, h.logger); err != nil {
		return err
	}

	data := command.Payload()
	fields := data.Fields
	fields.Role = nil

	user, err := h.create(ctx, data.UserID, fields)
	if err != nil {
		return err
	}

	pkgApp.LogInfo(ctx, h.logger, "Utilizador registado", map[string]interface{}{"user_id": user.ID})
	application.PublishChange(ctx, h.eventBus, h.logger, domain.UserRegisteredEvent, userChange(authz.Actor{ID: user.ID, Role: user.Role}, user))
	return nil
}

type createUserHandler struct {
	userWriter
}

func NewCreateUserHandler(store domain.Store, hasher auth.PasswordHasher, eventBus application.EventBus, logger pkgApp.AppLogger) pkgApp.CommandHandler[UserCommand, UserCommandData] {
	return &createUserHandler{userWriter{store: store, hasher: hasher, eventBus: eventBus, logger: logger}}
}

func (h *createUserHandler) Handle(ctx context.Context, command UserCommand) error {
	if err := application.CheckContext(ctx, h.logger); err != nil {
		return err
	}

	data := command.Payload()
	if err := application.Authorize(data.Actor, authz.UserCreate, "", ""); err != nil {
		return err
	}

	user, err := h.create(ctx, data.UserID, data.Fields)
	if err != nil {
		return err
	}

	pkgApp.LogInfo(ctx, h.logger, "Utilizador criado", map[string]interface{}{"user_id": user.ID, "actor_id": data.Actor.ID})
	application.PublishChange(ctx, h.eventBus, h.logger, domain.UserCreatedEvent, userChange(data.Actor, user))
	return nil
}

type updateUserHandler struct {
	userWriter
}

func NewUpdateUserHandler(store domain.Store, hasher auth.PasswordHasher, eventBus application.EventBus, logger pkgApp.AppLogger) pkgApp.CommandHandler[UserCommand, UserCommandData] {
	return &updateUserHandler{userWriter{store: store, hasher: hasher, eventBus: eventBus, logger: logger}}
}

func (h *updateUserHandler) Handle(ctx context.Context, command UserCommand) error {
	if err := application.CheckContext(ctx, h.logger); err != nil {
		return err
	}

	data := command.Payload()
	if err := application.Authorize(data.Actor, authz.UserUpdate, data.UserID, ""); err != nil {
		return err
	}

	user, err := h.update(ctx, data.UserID, data.Fields)
	if err != nil {
		return err
	}

	pkgApp.LogInfo(ctx, h.logger, "Utilizador atualizado", map[string]interface{}{"user_id": user.ID, "actor_id": data.Actor.ID})
	application.PublishChange(ctx, h.eventBus, h.logger, domain.UserUpdatedEvent, userChange(data.Actor, user))
	return nil
}

type updateProfileHandler struct {
	userWriter
}

func NewUpdateProfileHandler(store domain.Store, hasher auth.PasswordHasher, eventBus application.EventBus, logger pkgApp.AppLogger) pkgApp.CommandHandler[UserCommand, UserCommandData] {
	return &updateProfileHandler{userWriter{store: store, hasher: hasher, eventBus: eventBus, logger: logger}}
}

// Handle altera nome, e-mail e senha do próprio usuário. O papel nunca muda por aqui.
func (h *updateProfileHandler) Handle(ctx context.Context, command UserCommand) error {
	if err := application.CheckContext(ctx, h.logger); err != nil {
		return err
	}

	data := command.Payload()
	if err := application.Authorize(data.Actor, authz.ProfileUpdate, data.UserID, ""); err != nil {
		return err
	}

	fields := data.Fields
	fields.Role = nil
	user, err := h.update(ctx, data.UserID, fields)
	if err != nil {
		return err
	}

	pkgApp.LogInfo(ctx, h.logger, "Perfil atualizado", map[string]interface{}{"user_id": user.ID})
	application.PublishChange(ctx, h.eventBus, h.logger, domain.UserUpdatedEvent, userChange(data.Actor, user))
	return nil
}

type deleteUserHandler struct {
	store    domain.Store
	eventBus application.EventBus
	logger   pkgApp.AppLogger
}

func NewDeleteUserHandler(store domain.Store, eventBus application.EventBus, logger pkgApp.AppLogger) pkgApp.CommandHandler[UserCommand, UserCommandData] {
	return &deleteUserHandler{store: store, eventBus: eventBus, logger: logger}
}

// Handle apaga outro usuário e as reservas dele numa única transação.
func (h *deleteUserHandler) Handle(ctx context.Context, command UserCommand) error {
	if err := application.CheckContext(ctx, h.logger); err != nil {
		return err
	}

	data := command.Payload()
	if err := application.Authorize(data.Actor, authz.UserDelete, "", ""); err != nil {
		return err
	}

	var (
		user    domain.User
		removed int64
	)
	err := h.store.Transaction(ctx, func(tx domain.Store) error {
		var err error
		if user, err = tx.Users().FindByID(ctx, data.UserID); err != nil {
			return err
		}
		if user.ID == data.Actor.ID {
			return pkgDomain.NewInvalidOperationError(msgDeleteSelfByAdmin)
		}
		if err := application.Authorize(data.Actor, authz.UserDelete, user.ID, ""); err != nil {
			return err
		}
		if removed, err = tx.Reservations().DeleteByUser(ctx, user.ID); err != nil {
			return err
		}
		return tx.Users().Delete(ctx, user.ID)
	})
	if err != nil {
		return application.StoreError(err, MsgUserNotFound)
	}

	pkgApp.LogInfo(ctx, h.logger, "Utilizador eliminado", map[string]interface{}{
		"user_id":              user.ID,
		"reservations_removed": removed,
		"actor_id":             data.Actor.ID,
	})
	change := userChange(data.Actor, user)
	change.Details["reservas_removidas"] = strconv.FormatInt(removed, 10)
	application.PublishChange(ctx, h.eventBus, h.logger, domain.UserDeletedEvent, change)
	return nil
}

type deleteAccountHandler struct {
	store    domain.Store
	tokens   TokenAuthority
	eventBus application.EventBus
	logger   pkgApp.AppLogger
}

func NewDeleteAccountHandler(store domain.Store, tokens TokenAuthority, eventBus application.EventBus, logger pkgApp.AppLogger) pkgApp.CommandHandler[UserCommand, UserCommandData] {
	return &deleteAccountHandler{store: store, tokens: tokens, eventBus: eventBus, logger: logger}
}

// Handle apaga a conta do próprio ator: reservas, usuário e o token atual na mesma
// transação. Se a revogação falhar nada é apagado. A lista de revogação não participa
// da transação: se o commit falhar depois dela, o token fica revogado e a conta continua.
func (h *deleteAccountHandler) Handle(ctx context.Context, command UserCommand) error {
	if err := application.CheckContext(ctx, h.logger); err != nil {
		return err
	}

	data := command.Payload()
	if data.Actor.IsAdmin() {
		return pkgDomain.NewInvalidOperationError(msgAdminAccountDelete)
	}
	if err := application.Authorize(data.Actor, authz.AccountDelete, data.Actor.ID, ""); err != nil {
		return err
	}

	var (
		user    domain.User
		removed int64
	)
	err := h.store.Transaction(ctx, func(tx domain.Store) error {
		var err error
		if user, err = tx.Users().FindByID(ctx, data.Actor.ID); err != nil {
			return err
		}
		if removed, err = tx.Reservations().DeleteByUser(ctx, user.ID); err != nil {
			return err
		}
		if err = tx.Users().Delete(ctx, user.ID); err != nil {
			return err
		}
		return h.tokens.Invalidate(ctx, data.RawToken)
	})
	if err != nil {
		pkgApp.LogError(ctx, h.logger, "Erro ao eliminar conta", err, map[string]interface{}{"user_id": data.Actor.ID})
		return application.StoreError(err, MsgUserNotFound)
	}

	pkgApp.LogInfo(ctx, h.logger, "Conta eliminada", map[string]interface{}{
		"user_id":              user.ID,
		"reservations_removed": removed,
	})
	change := userChange(data.Actor, user)
	change.Details["reservas_removidas"] = strconv.FormatInt(removed, 10)
	application.PublishChange(ctx, h.eventBus, h.logger, domain.UserDeletedEvent, change)
	return nil
}

type logoutHandler struct {
	tokens   TokenAuthority
	eventBus application.EventBus
	logger   pkgApp.AppLogger
}

func NewLogoutHandler(tokens TokenAuthority, eventBus application.EventBus, logger pkgApp.AppLogger) pkgApp.CommandHandler[UserCommand, UserCommandData] {
	return &logoutHandler{tokens: tokens, eventBus: eventBus, logger: logger}
}

func (h *logoutHandler) Handle(ctx context.Context, command UserCommand) error {
	if err := application.CheckContext(ctx, h.logger); err != nil {
		return err
	}

	data := command.Payload()
	if err := h.tokens.Invalidate(ctx, data.RawToken); err != nil {
		pkgApp.LogError(ctx, h.logger, "Erro ao invalidar token", err, map[string]interface{}{"user_id": data.Actor.ID})
		return pkgDomain.WrapError(pkgDomain.KindInternal, msgLogoutFailed, err)
	}

	application.PublishChange(ctx, h.eventBus, h.logger, domain.UserLoggedOutEvent, domain.ChangeData{
		Entity:   "user",
		EntityID: data.Actor.ID,
		ActorID:  data.Actor.ID,
	})
	return nil
}

type listUsersHandler struct {
	store  domain.Store
	logger pkgApp.AppLogger
}

func NewListUsersHandler(store domain.Store, logger pkgApp.AppLogger) pkgApp.QueryHandler[UserQuery, UserQueryData, []domain.User] {
	return &listUsersHandler{store: store, logger: logger}
}

func (h *listUsersHandler) Handle(ctx context.Context, query UserQuery) ([]domain.User, error) {
	if err := application.CheckContext(ctx, h.logger); err != nil {
		return nil, err
	}
	if err := application.Authorize(query.Payload().Actor, authz.UserList, "", ""); err != nil {
		return nil, err
	}

	users, err := h.store.Users().List(ctx)
	if err != nil {
		pkgApp.LogError(ctx, h.logger, "Erro ao listar utilizadores", err, nil)
		return nil, pkgDomain.NewInternalError(err)
	}
	return users, nil
}

type findUserHandler struct {
	store  domain.Store
	logger pkgApp.AppLogger
}

func NewFindUserHandler(store domain.Store, logger pkgApp.AppLogger) pkgApp.QueryHandler[UserQuery, UserQueryData, domain.User] {
	return &findUserHandler{store: store, logger: logger}
}

// Handle devolve o usuário com as reservas.
func (h *findUserHandler) Handle(ctx context.Context, query UserQuery) (domain.User, error) {
	if err := application.CheckContext(ctx, h.logger); err != nil {
		return domain.User{}, err
	}

	data := query.Payload()
	if err := application.Authorize(data.Actor, authz.UserView, data.UserID, ""); err != nil {
		return domain.User{}, err
	}

	user, err := h.store.Users().FindWithReservations(ctx, data.UserID)
	if err != nil {
		return domain.User{}, application.StoreError(err, MsgUserNotFound)
	}
	return user, nil
}

type profileHandler struct {
	store  domain.Store
	logger pkgApp.AppLogger
}

func NewProfileHandler(store domain.Store, logger pkgApp.AppLogger) pkgApp.QueryHandler[UserQuery, UserQueryData, domain.User] {
	return &profileHandler{store: store, logger: logger}
}

func (h *profileHandler) Handle(ctx context.Context, query UserQuery) (domain.User, error) {
	if err := application.CheckContext(ctx, h.logger); err != nil {
		return domain.User{}, err
	}

	data := query.Payload()
	if err := application.Authorize(data.Actor, authz.ProfileView, data.UserID, ""); err != nil {
		return domain.User{}, err
	}

	user, err := h.store.Users().FindByID(ctx, data.UserID)
	if err != nil {
		return domain.User{}, application.StoreError(err, MsgUserNotFound)
	}
	return user, nil
}

type loginHandler struct {
	tokens TokenAuthority
	logger pkgApp.AppLogger
}

func NewLoginHandler(tokens TokenAuthority, logger pkgApp.AppLogger) pkgApp.QueryHandler[SessionQuery, SessionQueryData, Session] {
	return &loginHandler{tokens: tokens, logger: logger}
}

func (h *loginHandler) Handle(ctx context.Context, query SessionQuery) (Session, error) {
	if err := application.CheckContext(ctx, h.logger); err != nil {
		return Session{}, err
	}

	data := query.Payload()
	token, user, err := h.tokens.Authenticate(ctx, data.Email, data.Password)
	if err != nil {
		return Session{}, err
	}
	return Session{Token: token, User: user}, nil
}

type issueSessionHandler struct {
	tokens TokenAuthority
	logger pkgApp.AppLogger
}

func NewIssueSessionHandler(tokens TokenAuthority, logger pkgApp.AppLogger) pkgApp.QueryHandler[SessionQuery, SessionQueryData, Session] {
	return &issueSessionHandler{tokens: tokens, logger: logger}
}

// Handle emite o token de um usuário recém-registrado.
func (h *issueSessionHandler) Handle(ctx context.Context, query SessionQuery) (Session, error) {
	if err := application.CheckContext(ctx, h.logger); err != nil {
		return Session{}, err
	}

	token, user, err := h.tokens.Issue(ctx, query.Payload().UserID)
	if err != nil {
		return Session{}, err
	}
	return Session{Token: token, User: user}, nil
}

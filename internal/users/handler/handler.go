// Package handler adapts the users service to pipeline handlers. Handlers
// only parse the already-decoded body, validate it and call the service.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	jwttoken "usergate/internal/jwt_token"
	"usergate/internal/users/models"
	"usergate/internal/validation"
	id "usergate/pkg/domain"
	dErrors "usergate/pkg/domain-errors"
	"usergate/pkg/platform/middleware/auth"
	"usergate/pkg/platform/pipeline"
	"usergate/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks

// Service defines the user operations the handlers call.
type Service interface {
	Create(ctx context.Context, in models.CreateUser) (*models.User, error)
	Get(ctx context.Context, actor *requestcontext.Identity, userID id.UserID) (*models.User, error)
	List(ctx context.Context, actor *requestcontext.Identity, offset, limit int) ([]*models.User, int, error)
	Update(ctx context.Context, actor *requestcontext.Identity, userID id.UserID, in models.UpdateUser) (*models.User, error)
	Deactivate(ctx context.Context, actor *requestcontext.Identity, userID id.UserID) error
	Login(ctx context.Context, email, password string) (*models.User, *jwttoken.TokenPair, error)
	RefreshAccess(ctx context.Context, refreshToken string) (string, error)
	ChangePassword(ctx context.Context, actor *requestcontext.Identity, userID id.UserID, in models.ChangePassword) error
}

// Routes is where handlers are registered. Paths are relative to the API
// prefix.
type Routes interface {
	Handle(method, path string, h pipeline.Handler)
}

const (
	msgCreated       = "Usuário criado com sucesso"
	msgUpdated       = "Usuário atualizado com sucesso"
	msgDeactivated   = "Usuário desativado com sucesso"
	msgPasswordSaved = "Senha alterada com sucesso"
	msgRequired      = "Este campo é obrigatório."
	msgNotBool       = "Deve ser um valor booleano."
)

// Handler serves the users endpoints.
type Handler struct {
	users     Service
	validator *validation.Validator
	logger    *slog.Logger
}

// New creates a users Handler. A nil validator selects the default policy.
func New(users Service, validator *validation.Validator, logger *slog.Logger) *Handler {
	if validator == nil {
		validator = validation.New(nil)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{users: users, validator: validator, logger: logger}
}

// Register registers the users routes.
func (h *Handler) Register(r Routes) {
	r.Handle(http.MethodGet, "/users", h.handleList)
	r.Handle(http.MethodPost, "/users", h.handleCreate)
	r.Handle(http.MethodPost, "/users/login", h.handleLogin)
	r.Handle(http.MethodPost, "/users/token/refresh", h.handleRefresh)
	r.Handle(http.MethodGet, "/users/{id}", h.handleGet)
	r.Handle(http.MethodPut, "/users/{id}", h.handleUpdate)
	r.Handle(http.MethodDelete, "/users/{id}", h.handleDelete)
	r.Handle(http.MethodPost, "/users/{id}/password", h.handleChangePassword)
}

func (h *Handler) handleCreate(ctx context.Context, req *requestcontext.Request) (*pipeline.Response, error) {
	payload, errs := h.validator.UserPayload(req.Body, false)
	if _, ok := req.Body["password"]; !ok {
		errs = addError(errs, "password", msgRequired)
	}
	if len(errs) > 0 {
		return nil, dErrors.ValidationFields(errs)
	}

	in := models.CreateUser{
		Name:     *payload.Name,
		Email:    *payload.Email,
		Password: *payload.Password,
	}
	if payload.Phone != nil {
		in.Phone = *payload.Phone
	}

	user, err := h.users.Create(ctx, in)
	if err != nil {
		return nil, err
	}
	return pipeline.Created(models.UserMessageResponse{
		Message: msgCreated,
		User:    models.ToResponse(user),
	}), nil
}

func (h *Handler) handleGet(ctx context.Context, req *requestcontext.Request) (*pipeline.Response, error) {
	actor, userID, err := h.target(req)
	if err != nil {
		return nil, err
	}
	user, err := h.users.Get(ctx, actor, userID)
	if err != nil {
		return nil, err
	}
	return pipeline.OK(models.ToResponse(user)), nil
}

func (h *Handler) handleUpdate(ctx context.Context, req *requestcontext.Request) (*pipeline.Response, error) {
	actor, userID, err := h.target(req)
	if err != nil {
		return nil, err
	}

	payload, errs := h.validator.UserPayload(req.Body, true)
	in := models.UpdateUser{
		Name:     payload.Name,
		Email:    payload.Email,
		Phone:    payload.Phone,
		Password: payload.Password,
	}
	if raw, ok := req.Body["is_active"]; ok {
		active, isBool := raw.(bool)
		if !isBool {
			errs = addError(errs, "is_active", msgNotBool)
		} else {
			in.IsActive = &active
		}
	}
	if len(errs) > 0 {
		return nil, dErrors.ValidationFields(errs)
	}

	user, err := h.users.Update(ctx, actor, userID, in)
	if err != nil {
		return nil, err
	}
	return pipeline.OK(models.UserMessageResponse{
		Message: msgUpdated,
		User:    models.ToResponse(user),
	}), nil
}

func (h *Handler) handleDelete(ctx context.Context, req *requestcontext.Request) (*pipeline.Response, error) {
	actor, userID, err := h.target(req)
	if err != nil {
		return nil, err
	}
	if err := h.users.Deactivate(ctx, actor, userID); err != nil {
		return nil, err
	}
	return pipeline.OK(models.MessageResponse{Message: msgDeactivated}), nil
}

func (h *Handler) handleChangePassword(ctx context.Context, req *requestcontext.Request) (*pipeline.Response, error) {
	actor, userID, err := h.target(req)
	if err != nil {
		return nil, err
	}

	in := models.ChangePassword{
		OldPassword:     stringField(req.Body, "old_password"),
		NewPassword:     stringField(req.Body, "new_password"),
		ConfirmPassword: stringField(req.Body, "confirm_password"),
	}
	if errs := h.validator.PasswordChange(in.OldPassword, in.NewPassword, in.ConfirmPassword); len(errs) > 0 {
		return nil, dErrors.ValidationFields(errs)
	}

	if err := h.users.ChangePassword(ctx, actor, userID, in); err != nil {
		return nil, err
	}
	return pipeline.OK(models.MessageResponse{Message: msgPasswordSaved}), nil
}

// target resolves the caller and the {id} route parameter. An id that cannot
// name a user is reported as not found.
func (h *Handler) target(req *requestcontext.Request) (*requestcontext.Identity, id.UserID, error) {
	actor, err := auth.RequireIdentity(req)
	if err != nil {
		return nil, id.UserID{}, err
	}
	raw := req.Param("id")
	userID, err := id.ParseUserID(raw)
	if err != nil {
		return nil, id.UserID{}, dErrors.NotFound("Usuário", raw)
	}
	return actor, userID, nil
}

func stringField(body map[string]any, key string) string {
	s, _ := body[key].(string)
	return s
}

func addError(errs validation.Errors, field, msg string) validation.Errors {
	if errs == nil {
		errs = validation.Errors{}
	}
	errs[field] = append(errs[field], msg)
	return errs
}

package handler

import (
	"context"
	"strings"

	"usergate/internal/users/models"
	"usergate/internal/validation"
	dErrors "usergate/pkg/domain-errors"
	"usergate/pkg/platform/pipeline"
	"usergate/pkg/requestcontext"
)

func (h *Handler) handleLogin(ctx context.Context, req *requestcontext.Request) (*pipeline.Response, error) {
	email := validation.NormalizeEmail(stringField(req.Body, "email"))
	password := stringField(req.Body, "password")

	var errs validation.Errors
	if email == "" {
		errs = addError(errs, "email", msgRequired)
	}
	if password == "" {
		errs = addError(errs, "password", msgRequired)
	}
	if len(errs) > 0 {
		return nil, dErrors.ValidationFields(errs)
	}

	user, tokens, err := h.users.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return pipeline.OK(models.LoginResponse{
		Access:  tokens.Access,
		Refresh: tokens.Refresh,
		User:    models.ToResponse(user),
	}), nil
}

func (h *Handler) handleRefresh(ctx context.Context, req *requestcontext.Request) (*pipeline.Response, error) {
	refresh := strings.TrimSpace(stringField(req.Body, "refresh"))
	if refresh == "" {
		return nil, dErrors.ValidationFields(validation.Errors{"refresh": {msgRequired}})
	}
	access, err := h.users.RefreshAccess(ctx, refresh)
	if err != nil {
		return nil, err
	}
	return pipeline.OK(models.RefreshResponse{Access: access}), nil
}

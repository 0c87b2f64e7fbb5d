// Package auth resolves the bearer identity of a request and gates inactive
// accounts.
package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	id "usergate/pkg/domain"
	dErrors "usergate/pkg/domain-errors"
	"usergate/pkg/platform/pipeline"
	"usergate/pkg/platform/sentinel"
	"usergate/pkg/requestcontext"
)

//go:generate mockgen -source=auth.go -destination=mocks/mocks.go -package=mocks

// TokenParser validates an access token and returns its subject. Failures
// are reported as InvalidToken or ExpiredToken taxonomy errors.
type TokenParser interface {
	ParseAccessToken(ctx context.Context, token string) (id.UserID, error)
}

// IdentityLoader loads the current state of a user. A missing user is
// reported as sentinel.ErrNotFound.
type IdentityLoader interface {
	LoadIdentity(ctx context.Context, userID id.UserID) (*requestcontext.Identity, error)
}

const bearerScheme = "Bearer"

// Authenticator resolves the identity behind the Authorization header. The
// outcome is cached on the request, so every stage that asks pays once.
type Authenticator struct {
	tokens TokenParser
	users  IdentityLoader
	logger *slog.Logger
}

func NewAuthenticator(tokens TokenParser, users IdentityLoader, logger *slog.Logger) *Authenticator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Authenticator{tokens: tokens, users: users, logger: logger}
}

// Identify returns the request's identity, nil for anonymous requests.
func (a *Authenticator) Identify(ctx context.Context, req *requestcontext.Request) (*requestcontext.Identity, error) {
	return req.ResolveIdentity(func() (*requestcontext.Identity, error) {
		return a.resolve(ctx, req)
	})
}

func (a *Authenticator) resolve(ctx context.Context, req *requestcontext.Request) (*requestcontext.Identity, error) {
	header := strings.TrimSpace(req.Header.Get("Authorization"))
	if header == "" {
		return nil, nil
	}
	scheme, token, _ := strings.Cut(header, " ")
	if !strings.EqualFold(scheme, bearerScheme) {
		// other schemes are not ours to judge
		return nil, nil
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, dErrors.InvalidToken()
	}

	userID, err := a.tokens.ParseAccessToken(ctx, token)
	if err != nil {
		a.logger.WarnContext(ctx, "unauthorized access - invalid token",
			"error", err,
			"request_id", req.RequestID,
		)
		if _, ok := dErrors.As(err); ok {
			return nil, err
		}
		return nil, dErrors.InvalidToken()
	}

	ident, err := a.users.LoadIdentity(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			a.logger.WarnContext(ctx, "unauthorized access - token subject not found",
				"user_id", userID.String(),
				"request_id", req.RequestID,
			)
			return nil, dErrors.InvalidToken()
		}
		return nil, dErrors.Database(err)
	}
	return ident, nil
}

// Gate is the authentication/activity stage of the pipeline. Anonymous
// requests pass; handlers that need an identity call RequireIdentity.
type Gate struct {
	pipeline.Passthrough
	auth *Authenticator
}

func NewGate(a *Authenticator) *Gate {
	return &Gate{auth: a}
}

func (*Gate) Name() string { return "auth" }

func (g *Gate) Inbound(ctx context.Context, req *requestcontext.Request) (*pipeline.Response, error) {
	ident, err := g.auth.Identify(ctx, req)
	if err != nil {
		return nil, err
	}
	if ident != nil && !ident.IsActive {
		return nil, dErrors.InactiveUser()
	}
	return nil, nil
}

// RequireIdentity returns the request's identity or AuthenticationRequired.
func RequireIdentity(req *requestcontext.Request) (*requestcontext.Identity, error) {
	ident := req.Identity()
	if ident == nil {
		return nil, dErrors.AuthenticationRequired()
	}
	return ident, nil
}

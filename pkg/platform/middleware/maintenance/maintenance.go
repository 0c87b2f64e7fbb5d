// Package maintenance closes the API to everyone but staff while the
// process-wide maintenance flag is set.
package maintenance

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"usergate/pkg/platform/pipeline"
	"usergate/pkg/requestcontext"
)

// RetryAfterSeconds is the retry hint sent while in maintenance.
const RetryAfterSeconds = 3600

// IdentityResolver resolves the identity of a request ahead of the auth gate.
type IdentityResolver interface {
	Identify(ctx context.Context, req *requestcontext.Request) (*requestcontext.Identity, error)
}

// Interceptor short-circuits non-staff requests with 503 while enabled.
// The flag is fixed at construction.
type Interceptor struct {
	pipeline.Passthrough
	enabled  bool
	identity IdentityResolver
	logger   *slog.Logger
}

func New(enabled bool, identity IdentityResolver, logger *slog.Logger) *Interceptor {
	if logger == nil {
		logger = slog.Default()
	}
	if enabled {
		logger.Warn("maintenance mode enabled")
	}
	return &Interceptor{enabled: enabled, identity: identity, logger: logger}
}

func (*Interceptor) Name() string { return "maintenance" }

func (i *Interceptor) Inbound(ctx context.Context, req *requestcontext.Request) (*pipeline.Response, error) {
	if !i.enabled {
		return nil, nil
	}
	if i.identity != nil {
		ident, err := i.identity.Identify(ctx, req)
		if err == nil && ident != nil && ident.IsStaff {
			return nil, nil
		}
	}
	return Response(), nil
}

// Response is the 503 body returned to non-staff callers.
func Response() *pipeline.Response {
	resp := pipeline.JSON(http.StatusServiceUnavailable, map[string]any{
		"success": false,
		"error": map[string]any{
			"code":    "maintenance",
			"message": "Sistema em manutenção",
			"details": map[string]any{
				"detail":      "Voltaremos em breve. Desculpe o inconveniente.",
				"retry_after": RetryAfterSeconds,
			},
		},
	})
	resp.SetHeader("Retry-After", strconv.Itoa(RetryAfterSeconds))
	return resp
}

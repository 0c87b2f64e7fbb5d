package middleware

import (
	"context"
	"log/slog"
	"strconv"

	"usergate/internal/ratelimit/models"
	dErrors "usergate/pkg/domain-errors"
	"usergate/pkg/platform/pipeline"
	"usergate/pkg/requestcontext"
)

// RateLimiter is the subset of the rate limit service the interceptor needs.
type RateLimiter interface {
	ScopesFor(method, path string) []models.Scope
	Check(ctx context.Context, scope models.Scope, key string) (*models.Result, error)
}

type resultKey struct{}

// Middleware is the rate limiting stage of the request pipeline. Every
// request is charged against the generic scope first, then against the scope
// of its route, if any. The first rejection short-circuits.
type Middleware struct {
	pipeline.Passthrough
	limiter  RateLimiter
	logger   *slog.Logger
	disabled bool
}

type Option func(*Middleware)

// WithDisabled disables rate limiting entirely (for testing/demo mode).
func WithDisabled(disabled bool) Option {
	return func(m *Middleware) {
		m.disabled = disabled
	}
}

func New(limiter RateLimiter, logger *slog.Logger, opts ...Option) *Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Middleware{
		limiter: limiter,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.disabled {
		logger.Info("rate limiting disabled")
	}
	return m
}

func (m *Middleware) Name() string { return "rate_limit" }

func (m *Middleware) Inbound(ctx context.Context, req *requestcontext.Request) (*pipeline.Response, error) {
	if m.disabled {
		return nil, nil
	}

	for _, scope := range m.limiter.ScopesFor(req.Method, req.Path) {
		result, err := m.limiter.Check(ctx, scope, req.ClientIP)
		if err != nil {
			// fail open: a broken limiter must not take the API down
			m.logger.ErrorContext(ctx, "failed to check rate limit",
				"error", err,
				"scope", scope.String(),
				"request_id", req.RequestID,
			)
			continue
		}
		req.SetValue(resultKey{}, result)
		if !result.Allowed {
			m.logger.WarnContext(ctx, "rate limit exceeded",
				"scope", scope.String(),
				"client_ip", req.ClientIP,
				"request_id", req.RequestID,
			)
			return nil, dErrors.RateLimited(result.RetryAfter)
		}
	}
	return nil, nil
}

// Outbound reports the budget of the most specific scope checked.
func (m *Middleware) Outbound(_ context.Context, req *requestcontext.Request, resp *pipeline.Response) *pipeline.Response {
	result, ok := req.Value(resultKey{}).(*models.Result)
	if !ok {
		return resp
	}
	addRateLimitHeaders(resp, result)
	return resp
}

func addRateLimitHeaders(resp *pipeline.Response, result *models.Result) {
	resp.SetHeader("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	resp.SetHeader("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	resp.SetHeader("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
	if !result.Allowed {
		resp.SetHeader("Retry-After", strconv.Itoa(result.RetryAfter))
	}
}

package middleware

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"usergate/internal/ratelimit/models"
	"usergate/internal/ratelimit/service"
	"usergate/internal/ratelimit/store/window"
	dErrors "usergate/pkg/domain-errors"
	"usergate/pkg/platform/pipeline"
	"usergate/pkg/requestcontext"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newEngine(t *testing.T, mw *Middleware) *pipeline.Engine {
	t.Helper()
	e, err := pipeline.New(discard(), []pipeline.Interceptor{mw})
	require.NoError(t, err)
	return e
}

func okHandler(context.Context, *requestcontext.Request) (*pipeline.Response, error) {
	return pipeline.OK(map[string]any{"results": []any{}}), nil
}

func newService(t *testing.T, now *time.Time) *service.Service {
	t.Helper()
	store := window.NewInMemoryStore(window.WithClock(func() time.Time { return *now }))
	svc, err := service.New(store, service.WithLogger(discard()))
	require.NoError(t, err)
	return svc
}

func TestListRouteRejects101stRequest(t *testing.T) {
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	e := newEngine(t, New(newService(t, &now), discard()))
	list := func() *pipeline.Response {
		return e.Run(context.Background(), &requestcontext.Request{
			Method: http.MethodGet, Path: "/api/users", ClientIP: "203.0.113.7",
		}, okHandler)
	}

	// 35s apart keeps the generic per-minute budget far from its limit
	for i := range 100 {
		require.Equal(t, http.StatusOK, list().Status, "request %d", i+1)
		now = now.Add(35 * time.Second)
	}

	resp := list()
	assert.Equal(t, http.StatusTooManyRequests, resp.Status)
	require.NotNil(t, resp.Err)
	assert.Equal(t, dErrors.CodeRateLimit, resp.Err.Code)
	env := resp.Body.(dErrors.Envelope)
	assert.Equal(t, dErrors.CodeRateLimit, env.Error.Code)
	assert.Equal(t, 3600, env.Error.Details["retry_after"])
	assert.Equal(t, "3600", resp.Header.Get("Retry-After"))
	assert.Equal(t, "0", resp.Header.Get("X-RateLimit-Remaining"))

	other := e.Run(context.Background(), &requestcontext.Request{
		Method: http.MethodGet, Path: "/api/users/abc", ClientIP: "203.0.113.7",
	}, okHandler)
	assert.Equal(t, http.StatusOK, other.Status, "listing budget does not spill onto other routes")
}

func TestGenericBudgetRejectsBurst(t *testing.T) {
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	e := newEngine(t, New(newService(t, &now), discard()))

	for i := range 100 {
		resp := e.Run(context.Background(), &requestcontext.Request{
			Method: http.MethodGet, Path: "/api/users/abc", ClientIP: "203.0.113.7",
		}, okHandler)
		require.Equal(t, http.StatusOK, resp.Status, "request %d", i+1)
	}

	resp := e.Run(context.Background(), &requestcontext.Request{
		Method: http.MethodGet, Path: "/api/users/abc", ClientIP: "203.0.113.7",
	}, okHandler)
	assert.Equal(t, http.StatusTooManyRequests, resp.Status)
	env := resp.Body.(dErrors.Envelope)
	assert.Equal(t, 60, env.Error.Details["retry_after"])
	assert.Equal(t, "60", resp.Header.Get("Retry-After"))
}

func TestLoginBudgetIsPerRoute(t *testing.T) {
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	e := newEngine(t, New(newService(t, &now), discard()))
	login := func() *pipeline.Response {
		return e.Run(context.Background(), &requestcontext.Request{
			Method: http.MethodPost, Path: "/api/v1.1/users/login/", ClientIP: "198.51.100.2",
		}, okHandler)
	}

	for range 5 {
		require.Equal(t, http.StatusOK, login().Status)
	}
	resp := login()
	assert.Equal(t, http.StatusTooManyRequests, resp.Status)
	assert.Equal(t, "Muitas requisições. Tente novamente mais tarde. Tente novamente em 60 segundos.", resp.Err.Message)

	other := e.Run(context.Background(), &requestcontext.Request{
		Method: http.MethodGet, Path: "/api/users/abc", ClientIP: "198.51.100.2",
	}, okHandler)
	assert.Equal(t, http.StatusOK, other.Status, "generic budget still has room")
	assert.Equal(t, "100", other.Header.Get("X-RateLimit-Limit"))
}

func TestDisabledSkipsChecks(t *testing.T) {
	now := time.Now()
	e := newEngine(t, New(newService(t, &now), discard(), WithDisabled(true)))
	for range 10 {
		resp := e.Run(context.Background(), &requestcontext.Request{
			Method: http.MethodPost, Path: "/api/users/login", ClientIP: "x",
		}, okHandler)
		require.Equal(t, http.StatusOK, resp.Status)
		assert.Empty(t, resp.Header.Get("X-RateLimit-Limit"))
	}
}

type brokenLimiter struct{}

func (brokenLimiter) ScopesFor(string, string) []models.Scope {
	return []models.Scope{models.ScopeGeneric}
}

func (brokenLimiter) Check(context.Context, models.Scope, string) (*models.Result, error) {
	return nil, errors.New("boom")
}

func TestLimiterErrorFailsOpen(t *testing.T) {
	e := newEngine(t, New(brokenLimiter{}, discard()))
	resp := e.Run(context.Background(), &requestcontext.Request{Method: http.MethodGet, Path: "/api/users"}, okHandler)
	assert.Equal(t, http.StatusOK, resp.Status)
}

package httptransport

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "usergate/pkg/domain-errors"
	"usergate/pkg/platform/middleware/headers"
	"usergate/pkg/platform/middleware/requestid"
	"usergate/pkg/platform/pipeline"
	"usergate/pkg/requestcontext"
	"usergate/pkg/testutil"
)

func newTestRouter(t *testing.T) *Router {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	engine, err := pipeline.New(logger, []pipeline.Interceptor{
		requestid.New(),
		headers.NewCORS(headers.DefaultCORSConfig()),
	})
	require.NoError(t, err)

	r := NewRouter(engine)
	echo := func(_ context.Context, req *requestcontext.Request) (*pipeline.Response, error) {
		return pipeline.OK(map[string]string{"id": req.Param("id"), "method": req.Method}), nil
	}
	r.Handle(http.MethodGet, "/users/{id}", echo)
	r.Handle(http.MethodPut, "/users/{id}", echo)
	r.Handle(http.MethodPost, "/users/login", echo)
	return r
}

func TestRouterParams(t *testing.T) {
	r := newTestRouter(t)

	tests := []struct {
		name string
		path string
	}{
		{"unversioned", "/api/users/42"},
		{"versioned", "/api/v1.1/users/42"},
		{"trailing slash", "/api/users/42/"},
		{"versioned trailing slash", "/api/v2/users/42/"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := testutil.DoRequest(r, testutil.NewRequest(t, http.MethodGet, tt.path))
			testutil.AssertStatus(t, rr, http.StatusOK)
			got := testutil.UnmarshalResponse[map[string]string](t, rr)
			assert.Equal(t, "42", (*got)["id"])
			assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
		})
	}
}

func TestRouterStaticSegmentWins(t *testing.T) {
	r := newTestRouter(t)
	rr := testutil.DoRequest(r, testutil.NewJSONRequest(t, http.MethodPost, "/api/users/login", map[string]any{}))
	testutil.AssertStatus(t, rr, http.StatusOK)
	got := testutil.UnmarshalResponse[map[string]string](t, rr)
	assert.Empty(t, (*got)["id"])
}

func TestRouterFallbacks(t *testing.T) {
	r := newTestRouter(t)

	t.Run("unknown path is a not found envelope", func(t *testing.T) {
		rr := testutil.DoRequest(r, testutil.NewRequest(t, http.MethodGet, "/api/orders"))
		testutil.AssertStatusAndError(t, rr, http.StatusNotFound, dErrors.CodeNotFound)
		assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
		assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("unknown version segment is not routed", func(t *testing.T) {
		rr := testutil.DoRequest(r, testutil.NewRequest(t, http.MethodGet, "/api/latest/users/42"))
		testutil.AssertStatusAndError(t, rr, http.StatusNotFound, dErrors.CodeNotFound)
	})

	t.Run("wrong method is a validation error", func(t *testing.T) {
		rr := testutil.DoRequest(r, testutil.NewRequest(t, http.MethodDelete, "/api/users/login"))
		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, dErrors.CodeValidation)
		env := testutil.UnmarshalEnvelope(t, rr)
		assert.Equal(t, `Método "DELETE" não permitido.`, env.Error.Message)
	})

	t.Run("preflight is answered by the pipeline", func(t *testing.T) {
		req := testutil.NewRequest(t, http.MethodOptions, "/api/users/42")
		req.Header.Set("Access-Control-Request-Method", http.MethodPut)
		rr := testutil.DoRequest(r, req)
		testutil.AssertStatus(t, rr, http.StatusNoContent)
		assert.Equal(t, "3600", rr.Header().Get("Access-Control-Max-Age"))
	})
}

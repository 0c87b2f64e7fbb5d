package headers

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"usergate/pkg/platform/pipeline"
	"usergate/pkg/requestcontext"
)

func TestSecurityHeaders(t *testing.T) {
	t.Run("plain connection omits HSTS", func(t *testing.T) {
		resp := NewSecurity().Outbound(context.Background(), &requestcontext.Request{}, pipeline.OK(nil))
		assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
		assert.Equal(t, "DENY", resp.Header.Get("X-Frame-Options"))
		assert.Equal(t, "1; mode=block", resp.Header.Get("X-XSS-Protection"))
		assert.Empty(t, resp.Header.Get("Strict-Transport-Security"))
	})

	t.Run("secure connection adds HSTS", func(t *testing.T) {
		resp := NewSecurity().Outbound(context.Background(), &requestcontext.Request{Secure: true}, pipeline.OK(nil))
		assert.Equal(t, "max-age=31536000; includeSubDomains", resp.Header.Get("Strict-Transport-Security"))
	})

	t.Run("error responses are decorated too", func(t *testing.T) {
		resp := &pipeline.Response{Status: http.StatusTooManyRequests}
		resp = NewSecurity().Outbound(context.Background(), &requestcontext.Request{}, resp)
		assert.Equal(t, "DENY", resp.Header.Get("X-Frame-Options"))
	})
}

func TestCORS(t *testing.T) {
	cors := NewCORS(DefaultCORSConfig())

	resp := cors.Outbound(context.Background(), &requestcontext.Request{}, pipeline.OK(nil))
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "GET, POST, PUT, PATCH, DELETE, OPTIONS", resp.Header.Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "Content-Type, Authorization, X-API-Version", resp.Header.Get("Access-Control-Allow-Headers"))
	assert.Equal(t, "3600", resp.Header.Get("Access-Control-Max-Age"))

	t.Run("preflight short-circuits", func(t *testing.T) {
		h := http.Header{}
		h.Set("Access-Control-Request-Method", "POST")
		out, err := cors.Inbound(context.Background(), &requestcontext.Request{Method: "OPTIONS", Header: h})
		require.NoError(t, err)
		require.NotNil(t, out)
		assert.Equal(t, http.StatusNoContent, out.Status)
	})

	t.Run("plain OPTIONS passes", func(t *testing.T) {
		out, err := cors.Inbound(context.Background(), &requestcontext.Request{Method: "OPTIONS", Header: http.Header{}})
		require.NoError(t, err)
		assert.Nil(t, out)
	})
}

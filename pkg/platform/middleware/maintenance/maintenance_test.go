package maintenance

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"usergate/pkg/requestcontext"
)

type resolverFunc func(context.Context, *requestcontext.Request) (*requestcontext.Identity, error)

func (f resolverFunc) Identify(ctx context.Context, req *requestcontext.Request) (*requestcontext.Identity, error) {
	return f(ctx, req)
}

func identity(ident *requestcontext.Identity, err error) resolverFunc {
	return func(context.Context, *requestcontext.Request) (*requestcontext.Identity, error) {
		return ident, err
	}
}

func TestDisabledPassesEveryone(t *testing.T) {
	called := false
	ic := New(false, resolverFunc(func(context.Context, *requestcontext.Request) (*requestcontext.Identity, error) {
		called = true
		return nil, nil
	}), nil)

	resp, err := ic.Inbound(context.Background(), &requestcontext.Request{})
	require.NoError(t, err)
	assert.Nil(t, resp)
	assert.False(t, called, "identity is not resolved when maintenance is off")
}

func TestEnabled(t *testing.T) {
	tests := []struct {
		name     string
		resolver IdentityResolver
		blocked  bool
	}{
		{"anonymous blocked", identity(nil, nil), true},
		{"regular user blocked", identity(&requestcontext.Identity{IsActive: true}, nil), true},
		{"staff passes", identity(&requestcontext.Identity{IsActive: true, IsStaff: true}, nil), false},
		{"broken token blocked", identity(nil, errors.New("bad token")), true},
		{"no resolver blocks", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ic := New(true, tt.resolver, nil)
			resp, err := ic.Inbound(context.Background(), &requestcontext.Request{})
			require.NoError(t, err)
			if !tt.blocked {
				assert.Nil(t, resp)
				return
			}
			require.NotNil(t, resp)
			assert.Equal(t, http.StatusServiceUnavailable, resp.Status)
			assert.Equal(t, "3600", resp.Header.Get("Retry-After"))

			body := resp.Body.(map[string]any)
			assert.Equal(t, false, body["success"])
			errBody := body["error"].(map[string]any)
			assert.Equal(t, "maintenance", errBody["code"])
			assert.Equal(t, "Sistema em manutenção", errBody["message"])
			assert.Equal(t, 3600, errBody["details"].(map[string]any)["retry_after"])
		})
	}
}

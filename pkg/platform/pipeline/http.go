package pipeline

import (
	"encoding/json"
	"net/http"
	"time"

	"usergate/pkg/platform/middleware/metadata"
)

// WithMaxBodyBytes caps the request body read by the HTTP adapter.
func WithMaxBodyBytes(n int64) Option {
	return func(e *Engine) {
		e.maxBodyBytes = n
	}
}

// WithClock overrides the time source used for request start timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// HTTPHandler adapts the engine and a terminal handler to net/http.
func (e *Engine) HTTPHandler(h Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req := metadata.NewRequest(w, r, e.maxBodyBytes, e.now())
		resp := e.Run(r.Context(), req, h)
		writeResponse(w, resp)
	})
}

func writeResponse(w http.ResponseWriter, resp *Response) {
	for key, values := range resp.Header {
		for _, v := range values {
			w.Header().Add(key, v)
		}
	}
	if resp.Body == nil {
		w.WriteHeader(resp.Status)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.Status)
	_ = json.NewEncoder(w).Encode(resp.Body)
}

// Package metadata builds the pipeline's request record from an
// *http.Request: client address, transport security and the raw body.
package metadata

import (
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"usergate/pkg/requestcontext"
)

// DefaultMaxBodyBytes caps the raw body read into the request record.
const DefaultMaxBodyBytes = 1 << 20

// ErrBodyTooLarge is recorded on the request when the body exceeds the cap.
var ErrBodyTooLarge = errors.New("request body too large")

// NewRequest snapshots r into a pipeline request. Body read failures are
// recorded in BodyErr and left for the body parser to report.
func NewRequest(w http.ResponseWriter, r *http.Request, maxBodyBytes int64, now time.Time) *requestcontext.Request {
	if maxBodyBytes <= 0 {
		maxBodyBytes = DefaultMaxBodyBytes
	}
	req := &requestcontext.Request{
		Method:    r.Method,
		Path:      r.URL.Path,
		Query:     r.URL.Query(),
		ClientIP:  ClientIPFromRequest(r),
		Header:    r.Header.Clone(),
		Secure:    IsSecure(r),
		StartedAt: now,
		Params:    map[string]string{},
	}
	if req.Header == nil {
		req.Header = http.Header{}
	}

	if r.Body != nil && r.Body != http.NoBody {
		raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				err = ErrBodyTooLarge
			}
			req.BodyErr = err
		}
		req.RawBody = raw
	}
	return req
}

// IsSecure reports whether the request arrived over TLS, directly or behind a
// proxy that sets X-Forwarded-Proto.
func IsSecure(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	return strings.EqualFold(strings.TrimSpace(r.Header.Get("X-Forwarded-Proto")), "https")
}

// ClientIPFromRequest extracts the real client IP from the request, handling proxies and load balancers.
func ClientIPFromRequest(r *http.Request) string {
	// X-Forwarded-For can contain multiple IPs (client, proxy1, proxy2, ...)
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}

	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}

	if addr := r.RemoteAddr; addr != "" {
		if host, _, err := net.SplitHostPort(addr); err == nil {
			return host
		}
		return addr
	}

	return "unknown"
}

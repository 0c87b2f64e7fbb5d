// Package requestcontext holds the per-request record shared by the pipeline,
// its interceptors and the handlers, plus HTTP-independent context accessors.
//
// A Request is created once at pipeline entry. Inbound interceptors fill it in
// (request id, API version, parsed body, identity); the handler and outbound
// interceptors only read it.
//
// Usage in services (read values):
//
//	reqID := requestcontext.RequestID(ctx)
//	now := requestcontext.Now(ctx)
//
// Usage in tests (inject values):
//
//	ctx = requestcontext.WithTime(ctx, fixedTime)
package requestcontext

import (
	"context"
	"net/http"
	"net/url"
	"time"

	id "usergate/pkg/domain"
)

// Identity is the authenticated principal of a request.
type Identity struct {
	UserID   id.UserID
	Email    string
	IsStaff  bool
	IsActive bool
}

// Request is the pipeline's view of one HTTP request.
type Request struct {
	Method   string
	Path     string
	Query    url.Values
	ClientIP string
	// Header lookups are case-insensitive through http.Header.
	Header  http.Header
	RawBody []byte
	// BodyErr records a failure to read the body (too large, broken stream).
	BodyErr error
	// Secure is true for TLS connections or X-Forwarded-Proto: https.
	Secure    bool
	StartedAt time.Time

	// RequestID is assigned once by the request id interceptor.
	RequestID  string
	APIVersion id.APIVersion
	// Body is the decoded JSON object. Empty, never nil, once parsed.
	Body map[string]any
	// Params are the route parameters resolved by the router.
	Params map[string]string

	identity     *Identity
	identityErr  error
	identityDone bool
	values       map[any]any
}

// SetValue stores an interceptor-private value for the rest of the request.
// Keys should be unexported types, as with context keys.
func (r *Request) SetValue(key, value any) {
	if r.values == nil {
		r.values = make(map[any]any)
	}
	r.values[key] = value
}

// Value returns a value stored with SetValue, or nil.
func (r *Request) Value(key any) any {
	return r.values[key]
}

// Identity returns the resolved identity, or nil for anonymous requests.
func (r *Request) Identity() *Identity {
	return r.identity
}

// SetIdentity records an already resolved identity.
func (r *Request) SetIdentity(ident *Identity) {
	r.identity = ident
	r.identityErr = nil
	r.identityDone = true
}

// ResolveIdentity runs resolve at most once per request and caches the
// outcome, error included.
func (r *Request) ResolveIdentity(resolve func() (*Identity, error)) (*Identity, error) {
	if !r.identityDone {
		r.identity, r.identityErr = resolve()
		r.identityDone = true
	}
	return r.identity, r.identityErr
}

// IsStaff reports whether the resolved identity is a staff member.
func (r *Request) IsStaff() bool {
	return r.identity != nil && r.identity.IsStaff
}

// Param returns a route parameter or "".
func (r *Request) Param(name string) string {
	return r.Params[name]
}

// Context key types (unexported for encapsulation).
type (
	requestKey     struct{}
	requestTimeKey struct{}
)

// WithRequest attaches the pipeline record to ctx.
func WithRequest(ctx context.Context, r *Request) context.Context {
	return context.WithValue(ctx, requestKey{}, r)
}

// FromContext returns the pipeline record, if any.
func FromContext(ctx context.Context) (*Request, bool) {
	r, ok := ctx.Value(requestKey{}).(*Request)
	return r, ok
}

// RequestID retrieves the request ID from the context.
func RequestID(ctx context.Context) string {
	if r, ok := FromContext(ctx); ok {
		return r.RequestID
	}
	return ""
}

// ClientIP retrieves the client address from the context.
func ClientIP(ctx context.Context) string {
	if r, ok := FromContext(ctx); ok {
		return r.ClientIP
	}
	return ""
}

// Now retrieves the request-scoped time from context.
// Falls back to time.Now() if not set (CLI commands, tests).
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(requestTimeKey{}).(time.Time); ok {
		return t
	}
	if r, ok := FromContext(ctx); ok && !r.StartedAt.IsZero() {
		return r.StartedAt
	}
	return time.Now()
}

// WithTime injects a specific time into a context.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, requestTimeKey{}, t)
}

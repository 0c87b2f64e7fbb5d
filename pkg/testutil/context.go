package testutil

import (
	"net/http"
	"time"

	id "usergate/pkg/domain"
	"usergate/pkg/requestcontext"
)

// FixedTime is the start timestamp of requests built by NewPipelineRequest.
var FixedTime = time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)

// NewPipelineRequest builds the request state a handler sees after the
// inbound interceptors ran: id, version and parsed body are set.
func NewPipelineRequest(method, path string, body map[string]any) *requestcontext.Request {
	if body == nil {
		body = map[string]any{}
	}
	return &requestcontext.Request{
		Method:     method,
		Path:       path,
		ClientIP:   "192.0.2.10",
		Header:     http.Header{},
		StartedAt:  FixedTime,
		RequestID:  "test-request-id",
		APIVersion: id.DefaultVersion(),
		Body:       body,
		Params:     map[string]string{},
	}
}

// WithParam sets a route parameter on req.
func WithParam(req *requestcontext.Request, key, value string) *requestcontext.Request {
	if req.Params == nil {
		req.Params = map[string]string{}
	}
	req.Params[key] = value
	return req
}

// WithIdentity authenticates req as the given user.
func WithIdentity(req *requestcontext.Request, userID id.UserID, staff bool) *requestcontext.Request {
	req.SetIdentity(&requestcontext.Identity{
		UserID:   userID,
		Email:    "caller@example.com",
		IsStaff:  staff,
		IsActive: true,
	})
	return req
}

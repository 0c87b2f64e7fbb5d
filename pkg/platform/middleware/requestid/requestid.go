// Package requestid assigns every request a fresh identifier and echoes it in
// the X-Request-ID response header.
package requestid

import (
	"context"

	"github.com/google/uuid"

	"usergate/pkg/platform/pipeline"
	"usergate/pkg/requestcontext"
)

// Header is the response header carrying the request id.
const Header = "X-Request-ID"

type Interceptor struct {
	newID func() string
}

func New() *Interceptor {
	return &Interceptor{newID: func() string { return uuid.NewString() }}
}

func (i *Interceptor) Name() string { return "request_id" }

// Inbound assigns the id once. An id already present is never replaced.
func (i *Interceptor) Inbound(_ context.Context, req *requestcontext.Request) (*pipeline.Response, error) {
	if req.RequestID == "" {
		req.RequestID = i.newID()
	}
	return nil, nil
}

func (i *Interceptor) Outbound(_ context.Context, req *requestcontext.Request, resp *pipeline.Response) *pipeline.Response {
	if req.RequestID != "" {
		resp.SetHeader(Header, req.RequestID)
	}
	return resp
}

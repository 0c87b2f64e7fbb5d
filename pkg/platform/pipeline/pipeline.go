// Package pipeline runs every request through an ordered chain of
// interceptors around a terminal handler.
//
// Inbound hooks run in registration order. The first hook that returns a
// response or an error stops the inbound pass; the handler then does not run.
// Outbound hooks run in reverse order over exactly the interceptors whose
// inbound hook ran, so a short-circuit at position i is still decorated by
// interceptors 0..i.
package pipeline

import (
	"context"
	"net/http"

	dErrors "usergate/pkg/domain-errors"
	"usergate/pkg/requestcontext"
)

// Interceptor is one stage of the pipeline.
type Interceptor interface {
	// Name identifies the interceptor in logs and traces. Names are unique
	// within an Engine.
	Name() string
	// Inbound may enrich the request, return a response to short-circuit, or
	// return an error, which the engine translates into the error envelope.
	Inbound(ctx context.Context, req *requestcontext.Request) (*Response, error)
	// Outbound may decorate or replace the response. Returning nil keeps the
	// response unchanged.
	Outbound(ctx context.Context, req *requestcontext.Request, resp *Response) *Response
}

// Handler is the terminal stage, run only when no interceptor short-circuits.
type Handler func(ctx context.Context, req *requestcontext.Request) (*Response, error)

// Passthrough implements both hooks as no-ops. Interceptors embed it and
// override the side they care about.
type Passthrough struct{}

func (Passthrough) Inbound(context.Context, *requestcontext.Request) (*Response, error) {
	return nil, nil
}

func (Passthrough) Outbound(_ context.Context, _ *requestcontext.Request, resp *Response) *Response {
	return resp
}

// Response is the pipeline's response value. Body is JSON-encoded by the
// HTTP adapter; a nil Body writes no payload.
type Response struct {
	Status int
	Header http.Header
	Body   any
	// Err is set when the response was translated from an error. Its status
	// is authoritative and survives outbound hooks.
	Err *dErrors.Error
}

// JSON builds a response with a JSON body.
func JSON(status int, body any) *Response {
	return &Response{Status: status, Header: make(http.Header), Body: body}
}

// OK is JSON(200, body).
func OK(body any) *Response {
	return JSON(http.StatusOK, body)
}

// Created is JSON(201, body).
func Created(body any) *Response {
	return JSON(http.StatusCreated, body)
}

// NoContent builds an empty 204 response.
func NoContent() *Response {
	return &Response{Status: http.StatusNoContent, Header: make(http.Header)}
}

// SetHeader sets a header, allocating the map if needed.
func (r *Response) SetHeader(key, value string) {
	if r.Header == nil {
		r.Header = make(http.Header)
	}
	r.Header.Set(key, value)
}

// IsError reports whether the response was derived from an error.
func (r *Response) IsError() bool {
	return r.Err != nil
}

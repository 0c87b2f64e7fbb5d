package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"usergate/pkg/requestcontext"
)

const tracerName = "usergate/pipeline"

// Engine runs requests through a fixed, ordered list of interceptors. It is
// immutable after construction and safe for concurrent use.
type Engine struct {
	interceptors []Interceptor
	translator   *Translator
	logger       *slog.Logger
	tracer       trace.Tracer
	maxBodyBytes int64
	now          func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithTranslator replaces the default translator.
func WithTranslator(t *Translator) Option {
	return func(e *Engine) {
		e.translator = t
	}
}

// WithTracer sets the tracer used for the per-request span.
func WithTracer(t trace.Tracer) Option {
	return func(e *Engine) {
		e.tracer = t
	}
}

// New builds an engine. Interceptor names must be unique.
func New(logger *slog.Logger, interceptors []Interceptor, opts ...Option) (*Engine, error) {
	if logger == nil {
		logger = slog.Default()
	}
	seen := make(map[string]struct{}, len(interceptors))
	for i, ic := range interceptors {
		if ic == nil {
			return nil, fmt.Errorf("interceptor at position %d is nil", i)
		}
		if _, dup := seen[ic.Name()]; dup {
			return nil, fmt.Errorf("duplicate interceptor name %q", ic.Name())
		}
		seen[ic.Name()] = struct{}{}
	}

	e := &Engine{
		interceptors: append([]Interceptor(nil), interceptors...),
		logger:       logger,
		tracer:       otel.Tracer(tracerName),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.translator == nil {
		e.translator = NewTranslator(logger, nil)
	}
	return e, nil
}

// Names returns the interceptor names in registration order.
func (e *Engine) Names() []string {
	names := make([]string, len(e.interceptors))
	for i, ic := range e.interceptors {
		names[i] = ic.Name()
	}
	return names
}

// Run executes the inbound pass, the handler when nothing short-circuited,
// and the outbound pass. It always returns a response.
func (e *Engine) Run(ctx context.Context, req *requestcontext.Request, h Handler) *Response {
	ctx, span := e.tracer.Start(ctx, "pipeline.Run",
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String("http.method", req.Method),
			attribute.String("http.path", req.Path),
		),
	)
	defer span.End()

	if req.Body == nil {
		req.Body = map[string]any{}
	}
	ctx = requestcontext.WithRequest(ctx, req)

	var resp *Response
	k := len(e.interceptors)
	for i, ic := range e.interceptors {
		out, err := e.inbound(ctx, ic, req)
		if err != nil {
			resp = e.translator.Translate(ctx, req, err)
		} else if out != nil {
			resp = out
		}
		if resp != nil {
			k = i + 1
			span.AddEvent("short-circuit", trace.WithAttributes(attribute.String("interceptor", ic.Name())))
			break
		}
	}

	if resp == nil {
		resp = e.invoke(ctx, req, h)
	}

	for i := k - 1; i >= 0; i-- {
		resp = e.outbound(ctx, e.interceptors[i], req, resp)
	}

	span.SetAttributes(attribute.Int("http.status_code", resp.Status))
	if resp.Status >= 500 {
		span.SetStatus(codes.Error, fmt.Sprintf("status %d", resp.Status))
	}
	return resp
}

func (e *Engine) inbound(ctx context.Context, ic Interceptor, req *requestcontext.Request) (resp *Response, err error) {
	defer func() {
		if v := recover(); v != nil {
			resp, err = nil, recovered(v)
		}
	}()
	return ic.Inbound(ctx, req)
}

func (e *Engine) invoke(ctx context.Context, req *requestcontext.Request, h Handler) (resp *Response) {
	defer func() {
		if v := recover(); v != nil {
			resp = e.translator.Translate(ctx, req, recovered(v))
		}
	}()

	out, err := h(ctx, req)
	if err != nil {
		return e.translator.Translate(ctx, req, err)
	}
	if out == nil {
		return NoContent()
	}
	return out
}

// outbound runs one hook. A nil result or a panic keeps the previous response,
// and an error-derived status is restored if the hook changed it.
func (e *Engine) outbound(ctx context.Context, ic Interceptor, req *requestcontext.Request, resp *Response) (out *Response) {
	defer func() {
		if v := recover(); v != nil {
			e.logger.ErrorContext(ctx, "outbound interceptor panicked",
				"interceptor", ic.Name(),
				"request_id", req.RequestID,
				"error", recovered(v).Error(),
			)
			out = resp
		}
	}()

	out = ic.Outbound(ctx, req, resp)
	if out == nil {
		out = resp
	}
	if resp.Err != nil && out.Status != resp.Err.Status() {
		out.Status = resp.Err.Status()
		if out.Err == nil {
			out.Err = resp.Err
		}
	}
	return out
}

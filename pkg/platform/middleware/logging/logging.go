// Package logging writes one structured line when a request enters the
// pipeline and one when its response leaves.
package logging

import (
	"context"
	"log/slog"
	"time"

	"github.com/mssola/useragent"

	"usergate/pkg/platform/pipeline"
	"usergate/pkg/requestcontext"
)

// RequestObserver records per-request outcome metrics.
type RequestObserver interface {
	ObserveRequest(method string, status int, duration time.Duration)
}

type Interceptor struct {
	logger   *slog.Logger
	observer RequestObserver
	now      func() time.Time
}

type Option func(*Interceptor)

func WithObserver(o RequestObserver) Option {
	return func(i *Interceptor) {
		i.observer = o
	}
}

func WithClock(now func() time.Time) Option {
	return func(i *Interceptor) {
		i.now = now
	}
}

func New(logger *slog.Logger, opts ...Option) *Interceptor {
	if logger == nil {
		logger = slog.Default()
	}
	i := &Interceptor{logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

func (*Interceptor) Name() string { return "logging" }

func (i *Interceptor) Inbound(ctx context.Context, req *requestcontext.Request) (*pipeline.Response, error) {
	attrs := []any{
		"request_id", req.RequestID,
		"method", req.Method,
		"path", req.Path,
		"client_ip", req.ClientIP,
	}
	if raw := req.Header.Get("User-Agent"); raw != "" {
		ua := useragent.New(raw)
		browser, browserVersion := ua.Browser()
		attrs = append(attrs,
			"user_agent", raw,
			"browser", browser,
			"browser_version", browserVersion,
			"os", ua.OS(),
			"mobile", ua.Mobile(),
			"bot", ua.Bot(),
		)
	} else {
		attrs = append(attrs, "user_agent", "Unknown")
	}
	i.logger.InfoContext(ctx, "request started", attrs...)
	return nil, nil
}

func (i *Interceptor) Outbound(ctx context.Context, req *requestcontext.Request, resp *pipeline.Response) *pipeline.Response {
	var duration time.Duration
	if !req.StartedAt.IsZero() {
		duration = i.now().Sub(req.StartedAt)
	}
	i.logger.InfoContext(ctx, "request completed",
		"request_id", req.RequestID,
		"method", req.Method,
		"path", req.Path,
		"client_ip", req.ClientIP,
		"status", resp.Status,
		"duration_ms", duration.Milliseconds(),
	)
	if i.observer != nil {
		i.observer.ObserveRequest(req.Method, resp.Status, duration)
	}
	return resp
}

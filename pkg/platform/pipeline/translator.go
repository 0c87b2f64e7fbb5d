package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strconv"

	dErrors "usergate/pkg/domain-errors"
	"usergate/pkg/requestcontext"
)

// ErrorObserver receives the taxonomy code of every translated error.
type ErrorObserver interface {
	ObserveError(code string)
}

// Translator turns any error into an error envelope response and logs it.
// 4xx kinds are logged at INFO, server kinds at ERROR with the fault detail.
type Translator struct {
	logger   *slog.Logger
	observer ErrorObserver
}

// NewTranslator creates a translator. observer may be nil.
func NewTranslator(logger *slog.Logger, observer ErrorObserver) *Translator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Translator{logger: logger, observer: observer}
}

// Translate renders err as a response.
func (t *Translator) Translate(ctx context.Context, req *requestcontext.Request, err error) *Response {
	tr := dErrors.Translate(err)

	attrs := []any{
		"request_id", req.RequestID,
		"method", req.Method,
		"path", req.Path,
		"code", string(tr.Err.Code),
		"status", tr.Status,
	}
	if tr.Err.Code.IsClientError() {
		t.logger.InfoContext(ctx, "request rejected", append(attrs, "message", tr.Err.Message)...)
	} else {
		attrs = append(attrs, "error", err.Error(), "fault", tr.Fault)
		var p *panicError
		if errors.As(err, &p) {
			attrs = append(attrs, "stack", string(p.stack))
		}
		t.logger.ErrorContext(ctx, "request failed", attrs...)
	}
	if t.observer != nil {
		t.observer.ObserveError(string(tr.Err.Code))
	}

	resp := JSON(tr.Status, tr.Envelope)
	resp.Err = tr.Err
	if tr.Err.RetryAfter > 0 {
		resp.SetHeader("Retry-After", strconv.Itoa(tr.Err.RetryAfter))
	}
	return resp
}

// panicError carries a recovered panic value and the stack it was raised on.
type panicError struct {
	value any
	stack []byte
}

func (p *panicError) Error() string {
	return fmt.Sprintf("panic: %v", p.value)
}

func recovered(v any) error {
	return &panicError{value: v, stack: debug.Stack()}
}

// Package httptransport maps URLs onto pipeline handlers. Every request,
// matched or not, runs through the same pipeline engine so unknown routes
// get the standard headers and error envelope.
package httptransport

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	dErrors "usergate/pkg/domain-errors"
	"usergate/pkg/platform/pipeline"
	"usergate/pkg/requestcontext"
)

// APIPrefix is the mount point of the public API.
const APIPrefix = "/api"

// versionSegment matches a literal version path segment such as "v1.1".
const versionSegment = "/{version:v[0-9.]+}"

// Router registers pipeline handlers on a chi mux. A route is reachable both
// as /api/<path> and /api/v<version>/<path>.
type Router struct {
	mux    chi.Router
	engine *pipeline.Engine
}

// NewRouter creates a Router whose routes and fallbacks run through engine.
func NewRouter(engine *pipeline.Engine) *Router {
	mux := chi.NewRouter()
	mux.Use(middleware.StripSlashes)
	mux.NotFound(engine.HTTPHandler(notFound).ServeHTTP)
	mux.MethodNotAllowed(engine.HTTPHandler(methodNotAllowed).ServeHTTP)
	return &Router{mux: mux, engine: engine}
}

// Handle registers h for method and path, relative to APIPrefix.
func (r *Router) Handle(method, path string, h pipeline.Handler) {
	handler := r.engine.HTTPHandler(withRouteParams(h))
	r.mux.Method(method, APIPrefix+path, handler)
	r.mux.Method(method, APIPrefix+versionSegment+path, handler)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// withRouteParams copies the chi URL parameters onto the pipeline request.
func withRouteParams(h pipeline.Handler) pipeline.Handler {
	return func(ctx context.Context, req *requestcontext.Request) (*pipeline.Response, error) {
		if rctx := chi.RouteContext(ctx); rctx != nil {
			if req.Params == nil {
				req.Params = make(map[string]string, len(rctx.URLParams.Keys))
			}
			for i, key := range rctx.URLParams.Keys {
				req.Params[key] = rctx.URLParams.Values[i]
			}
		}
		return h(ctx, req)
	}
}

func notFound(context.Context, *requestcontext.Request) (*pipeline.Response, error) {
	return nil, dErrors.NotFound("", "")
}

// methodNotAllowed is reported as a validation error; the error taxonomy has
// no dedicated kind for it.
func methodNotAllowed(_ context.Context, req *requestcontext.Request) (*pipeline.Response, error) {
	return nil, dErrors.Validation(fmt.Sprintf("Método %q não permitido.", req.Method))
}

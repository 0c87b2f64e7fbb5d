// Package headers decorates every response with the security and CORS
// headers.
package headers

import (
	"context"
	"strconv"

	"usergate/pkg/platform/pipeline"
	"usergate/pkg/requestcontext"
)

const hstsValue = "max-age=31536000; includeSubDomains"

// Security sets the browser hardening headers. HSTS is only sent on secure
// connections.
type Security struct {
	pipeline.Passthrough
}

func NewSecurity() *Security { return &Security{} }

func (*Security) Name() string { return "security_headers" }

func (*Security) Outbound(_ context.Context, req *requestcontext.Request, resp *pipeline.Response) *pipeline.Response {
	resp.SetHeader("X-Content-Type-Options", "nosniff")
	resp.SetHeader("X-Frame-Options", "DENY")
	resp.SetHeader("X-XSS-Protection", "1; mode=block")
	if req.Secure {
		resp.SetHeader("Strict-Transport-Security", hstsValue)
	}
	return resp
}

// CORSConfig holds the values of the Access-Control-* headers.
type CORSConfig struct {
	AllowOrigin  string
	AllowMethods string
	AllowHeaders string
	MaxAge       int
}

// DefaultCORSConfig is the permissive policy of the public API.
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowOrigin:  "*",
		AllowMethods: "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		AllowHeaders: "Content-Type, Authorization, X-API-Version",
		MaxAge:       3600,
	}
}

// CORS sets the CORS headers on every response and answers preflight
// requests itself.
type CORS struct {
	cfg CORSConfig
}

func NewCORS(cfg CORSConfig) *CORS { return &CORS{cfg: cfg} }

func (*CORS) Name() string { return "cors" }

// Inbound short-circuits a preflight (OPTIONS with
// Access-Control-Request-Method) with 204.
func (*CORS) Inbound(_ context.Context, req *requestcontext.Request) (*pipeline.Response, error) {
	if req.Method == "OPTIONS" && req.Header.Get("Access-Control-Request-Method") != "" {
		return pipeline.NoContent(), nil
	}
	return nil, nil
}

func (c *CORS) Outbound(_ context.Context, _ *requestcontext.Request, resp *pipeline.Response) *pipeline.Response {
	resp.SetHeader("Access-Control-Allow-Origin", c.cfg.AllowOrigin)
	resp.SetHeader("Access-Control-Allow-Methods", c.cfg.AllowMethods)
	resp.SetHeader("Access-Control-Allow-Headers", c.cfg.AllowHeaders)
	resp.SetHeader("Access-Control-Max-Age", strconv.Itoa(c.cfg.MaxAge))
	return resp
}

// Package version resolves the API version of a request.
package version

import (
	"context"
	"fmt"
	"strings"

	id "usergate/pkg/domain"
	dErrors "usergate/pkg/domain-errors"
	"usergate/pkg/platform/pipeline"
	"usergate/pkg/requestcontext"
)

// Header is the request header naming the API version explicitly.
const Header = "X-API-Version"

// Interceptor resolves the version from the header, then from the first
// "v<digits[.digits]>" path segment, then falls back to the default.
// Unsupported versions are rejected before any later stage runs.
type Interceptor struct {
	pipeline.Passthrough
}

func New() *Interceptor { return &Interceptor{} }

func (*Interceptor) Name() string { return "api_version" }

func (*Interceptor) Inbound(_ context.Context, req *requestcontext.Request) (*pipeline.Response, error) {
	raw := Resolve(req.Header.Get(Header), req.Path)
	v, err := id.ParseAPIVersion(raw)
	if err != nil {
		return nil, unsupported(raw)
	}
	req.APIVersion = v
	return nil, nil
}

// Resolve picks the raw version string without validating it.
func Resolve(header, path string) string {
	if v := strings.TrimSpace(header); v != "" {
		return v
	}
	if v, ok := id.VersionFromPath(path); ok {
		return v
	}
	return id.DefaultVersion().String()
}

func unsupported(raw string) *dErrors.Error {
	supported := id.SupportedVersions()
	names := make([]string, len(supported))
	for i, v := range supported {
		names[i] = v.String()
	}
	e := dErrors.Validation(fmt.Sprintf("Versão da API %s não suportada", raw))
	e.Field = "api_version"
	e.Details = map[string]any{"supported_versions": names}
	return e
}

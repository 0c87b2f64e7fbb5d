// Package jsonbody decodes JSON request bodies into the request record.
package jsonbody

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime"
	"strings"

	dErrors "usergate/pkg/domain-errors"
	"usergate/pkg/platform/middleware/metadata"
	"usergate/pkg/platform/pipeline"
	"usergate/pkg/requestcontext"
)

const (
	msgInvalidJSON = "JSON inválido no body da requisição"
	msgTooLarge    = "Body da requisição muito grande"
	msgUnreadable  = "Não foi possível ler o body da requisição"
)

// Interceptor fills req.Body. Only JSON content types are decoded; every
// other request gets an empty object. The body must be a JSON object.
type Interceptor struct {
	pipeline.Passthrough
}

func New() *Interceptor { return &Interceptor{} }

func (*Interceptor) Name() string { return "json_body" }

func (*Interceptor) Inbound(_ context.Context, req *requestcontext.Request) (*pipeline.Response, error) {
	req.Body = map[string]any{}
	if !IsJSON(req.Header.Get("Content-Type")) {
		return nil, nil
	}
	if req.BodyErr != nil {
		if errors.Is(req.BodyErr, metadata.ErrBodyTooLarge) {
			return nil, dErrors.Validation(msgTooLarge)
		}
		return nil, dErrors.Validation(msgUnreadable)
	}

	raw := bytes.TrimSpace(req.RawBody)
	if len(raw) == 0 {
		return nil, nil
	}
	body, err := decodeObject(raw)
	if err != nil {
		return nil, dErrors.Validation(msgInvalidJSON)
	}
	req.Body = body
	return nil, nil
}

// IsJSON reports whether a Content-Type names JSON (application/json or a
// +json suffix type).
func IsJSON(contentType string) bool {
	if contentType == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

func decodeObject(raw []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	var body map[string]any
	if err := dec.Decode(&body); err != nil {
		return nil, err
	}
	if body == nil {
		return nil, errors.New("body is not an object")
	}
	if dec.More() {
		return nil, errors.New("trailing data after object")
	}
	return body, nil
}

// Package domainerrors defines the closed error taxonomy surfaced to API clients.
//
// Every error that reaches a client carries one of the Codes below. The code
// alone decides the HTTP status and the default message; constructors only
// add the payload (field, resource, value, retry hint) and format the message.
// Anything that is not a *Error is treated as an unanticipated fault and
// downgraded to CodeInternal by Translate.
package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is the stable wire identifier of an error kind.
type Code string

const (
	CodeValidation      Code = "validation_error"
	CodeAuthentication  Code = "authentication_failed"
	CodePermission      Code = "permission_denied"
	CodeNotFound        Code = "not_found"
	CodeDuplicate       Code = "duplicate_resource"
	CodeRateLimit       Code = "rate_limit_exceeded"
	CodeInternal        Code = "error"
	CodeExternalService Code = "external_service_error"
)

var codeStatus = map[Code]int{
	CodeValidation:      http.StatusBadRequest,
	CodeAuthentication:  http.StatusUnauthorized,
	CodePermission:      http.StatusForbidden,
	CodeNotFound:        http.StatusNotFound,
	CodeDuplicate:       http.StatusConflict,
	CodeRateLimit:       http.StatusTooManyRequests,
	CodeInternal:        http.StatusInternalServerError,
	CodeExternalService: http.StatusServiceUnavailable,
}

var codeMessage = map[Code]string{
	CodeValidation:      "Dados inválidos.",
	CodeAuthentication:  "Credenciais inválidas.",
	CodePermission:      "Você não tem permissão para realizar esta ação.",
	CodeNotFound:        "Recurso não encontrado.",
	CodeDuplicate:       "Recurso já existe.",
	CodeRateLimit:       "Muitas requisições. Tente novamente mais tarde.",
	CodeInternal:        "Ocorreu um erro no servidor.",
	CodeExternalService: "Serviço externo indisponível.",
}

// Codes returns every code of the taxonomy in a fixed order.
func Codes() []Code {
	return []Code{
		CodeValidation, CodeAuthentication, CodePermission, CodeNotFound,
		CodeDuplicate, CodeRateLimit, CodeInternal, CodeExternalService,
	}
}

// IsValid reports whether c belongs to the taxonomy.
func (c Code) IsValid() bool {
	_, ok := codeStatus[c]
	return ok
}

// Status returns the HTTP status for the code. Unknown codes map to 500.
func (c Code) Status() int {
	if s, ok := codeStatus[c]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// DefaultMessage returns the fixed user-facing message of the code.
func (c Code) DefaultMessage() string {
	if m, ok := codeMessage[c]; ok {
		return m
	}
	return codeMessage[CodeInternal]
}

func (c Code) String() string {
	return string(c)
}

// Error is a taxonomy error. It is immutable once constructed.
type Error struct {
	Code    Code
	Message string
	// Field names the offending input field, if any.
	Field string
	// Details is the structured payload rendered under error.details.
	Details map[string]any
	// RetryAfter is a hint in seconds, set only for rate limit errors.
	RetryAfter int
	Err        error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Status returns the HTTP status derived from the code.
func (e *Error) Status() int {
	return e.Code.Status()
}

// New builds an error of the given code. An empty message falls back to the
// code's default.
func New(code Code, msg string) *Error {
	if msg == "" {
		msg = code.DefaultMessage()
	}
	return &Error{Code: code, Message: msg}
}

// Wrap attaches a taxonomy code to an underlying error. The cause is kept for
// logging but never rendered to clients.
func Wrap(err error, code Code, msg string) *Error {
	e := New(code, msg)
	e.Err = err
	return e
}

// As extracts the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// HasCode reports whether err's chain contains a taxonomy error of the code.
func HasCode(err error, code Code) bool {
	de, ok := As(err)
	return ok && de.Code == code
}

// Is is shorthand for HasCode.
func Is(err error, code Code) bool {
	return HasCode(err, code)
}

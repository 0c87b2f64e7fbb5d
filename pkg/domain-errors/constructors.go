package domainerrors

import (
	"fmt"
	"strconv"
)

// Validation builds a flat validation error.
func Validation(msg string) *Error {
	return New(CodeValidation, msg)
}

// FieldValidation builds a validation error bound to a single field. The
// details payload is always field-keyed: {field: [msg]}.
func FieldValidation(field, msg string) *Error {
	e := New(CodeValidation, msg)
	if field == "" {
		return e
	}
	e.Field = field
	e.Details = map[string]any{field: []string{e.Message}}
	return e
}

// ValidationFields builds a batched validation error from per-field messages.
func ValidationFields(fields map[string][]string) *Error {
	e := New(CodeValidation, "")
	e.Details = make(map[string]any, len(fields))
	for field, msgs := range fields {
		e.Details[field] = append([]string(nil), msgs...)
	}
	return e
}

// WeakPassword is a validation error carrying the violated password rules.
func WeakPassword(rules []string) *Error {
	e := New(CodeValidation, "Senha não atende aos requisitos mínimos de segurança.")
	e.Field = "password"
	e.Details = map[string]any{"password": append([]string(nil), rules...)}
	return e
}

// Authentication builds an authentication failure.
func Authentication(msg string) *Error {
	return New(CodeAuthentication, msg)
}

// InvalidCredentials is the single indistinguishable login failure.
func InvalidCredentials() *Error {
	return New(CodeAuthentication, "Credenciais inválidas.")
}

// InvalidToken reports a malformed, forged or revoked bearer token.
func InvalidToken() *Error {
	return New(CodeAuthentication, "Token inválido ou expirado.")
}

// ExpiredToken reports a bearer token past its expiry.
func ExpiredToken() *Error {
	return New(CodeAuthentication, "Token expirado. Faça login novamente.")
}

// InactiveUser reports an authenticated identity whose account is disabled.
func InactiveUser() *Error {
	return New(CodeAuthentication, "Sua conta está inativa. Entre em contato com o suporte.")
}

// AuthenticationRequired reports a protected route reached anonymously.
func AuthenticationRequired() *Error {
	return New(CodeAuthentication, "As credenciais de autenticação não foram fornecidas.")
}

// Permission builds a permission failure.
func Permission(msg string) *Error {
	return New(CodePermission, msg)
}

// NotFound formats the message from an optional resource name and id:
//
//	"{resource} com ID {id} não encontrado." when both are given,
//	"{resource} não encontrado." with only a name,
//	the default message otherwise.
func NotFound(resource, id string) *Error {
	switch {
	case resource != "" && id != "":
		return New(CodeNotFound, fmt.Sprintf("%s com ID %s não encontrado.", resource, id))
	case resource != "":
		return New(CodeNotFound, fmt.Sprintf("%s não encontrado.", resource))
	default:
		return New(CodeNotFound, "")
	}
}

// Duplicate formats the message from an optional field and value, degrading
// when the value is absent.
func Duplicate(field, value string) *Error {
	var e *Error
	switch {
	case field != "" && value != "":
		e = New(CodeDuplicate, fmt.Sprintf("%s \"%s\" já está em uso.", field, value))
	case field != "":
		e = New(CodeDuplicate, fmt.Sprintf("%s já está em uso.", field))
	default:
		return New(CodeDuplicate, "")
	}
	e.Field = field
	return e
}

// EmailExists is the duplicate error raised when an email is already taken.
func EmailExists(email string) *Error {
	return Duplicate("email", email)
}

// RateLimited builds a rate limit error. A positive retryAfter is appended to
// the message and exposed as details.retry_after.
func RateLimited(retryAfter int) *Error {
	e := New(CodeRateLimit, "")
	if retryAfter > 0 {
		e.Message = e.Message + " Tente novamente em " + strconv.Itoa(retryAfter) + " segundos."
		e.RetryAfter = retryAfter
		e.Details = map[string]any{"retry_after": retryAfter}
	}
	return e
}

// Database wraps a storage fault as a server error.
func Database(err error) *Error {
	return Wrap(err, CodeInternal, "Erro ao acessar banco de dados.")
}

// ExternalService wraps a dependency failure.
func ExternalService(err error) *Error {
	return Wrap(err, CodeExternalService, "")
}

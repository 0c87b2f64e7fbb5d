package validation

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	msgEmailInvalid    = "Email inválido"
	msgEmailFormat     = "Formato de email inválido"
	msgEmailTooLong    = "Email muito longo"
	msgEmailDisposable = "Emails temporários não são permitidos"
)

var emailPattern = regexp.MustCompile(`^[a-z0-9._%+-]+@[a-z0-9.-]+\.[a-z]{2,}$`)

// Email normalizes email to trimmed lower case and checks it against the
// structural grammar, the length cap and the disposable-domain list. Only the
// first violation is reported.
func (v *Validator) Email(email string) Result {
	normalized := NormalizeEmail(email)
	res := Result{Value: normalized}

	if normalized == "" || v.validate.Var(normalized, "email") != nil {
		res.fail(msgEmailInvalid)
		return res
	}
	if !emailPattern.MatchString(normalized) {
		res.fail(msgEmailFormat)
		return res
	}
	if utf8.RuneCountInString(normalized) > v.policy.EmailMaxLen {
		res.fail(msgEmailTooLong)
		return res
	}
	if _, ok := v.policy.DisposableDomains[emailDomain(normalized)]; ok {
		res.fail(msgEmailDisposable)
	}
	return res
}

// NormalizeEmail trims and lowercases email. It is idempotent.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// emailDomain returns the part after the last '@'.
func emailDomain(email string) string {
	return email[strings.LastIndexByte(email, '@')+1:]
}

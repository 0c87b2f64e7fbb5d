// Package validation enforces the password, email, name and phone policy for
// user payloads.
//
// Validators never stop at the first failing field: every applicable field is
// checked and all messages are collected per field. Within the password rule
// set every violated rule is reported; the other fields report their first
// failing rule.
package validation

import (
	"github.com/go-playground/validator/v10"

	strutil "usergate/pkg/platform/strings"
)

// Policy holds the thresholds and lists the validators apply. It is built once
// at startup and never mutated.
type Policy struct {
	PasswordMinLen    int
	PasswordMaxLen    int
	PasswordSpecials  string
	CommonPasswords   map[string]struct{}
	EmailMaxLen       int
	DisposableDomains map[string]struct{}
	NameMinLen        int
	NameMaxLen        int
	PhoneMinDigits    int
	PhoneMaxDigits    int
	// CountryCode is stripped from phone numbers longer than a local number.
	CountryCode string
	// LocalDigits is the longest local number (area code + subscriber).
	LocalDigits int
}

// DefaultPolicy returns the production policy.
func DefaultPolicy() *Policy {
	return &Policy{
		PasswordMinLen:   8,
		PasswordMaxLen:   128,
		PasswordSpecials: `!@#$%^&*(),.?":{}|<>_-+=[]\;/~` + "`",
		CommonPasswords: strutil.LowerSet(
			"password", "12345678", "qwerty", "abc123", "password123",
			"123456789", "12345", "1234567", "password1", "123456",
		),
		EmailMaxLen: 255,
		DisposableDomains: strutil.LowerSet(
			"tempmail.com", "10minutemail.com", "guerrillamail.com",
			"mailinator.com", "throwaway.email",
		),
		NameMinLen:     2,
		NameMaxLen:     255,
		PhoneMinDigits: 10,
		PhoneMaxDigits: 13,
		CountryCode:    "55",
		LocalDigits:    11,
	}
}

// Validator applies a Policy. It is safe for concurrent use.
type Validator struct {
	policy   *Policy
	validate *validator.Validate
}

// New returns a Validator for policy; a nil policy selects DefaultPolicy.
func New(policy *Policy) *Validator {
	if policy == nil {
		policy = DefaultPolicy()
	}
	return &Validator{policy: policy, validate: validator.New()}
}

// Policy returns the policy the validator applies.
func (v *Validator) Policy() *Policy {
	return v.policy
}

// Result is the outcome of a single-field validator: the normalized value and
// the ordered violations.
type Result struct {
	Value  string
	Errors []string
}

// Valid reports whether no rule was violated.
func (r Result) Valid() bool {
	return len(r.Errors) == 0
}

func (r *Result) fail(msg string) {
	r.Errors = append(r.Errors, msg)
}

var defaultValidator = New(nil)

// Password validates password against the default policy.
func Password(password string) Result { return defaultValidator.Password(password) }

// Email validates and normalizes email against the default policy.
func Email(email string) Result { return defaultValidator.Email(email) }

// Name validates and normalizes name against the default policy.
func Name(name string) Result { return defaultValidator.Name(name) }

// Phone validates and normalizes phone against the default policy.
func Phone(phone string) Result { return defaultValidator.Phone(phone) }

package models

import (
	"time"
)

// Scope names an independent rate limit budget. The same client has one
// window per scope.
type Scope string

const (
	// ScopeGeneric applies to every request (100/min per IP by default).
	ScopeGeneric Scope = "generic"
	// ScopeList guards user listing (100/h per IP).
	ScopeList Scope = "list"
	// ScopeCreate guards account creation (10/h per IP).
	ScopeCreate Scope = "create"
	// ScopeLogin guards login attempts (5/min per IP).
	ScopeLogin Scope = "login"
)

// IsValid checks if the scope is one of the supported values.
func (s Scope) IsValid() bool {
	switch s {
	case ScopeGeneric, ScopeList, ScopeCreate, ScopeLogin:
		return true
	}
	return false
}

func (s Scope) String() string {
	return string(s)
}

// Policy is the budget of one scope: at most Limit events per Window.
type Policy struct {
	Scope  Scope
	Limit  int
	Window time.Duration
}

// WindowSeconds is the window length in whole seconds, at least 1.
func (p Policy) WindowSeconds() int {
	return WindowSeconds(p.Window)
}

// DefaultPolicies returns the built-in budgets keyed by scope.
func DefaultPolicies() map[Scope]Policy {
	return map[Scope]Policy{
		ScopeGeneric: {Scope: ScopeGeneric, Limit: 100, Window: time.Minute},
		ScopeList:    {Scope: ScopeList, Limit: 100, Window: time.Hour},
		ScopeCreate:  {Scope: ScopeCreate, Limit: 10, Window: time.Hour},
		ScopeLogin:   {Scope: ScopeLogin, Limit: 5, Window: time.Minute},
	}
}

// Result represents the outcome of a rate limit check.
type Result struct {
	Allowed   bool      `json:"allowed"`
	Limit     int       `json:"limit"`
	Remaining int       `json:"remaining"`
	ResetAt   time.Time `json:"reset_at"`
	// RetryAfter is the full window length in seconds; set only when not allowed.
	RetryAfter int `json:"retry_after,omitempty"`
}

// WindowSeconds rounds a window up to whole seconds, at least 1.
func WindowSeconds(window time.Duration) int {
	secs := int((window + time.Second - 1) / time.Second)
	if secs < 1 {
		return 1
	}
	return secs
}

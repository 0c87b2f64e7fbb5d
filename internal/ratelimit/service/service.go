package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"usergate/internal/ratelimit/models"
	id "usergate/pkg/domain"
)

// WindowStore records events in per-key sliding windows.
type WindowStore interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (*models.Result, error)
}

// DecisionObserver is told about every allow/reject decision.
type DecisionObserver interface {
	ObserveDecision(scope string, allowed bool)
}

// Rule binds a route (method + normalized path) to a scope.
type Rule struct {
	Method string
	Path   string
	Scope  models.Scope
}

// DefaultRules are the per-route budgets on top of the generic one.
func DefaultRules() []Rule {
	return []Rule{
		{Method: http.MethodGet, Path: "/api/users", Scope: models.ScopeList},
		{Method: http.MethodPost, Path: "/api/users", Scope: models.ScopeCreate},
		{Method: http.MethodPost, Path: "/api/users/login", Scope: models.ScopeLogin},
	}
}

type Service struct {
	store    WindowStore
	policies map[models.Scope]models.Policy
	rules    []Rule
	logger   *slog.Logger
	observer DecisionObserver
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithPolicies overrides the budgets of the given scopes.
func WithPolicies(policies ...models.Policy) Option {
	return func(s *Service) {
		for _, p := range policies {
			s.policies[p.Scope] = p
		}
	}
}

func WithRules(rules []Rule) Option {
	return func(s *Service) {
		s.rules = rules
	}
}

func WithObserver(o DecisionObserver) Option {
	return func(s *Service) {
		s.observer = o
	}
}

func New(store WindowStore, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("window store is required")
	}
	s := &Service{
		store:    store,
		policies: models.DefaultPolicies(),
		rules:    DefaultRules(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	for scope, p := range s.policies {
		if p.Limit <= 0 || p.Window <= 0 {
			return nil, fmt.Errorf("invalid policy for scope %q: limit and window must be positive", scope)
		}
	}
	for _, r := range s.rules {
		if _, ok := s.policies[r.Scope]; !ok {
			return nil, fmt.Errorf("route %s %s uses scope %q without a policy", r.Method, r.Path, r.Scope)
		}
	}
	return s, nil
}

// CheckAndRecord consults the (scope, key) window and records the event only
// when it is allowed.
func (s *Service) CheckAndRecord(ctx context.Context, scope models.Scope, key string, limit int, window time.Duration) (*models.Result, error) {
	result, err := s.store.Allow(ctx, models.Key(scope, key), limit, window)
	if err != nil {
		return nil, fmt.Errorf("check %s rate limit: %w", scope, err)
	}
	if s.observer != nil {
		s.observer.ObserveDecision(scope.String(), result.Allowed)
	}
	if !result.Allowed {
		s.logger.InfoContext(ctx, "rate limit exceeded",
			"scope", scope.String(),
			"limit", limit,
			"window_seconds", models.WindowSeconds(window),
		)
	}
	return result, nil
}

// Check applies the configured policy of scope to key.
func (s *Service) Check(ctx context.Context, scope models.Scope, key string) (*models.Result, error) {
	p, ok := s.policies[scope]
	if !ok {
		return nil, fmt.Errorf("no rate limit policy for scope %q", scope)
	}
	return s.CheckAndRecord(ctx, scope, key, p.Limit, p.Window)
}

// ScopesFor returns the scopes that apply to a request, generic first.
func (s *Service) ScopesFor(method, path string) []models.Scope {
	scopes := []models.Scope{models.ScopeGeneric}
	normalized := NormalizePath(path)
	for _, r := range s.rules {
		if r.Method == method && r.Path == normalized {
			scopes = append(scopes, r.Scope)
		}
	}
	return scopes
}

// NormalizePath drops version segments and the trailing slash so
// "/api/v2.0/users/" and "/api/users" address the same route.
func NormalizePath(path string) string {
	segments := strings.Split(path, "/")
	kept := segments[:0]
	for _, seg := range segments {
		if _, isVersion := id.VersionFromPathSegment(seg); isVersion {
			continue
		}
		kept = append(kept, seg)
	}
	out := strings.Join(kept, "/")
	if len(out) > 1 {
		out = strings.TrimRight(out, "/")
	}
	if out == "" {
		return "/"
	}
	return out
}

// Package service implements the user account operations behind the users
// endpoints. Every error it returns is a taxonomy error.
package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	jwttoken "usergate/internal/jwt_token"
	"usergate/internal/users/models"
	id "usergate/pkg/domain"
	dErrors "usergate/pkg/domain-errors"
	"usergate/pkg/platform/sentinel"
	"usergate/pkg/requestcontext"
)

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks

// Store persists users. Missing users are sentinel.ErrNotFound; email
// collisions are sentinel.ErrConflict.
type Store interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, userID id.UserID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	Update(ctx context.Context, user *models.User) error
	Deactivate(ctx context.Context, userID id.UserID, at time.Time) error
	List(ctx context.Context, filter models.ListFilter) ([]*models.User, int, error)
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(hash, password string) (bool, error)
}

// TokenIssuer mints tokens for a verified identity.
type TokenIssuer interface {
	IssuePair(ctx context.Context, userID id.UserID) (*jwttoken.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (string, id.UserID, error)
}

// Observer is notified of account lifecycle events.
type Observer interface {
	IncrementUsersCreated()
}

// Service coordinates the user store, password hashing and token issuance.
type Service struct {
	store    Store
	hasher   PasswordHasher
	tokens   TokenIssuer
	logger   *slog.Logger
	observer Observer

	dummyOnce sync.Once
	dummyHash string
}

// Option configures a Service.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithObserver(observer Observer) Option {
	return func(s *Service) {
		s.observer = observer
	}
}

func New(store Store, hasher PasswordHasher, tokens TokenIssuer, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("users: store is required")
	}
	if hasher == nil {
		return nil, errors.New("users: password hasher is required")
	}
	if tokens == nil {
		return nil, errors.New("users: token issuer is required")
	}
	s := &Service{
		store:  store,
		hasher: hasher,
		tokens: tokens,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// LoadIdentity returns the current state of userID for request
// authentication. A missing user is sentinel.ErrNotFound.
func (s *Service) LoadIdentity(ctx context.Context, userID id.UserID) (*requestcontext.Identity, error) {
	u, err := s.store.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &requestcontext.Identity{
		UserID:   u.ID,
		Email:    u.Email,
		IsStaff:  u.IsStaff,
		IsActive: u.IsActive,
	}, nil
}

// visible loads userID as seen by actor: staff see inactive accounts, others
// only active ones.
func (s *Service) visible(ctx context.Context, actor *requestcontext.Identity, userID id.UserID) (*models.User, error) {
	u, err := s.store.FindByID(ctx, userID)
	if errors.Is(err, sentinel.ErrNotFound) || (err == nil && !u.IsActive && !actor.IsStaff) {
		return nil, notFound(userID)
	}
	if err != nil {
		return nil, dbError(err)
	}
	return u, nil
}

func notFound(userID id.UserID) *dErrors.Error {
	return dErrors.NotFound("Usuário", userID.String())
}

// storeError maps store failures that have no caller-specific meaning.
func storeError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := dErrors.As(err); ok {
		return err
	}
	return dbError(err)
}

// dbError reports an unreachable store as an external outage and every other
// store failure as a server error.
func dbError(err error) *dErrors.Error {
	if errors.Is(err, sentinel.ErrUnavailable) {
		return dErrors.ExternalService(err)
	}
	return dErrors.Database(err)
}

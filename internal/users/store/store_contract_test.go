package store

import (
	"context"
	"time"

	"github.com/stretchr/testify/suite"

	"usergate/internal/users/models"
	id "usergate/pkg/domain"
	"usergate/pkg/platform/sentinel"
)

// userStore is the behavior both implementations share.
type userStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, userID id.UserID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	Update(ctx context.Context, user *models.User) error
	Deactivate(ctx context.Context, userID id.UserID, at time.Time) error
	List(ctx context.Context, filter models.ListFilter) ([]*models.User, int, error)
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

var (
	_ userStore = (*InMemory)(nil)
	_ userStore = (*PostgresStore)(nil)
)

// contractSuite holds the store behavior tests. Embedding suites set store in
// SetupTest.
type contractSuite struct {
	suite.Suite
	ctx   context.Context
	store userStore
	base  time.Time
}

func (s *contractSuite) newUser(email string, offset time.Duration) *models.User {
	at := s.base.Add(offset)
	return &models.User{
		ID:           id.NewUserID(),
		Name:         "Maria Souza",
		Email:        email,
		PasswordHash: "$2a$04$hash",
		IsActive:     true,
		CreatedAt:    at,
		UpdatedAt:    at,
	}
}

func (s *contractSuite) mustCreate(u *models.User) *models.User {
	s.Require().NoError(s.store.Create(s.ctx, u))
	return u
}

func (s *contractSuite) TestCreateAndLookup() {
	u := s.mustCreate(s.newUser("maria@example.com", 0))

	s.Run("by id", func() {
		found, err := s.store.FindByID(s.ctx, u.ID)
		s.Require().NoError(err)
		s.Equal(u.Email, found.Email)
		s.Equal(u.Name, found.Name)
		s.True(found.IsActive)
		s.True(u.CreatedAt.Equal(found.CreatedAt))
	})

	s.Run("by email", func() {
		found, err := s.store.FindByEmail(s.ctx, "maria@example.com")
		s.Require().NoError(err)
		s.Equal(u.ID, found.ID)
	})

	s.Run("email exists", func() {
		exists, err := s.store.EmailExists(s.ctx, "maria@example.com")
		s.Require().NoError(err)
		s.True(exists)

		exists, err = s.store.EmailExists(s.ctx, "nobody@example.com")
		s.Require().NoError(err)
		s.False(exists)
	})

	s.Run("missing user", func() {
		_, err := s.store.FindByID(s.ctx, id.NewUserID())
		s.ErrorIs(err, sentinel.ErrNotFound)

		_, err = s.store.FindByEmail(s.ctx, "nobody@example.com")
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *contractSuite) TestDuplicateEmail() {
	s.mustCreate(s.newUser("dup@example.com", 0))

	err := s.store.Create(s.ctx, s.newUser("dup@example.com", time.Second))
	s.ErrorIs(err, sentinel.ErrConflict)
}

func (s *contractSuite) TestUpdate() {
	a := s.mustCreate(s.newUser("a@example.com", 0))
	b := s.mustCreate(s.newUser("b@example.com", time.Second))

	s.Run("changes fields and email index", func() {
		a.Name = "Ana Lima"
		a.Email = "ana@example.com"
		a.UpdatedAt = s.base.Add(time.Hour)
		s.Require().NoError(s.store.Update(s.ctx, a))

		found, err := s.store.FindByEmail(s.ctx, "ana@example.com")
		s.Require().NoError(err)
		s.Equal("Ana Lima", found.Name)

		exists, err := s.store.EmailExists(s.ctx, "a@example.com")
		s.Require().NoError(err)
		s.False(exists)
	})

	s.Run("email held by another user conflicts", func() {
		b.Email = "ana@example.com"
		s.ErrorIs(s.store.Update(s.ctx, b), sentinel.ErrConflict)
	})

	s.Run("unknown user", func() {
		s.ErrorIs(s.store.Update(s.ctx, s.newUser("ghost@example.com", 0)), sentinel.ErrNotFound)
	})
}

func (s *contractSuite) TestDeactivate() {
	u := s.mustCreate(s.newUser("gone@example.com", 0))
	at := s.base.Add(2 * time.Hour)

	s.Require().NoError(s.store.Deactivate(s.ctx, u.ID, at))

	found, err := s.store.FindByID(s.ctx, u.ID)
	s.Require().NoError(err)
	s.False(found.IsActive)
	s.True(at.Equal(found.UpdatedAt))

	s.ErrorIs(s.store.Deactivate(s.ctx, id.NewUserID(), at), sentinel.ErrNotFound)
}

func (s *contractSuite) TestList() {
	oldest := s.mustCreate(s.newUser("u1@example.com", 0))
	middle := s.mustCreate(s.newUser("u2@example.com", time.Minute))
	newest := s.mustCreate(s.newUser("u3@example.com", 2*time.Minute))
	s.Require().NoError(s.store.Deactivate(s.ctx, middle.ID, s.base.Add(time.Hour)))

	s.Run("active only, newest first", func() {
		users, total, err := s.store.List(s.ctx, models.ListFilter{Limit: 10})
		s.Require().NoError(err)
		s.Equal(2, total)
		s.Require().Len(users, 2)
		s.Equal(newest.ID, users[0].ID)
		s.Equal(oldest.ID, users[1].ID)
	})

	s.Run("including inactive, paged", func() {
		users, total, err := s.store.List(s.ctx, models.ListFilter{IncludeInactive: true, Offset: 1, Limit: 1})
		s.Require().NoError(err)
		s.Equal(3, total)
		s.Require().Len(users, 1)
		s.Equal(middle.ID, users[0].ID)
	})

	s.Run("offset past the end", func() {
		users, total, err := s.store.List(s.ctx, models.ListFilter{Offset: 10, Limit: 5})
		s.Require().NoError(err)
		s.Equal(2, total)
		s.Empty(users)
	})
}

func (s *contractSuite) TestRunInTx() {
	err := s.store.RunInTx(s.ctx, func(ctx context.Context) error {
		exists, err := s.store.EmailExists(ctx, "tx@example.com")
		s.Require().NoError(err)
		s.Require().False(exists)
		return s.store.Create(ctx, s.newUser("tx@example.com", 0))
	})
	s.Require().NoError(err)

	exists, err := s.store.EmailExists(s.ctx, "tx@example.com")
	s.Require().NoError(err)
	s.True(exists)
}

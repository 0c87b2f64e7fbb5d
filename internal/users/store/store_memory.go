// Package store persists user accounts. The in-memory store backs local runs
// and tests; the Postgres store backs deployments.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"usergate/internal/users/models"
	id "usergate/pkg/domain"
	"usergate/pkg/platform/sentinel"
)

// InMemory keeps users in maps guarded by a single RWMutex. Returned users
// are copies.
type InMemory struct {
	// txMu serializes RunInTx callers; mu guards the maps.
	txMu    sync.Mutex
	mu      sync.RWMutex
	users   map[id.UserID]*models.User
	byEmail map[string]id.UserID
}

func NewInMemory() *InMemory {
	return &InMemory{
		users:   make(map[id.UserID]*models.User),
		byEmail: make(map[string]id.UserID),
	}
}

func (s *InMemory) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.ID]; ok {
		return sentinel.ErrConflict
	}
	if _, ok := s.byEmail[user.Email]; ok {
		return sentinel.ErrConflict
	}
	s.users[user.ID] = user.Clone()
	s.byEmail[user.Email] = user.ID
	return nil
}

func (s *InMemory) FindByID(_ context.Context, userID id.UserID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if u, ok := s.users[userID]; ok {
		return u.Clone(), nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if userID, ok := s.byEmail[email]; ok {
		return s.users[userID].Clone(), nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) EmailExists(_ context.Context, email string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.byEmail[email]
	return ok, nil
}

// Update replaces the stored user. Changing the email to one held by another
// user fails with sentinel.ErrConflict.
func (s *InMemory) Update(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.users[user.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if owner, taken := s.byEmail[user.Email]; taken && owner != user.ID {
		return sentinel.ErrConflict
	}
	delete(s.byEmail, current.Email)
	s.users[user.ID] = user.Clone()
	s.byEmail[user.Email] = user.ID
	return nil
}

// Deactivate soft-deletes the user by clearing its active flag.
func (s *InMemory) Deactivate(_ context.Context, userID id.UserID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return sentinel.ErrNotFound
	}
	u.IsActive = false
	u.UpdatedAt = at
	return nil
}

// List returns one page of users ordered by creation time, newest first, and
// the total number of users matching the filter.
func (s *InMemory) List(_ context.Context, filter models.ListFilter) ([]*models.User, int, error) {
	s.mu.RLock()
	matched := make([]*models.User, 0, len(s.users))
	for _, u := range s.users {
		if !filter.IncludeInactive && !u.IsActive {
			continue
		}
		matched = append(matched, u.Clone())
	}
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID.String() < matched[j].ID.String()
	})

	total := len(matched)
	start := min(max(filter.Offset, 0), total)
	end := total
	if filter.Limit > 0 {
		end = min(start+filter.Limit, total)
	}
	return matched[start:end], total, nil
}

// RunInTx serializes fn against other RunInTx callers. There is no rollback:
// each store call inside fn applies immediately.
func (s *InMemory) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	return fn(ctx)
}

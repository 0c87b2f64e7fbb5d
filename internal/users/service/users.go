package service

import (
	"context"
	"errors"

	"usergate/internal/users/models"
	id "usergate/pkg/domain"
	dErrors "usergate/pkg/domain-errors"
	"usergate/pkg/platform/sentinel"
	"usergate/pkg/requestcontext"
)

const (
	msgEditForbidden   = "Você não tem permissão para editar este usuário."
	msgDeleteForbidden = "Você não tem permissão para deletar este usuário."
)

// Create registers a new active account. The input is already validated and
// normalized.
func (s *Service) Create(ctx context.Context, in models.CreateUser) (*models.User, error) {
	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "")
	}

	now := requestcontext.Now(ctx)
	user := &models.User{
		ID:           id.NewUserID(),
		Name:         in.Name,
		Email:        in.Email,
		Phone:        in.Phone,
		PasswordHash: hash,
		IsActive:     true,
		IsStaff:      in.IsStaff,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = s.store.RunInTx(ctx, func(ctx context.Context) error {
		exists, err := s.store.EmailExists(ctx, user.Email)
		if err != nil {
			return dbError(err)
		}
		if exists {
			return dErrors.EmailExists(user.Email)
		}
		if err := s.store.Create(ctx, user); err != nil {
			if errors.Is(err, sentinel.ErrConflict) {
				return dErrors.EmailExists(user.Email)
			}
			return dbError(err)
		}
		return nil
	})
	if err != nil {
		return nil, storeError(err)
	}

	if s.observer != nil {
		s.observer.IncrementUsersCreated()
	}
	s.logger.InfoContext(ctx, "user created",
		"request_id", requestcontext.RequestID(ctx),
		"user_id", user.ID.String(),
	)
	return user, nil
}

// Get returns userID as visible to actor.
func (s *Service) Get(ctx context.Context, actor *requestcontext.Identity, userID id.UserID) (*models.User, error) {
	return s.visible(ctx, actor, userID)
}

// List returns a page of users. Staff also see inactive accounts.
func (s *Service) List(ctx context.Context, actor *requestcontext.Identity, offset, limit int) ([]*models.User, int, error) {
	users, total, err := s.store.List(ctx, models.ListFilter{
		IncludeInactive: actor.IsStaff,
		Offset:          offset,
		Limit:           limit,
	})
	if err != nil {
		return nil, 0, dbError(err)
	}
	return users, total, nil
}

// Update applies a partial update. Only the account owner or staff may
// update; IsActive is honored for staff only.
func (s *Service) Update(ctx context.Context, actor *requestcontext.Identity, userID id.UserID, in models.UpdateUser) (*models.User, error) {
	if !actor.IsStaff && actor.UserID != userID {
		return nil, dErrors.Permission(msgEditForbidden)
	}

	var hash string
	if in.Password != nil {
		h, err := s.hasher.Hash(*in.Password)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "")
		}
		hash = h
	}

	var updated *models.User
	err := s.store.RunInTx(ctx, func(ctx context.Context) error {
		u, err := s.visible(ctx, actor, userID)
		if err != nil {
			return err
		}
		if in.Name != nil {
			u.Name = *in.Name
		}
		if in.Email != nil && *in.Email != u.Email {
			exists, err := s.store.EmailExists(ctx, *in.Email)
			if err != nil {
				return dbError(err)
			}
			if exists {
				return dErrors.EmailExists(*in.Email)
			}
			u.Email = *in.Email
		}
		if in.Phone != nil {
			u.Phone = *in.Phone
		}
		if in.IsActive != nil && actor.IsStaff {
			u.IsActive = *in.IsActive
		}
		if hash != "" {
			u.PasswordHash = hash
		}
		u.UpdatedAt = requestcontext.Now(ctx)

		if err := s.store.Update(ctx, u); err != nil {
			switch {
			case errors.Is(err, sentinel.ErrConflict):
				return dErrors.EmailExists(u.Email)
			case errors.Is(err, sentinel.ErrNotFound):
				return notFound(userID)
			}
			return dbError(err)
		}
		updated = u
		return nil
	})
	if err != nil {
		return nil, storeError(err)
	}

	s.logger.InfoContext(ctx, "user updated",
		"request_id", requestcontext.RequestID(ctx),
		"user_id", userID.String(),
		"actor_id", actor.UserID.String(),
	)
	return updated, nil
}

// Deactivate soft-deletes userID. Only the account owner or staff may do so.
func (s *Service) Deactivate(ctx context.Context, actor *requestcontext.Identity, userID id.UserID) error {
	if !actor.IsStaff && actor.UserID != userID {
		return dErrors.Permission(msgDeleteForbidden)
	}
	if _, err := s.visible(ctx, actor, userID); err != nil {
		return err
	}
	if err := s.store.Deactivate(ctx, userID, requestcontext.Now(ctx)); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return notFound(userID)
		}
		return dbError(err)
	}

	s.logger.InfoContext(ctx, "user deactivated",
		"request_id", requestcontext.RequestID(ctx),
		"user_id", userID.String(),
		"actor_id", actor.UserID.String(),
	)
	return nil
}

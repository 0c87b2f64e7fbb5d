package service

import (
	"context"
	"errors"

	jwttoken "usergate/internal/jwt_token"
	"usergate/internal/users/models"
	id "usergate/pkg/domain"
	dErrors "usergate/pkg/domain-errors"
	"usergate/pkg/platform/sentinel"
	"usergate/pkg/requestcontext"
)

const (
	msgPasswordForbidden = "Você só pode alterar sua própria senha."
	msgOldPasswordWrong  = "Senha atual incorreta"
)

const dummyPassword = "usergate-dummy-password"

// Login verifies credentials and mints a token pair. Unknown email, wrong
// password and inactive account all fail with the same error.
func (s *Service) Login(ctx context.Context, email, password string) (*models.User, *jwttoken.TokenPair, error) {
	u, err := s.store.FindByEmail(ctx, email)
	if errors.Is(err, sentinel.ErrNotFound) {
		s.burnVerify(password)
		s.logger.InfoContext(ctx, "login rejected",
			"request_id", requestcontext.RequestID(ctx),
			"client_ip", requestcontext.ClientIP(ctx),
		)
		return nil, nil, dErrors.InvalidCredentials()
	}
	if err != nil {
		return nil, nil, dbError(err)
	}

	ok, err := s.hasher.Verify(u.PasswordHash, password)
	if err != nil {
		s.logger.ErrorContext(ctx, "stored password hash unreadable",
			"request_id", requestcontext.RequestID(ctx),
			"user_id", u.ID.String(),
			"error", err,
		)
		return nil, nil, dErrors.InvalidCredentials()
	}
	if !ok || !u.IsActive {
		s.logger.InfoContext(ctx, "login rejected",
			"request_id", requestcontext.RequestID(ctx),
			"client_ip", requestcontext.ClientIP(ctx),
			"user_id", u.ID.String(),
		)
		return nil, nil, dErrors.InvalidCredentials()
	}

	pair, err := s.tokens.IssuePair(ctx, u.ID)
	if err != nil {
		return nil, nil, storeError(err)
	}

	s.logger.InfoContext(ctx, "login succeeded",
		"request_id", requestcontext.RequestID(ctx),
		"user_id", u.ID.String(),
	)
	return u, pair, nil
}

// burnVerify runs a verification against a hash of the service's own cost so
// an unknown email takes as long to reject as a wrong password.
func (s *Service) burnVerify(password string) {
	s.dummyOnce.Do(func() {
		if h, err := s.hasher.Hash(dummyPassword); err == nil {
			s.dummyHash = h
		}
	})
	if s.dummyHash == "" {
		return
	}
	_, _ = s.hasher.Verify(s.dummyHash, password)
}

// RefreshAccess exchanges a refresh token for a new access token as long as
// the account still exists and is active.
func (s *Service) RefreshAccess(ctx context.Context, refreshToken string) (string, error) {
	access, userID, err := s.tokens.Refresh(ctx, refreshToken)
	if err != nil {
		return "", storeError(err)
	}
	u, err := s.store.FindByID(ctx, userID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return "", dErrors.InvalidToken()
	}
	if err != nil {
		return "", dbError(err)
	}
	if !u.IsActive {
		return "", dErrors.InactiveUser()
	}
	return access, nil
}

// ChangePassword replaces the owner's password after checking the current
// one. The new password is already validated.
func (s *Service) ChangePassword(ctx context.Context, actor *requestcontext.Identity, userID id.UserID, in models.ChangePassword) error {
	if actor.UserID != userID {
		return dErrors.Permission(msgPasswordForbidden)
	}

	return storeError(s.store.RunInTx(ctx, func(ctx context.Context) error {
		u, err := s.visible(ctx, actor, userID)
		if err != nil {
			return err
		}
		ok, err := s.hasher.Verify(u.PasswordHash, in.OldPassword)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "")
		}
		if !ok {
			return dErrors.ValidationFields(map[string][]string{
				"old_password": {msgOldPasswordWrong},
			})
		}
		hash, err := s.hasher.Hash(in.NewPassword)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "")
		}
		u.PasswordHash = hash
		u.UpdatedAt = requestcontext.Now(ctx)
		if err := s.store.Update(ctx, u); err != nil {
			return dbError(err)
		}
		s.logger.InfoContext(ctx, "password changed",
			"request_id", requestcontext.RequestID(ctx),
			"user_id", userID.String(),
		)
		return nil
	}))
}

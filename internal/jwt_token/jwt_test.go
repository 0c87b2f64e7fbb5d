package jwttoken

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "usergate/pkg/domain"
	dErrors "usergate/pkg/domain-errors"
)

var (
	ctx       = context.Background()
	issuedAt  = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	jwtUserID = id.NewUserID()
)

func newService(now time.Time) *JWTService {
	return NewJWTService("test-signing-key", "test-issuer", "test-audience",
		WithTTL(time.Hour, 24*time.Hour),
		WithClock(func() time.Time { return now }),
	)
}

func Test_IssuePair(t *testing.T) {
	svc := newService(issuedAt)
	pair, err := svc.IssuePair(ctx, jwtUserID)
	require.NoError(t, err)
	require.NotEmpty(t, pair.Access)
	require.NotEmpty(t, pair.Refresh)

	claims, err := svc.ValidateToken(pair.Access)
	require.NoError(t, err)
	assert.Equal(t, jwtUserID.String(), claims.UserID)
	assert.Equal(t, TypeAccess, claims.TokenType)
	assert.Equal(t, issuedAt.Add(time.Hour), claims.ExpiresAt.Time.UTC())
	assert.NotEmpty(t, claims.ID)

	got, err := svc.ParseAccessToken(ctx, pair.Access)
	require.NoError(t, err)
	assert.Equal(t, jwtUserID, got)
}

func Test_ParseAccessToken_RejectsRefreshToken(t *testing.T) {
	svc := newService(issuedAt)
	pair, err := svc.IssuePair(ctx, jwtUserID)
	require.NoError(t, err)

	_, err = svc.ParseAccessToken(ctx, pair.Refresh)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeAuthentication))
	assert.Equal(t, dErrors.InvalidToken().Message, err.Error())
}

func Test_ParseAccessToken_Expired(t *testing.T) {
	pair, err := newService(issuedAt).IssuePair(ctx, jwtUserID)
	require.NoError(t, err)

	_, err = newService(issuedAt.Add(2*time.Hour)).ParseAccessToken(ctx, pair.Access)
	require.Error(t, err)
	assert.Equal(t, dErrors.ExpiredToken().Message, err.Error())
}

func Test_ParseAccessToken_Invalid(t *testing.T) {
	svc := newService(issuedAt)

	tests := []struct {
		name  string
		token func(t *testing.T) string
	}{
		{name: "garbage", token: func(*testing.T) string { return "invalid-token-string" }},
		{name: "wrong key", token: func(t *testing.T) string {
			pair, err := NewJWTService("other-key", "test-issuer", "test-audience",
				WithClock(func() time.Time { return issuedAt })).IssuePair(ctx, jwtUserID)
			require.NoError(t, err)
			return pair.Access
		}},
		{name: "wrong audience", token: func(t *testing.T) string {
			pair, err := NewJWTService("test-signing-key", "test-issuer", "other",
				WithClock(func() time.Time { return issuedAt })).IssuePair(ctx, jwtUserID)
			require.NoError(t, err)
			return pair.Access
		}},
		{name: "unsigned", token: func(t *testing.T) string {
			tok := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
				UserID:    jwtUserID.String(),
				TokenType: TypeAccess,
				RegisteredClaims: jwt.RegisteredClaims{
					Issuer:    "test-issuer",
					Audience:  []string{"test-audience"},
					ExpiresAt: jwt.NewNumericDate(issuedAt.Add(time.Hour)),
				},
			})
			s, err := tok.SignedString(jwt.UnsafeAllowNoneSignatureType)
			require.NoError(t, err)
			return s
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ParseAccessToken(ctx, tt.token(t))
			require.Error(t, err)
			assert.Equal(t, dErrors.InvalidToken().Message, err.Error())
		})
	}
}

func Test_Refresh(t *testing.T) {
	svc := newService(issuedAt)
	pair, err := svc.IssuePair(ctx, jwtUserID)
	require.NoError(t, err)

	access, userID, err := svc.Refresh(ctx, pair.Refresh)
	require.NoError(t, err)
	assert.Equal(t, jwtUserID, userID)

	got, err := svc.ParseAccessToken(ctx, access)
	require.NoError(t, err)
	assert.Equal(t, jwtUserID, got)

	_, _, err = svc.Refresh(ctx, pair.Access)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeAuthentication))
}

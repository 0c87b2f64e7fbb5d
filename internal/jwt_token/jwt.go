package jwttoken

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	id "usergate/pkg/domain"
	dErrors "usergate/pkg/domain-errors"
)

// Token types carried in the token_type claim.
const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

// Defaults applied when the service is built without explicit lifetimes.
const (
	DefaultAccessTTL  = 60 * time.Minute
	DefaultRefreshTTL = 24 * time.Hour
)

// Claims represents the JWT claims of access and refresh tokens.
type Claims struct {
	UserID    string `json:"user_id"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// TokenPair is what a successful login returns.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// JWTService mints and validates HS256 tokens for a verified identity.
type JWTService struct {
	signingKey []byte
	issuer     string
	audience   string
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// Option configures a JWTService.
type Option func(*JWTService)

// WithTTL overrides the access and refresh lifetimes. Non-positive values
// keep the defaults.
func WithTTL(access, refresh time.Duration) Option {
	return func(s *JWTService) {
		if access > 0 {
			s.accessTTL = access
		}
		if refresh > 0 {
			s.refreshTTL = refresh
		}
	}
}

// WithClock injects the time source used for issuing and validating.
func WithClock(now func() time.Time) Option {
	return func(s *JWTService) {
		if now != nil {
			s.now = now
		}
	}
}

func NewJWTService(signingKey string, issuer string, audience string, opts ...Option) *JWTService {
	s := &JWTService{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		audience:   audience,
		accessTTL:  DefaultAccessTTL,
		refreshTTL: DefaultRefreshTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IssuePair mints an access and a refresh token for userID.
func (s *JWTService) IssuePair(_ context.Context, userID id.UserID) (*TokenPair, error) {
	access, err := s.sign(userID, TypeAccess, s.accessTTL)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "")
	}
	refresh, err := s.sign(userID, TypeRefresh, s.refreshTTL)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "")
	}
	return &TokenPair{Access: access, Refresh: refresh}, nil
}

// Refresh exchanges a valid refresh token for a new access token.
func (s *JWTService) Refresh(_ context.Context, refreshToken string) (string, id.UserID, error) {
	userID, err := s.parse(refreshToken, TypeRefresh)
	if err != nil {
		return "", id.UserID{}, err
	}
	access, err := s.sign(userID, TypeAccess, s.accessTTL)
	if err != nil {
		return "", id.UserID{}, dErrors.Wrap(err, dErrors.CodeInternal, "")
	}
	return access, userID, nil
}

// ParseAccessToken validates an access token and returns its subject.
// Refresh tokens are rejected.
func (s *JWTService) ParseAccessToken(_ context.Context, token string) (id.UserID, error) {
	return s.parse(token, TypeAccess)
}

// ValidateToken validates signature, issuer, audience and expiry and returns
// the claims. Failures are InvalidToken or ExpiredToken taxonomy errors.
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.ExpiredToken()
		}
		return nil, dErrors.InvalidToken()
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, dErrors.InvalidToken()
	}
	return claims, nil
}

func (s *JWTService) parse(token string, tokenType string) (id.UserID, error) {
	claims, err := s.ValidateToken(token)
	if err != nil {
		return id.UserID{}, err
	}
	if claims.TokenType != tokenType {
		return id.UserID{}, dErrors.InvalidToken()
	}
	userID, err := id.ParseUserID(claims.UserID)
	if err != nil {
		return id.UserID{}, dErrors.InvalidToken()
	}
	return userID, nil
}

func (s *JWTService) sign(userID id.UserID, tokenType string, ttl time.Duration) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID:    userID.String(),
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.issuer,
			Audience:  []string{s.audience},
			ID:        id.NewTokenID().String(),
		},
	})
	return token.SignedString(s.signingKey)
}

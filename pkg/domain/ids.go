// Package domain holds the shared domain primitives: typed identifiers and
// API versions. Values are validated once at the trust boundary.
package domain

import (
	"strings"

	"github.com/google/uuid"

	dErrors "usergate/pkg/domain-errors"
)

// UserID identifies a user account.
type UserID uuid.UUID

// TokenID identifies a single issued token (the JWT "jti").
type TokenID uuid.UUID

// NewUserID returns a fresh random user id.
func NewUserID() UserID { return UserID(uuid.New()) }

// NewTokenID returns a fresh random token id.
func NewTokenID() TokenID { return TokenID(uuid.New()) }

// ParseUserID parses external input into a UserID.
func ParseUserID(s string) (UserID, error) {
	u, err := parseUUID(s, "user_id")
	return UserID(u), err
}

// ParseTokenID parses external input into a TokenID.
func ParseTokenID(s string) (TokenID, error) {
	u, err := parseUUID(s, "token_id")
	return TokenID(u), err
}

func (id UserID) String() string  { return uuid.UUID(id).String() }
func (id UserID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }
func (id TokenID) String() string { return uuid.UUID(id).String() }
func (id TokenID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }

// parseUUID rejects empty, malformed and nil UUIDs. Only the canonical
// 36-character form is accepted.
func parseUUID(s, field string) (uuid.UUID, error) {
	if strings.TrimSpace(s) == "" {
		return uuid.Nil, dErrors.FieldValidation(field, "Identificador é obrigatório")
	}
	if len(s) != 36 {
		return uuid.Nil, dErrors.FieldValidation(field, "Identificador inválido")
	}
	u, err := uuid.Parse(s)
	if err != nil || u == uuid.Nil {
		return uuid.Nil, dErrors.FieldValidation(field, "Identificador inválido")
	}
	return u, nil
}

package models

import (
	"time"

	id "usergate/pkg/domain"
)

// User is a stored account. Email is unique and kept normalized.
type User struct {
	ID           id.UserID
	Name         string
	Email        string
	Phone        string
	PasswordHash string
	IsActive     bool
	IsStaff      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Clone returns a copy that shares no memory with u.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}

// ListFilter selects a page of users, newest first.
type ListFilter struct {
	IncludeInactive bool
	Offset          int
	Limit           int
}

// UserResponse is the public representation of a user.
type UserResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ToResponse drops the credential and staff flag.
func ToResponse(u *User) UserResponse {
	return UserResponse{
		ID:        u.ID.String(),
		Name:      u.Name,
		Email:     u.Email,
		Phone:     u.Phone,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// ToResponses maps a slice of users.
func ToResponses(users []*User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, ToResponse(u))
	}
	return out
}

// UserMessageResponse wraps a user with a confirmation message.
type UserMessageResponse struct {
	Message string       `json:"message"`
	User    UserResponse `json:"user"`
}

// MessageResponse is a bare confirmation.
type MessageResponse struct {
	Message string `json:"message"`
}

// Page is a paginated listing.
type Page struct {
	Count    int            `json:"count"`
	Next     *string        `json:"next"`
	Previous *string        `json:"previous"`
	Results  []UserResponse `json:"results"`
}

// LoginResponse is returned by a successful login.
type LoginResponse struct {
	Access  string       `json:"access"`
	Refresh string       `json:"refresh"`
	User    UserResponse `json:"user"`
}

// RefreshResponse carries a freshly minted access token.
type RefreshResponse struct {
	Access string `json:"access"`
}

// UpdateUser is a validated partial update. Nil fields are left unchanged.
type UpdateUser struct {
	Name     *string
	Email    *string
	Phone    *string
	Password *string
	IsActive *bool
}

// CreateUser is a validated account creation request. IsStaff is only set
// by operator tooling, never from an API payload.
type CreateUser struct {
	Name     string
	Email    string
	Phone    string
	Password string
	IsStaff  bool
}

// ChangePassword is a password change request.
type ChangePassword struct {
	OldPassword     string
	NewPassword     string
	ConfirmPassword string
}

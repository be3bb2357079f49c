package model

import (
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
)

// User is an account. Vendors own products; staff manage deliveries.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	Phone        *string   `json:"phone,omitempty"`
	IsVendor     bool      `json:"is_vendor"`
	IsStaff      bool      `json:"is_staff"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Actor identifies the authenticated caller of an operation.
type Actor struct {
	UserID   uuid.UUID
	IsVendor bool
	IsStaff  bool
}

// RegisterRequest is the payload for account creation.
type RegisterRequest struct {
	Email    string  `json:"email"`
	Name     string  `json:"name"`
	Password string  `json:"password"`
	Phone    *string `json:"phone,omitempty"`
	IsVendor bool    `json:"is_vendor"`
}

// Normalize lower-cases and trims the email.
func (r *RegisterRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Name = strings.TrimSpace(r.Name)
}

func (r RegisterRequest) Validate() error {
	var v Validator
	v.Required(r.Email, "email")
	if r.Email != "" {
		_, err := mail.ParseAddress(r.Email)
		v.Check(err == nil, "email", "Enter a valid email address.")
	}
	v.Required(r.Name, "name")
	v.Check(len(r.Password) >= 8, "password", "Password must be at least 8 characters.")
	return v.Err()
}

// LoginRequest is the payload for token issue.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r LoginRequest) Validate() error {
	var v Validator
	v.Required(r.Email, "email")
	v.Required(r.Password, "password")
	return v.Err()
}

// AuthResponse is returned on successful register or login.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      User      `json:"user"`
}

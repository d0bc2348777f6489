package user

import (
	"time"

	"github.com/google/uuid"
)

// Role represents user role in the system
type Role string

const (
	RoleArtist  Role = "artist"
	RoleManager Role = "manager"
	RoleAdmin   Role = "admin"
)

// User represents a user account
type User struct {
	ID            uuid.UUID `db:"id"`
	Email         string    `db:"email"`
	PasswordHash  string    `db:"password_hash"`
	Role          Role      `db:"role"`
	Name          string    `db:"name"`
	EmailVerified bool      `db:"email_verified"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

// HasPassword is false for accounts created through social sign-in only
func (u *User) HasPassword() bool {
	return u.PasswordHash != ""
}

// IsAdmin returns true if user is an admin
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Identity links an external provider account to a user
type Identity struct {
	ID              uuid.UUID `db:"id"`
	UserID          uuid.UUID `db:"user_id"`
	Provider        string    `db:"provider"`
	ProviderSubject string    `db:"provider_subject"`
	Email           string    `db:"email"`
	CreatedAt       time.Time `db:"created_at"`
}

// IsValidRole checks if role may be chosen at registration
func IsValidRole(role string) bool {
	return role == string(RoleArtist) || role == string(RoleManager)
}

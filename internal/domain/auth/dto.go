package auth

import (
	"time"

	"github.com/google/uuid"

	"github.com/wallspace/wallspace-api/internal/domain/user"
)

// RegisterRequest for POST /auth/register
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Name     string `json:"name" validate:"required,min=1,max=100"`
	Role     string `json:"role" validate:"required,role"`
}

// LoginRequest for POST /auth/login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest for POST /auth/refresh and /auth/logout
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// SocialLoginRequest for POST /auth/social.
// Role is used only when a new account has to be created.
type SocialLoginRequest struct {
	Provider    string `json:"provider" validate:"required,provider"`
	AccessToken string `json:"access_token" validate:"required"`
	Role        string `json:"role" validate:"omitempty,role"`
}

// LinkIdentityRequest for POST /auth/identities
type LinkIdentityRequest struct {
	Provider    string `json:"provider" validate:"required,provider"`
	AccessToken string `json:"access_token" validate:"required"`
}

// AuthResponse returned after login/register
type AuthResponse struct {
	User   UserResponse   `json:"user"`
	Tokens TokensResponse `json:"tokens"`
}

// UserResponse represents user in API response
type UserResponse struct {
	ID            uuid.UUID `json:"id"`
	Email         string    `json:"email"`
	Name          string    `json:"name"`
	Role          string    `json:"role"`
	EmailVerified bool      `json:"email_verified"`
	HasPassword   bool      `json:"has_password"`
	CreatedAt     string    `json:"created_at"`
}

// TokensResponse represents tokens in API response
type TokensResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"` // seconds until access token expires
	TokenType    string `json:"token_type"`
}

// IdentityResponse is a linked provider account
type IdentityResponse struct {
	Provider  string `json:"provider"`
	Email     string `json:"email,omitempty"`
	CreatedAt string `json:"created_at"`
}

// NewUserResponse creates UserResponse from a user
func NewUserResponse(u *user.User) UserResponse {
	return UserResponse{
		ID:            u.ID,
		Email:         u.Email,
		Name:          u.Name,
		Role:          string(u.Role),
		EmailVerified: u.EmailVerified,
		HasPassword:   u.HasPassword(),
		CreatedAt:     u.CreatedAt.Format(time.RFC3339),
	}
}

// NewIdentityResponse hides the provider subject from clients
func NewIdentityResponse(i *user.Identity) IdentityResponse {
	return IdentityResponse{
		Provider:  i.Provider,
		Email:     i.Email,
		CreatedAt: i.CreatedAt.Format(time.RFC3339),
	}
}

package auth

import "errors"

var (
	ErrEmailAlreadyExists  = errors.New("email already registered")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrInvalidRole         = errors.New("invalid role, must be 'artist' or 'manager'")
	ErrInvalidRefreshToken = errors.New("invalid or expired refresh token")
	ErrUserNotFound        = errors.New("user not found")
	ErrSessionsUnavailable = errors.New("session store unavailable")

	// Identity linking
	ErrProviderRejected     = errors.New("identity provider rejected the token")
	ErrProviderUnknown      = errors.New("identity provider not configured")
	ErrProviderUnavailable  = errors.New("identity provider unavailable")
	ErrProviderEmailMissing = errors.New("identity provider returned no email")
	ErrIdentityUnverified   = errors.New("email belongs to an existing account but the provider has not verified it")
	ErrIdentityTaken        = errors.New("identity is linked to another account")
)

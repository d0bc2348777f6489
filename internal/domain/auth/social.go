package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/wallspace/wallspace-api/internal/domain/user"
	"github.com/wallspace/wallspace-api/internal/pkg/oidc"
)

// SocialLogin signs in with a provider access token.
//
// Resolution order: a known identity signs in its user; otherwise an account
// with the same email is linked only when the provider vouches for the email;
// otherwise a new password-less account is created with the identity.
func (s *Service) SocialLogin(ctx context.Context, req *SocialLoginRequest) (*AuthResponse, error) {
	info, err := s.userInfo(ctx, req.Provider, req.AccessToken)
	if err != nil {
		return nil, err
	}

	identity, err := s.userRepo.GetIdentity(ctx, req.Provider, info.Subject)
	if err != nil {
		return nil, fmt.Errorf("lookup identity: %w", err)
	}
	if identity != nil {
		u, err := s.userRepo.GetByID(ctx, identity.UserID)
		if err != nil {
			return nil, err
		}
		if u == nil {
			return nil, ErrUserNotFound
		}
		return s.IssueTokens(ctx, u)
	}

	if info.Email == "" {
		return nil, ErrProviderEmailMissing
	}

	existing, err := s.userRepo.GetByEmail(ctx, info.Email)
	if err != nil {
		return nil, fmt.Errorf("lookup email: %w", err)
	}
	if existing != nil {
		if !info.EmailVerified {
			return nil, ErrIdentityUnverified
		}
		if err := s.link(ctx, existing.ID, req.Provider, info); err != nil {
			return nil, err
		}
		if !existing.EmailVerified {
			if err := s.userRepo.UpdateEmailVerified(ctx, existing.ID, true); err != nil {
				return nil, err
			}
			existing.EmailVerified = true
		}
		return s.IssueTokens(ctx, existing)
	}

	role := req.Role
	if role == "" {
		role = string(user.RoleArtist)
	}
	if !user.IsValidRole(role) {
		return nil, ErrInvalidRole
	}

	u := &user.User{
		ID:            uuid.New(),
		Email:         info.Email,
		Role:          user.Role(role),
		Name:          info.Name,
		EmailVerified: info.EmailVerified,
	}
	newIdentity := &user.Identity{
		ID:              uuid.New(),
		Provider:        req.Provider,
		ProviderSubject: info.Subject,
		Email:           info.Email,
	}
	if err := s.userRepo.CreateWithIdentity(ctx, u, newIdentity); err != nil {
		switch {
		case errors.Is(err, user.ErrEmailAlreadyExists):
			return nil, ErrIdentityUnverified
		case errors.Is(err, user.ErrIdentityAlreadyUsed):
			return nil, ErrIdentityTaken
		}
		return nil, err
	}

	return s.IssueTokens(ctx, u)
}

// LinkIdentity attaches a provider account to the caller
func (s *Service) LinkIdentity(ctx context.Context, userID uuid.UUID, req *LinkIdentityRequest) (*IdentityResponse, error) {
	info, err := s.userInfo(ctx, req.Provider, req.AccessToken)
	if err != nil {
		return nil, err
	}

	existing, err := s.userRepo.GetIdentity(ctx, req.Provider, info.Subject)
	if err != nil {
		return nil, fmt.Errorf("lookup identity: %w", err)
	}
	if existing != nil {
		if existing.UserID != userID {
			return nil, ErrIdentityTaken
		}
		resp := NewIdentityResponse(existing)
		return &resp, nil
	}

	identity := &user.Identity{
		ID:              uuid.New(),
		UserID:          userID,
		Provider:        req.Provider,
		ProviderSubject: info.Subject,
		Email:           info.Email,
	}
	if err := s.userRepo.LinkIdentity(ctx, identity); err != nil {
		if errors.Is(err, user.ErrIdentityAlreadyUsed) {
			return nil, ErrIdentityTaken
		}
		return nil, err
	}

	resp := NewIdentityResponse(identity)
	return &resp, nil
}

// ListIdentities returns the caller's linked providers
func (s *Service) ListIdentities(ctx context.Context, userID uuid.UUID) ([]IdentityResponse, error) {
	identities, err := s.userRepo.ListIdentities(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]IdentityResponse, 0, len(identities))
	for _, i := range identities {
		out = append(out, NewIdentityResponse(i))
	}
	return out, nil
}

func (s *Service) link(ctx context.Context, userID uuid.UUID, provider string, info *oidc.UserInfo) error {
	err := s.userRepo.LinkIdentity(ctx, &user.Identity{
		ID:              uuid.New(),
		UserID:          userID,
		Provider:        provider,
		ProviderSubject: info.Subject,
		Email:           info.Email,
	})
	if errors.Is(err, user.ErrIdentityAlreadyUsed) {
		return ErrIdentityTaken
	}
	return err
}

func (s *Service) userInfo(ctx context.Context, provider, accessToken string) (*oidc.UserInfo, error) {
	if s.identities == nil {
		return nil, ErrProviderUnknown
	}
	info, err := s.identities.UserInfo(ctx, provider, accessToken)
	switch {
	case err == nil:
		return info, nil
	case errors.Is(err, oidc.ErrUnknownProvider):
		return nil, ErrProviderUnknown
	case errors.Is(err, oidc.ErrInvalidToken):
		return nil, ErrProviderRejected
	default:
		return nil, fmt.Errorf("%w: %w", ErrProviderUnavailable, err)
	}
}

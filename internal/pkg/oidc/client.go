package oidc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/wallspace/wallspace-api/internal/pkg/httpclient"
)

var (
	ErrUnknownProvider = errors.New("unknown identity provider")
	ErrInvalidToken    = errors.New("provider rejected access token")
	ErrUpstream        = errors.New("identity provider unavailable")
)

// UserInfo is the subset of OIDC userinfo claims used for account linking
type UserInfo struct {
	Subject       string
	Email         string
	EmailVerified bool
	Name          string
}

// Client fetches userinfo from per-provider OIDC endpoints
type Client struct {
	endpoints map[string]string
	http      *http.Client
}

// NewClient creates a client; endpoints maps provider name to userinfo URL
func NewClient(endpoints map[string]string, timeout time.Duration) *Client {
	return &Client{endpoints: endpoints, http: httpclient.New(timeout)}
}

// UserInfo exchanges an access token for the provider's userinfo claims
func (c *Client) UserInfo(ctx context.Context, provider, accessToken string) (*UserInfo, error) {
	endpoint := c.endpoints[provider]
	if endpoint == "" {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, provider)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("oidc: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v", ErrUpstream, provider, httpclient.Describe(ctx, err), err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: read %s response: %v", ErrUpstream, provider, err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w: %s status=%d", ErrInvalidToken, provider, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: %s status=%d body=%s", ErrUpstream, provider, resp.StatusCode, string(body))
	}

	var claims struct {
		Sub           string   `json:"sub"`
		Email         string   `json:"email"`
		EmailVerified flexBool `json:"email_verified"`
		Name          string   `json:"name"`
	}
	if err := json.Unmarshal(body, &claims); err != nil {
		return nil, fmt.Errorf("%w: decode %s userinfo: %v", ErrUpstream, provider, err)
	}
	if claims.Sub == "" {
		return nil, fmt.Errorf("%w: %s userinfo has no subject", ErrUpstream, provider)
	}

	return &UserInfo{
		Subject:       claims.Sub,
		Email:         strings.ToLower(strings.TrimSpace(claims.Email)),
		EmailVerified: bool(claims.EmailVerified),
		Name:          claims.Name,
	}, nil
}

// flexBool accepts true and "true"; some providers send the claim as a string
type flexBool bool

func (b *flexBool) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	*b = flexBool(strings.EqualFold(s, "true"))
	return nil
}

package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/wallspace/wallspace-api/internal/domain/user"
	"github.com/wallspace/wallspace-api/internal/middleware"
	"github.com/wallspace/wallspace-api/internal/pkg/jwt"
	"github.com/wallspace/wallspace-api/internal/pkg/oidc"
	"github.com/wallspace/wallspace-api/internal/pkg/password"
)

func newTestRouter(t *testing.T, repo *fakeUserRepo, provider IdentityProvider) (http.Handler, *jwt.Service) {
	t.Helper()
	jwtSvc := jwt.NewService("secret", time.Minute, time.Hour)
	h := NewHandler(NewService(repo, jwtSvc, newMemoryTokenStore(), provider))
	noop := func(next http.Handler) http.Handler { return next }
	return h.Routes(middleware.Auth(jwtSvc), noop), jwtSvc
}

func doJSON(t *testing.T, h http.Handler, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestLoginHandlerReturnsTokens(t *testing.T) {
	hash, _ := password.Hash("password123")
	u := &user.User{ID: uuid.New(), Email: "v@example.com", PasswordHash: hash, Role: user.RoleArtist, CreatedAt: time.Now()}
	h, _ := newTestRouter(t, newFakeUserRepo(u), nil)

	rr := doJSON(t, h, http.MethodPost, "/login", LoginRequest{Email: u.Email, Password: "password123"}, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}

	var out struct {
		Success bool `json:"success"`
		Data    struct {
			Tokens struct {
				AccessToken  string `json:"access_token"`
				RefreshToken string `json:"refresh_token"`
			} `json:"tokens"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !out.Success || out.Data.Tokens.AccessToken == "" || out.Data.Tokens.RefreshToken == "" {
		t.Fatal("expected tokens in response")
	}

	rr = doJSON(t, h, http.MethodGet, "/me", nil, out.Data.Tokens.AccessToken)
	if rr.Code != http.StatusOK {
		t.Fatalf("me: expected 200, got %d", rr.Code)
	}
}

func TestLoginHandlerWrongPassword(t *testing.T) {
	hash, _ := password.Hash("password123")
	u := &user.User{ID: uuid.New(), Email: "v@example.com", PasswordHash: hash, Role: user.RoleArtist}
	h, _ := newTestRouter(t, newFakeUserRepo(u), nil)

	rr := doJSON(t, h, http.MethodPost, "/login", LoginRequest{Email: u.Email, Password: "nope-nope"}, "")
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}

func TestRegisterHandlerValidation(t *testing.T) {
	h, _ := newTestRouter(t, newFakeUserRepo(), nil)

	rr := doJSON(t, h, http.MethodPost, "/register", map[string]string{
		"email": "not-an-email", "password": "short", "name": "X", "role": "admin",
	}, "")
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d body=%s", rr.Code, rr.Body.String())
	}

	var out struct {
		Error struct {
			Details map[string]string `json:"details"`
		} `json:"error"`
	}
	_ = json.Unmarshal(rr.Body.Bytes(), &out)
	for _, field := range []string{"email", "password", "role"} {
		if _, ok := out.Error.Details[field]; !ok {
			t.Fatalf("expected validation detail for %s, got %v", field, out.Error.Details)
		}
	}
}

func TestSocialHandlerUnverifiedConflict(t *testing.T) {
	existing := &user.User{ID: uuid.New(), Email: "a@example.com", Role: user.RoleArtist}
	h, _ := newTestRouter(t, newFakeUserRepo(existing), fakeProvider{
		"tok": {Subject: "s", Email: "a@example.com", EmailVerified: false},
	})

	rr := doJSON(t, h, http.MethodPost, "/social", SocialLoginRequest{Provider: "kakao", AccessToken: "tok"}, "")
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestLinkIdentityRequiresAuth(t *testing.T) {
	h, _ := newTestRouter(t, newFakeUserRepo(), fakeProvider{"tok": &oidc.UserInfo{Subject: "s"}})
	rr := doJSON(t, h, http.MethodPost, "/identities", LinkIdentityRequest{Provider: "google", AccessToken: "tok"}, "")
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}

func TestSocialHandlerMissingEmail(t *testing.T) {
	h, _ := newTestRouter(t, newFakeUserRepo(), fakeProvider{
		"tok": {Subject: "s", EmailVerified: true},
	})

	rr := doJSON(t, h, http.MethodPost, "/social", SocialLoginRequest{Provider: "kakao", AccessToken: "tok", Role: "artist"}, "")
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d body=%s", rr.Code, rr.Body.String())
	}
}

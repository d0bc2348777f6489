package oidc

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestUserInfo(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer good" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"sub":"g-123","email":" Artist@Example.com ","email_verified":"true","name":"Mina"}`))
	}))
	t.Cleanup(server.Close)

	c := NewClient(map[string]string{"google": server.URL}, time.Second)

	info, err := c.UserInfo(context.Background(), "google", "good")
	if err != nil {
		t.Fatalf("userinfo: %v", err)
	}
	if info.Subject != "g-123" || info.Email != "artist@example.com" || !info.EmailVerified || info.Name != "Mina" {
		t.Fatalf("unexpected userinfo %+v", info)
	}

	if _, err := c.UserInfo(context.Background(), "google", "bad"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
	if _, err := c.UserInfo(context.Background(), "naver", "good"); !errors.Is(err, ErrUnknownProvider) {
		t.Fatalf("expected ErrUnknownProvider, got %v", err)
	}
}

func TestUserInfoRequiresSubject(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"email":"x@example.com","email_verified":false}`))
	}))
	t.Cleanup(server.Close)

	_, err := NewClient(map[string]string{"kakao": server.URL}, time.Second).UserInfo(context.Background(), "kakao", "t")
	if !errors.Is(err, ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
}

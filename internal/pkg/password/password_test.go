package password

import (
	"errors"
	"strings"
	"testing"
)

func TestHashAndVerify(t *testing.T) {
	hash, err := Hash("gallery-wall-2025")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !Verify("gallery-wall-2025", hash) {
		t.Fatalf("expected password to verify")
	}
	if Verify("wrong", hash) {
		t.Fatalf("expected wrong password to fail")
	}
}

func TestVerifyEmptyHash(t *testing.T) {
	if Verify("", "") {
		t.Fatalf("empty hash must never verify")
	}
}

func TestHashTooLong(t *testing.T) {
	if _, err := Hash(strings.Repeat("x", 73)); !errors.Is(err, ErrTooLong) {
		t.Fatalf("expected ErrTooLong, got %v", err)
	}
}

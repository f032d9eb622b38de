package auth

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func newTestTokenService(t *testing.T) *TokenService {
	t.Helper()
	ts, err := NewTokenService("test-secret-at-least-16-chars!!", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	return ts
}

func TestNewTokenService_ShortSecret(t *testing.T) {
	_, err := NewTokenService("short", time.Hour)
	if err == nil {
		t.Fatal("NewTokenService() should reject secrets shorter than 16 chars")
	}
}

func TestNewTokenService_DefaultTTL(t *testing.T) {
	ts, err := NewTokenService("this-is-16-chars", 0)
	if err != nil {
		t.Fatalf("NewTokenService() unexpected error for valid secret: %v", err)
	}
	if ts.TTL() != DefaultTTL {
		t.Errorf("TTL() = %v, want %v", ts.TTL(), DefaultTTL)
	}
}

func TestGenerate_LooksLikeJWT(t *testing.T) {
	ts := newTestTokenService(t)

	token, err := ts.Generate("user-123")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if got := strings.Count(token, "."); got != 2 {
		t.Errorf("Generate() token doesn't look like a JWT (expected 2 dots, got %d)", got)
	}
}

func TestValidate_RoundTrip(t *testing.T) {
	ts := newTestTokenService(t)
	userID := "cv37rs3pp9olc6atsptg"

	token, err := ts.Generate(userID)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	got, err := ts.Validate(token)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if got != userID {
		t.Errorf("Validate() userID = %q, want %q", got, userID)
	}
}

func TestValidate_ExpiredToken(t *testing.T) {
	ts := newTestTokenService(t)

	token, err := ts.GenerateWithDuration("user-123", -1*time.Second)
	if err != nil {
		t.Fatalf("GenerateWithDuration() error = %v", err)
	}

	_, err = ts.Validate(token)
	if !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("Validate() error = %v, want ErrTokenExpired", err)
	}
}

func TestValidate_Rejects(t *testing.T) {
	ts := newTestTokenService(t)
	other, _ := NewTokenService("wrong-secret-32-chars-long!!!!!!", time.Hour)

	good, _ := ts.Generate("user-123")
	foreign, _ := other.Generate("user-123")

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty", token: ""},
		{name: "garbage", token: "not.a.jwt.token"},
		{name: "tampered signature", token: good[:len(good)-3] + "xxx"},
		{name: "signed with another secret", token: foreign},
		{name: "unsigned alg none", token: "eyJhbGciOiJub25lIiwidHlwIjoiSldUIn0.eyJzdWIiOiJ1c2VyLTEyMyJ9."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ts.Validate(tt.token); err == nil {
				t.Fatal("Validate() should return an error")
			}
		})
	}
}

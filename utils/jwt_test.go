package utils

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func TestParseAccessTokenRoundTrip(t *testing.T) {
	raw := signToken(t, testSecret, jwt.MapClaims{
		"sub":   "user-123",
		"email": "admin@example.com",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})

	claims, err := ParseAccessToken(testSecret, raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserID != "user-123" || claims.Email != "admin@example.com" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestParseAccessTokenWrongSecret(t *testing.T) {
	raw := signToken(t, "other-secret", jwt.MapClaims{
		"sub": "user-123",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	if _, err := ParseAccessToken(testSecret, raw); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestParseAccessTokenExpired(t *testing.T) {
	raw := signToken(t, testSecret, jwt.MapClaims{
		"sub": "user-123",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})
	if _, err := ParseAccessToken(testSecret, raw); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestParseAccessTokenMissingSubject(t *testing.T) {
	raw := signToken(t, testSecret, jwt.MapClaims{
		"email": "admin@example.com",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})
	if _, err := ParseAccessToken(testSecret, raw); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestParseAccessTokenNoSecretConfigured(t *testing.T) {
	if _, err := ParseAccessToken("", "whatever"); err == nil {
		t.Fatalf("expected error with empty secret")
	}
}

package utils

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// AccessClaims is what the admin panel needs out of an identity-provider
// access token: who the user is. Supabase signs access tokens with the
// project JWT secret (HS256), so they are verifiable locally.
type AccessClaims struct {
	UserID string
	Email  string
}

var ErrInvalidToken = errors.New("invalid or expired token")

// ParseAccessToken verifies the token signature and expiry and extracts the
// subject and email claims.
func ParseAccessToken(secret, tokenString string) (*AccessClaims, error) {
	if secret == "" {
		return nil, errors.New("server misconfigured: JWT secret not set")
	}
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	out := &AccessClaims{}
	if sub, ok := claims["sub"].(string); ok {
		out.UserID = sub
	}
	if email, ok := claims["email"].(string); ok {
		out.Email = email
	}
	if out.UserID == "" {
		return nil, ErrInvalidToken
	}
	return out, nil
}

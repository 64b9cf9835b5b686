package jwt

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ExpiresAt returns the exp claim of token without verifying it. ok is false
// when token is not a JWT or carries no exp.
func ExpiresAt(token string) (exp time.Time, ok bool) {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

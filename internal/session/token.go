package session

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/attendflow/attendflow/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

// ErrNoExpiry is returned for tokens without an exp claim.
var ErrNoExpiry = errors.New("token has no exp claim")

// TokenExpiry reads the exp claim of a JWT without verifying its signature.
func TokenExpiry(token string) (time.Time, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, fmt.Errorf("parse token: %w", err)
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, fmt.Errorf("read exp claim: %w", err)
	}
	if exp == nil {
		return time.Time{}, ErrNoExpiry
	}
	return exp.Time, nil
}

// IsPlaceholderToken reports whether token was issued locally for a
// response that carried no token.
func IsPlaceholderToken(token string) bool {
	return strings.HasPrefix(token, domain.PlaceholderTokenPrefix)
}

// IsPlaceholderRefreshToken reports whether token is a local placeholder
// refresh token, which the backend would reject.
func IsPlaceholderRefreshToken(token string) bool {
	return strings.HasPrefix(token, domain.PlaceholderRefreshTokenPrefix)
}

// internal/auth/jwt.go
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/baharkarakas/storefront-backend/internal/apperr"
)

// TokenManager issues and resolves session tokens. There is no server-side
// revocation; expiry is the only invalidation.
type TokenManager struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenManager(secret, issuer string, ttl time.Duration) *TokenManager {
	return &TokenManager{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}
}

type Claims struct {
	UserID string `json:"uid"`
	jwt.RegisteredClaims
}

// Issue signs a token for userID valid for the configured TTL.
func (tm *TokenManager) Issue(userID string) (string, time.Time, error) {
	now := tm.now()
	exp := now.Add(tm.ttl)
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tm.issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(tm.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return tok, exp, nil
}

// Resolve validates the token and returns the bound user id. Failures are
// one of apperr.ErrTokenExpired, ErrTokenMalformed or ErrTokenUnverifiable.
func (tm *TokenManager) Resolve(tokenStr string) (string, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("wrong signing method %v", t.Header["alg"])
		}
		return tm.secret, nil
	},
		jwt.WithIssuer(tm.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(tm.now),
	)
	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenExpired):
		return "", fmt.Errorf("%w: %v", apperr.ErrTokenExpired, err)
	case errors.Is(err, jwt.ErrTokenMalformed):
		return "", fmt.Errorf("%w: %v", apperr.ErrTokenMalformed, err)
	default:
		return "", fmt.Errorf("%w: %v", apperr.ErrTokenUnverifiable, err)
	}
	if claims.UserID == "" {
		return "", fmt.Errorf("%w: missing uid claim", apperr.ErrTokenMalformed)
	}
	return claims.UserID, nil
}

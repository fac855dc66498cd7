// Package token issues and verifies the signed session tokens used by the
// public site (cookie) and the admin dashboard (bearer header).
package token

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const RoleAdmin = "admin"

// ErrUnauthenticated is the only failure Verify reports. Malformed tokens,
// bad signatures and expired tokens are indistinguishable to callers.
var ErrUnauthenticated = errors.New("unauthenticated")

type Claims struct {
	ID    uint   `json:"id"`
	Email string `json:"email"`
	Nome  string `json:"nome"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

func (c *Claims) IsAdmin() bool {
	return c.Role == RoleAdmin
}

// Issue signs claims with HS256. The expiry is now+ttl.
func Issue(claims Claims, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func Verify(tokenString, secret string) (*Claims, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithExpirationRequired())
	if err != nil || !tok.Valid {
		slog.Debug("token rejected", slog.Any("reason", err))
		return nil, ErrUnauthenticated
	}
	if claims.ID == 0 {
		slog.Debug("token rejected", slog.String("reason", "missing id"))
		return nil, ErrUnauthenticated
	}
	return claims, nil
}

// Package auth issues and verifies the bearer tokens used by the API and
// carries the resolved request identity through the request context.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/golang-jwt/jwt/v4"

	"github.com/MinhQuan1102/news-website/pkg/storage"
)

const DefaultTokenTTL = 72 * time.Hour

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrNoIdentity   = errors.New("no identity in context")
)

type ctxKeyUser struct{}

var userKey = ctxKeyUser{}

// WithUser stores the authenticated user in the context.
func WithUser(ctx context.Context, u storage.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

// UserFromContext returns the authenticated user attached by the auth
// middleware.
func UserFromContext(ctx context.Context) (storage.User, error) {
	u, ok := ctx.Value(userKey).(storage.User)
	if !ok {
		return storage.User{}, ErrNoIdentity
	}
	return u, nil
}

// NewToken signs an HS256 token whose subject is the given user id.
func NewToken(secret string, userID uuid.UUID, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// ParseToken verifies signature and expiry against the secret and returns the
// subject user id. Every failure mode collapses into ErrInvalidToken.
func ParseToken(secret, tokenStr string) (uuid.UUID, error) {
	var claims jwt.RegisteredClaims
	token, err := jwt.ParseWithClaims(tokenStr, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return uuid.Nil, ErrInvalidToken
	}

	id, err := uuid.FromString(claims.Subject)
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}

	return id, nil
}

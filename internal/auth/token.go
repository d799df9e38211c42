package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/storecore/catalog-api/internal/models"
)

// TokenManager issues and verifies signed session tokens. Tokens are
// stateless: nothing is stored server-side, validity is derived from the
// signature, the expiry horizon, and the subject's password-change timestamp
// (checked by the middleware, not here).
type TokenManager struct {
	secret string
	expiry time.Duration
}

// NewTokenManager creates a TokenManager with the configured secret and TTL.
func NewTokenManager(secret string, expiry time.Duration) *TokenManager {
	return &TokenManager{
		secret: secret,
		expiry: expiry,
	}
}

// Issue produces a signed token embedding the subject identifier and the
// current issuance time, expiring after the configured TTL.
func (tm *TokenManager) Issue(userID, email string) (string, error) {
	now := time.Now()

	claims := &models.TokenClaims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(tm.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString([]byte(tm.secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// Verify parses and validates a token, returning its claims. Expired tokens
// fail with models.ErrExpiredToken; anything else malformed or mis-signed
// fails with models.ErrInvalidToken.
func (tm *TokenManager) Verify(tokenString string) (*models.TokenClaims, error) {
	claims := &models.TokenClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(tm.secret), nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, models.ErrExpiredToken
		}
		return nil, models.ErrInvalidToken
	}

	if !token.Valid || claims.UserID == "" {
		return nil, models.ErrInvalidToken
	}

	return claims, nil
}

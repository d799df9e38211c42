package models

import "github.com/golang-jwt/jwt/v5"

// TokenClaims are the claims embedded in a session token: the subject user
// plus the registered issued-at/expiry set. Validity is derived entirely from
// signature, expiry, and comparison against the subject's PasswordChangedAt;
// nothing is persisted server-side.
type TokenClaims struct {
	UserID string `json:"uid"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

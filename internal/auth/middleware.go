package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/storecore/catalog-api/internal/models"
	"github.com/storecore/catalog-api/pkg/httpapi"
)

// contextKey is a custom type for context keys
type contextKey string

const (
	// UserContextKey is the key for storing the resolved user in context
	UserContextKey contextKey = "user"
)

// UserResolver fetches the subject of a verified token.
type UserResolver interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// Authenticate validates the bearer token, resolves its subject, and rejects
// stale sessions: a token issued before the subject's most recent password
// change is invalid regardless of expiry, so a leaked token dies the moment
// the legitimate user rotates their password.
func Authenticate(tm *TokenManager, users UserResolver) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				httpapi.WriteUnauthorized(w, "you are not logged in, please log in to access this route")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				httpapi.WriteUnauthorized(w, "invalid authorization header format")
				return
			}

			claims, err := tm.Verify(parts[1])
			if err != nil {
				if errors.Is(err, models.ErrExpiredToken) {
					httpapi.WriteUnauthorized(w, "token has expired, please log in again")
					return
				}
				httpapi.WriteUnauthorized(w, "invalid token")
				return
			}

			user, err := users.GetByID(r.Context(), claims.UserID)
			if err != nil {
				if errors.Is(err, models.ErrNotFound) {
					httpapi.WriteUnauthorized(w, "the user belonging to this token no longer exists")
					return
				}
				httpapi.WriteInternalError(w, "internal server error")
				return
			}

			if err := checkSessionFreshness(user, claims); errors.Is(err, models.ErrStaleToken) {
				httpapi.WriteUnauthorized(w, "password changed after token issuance, please log in again")
				return
			}

			ctx := context.WithValue(r.Context(), UserContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// checkSessionFreshness fails with models.ErrStaleToken when the token was
// issued before the subject's most recent password change. The comparison is
// at second precision, matching the token's issued-at claim.
func checkSessionFreshness(user *models.User, claims *models.TokenClaims) error {
	if user.PasswordChangedAt != nil && claims.IssuedAt != nil &&
		user.PasswordChangedAt.Unix() > claims.IssuedAt.Unix() {
		return models.ErrStaleToken
	}
	return nil
}

// RequireAdmin enforces the admin role. Must run after Authenticate.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := GetUserFromContext(r)
		if user == nil {
			httpapi.WriteUnauthorized(w, "unauthorized")
			return
		}

		if !user.IsAdmin() {
			httpapi.WriteForbidden(w, "insufficient permissions")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// GetUserFromContext extracts the resolved user from the request context
func GetUserFromContext(r *http.Request) *models.User {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	if !ok {
		return nil
	}
	return user
}

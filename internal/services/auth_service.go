package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/storecore/catalog-api/internal/auth"
	"github.com/storecore/catalog-api/internal/models"
	pkgauth "github.com/storecore/catalog-api/pkg/auth"
	"github.com/storecore/catalog-api/pkg/logger"
)

// AuthService handles login and token issuance
type AuthService struct {
	users       UserRepository
	tokens      *auth.TokenManager
	logger      *slog.Logger
	auditLogger *logger.AuditLogger
}

// NewAuthService creates a new AuthService
func NewAuthService(users UserRepository, tokens *auth.TokenManager, log *slog.Logger, auditLogger *logger.AuditLogger) *AuthService {
	return &AuthService{
		users:       users,
		tokens:      tokens,
		logger:      log,
		auditLogger: auditLogger,
	}
}

// AuthResponse carries a freshly issued token and its subject
type AuthResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Login verifies credentials and issues a session token. Unknown email and
// wrong password both come back as ErrUnauthorized so the response does not
// leak which accounts exist.
func (s *AuthService) Login(ctx context.Context, email, password, ipAddress string) (*AuthResponse, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.logger.Info("login attempt for unknown account",
				slog.String("email", logger.SanitizedEmail(email)))
			s.auditLogger.LogAuthAttempt(logger.AuditEvent{
				EventType:     "login",
				IPAddress:     ipAddress,
				Success:       false,
				FailureReason: "user_not_found",
			})
			return nil, models.ErrUnauthorized
		}
		s.logger.Error("failed to get user by email", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if err := pkgauth.ComparePassword(user.PasswordHash, password); err != nil {
		s.auditLogger.LogAuthAttempt(logger.AuditEvent{
			EventType:     "login",
			UserID:        user.ID,
			IPAddress:     ipAddress,
			Success:       false,
			FailureReason: "invalid_password",
		})
		return nil, models.ErrUnauthorized
	}

	token, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		s.logger.Error("failed to issue token", slog.String("user_id", user.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.auditLogger.LogAuthAttempt(logger.AuditEvent{
		EventType: "login",
		UserID:    user.ID,
		IPAddress: ipAddress,
		Success:   true,
	})

	return &AuthResponse{Token: token, User: user}, nil
}

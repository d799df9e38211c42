package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/storecore/catalog-api/internal/models"
	"github.com/storecore/catalog-api/internal/query"
	"github.com/storecore/catalog-api/pkg/auth"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context, spec query.Spec) ([]map[string]any, query.Pagination, error)
	Create(ctx context.Context, user *models.User) (*models.User, error)
	Update(ctx context.Context, id string, user *models.User) (*models.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string, changedAt time.Time) error
	Delete(ctx context.Context, id string) error
}

// UserService handles user business logic
type UserService struct {
	repo   UserRepository
	logger *slog.Logger
}

// NewUserService creates a new UserService
func NewUserService(repo UserRepository, logger *slog.Logger) *UserService {
	return &UserService{
		repo:   repo,
		logger: logger,
	}
}

// GetUserByID retrieves a user by ID
func (s *UserService) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.logger.Info("user not found", slog.String("user_id", id))
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get user", slog.String("user_id", id), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	return user, nil
}

// ListUsers runs a shaped listing over the user collection
func (s *UserService) ListUsers(ctx context.Context, spec query.Spec) ([]map[string]any, query.Pagination, error) {
	docs, pagination, err := s.repo.List(ctx, spec)
	if err != nil {
		s.logger.Error("failed to list users", slog.Any("error", err))
		return nil, query.Pagination{}, models.ErrInternalServer
	}

	return docs, pagination, nil
}

// CreateUser creates a new user. The password is validated and hashed here,
// explicitly, before the record reaches the repository.
func (s *UserService) CreateUser(ctx context.Context, user *models.User, password string) (*models.User, error) {
	existing, err := s.repo.GetByEmail(ctx, user.Email)
	if err == nil && existing != nil {
		s.logger.Info("user already exists")
		return nil, models.ErrConflict
	}

	if err := auth.ValidatePassword(password); err != nil {
		return nil, &models.ValidationError{Field: "password", Message: err.Error()}
	}

	hashedPassword, err := auth.HashPassword(password)
	if err != nil {
		s.logger.Error("failed to hash password", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	user.PasswordHash = hashedPassword

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			return nil, models.ErrConflict
		}
		s.logger.Error("failed to create user", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("user created", slog.String("user_id", created.ID))
	return created, nil
}

// UpdateProfile updates a user's own name/email. Password mutations are
// rejected on this path; they go through UpdatePassword only.
func (s *UserService) UpdateProfile(ctx context.Context, id, name, email string) (*models.User, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get user", slog.String("user_id", id), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if email != "" && email != existing.Email {
		other, err := s.repo.GetByEmail(ctx, email)
		if err == nil && other != nil && other.ID != id {
			return nil, models.ErrConflict
		}
		existing.Email = email
	}
	if name != "" {
		existing.Name = name
	}

	updated, err := s.repo.Update(ctx, id, existing)
	if err != nil {
		s.logger.Error("failed to update user", slog.String("user_id", id), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("user profile updated", slog.String("user_id", id))
	return updated, nil
}

// UpdateProfileImage stores the uploaded image reference on the user record
func (s *UserService) UpdateProfileImage(ctx context.Context, id, imageKey string) (*models.User, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get user", slog.String("user_id", id), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	existing.ProfileImage = imageKey

	updated, err := s.repo.Update(ctx, id, existing)
	if err != nil {
		s.logger.Error("failed to update profile image", slog.String("user_id", id), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	return updated, nil
}

// UpdatePassword verifies the old password, then stores the new hash and the
// password-change timestamp in one repository call. Any session token issued
// before that timestamp is rejected by the auth middleware from then on.
func (s *UserService) UpdatePassword(ctx context.Context, id, oldPassword, newPassword string) error {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		s.logger.Error("failed to get user", slog.String("user_id", id), slog.Any("error", err))
		return models.ErrInternalServer
	}

	if err := auth.ComparePassword(user.PasswordHash, oldPassword); err != nil {
		s.logger.Info("password change rejected: incorrect old password", slog.String("user_id", id))
		return models.ErrBadRequest
	}

	if err := auth.ValidatePassword(newPassword); err != nil {
		return &models.ValidationError{Field: "newPassword", Message: err.Error()}
	}

	hashedPassword, err := auth.HashPassword(newPassword)
	if err != nil {
		s.logger.Error("failed to hash password", slog.Any("error", err))
		return models.ErrInternalServer
	}

	if err := s.repo.UpdatePassword(ctx, id, hashedPassword, time.Now()); err != nil {
		s.logger.Error("failed to update password", slog.String("user_id", id), slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.logger.Info("password updated", slog.String("user_id", id))
	return nil
}

// DeleteUser deletes a user
func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	err := s.repo.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.logger.Info("user not found", slog.String("user_id", id))
			return models.ErrNotFound
		}
		s.logger.Error("failed to delete user", slog.String("user_id", id), slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.logger.Info("user deleted", slog.String("user_id", id))
	return nil
}

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/storecore/catalog-api/internal/auth"
	"github.com/storecore/catalog-api/internal/models"
	"github.com/storecore/catalog-api/internal/query"
	"github.com/storecore/catalog-api/internal/storage"
	"github.com/storecore/catalog-api/pkg/httpapi"
)

// UserService defines the interface for user business logic
type UserService interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	ListUsers(ctx context.Context, spec query.Spec) ([]map[string]any, query.Pagination, error)
	CreateUser(ctx context.Context, user *models.User, password string) (*models.User, error)
	UpdateProfile(ctx context.Context, id, name, email string) (*models.User, error)
	UpdateProfileImage(ctx context.Context, id, imageKey string) (*models.User, error)
	UpdatePassword(ctx context.Context, id, oldPassword, newPassword string) error
	DeleteUser(ctx context.Context, id string) error
}

// UserHandler handles user-related HTTP requests
type UserHandler struct {
	service UserService
	store   storage.ImageStore
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(service UserService, store storage.ImageStore) *UserHandler {
	return &UserHandler{
		service: service,
		store:   store,
	}
}

// Request/Response DTOs

// CreateUserRequest represents the request body for creating a user
type CreateUserRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required,min=1"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role" validate:"omitempty,oneof=user admin"`
}

// UpdateProfileRequest represents the request body for a profile update.
// Password fields are rejected here; password changes have their own route.
type UpdateProfileRequest struct {
	Name     string `json:"name" validate:"omitempty,min=1"`
	Email    string `json:"email" validate:"omitempty,email"`
	Password string `json:"password"`
}

// UpdatePasswordRequest represents the request body for a password change
type UpdatePasswordRequest struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required"`
}

// UserResponse represents a user in the HTTP response
type UserResponse struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	Name         string `json:"name"`
	Role         string `json:"role"`
	ProfileImage string `json:"profileImage,omitempty"`
	CreatedAt    string `json:"createdAt"`
	UpdatedAt    string `json:"updatedAt"`
}

func userModelToResponse(user *models.User) *UserResponse {
	return &UserResponse{
		ID:           user.ID,
		Email:        user.Email,
		Name:         user.Name,
		Role:         user.Role,
		ProfileImage: user.ProfileImage,
		CreatedAt:    user.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    user.UpdatedAt.Format(time.RFC3339),
	}
}

// Admin endpoints

// ListUsers serves the admin user listing with full query shaping
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	spec := query.Parse(r.URL.Query())

	docs, pagination, err := h.service.ListUsers(r.Context(), spec)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ListResponse{
		Pagination: pagination,
		Results:    len(docs),
		Data:       docs,
	})
}

// GetUser retrieves a user by ID
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		httpapi.WriteBadRequest(w, "user ID is required")
		return
	}

	user, err := h.service.GetUserByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			httpapi.WriteNotFound(w, "user not found")
			return
		}
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, DataResponse{Data: userModelToResponse(user)})
}

// CreateUser creates a new user account
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpapi.WriteBadRequest(w, "invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		httpapi.WriteValidationError(w, err.Error())
		return
	}

	user := &models.User{
		Email: req.Email,
		Name:  req.Name,
		Role:  req.Role,
	}

	created, err := h.service.CreateUser(r.Context(), user, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, DataResponse{
		Message: "user created successfully",
		Data:    userModelToResponse(created),
	})
}

// DeleteUser deletes a user account
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		httpapi.WriteBadRequest(w, "user ID is required")
		return
	}

	if err := h.service.DeleteUser(r.Context(), id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			httpapi.WriteNotFound(w, "user not found")
			return
		}
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Profile endpoints (authenticated user acting on their own account)

// GetMe returns the authenticated user's profile
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUserFromContext(r)
	if user == nil {
		httpapi.WriteUnauthorized(w, "unauthorized")
		return
	}

	writeJSON(w, http.StatusOK, DataResponse{Data: userModelToResponse(user)})
}

// UpdateMe updates the authenticated user's name/email. A password in the
// body is rejected outright rather than silently ignored.
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUserFromContext(r)
	if user == nil {
		httpapi.WriteUnauthorized(w, "unauthorized")
		return
	}

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpapi.WriteBadRequest(w, "invalid request body")
		return
	}
	if req.Password != "" {
		httpapi.WriteBadRequest(w, "this route is not for password updates, use /users/me/password")
		return
	}
	if err := ValidateRequest(req); err != nil {
		httpapi.WriteValidationError(w, err.Error())
		return
	}

	updated, err := h.service.UpdateProfile(r.Context(), user.ID, req.Name, req.Email)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, DataResponse{
		Message: "profile updated successfully",
		Data:    userModelToResponse(updated),
	})
}

// UpdateMyImage replaces the authenticated user's profile image
func (h *UserHandler) UpdateMyImage(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUserFromContext(r)
	if user == nil {
		httpapi.WriteUnauthorized(w, "unauthorized")
		return
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		httpapi.WriteBadRequest(w, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		httpapi.WriteBadRequest(w, "image file is required")
		return
	}
	defer file.Close()

	key, err := h.store.Save(r.Context(), header.Filename, file)
	if err != nil {
		httpapi.WriteBadRequest(w, "failed to store image: "+err.Error())
		return
	}

	updated, err := h.service.UpdateProfileImage(r.Context(), user.ID, key)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, DataResponse{
		Message: "profile image updated successfully",
		Data:    userModelToResponse(updated),
	})
}

// UpdateMyPassword changes the authenticated user's password. On success the
// caller's current token is already stale, so a fresh one is issued.
func (h *UserHandler) UpdateMyPassword(tokens *auth.TokenManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := auth.GetUserFromContext(r)
		if user == nil {
			httpapi.WriteUnauthorized(w, "unauthorized")
			return
		}

		var req UpdatePasswordRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpapi.WriteBadRequest(w, "invalid request body")
			return
		}
		if err := ValidateRequest(req); err != nil {
			httpapi.WriteValidationError(w, err.Error())
			return
		}

		if err := h.service.UpdatePassword(r.Context(), user.ID, req.OldPassword, req.NewPassword); err != nil {
			if errors.Is(err, models.ErrBadRequest) {
				httpapi.WriteBadRequest(w, "incorrect current password")
				return
			}
			writeServiceError(w, err)
			return
		}

		token, err := tokens.Issue(user.ID, user.Email)
		if err != nil {
			httpapi.WriteInternalError(w, "internal server error")
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"message": "password updated successfully",
			"token":   token,
		})
	}
}

package handlers

import (
	"context"
	"encoding/json"
	"net"
	"net/http"

	"github.com/storecore/catalog-api/internal/services"
	"github.com/storecore/catalog-api/pkg/httpapi"
)

// AuthService defines the interface for authentication business logic
type AuthService interface {
	Login(ctx context.Context, email, password, ipAddress string) (*services.AuthResponse, error)
}

// AuthHandler handles authentication HTTP requests
type AuthHandler struct {
	service AuthService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(service AuthService) *AuthHandler {
	return &AuthHandler{
		service: service,
	}
}

// LoginRequest represents the request body for a login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse represents a successful login
type LoginResponse struct {
	Message string        `json:"message"`
	Token   string        `json:"token"`
	Data    *UserResponse `json:"data"`
}

// Login verifies credentials and returns a session token
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpapi.WriteBadRequest(w, "invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		httpapi.WriteValidationError(w, err.Error())
		return
	}

	resp, err := h.service.Login(r.Context(), req.Email, req.Password, clientIP(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, LoginResponse{
		Message: "logged in successfully",
		Token:   resp.Token,
		Data:    userModelToResponse(resp.User),
	})
}

// clientIP extracts the caller's address for audit logging
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/storecore/catalog-api/internal/models"
	"github.com/storecore/catalog-api/internal/query"
	"github.com/storecore/catalog-api/pkg/httpapi"
)

// ListResponse wraps a shaped listing page
type ListResponse struct {
	Pagination query.Pagination `json:"pagination"`
	Results    int              `json:"results"`
	Data       []map[string]any `json:"data"`
}

// DataResponse wraps a single resource
type DataResponse struct {
	Message string `json:"message,omitempty"`
	Data    any    `json:"data"`
}

func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(v)
}

// writeServiceError translates service-layer errors into HTTP responses
func writeServiceError(w http.ResponseWriter, err error) {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		httpapi.WriteValidationError(w, verr.Error())
	case errors.Is(err, models.ErrNotFound):
		httpapi.WriteNotFound(w, "resource not found")
	case errors.Is(err, models.ErrConflict):
		httpapi.WriteConflict(w, "resource already exists")
	case errors.Is(err, models.ErrUnauthorized):
		httpapi.WriteUnauthorized(w, "incorrect email or password")
	case errors.Is(err, models.ErrForbidden):
		httpapi.WriteForbidden(w, "insufficient permissions")
	case errors.Is(err, models.ErrBadRequest):
		httpapi.WriteBadRequest(w, "invalid request")
	default:
		httpapi.WriteInternalError(w, "internal server error")
	}
}

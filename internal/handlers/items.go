package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/storecore/catalog-api/internal/auth"
	"github.com/storecore/catalog-api/internal/models"
	"github.com/storecore/catalog-api/internal/query"
	"github.com/storecore/catalog-api/internal/services"
	"github.com/storecore/catalog-api/internal/storage"
	"github.com/storecore/catalog-api/pkg/httpapi"
)

const maxUploadSize = 10 << 20 // 10 MiB

// ItemService defines the interface for item business logic
type ItemService interface {
	ListItems(ctx context.Context, spec query.Spec, inStockOnly bool) ([]map[string]any, query.Pagination, error)
	GetItem(ctx context.Context, id string) (*models.Item, error)
	CreateItem(ctx context.Context, item *models.Item) (*models.Item, error)
	UpdateItem(ctx context.Context, id string, patch services.ItemPatch, updatedBy string) (*models.Item, error)
	DeleteItem(ctx context.Context, id string) error
}

// ItemHandler handles catalog item HTTP requests
type ItemHandler struct {
	service ItemService
	store   storage.ImageStore
}

// NewItemHandler creates a new ItemHandler
func NewItemHandler(service ItemService, store storage.ImageStore) *ItemHandler {
	return &ItemHandler{
		service: service,
		store:   store,
	}
}

// Request/Response DTOs

// CreateItemRequest represents the non-file fields of an item create form
type CreateItemRequest struct {
	Name        string  `json:"itemName" validate:"required,min=1"`
	Price       float64 `json:"price" validate:"required,gt=0"`
	Category    string  `json:"category" validate:"required,oneof=tools books"`
	Branch      string  `json:"branch" validate:"omitempty,oneof=kindergarten preparatory middle secondary"`
	Level       string  `json:"level" validate:"omitempty"`
	Quantity    int     `json:"quantity" validate:"gte=0"`
	Description string  `json:"description" validate:"omitempty,max=2000"`
}

// UpdateItemRequest represents a partial item update
type UpdateItemRequest struct {
	Name        *string  `json:"itemName" validate:"omitempty,min=1"`
	Price       *float64 `json:"price" validate:"omitempty,gt=0"`
	Category    *string  `json:"category" validate:"omitempty,oneof=tools books"`
	Branch      *string  `json:"branch" validate:"omitempty,oneof=kindergarten preparatory middle secondary"`
	Level       *string  `json:"level"`
	Quantity    *int     `json:"quantity" validate:"omitempty,gte=0"`
	Description *string  `json:"description" validate:"omitempty,max=2000"`
}

// ItemResponse represents an item in the HTTP response
type ItemResponse struct {
	ID            string  `json:"id"`
	Name          string  `json:"itemName"`
	Price         float64 `json:"price"`
	Category      string  `json:"category"`
	Branch        string  `json:"branch,omitempty"`
	Level         string  `json:"level,omitempty"`
	Quantity      int     `json:"quantity"`
	InStock       bool    `json:"inStock"`
	Image         string  `json:"image"`
	Description   string  `json:"description,omitempty"`
	CreatedBy     string  `json:"createdBy,omitempty"`
	LastUpdatedBy string  `json:"lastUpdatedBy,omitempty"`
	CreatedAt     string  `json:"createdAt"`
	UpdatedAt     string  `json:"updatedAt"`
}

func itemModelToResponse(item *models.Item) *ItemResponse {
	return &ItemResponse{
		ID:            item.ID,
		Name:          item.Name,
		Price:         item.Price,
		Category:      item.Category,
		Branch:        item.Branch,
		Level:         item.Level,
		Quantity:      item.Quantity,
		InStock:       item.InStock,
		Image:         item.Image,
		Description:   item.Description,
		CreatedBy:     item.CreatedBy,
		LastUpdatedBy: item.LastUpdatedBy,
		CreatedAt:     item.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     item.UpdatedAt.Format(time.RFC3339),
	}
}

// ListItems serves the public storefront listing. Only in-stock items are
// visible, and the query string drives filtering, search, sort, projection,
// and pagination.
func (h *ItemHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	spec := query.Parse(r.URL.Query())

	docs, pagination, err := h.service.ListItems(r.Context(), spec, true)
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

// GetItem retrieves a single item by ID
func (h *ItemHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		httpapi.WriteBadRequest(w, "item ID is required")
		return
	}

	item, err := h.service.GetItem(r.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			httpapi.WriteNotFound(w, "item not found")
			return
		}
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, DataResponse{Data: itemModelToResponse(item)})
}

// AdminListItems serves the admin listing, sold-out items included.
func (h *ItemHandler) AdminListItems(w http.ResponseWriter, r *http.Request) {
	spec := query.Parse(r.URL.Query())

	docs, pagination, err := h.service.ListItems(r.Context(), spec, false)
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

// CreateItem creates an item from a multipart form carrying the item fields
// and an image file.
func (h *ItemHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUserFromContext(r)
	if user == nil {
		httpapi.WriteUnauthorized(w, "unauthorized")
		return
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		httpapi.WriteBadRequest(w, "invalid multipart form")
		return
	}

	req, err := parseItemForm(r)
	if err != nil {
		httpapi.WriteBadRequest(w, err.Error())
		return
	}
	if err := ValidateRequest(req); err != nil {
		httpapi.WriteValidationError(w, err.Error())
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

	item := &models.Item{
		Name:        req.Name,
		Price:       req.Price,
		Category:    req.Category,
		Branch:      req.Branch,
		Level:       req.Level,
		Quantity:    req.Quantity,
		Description: req.Description,
		Image:       key,
		CreatedBy:   user.ID,
	}

	created, err := h.service.CreateItem(r.Context(), item)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, DataResponse{
		Message: "item created successfully",
		Data:    itemModelToResponse(created),
	})
}

// UpdateItem applies a partial JSON update to an item
func (h *ItemHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUserFromContext(r)
	if user == nil {
		httpapi.WriteUnauthorized(w, "unauthorized")
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		httpapi.WriteBadRequest(w, "item ID is required")
		return
	}

	var req UpdateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpapi.WriteBadRequest(w, "invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		httpapi.WriteValidationError(w, err.Error())
		return
	}

	patch := services.ItemPatch{
		Name:        req.Name,
		Price:       req.Price,
		Category:    req.Category,
		Branch:      req.Branch,
		Level:       req.Level,
		Quantity:    req.Quantity,
		Description: req.Description,
	}

	updated, err := h.service.UpdateItem(r.Context(), id, patch, user.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, DataResponse{
		Message: "item updated successfully",
		Data:    itemModelToResponse(updated),
	})
}

// UpdateItemImage replaces an item's image via a multipart upload
func (h *ItemHandler) UpdateItemImage(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUserFromContext(r)
	if user == nil {
		httpapi.WriteUnauthorized(w, "unauthorized")
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		httpapi.WriteBadRequest(w, "item ID is required")
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

	updated, err := h.service.UpdateItem(r.Context(), id, services.ItemPatch{Image: &key}, user.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, DataResponse{
		Message: "item image updated successfully",
		Data:    itemModelToResponse(updated),
	})
}

// DeleteItem deletes an item
func (h *ItemHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		httpapi.WriteBadRequest(w, "item ID is required")
		return
	}

	if err := h.service.DeleteItem(r.Context(), id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			httpapi.WriteNotFound(w, "item not found")
			return
		}
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// parseItemForm reads the item fields out of an already-parsed multipart form
func parseItemForm(r *http.Request) (*CreateItemRequest, error) {
	req := &CreateItemRequest{
		Name:        r.FormValue("itemName"),
		Category:    r.FormValue("category"),
		Branch:      r.FormValue("branch"),
		Level:       r.FormValue("level"),
		Description: r.FormValue("description"),
	}

	if v := r.FormValue("price"); v != "" {
		price, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, errors.New("price must be a number")
		}
		req.Price = price
	}

	if v := r.FormValue("quantity"); v != "" {
		quantity, err := strconv.Atoi(v)
		if err != nil {
			return nil, errors.New("quantity must be an integer")
		}
		req.Quantity = quantity
	}

	return req, nil
}

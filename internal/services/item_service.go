package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/storecore/catalog-api/internal/models"
	"github.com/storecore/catalog-api/internal/query"
)

// ItemRepository defines the interface for item data access
type ItemRepository interface {
	GetByID(ctx context.Context, id string) (*models.Item, error)
	List(ctx context.Context, spec query.Spec, inStockOnly bool) ([]map[string]any, query.Pagination, error)
	Create(ctx context.Context, item *models.Item) (*models.Item, error)
	Update(ctx context.Context, id string, item *models.Item) (*models.Item, error)
	Delete(ctx context.Context, id string) error
}

// ItemService handles catalog item business logic
type ItemService struct {
	repo   ItemRepository
	logger *slog.Logger
}

// NewItemService creates a new ItemService
func NewItemService(repo ItemRepository, logger *slog.Logger) *ItemService {
	return &ItemService{
		repo:   repo,
		logger: logger,
	}
}

// ListItems runs a shaped listing over the catalog. The public storefront
// passes inStockOnly to hide sold-out items; admin listings see everything.
func (s *ItemService) ListItems(ctx context.Context, spec query.Spec, inStockOnly bool) ([]map[string]any, query.Pagination, error) {
	docs, pagination, err := s.repo.List(ctx, spec, inStockOnly)
	if err != nil {
		s.logger.Error("failed to list items", slog.Any("error", err))
		return nil, query.Pagination{}, models.ErrInternalServer
	}

	return docs, pagination, nil
}

// GetItem retrieves a single item by ID
func (s *ItemService) GetItem(ctx context.Context, id string) (*models.Item, error) {
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.logger.Info("item not found", slog.String("item_id", id))
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get item", slog.String("item_id", id), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	return item, nil
}

// CreateItem validates category-specific rules and persists a new item
func (s *ItemService) CreateItem(ctx context.Context, item *models.Item) (*models.Item, error) {
	if verr := item.ValidateCategory(); verr != nil {
		return nil, verr
	}

	created, err := s.repo.Create(ctx, item)
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			return nil, models.ErrConflict
		}
		s.logger.Error("failed to create item", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("item created",
		slog.String("item_id", created.ID),
		slog.String("category", string(created.Category)))
	return created, nil
}

// ItemPatch carries the mutable item fields for a partial update. Pointer
// fields distinguish "unset" from zero values.
type ItemPatch struct {
	Name        *string
	Price       *float64
	Category    *string
	Branch      *string
	Level       *string
	Quantity    *int
	Description *string
	Image       *string
}

// UpdateItem applies a partial update to an item, re-validating category
// rules over the merged record before persisting.
func (s *ItemService) UpdateItem(ctx context.Context, id string, patch ItemPatch, updatedBy string) (*models.Item, error) {
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get item", slog.String("item_id", id), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if patch.Name != nil {
		item.Name = *patch.Name
	}
	if patch.Price != nil {
		item.Price = *patch.Price
	}
	if patch.Category != nil {
		item.Category = *patch.Category
		// switching away from books clears branch/level unless re-supplied
		if item.Category != models.CategoryBooks && patch.Branch == nil && patch.Level == nil {
			item.Branch = ""
			item.Level = ""
		}
	}
	if patch.Branch != nil {
		item.Branch = *patch.Branch
	}
	if patch.Level != nil {
		item.Level = *patch.Level
	}
	if patch.Quantity != nil {
		item.Quantity = *patch.Quantity
	}
	if patch.Description != nil {
		item.Description = *patch.Description
	}
	if patch.Image != nil {
		item.Image = *patch.Image
	}
	item.LastUpdatedBy = updatedBy

	if verr := item.ValidateCategory(); verr != nil {
		return nil, verr
	}

	updated, err := s.repo.Update(ctx, id, item)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to update item", slog.String("item_id", id), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("item updated", slog.String("item_id", id))
	return updated, nil
}

// DeleteItem deletes an item
func (s *ItemService) DeleteItem(ctx context.Context, id string) error {
	err := s.repo.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.logger.Info("item not found", slog.String("item_id", id))
			return models.ErrNotFound
		}
		s.logger.Error("failed to delete item", slog.String("item_id", id), slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.logger.Info("item deleted", slog.String("item_id", id))
	return nil
}

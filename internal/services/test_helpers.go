package services

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/storecore/catalog-api/internal/models"
	"github.com/storecore/catalog-api/internal/query"
)

// discardLogger returns a logger for tests that swallows output
func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// MockUserRepository is a function-field mock of UserRepository
type MockUserRepository struct {
	GetByIDFunc        func(ctx context.Context, id string) (*models.User, error)
	GetByEmailFunc     func(ctx context.Context, email string) (*models.User, error)
	ListFunc           func(ctx context.Context, spec query.Spec) ([]map[string]any, query.Pagination, error)
	CreateFunc         func(ctx context.Context, user *models.User) (*models.User, error)
	UpdateFunc         func(ctx context.Context, id string, user *models.User) (*models.User, error)
	UpdatePasswordFunc func(ctx context.Context, id, passwordHash string, changedAt time.Time) error
	DeleteFunc         func(ctx context.Context, id string) error
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) List(ctx context.Context, spec query.Spec) ([]map[string]any, query.Pagination, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, spec)
	}
	return nil, query.Pagination{}, nil
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	return user, nil
}

func (m *MockUserRepository) Update(ctx context.Context, id string, user *models.User) (*models.User, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, user)
	}
	return user, nil
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, id, passwordHash string, changedAt time.Time) error {
	if m.UpdatePasswordFunc != nil {
		return m.UpdatePasswordFunc(ctx, id, passwordHash, changedAt)
	}
	return nil
}

func (m *MockUserRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

// MockItemRepository is a function-field mock of ItemRepository
type MockItemRepository struct {
	GetByIDFunc func(ctx context.Context, id string) (*models.Item, error)
	ListFunc    func(ctx context.Context, spec query.Spec, inStockOnly bool) ([]map[string]any, query.Pagination, error)
	CreateFunc  func(ctx context.Context, item *models.Item) (*models.Item, error)
	UpdateFunc  func(ctx context.Context, id string, item *models.Item) (*models.Item, error)
	DeleteFunc  func(ctx context.Context, id string) error
}

func (m *MockItemRepository) GetByID(ctx context.Context, id string) (*models.Item, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockItemRepository) List(ctx context.Context, spec query.Spec, inStockOnly bool) ([]map[string]any, query.Pagination, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, spec, inStockOnly)
	}
	return nil, query.Pagination{}, nil
}

func (m *MockItemRepository) Create(ctx context.Context, item *models.Item) (*models.Item, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, item)
	}
	return item, nil
}

func (m *MockItemRepository) Update(ctx context.Context, id string, item *models.Item) (*models.Item, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, item)
	}
	return item, nil
}

func (m *MockItemRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

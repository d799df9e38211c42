package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/storecore/catalog-api/internal/database"
	"github.com/storecore/catalog-api/internal/models"
	"github.com/storecore/catalog-api/internal/query"
)

// ItemSchema is the query-shaper allowlist for item listings.
var ItemSchema = query.Schema{
	Table: "items",
	Columns: []query.Column{
		{Field: "id", Name: "id"},
		{Field: "itemName", Name: "item_name"},
		{Field: "price", Name: "price", Kind: query.KindNumeric},
		{Field: "category", Name: "category"},
		{Field: "branch", Name: "branch"},
		{Field: "level", Name: "level"},
		{Field: "quantity", Name: "quantity", Kind: query.KindNumeric},
		{Field: "inStock", Name: "in_stock", Kind: query.KindBool},
		{Field: "image", Name: "image"},
		{Field: "description", Name: "description"},
		{Field: "createdAt", Name: "created_at", Kind: query.KindTime},
	},
	DefaultSort: "created_at DESC",
}

// ItemSearchFields are the text fields keyword search runs against.
var ItemSearchFields = []string{"itemName", "description"}

type ItemRepository struct {
	pool database.PgxPool
}

func NewItemRepository(db *database.DB) *ItemRepository {
	return &ItemRepository{pool: db.Pool}
}

const itemColumns = "id, item_name, price, category, branch, level, quantity, in_stock, image, description, created_by, last_updated_by, created_at, updated_at"

func scanItemRow(scanner rowScanner) (*models.Item, error) {
	var item models.Item
	var branch, level, description, lastUpdatedBy *string

	err := scanner.Scan(
		&item.ID, &item.Name, &item.Price, &item.Category,
		&branch, &level, &item.Quantity, &item.InStock,
		&item.Image, &description, &item.CreatedBy, &lastUpdatedBy,
		&item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	if branch != nil {
		item.Branch = *branch
	}
	if level != nil {
		item.Level = *level
	}
	if description != nil {
		item.Description = *description
	}
	if lastUpdatedBy != nil {
		item.LastUpdatedBy = *lastUpdatedBy
	}

	return &item, nil
}

func (r *ItemRepository) GetByID(ctx context.Context, id string) (*models.Item, error) {
	sql := fmt.Sprintf("SELECT %s FROM items WHERE id = $1", itemColumns)
	return scanItemRow(r.pool.QueryRow(ctx, sql, id))
}

// List runs a shaped listing over the item collection. With inStockOnly set,
// a base in-stock constraint is applied ahead of the caller's filters, the
// way the public catalog endpoint hides sold-out items.
func (r *ItemRepository) List(ctx context.Context, spec query.Spec, inStockOnly bool) ([]map[string]any, query.Pagination, error) {
	b := query.New(ItemSchema, spec)
	if inStockOnly {
		b.Where("inStock", query.OpEq, true)
	}
	b.Filter().
		Search(ItemSearchFields...).
		Sort().
		Project().
		Paginate()

	return runShapedQuery(ctx, r.pool, b)
}

func (r *ItemRepository) Create(ctx context.Context, item *models.Item) (*models.Item, error) {
	item.ID = uuid.New().String()

	now := time.Now()
	item.CreatedAt = now
	item.UpdatedAt = now

	// in_stock is always derived from quantity, never written independently
	item.RecomputeStock()

	sql := fmt.Sprintf(`
		INSERT INTO items (id, item_name, price, category, branch, level, quantity, in_stock, image, description, created_by, last_updated_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING %s
	`, itemColumns)

	return scanItemRow(r.pool.QueryRow(ctx, sql,
		item.ID, item.Name, item.Price, item.Category,
		nullable(item.Branch), nullable(item.Level), item.Quantity, item.InStock,
		item.Image, nullable(item.Description), item.CreatedBy, nullable(item.LastUpdatedBy),
		item.CreatedAt, item.UpdatedAt,
	))
}

func (r *ItemRepository) Update(ctx context.Context, id string, item *models.Item) (*models.Item, error) {
	item.UpdatedAt = time.Now()
	item.RecomputeStock()

	sql := fmt.Sprintf(`
		UPDATE items SET item_name = $1, price = $2, category = $3, branch = $4, level = $5, quantity = $6, in_stock = $7, image = $8, description = $9, last_updated_by = $10, updated_at = $11
		WHERE id = $12
		RETURNING %s
	`, itemColumns)

	return scanItemRow(r.pool.QueryRow(ctx, sql,
		item.Name, item.Price, item.Category,
		nullable(item.Branch), nullable(item.Level), item.Quantity, item.InStock,
		item.Image, nullable(item.Description), nullable(item.LastUpdatedBy),
		item.UpdatedAt, id,
	))
}

func (r *ItemRepository) Delete(ctx context.Context, id string) error {
	result, err := r.pool.Exec(ctx, "DELETE FROM items WHERE id = $1", id)
	if err != nil {
		return database.MapPostgresError(err)
	}

	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}

// nullable maps an empty string to a NULL parameter.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

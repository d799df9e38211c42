package repositories

import (
	"context"
	"regexp"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storecore/catalog-api/internal/database"
	"github.com/storecore/catalog-api/internal/models"
	"github.com/storecore/catalog-api/internal/query"
)

func newMockDB(t *testing.T) (*database.DB, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	return &database.DB{Pool: mock}, mock
}

func itemRows() *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "item_name", "price", "category", "branch", "level",
		"quantity", "in_stock", "image", "description",
		"created_by", "last_updated_by", "created_at", "updated_at",
	})
}

func TestItemRepository_GetByID(t *testing.T) {
	db, mock := newMockDB(t)
	defer mock.Close()
	r := NewItemRepository(db)

	now := time.Now()
	branch := "middle"
	level := "Middle2"
	desc := "algebra textbook"
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, item_name, price, category, branch, level, quantity, in_stock, image, description, created_by, last_updated_by, created_at, updated_at FROM items WHERE id = $1")).
		WithArgs("item1").
		WillReturnRows(itemRows().AddRow(
			"item1", "Algebra II", 19.99, "books", &branch, &level,
			3, true, "uploads/item1.jpg", &desc,
			"admin1", (*string)(nil), now, now,
		))

	item, err := r.GetByID(context.Background(), "item1")
	require.NoError(t, err)
	assert.Equal(t, "Algebra II", item.Name)
	assert.Equal(t, "middle", item.Branch)
	assert.Equal(t, "Middle2", item.Level)
	assert.True(t, item.InStock)
	assert.Empty(t, item.LastUpdatedBy)
}

func TestItemRepository_GetByID_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	defer mock.Close()
	r := NewItemRepository(db)

	mock.ExpectQuery("SELECT .+ FROM items WHERE id").
		WithArgs("missing").
		WillReturnRows(itemRows())

	_, err := r.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestItemRepository_List_CountThenPage(t *testing.T) {
	db, mock := newMockDB(t)
	defer mock.Close()
	r := NewItemRepository(db)

	spec := query.Spec{
		Page:    1,
		Limit:   10,
		Filters: []query.Condition{{Field: "category", Op: query.OpEq, Value: "tools"}},
	}

	// Count runs against the filter predicate plus the in-stock base constraint,
	// before limit/offset.
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM items WHERE in_stock = $1 AND category = $2")).
		WithArgs(true, "tools").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(2)))

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("WHERE in_stock = $1 AND category = $2 ORDER BY created_at DESC LIMIT $3 OFFSET $4")).
		WithArgs(true, "tools", 10, 0).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "item_name", "price", "category", "branch", "level",
			"quantity", "in_stock", "image", "description", "created_at",
		}).
			AddRow("i1", "Hammer", 12.5, "tools", nil, nil, 4, true, "uploads/i1.jpg", "claw hammer", now).
			AddRow("i2", "Saw", 22.0, "tools", nil, nil, 1, true, "uploads/i2.jpg", "hand saw", now))

	docs, pagination, err := r.List(context.Background(), spec, true)
	require.NoError(t, err)

	require.Len(t, docs, 2)
	assert.Equal(t, "Hammer", docs[0]["itemName"])
	assert.Equal(t, 12.5, docs[0]["price"])
	assert.Equal(t, int64(2), pagination.TotalDocuments)
	assert.Equal(t, 1, pagination.NumberOfPages)
	assert.Nil(t, pagination.Next)
	assert.Nil(t, pagination.Prev)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestItemRepository_List_ProjectionShapesDocuments(t *testing.T) {
	db, mock := newMockDB(t)
	defer mock.Close()
	r := NewItemRepository(db)

	spec := query.Spec{
		Page:   1,
		Limit:  10,
		Fields: []string{"itemName", "price"},
	}

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM items")).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(1)))

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, item_name, price FROM items ORDER BY created_at DESC LIMIT $1 OFFSET $2")).
		WithArgs(10, 0).
		WillReturnRows(pgxmock.NewRows([]string{"id", "item_name", "price"}).
			AddRow("i1", "Hammer", 12.5))

	docs, _, err := r.List(context.Background(), spec, false)
	require.NoError(t, err)

	require.Len(t, docs, 1)
	assert.Equal(t, map[string]any{"id": "i1", "itemName": "Hammer", "price": 12.5}, docs[0])
}

func TestItemRepository_Create_RecomputesStock(t *testing.T) {
	db, mock := newMockDB(t)
	defer mock.Close()
	r := NewItemRepository(db)

	item := &models.Item{
		Name:      "Hammer",
		Price:     12.5,
		Category:  "tools",
		Quantity:  0,
		InStock:   true, // must be overridden from quantity before persist
		Image:     "uploads/h.jpg",
		CreatedBy: "admin1",
	}

	now := time.Now()
	mock.ExpectQuery("INSERT INTO items").
		WithArgs(pgxmock.AnyArg(), "Hammer", 12.5, "tools",
			(*string)(nil), (*string)(nil), 0, false,
			"uploads/h.jpg", (*string)(nil), "admin1", (*string)(nil),
			pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(itemRows().AddRow(
			"i1", "Hammer", 12.5, "tools", nil, nil,
			0, false, "uploads/h.jpg", nil,
			"admin1", nil, now, now,
		))

	created, err := r.Create(context.Background(), item)
	require.NoError(t, err)
	assert.False(t, created.InStock)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestItemRepository_Delete_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	defer mock.Close()
	r := NewItemRepository(db)

	mock.ExpectExec("DELETE FROM items WHERE id").
		WithArgs("missing").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := r.Delete(context.Background(), "missing")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

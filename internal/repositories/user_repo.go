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

// UserSchema is the query-shaper allowlist for user listings. The password
// hash column is deliberately absent: it can never be filtered, sorted,
// projected, or searched through a query string.
var UserSchema = query.Schema{
	Table: "users",
	Columns: []query.Column{
		{Field: "id", Name: "id"},
		{Field: "name", Name: "name"},
		{Field: "email", Name: "email"},
		{Field: "role", Name: "role"},
		{Field: "profileImage", Name: "profile_image"},
		{Field: "createdAt", Name: "created_at", Kind: query.KindTime},
	},
	DefaultSort: "created_at DESC",
}

// UserSearchFields are the text fields keyword search runs against.
var UserSearchFields = []string{"name", "email"}

type UserRepository struct {
	pool database.PgxPool
}

func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{pool: db.Pool}
}

// rowScanner is satisfied by pgx.Row and pgx.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

const userColumns = "id, email, password_hash, name, profile_image, role, password_changed_at, created_at, updated_at"

func scanUserRow(scanner rowScanner) (*models.User, error) {
	var user models.User
	var profileImage *string
	var passwordChangedAt *time.Time

	err := scanner.Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.Name,
		&profileImage, &user.Role, &passwordChangedAt,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	if profileImage != nil {
		user.ProfileImage = *profileImage
	}
	user.PasswordChangedAt = passwordChangedAt

	return &user, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	sql := fmt.Sprintf("SELECT %s FROM users WHERE id = $1", userColumns)
	return scanUserRow(r.pool.QueryRow(ctx, sql, id))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	sql := fmt.Sprintf("SELECT %s FROM users WHERE email = $1", userColumns)
	return scanUserRow(r.pool.QueryRow(ctx, sql, email))
}

// List runs a shaped listing over the user collection: filter, keyword search
// over name/email, sort, projection, and pagination, with the total counted
// against the filter+search predicate only.
func (r *UserRepository) List(ctx context.Context, spec query.Spec) ([]map[string]any, query.Pagination, error) {
	b := query.New(UserSchema, spec).
		Filter().
		Search(UserSearchFields...).
		Sort().
		Project().
		Paginate()

	return runShapedQuery(ctx, r.pool, b)
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	user.ID = uuid.New().String()

	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	if user.Role == "" {
		user.Role = "user"
	}

	sql := fmt.Sprintf(`
		INSERT INTO users (id, email, password_hash, name, profile_image, role, password_changed_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING %s
	`, userColumns)

	var profileImage *string
	if user.ProfileImage != "" {
		profileImage = &user.ProfileImage
	}

	return scanUserRow(r.pool.QueryRow(ctx, sql,
		user.ID, user.Email, user.PasswordHash, user.Name,
		profileImage, user.Role, user.PasswordChangedAt,
		user.CreatedAt, user.UpdatedAt,
	))
}

func (r *UserRepository) Update(ctx context.Context, id string, user *models.User) (*models.User, error) {
	user.UpdatedAt = time.Now()

	sql := fmt.Sprintf(`
		UPDATE users SET email = $1, name = $2, profile_image = $3, role = $4, updated_at = $5
		WHERE id = $6
		RETURNING %s
	`, userColumns)

	var profileImage *string
	if user.ProfileImage != "" {
		profileImage = &user.ProfileImage
	}

	return scanUserRow(r.pool.QueryRow(ctx, sql,
		user.Email, user.Name, profileImage, user.Role, user.UpdatedAt, id,
	))
}

// UpdatePassword stores a new password hash and bumps password_changed_at in
// the same statement, so tokens issued before the change become stale
// atomically with the credential mutation.
func (r *UserRepository) UpdatePassword(ctx context.Context, id, passwordHash string, changedAt time.Time) error {
	sql := `
		UPDATE users SET password_hash = $1, password_changed_at = $2, updated_at = $2
		WHERE id = $3
	`

	result, err := r.pool.Exec(ctx, sql, passwordHash, changedAt, id)
	if err != nil {
		return database.MapPostgresError(err)
	}

	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	result, err := r.pool.Exec(ctx, "DELETE FROM users WHERE id = $1", id)
	if err != nil {
		return database.MapPostgresError(err)
	}

	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}

// runShapedQuery executes a builder's count and select statements and returns
// the page of documents keyed by exposed field names.
func runShapedQuery(ctx context.Context, pool database.PgxPool, b *query.Builder) ([]map[string]any, query.Pagination, error) {
	countSQL, countArgs := b.CountSQL()

	var total int64
	if err := pool.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, query.Pagination{}, database.MapPostgresError(err)
	}

	selectSQL, selectArgs := b.SelectSQL()

	rows, err := pool.Query(ctx, selectSQL, selectArgs...)
	if err != nil {
		return nil, query.Pagination{}, database.MapPostgresError(err)
	}
	defer rows.Close()

	fields := b.Columns()
	docs := make([]map[string]any, 0)

	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, query.Pagination{}, fmt.Errorf("failed to read row values: %w", err)
		}
		doc := make(map[string]any, len(fields))
		for i, f := range fields {
			if i < len(values) {
				doc[f] = values[i]
			}
		}
		docs = append(docs, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, query.Pagination{}, fmt.Errorf("error iterating rows: %w", err)
	}

	return docs, b.Pagination(total), nil
}

package categories

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/haocai-admin/haocai-admin/internal/httpx"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const categoryColumns = `id, category_name, COALESCE(parent_id, 0), sort_order, status, COALESCE(remark, ''), create_time, update_time`

// ListAll returns every non-deleted category as a flat slice.
func (r *Repository) ListAll(ctx context.Context) ([]Category, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+categoryColumns+` FROM mat_category WHERE deleted = 0 ORDER BY sort_order, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cats []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.ParentID, &c.SortOrder, &c.Status, &c.Remark, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

// Get fetches a non-deleted category by ID.
func (r *Repository) Get(ctx context.Context, id int64) (Category, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+categoryColumns+` FROM mat_category WHERE id = $1 AND deleted = 0`, id)
	var c Category
	err := row.Scan(&c.ID, &c.Name, &c.ParentID, &c.SortOrder, &c.Status, &c.Remark, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Category{}, httpx.ErrNotFound
		}
		return Category{}, err
	}
	return c, nil
}

// Exists reports whether a non-deleted category with the ID exists.
func (r *Repository) Exists(ctx context.Context, id int64) (bool, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM mat_category WHERE id = $1 AND deleted = 0`, id).Scan(&count)
	return count > 0, err
}

// ChildCount returns the number of direct non-deleted children.
func (r *Repository) ChildCount(ctx context.Context, id int64) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM mat_category WHERE parent_id = $1 AND deleted = 0`, id).Scan(&count)
	return count, err
}

// MaterialCount returns how many non-deleted materials use the category.
func (r *Repository) MaterialCount(ctx context.Context, id int64) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM mat_material WHERE category_id = $1 AND deleted = 0`, id).Scan(&count)
	return count, err
}

// Create inserts a category and returns it with its assigned id.
func (r *Repository) Create(ctx context.Context, c Category) (Category, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO mat_category (category_name, parent_id, sort_order, status, remark, create_time, update_time, deleted)
		VALUES ($1, NULLIF($2, 0), $3, $4, $5, NOW(), NOW(), 0)
		RETURNING id, create_time, update_time`,
		c.Name, c.ParentID, c.SortOrder, c.Status, c.Remark)
	if err := row.Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return Category{}, err
	}
	return c, nil
}

// Update rewrites a category row.
func (r *Repository) Update(ctx context.Context, c Category) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE mat_category SET category_name = $2, parent_id = NULLIF($3, 0), sort_order = $4, status = $5, remark = $6, update_time = NOW()
		WHERE id = $1 AND deleted = 0`,
		c.ID, c.Name, c.ParentID, c.SortOrder, c.Status, c.Remark)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

// Delete soft-deletes a category.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `UPDATE mat_category SET deleted = 1, update_time = NOW() WHERE id = $1 AND deleted = 0`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

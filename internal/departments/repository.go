package departments

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

const departmentColumns = `id, dept_name, COALESCE(parent_id, 0), COALESCE(leader, ''), COALESCE(phone, ''), sort_order, status, create_time, update_time`

// ListAll returns every non-deleted department as a flat slice.
func (r *Repository) ListAll(ctx context.Context) ([]Department, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+departmentColumns+` FROM sys_department WHERE deleted = 0 ORDER BY sort_order, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var depts []Department
	for rows.Next() {
		var d Department
		if err := rows.Scan(&d.ID, &d.Name, &d.ParentID, &d.Leader, &d.Phone, &d.SortOrder, &d.Status, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, err
		}
		depts = append(depts, d)
	}
	return depts, rows.Err()
}

// Get fetches a non-deleted department by ID.
func (r *Repository) Get(ctx context.Context, id int64) (Department, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+departmentColumns+` FROM sys_department WHERE id = $1 AND deleted = 0`, id)
	var d Department
	err := row.Scan(&d.ID, &d.Name, &d.ParentID, &d.Leader, &d.Phone, &d.SortOrder, &d.Status, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Department{}, httpx.ErrNotFound
		}
		return Department{}, err
	}
	return d, nil
}

// ChildCount returns the number of direct non-deleted children.
func (r *Repository) ChildCount(ctx context.Context, id int64) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM sys_department WHERE parent_id = $1 AND deleted = 0`, id).Scan(&count)
	return count, err
}

// UserCount returns how many non-deleted users belong to the department.
func (r *Repository) UserCount(ctx context.Context, id int64) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM sys_user WHERE department_id = $1 AND deleted = 0`, id).Scan(&count)
	return count, err
}

// Create inserts a department and returns it with its assigned id.
func (r *Repository) Create(ctx context.Context, d Department) (Department, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO sys_department (dept_name, parent_id, leader, phone, sort_order, status, create_time, update_time, deleted)
		VALUES ($1, NULLIF($2, 0), $3, $4, $5, $6, NOW(), NOW(), 0)
		RETURNING id, create_time, update_time`,
		d.Name, d.ParentID, d.Leader, d.Phone, d.SortOrder, d.Status)
	if err := row.Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return Department{}, err
	}
	return d, nil
}

// Update rewrites a department row.
func (r *Repository) Update(ctx context.Context, d Department) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE sys_department SET dept_name = $2, parent_id = NULLIF($3, 0), leader = $4, phone = $5, sort_order = $6, status = $7, update_time = NOW()
		WHERE id = $1 AND deleted = 0`,
		d.ID, d.Name, d.ParentID, d.Leader, d.Phone, d.SortOrder, d.Status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

// Delete soft-deletes a department.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `UPDATE sys_department SET deleted = 1, update_time = NOW() WHERE id = $1 AND deleted = 0`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

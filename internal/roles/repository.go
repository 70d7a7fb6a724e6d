package roles

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/haocai-admin/haocai-admin/internal/httpx"
	"github.com/haocai-admin/haocai-admin/internal/shared"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const roleColumns = `id, role_name, role_code, COALESCE(description, ''), status, create_time, update_time`

// List returns roles matching the filters plus the unpaged total.
func (r *Repository) List(ctx context.Context, filters ListFilters) ([]Role, int64, error) {
	where := ` WHERE deleted = 0`
	args := []any{}
	if filters.Name != "" {
		args = append(args, "%"+filters.Name+"%")
		where += ` AND role_name LIKE $` + strconv.Itoa(len(args))
	}
	if filters.Code != "" {
		args = append(args, "%"+filters.Code+"%")
		where += ` AND role_code LIKE $` + strconv.Itoa(len(args))
	}
	if filters.Status != nil {
		args = append(args, *filters.Status)
		where += ` AND status = $` + strconv.Itoa(len(args))
	}

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM sys_role`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + roleColumns + ` FROM sys_role` + where + ` ORDER BY id`
	if filters.Size > 0 {
		args = append(args, filters.Size)
		query += ` LIMIT $` + strconv.Itoa(len(args))
		args = append(args, shared.Offset(filters.Current, filters.Size))
		query += ` OFFSET $` + strconv.Itoa(len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var roles []Role
	for rows.Next() {
		var role Role
		if err := rows.Scan(&role.ID, &role.Name, &role.Code, &role.Description, &role.Status, &role.CreatedAt, &role.UpdatedAt); err != nil {
			return nil, 0, err
		}
		roles = append(roles, role)
	}
	return roles, total, rows.Err()
}

// Get fetches a non-deleted role by ID.
func (r *Repository) Get(ctx context.Context, id int64) (Role, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+roleColumns+` FROM sys_role WHERE id = $1 AND deleted = 0`, id)
	var role Role
	err := row.Scan(&role.ID, &role.Name, &role.Code, &role.Description, &role.Status, &role.CreatedAt, &role.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Role{}, httpx.ErrNotFound
		}
		return Role{}, err
	}
	return role, nil
}

// CodeInUse reports whether another non-deleted role holds the code.
func (r *Repository) CodeInUse(ctx context.Context, code string, excludeID int64) (bool, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM sys_role WHERE role_code = $1 AND deleted = 0 AND id <> $2`, code, excludeID).Scan(&count)
	return count > 0, err
}

// UserCount returns how many users currently hold the role.
func (r *Repository) UserCount(ctx context.Context, roleID int64) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM sys_user_role WHERE role_id = $1`, roleID).Scan(&count)
	return count, err
}

// Create inserts a role and returns it with its assigned id.
func (r *Repository) Create(ctx context.Context, role Role) (Role, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO sys_role (role_name, role_code, description, status, create_time, update_time, deleted)
		VALUES ($1, $2, $3, $4, NOW(), NOW(), 0)
		RETURNING id, create_time, update_time`,
		role.Name, role.Code, role.Description, role.Status)
	if err := row.Scan(&role.ID, &role.CreatedAt, &role.UpdatedAt); err != nil {
		return Role{}, err
	}
	return role, nil
}

// Update rewrites a role row.
func (r *Repository) Update(ctx context.Context, role Role) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE sys_role SET role_name = $2, role_code = $3, description = $4, status = $5, update_time = NOW()
		WHERE id = $1 AND deleted = 0`,
		role.ID, role.Name, role.Code, role.Description, role.Status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

// Delete soft-deletes a role and removes its assignments.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `UPDATE sys_role SET deleted = 1, update_time = NOW() WHERE id = $1 AND deleted = 0`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	if _, err := tx.Exec(ctx, `DELETE FROM sys_role_permission WHERE role_id = $1`, id); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

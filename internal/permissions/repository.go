package permissions

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/haocai-admin/haocai-admin/internal/httpx"
	"github.com/haocai-admin/haocai-admin/internal/rbac"
)

// Repository provides PostgreSQL backed persistence for the catalog.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const permColumns = `id, permission_name, permission_code, type, COALESCE(parent_id, 0),
	COALESCE(path, ''), COALESCE(component, ''), COALESCE(icon, ''), sort_order, status, create_time, update_time`

// ListAll returns every non-deleted permission ordered for tree building.
func (r *Repository) ListAll(ctx context.Context) ([]rbac.Permission, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+permColumns+` FROM sys_permission WHERE deleted = 0 ORDER BY sort_order, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var perms []rbac.Permission
	for rows.Next() {
		var p rbac.Permission
		if err := rows.Scan(&p.ID, &p.Name, &p.Code, &p.Type, &p.ParentID, &p.Path, &p.Component, &p.Icon, &p.SortOrder, &p.Status, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		perms = append(perms, p)
	}
	return perms, rows.Err()
}

// Get returns a single non-deleted permission.
func (r *Repository) Get(ctx context.Context, id int64) (rbac.Permission, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+permColumns+` FROM sys_permission WHERE id = $1 AND deleted = 0`, id)
	var p rbac.Permission
	err := row.Scan(&p.ID, &p.Name, &p.Code, &p.Type, &p.ParentID, &p.Path, &p.Component, &p.Icon, &p.SortOrder, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return rbac.Permission{}, httpx.ErrNotFound
		}
		return rbac.Permission{}, err
	}
	return p, nil
}

// CodeInUse reports whether another non-deleted permission already holds the
// code. excludeID skips the row being updated.
func (r *Repository) CodeInUse(ctx context.Context, code string, excludeID int64) (bool, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM sys_permission WHERE permission_code = $1 AND deleted = 0 AND id <> $2`, code, excludeID).Scan(&count)
	return count > 0, err
}

// ChildCount returns the number of non-deleted children of a node.
func (r *Repository) ChildCount(ctx context.Context, id int64) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM sys_permission WHERE parent_id = $1 AND deleted = 0`, id).Scan(&count)
	return count, err
}

// Create inserts a permission and returns it with its assigned id.
func (r *Repository) Create(ctx context.Context, p rbac.Permission) (rbac.Permission, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO sys_permission (permission_name, permission_code, type, parent_id, path, component, icon, sort_order, status, create_time, update_time, deleted)
		VALUES ($1, $2, $3, NULLIF($4, 0), $5, $6, $7, $8, $9, NOW(), NOW(), 0)
		RETURNING id, create_time, update_time`,
		p.Name, p.Code, p.Type, p.ParentID, p.Path, p.Component, p.Icon, p.SortOrder, p.Status)
	if err := row.Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return rbac.Permission{}, translateConstraint(err)
	}
	return p, nil
}

// Update rewrites a permission row.
func (r *Repository) Update(ctx context.Context, p rbac.Permission) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE sys_permission
		SET permission_name = $2, permission_code = $3, type = $4, parent_id = NULLIF($5, 0),
		    path = $6, component = $7, icon = $8, sort_order = $9, status = $10, update_time = NOW()
		WHERE id = $1 AND deleted = 0`,
		p.ID, p.Name, p.Code, p.Type, p.ParentID, p.Path, p.Component, p.Icon, p.SortOrder, p.Status)
	if err != nil {
		return translateConstraint(err)
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

// Delete soft-deletes a permission and detaches it from all roles.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `UPDATE sys_permission SET deleted = 1, update_time = NOW() WHERE id = $1 AND deleted = 0`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	if _, err := tx.Exec(ctx, `DELETE FROM sys_role_permission WHERE permission_id = $1`, id); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

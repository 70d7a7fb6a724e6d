package users

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

const userColumns = `id, username, COALESCE(name, ''), COALESCE(email, ''), COALESCE(phone, ''), status, password, COALESCE(department_id, 0), create_time, update_time`

// List returns users matching the filters plus the unpaged total.
func (r *Repository) List(ctx context.Context, filters ListFilters) ([]User, int64, error) {
	where := ` WHERE deleted = 0`
	args := []any{}
	if filters.Username != "" {
		args = append(args, "%"+filters.Username+"%")
		where += ` AND username LIKE $` + strconv.Itoa(len(args))
	}
	if filters.Name != "" {
		args = append(args, "%"+filters.Name+"%")
		where += ` AND name LIKE $` + strconv.Itoa(len(args))
	}
	if filters.Status != nil {
		args = append(args, *filters.Status)
		where += ` AND status = $` + strconv.Itoa(len(args))
	}
	if filters.DepartmentID != 0 {
		args = append(args, filters.DepartmentID)
		where += ` AND department_id = $` + strconv.Itoa(len(args))
	}

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM sys_user`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + userColumns + ` FROM sys_user` + where + ` ORDER BY id`
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

	var users []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Username, &u.Name, &u.Email, &u.Phone, &u.Status, &u.PasswordHash, &u.DepartmentID, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, 0, err
		}
		users = append(users, u)
	}
	return users, total, rows.Err()
}

// Get fetches a non-deleted user by ID.
func (r *Repository) Get(ctx context.Context, id int64) (User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM sys_user WHERE id = $1 AND deleted = 0`, id)
	var u User
	err := row.Scan(&u.ID, &u.Username, &u.Name, &u.Email, &u.Phone, &u.Status, &u.PasswordHash, &u.DepartmentID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, httpx.ErrNotFound
		}
		return User{}, err
	}
	return u, nil
}

// UsernameInUse reports whether another non-deleted user holds the username.
func (r *Repository) UsernameInUse(ctx context.Context, username string, excludeID int64) (bool, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM sys_user WHERE username = $1 AND deleted = 0 AND id <> $2`, username, excludeID).Scan(&count)
	return count > 0, err
}

// Create inserts a user and returns it with its assigned id.
func (r *Repository) Create(ctx context.Context, u User) (User, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO sys_user (username, password, name, email, phone, status, department_id, create_time, update_time, deleted)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, 0), NOW(), NOW(), 0)
		RETURNING id, create_time, update_time`,
		u.Username, u.PasswordHash, u.Name, u.Email, u.Phone, u.Status, u.DepartmentID)
	if err := row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return User{}, err
	}
	return u, nil
}

// Update rewrites a user's profile fields. Username and password are
// handled by dedicated operations.
func (r *Repository) Update(ctx context.Context, u User) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE sys_user SET name = $2, email = $3, phone = $4, department_id = NULLIF($5, 0), update_time = NOW()
		WHERE id = $1 AND deleted = 0`,
		u.ID, u.Name, u.Email, u.Phone, u.DepartmentID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

// UpdateStatus flips a user's account status.
func (r *Repository) UpdateStatus(ctx context.Context, id int64, status int) error {
	tag, err := r.pool.Exec(ctx, `UPDATE sys_user SET status = $2, update_time = NOW() WHERE id = $1 AND deleted = 0`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

// UpdatePassword stores a new password hash.
func (r *Repository) UpdatePassword(ctx context.Context, id int64, hash string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE sys_user SET password = $2, update_time = NOW() WHERE id = $1 AND deleted = 0`, id, hash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

// Delete soft-deletes a user and removes their role assignments.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `UPDATE sys_user SET deleted = 1, update_time = NOW() WHERE id = $1 AND deleted = 0`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	if _, err := tx.Exec(ctx, `DELETE FROM sys_user_role WHERE user_id = $1`, id); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// UpdateStatusBatch flips the status of every listed account in one
// statement. Missing or deleted IDs are skipped silently.
func (r *Repository) UpdateStatusBatch(ctx context.Context, ids []int64, status int) error {
	_, err := r.pool.Exec(ctx, `UPDATE sys_user SET status = $2, update_time = NOW() WHERE id = ANY($1) AND deleted = 0`, ids, status)
	return err
}

// DeleteBatch soft-deletes the listed accounts and removes their role
// assignments in one transaction.
func (r *Repository) DeleteBatch(ctx context.Context, ids []int64) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `UPDATE sys_user SET deleted = 1, update_time = NOW() WHERE id = ANY($1) AND deleted = 0`, ids); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM sys_user_role WHERE user_id = ANY($1)`, ids); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// ReplaceUserRoles swaps a user's role set for the given IDs in one
// transaction.
func (r *Repository) ReplaceUserRoles(ctx context.Context, userID int64, roleIDs []int64) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM sys_user_role WHERE user_id = $1`, userID); err != nil {
		return err
	}
	for _, roleID := range roleIDs {
		if _, err := tx.Exec(ctx, `INSERT INTO sys_user_role (user_id, role_id) VALUES ($1, $2)`, userID, roleID); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// AddUserRoles grants roles on top of the existing assignments. Roles the
// user already holds are left alone.
func (r *Repository) AddUserRoles(ctx context.Context, userID int64, roleIDs []int64) error {
	for _, roleID := range roleIDs {
		if _, err := r.pool.Exec(ctx, `
			INSERT INTO sys_user_role (user_id, role_id) VALUES ($1, $2)
			ON CONFLICT DO NOTHING`, userID, roleID); err != nil {
			return err
		}
	}
	return nil
}

// RemoveUserRole revokes a single role assignment.
func (r *Repository) RemoveUserRole(ctx context.Context, userID, roleID int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM sys_user_role WHERE user_id = $1 AND role_id = $2`, userID, roleID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

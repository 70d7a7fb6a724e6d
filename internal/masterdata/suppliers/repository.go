package suppliers

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

const supplierColumns = `id, supplier_name, COALESCE(contact, ''), COALESCE(phone, ''), COALESCE(address, ''), status, COALESCE(remark, ''), create_time, update_time`

// List returns suppliers matching the filters plus the unpaged total.
func (r *Repository) List(ctx context.Context, filters ListFilters) ([]Supplier, int64, error) {
	where := ` WHERE deleted = 0`
	args := []any{}
	if filters.Name != "" {
		args = append(args, "%"+filters.Name+"%")
		where += ` AND supplier_name LIKE $` + strconv.Itoa(len(args))
	}
	if filters.Status != nil {
		args = append(args, *filters.Status)
		where += ` AND status = $` + strconv.Itoa(len(args))
	}

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM mat_supplier`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + supplierColumns + ` FROM mat_supplier` + where + ` ORDER BY id`
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

	var suppliers []Supplier
	for rows.Next() {
		var s Supplier
		if err := rows.Scan(&s.ID, &s.Name, &s.Contact, &s.Phone, &s.Address, &s.Status, &s.Remark, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, 0, err
		}
		suppliers = append(suppliers, s)
	}
	return suppliers, total, rows.Err()
}

// Get fetches a non-deleted supplier by ID.
func (r *Repository) Get(ctx context.Context, id int64) (Supplier, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+supplierColumns+` FROM mat_supplier WHERE id = $1 AND deleted = 0`, id)
	var s Supplier
	err := row.Scan(&s.ID, &s.Name, &s.Contact, &s.Phone, &s.Address, &s.Status, &s.Remark, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Supplier{}, httpx.ErrNotFound
		}
		return Supplier{}, err
	}
	return s, nil
}

// NameInUse reports whether another non-deleted supplier holds the name.
func (r *Repository) NameInUse(ctx context.Context, name string, excludeID int64) (bool, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM mat_supplier WHERE supplier_name = $1 AND deleted = 0 AND id <> $2`, name, excludeID).Scan(&count)
	return count > 0, err
}

// MaterialCount returns how many non-deleted materials reference the
// supplier.
func (r *Repository) MaterialCount(ctx context.Context, id int64) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM mat_material WHERE supplier_id = $1 AND deleted = 0`, id).Scan(&count)
	return count, err
}

// Create inserts a supplier and returns it with its assigned id.
func (r *Repository) Create(ctx context.Context, s Supplier) (Supplier, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO mat_supplier (supplier_name, contact, phone, address, status, remark, create_time, update_time, deleted)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW(), 0)
		RETURNING id, create_time, update_time`,
		s.Name, s.Contact, s.Phone, s.Address, s.Status, s.Remark)
	if err := row.Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return Supplier{}, err
	}
	return s, nil
}

// Update rewrites a supplier row.
func (r *Repository) Update(ctx context.Context, s Supplier) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE mat_supplier SET supplier_name = $2, contact = $3, phone = $4, address = $5, status = $6, remark = $7, update_time = NOW()
		WHERE id = $1 AND deleted = 0`,
		s.ID, s.Name, s.Contact, s.Phone, s.Address, s.Status, s.Remark)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

// Delete soft-deletes a supplier.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `UPDATE mat_supplier SET deleted = 1, update_time = NOW() WHERE id = $1 AND deleted = 0`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

package materials

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

const materialColumns = `m.id, m.material_name, m.material_code, m.category_id, COALESCE(c.category_name, ''), COALESCE(m.spec, ''), m.unit, m.price, COALESCE(m.supplier_id, 0), m.status, COALESCE(m.remark, ''), m.create_time, m.update_time`

// List returns materials matching the filters plus the unpaged total.
// The category name is joined in so listings render without a second
// round trip.
func (r *Repository) List(ctx context.Context, filters ListFilters) ([]Material, int64, error) {
	where := ` WHERE m.deleted = 0`
	args := []any{}
	if filters.Name != "" {
		args = append(args, "%"+filters.Name+"%")
		where += ` AND m.material_name LIKE $` + strconv.Itoa(len(args))
	}
	if filters.Code != "" {
		args = append(args, "%"+filters.Code+"%")
		where += ` AND m.material_code LIKE $` + strconv.Itoa(len(args))
	}
	if filters.CategoryID != 0 {
		args = append(args, filters.CategoryID)
		where += ` AND m.category_id = $` + strconv.Itoa(len(args))
	}
	if filters.Status != nil {
		args = append(args, *filters.Status)
		where += ` AND m.status = $` + strconv.Itoa(len(args))
	}

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM mat_material m`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + materialColumns + ` FROM mat_material m LEFT JOIN mat_category c ON c.id = m.category_id` + where + ` ORDER BY m.id`
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

	var materials []Material
	for rows.Next() {
		var m Material
		if err := rows.Scan(&m.ID, &m.Name, &m.Code, &m.CategoryID, &m.CategoryName, &m.Spec, &m.Unit, &m.Price, &m.SupplierID, &m.Status, &m.Remark, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, 0, err
		}
		materials = append(materials, m)
	}
	return materials, total, rows.Err()
}

// Get fetches a non-deleted material by ID.
func (r *Repository) Get(ctx context.Context, id int64) (Material, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+materialColumns+` FROM mat_material m LEFT JOIN mat_category c ON c.id = m.category_id WHERE m.id = $1 AND m.deleted = 0`, id)
	var m Material
	err := row.Scan(&m.ID, &m.Name, &m.Code, &m.CategoryID, &m.CategoryName, &m.Spec, &m.Unit, &m.Price, &m.SupplierID, &m.Status, &m.Remark, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Material{}, httpx.ErrNotFound
		}
		return Material{}, err
	}
	return m, nil
}

// CodeInUse reports whether another non-deleted material holds the code.
func (r *Repository) CodeInUse(ctx context.Context, code string, excludeID int64) (bool, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM mat_material WHERE material_code = $1 AND deleted = 0 AND id <> $2`, code, excludeID).Scan(&count)
	return count > 0, err
}

// Create inserts a material and returns it with its assigned id.
func (r *Repository) Create(ctx context.Context, m Material) (Material, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO mat_material (material_name, material_code, category_id, spec, unit, price, supplier_id, status, remark, create_time, update_time, deleted)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, 0), $8, $9, NOW(), NOW(), 0)
		RETURNING id, create_time, update_time`,
		m.Name, m.Code, m.CategoryID, m.Spec, m.Unit, m.Price, m.SupplierID, m.Status, m.Remark)
	if err := row.Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return Material{}, err
	}
	return m, nil
}

// Update rewrites a material row.
func (r *Repository) Update(ctx context.Context, m Material) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE mat_material SET material_name = $2, material_code = $3, category_id = $4, spec = $5, unit = $6, price = $7, supplier_id = NULLIF($8, 0), status = $9, remark = $10, update_time = NOW()
		WHERE id = $1 AND deleted = 0`,
		m.ID, m.Name, m.Code, m.CategoryID, m.Spec, m.Unit, m.Price, m.SupplierID, m.Status, m.Remark)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

// Delete soft-deletes a material.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `UPDATE mat_material SET deleted = 1, update_time = NOW() WHERE id = $1 AND deleted = 0`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

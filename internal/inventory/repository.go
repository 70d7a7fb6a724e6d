package inventory

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

const stockColumns = `s.id, s.material_id, COALESCE(m.material_name, ''), COALESCE(m.unit, ''), s.quantity, s.warn_threshold, s.update_time`

// List returns stock rows matching the filters plus the unpaged total.
func (r *Repository) List(ctx context.Context, filters ListFilters) ([]Stock, int64, error) {
	where := ` WHERE m.deleted = 0`
	args := []any{}
	if filters.MaterialName != "" {
		args = append(args, "%"+filters.MaterialName+"%")
		where += ` AND m.material_name LIKE $` + strconv.Itoa(len(args))
	}
	if filters.OnlyLow {
		where += ` AND s.warn_threshold > 0 AND s.quantity <= s.warn_threshold`
	}

	from := ` FROM mat_stock s JOIN mat_material m ON m.id = s.material_id`

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*)`+from+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + stockColumns + from + where + ` ORDER BY s.material_id`
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

	var stocks []Stock
	for rows.Next() {
		var s Stock
		if err := rows.Scan(&s.ID, &s.MaterialID, &s.MaterialName, &s.Unit, &s.Quantity, &s.WarnThreshold, &s.UpdatedAt); err != nil {
			return nil, 0, err
		}
		stocks = append(stocks, s)
	}
	return stocks, total, rows.Err()
}

// GetByMaterial fetches the stock row for a material.
func (r *Repository) GetByMaterial(ctx context.Context, materialID int64) (Stock, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+stockColumns+` FROM mat_stock s JOIN mat_material m ON m.id = s.material_id WHERE s.material_id = $1`, materialID)
	var s Stock
	err := row.Scan(&s.ID, &s.MaterialID, &s.MaterialName, &s.Unit, &s.Quantity, &s.WarnThreshold, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Stock{}, httpx.ErrNotFound
		}
		return Stock{}, err
	}
	return s, nil
}

// HasStock reports whether the material holds a positive quantity.
func (r *Repository) HasStock(ctx context.Context, materialID int64) (bool, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM mat_stock WHERE material_id = $1 AND quantity > 0`, materialID).Scan(&count)
	return count > 0, err
}

// Adjust applies a signed delta to a material's stock and writes the
// movement record in the same transaction. The row lock serialises
// concurrent adjustments; a negative result aborts the transaction.
func (r *Repository) Adjust(ctx context.Context, rec Record) (Stock, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return Stock{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	delta := rec.Quantity
	if rec.Movement == MovementOut {
		delta = -delta
	}

	var s Stock
	err = tx.QueryRow(ctx, `
		INSERT INTO mat_stock (material_id, quantity, warn_threshold, update_time)
		VALUES ($1, 0, 0, NOW())
		ON CONFLICT (material_id) DO UPDATE SET update_time = NOW()
		RETURNING id, material_id, quantity, warn_threshold`,
		rec.MaterialID).Scan(&s.ID, &s.MaterialID, &s.Quantity, &s.WarnThreshold)
	if err != nil {
		return Stock{}, err
	}

	if s.Quantity+delta < 0 {
		return Stock{}, httpx.Conflictf("insufficient stock: have %d, need %d", s.Quantity, -delta)
	}

	err = tx.QueryRow(ctx, `
		UPDATE mat_stock SET quantity = quantity + $2, update_time = NOW()
		WHERE material_id = $1
		RETURNING quantity, update_time`,
		rec.MaterialID, delta).Scan(&s.Quantity, &s.UpdatedAt)
	if err != nil {
		return Stock{}, err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO mat_stock_record (material_id, movement, quantity, operator_id, remark, create_time)
		VALUES ($1, $2, $3, $4, $5, NOW())`,
		rec.MaterialID, rec.Movement, rec.Quantity, rec.OperatorID, rec.Remark)
	if err != nil {
		return Stock{}, err
	}
	return s, tx.Commit(ctx)
}

// SetThreshold updates a material's warning threshold, creating the
// stock row when it does not exist yet.
func (r *Repository) SetThreshold(ctx context.Context, materialID, threshold int64) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO mat_stock (material_id, quantity, warn_threshold, update_time)
		VALUES ($1, 0, $2, NOW())
		ON CONFLICT (material_id) DO UPDATE SET warn_threshold = $2, update_time = NOW()`,
		materialID, threshold)
	return err
}

// Records returns movement rows matching the filters plus the unpaged
// total.
func (r *Repository) Records(ctx context.Context, filters RecordFilters) ([]Record, int64, error) {
	where := ` WHERE 1 = 1`
	args := []any{}
	if filters.MaterialID != 0 {
		args = append(args, filters.MaterialID)
		where += ` AND material_id = $` + strconv.Itoa(len(args))
	}
	if filters.Movement != "" {
		args = append(args, filters.Movement)
		where += ` AND movement = $` + strconv.Itoa(len(args))
	}

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM mat_stock_record`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT id, material_id, movement, quantity, operator_id, COALESCE(remark, ''), create_time FROM mat_stock_record` + where + ` ORDER BY id DESC`
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

	var records []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.MaterialID, &rec.Movement, &rec.Quantity, &rec.OperatorID, &rec.Remark, &rec.CreatedAt); err != nil {
			return nil, 0, err
		}
		records = append(records, rec)
	}
	return records, total, rows.Err()
}

package suppliers

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/haocai-admin/haocai-admin/internal/httpx"
	"github.com/haocai-admin/haocai-admin/internal/shared"
)

// Nullable dates collapse to the zero time on scan.
const qualificationColumns = `q.id, q.supplier_id, COALESCE(s.supplier_name, ''), q.qualification_type, q.qualification_name,
	COALESCE(q.file_url, ''), COALESCE(q.file_name, ''), COALESCE(q.issue_date, DATE '0001-01-01'), COALESCE(q.expiry_date, DATE '0001-01-01'),
	COALESCE(q.issuing_authority, ''), q.status, COALESCE(q.description, ''), q.create_time, q.update_time`

const qualificationFrom = ` FROM mat_supplier_qualification q LEFT JOIN mat_supplier s ON s.id = q.supplier_id AND s.deleted = 0`

func scanQualification(row pgx.Row) (Qualification, error) {
	var q Qualification
	err := row.Scan(&q.ID, &q.SupplierID, &q.SupplierName, &q.Type, &q.Name,
		&q.FileURL, &q.FileName, &q.IssueDate, &q.ExpiryDate,
		&q.Authority, &q.Status, &q.Description, &q.CreatedAt, &q.UpdatedAt)
	return q, err
}

// ListQualifications returns qualifications matching the filters plus
// the unpaged total.
func (r *Repository) ListQualifications(ctx context.Context, filters QualificationFilters) ([]Qualification, int64, error) {
	where := ` WHERE q.deleted = 0`
	args := []any{}
	if filters.SupplierID != 0 {
		args = append(args, filters.SupplierID)
		where += ` AND q.supplier_id = $` + strconv.Itoa(len(args))
	}
	if filters.Type != "" {
		args = append(args, filters.Type)
		where += ` AND q.qualification_type = $` + strconv.Itoa(len(args))
	}
	if filters.Status != nil {
		args = append(args, *filters.Status)
		where += ` AND q.status = $` + strconv.Itoa(len(args))
	}

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*)`+qualificationFrom+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + qualificationColumns + qualificationFrom + where + ` ORDER BY q.create_time DESC, q.id DESC`
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

	var quals []Qualification
	for rows.Next() {
		q, err := scanQualification(rows)
		if err != nil {
			return nil, 0, err
		}
		quals = append(quals, q)
	}
	return quals, total, rows.Err()
}

// GetQualification fetches a non-deleted qualification by ID.
func (r *Repository) GetQualification(ctx context.Context, id int64) (Qualification, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+qualificationColumns+qualificationFrom+` WHERE q.id = $1 AND q.deleted = 0`, id)
	q, err := scanQualification(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Qualification{}, httpx.ErrNotFound
		}
		return Qualification{}, err
	}
	return q, nil
}

// QualificationsForSupplier returns all non-deleted qualifications of
// one supplier.
func (r *Repository) QualificationsForSupplier(ctx context.Context, supplierID int64) ([]Qualification, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+qualificationColumns+qualificationFrom+` WHERE q.supplier_id = $1 AND q.deleted = 0 ORDER BY q.id`, supplierID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var quals []Qualification
	for rows.Next() {
		q, err := scanQualification(rows)
		if err != nil {
			return nil, err
		}
		quals = append(quals, q)
	}
	return quals, rows.Err()
}

// QualificationTypeInUse reports whether the supplier already holds
// another non-deleted qualification of the type.
func (r *Repository) QualificationTypeInUse(ctx context.Context, supplierID int64, qualType string, excludeID int64) (bool, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM mat_supplier_qualification
		WHERE supplier_id = $1 AND qualification_type = $2 AND deleted = 0 AND id <> $3`,
		supplierID, qualType, excludeID).Scan(&count)
	return count > 0, err
}

// CreateQualification inserts a qualification and returns it with its
// assigned id.
func (r *Repository) CreateQualification(ctx context.Context, q Qualification) (Qualification, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO mat_supplier_qualification (supplier_id, qualification_type, qualification_name, file_url, file_name, issue_date, expiry_date, issuing_authority, status, description, create_time, update_time, deleted)
		VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, DATE '0001-01-01'), NULLIF($7, DATE '0001-01-01'), NULLIF($8, ''), $9, NULLIF($10, ''), NOW(), NOW(), 0)
		RETURNING id, create_time, update_time`,
		q.SupplierID, q.Type, q.Name, q.FileURL, q.FileName, q.IssueDate, q.ExpiryDate, q.Authority, q.Status, q.Description)
	if err := row.Scan(&q.ID, &q.CreatedAt, &q.UpdatedAt); err != nil {
		return Qualification{}, err
	}
	return q, nil
}

// UpdateQualification rewrites a qualification row. The supplier a
// qualification belongs to never changes.
func (r *Repository) UpdateQualification(ctx context.Context, q Qualification) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE mat_supplier_qualification
		SET qualification_type = $2, qualification_name = $3, file_url = NULLIF($4, ''), file_name = NULLIF($5, ''),
			issue_date = NULLIF($6, DATE '0001-01-01'), expiry_date = NULLIF($7, DATE '0001-01-01'),
			issuing_authority = NULLIF($8, ''), status = $9, description = NULLIF($10, ''), update_time = NOW()
		WHERE id = $1 AND deleted = 0`,
		q.ID, q.Type, q.Name, q.FileURL, q.FileName, q.IssueDate, q.ExpiryDate, q.Authority, q.Status, q.Description)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

// DeleteQualification soft-deletes a qualification.
func (r *Repository) DeleteQualification(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `UPDATE mat_supplier_qualification SET deleted = 1, update_time = NOW() WHERE id = $1 AND deleted = 0`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

// DeleteQualificationsBatch soft-deletes the given qualifications and
// returns how many rows changed.
func (r *Repository) DeleteQualificationsBatch(ctx context.Context, ids []int64) (int64, error) {
	tag, err := r.pool.Exec(ctx, `UPDATE mat_supplier_qualification SET deleted = 1, update_time = NOW() WHERE id = ANY($1) AND deleted = 0`, ids)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// ExpiringQualifications returns valid qualifications whose expiry date
// falls inside (from, until].
func (r *Repository) ExpiringQualifications(ctx context.Context, from, until time.Time) ([]Qualification, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+qualificationColumns+qualificationFrom+`
		WHERE q.deleted = 0 AND q.status = $1 AND q.expiry_date IS NOT NULL AND q.expiry_date > $2 AND q.expiry_date <= $3
		ORDER BY q.expiry_date, q.id`,
		QualificationValid, from, until)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var quals []Qualification
	for rows.Next() {
		q, err := scanQualification(rows)
		if err != nil {
			return nil, err
		}
		quals = append(quals, q)
	}
	return quals, rows.Err()
}

// ExpireOverdueQualifications flips valid qualifications whose expiry
// date is before asOf to the expired status and returns how many rows
// changed.
func (r *Repository) ExpireOverdueQualifications(ctx context.Context, asOf time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE mat_supplier_qualification SET status = $1, update_time = NOW()
		WHERE deleted = 0 AND status = $2 AND expiry_date IS NOT NULL AND expiry_date < $3`,
		QualificationExpired, QualificationValid, asOf)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

package suppliers

import (
	"context"
	"strings"
	"time"

	"github.com/haocai-admin/haocai-admin/internal/httpx"
	"github.com/haocai-admin/haocai-admin/internal/shared"
)

// QualificationRepositoryPort defines data access methods for supplier
// qualifications.
type QualificationRepositoryPort interface {
	ListQualifications(ctx context.Context, filters QualificationFilters) ([]Qualification, int64, error)
	GetQualification(ctx context.Context, id int64) (Qualification, error)
	QualificationsForSupplier(ctx context.Context, supplierID int64) ([]Qualification, error)
	QualificationTypeInUse(ctx context.Context, supplierID int64, qualType string, excludeID int64) (bool, error)
	CreateQualification(ctx context.Context, q Qualification) (Qualification, error)
	UpdateQualification(ctx context.Context, q Qualification) error
	DeleteQualification(ctx context.Context, id int64) error
	DeleteQualificationsBatch(ctx context.Context, ids []int64) (int64, error)
	ExpiringQualifications(ctx context.Context, from, until time.Time) ([]Qualification, error)
	ExpireOverdueQualifications(ctx context.Context, asOf time.Time) (int64, error)
}

// today truncates the wall clock to a UTC calendar date, matching how
// DATE columns come back from the database.
func today() time.Time {
	y, m, d := time.Now().UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// flagExpiringSoon marks valid qualifications whose expiry date falls
// inside the warning window.
func flagExpiringSoon(q *Qualification, now time.Time) {
	if q.Status != QualificationValid || q.ExpiryDate.IsZero() {
		q.ExpiringSoon = false
		return
	}
	q.ExpiringSoon = q.ExpiryDate.After(now) && !q.ExpiryDate.After(now.Add(ExpiryWarningWindow))
}

// ListQualifications returns a page of qualifications.
func (s *Service) ListQualifications(ctx context.Context, filters QualificationFilters) (shared.Page[Qualification], error) {
	records, total, err := s.quals.ListQualifications(ctx, filters)
	if err != nil {
		return shared.Page[Qualification]{}, err
	}
	now := today()
	for i := range records {
		flagExpiringSoon(&records[i], now)
	}
	return shared.NewPage(records, total, filters.Current, filters.Size), nil
}

// GetQualification fetches a qualification by ID.
func (s *Service) GetQualification(ctx context.Context, id int64) (Qualification, error) {
	q, err := s.quals.GetQualification(ctx, id)
	if err != nil {
		return Qualification{}, err
	}
	flagExpiringSoon(&q, today())
	return q, nil
}

// QualificationsForSupplier returns all qualifications of one supplier.
func (s *Service) QualificationsForSupplier(ctx context.Context, supplierID int64) ([]Qualification, error) {
	if _, err := s.repo.Get(ctx, supplierID); err != nil {
		return nil, err
	}
	records, err := s.quals.QualificationsForSupplier(ctx, supplierID)
	if err != nil {
		return nil, err
	}
	now := today()
	for i := range records {
		flagExpiringSoon(&records[i], now)
	}
	return records, nil
}

// CreateQualification validates and inserts a qualification. A
// qualification whose expiry date already passed is created expired.
func (s *Service) CreateQualification(ctx context.Context, q Qualification) (Qualification, error) {
	if err := validateQualification(&q); err != nil {
		return Qualification{}, err
	}
	if _, err := s.repo.Get(ctx, q.SupplierID); err != nil {
		return Qualification{}, err
	}
	if inUse, err := s.quals.QualificationTypeInUse(ctx, q.SupplierID, q.Type, 0); err != nil {
		return Qualification{}, err
	} else if inUse {
		return Qualification{}, httpx.Conflictf("supplier already holds a %q qualification", q.Type)
	}
	now := today()
	q.Status = QualificationValid
	if !q.ExpiryDate.IsZero() && q.ExpiryDate.Before(now) {
		q.Status = QualificationExpired
	}
	created, err := s.quals.CreateQualification(ctx, q)
	if err != nil {
		return Qualification{}, err
	}
	flagExpiringSoon(&created, now)
	return created, nil
}

// UpdateQualification validates and rewrites a qualification.
func (s *Service) UpdateQualification(ctx context.Context, q Qualification) error {
	if err := validateQualification(&q); err != nil {
		return err
	}
	existing, err := s.quals.GetQualification(ctx, q.ID)
	if err != nil {
		return err
	}
	q.SupplierID = existing.SupplierID
	if q.Type != existing.Type {
		if inUse, err := s.quals.QualificationTypeInUse(ctx, q.SupplierID, q.Type, q.ID); err != nil {
			return err
		} else if inUse {
			return httpx.Conflictf("supplier already holds a %q qualification", q.Type)
		}
	}
	if !q.ExpiryDate.IsZero() && q.ExpiryDate.Before(today()) {
		q.Status = QualificationExpired
	}
	return s.quals.UpdateQualification(ctx, q)
}

// DeleteQualification removes one qualification.
func (s *Service) DeleteQualification(ctx context.Context, id int64) error {
	return s.quals.DeleteQualification(ctx, id)
}

// DeleteQualificationsBatch removes the given qualifications and
// reports how many existed.
func (s *Service) DeleteQualificationsBatch(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, httpx.Validationf("no qualification ids supplied")
	}
	return s.quals.DeleteQualificationsBatch(ctx, ids)
}

// ExpiringQualifications returns valid qualifications expiring inside
// the warning window.
func (s *Service) ExpiringQualifications(ctx context.Context) ([]Qualification, error) {
	now := today()
	records, err := s.quals.ExpiringQualifications(ctx, now, now.Add(ExpiryWarningWindow))
	if err != nil {
		return nil, err
	}
	for i := range records {
		flagExpiringSoon(&records[i], now)
	}
	return records, nil
}

// ExpireOverdueQualifications flips overdue qualifications to the
// expired status and returns how many changed.
func (s *Service) ExpireOverdueQualifications(ctx context.Context) (int64, error) {
	return s.quals.ExpireOverdueQualifications(ctx, today())
}

func validateQualification(q *Qualification) error {
	q.Type = strings.TrimSpace(q.Type)
	q.Name = strings.TrimSpace(q.Name)
	if q.SupplierID == 0 {
		return httpx.Validationf("supplier id is required")
	}
	if q.Type == "" {
		return httpx.Validationf("qualification type is required")
	}
	if q.Name == "" {
		return httpx.Validationf("qualification name is required")
	}
	if !q.IssueDate.IsZero() && !q.ExpiryDate.IsZero() && q.ExpiryDate.Before(q.IssueDate) {
		return httpx.Validationf("expiry date precedes issue date")
	}
	return nil
}

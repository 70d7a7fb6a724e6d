package suppliers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/haocai-admin/haocai-admin/internal/httpx"
	"github.com/haocai-admin/haocai-admin/internal/shared"
)

func (r *memoryRepo) ListQualifications(ctx context.Context, filters QualificationFilters) ([]Qualification, int64, error) {
	var out []Qualification
	for _, q := range r.quals {
		if filters.SupplierID != 0 && q.SupplierID != filters.SupplierID {
			continue
		}
		if filters.Type != "" && q.Type != filters.Type {
			continue
		}
		if filters.Status != nil && q.Status != *filters.Status {
			continue
		}
		out = append(out, q)
	}
	return out, int64(len(out)), nil
}

func (r *memoryRepo) GetQualification(ctx context.Context, id int64) (Qualification, error) {
	if q, ok := r.quals[id]; ok {
		return q, nil
	}
	return Qualification{}, httpx.ErrNotFound
}

func (r *memoryRepo) QualificationsForSupplier(ctx context.Context, supplierID int64) ([]Qualification, error) {
	var out []Qualification
	for _, q := range r.quals {
		if q.SupplierID == supplierID {
			out = append(out, q)
		}
	}
	return out, nil
}

func (r *memoryRepo) QualificationTypeInUse(ctx context.Context, supplierID int64, qualType string, excludeID int64) (bool, error) {
	for _, q := range r.quals {
		if q.SupplierID == supplierID && q.Type == qualType && q.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (r *memoryRepo) CreateQualification(ctx context.Context, q Qualification) (Qualification, error) {
	r.nextQualID++
	q.ID = r.nextQualID
	r.quals[q.ID] = q
	return q, nil
}

func (r *memoryRepo) UpdateQualification(ctx context.Context, q Qualification) error {
	if _, ok := r.quals[q.ID]; !ok {
		return httpx.ErrNotFound
	}
	r.quals[q.ID] = q
	return nil
}

func (r *memoryRepo) DeleteQualification(ctx context.Context, id int64) error {
	if _, ok := r.quals[id]; !ok {
		return httpx.ErrNotFound
	}
	delete(r.quals, id)
	return nil
}

func (r *memoryRepo) DeleteQualificationsBatch(ctx context.Context, ids []int64) (int64, error) {
	var count int64
	for _, id := range ids {
		if _, ok := r.quals[id]; ok {
			delete(r.quals, id)
			count++
		}
	}
	return count, nil
}

func (r *memoryRepo) ExpiringQualifications(ctx context.Context, from, until time.Time) ([]Qualification, error) {
	var out []Qualification
	for _, q := range r.quals {
		if q.Status != QualificationValid || q.ExpiryDate.IsZero() {
			continue
		}
		if q.ExpiryDate.After(from) && !q.ExpiryDate.After(until) {
			out = append(out, q)
		}
	}
	return out, nil
}

func (r *memoryRepo) ExpireOverdueQualifications(ctx context.Context, asOf time.Time) (int64, error) {
	var count int64
	for id, q := range r.quals {
		if q.Status == QualificationValid && !q.ExpiryDate.IsZero() && q.ExpiryDate.Before(asOf) {
			q.Status = QualificationExpired
			r.quals[id] = q
			count++
		}
	}
	return count, nil
}

func daysFromNow(days int) time.Time {
	return today().AddDate(0, 0, days)
}

func TestCreateQualificationRejectsDuplicateType(t *testing.T) {
	repo := newMemoryRepo(Supplier{ID: 1, Name: "晨光文具", Status: shared.StatusEnabled})
	repo.quals[1] = Qualification{ID: 1, SupplierID: 1, Type: "营业执照", Name: "晨光营业执照", Status: QualificationValid}
	repo.nextQualID = 1
	svc := NewService(repo, repo)

	_, err := svc.CreateQualification(context.Background(), Qualification{
		SupplierID: 1, Type: "营业执照", Name: "重复的执照",
	})
	require.ErrorIs(t, err, httpx.ErrConflict)
}

func TestCreateQualificationRequiresExistingSupplier(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, repo)

	_, err := svc.CreateQualification(context.Background(), Qualification{
		SupplierID: 99, Type: "营业执照", Name: "执照",
	})
	require.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestCreateQualificationPastExpiryArrivesExpired(t *testing.T) {
	repo := newMemoryRepo(Supplier{ID: 1, Name: "晨光文具", Status: shared.StatusEnabled})
	svc := NewService(repo, repo)

	created, err := svc.CreateQualification(context.Background(), Qualification{
		SupplierID: 1, Type: "质量体系认证", Name: "ISO9001",
		IssueDate: daysFromNow(-400), ExpiryDate: daysFromNow(-5),
	})
	require.NoError(t, err)
	require.Equal(t, QualificationExpired, created.Status)
	require.False(t, created.ExpiringSoon)
}

func TestCreateQualificationRejectsExpiryBeforeIssue(t *testing.T) {
	repo := newMemoryRepo(Supplier{ID: 1, Name: "晨光文具", Status: shared.StatusEnabled})
	svc := NewService(repo, repo)

	_, err := svc.CreateQualification(context.Background(), Qualification{
		SupplierID: 1, Type: "营业执照", Name: "执照",
		IssueDate: daysFromNow(10), ExpiryDate: daysFromNow(-10),
	})
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestUpdateQualificationRejectsTypeTakenBySibling(t *testing.T) {
	repo := newMemoryRepo(Supplier{ID: 1, Name: "晨光文具", Status: shared.StatusEnabled})
	repo.quals[1] = Qualification{ID: 1, SupplierID: 1, Type: "营业执照", Name: "执照", Status: QualificationValid}
	repo.quals[2] = Qualification{ID: 2, SupplierID: 1, Type: "质量体系认证", Name: "ISO9001", Status: QualificationValid}
	repo.nextQualID = 2
	svc := NewService(repo, repo)

	err := svc.UpdateQualification(context.Background(), Qualification{
		ID: 2, SupplierID: 1, Type: "营业执照", Name: "ISO9001",
	})
	require.ErrorIs(t, err, httpx.ErrConflict)
}

func TestQualificationsInsideWarningWindowAreFlagged(t *testing.T) {
	repo := newMemoryRepo(Supplier{ID: 1, Name: "晨光文具", Status: shared.StatusEnabled})
	repo.quals[1] = Qualification{ID: 1, SupplierID: 1, Type: "营业执照", Name: "执照",
		Status: QualificationValid, ExpiryDate: daysFromNow(10)}
	repo.quals[2] = Qualification{ID: 2, SupplierID: 1, Type: "质量体系认证", Name: "ISO9001",
		Status: QualificationValid, ExpiryDate: daysFromNow(90)}
	svc := NewService(repo, repo)

	expiring, err := svc.ExpiringQualifications(context.Background())
	require.NoError(t, err)
	require.Len(t, expiring, 1)
	require.Equal(t, "营业执照", expiring[0].Type)
	require.True(t, expiring[0].ExpiringSoon)

	quals, err := svc.QualificationsForSupplier(context.Background(), 1)
	require.NoError(t, err)
	for _, q := range quals {
		if q.ID == 2 {
			require.False(t, q.ExpiringSoon)
		}
	}
}

func TestExpireOverdueQualifications(t *testing.T) {
	repo := newMemoryRepo(Supplier{ID: 1, Name: "晨光文具", Status: shared.StatusEnabled})
	repo.quals[1] = Qualification{ID: 1, SupplierID: 1, Type: "营业执照", Name: "执照",
		Status: QualificationValid, ExpiryDate: daysFromNow(-1)}
	repo.quals[2] = Qualification{ID: 2, SupplierID: 1, Type: "质量体系认证", Name: "ISO9001",
		Status: QualificationValid, ExpiryDate: daysFromNow(30)}
	svc := NewService(repo, repo)

	count, err := svc.ExpireOverdueQualifications(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 1, count)
	require.Equal(t, QualificationExpired, repo.quals[1].Status)
	require.Equal(t, QualificationValid, repo.quals[2].Status)
}

func TestDeleteQualificationsBatchRequiresIDs(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, repo)

	_, err := svc.DeleteQualificationsBatch(context.Background(), nil)
	require.ErrorIs(t, err, httpx.ErrValidation)
}

package materials

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/haocai-admin/haocai-admin/internal/httpx"
	"github.com/haocai-admin/haocai-admin/internal/shared"
)

type memoryRepo struct {
	materials map[int64]Material
	nextID    int64
}

func newMemoryRepo(seed ...Material) *memoryRepo {
	r := &memoryRepo{materials: make(map[int64]Material)}
	for _, m := range seed {
		r.materials[m.ID] = m
		if m.ID > r.nextID {
			r.nextID = m.ID
		}
	}
	return r
}

func (r *memoryRepo) List(ctx context.Context, filters ListFilters) ([]Material, int64, error) {
	out := make([]Material, 0, len(r.materials))
	for _, m := range r.materials {
		if filters.CategoryID != 0 && m.CategoryID != filters.CategoryID {
			continue
		}
		out = append(out, m)
	}
	return out, int64(len(out)), nil
}

func (r *memoryRepo) Get(ctx context.Context, id int64) (Material, error) {
	if m, ok := r.materials[id]; ok {
		return m, nil
	}
	return Material{}, httpx.ErrNotFound
}

func (r *memoryRepo) CodeInUse(ctx context.Context, code string, excludeID int64) (bool, error) {
	for _, m := range r.materials {
		if m.Code == code && m.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (r *memoryRepo) Create(ctx context.Context, m Material) (Material, error) {
	r.nextID++
	m.ID = r.nextID
	r.materials[m.ID] = m
	return m, nil
}

func (r *memoryRepo) Update(ctx context.Context, m Material) error {
	if _, ok := r.materials[m.ID]; !ok {
		return httpx.ErrNotFound
	}
	r.materials[m.ID] = m
	return nil
}

func (r *memoryRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := r.materials[id]; !ok {
		return httpx.ErrNotFound
	}
	delete(r.materials, id)
	return nil
}

type stubCategories map[int64]bool

func (s stubCategories) Exists(ctx context.Context, id int64) (bool, error) {
	return s[id], nil
}

type stubStock map[int64]bool

func (s stubStock) HasStock(ctx context.Context, materialID int64) (bool, error) {
	return s[materialID], nil
}

func newService(repo *memoryRepo, stock stubStock) *Service {
	return NewService(repo, stubCategories{1: true, 2: true}, stock)
}

func paper() Material {
	return Material{Name: "A4打印纸", Code: "MAT-001", CategoryID: 1, Unit: "包", Price: 25.5, Status: shared.StatusEnabled}
}

func TestCreateValidates(t *testing.T) {
	svc := newService(newMemoryRepo(), nil)

	m := paper()
	m.Name = ""
	_, err := svc.Create(context.Background(), m)
	require.ErrorIs(t, err, httpx.ErrValidation)

	m = paper()
	m.Price = -1
	_, err = svc.Create(context.Background(), m)
	require.ErrorIs(t, err, httpx.ErrValidation)

	m = paper()
	m.CategoryID = 404
	_, err = svc.Create(context.Background(), m)
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestCreateRejectsDuplicateCode(t *testing.T) {
	existing := paper()
	existing.ID = 1
	svc := newService(newMemoryRepo(existing), nil)

	m := paper()
	m.Name = "B5打印纸"
	_, err := svc.Create(context.Background(), m)
	require.ErrorIs(t, err, httpx.ErrConflict)
}

func TestUpdateKeepsOwnCode(t *testing.T) {
	existing := paper()
	existing.ID = 1
	repo := newMemoryRepo(existing)
	svc := newService(repo, nil)

	m := paper()
	m.ID = 1
	m.Price = 23
	require.NoError(t, svc.Update(context.Background(), m))
	require.Equal(t, float64(23), repo.materials[1].Price)
}

func TestDeleteRejectsMaterialWithStock(t *testing.T) {
	existing := paper()
	existing.ID = 1
	svc := newService(newMemoryRepo(existing), stubStock{1: true})

	err := svc.Delete(context.Background(), 1)
	require.ErrorIs(t, err, httpx.ErrConflict)
}

func TestDeleteRemovesStocklessMaterial(t *testing.T) {
	existing := paper()
	existing.ID = 1
	repo := newMemoryRepo(existing)
	svc := newService(repo, stubStock{})

	require.NoError(t, svc.Delete(context.Background(), 1))
	require.Empty(t, repo.materials)
}

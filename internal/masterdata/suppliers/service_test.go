package suppliers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/haocai-admin/haocai-admin/internal/httpx"
	"github.com/haocai-admin/haocai-admin/internal/shared"
)

type memoryRepo struct {
	suppliers  map[int64]Supplier
	materials  map[int64]int
	quals      map[int64]Qualification
	nextID     int64
	nextQualID int64
}

func newMemoryRepo(seed ...Supplier) *memoryRepo {
	r := &memoryRepo{
		suppliers: make(map[int64]Supplier),
		materials: make(map[int64]int),
		quals:     make(map[int64]Qualification),
	}
	for _, s := range seed {
		r.suppliers[s.ID] = s
		if s.ID > r.nextID {
			r.nextID = s.ID
		}
	}
	return r
}

func (r *memoryRepo) List(ctx context.Context, filters ListFilters) ([]Supplier, int64, error) {
	out := make([]Supplier, 0, len(r.suppliers))
	for _, s := range r.suppliers {
		out = append(out, s)
	}
	return out, int64(len(out)), nil
}

func (r *memoryRepo) Get(ctx context.Context, id int64) (Supplier, error) {
	if s, ok := r.suppliers[id]; ok {
		return s, nil
	}
	return Supplier{}, httpx.ErrNotFound
}

func (r *memoryRepo) NameInUse(ctx context.Context, name string, excludeID int64) (bool, error) {
	for _, s := range r.suppliers {
		if s.Name == name && s.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (r *memoryRepo) MaterialCount(ctx context.Context, id int64) (int, error) {
	return r.materials[id], nil
}

func (r *memoryRepo) Create(ctx context.Context, s Supplier) (Supplier, error) {
	r.nextID++
	s.ID = r.nextID
	r.suppliers[s.ID] = s
	return s, nil
}

func (r *memoryRepo) Update(ctx context.Context, s Supplier) error {
	if _, ok := r.suppliers[s.ID]; !ok {
		return httpx.ErrNotFound
	}
	r.suppliers[s.ID] = s
	return nil
}

func (r *memoryRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := r.suppliers[id]; !ok {
		return httpx.ErrNotFound
	}
	delete(r.suppliers, id)
	return nil
}

func TestCreateRejectsDuplicateName(t *testing.T) {
	repo := newMemoryRepo(Supplier{ID: 1, Name: "晨光文具", Status: shared.StatusEnabled})
	svc := NewService(repo, repo)

	_, err := svc.Create(context.Background(), Supplier{Name: "晨光文具"})
	require.ErrorIs(t, err, httpx.ErrConflict)
}

func TestCreateRequiresName(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, repo)

	_, err := svc.Create(context.Background(), Supplier{Name: "   "})
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestDeleteRejectsReferencedSupplier(t *testing.T) {
	repo := newMemoryRepo(Supplier{ID: 1, Name: "晨光文具", Status: shared.StatusEnabled})
	repo.materials[1] = 4
	svc := NewService(repo, repo)

	err := svc.Delete(context.Background(), 1)
	require.ErrorIs(t, err, httpx.ErrConflict)
	require.Contains(t, err.Error(), "4 materials")
}

func TestDeleteRemovesUnreferencedSupplier(t *testing.T) {
	repo := newMemoryRepo(Supplier{ID: 2, Name: "得力办公", Status: shared.StatusEnabled})
	svc := NewService(repo, repo)

	require.NoError(t, svc.Delete(context.Background(), 2))
	require.Empty(t, repo.suppliers)
}

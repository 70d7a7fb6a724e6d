package departments

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/haocai-admin/haocai-admin/internal/httpx"
	"github.com/haocai-admin/haocai-admin/internal/shared"
)

type memoryRepo struct {
	depts  map[int64]Department
	users  map[int64]int
	nextID int64
}

func newMemoryRepo(seed ...Department) *memoryRepo {
	r := &memoryRepo{depts: make(map[int64]Department), users: make(map[int64]int)}
	for _, d := range seed {
		r.depts[d.ID] = d
		if d.ID > r.nextID {
			r.nextID = d.ID
		}
	}
	return r
}

func (r *memoryRepo) ListAll(ctx context.Context) ([]Department, error) {
	out := make([]Department, 0, len(r.depts))
	for _, d := range r.depts {
		out = append(out, d)
	}
	return out, nil
}

func (r *memoryRepo) Get(ctx context.Context, id int64) (Department, error) {
	if d, ok := r.depts[id]; ok {
		return d, nil
	}
	return Department{}, httpx.ErrNotFound
}

func (r *memoryRepo) ChildCount(ctx context.Context, id int64) (int, error) {
	count := 0
	for _, d := range r.depts {
		if d.ParentID == id {
			count++
		}
	}
	return count, nil
}

func (r *memoryRepo) UserCount(ctx context.Context, id int64) (int, error) {
	return r.users[id], nil
}

func (r *memoryRepo) Create(ctx context.Context, d Department) (Department, error) {
	r.nextID++
	d.ID = r.nextID
	r.depts[d.ID] = d
	return d, nil
}

func (r *memoryRepo) Update(ctx context.Context, d Department) error {
	if _, ok := r.depts[d.ID]; !ok {
		return httpx.ErrNotFound
	}
	r.depts[d.ID] = d
	return nil
}

func (r *memoryRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := r.depts[id]; !ok {
		return httpx.ErrNotFound
	}
	delete(r.depts, id)
	return nil
}

func seedTree() []Department {
	return []Department{
		{ID: 1, Name: "总公司", SortOrder: 1, Status: shared.StatusEnabled},
		{ID: 2, Name: "研发部", ParentID: 1, SortOrder: 2, Status: shared.StatusEnabled},
		{ID: 3, Name: "仓储部", ParentID: 1, SortOrder: 1, Status: shared.StatusEnabled},
		{ID: 4, Name: "硬件组", ParentID: 2, SortOrder: 1, Status: shared.StatusEnabled},
	}
}

func TestTreeNestsAndOrdersBySortOrder(t *testing.T) {
	svc := NewService(newMemoryRepo(seedTree()...))

	tree, err := svc.Tree(context.Background())
	require.NoError(t, err)
	require.Len(t, tree, 1)
	require.Equal(t, "总公司", tree[0].Name)
	require.Len(t, tree[0].Children, 2)
	require.Equal(t, "仓储部", tree[0].Children[0].Name)
	require.Equal(t, "研发部", tree[0].Children[1].Name)
	require.Len(t, tree[0].Children[1].Children, 1)
}

func TestTreePromotesOrphans(t *testing.T) {
	svc := NewService(newMemoryRepo(Department{ID: 9, Name: "孤儿部门", ParentID: 404, Status: shared.StatusEnabled}))

	tree, err := svc.Tree(context.Background())
	require.NoError(t, err)
	require.Len(t, tree, 1)
	require.Equal(t, int64(9), tree[0].ID)
}

func TestCreateRequiresExistingParent(t *testing.T) {
	svc := NewService(newMemoryRepo(seedTree()...))

	_, err := svc.Create(context.Background(), Department{Name: "新部门", ParentID: 404})
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestUpdateRejectsReparentUnderDescendant(t *testing.T) {
	svc := NewService(newMemoryRepo(seedTree()...))

	err := svc.Update(context.Background(), Department{ID: 2, Name: "研发部", ParentID: 4})
	require.ErrorIs(t, err, httpx.ErrValidation)

	err = svc.Update(context.Background(), Department{ID: 2, Name: "研发部", ParentID: 2})
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestDeleteRejectsNonLeaf(t *testing.T) {
	svc := NewService(newMemoryRepo(seedTree()...))

	err := svc.Delete(context.Background(), 1)
	require.ErrorIs(t, err, httpx.ErrConflict)
}

func TestDeleteRejectsDepartmentWithUsers(t *testing.T) {
	repo := newMemoryRepo(seedTree()...)
	repo.users[4] = 2
	svc := NewService(repo)

	err := svc.Delete(context.Background(), 4)
	require.ErrorIs(t, err, httpx.ErrConflict)
	require.Contains(t, err.Error(), "2 users")
}

func TestDeleteRemovesEmptyLeaf(t *testing.T) {
	svc := NewService(newMemoryRepo(seedTree()...))

	require.NoError(t, svc.Delete(context.Background(), 3))
}

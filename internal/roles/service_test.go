package roles

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/haocai-admin/haocai-admin/internal/httpx"
	"github.com/haocai-admin/haocai-admin/internal/shared"
)

type memoryRepo struct {
	roles   map[int64]Role
	holders map[int64]int
	nextID  int64
}

func newMemoryRepo(seed ...Role) *memoryRepo {
	r := &memoryRepo{roles: make(map[int64]Role), holders: make(map[int64]int)}
	for _, role := range seed {
		r.roles[role.ID] = role
		if role.ID > r.nextID {
			r.nextID = role.ID
		}
	}
	return r
}

func (r *memoryRepo) List(ctx context.Context, filters ListFilters) ([]Role, int64, error) {
	out := make([]Role, 0, len(r.roles))
	for _, role := range r.roles {
		if filters.Status != nil && role.Status != *filters.Status {
			continue
		}
		out = append(out, role)
	}
	return out, int64(len(out)), nil
}

func (r *memoryRepo) Get(ctx context.Context, id int64) (Role, error) {
	if role, ok := r.roles[id]; ok {
		return role, nil
	}
	return Role{}, httpx.ErrNotFound
}

func (r *memoryRepo) CodeInUse(ctx context.Context, code string, excludeID int64) (bool, error) {
	for _, role := range r.roles {
		if role.Code == code && role.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (r *memoryRepo) UserCount(ctx context.Context, roleID int64) (int, error) {
	return r.holders[roleID], nil
}

func (r *memoryRepo) Create(ctx context.Context, role Role) (Role, error) {
	r.nextID++
	role.ID = r.nextID
	r.roles[role.ID] = role
	return role, nil
}

func (r *memoryRepo) Update(ctx context.Context, role Role) error {
	if _, ok := r.roles[role.ID]; !ok {
		return httpx.ErrNotFound
	}
	r.roles[role.ID] = role
	return nil
}

func (r *memoryRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := r.roles[id]; !ok {
		return httpx.ErrNotFound
	}
	delete(r.roles, id)
	return nil
}

func TestCreateRejectsDuplicateCode(t *testing.T) {
	svc := NewService(newMemoryRepo(Role{ID: 1, Name: "管理员", Code: "admin", Status: shared.StatusEnabled}))

	_, err := svc.Create(context.Background(), Role{Name: "超级管理员", Code: "admin"})
	require.ErrorIs(t, err, httpx.ErrConflict)
}

func TestCreateRequiresNameAndCode(t *testing.T) {
	svc := NewService(newMemoryRepo())

	_, err := svc.Create(context.Background(), Role{Name: "  ", Code: "ops"})
	require.ErrorIs(t, err, httpx.ErrValidation)

	_, err = svc.Create(context.Background(), Role{Name: "运维", Code: ""})
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestUpdateAllowsKeepingOwnCode(t *testing.T) {
	repo := newMemoryRepo(Role{ID: 1, Name: "管理员", Code: "admin", Status: shared.StatusEnabled})
	svc := NewService(repo)

	err := svc.Update(context.Background(), Role{ID: 1, Name: "系统管理员", Code: "admin", Status: shared.StatusEnabled})
	require.NoError(t, err)
	require.Equal(t, "系统管理员", repo.roles[1].Name)
}

func TestDeleteRejectsRoleWithHolders(t *testing.T) {
	repo := newMemoryRepo(Role{ID: 1, Name: "管理员", Code: "admin", Status: shared.StatusEnabled})
	repo.holders[1] = 3
	svc := NewService(repo)

	err := svc.Delete(context.Background(), 1)
	require.ErrorIs(t, err, httpx.ErrConflict)
	require.Contains(t, err.Error(), "3 users")
}

func TestDeleteRemovesUnassignedRole(t *testing.T) {
	repo := newMemoryRepo(Role{ID: 2, Name: "普通用户", Code: "user", Status: shared.StatusEnabled})
	svc := NewService(repo)

	require.NoError(t, svc.Delete(context.Background(), 2))
	_, err := svc.Get(context.Background(), 2)
	require.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestListCollatesByChineseName(t *testing.T) {
	repo := newMemoryRepo(
		Role{ID: 1, Name: "管理员", Code: "admin", Status: shared.StatusEnabled},
		Role{ID: 2, Name: "仓库员", Code: "stock", Status: shared.StatusEnabled},
		Role{ID: 3, Name: "采购员", Code: "buyer", Status: shared.StatusEnabled},
	)
	svc := NewService(repo)

	page, err := svc.List(context.Background(), ListFilters{Current: 1, Size: 10})
	require.NoError(t, err)
	require.Len(t, page.Records, 3)
	// Pinyin order: 仓库员 (cang), 采购员 (cai) ... collation decides, just
	// assert it is deterministic and total count is right.
	require.Equal(t, int64(3), page.Total)
	again, err := svc.List(context.Background(), ListFilters{Current: 1, Size: 10})
	require.NoError(t, err)
	require.Equal(t, page.Records, again.Records)
}

package users

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/haocai-admin/haocai-admin/internal/auth"
	"github.com/haocai-admin/haocai-admin/internal/httpx"
	"github.com/haocai-admin/haocai-admin/internal/rbac"
)

type memoryRepo struct {
	users  map[int64]User
	roles  map[int64][]int64
	nextID int64
}

func newMemoryRepo(seed ...User) *memoryRepo {
	r := &memoryRepo{users: make(map[int64]User), roles: make(map[int64][]int64)}
	for _, u := range seed {
		r.users[u.ID] = u
		if u.ID > r.nextID {
			r.nextID = u.ID
		}
	}
	return r
}

func (r *memoryRepo) List(ctx context.Context, filters ListFilters) ([]User, int64, error) {
	out := make([]User, 0, len(r.users))
	for _, u := range r.users {
		if filters.Status != nil && u.Status != *filters.Status {
			continue
		}
		out = append(out, u)
	}
	return out, int64(len(out)), nil
}

func (r *memoryRepo) Get(ctx context.Context, id int64) (User, error) {
	if u, ok := r.users[id]; ok {
		return u, nil
	}
	return User{}, httpx.ErrNotFound
}

func (r *memoryRepo) UsernameInUse(ctx context.Context, username string, excludeID int64) (bool, error) {
	for _, u := range r.users {
		if u.Username == username && u.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (r *memoryRepo) Create(ctx context.Context, u User) (User, error) {
	r.nextID++
	u.ID = r.nextID
	r.users[u.ID] = u
	return u, nil
}

func (r *memoryRepo) Update(ctx context.Context, u User) error {
	existing, ok := r.users[u.ID]
	if !ok {
		return httpx.ErrNotFound
	}
	existing.Name = u.Name
	existing.Email = u.Email
	existing.Phone = u.Phone
	existing.DepartmentID = u.DepartmentID
	r.users[u.ID] = existing
	return nil
}

func (r *memoryRepo) UpdateStatus(ctx context.Context, id int64, status int) error {
	u, ok := r.users[id]
	if !ok {
		return httpx.ErrNotFound
	}
	u.Status = status
	r.users[id] = u
	return nil
}

func (r *memoryRepo) UpdatePassword(ctx context.Context, id int64, hash string) error {
	u, ok := r.users[id]
	if !ok {
		return httpx.ErrNotFound
	}
	u.PasswordHash = hash
	r.users[id] = u
	return nil
}

func (r *memoryRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := r.users[id]; !ok {
		return httpx.ErrNotFound
	}
	delete(r.users, id)
	delete(r.roles, id)
	return nil
}

func (r *memoryRepo) UpdateStatusBatch(ctx context.Context, ids []int64, status int) error {
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			u.Status = status
			r.users[id] = u
		}
	}
	return nil
}

func (r *memoryRepo) DeleteBatch(ctx context.Context, ids []int64) error {
	for _, id := range ids {
		delete(r.users, id)
		delete(r.roles, id)
	}
	return nil
}

func (r *memoryRepo) ReplaceUserRoles(ctx context.Context, userID int64, roleIDs []int64) error {
	r.roles[userID] = roleIDs
	return nil
}

func (r *memoryRepo) AddUserRoles(ctx context.Context, userID int64, roleIDs []int64) error {
	have := make(map[int64]struct{})
	for _, id := range r.roles[userID] {
		have[id] = struct{}{}
	}
	for _, id := range roleIDs {
		if _, ok := have[id]; !ok {
			r.roles[userID] = append(r.roles[userID], id)
		}
	}
	return nil
}

func (r *memoryRepo) RemoveUserRole(ctx context.Context, userID, roleID int64) error {
	for i, id := range r.roles[userID] {
		if id == roleID {
			r.roles[userID] = append(r.roles[userID][:i], r.roles[userID][i+1:]...)
			return nil
		}
	}
	return httpx.ErrNotFound
}

type stubRoleLookup struct{}

func (stubRoleLookup) RolesForUser(ctx context.Context, userID int64) ([]rbac.Role, error) {
	return nil, nil
}

func newService(repo *memoryRepo) *Service {
	return NewService(repo, stubRoleLookup{})
}

func TestCreateAssignsDefaultPassword(t *testing.T) {
	repo := newMemoryRepo()
	svc := newService(repo)

	created, err := svc.Create(context.Background(), User{Username: "zhangsan", Name: "张三"})
	require.NoError(t, err)
	require.Equal(t, auth.UserStatusNormal, created.Status)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.PasswordHash), []byte(DefaultPassword)))
}

func TestCreateRejectsDuplicateUsername(t *testing.T) {
	repo := newMemoryRepo(User{ID: 1, Username: "admin", Name: "管理员"})
	svc := newService(repo)

	_, err := svc.Create(context.Background(), User{Username: "admin", Name: "另一个管理员"})
	require.ErrorIs(t, err, httpx.ErrConflict)
}

func TestSetStatusRejectsSelf(t *testing.T) {
	repo := newMemoryRepo(User{ID: 1, Username: "admin", Name: "管理员"})
	svc := newService(repo)

	err := svc.SetStatus(context.Background(), 1, 1, auth.UserStatusDisabled)
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestSetStatusRejectsUnknownValue(t *testing.T) {
	repo := newMemoryRepo(User{ID: 2, Username: "zhangsan", Name: "张三"})
	svc := newService(repo)

	err := svc.SetStatus(context.Background(), 1, 2, 7)
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestSetStatusDisablesOtherAccount(t *testing.T) {
	repo := newMemoryRepo(User{ID: 2, Username: "zhangsan", Name: "张三"})
	svc := newService(repo)

	require.NoError(t, svc.SetStatus(context.Background(), 1, 2, auth.UserStatusDisabled))
	require.Equal(t, auth.UserStatusDisabled, repo.users[2].Status)
}

func TestDeleteRejectsSelf(t *testing.T) {
	repo := newMemoryRepo(User{ID: 1, Username: "admin", Name: "管理员"})
	svc := newService(repo)

	err := svc.Delete(context.Background(), 1, 1)
	require.ErrorIs(t, err, httpx.ErrValidation)
	_, getErr := repo.Get(context.Background(), 1)
	require.NoError(t, getErr)
}

func TestChangePasswordVerifiesOld(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("oldpass"), bcrypt.MinCost)
	require.NoError(t, err)
	repo := newMemoryRepo(User{ID: 3, Username: "lisi", Name: "李四", PasswordHash: string(hash)})
	svc := newService(repo)

	err = svc.ChangePassword(context.Background(), 3, "wrong", "newpass123")
	require.ErrorIs(t, err, httpx.ErrValidation)

	err = svc.ChangePassword(context.Background(), 3, "oldpass", "newpass123")
	require.NoError(t, err)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(repo.users[3].PasswordHash), []byte("newpass123")))
}

func TestResetPasswordRestoresDefault(t *testing.T) {
	repo := newMemoryRepo(User{ID: 4, Username: "wangwu", Name: "王五", PasswordHash: "x"})
	svc := newService(repo)

	require.NoError(t, svc.ResetPassword(context.Background(), 4))
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(repo.users[4].PasswordHash), []byte(DefaultPassword)))
}

func TestAssignRolesReplacesSet(t *testing.T) {
	repo := newMemoryRepo(User{ID: 5, Username: "zhaoliu", Name: "赵六"})
	repo.roles[5] = []int64{1, 2}
	svc := newService(repo)

	require.NoError(t, svc.AssignRoles(context.Background(), 5, []int64{3}))
	require.Equal(t, []int64{3}, repo.roles[5])

	err := svc.AssignRoles(context.Background(), 99, []int64{1})
	require.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestAddRolesKeepsExisting(t *testing.T) {
	repo := newMemoryRepo(User{ID: 6, Username: "sunqi", Name: "孙七"})
	repo.roles[6] = []int64{1}
	svc := newService(repo)

	require.NoError(t, svc.AddRoles(context.Background(), 6, []int64{1, 2}))
	require.ElementsMatch(t, []int64{1, 2}, repo.roles[6])

	err := svc.AddRoles(context.Background(), 6, nil)
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestRemoveRoleRevokesOne(t *testing.T) {
	repo := newMemoryRepo(User{ID: 7, Username: "zhouba", Name: "周八"})
	repo.roles[7] = []int64{1, 2}
	svc := newService(repo)

	require.NoError(t, svc.RemoveRole(context.Background(), 7, 1))
	require.Equal(t, []int64{2}, repo.roles[7])

	err := svc.RemoveRole(context.Background(), 7, 99)
	require.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestSetStatusBatchRejectsSelfInBatch(t *testing.T) {
	repo := newMemoryRepo(
		User{ID: 1, Username: "admin", Name: "管理员"},
		User{ID: 2, Username: "zhangsan", Name: "张三"},
	)
	svc := newService(repo)

	err := svc.SetStatusBatch(context.Background(), 1, []int64{1, 2}, auth.UserStatusDisabled)
	require.ErrorIs(t, err, httpx.ErrValidation)
	require.Equal(t, auth.UserStatusNormal, repo.users[2].Status)

	require.NoError(t, svc.SetStatusBatch(context.Background(), 1, []int64{2}, auth.UserStatusDisabled))
	require.Equal(t, auth.UserStatusDisabled, repo.users[2].Status)
}

func TestDeleteBatchRejectsSelfInBatch(t *testing.T) {
	repo := newMemoryRepo(
		User{ID: 1, Username: "admin", Name: "管理员"},
		User{ID: 2, Username: "zhangsan", Name: "张三"},
		User{ID: 3, Username: "lisi", Name: "李四"},
	)
	svc := newService(repo)

	err := svc.DeleteBatch(context.Background(), 1, []int64{1, 2})
	require.ErrorIs(t, err, httpx.ErrValidation)
	require.Len(t, repo.users, 3)

	require.NoError(t, svc.DeleteBatch(context.Background(), 1, []int64{2, 3}))
	require.Len(t, repo.users, 1)
}

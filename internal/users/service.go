package users

import (
	"context"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/haocai-admin/haocai-admin/internal/auth"
	"github.com/haocai-admin/haocai-admin/internal/httpx"
	"github.com/haocai-admin/haocai-admin/internal/rbac"
	"github.com/haocai-admin/haocai-admin/internal/shared"
)

// DefaultPassword is assigned to new accounts and on password reset.
// Users are expected to change it on first login.
const DefaultPassword = "123456"

// RepositoryPort defines data access methods for user accounts.
type RepositoryPort interface {
	List(ctx context.Context, filters ListFilters) ([]User, int64, error)
	Get(ctx context.Context, id int64) (User, error)
	UsernameInUse(ctx context.Context, username string, excludeID int64) (bool, error)
	Create(ctx context.Context, u User) (User, error)
	Update(ctx context.Context, u User) error
	UpdateStatus(ctx context.Context, id int64, status int) error
	UpdatePassword(ctx context.Context, id int64, hash string) error
	UpdateStatusBatch(ctx context.Context, ids []int64, status int) error
	Delete(ctx context.Context, id int64) error
	DeleteBatch(ctx context.Context, ids []int64) error
	ReplaceUserRoles(ctx context.Context, userID int64, roleIDs []int64) error
	AddUserRoles(ctx context.Context, userID int64, roleIDs []int64) error
	RemoveUserRole(ctx context.Context, userID, roleID int64) error
}

// RoleLookup resolves the roles a user holds.
type RoleLookup interface {
	RolesForUser(ctx context.Context, userID int64) ([]rbac.Role, error)
}

// Service handles user account business logic.
type Service struct {
	repo  RepositoryPort
	roles RoleLookup
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort, roles RoleLookup) *Service {
	return &Service{repo: repo, roles: roles}
}

// List returns a page of users. Password hashes never leave the service
// through JSON, the field is tagged out, so records are passed as-is.
func (s *Service) List(ctx context.Context, filters ListFilters) (shared.Page[User], error) {
	records, total, err := s.repo.List(ctx, filters)
	if err != nil {
		return shared.Page[User]{}, err
	}
	return shared.NewPage(records, total, filters.Current, filters.Size), nil
}

// Get fetches a user with their roles attached.
func (s *Service) Get(ctx context.Context, id int64) (User, error) {
	u, err := s.repo.Get(ctx, id)
	if err != nil {
		return User{}, err
	}
	u.Roles, err = s.roles.RolesForUser(ctx, id)
	if err != nil {
		return User{}, err
	}
	return u, nil
}

// Create validates and inserts a user with the default password.
func (s *Service) Create(ctx context.Context, u User) (User, error) {
	if err := validate(&u); err != nil {
		return User{}, err
	}
	if inUse, err := s.repo.UsernameInUse(ctx, u.Username, 0); err != nil {
		return User{}, err
	} else if inUse {
		return User{}, httpx.Conflictf("username %q already exists", u.Username)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}
	u.PasswordHash = string(hash)
	u.Status = auth.UserStatusNormal
	return s.repo.Create(ctx, u)
}

// Update rewrites a user's profile fields.
func (s *Service) Update(ctx context.Context, u User) error {
	u.Name = strings.TrimSpace(u.Name)
	if u.Name == "" {
		return httpx.Validationf("user name is required")
	}
	return s.repo.Update(ctx, u)
}

// SetStatus flips an account between normal, disabled and locked. The
// acting user cannot change their own status, otherwise an admin could
// lock themselves out of the last working account.
func (s *Service) SetStatus(ctx context.Context, actorID, id int64, status int) error {
	switch status {
	case auth.UserStatusNormal, auth.UserStatusDisabled, auth.UserStatusLocked:
	default:
		return httpx.Validationf("unknown user status %d", status)
	}
	if actorID == id {
		return httpx.Validationf("cannot change your own account status")
	}
	return s.repo.UpdateStatus(ctx, id, status)
}

// SetStatusBatch applies one status to several accounts. The batch is
// rejected outright when it includes the acting user.
func (s *Service) SetStatusBatch(ctx context.Context, actorID int64, ids []int64, status int) error {
	switch status {
	case auth.UserStatusNormal, auth.UserStatusDisabled, auth.UserStatusLocked:
	default:
		return httpx.Validationf("unknown user status %d", status)
	}
	if len(ids) == 0 {
		return httpx.Validationf("at least one user id is required")
	}
	for _, id := range ids {
		if id == actorID {
			return httpx.Validationf("cannot change your own account status")
		}
	}
	return s.repo.UpdateStatusBatch(ctx, ids, status)
}

// ResetPassword restores the default password for an account.
func (s *Service) ResetPassword(ctx context.Context, id int64) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.repo.UpdatePassword(ctx, id, string(hash))
}

// ChangePassword verifies the old password and stores a new one.
func (s *Service) ChangePassword(ctx context.Context, id int64, oldPassword, newPassword string) error {
	if len(newPassword) < 6 {
		return httpx.Validationf("new password must be at least 6 characters")
	}
	u, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(oldPassword)) != nil {
		return httpx.Validationf("old password is incorrect")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.repo.UpdatePassword(ctx, id, string(hash))
}

// Delete soft-deletes an account. Self-deletion is rejected.
func (s *Service) Delete(ctx context.Context, actorID, id int64) error {
	if actorID == id {
		return httpx.Validationf("cannot delete your own account")
	}
	return s.repo.Delete(ctx, id)
}

// DeleteBatch soft-deletes several accounts at once with the same
// self-deletion guard as Delete.
func (s *Service) DeleteBatch(ctx context.Context, actorID int64, ids []int64) error {
	if len(ids) == 0 {
		return httpx.Validationf("at least one user id is required")
	}
	for _, id := range ids {
		if id == actorID {
			return httpx.Validationf("cannot delete your own account")
		}
	}
	return s.repo.DeleteBatch(ctx, ids)
}

// Roles lists the roles a user currently holds.
func (s *Service) Roles(ctx context.Context, userID int64) ([]rbac.Role, error) {
	if _, err := s.repo.Get(ctx, userID); err != nil {
		return nil, err
	}
	return s.roles.RolesForUser(ctx, userID)
}

// AssignRoles replaces a user's role set with the given IDs. The
// replacement is a full swap, not a merge.
func (s *Service) AssignRoles(ctx context.Context, userID int64, roleIDs []int64) error {
	if _, err := s.repo.Get(ctx, userID); err != nil {
		return err
	}
	return s.repo.ReplaceUserRoles(ctx, userID, roleIDs)
}

// AddRoles grants additional roles, keeping existing assignments.
func (s *Service) AddRoles(ctx context.Context, userID int64, roleIDs []int64) error {
	if len(roleIDs) == 0 {
		return httpx.Validationf("at least one role id is required")
	}
	if _, err := s.repo.Get(ctx, userID); err != nil {
		return err
	}
	return s.repo.AddUserRoles(ctx, userID, roleIDs)
}

// RemoveRole revokes a single role from a user.
func (s *Service) RemoveRole(ctx context.Context, userID, roleID int64) error {
	if _, err := s.repo.Get(ctx, userID); err != nil {
		return err
	}
	return s.repo.RemoveUserRole(ctx, userID, roleID)
}

func validate(u *User) error {
	u.Username = strings.TrimSpace(u.Username)
	u.Name = strings.TrimSpace(u.Name)
	if u.Username == "" {
		return httpx.Validationf("username is required")
	}
	if u.Name == "" {
		return httpx.Validationf("user name is required")
	}
	return nil
}

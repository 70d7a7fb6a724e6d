package rbac

import "context"

// RepositoryPort defines the role lookups the service needs.
type RepositoryPort interface {
	RolesForUser(ctx context.Context, userID int64) ([]Role, error)
	PermissionsForRole(ctx context.Context, roleID int64) ([]Permission, error)
	ReplaceRolePermissions(ctx context.Context, roleID int64, permissionIDs []int64) error
}

// Service orchestrates authorization lookups.
type Service struct {
	repo RepositoryPort
}

// NewService constructs a Service.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// RolesForUser returns the roles held by a user with permissions attached.
func (s *Service) RolesForUser(ctx context.Context, userID int64) ([]Role, error) {
	return s.repo.RolesForUser(ctx, userID)
}

// EffectivePermissions computes the flattened permission codes for a user.
func (s *Service) EffectivePermissions(ctx context.Context, userID int64) ([]string, error) {
	roles, err := s.repo.RolesForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return Resolve(roles), nil
}

// PermissionsForRole lists the permissions currently assigned to a role.
func (s *Service) PermissionsForRole(ctx context.Context, roleID int64) ([]Permission, error) {
	return s.repo.PermissionsForRole(ctx, roleID)
}

// AssignRolePermissions replaces a role's permission set with the given IDs.
// The replacement is atomic, never an incremental merge.
func (s *Service) AssignRolePermissions(ctx context.Context, roleID int64, permissionIDs []int64) error {
	return s.repo.ReplaceRolePermissions(ctx, roleID, permissionIDs)
}

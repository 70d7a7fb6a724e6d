package roles

import (
	"context"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/haocai-admin/haocai-admin/internal/httpx"
	"github.com/haocai-admin/haocai-admin/internal/shared"
)

// RepositoryPort defines data access methods for roles.
type RepositoryPort interface {
	List(ctx context.Context, filters ListFilters) ([]Role, int64, error)
	Get(ctx context.Context, id int64) (Role, error)
	CodeInUse(ctx context.Context, code string, excludeID int64) (bool, error)
	UserCount(ctx context.Context, roleID int64) (int, error)
	Create(ctx context.Context, role Role) (Role, error)
	Update(ctx context.Context, role Role) error
	Delete(ctx context.Context, id int64) error
}

// Service handles role business logic.
type Service struct {
	repo     RepositoryPort
	collator *collate.Collator
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo, collator: collate.New(language.Chinese)}
}

// List returns a page of roles collated by display name. Role names are
// Chinese in practice, so byte order would interleave scripts unpredictably.
func (s *Service) List(ctx context.Context, filters ListFilters) (shared.Page[Role], error) {
	records, total, err := s.repo.List(ctx, filters)
	if err != nil {
		return shared.Page[Role]{}, err
	}
	sort.SliceStable(records, func(i, j int) bool {
		return s.collator.CompareString(records[i].Name, records[j].Name) < 0
	})
	return shared.NewPage(records, total, filters.Current, filters.Size), nil
}

// Get fetches a role by ID.
func (s *Service) Get(ctx context.Context, id int64) (Role, error) {
	return s.repo.Get(ctx, id)
}

// Create validates and inserts a role.
func (s *Service) Create(ctx context.Context, role Role) (Role, error) {
	if err := validate(&role); err != nil {
		return Role{}, err
	}
	if inUse, err := s.repo.CodeInUse(ctx, role.Code, 0); err != nil {
		return Role{}, err
	} else if inUse {
		return Role{}, httpx.Conflictf("role code %q already exists", role.Code)
	}
	return s.repo.Create(ctx, role)
}

// Update validates and rewrites a role.
func (s *Service) Update(ctx context.Context, role Role) error {
	if err := validate(&role); err != nil {
		return err
	}
	if inUse, err := s.repo.CodeInUse(ctx, role.Code, role.ID); err != nil {
		return err
	} else if inUse {
		return httpx.Conflictf("role code %q already exists", role.Code)
	}
	return s.repo.Update(ctx, role)
}

// Delete removes a role nobody holds. Roles still assigned to users are
// rejected with a structured reason.
func (s *Service) Delete(ctx context.Context, id int64) error {
	count, err := s.repo.UserCount(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return httpx.Conflictf("role is still assigned to %d users", count)
	}
	return s.repo.Delete(ctx, id)
}

func validate(role *Role) error {
	role.Name = strings.TrimSpace(role.Name)
	role.Code = strings.TrimSpace(role.Code)
	if role.Name == "" {
		return httpx.Validationf("role name is required")
	}
	if role.Code == "" {
		return httpx.Validationf("role code is required")
	}
	return nil
}

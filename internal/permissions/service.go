package permissions

import (
	"context"
	"strings"

	"github.com/haocai-admin/haocai-admin/internal/httpx"
	"github.com/haocai-admin/haocai-admin/internal/rbac"
)

// RepositoryPort defines catalog persistence operations.
type RepositoryPort interface {
	ListAll(ctx context.Context) ([]rbac.Permission, error)
	Get(ctx context.Context, id int64) (rbac.Permission, error)
	CodeInUse(ctx context.Context, code string, excludeID int64) (bool, error)
	ChildCount(ctx context.Context, id int64) (int, error)
	Create(ctx context.Context, p rbac.Permission) (rbac.Permission, error)
	Update(ctx context.Context, p rbac.Permission) error
	Delete(ctx context.Context, id int64) error
}

// Service applies the catalog's structural rules on top of persistence.
type Service struct {
	repo  RepositoryPort
	cache *TreeCache
}

// NewService constructs a Service. cache may be nil.
func NewService(repo RepositoryPort, cache *TreeCache) *Service {
	return &Service{repo: repo, cache: cache}
}

// Tree returns the full permission forest, nested and ordered. The result
// is cached until the next catalog mutation.
func (s *Service) Tree(ctx context.Context, nameFilter string) ([]*TreeNode, error) {
	if nameFilter == "" {
		if tree, ok := s.cache.Get(ctx); ok {
			return tree, nil
		}
	}
	perms, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	forest := NewForest(perms)
	if nameFilter != "" {
		return forest.FilterByName(nameFilter), nil
	}
	tree := forest.Tree()
	s.cache.Set(ctx, tree)
	return tree, nil
}

// Forest loads the current catalog as an index, bypassing the cache.
func (s *Service) Forest(ctx context.Context) (*Forest, error) {
	perms, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return NewForest(perms), nil
}

// Create validates and inserts a permission node.
func (s *Service) Create(ctx context.Context, p rbac.Permission) (rbac.Permission, error) {
	if err := s.validate(ctx, &p); err != nil {
		return rbac.Permission{}, err
	}
	if inUse, err := s.repo.CodeInUse(ctx, p.Code, 0); err != nil {
		return rbac.Permission{}, err
	} else if inUse {
		return rbac.Permission{}, httpx.Conflictf("permission code %q already exists", p.Code)
	}
	created, err := s.repo.Create(ctx, p)
	if err != nil {
		return rbac.Permission{}, err
	}
	s.cache.Invalidate(ctx)
	return created, nil
}

// Update validates and rewrites a permission node. Reparenting a node under
// itself or one of its descendants is rejected to keep the forest acyclic.
func (s *Service) Update(ctx context.Context, p rbac.Permission) error {
	if _, err := s.repo.Get(ctx, p.ID); err != nil {
		return err
	}
	if err := s.validate(ctx, &p); err != nil {
		return err
	}
	if inUse, err := s.repo.CodeInUse(ctx, p.Code, p.ID); err != nil {
		return err
	} else if inUse {
		return httpx.Conflictf("permission code %q already exists", p.Code)
	}
	if p.ParentID != 0 {
		if p.ParentID == p.ID {
			return httpx.Validationf("a permission cannot be its own parent")
		}
		forest, err := s.Forest(ctx)
		if err != nil {
			return err
		}
		if forest.IsDescendant(p.ParentID, p.ID) {
			return httpx.Validationf("cannot move a permission under its own descendant")
		}
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return err
	}
	s.cache.Invalidate(ctx)
	return nil
}

// Delete removes a leaf node. Nodes with children are rejected with a
// structured reason; cascade is explicit, never implicit.
func (s *Service) Delete(ctx context.Context, id int64) error {
	count, err := s.repo.ChildCount(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return httpx.Conflictf("permission has %d child nodes; delete them first", count)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.cache.Invalidate(ctx)
	return nil
}

// validate applies shape rules shared by create and update.
func (s *Service) validate(ctx context.Context, p *rbac.Permission) error {
	p.Name = strings.TrimSpace(p.Name)
	p.Code = strings.TrimSpace(p.Code)
	if p.Name == "" {
		return httpx.Validationf("permission name is required")
	}
	if p.Code == "" {
		return httpx.Validationf("permission code is required")
	}
	if !p.Type.Valid() {
		return httpx.Validationf("permission type must be menu, button or api")
	}
	if p.ParentID != 0 {
		parent, err := s.repo.Get(ctx, p.ParentID)
		if err != nil {
			return httpx.Validationf("parent permission %d does not exist", p.ParentID)
		}
		// Buttons and API markers hang off the menu that owns them; menus
		// nest under menus.
		if parent.Type != rbac.PermissionMenu {
			return httpx.Validationf("parent of a %s permission must be a menu", p.Type)
		}
	}
	return nil
}

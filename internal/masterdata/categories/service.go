package categories

import (
	"context"
	"strings"

	"github.com/haocai-admin/haocai-admin/internal/httpx"
)

// RepositoryPort defines data access methods for categories.
type RepositoryPort interface {
	ListAll(ctx context.Context) ([]Category, error)
	Get(ctx context.Context, id int64) (Category, error)
	ChildCount(ctx context.Context, id int64) (int, error)
	MaterialCount(ctx context.Context, id int64) (int, error)
	Create(ctx context.Context, c Category) (Category, error)
	Update(ctx context.Context, c Category) error
	Delete(ctx context.Context, id int64) error
}

// Service handles category business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// Tree returns the nested category tree.
func (s *Service) Tree(ctx context.Context) ([]Category, error) {
	flat, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return BuildTree(flat), nil
}

// Create validates and inserts a category.
func (s *Service) Create(ctx context.Context, c Category) (Category, error) {
	if err := s.validate(ctx, &c); err != nil {
		return Category{}, err
	}
	return s.repo.Create(ctx, c)
}

// Update validates and rewrites a category.
func (s *Service) Update(ctx context.Context, c Category) error {
	if c.ParentID == c.ID && c.ID != 0 {
		return httpx.Validationf("category cannot be its own parent")
	}
	if err := s.validate(ctx, &c); err != nil {
		return err
	}
	return s.repo.Update(ctx, c)
}

// Delete removes a category no material uses. Categories with children
// or with materials still attached are rejected.
func (s *Service) Delete(ctx context.Context, id int64) error {
	children, err := s.repo.ChildCount(ctx, id)
	if err != nil {
		return err
	}
	if children > 0 {
		return httpx.Conflictf("category has %d sub-categories; delete them first", children)
	}
	materials, err := s.repo.MaterialCount(ctx, id)
	if err != nil {
		return err
	}
	if materials > 0 {
		return httpx.Conflictf("category is still used by %d materials", materials)
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) validate(ctx context.Context, c *Category) error {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return httpx.Validationf("category name is required")
	}
	if c.ParentID != 0 && c.ParentID != c.ID {
		if _, err := s.repo.Get(ctx, c.ParentID); err != nil {
			return httpx.Validationf("parent category %d does not exist", c.ParentID)
		}
	}
	return nil
}

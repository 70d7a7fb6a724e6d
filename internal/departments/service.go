package departments

import (
	"context"
	"strings"

	"github.com/haocai-admin/haocai-admin/internal/httpx"
)

// RepositoryPort defines data access methods for departments.
type RepositoryPort interface {
	ListAll(ctx context.Context) ([]Department, error)
	Get(ctx context.Context, id int64) (Department, error)
	ChildCount(ctx context.Context, id int64) (int, error)
	UserCount(ctx context.Context, id int64) (int, error)
	Create(ctx context.Context, d Department) (Department, error)
	Update(ctx context.Context, d Department) error
	Delete(ctx context.Context, id int64) error
}

// Service handles department business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// Tree returns the nested department tree.
func (s *Service) Tree(ctx context.Context) ([]Department, error) {
	flat, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return BuildTree(flat), nil
}

// Create validates and inserts a department.
func (s *Service) Create(ctx context.Context, d Department) (Department, error) {
	if err := s.validate(ctx, &d); err != nil {
		return Department{}, err
	}
	return s.repo.Create(ctx, d)
}

// Update validates and rewrites a department. Reparenting a department
// under itself or one of its descendants is rejected.
func (s *Service) Update(ctx context.Context, d Department) error {
	if err := s.validate(ctx, &d); err != nil {
		return err
	}
	if d.ParentID != 0 {
		if d.ParentID == d.ID {
			return httpx.Validationf("department cannot be its own parent")
		}
		flat, err := s.repo.ListAll(ctx)
		if err != nil {
			return err
		}
		if IsDescendant(flat, d.ID, d.ParentID) {
			return httpx.Validationf("cannot move department under its own descendant")
		}
	}
	return s.repo.Update(ctx, d)
}

// Delete removes an empty leaf department. Departments with children or
// with users still attached are rejected.
func (s *Service) Delete(ctx context.Context, id int64) error {
	children, err := s.repo.ChildCount(ctx, id)
	if err != nil {
		return err
	}
	if children > 0 {
		return httpx.Conflictf("department has %d sub-departments; delete them first", children)
	}
	users, err := s.repo.UserCount(ctx, id)
	if err != nil {
		return err
	}
	if users > 0 {
		return httpx.Conflictf("department still has %d users; move them first", users)
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) validate(ctx context.Context, d *Department) error {
	d.Name = strings.TrimSpace(d.Name)
	if d.Name == "" {
		return httpx.Validationf("department name is required")
	}
	if d.ParentID != 0 && d.ParentID != d.ID {
		if _, err := s.repo.Get(ctx, d.ParentID); err != nil {
			return httpx.Validationf("parent department %d does not exist", d.ParentID)
		}
	}
	return nil
}

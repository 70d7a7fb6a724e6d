package materials

import (
	"context"
	"strings"

	"github.com/haocai-admin/haocai-admin/internal/httpx"
	"github.com/haocai-admin/haocai-admin/internal/shared"
)

// RepositoryPort defines data access methods for materials.
type RepositoryPort interface {
	List(ctx context.Context, filters ListFilters) ([]Material, int64, error)
	Get(ctx context.Context, id int64) (Material, error)
	CodeInUse(ctx context.Context, code string, excludeID int64) (bool, error)
	Create(ctx context.Context, m Material) (Material, error)
	Update(ctx context.Context, m Material) error
	Delete(ctx context.Context, id int64) error
}

// CategoryLookup verifies that a category exists.
type CategoryLookup interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

// StockLookup reports whether a material still has inventory attached.
type StockLookup interface {
	HasStock(ctx context.Context, materialID int64) (bool, error)
}

// Service handles material business logic.
type Service struct {
	repo       RepositoryPort
	categories CategoryLookup
	stock      StockLookup
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort, categories CategoryLookup, stock StockLookup) *Service {
	return &Service{repo: repo, categories: categories, stock: stock}
}

// List returns a page of materials.
func (s *Service) List(ctx context.Context, filters ListFilters) (shared.Page[Material], error) {
	records, total, err := s.repo.List(ctx, filters)
	if err != nil {
		return shared.Page[Material]{}, err
	}
	return shared.NewPage(records, total, filters.Current, filters.Size), nil
}

// Get fetches a material by ID.
func (s *Service) Get(ctx context.Context, id int64) (Material, error) {
	return s.repo.Get(ctx, id)
}

// Create validates and inserts a material.
func (s *Service) Create(ctx context.Context, m Material) (Material, error) {
	if err := s.validate(ctx, &m); err != nil {
		return Material{}, err
	}
	if inUse, err := s.repo.CodeInUse(ctx, m.Code, 0); err != nil {
		return Material{}, err
	} else if inUse {
		return Material{}, httpx.Conflictf("material code %q already exists", m.Code)
	}
	return s.repo.Create(ctx, m)
}

// Update validates and rewrites a material.
func (s *Service) Update(ctx context.Context, m Material) error {
	if err := s.validate(ctx, &m); err != nil {
		return err
	}
	if inUse, err := s.repo.CodeInUse(ctx, m.Code, m.ID); err != nil {
		return err
	} else if inUse {
		return httpx.Conflictf("material code %q already exists", m.Code)
	}
	return s.repo.Update(ctx, m)
}

// Delete removes a material that holds no stock.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if s.stock != nil {
		hasStock, err := s.stock.HasStock(ctx, id)
		if err != nil {
			return err
		}
		if hasStock {
			return httpx.Conflictf("material still has stock on hand")
		}
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) validate(ctx context.Context, m *Material) error {
	m.Name = strings.TrimSpace(m.Name)
	m.Code = strings.TrimSpace(m.Code)
	m.Unit = strings.TrimSpace(m.Unit)
	if m.Name == "" {
		return httpx.Validationf("material name is required")
	}
	if m.Code == "" {
		return httpx.Validationf("material code is required")
	}
	if m.Unit == "" {
		return httpx.Validationf("material unit is required")
	}
	if m.Price < 0 {
		return httpx.Validationf("material price cannot be negative")
	}
	if m.CategoryID == 0 {
		return httpx.Validationf("material category is required")
	}
	exists, err := s.categories.Exists(ctx, m.CategoryID)
	if err != nil {
		return err
	}
	if !exists {
		return httpx.Validationf("category %d does not exist", m.CategoryID)
	}
	return nil
}

package suppliers

import (
	"context"
	"strings"

	"github.com/haocai-admin/haocai-admin/internal/httpx"
	"github.com/haocai-admin/haocai-admin/internal/shared"
)

// RepositoryPort defines data access methods for suppliers.
type RepositoryPort interface {
	List(ctx context.Context, filters ListFilters) ([]Supplier, int64, error)
	Get(ctx context.Context, id int64) (Supplier, error)
	NameInUse(ctx context.Context, name string, excludeID int64) (bool, error)
	MaterialCount(ctx context.Context, id int64) (int, error)
	Create(ctx context.Context, s Supplier) (Supplier, error)
	Update(ctx context.Context, s Supplier) error
	Delete(ctx context.Context, id int64) error
}

// Service handles supplier and qualification business logic.
type Service struct {
	repo  RepositoryPort
	quals QualificationRepositoryPort
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort, quals QualificationRepositoryPort) *Service {
	return &Service{repo: repo, quals: quals}
}

// List returns a page of suppliers.
func (s *Service) List(ctx context.Context, filters ListFilters) (shared.Page[Supplier], error) {
	records, total, err := s.repo.List(ctx, filters)
	if err != nil {
		return shared.Page[Supplier]{}, err
	}
	return shared.NewPage(records, total, filters.Current, filters.Size), nil
}

// Get fetches a supplier by ID.
func (s *Service) Get(ctx context.Context, id int64) (Supplier, error) {
	return s.repo.Get(ctx, id)
}

// Create validates and inserts a supplier.
func (s *Service) Create(ctx context.Context, sup Supplier) (Supplier, error) {
	if err := validate(&sup); err != nil {
		return Supplier{}, err
	}
	if inUse, err := s.repo.NameInUse(ctx, sup.Name, 0); err != nil {
		return Supplier{}, err
	} else if inUse {
		return Supplier{}, httpx.Conflictf("supplier %q already exists", sup.Name)
	}
	return s.repo.Create(ctx, sup)
}

// Update validates and rewrites a supplier.
func (s *Service) Update(ctx context.Context, sup Supplier) error {
	if err := validate(&sup); err != nil {
		return err
	}
	if inUse, err := s.repo.NameInUse(ctx, sup.Name, sup.ID); err != nil {
		return err
	} else if inUse {
		return httpx.Conflictf("supplier %q already exists", sup.Name)
	}
	return s.repo.Update(ctx, sup)
}

// Delete removes a supplier no material references.
func (s *Service) Delete(ctx context.Context, id int64) error {
	count, err := s.repo.MaterialCount(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return httpx.Conflictf("supplier is still referenced by %d materials", count)
	}
	return s.repo.Delete(ctx, id)
}

func validate(sup *Supplier) error {
	sup.Name = strings.TrimSpace(sup.Name)
	if sup.Name == "" {
		return httpx.Validationf("supplier name is required")
	}
	return nil
}

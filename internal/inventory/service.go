package inventory

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/haocai-admin/haocai-admin/internal/httpx"
	"github.com/haocai-admin/haocai-admin/internal/jobs"
	"github.com/haocai-admin/haocai-admin/internal/shared"
)

// RepositoryPort defines data access methods for stock.
type RepositoryPort interface {
	List(ctx context.Context, filters ListFilters) ([]Stock, int64, error)
	GetByMaterial(ctx context.Context, materialID int64) (Stock, error)
	Adjust(ctx context.Context, rec Record) (Stock, error)
	SetThreshold(ctx context.Context, materialID, threshold int64) error
	Records(ctx context.Context, filters RecordFilters) ([]Record, int64, error)
}

// TaskEnqueuer matches the asynq client surface the service needs.
type TaskEnqueuer interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Service handles stock business logic.
type Service struct {
	repo     RepositoryPort
	enqueuer TaskEnqueuer
	logger   *slog.Logger
}

// NewService builds a Service instance. enqueuer may be nil; low-stock
// alerts are then skipped.
func NewService(repo RepositoryPort, enqueuer TaskEnqueuer, logger *slog.Logger) *Service {
	return &Service{repo: repo, enqueuer: enqueuer, logger: logger}
}

// List returns a page of stock rows.
func (s *Service) List(ctx context.Context, filters ListFilters) (shared.Page[Stock], error) {
	records, total, err := s.repo.List(ctx, filters)
	if err != nil {
		return shared.Page[Stock]{}, err
	}
	return shared.NewPage(records, total, filters.Current, filters.Size), nil
}

// GetByMaterial fetches the stock row for a material.
func (s *Service) GetByMaterial(ctx context.Context, materialID int64) (Stock, error) {
	return s.repo.GetByMaterial(ctx, materialID)
}

// StockIn adds quantity to a material's stock.
func (s *Service) StockIn(ctx context.Context, rec Record) (Stock, error) {
	rec.Movement = MovementIn
	if err := validateMovement(rec); err != nil {
		return Stock{}, err
	}
	return s.repo.Adjust(ctx, rec)
}

// StockOut removes quantity from a material's stock. The on-hand
// quantity never goes negative; an oversized withdrawal is rejected.
// Crossing the warning threshold queues a low-stock alert.
func (s *Service) StockOut(ctx context.Context, rec Record) (Stock, error) {
	rec.Movement = MovementOut
	if err := validateMovement(rec); err != nil {
		return Stock{}, err
	}
	stock, err := s.repo.Adjust(ctx, rec)
	if err != nil {
		return Stock{}, err
	}
	if stock.Low() {
		s.notifyLowStock(stock)
	}
	return stock, nil
}

// SetThreshold updates a material's warning threshold.
func (s *Service) SetThreshold(ctx context.Context, materialID, threshold int64) error {
	if threshold < 0 {
		return httpx.Validationf("warning threshold cannot be negative")
	}
	return s.repo.SetThreshold(ctx, materialID, threshold)
}

// Records returns a page of stock movements.
func (s *Service) Records(ctx context.Context, filters RecordFilters) (shared.Page[Record], error) {
	records, total, err := s.repo.Records(ctx, filters)
	if err != nil {
		return shared.Page[Record]{}, err
	}
	return shared.NewPage(records, total, filters.Current, filters.Size), nil
}

func (s *Service) notifyLowStock(stock Stock) {
	if s.enqueuer == nil {
		return
	}
	task, err := jobs.NewLowStockTask(jobs.LowStockPayload{
		MaterialID:   stock.MaterialID,
		MaterialName: stock.MaterialName,
		Quantity:     stock.Quantity,
		Threshold:    stock.WarnThreshold,
	})
	if err != nil {
		s.logger.Error("build low-stock task", slog.Any("error", err))
		return
	}
	if _, err := s.enqueuer.Enqueue(task); err != nil {
		s.logger.Error("enqueue low-stock task", slog.Int64("material_id", stock.MaterialID), slog.Any("error", err))
	}
}

func validateMovement(rec Record) error {
	if rec.MaterialID == 0 {
		return httpx.Validationf("material is required")
	}
	if rec.Quantity <= 0 {
		return httpx.Validationf("quantity must be positive")
	}
	return nil
}

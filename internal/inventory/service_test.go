package inventory

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"

	"github.com/haocai-admin/haocai-admin/internal/httpx"
	"github.com/haocai-admin/haocai-admin/internal/jobs"
)

type memoryRepo struct {
	stocks  map[int64]Stock
	records []Record
	nextID  int64
}

func newMemoryRepo(seed ...Stock) *memoryRepo {
	r := &memoryRepo{stocks: make(map[int64]Stock)}
	for _, s := range seed {
		r.stocks[s.MaterialID] = s
		if s.ID > r.nextID {
			r.nextID = s.ID
		}
	}
	return r
}

func (r *memoryRepo) List(ctx context.Context, filters ListFilters) ([]Stock, int64, error) {
	out := make([]Stock, 0, len(r.stocks))
	for _, s := range r.stocks {
		if filters.OnlyLow && !s.Low() {
			continue
		}
		out = append(out, s)
	}
	return out, int64(len(out)), nil
}

func (r *memoryRepo) GetByMaterial(ctx context.Context, materialID int64) (Stock, error) {
	if s, ok := r.stocks[materialID]; ok {
		return s, nil
	}
	return Stock{}, httpx.ErrNotFound
}

func (r *memoryRepo) Adjust(ctx context.Context, rec Record) (Stock, error) {
	s, ok := r.stocks[rec.MaterialID]
	if !ok {
		r.nextID++
		s = Stock{ID: r.nextID, MaterialID: rec.MaterialID}
	}
	delta := rec.Quantity
	if rec.Movement == MovementOut {
		delta = -delta
	}
	if s.Quantity+delta < 0 {
		return Stock{}, httpx.Conflictf("insufficient stock: have %d, need %d", s.Quantity, -delta)
	}
	s.Quantity += delta
	r.stocks[rec.MaterialID] = s
	r.records = append(r.records, rec)
	return s, nil
}

func (r *memoryRepo) SetThreshold(ctx context.Context, materialID, threshold int64) error {
	s := r.stocks[materialID]
	s.MaterialID = materialID
	s.WarnThreshold = threshold
	r.stocks[materialID] = s
	return nil
}

func (r *memoryRepo) Records(ctx context.Context, filters RecordFilters) ([]Record, int64, error) {
	return r.records, int64(len(r.records)), nil
}

type captureEnqueuer struct {
	tasks []*asynq.Task
}

func (c *captureEnqueuer) Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	c.tasks = append(c.tasks, task)
	return &asynq.TaskInfo{}, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestStockInAccumulates(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, testLogger())

	stock, err := svc.StockIn(context.Background(), Record{MaterialID: 1, Quantity: 10})
	require.NoError(t, err)
	require.Equal(t, int64(10), stock.Quantity)

	stock, err = svc.StockIn(context.Background(), Record{MaterialID: 1, Quantity: 5})
	require.NoError(t, err)
	require.Equal(t, int64(15), stock.Quantity)
}

func TestStockOutRejectsOverdraw(t *testing.T) {
	repo := newMemoryRepo(Stock{ID: 1, MaterialID: 1, Quantity: 3})
	svc := NewService(repo, nil, testLogger())

	_, err := svc.StockOut(context.Background(), Record{MaterialID: 1, Quantity: 5})
	require.ErrorIs(t, err, httpx.ErrConflict)
	require.Equal(t, int64(3), repo.stocks[1].Quantity)
}

func TestMovementValidation(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil, testLogger())

	_, err := svc.StockIn(context.Background(), Record{MaterialID: 0, Quantity: 1})
	require.ErrorIs(t, err, httpx.ErrValidation)

	_, err = svc.StockIn(context.Background(), Record{MaterialID: 1, Quantity: 0})
	require.ErrorIs(t, err, httpx.ErrValidation)

	_, err = svc.StockOut(context.Background(), Record{MaterialID: 1, Quantity: -2})
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestStockOutBelowThresholdQueuesAlert(t *testing.T) {
	repo := newMemoryRepo(Stock{ID: 1, MaterialID: 7, MaterialName: "A4打印纸", Quantity: 12, WarnThreshold: 10})
	enqueuer := &captureEnqueuer{}
	svc := NewService(repo, enqueuer, testLogger())

	_, err := svc.StockOut(context.Background(), Record{MaterialID: 7, Quantity: 1})
	require.NoError(t, err)
	require.Empty(t, enqueuer.tasks)

	stock, err := svc.StockOut(context.Background(), Record{MaterialID: 7, Quantity: 2})
	require.NoError(t, err)
	require.Equal(t, int64(9), stock.Quantity)
	require.Len(t, enqueuer.tasks, 1)
	require.Equal(t, jobs.TaskLowStock, enqueuer.tasks[0].Type())

	var payload jobs.LowStockPayload
	require.NoError(t, json.Unmarshal(enqueuer.tasks[0].Payload(), &payload))
	require.Equal(t, int64(7), payload.MaterialID)
	require.Equal(t, int64(9), payload.Quantity)
}

func TestZeroThresholdNeverAlerts(t *testing.T) {
	repo := newMemoryRepo(Stock{ID: 1, MaterialID: 2, Quantity: 1})
	enqueuer := &captureEnqueuer{}
	svc := NewService(repo, enqueuer, testLogger())

	_, err := svc.StockOut(context.Background(), Record{MaterialID: 2, Quantity: 1})
	require.NoError(t, err)
	require.Empty(t, enqueuer.tasks)
}

func TestSetThresholdRejectsNegative(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil, testLogger())

	err := svc.SetThreshold(context.Background(), 1, -1)
	require.ErrorIs(t, err, httpx.ErrValidation)
	require.NoError(t, svc.SetThreshold(context.Background(), 1, 20))
}

package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Worker wraps the Asynq server processing background tasks.
type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	logger *slog.Logger
}

// NewWorker constructs a Worker with handlers for all known tasks.
func NewWorker(redisOpts asynq.RedisClientOpt, pool *pgxpool.Pool, logger *slog.Logger) *Worker {
	srv := asynq.NewServer(redisOpts, asynq.Config{
		Concurrency: 5,
		Queues:      map[string]int{QueueDefault: 1},
	})
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskLoginLog, handleLoginLog(pool, logger))
	mux.HandleFunc(TaskLowStock, handleLowStock(logger))
	mux.HandleFunc(TaskQualificationSweep, handleQualificationSweep(pool, logger))
	return &Worker{server: srv, mux: mux, logger: logger}
}

// Run blocks processing tasks until Shutdown is called.
func (w *Worker) Run() error {
	return w.server.Run(w.mux)
}

// Shutdown stops the Asynq server gracefully.
func (w *Worker) Shutdown() {
	w.server.Shutdown()
}

func handleLoginLog(pool *pgxpool.Pool, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload LoginLogPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		_, err := pool.Exec(ctx, `
			INSERT INTO sys_user_login_log (user_id, username, ip, user_agent, login_time)
			VALUES ($1, $2, $3, $4, $5)`,
			payload.UserID, payload.Username, payload.IP, payload.UserAgent, payload.At)
		if err != nil && logger != nil {
			logger.Error("write login log", slog.Any("error", err))
		}
		return err
	}
}

func handleQualificationSweep(pool *pgxpool.Pool, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		tag, err := pool.Exec(ctx, `
			UPDATE mat_supplier_qualification SET status = 0, update_time = NOW()
			WHERE deleted = 0 AND status = 1 AND expiry_date IS NOT NULL AND expiry_date < CURRENT_DATE`)
		if err != nil {
			if logger != nil {
				logger.Error("qualification sweep", slog.Any("error", err))
			}
			return err
		}
		if logger != nil && tag.RowsAffected() > 0 {
			logger.Info("expired supplier qualifications", slog.Int64("count", tag.RowsAffected()))
		}
		return nil
	}
}

func handleLowStock(logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload LowStockPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		if logger != nil {
			logger.Warn("low stock",
				slog.Int64("materialId", payload.MaterialID),
				slog.String("material", payload.MaterialName),
				slog.Int64("quantity", payload.Quantity),
				slog.Int64("threshold", payload.Threshold))
		}
		return nil
	}
}

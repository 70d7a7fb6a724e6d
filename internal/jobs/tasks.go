// Package jobs defines the background tasks processed by cmd/worker.
package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the queue name for background jobs.
	QueueDefault = "default"
	// TaskLoginLog records a successful login for auditing.
	TaskLoginLog = "auth:login_log"
	// TaskLowStock notifies about inventory falling under its threshold.
	TaskLowStock = "inventory:low_stock"
	// TaskQualificationSweep expires supplier qualifications past their
	// expiry date.
	TaskQualificationSweep = "supplier:qualification_sweep"
)

// LoginLogPayload describes a login event.
type LoginLogPayload struct {
	UserID    int64     `json:"userId"`
	Username  string    `json:"username"`
	IP        string    `json:"ip"`
	UserAgent string    `json:"userAgent"`
	At        time.Time `json:"at"`
}

// NewLoginLogTask constructs the login-log task.
func NewLoginLogTask(payload LoginLogPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLoginLog, data, asynq.Queue(QueueDefault)), nil
}

// LowStockPayload describes an inventory record that crossed its warning
// threshold.
type LowStockPayload struct {
	MaterialID   int64  `json:"materialId"`
	MaterialName string `json:"materialName"`
	Quantity     int64  `json:"quantity"`
	Threshold    int64  `json:"threshold"`
}

// NewQualificationSweepTask constructs the qualification-sweep task.
// It carries no payload; the sweep always covers every overdue row.
func NewQualificationSweepTask() *asynq.Task {
	return asynq.NewTask(TaskQualificationSweep, nil, asynq.Queue(QueueDefault))
}

// NewLowStockTask constructs the low-stock alert task.
func NewLowStockTask(payload LowStockPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLowStock, data, asynq.Queue(QueueDefault)), nil
}

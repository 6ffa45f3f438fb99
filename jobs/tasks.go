package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskLowStockScan reports products that fell under the restock threshold.
	TaskLowStockScan = "stock:low-scan"
	// TaskStatsRefresh invalidates cached dashboard reports.
	TaskStatsRefresh = "stats:refresh"
)

// Cron schedules used by the worker.
const (
	LowStockScanCron = "@every 1h"
	StatsRefreshCron = "@every 5m"
)

// LowStockScanPayload scopes a low-stock scan. Zero threshold uses the
// worker's configured one; empty ProductIDs scans the whole catalog.
type LowStockScanPayload struct {
	Threshold  int     `json:"threshold,omitempty"`
	ProductIDs []int64 `json:"product_ids,omitempty"`
	Source     string  `json:"source,omitempty"`
}

// StatsRefreshPayload describes why the cache is being refreshed.
type StatsRefreshPayload struct {
	Reason string `json:"reason,omitempty"`
}

// NewLowStockScanTask builds a low-stock scan task.
func NewLowStockScanTask(payload LowStockScanPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLowStockScan, body, asynq.Queue(QueueDefault), asynq.MaxRetry(3), asynq.Timeout(30*time.Second)), nil
}

// NewStatsRefreshTask builds a stats refresh task.
func NewStatsRefreshTask(reason string) (*asynq.Task, error) {
	body, err := json.Marshal(StatsRefreshPayload{Reason: reason})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskStatsRefresh, body, asynq.Queue(QueueDefault), asynq.MaxRetry(1)), nil
}

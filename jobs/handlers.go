package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"

	"github.com/hibiken/asynq"

	"github.com/mnb-billing/mnb-pos/internal/analytics"
	jobmetrics "github.com/mnb-billing/mnb-pos/internal/jobs"
)

// Reports is the subset of the analytics service used by jobs.
type Reports interface {
	LowStock(ctx context.Context, threshold int) ([]analytics.LowStockProduct, error)
	Invalidate(ctx context.Context) error
}

// Handlers processes the worker's task types.
type Handlers struct {
	reports Reports
	logger  *slog.Logger
	metrics *jobmetrics.Metrics
}

// NewHandlers wires job handlers. metrics may be nil.
func NewHandlers(reports Reports, logger *slog.Logger, metrics *jobmetrics.Metrics) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{reports: reports, logger: logger, metrics: metrics}
}

// TaskHandlers lists handler registrations for the worker.
func (h *Handlers) TaskHandlers() []TaskHandler {
	return []TaskHandler{
		{Type: TaskLowStockScan, Handler: h.HandleLowStockScan},
		{Type: TaskStatsRefresh, Handler: h.HandleStatsRefresh},
	}
}

// HandleLowStockScan logs a warning for every product under the threshold.
func (h *Handlers) HandleLowStockScan(ctx context.Context, t *asynq.Task) error {
	var payload LowStockScanPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return fmt.Errorf("low stock scan payload: %v: %w", err, asynq.SkipRetry)
		}
	}
	tracker := h.metrics.Track(TaskLowStockScan)
	products, err := h.reports.LowStock(ctx, payload.Threshold)
	if err != nil {
		return tracker.End(err)
	}
	if len(payload.ProductIDs) == 0 {
		h.metrics.SetLowStock(len(products))
	}
	reported := 0
	for _, p := range products {
		if len(payload.ProductIDs) > 0 && !slices.Contains(payload.ProductIDs, p.ID) {
			continue
		}
		reported++
		h.logger.Warn("product below restock threshold",
			slog.Int64("product_id", p.ID),
			slog.String("name", p.Name),
			slog.Int("stocks", p.Stocks),
			slog.String("source", payload.Source),
		)
	}
	h.logger.Info("low stock scan finished", slog.Int("reported", reported), slog.Int("below_threshold", len(products)))
	return tracker.End(nil)
}

// HandleStatsRefresh bumps the report cache version.
func (h *Handlers) HandleStatsRefresh(ctx context.Context, t *asynq.Task) error {
	var payload StatsRefreshPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return fmt.Errorf("stats refresh payload: %v: %w", err, asynq.SkipRetry)
		}
	}
	tracker := h.metrics.Track(TaskStatsRefresh)
	if err := h.reports.Invalidate(ctx); err != nil {
		return tracker.End(err)
	}
	h.logger.Debug("stats cache refreshed", slog.String("reason", payload.Reason))
	return tracker.End(nil)
}

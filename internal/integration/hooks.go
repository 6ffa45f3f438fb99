package integration

import (
	"context"
	"log/slog"

	"github.com/mnb-billing/mnb-pos/internal/billing"
	"github.com/mnb-billing/mnb-pos/internal/procurement"
	"github.com/mnb-billing/mnb-pos/jobs"
)

// CacheInvalidator drops cached reports after stock or sales change.
type CacheInvalidator interface {
	Invalidate(ctx context.Context) error
}

// JobEnqueuer submits background jobs.
type JobEnqueuer interface {
	EnqueueLowStockScan(ctx context.Context, payload jobs.LowStockScanPayload) error
}

// Recorder receives business counters.
type Recorder interface {
	BillCreated(grandTotal float64)
	BillRejected(reason string)
	StockReceived()
}

// Hooks fans committed billing and procurement events out to the report
// cache, the job queue and metrics. Every step is best effort: failures are
// logged and never reach the request that produced the event.
type Hooks struct {
	cache   CacheInvalidator
	queue   JobEnqueuer
	metrics Recorder
	logger  *slog.Logger
}

var (
	_ billing.EventPublisher     = (*Hooks)(nil)
	_ procurement.EventPublisher = (*Hooks)(nil)
)

// NewHooks constructs integration hooks. Any dependency may be nil.
func NewHooks(cache CacheInvalidator, queue JobEnqueuer, metrics Recorder, logger *slog.Logger) *Hooks {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hooks{cache: cache, queue: queue, metrics: metrics, logger: logger}
}

// BillCreated handles a committed bill.
func (h *Hooks) BillCreated(ctx context.Context, evt billing.BillCreatedEvent) {
	if h == nil {
		return
	}
	if h.metrics != nil {
		h.metrics.BillCreated(evt.GrandTotal)
	}
	h.invalidate(ctx)
	if h.queue != nil {
		payload := jobs.LowStockScanPayload{ProductIDs: evt.ProductIDs, Source: "bill:" + evt.BillNumber}
		if err := h.queue.EnqueueLowStockScan(ctx, payload); err != nil {
			h.logger.Warn("enqueue low stock scan failed", slog.Int64("bill_id", evt.BillID), slog.Any("error", err))
		}
	}
}

// BillRejected counts a refused bill.
func (h *Hooks) BillRejected(_ context.Context, reason string) {
	if h == nil || h.metrics == nil {
		return
	}
	h.metrics.BillRejected(reason)
}

// StockReceived handles a committed stock receipt.
func (h *Hooks) StockReceived(ctx context.Context, evt procurement.StockReceivedEvent) {
	if h == nil {
		return
	}
	if h.metrics != nil {
		h.metrics.StockReceived()
	}
	h.logger.Debug("stock receipt committed", slog.Int64("order_id", evt.OrderID), slog.Int("products", len(evt.ProductIDs)))
	h.invalidate(ctx)
}

func (h *Hooks) invalidate(ctx context.Context) {
	if h.cache == nil {
		return
	}
	if err := h.cache.Invalidate(ctx); err != nil {
		h.logger.Warn("stats cache invalidation failed", slog.Any("error", err))
	}
}

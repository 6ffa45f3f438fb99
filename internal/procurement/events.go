package procurement

import (
	"context"
	"time"
)

// StockReceivedEvent is published after a stock receipt commits.
type StockReceivedEvent struct {
	OrderID     int64
	SupplierID  int64
	TotalAmount float64
	ProductIDs  []int64
	ReceivedAt  time.Time
}

// EventPublisher receives post-commit procurement events.
type EventPublisher interface {
	StockReceived(ctx context.Context, evt StockReceivedEvent)
}

type noopPublisher struct{}

func (noopPublisher) StockReceived(context.Context, StockReceivedEvent) {}

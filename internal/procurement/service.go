package procurement

import (
	"context"
	"strings"
	"time"

	"github.com/mnb-billing/mnb-pos/internal/shared"
)

// ReceiptMessage is returned on a successful stock receipt.
const ReceiptMessage = "Stock received and updated"

// RepositoryPort describes repository operations used by Service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	ListBySupplier(ctx context.Context, supplierID int64) ([]DistributorOrder, error)
	Get(ctx context.Context, id int64) (DistributorOrder, error)
	Create(ctx context.Context, order DistributorOrder) (DistributorOrder, error)
	Update(ctx context.Context, order DistributorOrder) (DistributorOrder, error)
	Delete(ctx context.Context, id int64) error
	Summary(ctx context.Context, supplierID int64) (OrderSummary, error)
	DistributorSummary(ctx context.Context) ([]DistributorTotals, error)
}

// Service orchestrates distributor orders and stock receipts.
type Service struct {
	repo   RepositoryPort
	events EventPublisher
	now    func() time.Time
}

// NewService constructs procurement service.
func NewService(repo RepositoryPort, events EventPublisher) *Service {
	if events == nil {
		events = noopPublisher{}
	}
	return &Service{repo: repo, events: events, now: time.Now}
}

var errNoReceiptItems = shared.NewValidationError("At least one product with quantity is required")

// ReceiveStock records a delivered invoice and, in the same transaction,
// increases stock and refreshes cost price for every received line.
func (s *Service) ReceiveStock(ctx context.Context, req ReceiveStockRequest) (ReceiveResult, error) {
	if len(req.Items) == 0 {
		return ReceiveResult{}, errNoReceiptItems
	}
	if err := shared.Validate(req); err != nil {
		return ReceiveResult{}, err
	}
	lines, total := receiptLines(req.Items)
	if len(lines) == 0 {
		return ReceiveResult{}, errNoReceiptItems
	}
	seen := make(map[int64]struct{}, len(lines))
	for _, line := range lines {
		if line.ProductID <= 0 {
			return ReceiveResult{}, &shared.ProductNotFoundError{ProductID: line.ProductID}
		}
		if _, dup := seen[line.ProductID]; dup {
			return ReceiveResult{}, shared.NewValidationError("Product id %d appears more than once", line.ProductID)
		}
		seen[line.ProductID] = struct{}{}
	}

	orderDate, err := parseDate(req.OrderDate)
	if err != nil {
		return ReceiveResult{}, err
	}
	deliveredDate, err := parseDate(req.DeliveredDate)
	if err != nil {
		return ReceiveResult{}, err
	}
	if deliveredDate == nil {
		deliveredDate = orderDate
	}
	paid := max(req.PaidAmount, 0)
	balance, status := settle(total, paid, nil, nil)

	order := DistributorOrder{
		SupplierID:     req.SupplierID,
		OrderedDate:    orderDate,
		DeliveredDate:  deliveredDate,
		DeliveryStatus: DeliveryDelivered,
		InvoiceNumber:  optional(req.InvoiceNumber),
		TotalAmount:    total,
		PaidAmount:     paid,
		BalanceAmount:  balance,
		PaymentStatus:  status,
		Notes:          optional(req.Notes),
	}

	var orderID int64
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		id, err := tx.InsertOrder(ctx, order)
		if err != nil {
			return err
		}
		for _, line := range lines {
			if _, err := tx.InsertItem(ctx, DistributorOrderItem{
				OrderID:   id,
				ProductID: line.ProductID,
				Quantity:  line.Quantity,
				UnitPrice: line.UnitPrice,
				Subtotal:  line.Subtotal,
			}); err != nil {
				return err
			}
			if err := tx.ReceiveProduct(ctx, line.ProductID, line.Quantity, line.UnitPrice); err != nil {
				return err
			}
		}
		orderID = id
		return nil
	})
	if err != nil {
		return ReceiveResult{}, err
	}

	ids := make([]int64, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.ProductID)
	}
	s.events.StockReceived(ctx, StockReceivedEvent{
		OrderID:     orderID,
		SupplierID:  req.SupplierID,
		TotalAmount: total,
		ProductIDs:  ids,
		ReceivedAt:  s.now(),
	})
	return ReceiveResult{ID: orderID, TotalAmount: total, Message: ReceiptMessage}, nil
}

// ListOrders returns a supplier's orders.
func (s *Service) ListOrders(ctx context.Context, supplierID int64) ([]DistributorOrder, error) {
	return s.repo.ListBySupplier(ctx, supplierID)
}

// GetOrder returns one order with its lines.
func (s *Service) GetOrder(ctx context.Context, supplierID, id int64) (DistributorOrder, error) {
	if id <= 0 {
		return DistributorOrder{}, shared.NotFound("Order")
	}
	order, err := s.repo.Get(ctx, id)
	if err != nil {
		return DistributorOrder{}, err
	}
	if order.SupplierID != supplierID {
		return DistributorOrder{}, shared.NotFound("Order")
	}
	return order, nil
}

// CreateOrder records an order placed with a supplier.
func (s *Service) CreateOrder(ctx context.Context, supplierID int64, in OrderInput) (DistributorOrder, error) {
	if err := shared.Validate(in); err != nil {
		return DistributorOrder{}, err
	}
	order := DistributorOrder{SupplierID: supplierID, DeliveryStatus: DeliveryPending}
	if err := applyInput(&order, in); err != nil {
		return DistributorOrder{}, err
	}
	order.BalanceAmount, order.PaymentStatus = settle(order.TotalAmount, order.PaidAmount, in.BalanceAmount, in.PaymentStatus)
	return s.repo.Create(ctx, order)
}

// UpdateOrder merges the supplied fields onto the stored order. Balance and
// payment status are recomputed unless given explicitly.
func (s *Service) UpdateOrder(ctx context.Context, supplierID, id int64, in OrderInput) (DistributorOrder, error) {
	if err := shared.Validate(in); err != nil {
		return DistributorOrder{}, err
	}
	order, err := s.GetOrder(ctx, supplierID, id)
	if err != nil {
		return DistributorOrder{}, err
	}
	if err := applyInput(&order, in); err != nil {
		return DistributorOrder{}, err
	}
	order.BalanceAmount, order.PaymentStatus = settle(order.TotalAmount, order.PaidAmount, in.BalanceAmount, in.PaymentStatus)
	return s.repo.Update(ctx, order)
}

// DeleteOrder removes an order. Received stock stays on hand.
func (s *Service) DeleteOrder(ctx context.Context, supplierID, id int64) error {
	if _, err := s.GetOrder(ctx, supplierID, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// Summary totals a supplier's payments.
func (s *Service) Summary(ctx context.Context, supplierID int64) (OrderSummary, error) {
	return s.repo.Summary(ctx, supplierID)
}

// DistributorSummary totals orders per supplier.
func (s *Service) DistributorSummary(ctx context.Context) ([]DistributorTotals, error) {
	return s.repo.DistributorSummary(ctx)
}

func applyInput(order *DistributorOrder, in OrderInput) error {
	if in.OrderedDate != nil {
		d, err := parseDate(*in.OrderedDate)
		if err != nil {
			return err
		}
		order.OrderedDate = d
	}
	if in.DeliveredDate != nil {
		d, err := parseDate(*in.DeliveredDate)
		if err != nil {
			return err
		}
		order.DeliveredDate = d
	}
	if in.DeliveryStatus != nil {
		order.DeliveryStatus = *in.DeliveryStatus
	}
	if in.InvoiceNumber != nil {
		order.InvoiceNumber = optional(*in.InvoiceNumber)
	}
	if in.TotalAmount != nil {
		order.TotalAmount = *in.TotalAmount
	}
	if in.PaidAmount != nil {
		order.PaidAmount = *in.PaidAmount
	}
	if in.Notes != nil {
		order.Notes = optional(*in.Notes)
	}
	if in.BillFileURL != nil {
		order.BillFileURL = optional(*in.BillFileURL)
	}
	return nil
}

func parseDate(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	d, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return nil, shared.NewValidationError("invalid date %q", raw)
	}
	return &d, nil
}

func optional(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}

package billing

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/mnb-billing/mnb-pos/internal/shared"
)

const (
	// RecentLimit is the number of bills returned by Recent.
	RecentLimit = 10
	// MaxHistoryPerPage caps the page size of History.
	MaxHistoryPerPage = 100
)

// EventPublisher receives post-commit notifications. Failures never undo a sale.
type EventPublisher interface {
	BillCreated(ctx context.Context, evt BillCreatedEvent)
	BillRejected(ctx context.Context, reason string)
}

type noopPublisher struct{}

func (noopPublisher) BillCreated(context.Context, BillCreatedEvent) {}
func (noopPublisher) BillRejected(context.Context, string)          {}

// Service implements bill creation and bill reads.
type Service struct {
	repo    Repository
	events  EventPublisher
	now     func() time.Time
	numbers func(time.Time) string
}

// NewService constructs a billing service. A nil publisher disables events.
func NewService(repo Repository, events EventPublisher) *Service {
	if events == nil {
		events = noopPublisher{}
	}
	return &Service{repo: repo, events: events, now: time.Now, numbers: NewBillNumber}
}

// CreateBill validates the request and, in one transaction, checks stock,
// writes the bill and its lines, and decrements stock for every line.
func (s *Service) CreateBill(ctx context.Context, req CreateBillRequest, cashierID int64) (CreatedBill, error) {
	if cashierID <= 0 {
		return CreatedBill{}, shared.ErrUnauthorized
	}
	req.normalize()
	if err := shared.Validate(req); err != nil {
		s.events.BillRejected(ctx, RejectValidation)
		return CreatedBill{}, err
	}

	now := s.now()
	var created CreatedBill
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if err := checkStock(ctx, tx, req.Items); err != nil {
			return err
		}

		bill := Bill{
			BillNumber:     s.numbers(now),
			CustomerName:   optional(req.CustomerName),
			CustomerPhone:  optional(req.CustomerPhone),
			TotalAmount:    req.TotalAmount,
			TaxAmount:      req.TaxAmount,
			DiscountAmount: req.DiscountAmount,
			GrandTotal:     req.GrandTotal,
			CashierID:      cashierID,
		}
		billID, err := tx.InsertBill(ctx, bill)
		if err != nil {
			return err
		}

		for _, line := range req.Items {
			gst, subtotal := LineAmounts(line.UnitPrice, line.Quantity, line.GSTPercent)
			if _, err := tx.InsertItem(ctx, BillItem{
				BillID:    billID,
				ProductID: line.ProductID,
				Quantity:  line.Quantity,
				UnitPrice: line.UnitPrice,
				GSTAmount: gst.InexactFloat64(),
				Subtotal:  subtotal.InexactFloat64(),
			}); err != nil {
				return err
			}
			ok, err := tx.DeductStock(ctx, line.ProductID, line.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				// stock moved between the check and the write
				current, err := tx.ProductStock(ctx, line.ProductID)
				if err != nil {
					return err
				}
				return &shared.InsufficientStockError{
					ProductID:   line.ProductID,
					ProductName: current.Name,
					Available:   current.Stocks,
					Requested:   line.Quantity,
				}
			}
		}

		created = CreatedBill{ID: billID, BillNumber: bill.BillNumber}
		return nil
	})
	if err != nil {
		s.events.BillRejected(ctx, rejectionReason(err))
		return CreatedBill{}, err
	}

	s.events.BillCreated(ctx, BillCreatedEvent{
		BillID:     created.ID,
		BillNumber: created.BillNumber,
		CashierID:  cashierID,
		GrandTotal: req.GrandTotal,
		ProductIDs: productIDs(req.Items),
		CreatedAt:  now,
	})
	return created, nil
}

// checkStock reads every referenced product before any write. Quantities
// for a product listed on several lines are summed.
func checkStock(ctx context.Context, tx TxRepository, items []BillItemRequest) error {
	requested := make(map[int64]int, len(items))
	for _, line := range items {
		stock, err := tx.ProductStock(ctx, line.ProductID)
		if err != nil {
			return err
		}
		requested[line.ProductID] += line.Quantity
		if stock.Stocks < requested[line.ProductID] {
			return &shared.InsufficientStockError{
				ProductID:   line.ProductID,
				ProductName: stock.Name,
				Available:   stock.Stocks,
				Requested:   requested[line.ProductID],
			}
		}
	}
	return nil
}

func productIDs(items []BillItemRequest) []int64 {
	seen := make(map[int64]struct{}, len(items))
	ids := make([]int64, 0, len(items))
	for _, line := range items {
		if _, ok := seen[line.ProductID]; ok {
			continue
		}
		seen[line.ProductID] = struct{}{}
		ids = append(ids, line.ProductID)
	}
	return ids
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, shared.ErrInsufficientStock):
		return RejectInsufficientStock
	case errors.Is(err, shared.ErrProductNotFound):
		return RejectProductNotFound
	case errors.Is(err, shared.ErrValidation):
		return RejectValidation
	default:
		return RejectInternal
	}
}

// Recent returns the ten most recent bills.
func (s *Service) Recent(ctx context.Context) ([]Bill, error) {
	return s.repo.Recent(ctx, RecentLimit)
}

// Get returns a bill with its lines.
func (s *Service) Get(ctx context.Context, id int64) (BillDetail, error) {
	if id <= 0 {
		return BillDetail{}, shared.NotFound("Bill")
	}
	return s.repo.Get(ctx, id)
}

// History returns a filtered page of bills.
func (s *Service) History(ctx context.Context, filter HistoryFilter) ([]Bill, shared.Pagination, error) {
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return nil, shared.Pagination{}, shared.NewValidationError("to must not be before from")
	}
	filter.Page, filter.PerPage = shared.NormalizePage(filter.Page, filter.PerPage, MaxHistoryPerPage)
	filter.Phone = strings.TrimSpace(filter.Phone)
	filter.BillNumber = strings.TrimSpace(filter.BillNumber)
	bills, total, err := s.repo.History(ctx, filter)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return bills, shared.NewPagination(filter.Page, filter.PerPage, total), nil
}

// Customers lists repeat customers identified by phone.
func (s *Service) Customers(ctx context.Context) ([]Customer, error) {
	return s.repo.Customers(ctx)
}

// CustomerHistory lists purchases for one phone number.
func (s *Service) CustomerHistory(ctx context.Context, phone string) ([]CustomerPurchase, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return []CustomerPurchase{}, nil
	}
	return s.repo.CustomerHistory(ctx, phone)
}

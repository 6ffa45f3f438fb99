package billing

import (
	"context"
	"sort"
	"time"

	"github.com/mnb-billing/mnb-pos/internal/shared"
)

type memProduct struct {
	Name   string
	Stocks int
}

type memState struct {
	products   map[int64]memProduct
	bills      []Bill
	items      []BillItem
	nextBillID int64
	nextItemID int64
}

func (s memState) clone() memState {
	out := s
	out.products = make(map[int64]memProduct, len(s.products))
	for id, p := range s.products {
		out.products[id] = p
	}
	out.bills = append([]Bill(nil), s.bills...)
	out.items = append([]BillItem(nil), s.items...)
	return out
}

// memoryBillRepo keeps committed state and applies a transaction's changes
// only when fn returns nil.
type memoryBillRepo struct {
	state memState
	// beforeDeduct runs inside the transaction just before each decrement.
	beforeDeduct func(working *memState, productID int64)
	txCount      int
	lastHistory  HistoryFilter
}

func newMemoryBillRepo(products map[int64]memProduct) *memoryBillRepo {
	return &memoryBillRepo{state: memState{products: products, nextBillID: 1, nextItemID: 1}}
}

func (m *memoryBillRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	m.txCount++
	working := m.state.clone()
	if err := fn(ctx, &memoryTx{state: &working, repo: m}); err != nil {
		return err
	}
	m.state = working
	return nil
}

type memoryTx struct {
	state *memState
	repo  *memoryBillRepo
}

func (t *memoryTx) ProductStock(_ context.Context, productID int64) (ProductStock, error) {
	p, ok := t.state.products[productID]
	if !ok {
		return ProductStock{}, &shared.ProductNotFoundError{ProductID: productID}
	}
	return ProductStock{ID: productID, Name: p.Name, Stocks: p.Stocks}, nil
}

func (t *memoryTx) InsertBill(_ context.Context, bill Bill) (int64, error) {
	for _, existing := range t.state.bills {
		if existing.BillNumber == bill.BillNumber {
			return 0, ErrBillNumberTaken
		}
	}
	bill.ID = t.state.nextBillID
	bill.CreatedAt = time.Now()
	t.state.nextBillID++
	t.state.bills = append(t.state.bills, bill)
	return bill.ID, nil
}

func (t *memoryTx) InsertItem(_ context.Context, item BillItem) (int64, error) {
	if _, ok := t.state.products[item.ProductID]; !ok {
		return 0, &shared.ProductNotFoundError{ProductID: item.ProductID}
	}
	item.ID = t.state.nextItemID
	t.state.nextItemID++
	t.state.items = append(t.state.items, item)
	return item.ID, nil
}

func (t *memoryTx) DeductStock(_ context.Context, productID int64, quantity int) (bool, error) {
	if t.repo.beforeDeduct != nil {
		t.repo.beforeDeduct(t.state, productID)
	}
	p, ok := t.state.products[productID]
	if !ok || p.Stocks < quantity {
		return false, nil
	}
	p.Stocks -= quantity
	t.state.products[productID] = p
	return true, nil
}

func (m *memoryBillRepo) Recent(_ context.Context, limit int) ([]Bill, error) {
	bills := append([]Bill(nil), m.state.bills...)
	sort.Slice(bills, func(i, j int) bool { return bills[i].ID > bills[j].ID })
	if len(bills) > limit {
		bills = bills[:limit]
	}
	return bills, nil
}

func (m *memoryBillRepo) Get(_ context.Context, id int64) (BillDetail, error) {
	for _, b := range m.state.bills {
		if b.ID != id {
			continue
		}
		detail := BillDetail{Bill: b, Items: []BillItem{}}
		for _, item := range m.state.items {
			if item.BillID == id {
				item.ProductName = m.state.products[item.ProductID].Name
				detail.Items = append(detail.Items, item)
			}
		}
		return detail, nil
	}
	return BillDetail{}, shared.NotFound("Bill")
}

func (m *memoryBillRepo) History(_ context.Context, filter HistoryFilter) ([]Bill, int, error) {
	m.lastHistory = filter
	matched := []Bill{}
	for _, b := range m.state.bills {
		if filter.Phone != "" && (b.CustomerPhone == nil || *b.CustomerPhone != filter.Phone) {
			continue
		}
		matched = append(matched, b)
	}
	start := (filter.Page - 1) * filter.PerPage
	if start > len(matched) {
		start = len(matched)
	}
	end := start + filter.PerPage
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], len(matched), nil
}

func (m *memoryBillRepo) Customers(context.Context) ([]Customer, error) {
	return []Customer{}, nil
}

func (m *memoryBillRepo) CustomerHistory(context.Context, string) ([]CustomerPurchase, error) {
	return []CustomerPurchase{}, nil
}

type recordingPublisher struct {
	created  []BillCreatedEvent
	rejected []string
}

func (p *recordingPublisher) BillCreated(_ context.Context, evt BillCreatedEvent) {
	p.created = append(p.created, evt)
}

func (p *recordingPublisher) BillRejected(_ context.Context, reason string) {
	p.rejected = append(p.rejected, reason)
}

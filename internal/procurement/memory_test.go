package procurement

import (
	"context"
	"sort"
	"time"

	"github.com/mnb-billing/mnb-pos/internal/shared"
)

type memProduct struct {
	Stocks    int
	CostPrice float64
}

type memState struct {
	suppliers map[int64]string
	products  map[int64]memProduct
	orders    map[int64]DistributorOrder
	items     []DistributorOrderItem
	nextID    int64
}

func (s memState) clone() memState {
	out := s
	out.products = make(map[int64]memProduct, len(s.products))
	for id, p := range s.products {
		out.products[id] = p
	}
	out.orders = make(map[int64]DistributorOrder, len(s.orders))
	for id, o := range s.orders {
		out.orders[id] = o
	}
	out.items = append([]DistributorOrderItem(nil), s.items...)
	return out
}

// memoryOrderRepo commits a transaction's working copy only when fn succeeds.
type memoryOrderRepo struct {
	state memState
	clock time.Time
}

func newMemoryOrderRepo() *memoryOrderRepo {
	return &memoryOrderRepo{
		state: memState{
			suppliers: map[int64]string{1: "Fresh Farms", 2: "Daily Dairy"},
			products:  map[int64]memProduct{1: {Stocks: 20, CostPrice: 0}, 2: {Stocks: 3, CostPrice: 4}},
			orders:    map[int64]DistributorOrder{},
			nextID:    1,
		},
		clock: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

func (m *memoryOrderRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	working := m.state.clone()
	if err := fn(ctx, &memoryTx{state: &working, repo: m}); err != nil {
		return err
	}
	m.state = working
	return nil
}

func (m *memoryOrderRepo) insert(state *memState, order DistributorOrder) (DistributorOrder, error) {
	if _, ok := state.suppliers[order.SupplierID]; !ok {
		return DistributorOrder{}, shared.NotFound("Supplier")
	}
	order.ID = state.nextID
	state.nextID++
	m.clock = m.clock.Add(time.Minute)
	order.CreatedAt = m.clock
	order.Items = nil
	state.orders[order.ID] = order
	return order, nil
}

type memoryTx struct {
	state *memState
	repo  *memoryOrderRepo
}

func (t *memoryTx) InsertOrder(_ context.Context, order DistributorOrder) (int64, error) {
	created, err := t.repo.insert(t.state, order)
	return created.ID, err
}

func (t *memoryTx) InsertItem(_ context.Context, item DistributorOrderItem) (int64, error) {
	if _, ok := t.state.products[item.ProductID]; !ok {
		return 0, &shared.ProductNotFoundError{ProductID: item.ProductID}
	}
	item.ID = int64(len(t.state.items) + 1)
	t.state.items = append(t.state.items, item)
	return item.ID, nil
}

func (t *memoryTx) ReceiveProduct(_ context.Context, productID int64, quantity int, unitCost float64) error {
	p, ok := t.state.products[productID]
	if !ok {
		return &shared.ProductNotFoundError{ProductID: productID}
	}
	p.Stocks += quantity
	p.CostPrice = unitCost
	t.state.products[productID] = p
	return nil
}

func (m *memoryOrderRepo) ListBySupplier(_ context.Context, supplierID int64) ([]DistributorOrder, error) {
	out := []DistributorOrder{}
	for _, o := range m.state.orders {
		if o.SupplierID == supplierID {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *memoryOrderRepo) Get(_ context.Context, id int64) (DistributorOrder, error) {
	o, ok := m.state.orders[id]
	if !ok {
		return DistributorOrder{}, shared.NotFound("Order")
	}
	for _, it := range m.state.items {
		if it.OrderID == id {
			o.Items = append(o.Items, it)
		}
	}
	return o, nil
}

func (m *memoryOrderRepo) Create(_ context.Context, order DistributorOrder) (DistributorOrder, error) {
	return m.insert(&m.state, order)
}

func (m *memoryOrderRepo) Update(_ context.Context, order DistributorOrder) (DistributorOrder, error) {
	existing, ok := m.state.orders[order.ID]
	if !ok {
		return DistributorOrder{}, shared.NotFound("Order")
	}
	if order.BillFileURL == nil {
		order.BillFileURL = existing.BillFileURL
	}
	order.Items = nil
	m.state.orders[order.ID] = order
	return order, nil
}

func (m *memoryOrderRepo) Delete(_ context.Context, id int64) error {
	if _, ok := m.state.orders[id]; !ok {
		return shared.NotFound("Order")
	}
	delete(m.state.orders, id)
	return nil
}

func (m *memoryOrderRepo) Summary(_ context.Context, supplierID int64) (OrderSummary, error) {
	var s OrderSummary
	for _, o := range m.state.orders {
		if o.SupplierID != supplierID {
			continue
		}
		s.TotalPaid += o.PaidAmount
		s.TotalPending += o.BalanceAmount
		s.OrderCount++
	}
	return s, nil
}

func (m *memoryOrderRepo) DistributorSummary(_ context.Context) ([]DistributorTotals, error) {
	out := make([]DistributorTotals, 0, len(m.state.suppliers))
	for id, name := range m.state.suppliers {
		t := DistributorTotals{ID: id, Name: name}
		for _, o := range m.state.orders {
			if o.SupplierID == id {
				t.TotalAmount += o.TotalAmount
				t.TotalPaid += o.PaidAmount
				t.TotalPending += o.BalanceAmount
				t.OrderCount++
			}
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TotalAmount > out[j].TotalAmount })
	return out, nil
}

type recordingPublisher struct {
	received []StockReceivedEvent
}

func (p *recordingPublisher) StockReceived(_ context.Context, evt StockReceivedEvent) {
	p.received = append(p.received, evt)
}

package products

import (
	"context"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mnb-billing/mnb-pos/internal/shared"
)

type memoryProductRepo struct {
	rows   map[int64]Product
	nextID int64
}

func newMemoryProductRepo() *memoryProductRepo {
	return &memoryProductRepo{rows: map[int64]Product{}, nextID: 1}
}

func (m *memoryProductRepo) List(context.Context) ([]Product, error) {
	out := make([]Product, 0, len(m.rows))
	for _, p := range m.rows {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *memoryProductRepo) Get(_ context.Context, id int64) (Product, error) {
	p, ok := m.rows[id]
	if !ok {
		return Product{}, shared.NotFound("Product")
	}
	return p, nil
}

func (m *memoryProductRepo) GetByBarcode(_ context.Context, barcode string) (Product, error) {
	for _, p := range m.rows {
		if p.Barcode != nil && *p.Barcode == barcode {
			return p, nil
		}
	}
	return Product{}, shared.NotFound("Product")
}

func (m *memoryProductRepo) Search(_ context.Context, term string) ([]Product, error) {
	needle := strings.ToLower(term)
	out := []Product{}
	for _, p := range m.rows {
		category := ""
		if p.Category != nil {
			category = *p.Category
		}
		if strings.Contains(strings.ToLower(p.Name), needle) || strings.Contains(strings.ToLower(category), needle) ||
			(p.Barcode != nil && *p.Barcode == term) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memoryProductRepo) barcodeTaken(barcode *string, except int64) bool {
	if barcode == nil {
		return false
	}
	for id, p := range m.rows {
		if id != except && p.Barcode != nil && *p.Barcode == *barcode {
			return true
		}
	}
	return false
}

func (m *memoryProductRepo) Create(_ context.Context, in ProductInput) (Product, error) {
	if m.barcodeTaken(in.Barcode, 0) {
		return Product{}, ErrDuplicateBarcode
	}
	p := fromInput(m.nextID, in)
	m.rows[p.ID] = p
	m.nextID++
	return p, nil
}

func (m *memoryProductRepo) Update(_ context.Context, id int64, in ProductInput) (Product, error) {
	if _, ok := m.rows[id]; !ok {
		return Product{}, shared.NotFound("Product")
	}
	if m.barcodeTaken(in.Barcode, id) {
		return Product{}, ErrDuplicateBarcode
	}
	p := fromInput(id, in)
	m.rows[id] = p
	return p, nil
}

func (m *memoryProductRepo) Delete(_ context.Context, id int64) error {
	if _, ok := m.rows[id]; !ok {
		return shared.NotFound("Product")
	}
	delete(m.rows, id)
	return nil
}

func fromInput(id int64, in ProductInput) Product {
	p := Product{ID: id, Name: in.Name, Category: in.Category, Price: in.Price, Quantity: in.Quantity,
		Stocks: *in.Stocks, Unit: in.Unit, GSTPercent: in.GSTPercent, Barcode: in.Barcode, CreatedAt: time.Now()}
	if in.CostPrice != nil {
		p.CostPrice = *in.CostPrice
	}
	return p
}

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }

func validInput() ProductInput {
	return ProductInput{Name: "Basmati Rice", Category: strPtr("Grains"), Price: 120, Stocks: intPtr(40), Unit: UnitKg, GSTPercent: 5}
}

func TestCreateValidatesMandatoryFields(t *testing.T) {
	svc := NewService(newMemoryProductRepo())

	cases := map[string]func(*ProductInput){
		"missing name":   func(in *ProductInput) { in.Name = "  " },
		"zero price":     func(in *ProductInput) { in.Price = 0 },
		"missing stocks": func(in *ProductInput) { in.Stocks = nil },
		"negative stock": func(in *ProductInput) { in.Stocks = intPtr(-1) },
		"bad unit":       func(in *ProductInput) { in.Unit = "box" },
		"gst too high":   func(in *ProductInput) { in.GSTPercent = 101 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := validInput()
			mutate(&in)
			_, err := svc.Create(context.Background(), in)
			require.ErrorIs(t, err, shared.ErrValidation)
		})
	}
}

func TestCreateAcceptsZeroStockAndTrimsFields(t *testing.T) {
	svc := NewService(newMemoryProductRepo())
	in := validInput()
	in.Name = "  Milk  "
	in.Stocks = intPtr(0)
	in.Unit = UnitLitre
	in.Barcode = strPtr("  ")

	p, err := svc.Create(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "Milk", p.Name)
	assert.Equal(t, 0, p.Stocks)
	assert.Nil(t, p.Barcode)
}

func TestDuplicateBarcodeIsConflict(t *testing.T) {
	svc := NewService(newMemoryProductRepo())
	first := validInput()
	first.Barcode = strPtr("8901234567890")
	_, err := svc.Create(context.Background(), first)
	require.NoError(t, err)

	second := validInput()
	second.Name = "Other"
	second.Barcode = strPtr("8901234567890")
	_, err = svc.Create(context.Background(), second)
	require.ErrorIs(t, err, shared.ErrConflict)
}

func TestSearchAndBarcodeLookup(t *testing.T) {
	repo := newMemoryProductRepo()
	svc := NewService(repo)
	rice := validInput()
	rice.Barcode = strPtr("111")
	_, err := svc.Create(context.Background(), rice)
	require.NoError(t, err)
	oil := validInput()
	oil.Name = "Sunflower Oil"
	oil.Category = strPtr("Oils")
	oil.Unit = UnitLitre
	_, err = svc.Create(context.Background(), oil)
	require.NoError(t, err)

	found, err := svc.Search(context.Background(), "  grain ")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Basmati Rice", found[0].Name)

	found, err = svc.Search(context.Background(), "111")
	require.NoError(t, err)
	require.Len(t, found, 1)

	empty, err := svc.Search(context.Background(), "   ")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	byCode, err := svc.GetByBarcode(context.Background(), " 111 ")
	require.NoError(t, err)
	assert.Equal(t, "Basmati Rice", byCode.Name)

	_, err = svc.GetByBarcode(context.Background(), " ")
	require.ErrorIs(t, err, shared.ErrNotFound)
	_, err = svc.GetByBarcode(context.Background(), "999")
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestUpdateAndDeleteMissingProduct(t *testing.T) {
	svc := NewService(newMemoryProductRepo())
	_, err := svc.Update(context.Background(), 77, validInput())
	require.ErrorIs(t, err, shared.ErrNotFound)
	require.ErrorIs(t, svc.Delete(context.Background(), 77), shared.ErrNotFound)
	_, err = svc.Get(context.Background(), 0)
	require.ErrorIs(t, err, shared.ErrNotFound)
}

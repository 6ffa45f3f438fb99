package products

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/mnb-billing/mnb-pos/internal/platform/db"
	"github.com/mnb-billing/mnb-pos/internal/shared"
)

// ErrDuplicateBarcode is returned when another product already owns the barcode.
var ErrDuplicateBarcode = fmt.Errorf("%w: barcode already assigned to another product", shared.ErrConflict)

// ErrProductInUse is returned when deleting a product referenced by bills or orders.
var ErrProductInUse = fmt.Errorf("%w: product is referenced by bills or distributor orders", shared.ErrConflict)

type Repository interface {
	List(ctx context.Context) ([]Product, error)
	Get(ctx context.Context, id int64) (Product, error)
	GetByBarcode(ctx context.Context, barcode string) (Product, error)
	Search(ctx context.Context, term string) ([]Product, error)
	Create(ctx context.Context, in ProductInput) (Product, error)
	Update(ctx context.Context, id int64, in ProductInput) (Product, error)
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	db db.DBTX
}

func NewRepository(conn db.DBTX) Repository {
	return &repository{db: conn}
}

const productColumns = `id, name, category, price, cost_price, quantity, stocks, unit, gst_percent, barcode, created_at, updated_at`

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Name, &p.Category, &p.Price, &p.CostPrice, &p.Quantity, &p.Stocks, &p.Unit, &p.GSTPercent, &p.Barcode, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (r *repository) queryProducts(ctx context.Context, query string, args ...any) ([]Product, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := []Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *repository) List(ctx context.Context) ([]Product, error) {
	return r.queryProducts(ctx, `SELECT `+productColumns+` FROM products ORDER BY created_at DESC, id DESC`)
}

func (r *repository) Get(ctx context.Context, id int64) (Product, error) {
	p, err := scanProduct(r.db.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	return p, mapNoRows(err)
}

func (r *repository) GetByBarcode(ctx context.Context, barcode string) (Product, error) {
	p, err := scanProduct(r.db.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE barcode = $1`, barcode))
	return p, mapNoRows(err)
}

func (r *repository) Search(ctx context.Context, term string) ([]Product, error) {
	return r.queryProducts(ctx, `SELECT `+productColumns+` FROM products
WHERE name ILIKE $1 OR category ILIKE $1 OR barcode = $2
ORDER BY name ASC`, "%"+term+"%", term)
}

func (r *repository) Create(ctx context.Context, in ProductInput) (Product, error) {
	costPrice := 0.0
	if in.CostPrice != nil {
		costPrice = *in.CostPrice
	}
	p, err := scanProduct(r.db.QueryRow(ctx, `INSERT INTO products (name, category, price, cost_price, quantity, stocks, unit, gst_percent, barcode)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING `+productColumns,
		in.Name, in.Category, in.Price, costPrice, in.Quantity, *in.Stocks, in.Unit, in.GSTPercent, in.Barcode))
	return p, mapWriteErr(err)
}

func (r *repository) Update(ctx context.Context, id int64, in ProductInput) (Product, error) {
	p, err := scanProduct(r.db.QueryRow(ctx, `UPDATE products
SET name = $1, category = $2, price = $3, cost_price = COALESCE($4, cost_price), quantity = $5,
    stocks = $6, unit = $7, gst_percent = $8, barcode = $9, updated_at = NOW()
WHERE id = $10
RETURNING `+productColumns,
		in.Name, in.Category, in.Price, in.CostPrice, in.Quantity, *in.Stocks, in.Unit, in.GSTPercent, in.Barcode, id))
	return p, mapWriteErr(err)
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return ErrProductInUse
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.NotFound("Product")
	}
	return nil
}

func mapNoRows(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return shared.NotFound("Product")
	}
	return err
}

func mapWriteErr(err error) error {
	if err == nil {
		return nil
	}
	if db.IsUniqueViolation(err) {
		return ErrDuplicateBarcode
	}
	return mapNoRows(err)
}

package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/mnb-billing/mnb-pos/internal/platform/db"
)

// Repository exposes the read aggregations behind the reports.
type Repository interface {
	Totals(ctx context.Context) (revenue float64, bills int, err error)
	ProductCounts(ctx context.Context, threshold int) (products, lowStock int, err error)
	Revenue(ctx context.Context, w Window) (float64, error)
	Profit(ctx context.Context, w Window) (float64, error)
	DailySales(ctx context.Context, since time.Time) ([]SalesPoint, error)
	MonthlySales(ctx context.Context, since time.Time) ([]SalesPoint, error)
	TopProducts(ctx context.Context, w Window, limit int) ([]TopProduct, error)
	SalesByHour(ctx context.Context, since time.Time) ([]HourBucket, error)
	LowStock(ctx context.Context, threshold int) ([]LowStockProduct, error)
}

// PGRepository implements Repository on PostgreSQL.
type PGRepository struct {
	db db.DBTX
}

// NewRepository constructs the PostgreSQL repository.
func NewRepository(conn db.DBTX) *PGRepository {
	return &PGRepository{db: conn}
}

func (r *PGRepository) Totals(ctx context.Context) (float64, int, error) {
	var revenue float64
	var bills int
	err := r.db.QueryRow(ctx, `SELECT COALESCE(SUM(grand_total), 0)::float8, COUNT(*) FROM bills`).Scan(&revenue, &bills)
	if err != nil {
		return 0, 0, fmt.Errorf("analytics: totals: %w", err)
	}
	return revenue, bills, nil
}

func (r *PGRepository) ProductCounts(ctx context.Context, threshold int) (int, int, error) {
	var products, low int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*), COUNT(*) FILTER (WHERE stocks < $1) FROM products`, threshold).Scan(&products, &low)
	if err != nil {
		return 0, 0, fmt.Errorf("analytics: product counts: %w", err)
	}
	return products, low, nil
}

func (r *PGRepository) Revenue(ctx context.Context, w Window) (float64, error) {
	var revenue float64
	err := r.db.QueryRow(ctx, `SELECT COALESCE(SUM(grand_total), 0)::float8 FROM bills
WHERE created_at >= $1 AND created_at < $2`, w.From, w.To).Scan(&revenue)
	if err != nil {
		return 0, fmt.Errorf("analytics: revenue: %w", err)
	}
	return revenue, nil
}

// Profit sums (unit_price - cost_price) * quantity over the window's bill
// items, using the product's current cost price.
func (r *PGRepository) Profit(ctx context.Context, w Window) (float64, error) {
	var profit float64
	err := r.db.QueryRow(ctx, `SELECT COALESCE(SUM((bi.unit_price - COALESCE(p.cost_price, 0)) * bi.quantity), 0)::float8
FROM bill_items bi
JOIN bills b ON b.id = bi.bill_id
JOIN products p ON p.id = bi.product_id
WHERE b.created_at >= $1 AND b.created_at < $2`, w.From, w.To).Scan(&profit)
	if err != nil {
		return 0, fmt.Errorf("analytics: profit: %w", err)
	}
	return profit, nil
}

func (r *PGRepository) DailySales(ctx context.Context, since time.Time) ([]SalesPoint, error) {
	return r.sales(ctx, `SELECT to_char(created_at, 'YYYY-MM-DD') AS label, COALESCE(SUM(grand_total), 0)::float8, COUNT(*)
FROM bills WHERE created_at >= $1
GROUP BY label ORDER BY label`, since)
}

func (r *PGRepository) MonthlySales(ctx context.Context, since time.Time) ([]SalesPoint, error) {
	return r.sales(ctx, `SELECT to_char(created_at, 'YYYY-MM') AS label, COALESCE(SUM(grand_total), 0)::float8, COUNT(*)
FROM bills WHERE created_at >= $1
GROUP BY label ORDER BY label`, since)
}

func (r *PGRepository) sales(ctx context.Context, query string, since time.Time) ([]SalesPoint, error) {
	rows, err := r.db.Query(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("analytics: sales report: %w", err)
	}
	points, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (SalesPoint, error) {
		var p SalesPoint
		err := row.Scan(&p.Label, &p.Revenue, &p.BillCount)
		return p, err
	})
	if err != nil {
		return nil, fmt.Errorf("analytics: sales report: %w", err)
	}
	return points, nil
}

func (r *PGRepository) TopProducts(ctx context.Context, w Window, limit int) ([]TopProduct, error) {
	rows, err := r.db.Query(ctx, `SELECT p.id, p.name, SUM(bi.quantity), COALESCE(SUM(bi.subtotal), 0)::float8 AS total_sales
FROM bill_items bi
JOIN bills b ON b.id = bi.bill_id
JOIN products p ON p.id = bi.product_id
WHERE b.created_at >= $1 AND b.created_at < $2
GROUP BY p.id, p.name
ORDER BY total_sales DESC
LIMIT $3`, w.From, w.To, limit)
	if err != nil {
		return nil, fmt.Errorf("analytics: top products: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (TopProduct, error) {
		var t TopProduct
		err := row.Scan(&t.ProductID, &t.Name, &t.TotalQuantity, &t.TotalSales)
		return t, err
	})
	if err != nil {
		return nil, fmt.Errorf("analytics: top products: %w", err)
	}
	return out, nil
}

func (r *PGRepository) SalesByHour(ctx context.Context, since time.Time) ([]HourBucket, error) {
	rows, err := r.db.Query(ctx, `SELECT EXTRACT(HOUR FROM created_at)::int AS hour, COUNT(*), COALESCE(SUM(grand_total), 0)::float8
FROM bills WHERE created_at >= $1
GROUP BY hour ORDER BY hour`, since)
	if err != nil {
		return nil, fmt.Errorf("analytics: sales by hour: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (HourBucket, error) {
		var b HourBucket
		err := row.Scan(&b.Hour, &b.BillCount, &b.Revenue)
		return b, err
	})
	if err != nil {
		return nil, fmt.Errorf("analytics: sales by hour: %w", err)
	}
	return out, nil
}

func (r *PGRepository) LowStock(ctx context.Context, threshold int) ([]LowStockProduct, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, stocks FROM products WHERE stocks < $1 ORDER BY stocks, name`, threshold)
	if err != nil {
		return nil, fmt.Errorf("analytics: low stock: %w", err)
	}
	out, err := pgx.CollectRows(rows, pgx.RowToStructByPos[LowStockProduct])
	if err != nil {
		return nil, fmt.Errorf("analytics: low stock: %w", err)
	}
	return out, nil
}

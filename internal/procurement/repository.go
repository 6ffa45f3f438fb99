package procurement

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mnb-billing/mnb-pos/internal/platform/db"
	"github.com/mnb-billing/mnb-pos/internal/shared"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool db.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// TxRepository exposes transactional operations.
type TxRepository interface {
	InsertOrder(ctx context.Context, order DistributorOrder) (int64, error)
	InsertItem(ctx context.Context, item DistributorOrderItem) (int64, error)
	// ReceiveProduct adds quantity to stock and records unitCost as the latest cost price.
	ReceiveProduct(ctx context.Context, productID int64, quantity int, unitCost float64) error
}

type txRepo struct {
	tx pgx.Tx
}

// WithTx wraps callback in a READ COMMITTED transaction so stock increments
// apply on top of bills committed meanwhile.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithReadCommitted(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepo{tx: tx})
	})
}

func insertOrder(ctx context.Context, q db.DBTX, order DistributorOrder) (int64, error) {
	var id int64
	err := q.QueryRow(ctx, `INSERT INTO distributor_orders (
    supplier_id, ordered_date, delivered_date, delivery_status, invoice_number,
    total_amount, paid_amount, balance_amount, payment_status, notes, bill_file_url
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
RETURNING id`,
		order.SupplierID, order.OrderedDate, order.DeliveredDate, order.DeliveryStatus, order.InvoiceNumber,
		order.TotalAmount, order.PaidAmount, order.BalanceAmount, order.PaymentStatus, order.Notes, order.BillFileURL,
	).Scan(&id)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return 0, shared.NotFound("Supplier")
		}
		return 0, fmt.Errorf("procurement: insert order: %w", err)
	}
	return id, nil
}

func (t *txRepo) InsertOrder(ctx context.Context, order DistributorOrder) (int64, error) {
	return insertOrder(ctx, t.tx, order)
}

func (t *txRepo) InsertItem(ctx context.Context, item DistributorOrderItem) (int64, error) {
	var id int64
	err := t.tx.QueryRow(ctx, `INSERT INTO distributor_order_items (order_id, product_id, quantity, unit_price, subtotal)
VALUES ($1, $2, $3, $4, $5)
RETURNING id`, item.OrderID, item.ProductID, item.Quantity, item.UnitPrice, item.Subtotal).Scan(&id)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return 0, &shared.ProductNotFoundError{ProductID: item.ProductID}
		}
		return 0, fmt.Errorf("procurement: insert order item: %w", err)
	}
	return id, nil
}

func (t *txRepo) ReceiveProduct(ctx context.Context, productID int64, quantity int, unitCost float64) error {
	tag, err := t.tx.Exec(ctx, `UPDATE products SET stocks = stocks + $1, cost_price = $2, updated_at = NOW() WHERE id = $3`,
		quantity, unitCost, productID)
	if err != nil {
		return fmt.Errorf("procurement: receive product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return &shared.ProductNotFoundError{ProductID: productID}
	}
	return nil
}

const orderColumns = `id, supplier_id, ordered_date, delivered_date, delivery_status, invoice_number,
total_amount, paid_amount, balance_amount, payment_status, notes, bill_file_url, created_at`

func scanOrder(row pgx.Row) (DistributorOrder, error) {
	var o DistributorOrder
	err := row.Scan(&o.ID, &o.SupplierID, &o.OrderedDate, &o.DeliveredDate, &o.DeliveryStatus, &o.InvoiceNumber,
		&o.TotalAmount, &o.PaidAmount, &o.BalanceAmount, &o.PaymentStatus, &o.Notes, &o.BillFileURL, &o.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return DistributorOrder{}, shared.NotFound("Order")
	}
	return o, err
}

// ListBySupplier returns the supplier's orders, newest order date first.
func (r *Repository) ListBySupplier(ctx context.Context, supplierID int64) ([]DistributorOrder, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+orderColumns+`
FROM distributor_orders
WHERE supplier_id = $1
ORDER BY COALESCE(ordered_date::timestamptz, created_at) DESC, id DESC`, supplierID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := []DistributorOrder{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// Get loads an order and its received lines.
func (r *Repository) Get(ctx context.Context, id int64) (DistributorOrder, error) {
	order, err := scanOrder(r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM distributor_orders WHERE id = $1`, id))
	if err != nil {
		return DistributorOrder{}, err
	}

	rows, err := r.pool.Query(ctx, `SELECT id, order_id, product_id, quantity, unit_price, subtotal
FROM distributor_order_items
WHERE order_id = $1
ORDER BY id`, id)
	if err != nil {
		return DistributorOrder{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var item DistributorOrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.UnitPrice, &item.Subtotal); err != nil {
			return DistributorOrder{}, err
		}
		order.Items = append(order.Items, item)
	}
	return order, rows.Err()
}

// Create inserts an order outside a receipt.
func (r *Repository) Create(ctx context.Context, order DistributorOrder) (DistributorOrder, error) {
	id, err := insertOrder(ctx, r.pool, order)
	if err != nil {
		return DistributorOrder{}, err
	}
	return r.Get(ctx, id)
}

// Update overwrites the order; a nil BillFileURL keeps the stored file.
func (r *Repository) Update(ctx context.Context, order DistributorOrder) (DistributorOrder, error) {
	return scanOrder(r.pool.QueryRow(ctx, `UPDATE distributor_orders SET
    ordered_date = $1, delivered_date = $2, delivery_status = $3, invoice_number = $4,
    total_amount = $5, paid_amount = $6, balance_amount = $7, payment_status = $8,
    notes = $9, bill_file_url = COALESCE($10, bill_file_url)
WHERE id = $11
RETURNING `+orderColumns,
		order.OrderedDate, order.DeliveredDate, order.DeliveryStatus, order.InvoiceNumber,
		order.TotalAmount, order.PaidAmount, order.BalanceAmount, order.PaymentStatus,
		order.Notes, order.BillFileURL, order.ID))
}

// Delete removes the order and its lines. Stock is not reversed.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM distributor_orders WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.NotFound("Order")
	}
	return nil
}

// Summary totals one supplier's payments.
func (r *Repository) Summary(ctx context.Context, supplierID int64) (OrderSummary, error) {
	var s OrderSummary
	err := r.pool.QueryRow(ctx, `SELECT COALESCE(SUM(paid_amount), 0), COALESCE(SUM(balance_amount), 0), COUNT(*)
FROM distributor_orders WHERE supplier_id = $1`, supplierID).Scan(&s.TotalPaid, &s.TotalPending, &s.OrderCount)
	return s, err
}

// DistributorSummary totals orders for every supplier.
func (r *Repository) DistributorSummary(ctx context.Context) ([]DistributorTotals, error) {
	rows, err := r.pool.Query(ctx, `SELECT s.id, s.name,
    COALESCE(SUM(o.total_amount), 0) AS total_amount,
    COALESCE(SUM(o.paid_amount), 0),
    COALESCE(SUM(o.balance_amount), 0),
    COUNT(o.id)
FROM suppliers s
LEFT JOIN distributor_orders o ON o.supplier_id = s.id
GROUP BY s.id, s.name
ORDER BY total_amount DESC, s.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	totals := []DistributorTotals{}
	for rows.Next() {
		var t DistributorTotals
		if err := rows.Scan(&t.ID, &t.Name, &t.TotalAmount, &t.TotalPaid, &t.TotalPending, &t.OrderCount); err != nil {
			return nil, err
		}
		totals = append(totals, t)
	}
	return totals, rows.Err()
}

package billing

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mnb-billing/mnb-pos/internal/platform/db"
	"github.com/mnb-billing/mnb-pos/internal/shared"
)

// ErrBillNumberTaken signals a bill number collision; the sale is rolled back.
var ErrBillNumberTaken = fmt.Errorf("%w: bill number already issued, retry", shared.ErrConflict)

// Repository exposes bill persistence.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	Recent(ctx context.Context, limit int) ([]Bill, error)
	Get(ctx context.Context, id int64) (BillDetail, error)
	History(ctx context.Context, filter HistoryFilter) ([]Bill, int, error)
	Customers(ctx context.Context) ([]Customer, error)
	CustomerHistory(ctx context.Context, phone string) ([]CustomerPurchase, error)
}

// TxRepository is the write surface available inside a bill transaction.
type TxRepository interface {
	ProductStock(ctx context.Context, productID int64) (ProductStock, error)
	InsertBill(ctx context.Context, bill Bill) (int64, error)
	InsertItem(ctx context.Context, item BillItem) (int64, error)
	// DeductStock decrements stock only when enough remains; false means nothing changed.
	DeductStock(ctx context.Context, productID int64, quantity int) (bool, error)
}

// PGRepository implements Repository on PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

type txRepo struct {
	tx pgx.Tx
}

// WithTx runs fn in a READ COMMITTED transaction so the conditional
// decrement observes concurrent commits instead of failing serialization.
func (r *PGRepository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithReadCommitted(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepo{tx: tx})
	})
}

func (t *txRepo) ProductStock(ctx context.Context, productID int64) (ProductStock, error) {
	stock := ProductStock{ID: productID}
	err := t.tx.QueryRow(ctx, `SELECT name, stocks FROM products WHERE id = $1`, productID).Scan(&stock.Name, &stock.Stocks)
	if errors.Is(err, pgx.ErrNoRows) {
		return ProductStock{}, &shared.ProductNotFoundError{ProductID: productID}
	}
	return stock, err
}

func (t *txRepo) InsertBill(ctx context.Context, bill Bill) (int64, error) {
	var id int64
	err := t.tx.QueryRow(ctx, `INSERT INTO bills (bill_number, customer_name, customer_phone, total_amount, tax_amount, discount_amount, grand_total, cashier_id)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id`,
		bill.BillNumber, bill.CustomerName, bill.CustomerPhone, bill.TotalAmount, bill.TaxAmount, bill.DiscountAmount, bill.GrandTotal, bill.CashierID,
	).Scan(&id)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return 0, ErrBillNumberTaken
		}
		return 0, fmt.Errorf("billing: insert bill: %w", err)
	}
	return id, nil
}

func (t *txRepo) InsertItem(ctx context.Context, item BillItem) (int64, error) {
	var id int64
	err := t.tx.QueryRow(ctx, `INSERT INTO bill_items (bill_id, product_id, quantity, unit_price, gst_amount, subtotal)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id`,
		item.BillID, item.ProductID, item.Quantity, item.UnitPrice, item.GSTAmount, item.Subtotal,
	).Scan(&id)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return 0, &shared.ProductNotFoundError{ProductID: item.ProductID}
		}
		return 0, fmt.Errorf("billing: insert bill item: %w", err)
	}
	return id, nil
}

func (t *txRepo) DeductStock(ctx context.Context, productID int64, quantity int) (bool, error) {
	tag, err := t.tx.Exec(ctx, `UPDATE products SET stocks = stocks - $1, updated_at = NOW() WHERE id = $2 AND stocks >= $1`, quantity, productID)
	if err != nil {
		return false, fmt.Errorf("billing: deduct stock: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

const billColumns = `b.id, b.bill_number, b.customer_name, b.customer_phone, b.total_amount, b.tax_amount,
b.discount_amount, b.grand_total, b.cashier_id, COALESCE(u.full_name, u.username), b.created_at`

func scanBill(row pgx.Row) (Bill, error) {
	var b Bill
	err := row.Scan(&b.ID, &b.BillNumber, &b.CustomerName, &b.CustomerPhone, &b.TotalAmount, &b.TaxAmount,
		&b.DiscountAmount, &b.GrandTotal, &b.CashierID, &b.CashierName, &b.CreatedAt)
	return b, err
}

func collectBills(rows pgx.Rows) ([]Bill, error) {
	defer rows.Close()
	bills := []Bill{}
	for rows.Next() {
		b, err := scanBill(rows)
		if err != nil {
			return nil, err
		}
		bills = append(bills, b)
	}
	return bills, rows.Err()
}

// Recent returns the latest bills with cashier names.
func (r *PGRepository) Recent(ctx context.Context, limit int) ([]Bill, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+billColumns+`
FROM bills b
JOIN users u ON u.id = b.cashier_id
ORDER BY b.created_at DESC, b.id DESC
LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	return collectBills(rows)
}

// Get loads a bill with its lines and product names.
func (r *PGRepository) Get(ctx context.Context, id int64) (BillDetail, error) {
	bill, err := scanBill(r.pool.QueryRow(ctx, `SELECT `+billColumns+`
FROM bills b
JOIN users u ON u.id = b.cashier_id
WHERE b.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return BillDetail{}, shared.NotFound("Bill")
		}
		return BillDetail{}, err
	}

	rows, err := r.pool.Query(ctx, `SELECT bi.id, bi.bill_id, bi.product_id, p.name, bi.quantity, bi.unit_price, bi.gst_amount, bi.subtotal
FROM bill_items bi
JOIN products p ON p.id = bi.product_id
WHERE bi.bill_id = $1
ORDER BY bi.id`, id)
	if err != nil {
		return BillDetail{}, err
	}
	defer rows.Close()

	detail := BillDetail{Bill: bill, Items: []BillItem{}}
	for rows.Next() {
		var item BillItem
		if err := rows.Scan(&item.ID, &item.BillID, &item.ProductID, &item.ProductName, &item.Quantity, &item.UnitPrice, &item.GSTAmount, &item.Subtotal); err != nil {
			return BillDetail{}, err
		}
		detail.Items = append(detail.Items, item)
	}
	return detail, rows.Err()
}

// History returns one page of bills matching filter plus the total match count.
func (r *PGRepository) History(ctx context.Context, filter HistoryFilter) ([]Bill, int, error) {
	conds := []string{"1=1"}
	args := []any{}
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, strings.ReplaceAll(cond, "?", "$"+strconv.Itoa(len(args))))
	}
	if filter.From != nil {
		add("b.created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		add("b.created_at < ?", *filter.To)
	}
	if filter.Phone != "" {
		add("b.customer_phone = ?", filter.Phone)
	}
	if filter.BillNumber != "" {
		add("b.bill_number ILIKE ?", "%"+filter.BillNumber+"%")
	}
	where := strings.Join(conds, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM bills b WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, filter.PerPage, (filter.Page-1)*filter.PerPage)
	rows, err := r.pool.Query(ctx, `SELECT `+billColumns+`
FROM bills b
JOIN users u ON u.id = b.cashier_id
WHERE `+where+`
ORDER BY b.created_at DESC, b.id DESC
LIMIT $`+strconv.Itoa(len(args)-1)+` OFFSET $`+strconv.Itoa(len(args)), args...)
	if err != nil {
		return nil, 0, err
	}
	bills, err := collectBills(rows)
	return bills, total, err
}

// Customers groups bills with a phone number by (phone, name).
func (r *PGRepository) Customers(ctx context.Context) ([]Customer, error) {
	rows, err := r.pool.Query(ctx, `SELECT customer_name, customer_phone, COUNT(id), COALESCE(SUM(grand_total), 0), MAX(created_at)
FROM bills
WHERE customer_phone IS NOT NULL AND customer_phone <> ''
GROUP BY customer_phone, customer_name
ORDER BY MAX(created_at) DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	customers := []Customer{}
	for rows.Next() {
		var c Customer
		if err := rows.Scan(&c.CustomerName, &c.CustomerPhone, &c.VisitCount, &c.TotalSpend, &c.LastVisit); err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

// CustomerHistory lists every line bought under the phone number, newest first.
func (r *PGRepository) CustomerHistory(ctx context.Context, phone string) ([]CustomerPurchase, error) {
	rows, err := r.pool.Query(ctx, `SELECT b.created_at, b.bill_number, p.name, bi.quantity, bi.unit_price, bi.subtotal
FROM bills b
JOIN bill_items bi ON bi.bill_id = b.id
JOIN products p ON p.id = bi.product_id
WHERE b.customer_phone = $1
ORDER BY b.created_at DESC, bi.id`, phone)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	history := []CustomerPurchase{}
	for rows.Next() {
		var p CustomerPurchase
		if err := rows.Scan(&p.CreatedAt, &p.BillNumber, &p.ProductName, &p.Quantity, &p.UnitPrice, &p.Subtotal); err != nil {
			return nil, err
		}
		history = append(history, p)
	}
	return history, rows.Err()
}

var _ Repository = (*PGRepository)(nil)

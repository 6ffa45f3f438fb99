package suppliers

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/mnb-billing/mnb-pos/internal/platform/db"
	"github.com/mnb-billing/mnb-pos/internal/shared"
)

type Repository interface {
	List(ctx context.Context) ([]Supplier, error)
	Get(ctx context.Context, id int64) (Supplier, error)
	Create(ctx context.Context, in SupplierInput) (Supplier, error)
	Update(ctx context.Context, id int64, in SupplierInput) (Supplier, error)
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	db db.DBTX
}

func NewRepository(conn db.DBTX) Repository {
	return &repository{db: conn}
}

const supplierColumns = `id, name, contact_person, phone, product_categories, address, gst_number, created_at, updated_at`

func scanSupplier(row pgx.Row) (Supplier, error) {
	var s Supplier
	err := row.Scan(&s.ID, &s.Name, &s.ContactPerson, &s.Phone, &s.ProductCategories, &s.Address, &s.GSTNumber, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Supplier{}, shared.NotFound("Supplier")
	}
	return s, err
}

func (r *repository) List(ctx context.Context) ([]Supplier, error) {
	rows, err := r.db.Query(ctx, `SELECT `+supplierColumns+` FROM suppliers ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	suppliers := []Supplier{}
	for rows.Next() {
		s, err := scanSupplier(rows)
		if err != nil {
			return nil, err
		}
		suppliers = append(suppliers, s)
	}
	return suppliers, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Supplier, error) {
	return scanSupplier(r.db.QueryRow(ctx, `SELECT `+supplierColumns+` FROM suppliers WHERE id = $1`, id))
}

func (r *repository) Create(ctx context.Context, in SupplierInput) (Supplier, error) {
	return scanSupplier(r.db.QueryRow(ctx, `INSERT INTO suppliers (name, contact_person, phone, product_categories, address, gst_number)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING `+supplierColumns,
		in.Name, in.ContactPerson, in.Phone, in.ProductCategories, in.Address, in.GSTNumber))
}

func (r *repository) Update(ctx context.Context, id int64, in SupplierInput) (Supplier, error) {
	return scanSupplier(r.db.QueryRow(ctx, `UPDATE suppliers
SET name = $1, contact_person = $2, phone = $3, product_categories = $4, address = $5, gst_number = $6, updated_at = NOW()
WHERE id = $7
RETURNING `+supplierColumns,
		in.Name, in.ContactPerson, in.Phone, in.ProductCategories, in.Address, in.GSTNumber, id))
}

// Delete removes the supplier; its distributor orders cascade.
func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM suppliers WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.NotFound("Supplier")
	}
	return nil
}

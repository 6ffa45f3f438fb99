package suppliers

import (
	"time"
)

// Supplier is a distributor the shop buys stock from.
type Supplier struct {
	ID                int64     `json:"id"`
	Name              string    `json:"name"`
	ContactPerson     *string   `json:"contact_person"`
	Phone             *string   `json:"phone"`
	ProductCategories *string   `json:"product_categories"`
	Address           *string   `json:"address"`
	GSTNumber         *string   `json:"gst_number"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// SupplierInput is the create/update payload.
type SupplierInput struct {
	Name              string  `json:"name" validate:"required,max=150"`
	ContactPerson     *string `json:"contact_person" validate:"omitempty,max=100"`
	Phone             *string `json:"phone" validate:"omitempty,max=20"`
	ProductCategories *string `json:"product_categories" validate:"omitempty,max=255"`
	Address           *string `json:"address"`
	GSTNumber         *string `json:"gst_number" validate:"omitempty,max=20"`
}

package billing

import "time"

// Bill is a committed sale header.
type Bill struct {
	ID             int64     `json:"id"`
	BillNumber     string    `json:"bill_number"`
	CustomerName   *string   `json:"customer_name"`
	CustomerPhone  *string   `json:"customer_phone"`
	TotalAmount    float64   `json:"total_amount"`
	TaxAmount      float64   `json:"tax_amount"`
	DiscountAmount float64   `json:"discount_amount"`
	GrandTotal     float64   `json:"grand_total"`
	CashierID      int64     `json:"cashier_id"`
	CashierName    string    `json:"cashier_name,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// BillItem is one sold line. GST and subtotal are computed server-side.
type BillItem struct {
	ID          int64   `json:"id"`
	BillID      int64   `json:"bill_id"`
	ProductID   int64   `json:"product_id"`
	ProductName string  `json:"product_name,omitempty"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	GSTAmount   float64 `json:"gst_amount"`
	Subtotal    float64 `json:"subtotal"`
}

// BillDetail is a bill with its lines.
type BillDetail struct {
	Bill
	Items []BillItem `json:"items"`
}

// CreatedBill is returned by CreateBill.
type CreatedBill struct {
	ID         int64  `json:"id"`
	BillNumber string `json:"billNumber"`
}

// ProductStock is the lock-free snapshot read before writing a bill.
type ProductStock struct {
	ID     int64
	Name   string
	Stocks int
}

// Customer aggregates bills sharing a phone and name.
type Customer struct {
	CustomerName  *string   `json:"customer_name"`
	CustomerPhone string    `json:"customer_phone"`
	VisitCount    int       `json:"visit_count"`
	TotalSpend    float64   `json:"total_spend"`
	LastVisit     time.Time `json:"last_visit"`
}

// CustomerPurchase is one line of a customer's purchase history.
type CustomerPurchase struct {
	CreatedAt   time.Time `json:"created_at"`
	BillNumber  string    `json:"bill_number"`
	ProductName string    `json:"product_name"`
	Quantity    int       `json:"quantity"`
	UnitPrice   float64   `json:"unit_price"`
	Subtotal    float64   `json:"subtotal"`
}

// HistoryFilter narrows the paginated bill history.
type HistoryFilter struct {
	From       *time.Time
	To         *time.Time
	Phone      string
	BillNumber string
	Page       int
	PerPage    int
}

// BillCreatedEvent is published after a bill transaction commits.
type BillCreatedEvent struct {
	BillID     int64
	BillNumber string
	CashierID  int64
	GrandTotal float64
	ProductIDs []int64
	CreatedAt  time.Time
}

// Rejection reasons reported for refused bills.
const (
	RejectValidation        = "validation"
	RejectProductNotFound   = "product_not_found"
	RejectInsufficientStock = "insufficient_stock"
	RejectInternal          = "internal"
)

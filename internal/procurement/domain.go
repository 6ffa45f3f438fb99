package procurement

import "time"

// DeliveryStatus tracks whether a distributor order has arrived.
type DeliveryStatus string

const (
	DeliveryPending   DeliveryStatus = "Pending"
	DeliveryDelivered DeliveryStatus = "Delivered"
	DeliveryCancelled DeliveryStatus = "Cancelled"
)

// PaymentStatus tracks how much of an order has been paid.
type PaymentStatus string

const (
	PaymentPaid    PaymentStatus = "Paid"
	PaymentPartial PaymentStatus = "Partial"
	PaymentUnpaid  PaymentStatus = "Unpaid"
)

// DistributorOrder is a purchase from a supplier, with its payment position.
type DistributorOrder struct {
	ID             int64                  `json:"id"`
	SupplierID     int64                  `json:"supplier_id"`
	OrderedDate    *time.Time             `json:"ordered_date"`
	DeliveredDate  *time.Time             `json:"delivered_date"`
	DeliveryStatus DeliveryStatus         `json:"delivery_status"`
	InvoiceNumber  *string                `json:"invoice_number"`
	TotalAmount    float64                `json:"total_amount"`
	PaidAmount     float64                `json:"paid_amount"`
	BalanceAmount  float64                `json:"balance_amount"`
	PaymentStatus  PaymentStatus          `json:"payment_status"`
	Notes          *string                `json:"notes"`
	BillFileURL    *string                `json:"bill_file_url"`
	CreatedAt      time.Time              `json:"created_at"`
	Items          []DistributorOrderItem `json:"items,omitempty"`
}

// DistributorOrderItem is one received product line.
type DistributorOrderItem struct {
	ID        int64   `json:"id"`
	OrderID   int64   `json:"order_id"`
	ProductID int64   `json:"product_id"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	Subtotal  float64 `json:"subtotal"`
}

// OrderSummary aggregates one supplier's orders.
type OrderSummary struct {
	TotalPaid    float64 `json:"total_paid"`
	TotalPending float64 `json:"total_pending"`
	OrderCount   int     `json:"order_count"`
}

// DistributorTotals aggregates orders per supplier, including suppliers without orders.
type DistributorTotals struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	TotalAmount  float64 `json:"total_amount"`
	TotalPaid    float64 `json:"total_paid"`
	TotalPending float64 `json:"total_pending"`
	OrderCount   int     `json:"order_count"`
}

// ReceiveResult is returned by ReceiveStock.
type ReceiveResult struct {
	ID          int64   `json:"id"`
	TotalAmount float64 `json:"total_amount"`
	Message     string  `json:"message"`
}

// OrderInput is the create/update payload for distributor orders. On update
// nil fields keep their stored value.
type OrderInput struct {
	OrderedDate    *string         `json:"ordered_date" validate:"omitempty,datetime=2006-01-02"`
	DeliveredDate  *string         `json:"delivered_date" validate:"omitempty,datetime=2006-01-02"`
	DeliveryStatus *DeliveryStatus `json:"delivery_status" validate:"omitempty,oneof=Pending Delivered Cancelled"`
	InvoiceNumber  *string         `json:"invoice_number" validate:"omitempty,max=80"`
	TotalAmount    *float64        `json:"total_amount" validate:"omitempty,gte=0"`
	PaidAmount     *float64        `json:"paid_amount" validate:"omitempty,gte=0"`
	BalanceAmount  *float64        `json:"balance_amount" validate:"omitempty,gte=0"`
	PaymentStatus  *PaymentStatus  `json:"payment_status" validate:"omitempty,oneof=Paid Partial Unpaid"`
	Notes          *string         `json:"notes"`
	BillFileURL    *string         `json:"bill_file_url" validate:"omitempty,max=512"`
}

// ReceiveStockRequest records a delivered invoice and restocks its products.
type ReceiveStockRequest struct {
	SupplierID    int64         `json:"supplierId" validate:"required,gt=0"`
	InvoiceNumber string        `json:"invoiceNumber" validate:"max=80"`
	OrderDate     string        `json:"orderDate" validate:"omitempty,datetime=2006-01-02"`
	DeliveredDate string        `json:"deliveredDate" validate:"omitempty,datetime=2006-01-02"`
	PaidAmount    float64       `json:"paidAmount"`
	Notes         string        `json:"notes"`
	Items         []ReceiveItem `json:"items"`
}

// ReceiveItem is one received line. Negative numbers are treated as zero
// and lines with no quantity are skipped.
type ReceiveItem struct {
	ProductID int64   `json:"productId"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
}

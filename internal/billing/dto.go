package billing

import "strings"

// CreateBillRequest is the POST /bills payload. Client totals are stored as sent.
type CreateBillRequest struct {
	CustomerName   string            `json:"customerName" validate:"max=100"`
	CustomerPhone  string            `json:"customerPhone" validate:"max=15"`
	Items          []BillItemRequest `json:"items" validate:"required,min=1,dive"`
	TotalAmount    float64           `json:"totalAmount" validate:"gte=0"`
	TaxAmount      float64           `json:"taxAmount" validate:"gte=0"`
	DiscountAmount float64           `json:"discountAmount" validate:"gte=0"`
	GrandTotal     float64           `json:"grandTotal" validate:"gte=0"`
}

// BillItemRequest is one requested line.
type BillItemRequest struct {
	ProductID  int64   `json:"productId" validate:"required,gte=1"`
	Quantity   int     `json:"quantity" validate:"required,gte=1"`
	UnitPrice  float64 `json:"unitPrice" validate:"gte=0"`
	GSTPercent float64 `json:"gstPercent" validate:"gte=0,lte=100"`
}

func (r *CreateBillRequest) normalize() {
	r.CustomerName = strings.TrimSpace(r.CustomerName)
	r.CustomerPhone = strings.TrimSpace(r.CustomerPhone)
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

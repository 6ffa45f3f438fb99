package products

import "time"

// Unit is the measurement unit a product is sold in.
type Unit string

const (
	UnitKg     Unit = "kg"
	UnitLitre  Unit = "ltr"
	UnitMl     Unit = "ml"
	UnitPacket Unit = "packet"
	UnitPiece  Unit = "pcs"
)

// Product is a catalog entry with its on-hand stock.
type Product struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	Category   *string   `json:"category"`
	Price      float64   `json:"price"`
	CostPrice  float64   `json:"cost_price"`
	Quantity   float64   `json:"quantity"`
	Stocks     int       `json:"stocks"`
	Unit       Unit      `json:"unit"`
	GSTPercent float64   `json:"gst_percent"`
	Barcode    *string   `json:"barcode"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ProductInput is the create/update payload.
type ProductInput struct {
	Name       string   `json:"name" validate:"required,max=150"`
	Category   *string  `json:"category" validate:"omitempty,max=100"`
	Price      float64  `json:"price" validate:"required,gt=0"`
	CostPrice  *float64 `json:"cost_price" validate:"omitempty,gte=0"`
	Quantity   float64  `json:"quantity" validate:"gte=0"`
	Stocks     *int     `json:"stocks" validate:"required,gte=0"`
	Unit       Unit     `json:"unit" validate:"required,oneof=kg ltr ml packet pcs"`
	GSTPercent float64  `json:"gst_percent" validate:"gte=0,lte=100"`
	Barcode    *string  `json:"barcode" validate:"omitempty,max=64"`
}

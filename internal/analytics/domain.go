package analytics

import "time"

// Period selects the window of a sales report or top products listing.
type Period string

const (
	PeriodDaily   Period = "daily"
	PeriodMonthly Period = "monthly"
	PeriodYearly  Period = "yearly"
)

// DefaultLowStockThreshold matches the dashboard low-stock card.
const DefaultLowStockThreshold = 10

// TopProductsLimit caps the top products listing.
const TopProductsLimit = 10

// DashboardStats is the headline card set.
type DashboardStats struct {
	TotalRevenue  float64 `json:"total_revenue"`
	BillCount     int     `json:"bill_count"`
	ProductCount  int     `json:"product_count"`
	LowStockCount int     `json:"low_stock_count"`
	TodayRevenue  float64 `json:"today_revenue"`
	MonthRevenue  float64 `json:"month_revenue"`
	TodayProfit   float64 `json:"today_profit"`
	MonthProfit   float64 `json:"month_profit"`
}

// SalesPoint is one bucket of a sales report. Label is YYYY-MM-DD for daily
// reports and YYYY-MM for monthly ones.
type SalesPoint struct {
	Label     string  `json:"label"`
	Revenue   float64 `json:"revenue"`
	BillCount int     `json:"bill_count"`
}

// TopProduct ranks a product by sales value.
type TopProduct struct {
	ProductID     int64   `json:"product_id"`
	Name          string  `json:"name"`
	TotalQuantity int     `json:"total_quantity"`
	TotalSales    float64 `json:"total_sales"`
}

// HourBucket aggregates bills by hour of day.
type HourBucket struct {
	Name      string  `json:"name"`
	Hour      int     `json:"hour"`
	BillCount int     `json:"bill_count"`
	Revenue   float64 `json:"revenue"`
}

// LowStockProduct is a product below the restock threshold.
type LowStockProduct struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Stocks int    `json:"stocks"`
}

// Window is a half-open time range [From, To).
type Window struct {
	From time.Time
	To   time.Time
}

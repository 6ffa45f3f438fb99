package billing

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// LineAmounts returns the GST amount and subtotal of a line, rounded to 2 places.
// gst = unitPrice*qty*gstPercent/100, subtotal = unitPrice*qty + gst.
func LineAmounts(unitPrice float64, quantity int, gstPercent float64) (gst, subtotal decimal.Decimal) {
	base := decimal.NewFromFloat(unitPrice).Mul(decimal.NewFromInt(int64(quantity)))
	gst = base.Mul(decimal.NewFromFloat(gstPercent)).Div(hundred).Round(2)
	subtotal = base.Add(gst).Round(2)
	return gst, subtotal
}

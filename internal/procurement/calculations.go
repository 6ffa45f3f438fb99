package procurement

import "github.com/shopspring/decimal"

// Balance returns max(0, total - paid) rounded to 2 places.
func Balance(total, paid float64) float64 {
	b := decimal.NewFromFloat(total).Sub(decimal.NewFromFloat(paid)).Round(2)
	if b.IsNegative() {
		return 0
	}
	return b.InexactFloat64()
}

// DerivePaymentStatus: nothing owed is Paid, something paid is Partial, otherwise Unpaid.
func DerivePaymentStatus(balance, paid float64) PaymentStatus {
	switch {
	case balance <= 0:
		return PaymentPaid
	case paid > 0:
		return PaymentPartial
	default:
		return PaymentUnpaid
	}
}

// settle applies an explicit balance or status when supplied, deriving the rest.
func settle(total, paid float64, balance *float64, status *PaymentStatus) (float64, PaymentStatus) {
	b := Balance(total, paid)
	if balance != nil {
		b = *balance
	}
	if status != nil && *status != "" {
		return b, *status
	}
	return b, DerivePaymentStatus(b, paid)
}

type receiptLine struct {
	ProductID int64
	Quantity  int
	UnitPrice float64
	Subtotal  float64
}

// receiptLines clamps negative values to zero, drops empty lines and totals the rest.
func receiptLines(items []ReceiveItem) ([]receiptLine, float64) {
	total := decimal.Zero
	lines := make([]receiptLine, 0, len(items))
	for _, it := range items {
		qty := max(it.Quantity, 0)
		price := max(it.UnitPrice, 0)
		subtotal := decimal.NewFromFloat(price).Mul(decimal.NewFromInt(int64(qty))).Round(2)
		total = total.Add(subtotal)
		if qty == 0 {
			continue
		}
		lines = append(lines, receiptLine{ProductID: it.ProductID, Quantity: qty, UnitPrice: price, Subtotal: subtotal.InexactFloat64()})
	}
	return lines, total.Round(2).InexactFloat64()
}

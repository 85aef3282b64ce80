// Package pricing holds the order money arithmetic. Amounts are exact
// decimals; nothing here rounds.
package pricing

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	TaxRate      = decimal.RequireFromString("0.05")
	ShippingCost = decimal.RequireFromString("5.00")
)

var (
	ErrNegativePrice = errors.New("price must not be negative")
	ErrBadQuantity   = errors.New("quantity must be positive")
)

type Line struct {
	UnitPrice decimal.Decimal
	Quantity  int
}

func (l Line) Total() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type Totals struct {
	Subtotal     decimal.Decimal `json:"subtotal"`
	TaxAmount    decimal.Decimal `json:"tax_amount"`
	ShippingCost decimal.Decimal `json:"shipping_cost"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
}

// Compute sums the lines and applies the flat tax rate and shipping fee.
func Compute(lines []Line) (Totals, error) {
	subtotal := decimal.Zero
	for _, l := range lines {
		if l.UnitPrice.IsNegative() {
			return Totals{}, ErrNegativePrice
		}
		if l.Quantity <= 0 {
			return Totals{}, ErrBadQuantity
		}
		subtotal = subtotal.Add(l.Total())
	}

	tax := subtotal.Mul(TaxRate)
	return Totals{
		Subtotal:     subtotal,
		TaxAmount:    tax,
		ShippingCost: ShippingCost,
		TotalAmount:  subtotal.Add(tax).Add(ShippingCost),
	}, nil
}

// ValidPrice reports whether p is positive with at most two fractional digits.
func ValidPrice(p decimal.Decimal) bool {
	return p.IsPositive() && p.Equal(p.Truncate(2))
}

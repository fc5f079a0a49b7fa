package domain

import "github.com/shopspring/decimal"

// Discount reduces a booking total once, at confirmation time. It never
// rewrites the prices of individual tickets.
type Discount struct {
	ID                string
	Code              string
	Percentage        decimal.Decimal
	FlatAmount        decimal.Decimal
	MaxDiscountAmount decimal.Decimal
}

var hundred = decimal.NewFromInt(100)

// AmountOff computes the reduction for a given total: percentage of the total
// plus the flat amount, capped at MaxDiscountAmount and never more than the
// total itself.
func (d Discount) AmountOff(total decimal.Decimal) decimal.Decimal {
	off := total.Mul(d.Percentage).Div(hundred).Add(d.FlatAmount)

	if d.MaxDiscountAmount.IsPositive() && off.GreaterThan(d.MaxDiscountAmount) {
		off = d.MaxDiscountAmount
	}

	if off.GreaterThan(total) {
		off = total
	}

	return off
}

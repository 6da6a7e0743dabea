package domain

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// ApplyDeduction returns gross minus rate percent of gross, rounded to the
// nearest whole unit.
func ApplyDeduction(gross, rate decimal.Decimal) decimal.Decimal {
	return gross.Sub(Prorate(rate, hundred, gross, decimal.Zero)).Round(0)
}

// NetAmount returns the unsigned monetary effect of an event.
func NetAmount(e *RawEvent) decimal.Decimal {
	if e.DeductionRate != nil && !e.DeductionRate.IsZero() {
		return ApplyDeduction(e.Amount, *e.DeductionRate)
	}
	return e.Amount
}

// SignedAmount returns the net amount carrying the event's direction.
func SignedAmount(e *RawEvent) decimal.Decimal {
	net := NetAmount(e)
	if e.Sign == SignCredit {
		return net.Neg()
	}
	return net
}

// Prorate splits parentValue across sub-entities in proportion to their
// gross. When parentGross is zero the fallback is returned. The result is
// not rounded. A deduction is the share rate/100 of the gross.
func Prorate(subGross, parentGross, parentValue, fallback decimal.Decimal) decimal.Decimal {
	if parentGross.IsZero() {
		return fallback
	}
	return subGross.Div(parentGross).Mul(parentValue)
}

// Present rounds an amount to the nearest whole unit for display.
func Present(d decimal.Decimal) decimal.Decimal {
	return d.Round(0)
}

// CoerceAmount maps a stored amount to a usable gross amount. Null and
// negative amounts become zero and are reported as malformed.
func CoerceAmount(n decimal.NullDecimal) (amount decimal.Decimal, malformed bool) {
	if !n.Valid || n.Decimal.IsNegative() {
		return decimal.Zero, true
	}
	return n.Decimal, false
}

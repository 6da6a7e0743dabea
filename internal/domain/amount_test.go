package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestApplyDeduction(t *testing.T) {
	tests := []struct {
		name  string
		gross string
		rate  string
		want  string
	}{
		{name: "two percent of ten thousand", gross: "10000", rate: "2", want: "9800"},
		{name: "rounds to nearest unit", gross: "333", rate: "1.5", want: "328"},
		{name: "rounds half up", gross: "150", rate: "1", want: "149"},
		{name: "zero rate", gross: "1250", rate: "0", want: "1250"},
		{name: "full deduction", gross: "500", rate: "100", want: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertDecimal(t, tt.want, ApplyDeduction(dec(tt.gross), dec(tt.rate)))
		})
	}
}

func TestNetAmount(t *testing.T) {
	rate := dec("2")
	batch := RawEvent{Amount: dec("10000"), DeductionRate: &rate, Sign: SignDebit}
	assertDecimal(t, "9800", NetAmount(&batch))
	assertDecimal(t, "9800", SignedAmount(&batch))

	plain := RawEvent{Amount: dec("120.50"), Sign: SignCredit}
	assertDecimal(t, "120.50", NetAmount(&plain))
	assertDecimal(t, "-120.50", SignedAmount(&plain))
}

func TestProrate(t *testing.T) {
	assertDecimal(t, "10", Prorate(dec("25"), dec("100"), dec("40"), decimal.Zero))
	assertDecimal(t, "7", Prorate(dec("25"), decimal.Zero, dec("40"), dec("7")))
	assertDecimal(t, "200", Prorate(dec("2"), hundred, dec("10000"), decimal.Zero))

	third := Prorate(dec("1"), dec("3"), dec("100"), decimal.Zero)
	assert.False(t, third.Equal(Present(third)), "proration must stay unrounded")
	assertDecimal(t, "33", Present(third))
}

func TestCoerceAmount(t *testing.T) {
	got, malformed := CoerceAmount(nullDec("42"))
	assertDecimal(t, "42", got)
	assert.False(t, malformed)

	got, malformed = CoerceAmount(decimal.NullDecimal{})
	assert.True(t, got.IsZero())
	assert.True(t, malformed)

	got, malformed = CoerceAmount(nullDec("-5"))
	assert.True(t, got.IsZero())
	assert.True(t, malformed)
}

package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func day(s string) time.Time {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func dayPtr(s string) *time.Time {
	t := day(s)
	return &t
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func nullDec(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(dec(s))
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	if !got.Equal(dec(want)) {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func event(id string, date string, sign Sign, amount string, createdAt time.Time) RawEvent {
	return RawEvent{
		SourceType:       SourceTypeBankTransaction,
		SourceID:         id,
		StoredDate:       day(date),
		Amount:           dec(amount),
		Sign:             sign,
		TieBreakPriority: PriorityFor(sign),
		CreatedAt:        createdAt,
	}
}

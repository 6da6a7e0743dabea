package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerEntry is one materialized row of a subject's ledger. Exactly one of
// Debit and Credit is non-zero, except for a malformed source amount that
// was coerced to zero, which keeps its row with both sides zero.
type LedgerEntry struct {
	SubjectKind SubjectKind
	SubjectID   string
	// Seq is the zero-based position of the entry in replay order.
	Seq         int
	Date        time.Time
	Type        string
	Description string
	Debit       decimal.Decimal
	Credit      decimal.Decimal
	Balance     decimal.Decimal
	SourceType  SourceType
	SourceID    string
}

// Net returns debit minus credit.
func (e *LedgerEntry) Net() decimal.Decimal {
	return e.Debit.Sub(e.Credit)
}

// DateRange is an inclusive range of calendar days. Nil bounds are open.
type DateRange struct {
	From *time.Time
	To   *time.Time
}

// Validate checks the range is not inverted.
func (r DateRange) Validate() error {
	if r.From != nil && r.To != nil && DateOnly(*r.From).After(DateOnly(*r.To)) {
		return ErrInvalidDateRange
	}
	return nil
}

// Contains reports whether the day of t falls inside the range.
func (r DateRange) Contains(t time.Time) bool {
	day := DateOnly(t)
	if r.From != nil && day.Before(DateOnly(*r.From)) {
		return false
	}
	if r.To != nil && day.After(DateOnly(*r.To)) {
		return false
	}
	return true
}

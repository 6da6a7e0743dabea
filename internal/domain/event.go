package domain

import (
	"fmt"
	"regexp"
	"time"

	"github.com/shopspring/decimal"
)

// Sign carries the direction of an event. Amounts are never negative.
type Sign int

const (
	SignDebit  Sign = 1
	SignCredit Sign = -1
)

// IsValid checks if the sign is +1 or -1.
func (s Sign) IsValid() bool {
	return s == SignDebit || s == SignCredit
}

// Tie-break priorities within a calendar month. Debits sort before credits.
const (
	PriorityOpening = 0
	PriorityDebit   = 1
	PriorityCredit  = 2
)

// PriorityFor returns the tie-break priority for a sign.
func PriorityFor(s Sign) int {
	if s == SignDebit {
		return PriorityDebit
	}
	return PriorityCredit
}

// Entry type labels shown on ledger rows.
const (
	EntryTypeAdvance     = "Advance"
	EntryTypeRecovery    = "Recovery"
	EntryTypeAdjustment  = "Adjustment"
	EntryTypeSalaryIn    = "Salary"
	EntryTypeSalaryOut   = "Salary Paid"
	EntryTypeDailyCash   = "Daily Cash"
	EntryTypeBankReceipt = "Bank Receipt"
	EntryTypeBankPayment = "Bank Payment"
	EntryTypeTransferIn  = "Transfer In"
	EntryTypeTransferOut = "Transfer Out"
	EntryTypeBalanceBF   = "Balance B/F"
)

var bankTransferNarration = regexp.MustCompile(`(?i)^Bank Transfer`)

// RawEvent is a source record normalized into the shape the engine replays.
type RawEvent struct {
	SourceType SourceType
	SourceID   string
	// Leg distinguishes the halves of a self-cancelling pair.
	Leg       int
	SubjectID string

	StoredDate time.Time
	// EffectiveDateHint is a cheque date, when the instrument has one.
	EffectiveDateHint *time.Time

	// Amount is the gross amount before any deduction.
	Amount decimal.Decimal
	// DeductionRate is a percentage taken off the gross amount.
	DeductionRate *decimal.Decimal
	Sign          Sign

	// RequiresVerification marks events that can be pending.
	RequiresVerification bool
	IsVerified           bool
	VerifiedDate         *time.Time

	EntryType        string
	Description      string
	TieBreakPriority int
	CreatedAt        time.Time

	// Malformed is set when the amount had to be coerced to zero.
	Malformed bool
}

// Ref returns the source record reference of the event.
func (e *RawEvent) Ref() SourceRef {
	return SourceRef{Type: e.SourceType, ID: e.SourceID}
}

// Validate checks the event invariants.
func (e *RawEvent) Validate() error {
	if !e.SourceType.IsValid() {
		return fmt.Errorf("%w: %q", ErrUnknownSourceType, e.SourceType)
	}
	if e.Amount.IsNegative() {
		return ErrInvalidAmount
	}
	if !e.Sign.IsValid() {
		return ErrInvalidSign
	}
	if e.DeductionRate != nil && (e.DeductionRate.IsNegative() || e.DeductionRate.GreaterThan(hundred)) {
		return ErrInvalidDeduction
	}
	return nil
}

// IsSettled reports whether the event counts as settled. Events that do not
// go through verification are always settled.
func (e *RawEvent) IsSettled() bool {
	return !e.RequiresVerification || e.IsVerified
}

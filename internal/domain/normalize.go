package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// NormalizeAdvance converts an advance. Pay is a debit, Received a credit.
func NormalizeAdvance(a *Advance) RawEvent {
	amount, malformed := CoerceAmount(a.Paid)
	sign, entryType, ok := advanceDirection(a.TransactionType, EntryTypeAdvance, EntryTypeRecovery)
	if !ok {
		amount, malformed = decimal.Zero, true
	}
	return RawEvent{
		SourceType:       SourceTypeAdvance,
		SourceID:         a.ID,
		SubjectID:        a.EmployeeID,
		StoredDate:       a.Date,
		Amount:           amount,
		Sign:             sign,
		EntryType:        entryType,
		Description:      describe(a.Remarks, "Advance "+strings.ToLower(a.TransactionType)),
		TieBreakPriority: PriorityFor(sign),
		CreatedAt:        a.CreatedAt,
		Malformed:        malformed,
	}
}

// NormalizeAdjustment converts an adjustment using the advance sign convention.
func NormalizeAdjustment(a *Adjustment) RawEvent {
	amount, malformed := CoerceAmount(a.Amount)
	sign, _, ok := advanceDirection(a.Type, EntryTypeAdjustment, EntryTypeAdjustment)
	if !ok {
		amount, malformed = decimal.Zero, true
	}
	return RawEvent{
		SourceType:       SourceTypeAdjustment,
		SourceID:         a.ID,
		SubjectID:        a.EmployeeID,
		StoredDate:       a.Date,
		Amount:           amount,
		Sign:             sign,
		EntryType:        EntryTypeAdjustment,
		Description:      describe(a.Remarks, "Adjustment "+strings.ToLower(a.Type)),
		TieBreakPriority: PriorityFor(sign),
		CreatedAt:        a.CreatedAt,
		Malformed:        malformed,
	}
}

// NormalizePayroll converts a payroll run into an equal debit and credit
// dated the last day of the payroll month.
func NormalizePayroll(p *Payroll) []RawEvent {
	amount, malformed := CoerceAmount(p.NetTotal)
	date, err := p.PeriodEnd()
	if err != nil {
		date, amount, malformed = p.CreatedAt, decimal.Zero, true
	}
	legs := []struct {
		sign      Sign
		entryType string
		text      string
	}{
		{SignDebit, EntryTypeSalaryIn, "Salary for " + p.MonthYear},
		{SignCredit, EntryTypeSalaryOut, "Salary paid for " + p.MonthYear},
	}
	events := make([]RawEvent, 0, len(legs))
	for i, leg := range legs {
		events = append(events, RawEvent{
			SourceType:       SourceTypePayroll,
			SourceID:         p.ID,
			Leg:              i,
			SubjectID:        p.EmployeeID,
			StoredDate:       date,
			Amount:           amount,
			Sign:             leg.sign,
			EntryType:        leg.entryType,
			Description:      leg.text,
			TieBreakPriority: PriorityFor(leg.sign),
			CreatedAt:        p.CreatedAt,
			Malformed:        malformed,
		})
	}
	return events
}

// NormalizeBankTransaction converts a direct bank transaction. It returns
// false for transactions mirrored from a bank transfer.
func NormalizeBankTransaction(t *BankTransaction) (RawEvent, bool) {
	if t.IsTransferSourced() {
		return RawEvent{}, false
	}
	amount, malformed := CoerceAmount(t.Amount)
	sign, entryType := SignCredit, EntryTypeBankPayment
	if t.IsInflow() {
		sign, entryType = SignDebit, EntryTypeBankReceipt
	}
	return RawEvent{
		SourceType:        SourceTypeBankTransaction,
		SourceID:          t.ID,
		SubjectID:         t.BankID,
		StoredDate:        t.Date,
		EffectiveDateHint: t.ChequeDate,
		Amount:            amount,
		Sign:              sign,
		IsVerified:        t.IsVerified,
		VerifiedDate:      t.VerifiedDate,
		EntryType:         entryType,
		Description:       describe(t.Narration, describe(t.Remarks, entryType)),
		TieBreakPriority:  PriorityFor(sign),
		CreatedAt:         t.CreatedAt,
		Malformed:         malformed,
	}, true
}

// NormalizeDailyCash converts a daily-cash batch deposited into a bank. It
// returns false for batches not banked.
func NormalizeDailyCash(b *DailyCashBatch) (RawEvent, bool) {
	if !strings.EqualFold(strings.TrimSpace(b.Mode), DailyCashModeBank) {
		return RawEvent{}, false
	}
	amount, malformed := CoerceAmount(b.TotalAmount)
	var rate *decimal.Decimal
	if b.IsDeduction && b.DeductedAmount.Valid {
		r := b.DeductedAmount.Decimal
		if r.IsNegative() || r.GreaterThan(hundred) {
			amount, malformed = decimal.Zero, true
		} else {
			rate = &r
		}
	}
	return RawEvent{
		SourceType:           SourceTypeDailyCash,
		SourceID:             b.ID,
		SubjectID:            b.BankID,
		StoredDate:           b.Date,
		Amount:               amount,
		DeductionRate:        rate,
		Sign:                 SignDebit,
		RequiresVerification: true,
		IsVerified:           b.IsVerified,
		VerifiedDate:         b.VerifiedDate,
		EntryType:            EntryTypeDailyCash,
		Description:          describe(b.Remarks, describe(batchLabel(b), EntryTypeDailyCash)),
		TieBreakPriority:     PriorityDebit,
		CreatedAt:            b.CreatedAt,
		Malformed:            malformed,
	}, true
}

// NormalizeBankTransfer converts a transfer for the ledger of bankID. The
// destination side is a debit and the source side a credit. It returns false
// when bankID is not a party. A transfer from a bank to itself has no effect.
func NormalizeBankTransfer(t *BankTransfer, bankID string) (RawEvent, bool) {
	var (
		sign      Sign
		entryType string
		text      string
	)
	switch bankID {
	case t.ToBankID:
		sign, entryType, text = SignDebit, EntryTypeTransferIn, "Transfer from "+t.FromBankName
	case t.FromBankID:
		sign, entryType, text = SignCredit, EntryTypeTransferOut, "Transfer to "+t.ToBankName
	default:
		return RawEvent{}, false
	}
	amount, malformed := CoerceAmount(t.Amount)
	if t.Validate() != nil {
		sign, amount, malformed = SignDebit, decimal.Zero, true
	}
	return RawEvent{
		SourceType:       SourceTypeBankTransfer,
		SourceID:         t.ID,
		SubjectID:        bankID,
		StoredDate:       t.Date,
		Amount:           amount,
		Sign:             sign,
		EntryType:        entryType,
		Description:      describe(t.Remarks, text),
		TieBreakPriority: PriorityFor(sign),
		CreatedAt:        t.CreatedAt,
		Malformed:        malformed,
	}, true
}

// IsMirrorOf reports whether the advance was materialized from the
// adjustment. An explicit origin link is authoritative. Unlinked advances
// match on day, type and exact amount.
func IsMirrorOf(adv *Advance, adj *Adjustment) bool {
	if adv.EmployeeID != adj.EmployeeID {
		return false
	}
	if adv.OriginAdjustmentID != nil {
		return *adv.OriginAdjustmentID == adj.ID
	}
	if !adv.Paid.Valid || !adj.Amount.Valid {
		return false
	}
	return DateOnly(adv.Date).Equal(DateOnly(adj.Date)) &&
		strings.EqualFold(strings.TrimSpace(adv.TransactionType), strings.TrimSpace(adj.Type)) &&
		adv.Paid.Decimal.Equal(adj.Amount.Decimal)
}

func advanceDirection(txType, debitLabel, creditLabel string) (Sign, string, bool) {
	switch {
	case strings.EqualFold(strings.TrimSpace(txType), TransactionTypePay):
		return SignDebit, debitLabel, true
	case strings.EqualFold(strings.TrimSpace(txType), TransactionTypeReceived):
		return SignCredit, creditLabel, true
	default:
		return SignDebit, debitLabel, false
	}
}

func batchLabel(b *DailyCashBatch) string {
	if b.BatchNo == "" {
		return ""
	}
	return "Batch " + b.BatchNo
}

func describe(text, fallback string) string {
	if s := strings.TrimSpace(text); s != "" {
		return s
	}
	return fallback
}

package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Accumulate walks events in the given order and materializes ledger rows.
// The opening balance seeds the running balance; it is not emitted as a row.
// Balances are kept unrounded.
func Accumulate(kind SubjectKind, subjectID string, opening decimal.Decimal, events []RawEvent) []*LedgerEntry {
	entries := make([]*LedgerEntry, 0, len(events))
	running := opening
	for i := range events {
		e := &events[i]
		net := NetAmount(e)
		entry := &LedgerEntry{
			SubjectKind: kind,
			SubjectID:   subjectID,
			Seq:         i,
			Date:        ResolveEffectiveDate(e),
			Type:        e.EntryType,
			Description: e.Description,
			Debit:       decimal.Zero,
			Credit:      decimal.Zero,
			SourceType:  e.SourceType,
			SourceID:    e.SourceID,
		}
		if e.Sign == SignDebit {
			entry.Debit = net
		} else {
			entry.Credit = net
		}
		running = running.Add(entry.Net())
		entry.Balance = running
		entries = append(entries, entry)
	}
	return entries
}

// ClosingBalance returns the balance after the last entry, or opening when
// there are none.
func ClosingBalance(opening decimal.Decimal, entries []*LedgerEntry) decimal.Decimal {
	if len(entries) == 0 {
		return opening
	}
	return entries[len(entries)-1].Balance
}

// OpeningBalanceBefore sums every event settling strictly before the
// cutoff day onto the opening seed.
func OpeningBalanceBefore(opening decimal.Decimal, events []RawEvent, cutoff time.Time) decimal.Decimal {
	day := DateOnly(cutoff)
	balance := opening
	for i := range events {
		if ResolveEffectiveDate(&events[i]).Before(day) {
			balance = balance.Add(SignedAmount(&events[i]))
		}
	}
	return balance
}

// Within returns the events whose effective date falls in r.
func Within(events []RawEvent, r DateRange) []RawEvent {
	out := make([]RawEvent, 0, len(events))
	for i := range events {
		if r.Contains(ResolveEffectiveDate(&events[i])) {
			out = append(out, events[i])
		}
	}
	return out
}

// Settled returns the settled events.
func Settled(events []RawEvent) []RawEvent {
	out := make([]RawEvent, 0, len(events))
	for i := range events {
		if events[i].IsSettled() {
			out = append(out, events[i])
		}
	}
	return out
}

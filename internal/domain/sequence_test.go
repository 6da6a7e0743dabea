package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)

func ids(events []RawEvent) []string {
	out := make([]string, len(events))
	for i := range events {
		out[i] = events[i].SourceID
	}
	return out
}

func TestSequence_DebitBeforeCreditOnSameDay(t *testing.T) {
	credit := event("credit", "2026-02-01", SignCredit, "100", t0)
	debit := event("debit", "2026-02-01", SignDebit, "100", t0.Add(time.Hour))

	got := Sequence([]RawEvent{credit, debit})

	assert.Equal(t, []string{"debit", "credit"}, ids(got))
}

func TestSequence_KeyOrder(t *testing.T) {
	events := []RawEvent{
		event("feb-debit", "2026-02-20", SignDebit, "1", t0),
		event("jan-credit", "2026-01-31", SignCredit, "1", t0),
		event("mar-credit-early", "2026-03-02", SignCredit, "1", t0),
		event("mar-debit-late", "2026-03-28", SignDebit, "1", t0),
		event("mar-debit-early", "2026-03-05", SignDebit, "1", t0),
		event("2025-debit", "2025-12-31", SignDebit, "1", t0),
	}

	got := Sequence(events)

	assert.Equal(t, []string{
		"2025-debit",
		"jan-credit",
		"feb-debit",
		"mar-debit-early",
		"mar-debit-late",
		"mar-credit-early",
	}, ids(got))
}

func TestSequence_CreatedAtBreaksTies(t *testing.T) {
	late := event("late", "2026-02-10", SignDebit, "1", t0.Add(2*time.Minute))
	early := event("early", "2026-02-10", SignDebit, "1", t0)

	assert.Equal(t, []string{"early", "late"}, ids(Sequence([]RawEvent{late, early})))
}

func TestSequence_TotalOrderIsInputIndependent(t *testing.T) {
	a := event("a", "2026-02-10", SignDebit, "1", t0)
	b := event("b", "2026-02-10", SignDebit, "1", t0)
	legs := NormalizePayroll(&Payroll{ID: "p", MonthYear: "2026-02", NetTotal: nullDec("10"), CreatedAt: t0})

	first := Sequence([]RawEvent{a, b, legs[1], legs[0]})
	second := Sequence([]RawEvent{legs[0], b, legs[1], a})

	require.Equal(t, first, second)
}

func TestSequence_UsesEffectiveDate(t *testing.T) {
	cheque := event("cheque", "2026-01-05", SignDebit, "1", t0)
	cheque.EffectiveDateHint = dayPtr("2026-03-01")
	plain := event("plain", "2026-02-01", SignDebit, "1", t0)

	assert.Equal(t, []string{"plain", "cheque"}, ids(Sequence([]RawEvent{cheque, plain})))
}

func TestSequence_DoesNotModifyInput(t *testing.T) {
	events := []RawEvent{
		event("b", "2026-02-02", SignDebit, "1", t0),
		event("a", "2026-02-01", SignDebit, "1", t0),
	}

	_ = Sequence(events)

	assert.Equal(t, []string{"b", "a"}, ids(events))
}

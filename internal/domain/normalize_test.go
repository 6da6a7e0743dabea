package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeAdvance(t *testing.T) {
	pay := NormalizeAdvance(&Advance{ID: "a1", EmployeeID: "e1", Date: day("2026-01-05"), TransactionType: "Pay", Paid: nullDec("300"), CreatedAt: t0})
	assert.Equal(t, SignDebit, pay.Sign)
	assert.Equal(t, PriorityDebit, pay.TieBreakPriority)
	assert.Equal(t, EntryTypeAdvance, pay.EntryType)
	assert.Equal(t, "e1", pay.SubjectID)
	assert.False(t, pay.Malformed)
	require.NoError(t, pay.Validate())

	received := NormalizeAdvance(&Advance{ID: "a2", EmployeeID: "e1", TransactionType: "received", Paid: nullDec("100")})
	assert.Equal(t, SignCredit, received.Sign)
	assert.Equal(t, PriorityCredit, received.TieBreakPriority)
	assert.Equal(t, EntryTypeRecovery, received.EntryType)

	unknown := NormalizeAdvance(&Advance{ID: "a3", TransactionType: "Loan", Paid: nullDec("100")})
	assert.True(t, unknown.Malformed)
	assert.True(t, unknown.Amount.IsZero())

	missing := NormalizeAdvance(&Advance{ID: "a4", TransactionType: "Pay"})
	assert.True(t, missing.Malformed)
	assert.True(t, missing.Amount.IsZero())
	require.NoError(t, missing.Validate())
}

func TestNormalizeAdjustment(t *testing.T) {
	ev := NormalizeAdjustment(&Adjustment{ID: "j1", EmployeeID: "e1", Type: "Received", Amount: nullDec("75"), Remarks: "Adjustment against salary"})

	assert.Equal(t, SourceTypeAdjustment, ev.SourceType)
	assert.Equal(t, SignCredit, ev.Sign)
	assert.Equal(t, "Adjustment against salary", ev.Description)
	assertDecimal(t, "75", ev.Amount)
}

func TestNormalizePayroll(t *testing.T) {
	legs := NormalizePayroll(&Payroll{ID: "p1", EmployeeID: "e1", MonthYear: "2024-02", NetTotal: nullDec("1500")})

	require.Len(t, legs, 2)
	for i, leg := range legs {
		assert.Equal(t, day("2024-02-29"), leg.StoredDate)
		assert.Equal(t, i, leg.Leg)
		assertDecimal(t, "1500", leg.Amount)
	}
	assert.Equal(t, SignDebit, legs[0].Sign)
	assert.Equal(t, SignCredit, legs[1].Sign)

	bad := NormalizePayroll(&Payroll{ID: "p2", MonthYear: "Feb 2024", NetTotal: nullDec("1500"), CreatedAt: t0})
	require.Len(t, bad, 2)
	assert.True(t, bad[0].Malformed)
	assert.True(t, bad[0].Amount.IsZero())
	assert.Equal(t, t0, bad[0].StoredDate)
}

func TestNormalizeBankTransaction_Direction(t *testing.T) {
	tests := []struct {
		name       string
		txType     string
		legacyType string
		want       Sign
	}{
		{name: "deposit", txType: "Deposit", want: SignDebit},
		{name: "received lowercase", txType: "received", want: SignDebit},
		{name: "receipt", txType: "RECEIPT", want: SignDebit},
		{name: "opening balance", txType: "Opening Balance", want: SignDebit},
		{name: "legacy field", txType: "", legacyType: "Deposit", want: SignDebit},
		{name: "withdrawal", txType: "Withdrawal", want: SignCredit},
		{name: "payment", txType: "payment", legacyType: "cheque", want: SignCredit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, ok := NormalizeBankTransaction(&BankTransaction{ID: "t", BankID: "b", Type: tt.txType, TransactionType: tt.legacyType, Amount: nullDec("10")})
			require.True(t, ok)
			assert.Equal(t, tt.want, ev.Sign)
			assert.Equal(t, PriorityFor(tt.want), ev.TieBreakPriority)
		})
	}
}

func TestNormalizeBankTransaction_ExcludesTransfers(t *testing.T) {
	_, ok := NormalizeBankTransaction(&BankTransaction{ID: "t1", RefType: "bank_transfer", Type: "deposit", Amount: nullDec("10")})
	assert.False(t, ok)

	_, ok = NormalizeBankTransaction(&BankTransaction{ID: "t2", Narration: "bank transfer from HQ", Type: "deposit", Amount: nullDec("10")})
	assert.False(t, ok)

	_, ok = NormalizeBankTransaction(&BankTransaction{ID: "t3", Narration: "Refund of Bank Transfer fee", Type: "deposit", Amount: nullDec("10")})
	assert.True(t, ok)
}

func TestNormalizeBankTransaction_ChequeDate(t *testing.T) {
	ev, ok := NormalizeBankTransaction(&BankTransaction{
		ID:         "t1",
		BankID:     "b",
		Date:       day("2026-01-02"),
		Type:       "deposit",
		Amount:     nullDec("10"),
		ChequeDate: dayPtr("2026-01-20"),
	})
	require.True(t, ok)
	assert.False(t, ev.RequiresVerification)
	assert.Equal(t, day("2026-01-20"), ResolveEffectiveDate(&ev))
}

func TestNormalizeDailyCash(t *testing.T) {
	base := DailyCashBatch{
		ID:           "dc",
		BankID:       "b",
		Mode:         "bank",
		Date:         day("2026-01-02"),
		TotalAmount:  nullDec("5000"),
		IsVerified:   true,
		VerifiedDate: dayPtr("2026-01-04"),
	}

	ev, ok := NormalizeDailyCash(&base)
	require.True(t, ok)
	assert.True(t, ev.RequiresVerification)
	assert.Nil(t, ev.DeductionRate)
	assertDecimal(t, "5000", NetAmount(&ev))
	assert.Equal(t, day("2026-01-04"), ResolveEffectiveDate(&ev))

	withRateOff := base
	withRateOff.DeductedAmount = nullDec("3")
	ev, _ = NormalizeDailyCash(&withRateOff)
	assertDecimal(t, "5000", NetAmount(&ev))

	withRate := withRateOff
	withRate.IsDeduction = true
	ev, _ = NormalizeDailyCash(&withRate)
	assertDecimal(t, "4850", NetAmount(&ev))

	badRate := withRate
	badRate.DeductedAmount = nullDec("140")
	ev, _ = NormalizeDailyCash(&badRate)
	assert.True(t, ev.Malformed)
	assert.True(t, NetAmount(&ev).IsZero())

	cash := base
	cash.Mode = "Cash"
	_, ok = NormalizeDailyCash(&cash)
	assert.False(t, ok)
}

func TestNormalizeBankTransfer(t *testing.T) {
	tr := &BankTransfer{ID: "tr", FromBankID: "a", ToBankID: "b", FromBankName: "Alpha", ToBankName: "Beta", Amount: nullDec("250")}

	in, ok := NormalizeBankTransfer(tr, "b")
	require.True(t, ok)
	assert.Equal(t, SignDebit, in.Sign)
	assert.Equal(t, "Transfer from Alpha", in.Description)

	out, ok := NormalizeBankTransfer(tr, "a")
	require.True(t, ok)
	assert.Equal(t, SignCredit, out.Sign)
	assert.Equal(t, "b", tr.ToBankID)

	_, ok = NormalizeBankTransfer(tr, "c")
	assert.False(t, ok)

	self := &BankTransfer{ID: "self", FromBankID: "a", ToBankID: "a", Amount: nullDec("250")}
	ev, ok := NormalizeBankTransfer(self, "a")
	require.True(t, ok)
	assert.True(t, ev.Malformed)
	assert.True(t, SignedAmount(&ev).IsZero())
}

func TestIsMirrorOf(t *testing.T) {
	adj := &Adjustment{ID: "adj-1", EmployeeID: "e1", Date: day("2026-01-05"), Type: "Pay", Amount: nullDec("200")}
	strPtr := func(s string) *string { return &s }

	tests := []struct {
		name string
		adv  Advance
		want bool
	}{
		{
			name: "same day type and amount",
			adv:  Advance{EmployeeID: "e1", Date: day("2026-01-05"), TransactionType: "Pay", Paid: nullDec("200.00")},
			want: true,
		},
		{
			name: "different amount",
			adv:  Advance{EmployeeID: "e1", Date: day("2026-01-05"), TransactionType: "Pay", Paid: nullDec("201")},
		},
		{
			name: "different day",
			adv:  Advance{EmployeeID: "e1", Date: day("2026-01-06"), TransactionType: "Pay", Paid: nullDec("200")},
		},
		{
			name: "different type",
			adv:  Advance{EmployeeID: "e1", Date: day("2026-01-05"), TransactionType: "Received", Paid: nullDec("200")},
		},
		{
			name: "different employee",
			adv:  Advance{EmployeeID: "e2", Date: day("2026-01-05"), TransactionType: "Pay", Paid: nullDec("200")},
		},
		{
			name: "explicit link wins over mismatching fields",
			adv:  Advance{EmployeeID: "e1", Date: day("2026-02-01"), TransactionType: "Pay", Paid: nullDec("1"), OriginAdjustmentID: strPtr("adj-1")},
			want: true,
		},
		{
			name: "explicit link to another adjustment",
			adv:  Advance{EmployeeID: "e1", Date: day("2026-01-05"), TransactionType: "Pay", Paid: nullDec("200"), OriginAdjustmentID: strPtr("adj-2")},
		},
		{
			name: "null amount never matches",
			adv:  Advance{EmployeeID: "e1", Date: day("2026-01-05"), TransactionType: "Pay", Paid: decimal.NullDecimal{}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsMirrorOf(&tt.adv, adj))
		})
	}
}

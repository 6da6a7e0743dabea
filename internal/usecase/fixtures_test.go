package usecase_test

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/ledgerreplay/internal/domain"
	"github.com/iho/ledgerreplay/internal/usecase"
	"github.com/iho/ledgerreplay/internal/usecase/mocks"
)

var created = time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func dayPtr(s string) *time.Time {
	t := day(s)
	return &t
}

func amount(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func zerologNop() zerolog.Logger { return zerolog.Nop() }

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

type employeeFixture struct {
	employees   *mocks.FakeEmployeeRepository
	advances    *mocks.FakeAdvanceRepository
	adjustments *mocks.FakeAdjustmentRepository
	payrolls    *mocks.FakePayrollRepository
	entries     *mocks.FakeEntryRepository
	txManager   *mocks.FakeTxManager
}

func newEmployeeFixture() *employeeFixture {
	return &employeeFixture{
		employees: mocks.NewFakeEmployeeRepository(&domain.Employee{ID: "e1", Name: "Asha", Opening: amount("100")}),
		advances: mocks.NewFakeAdvanceRepository(
			&domain.Advance{ID: "a1", EmployeeID: "e1", Date: day("2026-01-05"), TransactionType: "Pay", Paid: amount("300"), CreatedAt: created},
			&domain.Advance{ID: "a2", EmployeeID: "e1", Date: day("2026-01-20"), TransactionType: "Received", Paid: amount("50"), CreatedAt: created},
		),
		adjustments: &mocks.FakeAdjustmentRepository{},
		payrolls: &mocks.FakePayrollRepository{Payrolls: []*domain.Payroll{
			{ID: "p1", EmployeeID: "e1", MonthYear: "2026-01", NetTotal: amount("1000"), CreatedAt: created},
		}},
		entries:   mocks.NewFakeEntryRepository(),
		txManager: &mocks.FakeTxManager{},
	}
}

func (f *employeeFixture) ledger(cfg usecase.LedgerConfig, cache usecase.Cache) *usecase.LedgerUseCase {
	return usecase.NewEmployeeLedger(cfg, usecase.EmployeeSources{
		Employees:   f.employees,
		Advances:    f.advances,
		Adjustments: f.adjustments,
		Payrolls:    f.payrolls,
	}, usecase.LedgerDeps{
		Entries:   f.entries,
		TxManager: f.txManager,
		Cache:     cache,
		IDGen:     &mocks.SequenceIDGenerator{},
	}, zerolog.Nop())
}

type bankFixture struct {
	banks        *mocks.FakeBankRepository
	transactions *mocks.FakeBankTransactionRepository
	dailyCash    *mocks.FakeDailyCashRepository
	transfers    *mocks.FakeBankTransferRepository
	entries      *mocks.FakeEntryRepository
	txManager    *mocks.FakeTxManager
}

// newBankFixture builds two banks of branch "north" plus a branch float bank.
//
// b1 events: +9800 Jan 12 (verified batch, 2% of 10000 deducted),
// +500 Jan 15 (pending batch), -300 Jan 20, +700 Jan 25 (transfer from b2),
// +200 Feb 3 (cheque dated). A transfer-sourced bank transaction is ignored.
func newBankFixture() *bankFixture {
	return &bankFixture{
		banks: mocks.NewFakeBankRepository(
			&domain.Bank{ID: "b1", BankName: "City Bank", Department: "Grocery", Branch: "north", OpeningBalance: amount("1000")},
			&domain.Bank{ID: "b2", BankName: "HBL", Branch: "north"},
			&domain.Bank{ID: "float", BankName: "Float", BankType: domain.BankTypeBranch, Branch: "north"},
		),
		transactions: &mocks.FakeBankTransactionRepository{Transactions: []*domain.BankTransaction{
			{ID: "t1", BankID: "b1", Date: day("2026-01-20"), Type: "Withdrawal", Amount: amount("300"), CreatedAt: created},
			{ID: "t2", BankID: "b1", Date: day("2026-01-25"), Type: "Deposit", RefType: "bank_transfer", Amount: amount("700"), CreatedAt: created},
			{ID: "t3", BankID: "b1", Date: day("2026-01-28"), Type: "Deposit", ChequeDate: dayPtr("2026-02-03"), Amount: amount("200"), CreatedAt: created},
		}},
		dailyCash: &mocks.FakeDailyCashRepository{Batches: []*domain.DailyCashBatch{
			{ID: "dc1", BankID: "b1", Mode: "Bank", Date: day("2026-01-10"), TotalAmount: amount("10000"), DeductedAmount: amount("2"), IsDeduction: true, IsVerified: true, VerifiedDate: dayPtr("2026-01-12"), CreatedAt: created},
			{ID: "dc2", BankID: "b1", Mode: "Bank", Date: day("2026-01-15"), TotalAmount: amount("500"), CreatedAt: created},
		}},
		transfers: &mocks.FakeBankTransferRepository{Transfers: []*domain.BankTransfer{
			{ID: "tr1", FromBankID: "b2", ToBankID: "b1", FromBankName: "HBL", ToBankName: "City Bank", Date: day("2026-01-25"), Amount: amount("700"), CreatedAt: created},
		}},
		entries:   mocks.NewFakeEntryRepository(),
		txManager: &mocks.FakeTxManager{},
	}
}

func (f *bankFixture) ledger(cfg usecase.LedgerConfig) *usecase.LedgerUseCase {
	return usecase.NewBankLedger(cfg, usecase.BankSources{
		Banks:        f.banks,
		Transactions: f.transactions,
		DailyCash:    f.dailyCash,
		Transfers:    f.transfers,
	}, usecase.LedgerDeps{
		Entries:   f.entries,
		TxManager: f.txManager,
		IDGen:     &mocks.SequenceIDGenerator{},
	}, zerolog.Nop())
}

func balances(entries []*domain.LedgerEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Balance.String()
	}
	return out
}

func sources(entries []*domain.LedgerEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.SourceID
	}
	return out
}

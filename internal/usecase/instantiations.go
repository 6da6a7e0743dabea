package usecase

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/iho/ledgerreplay/internal/domain"
)

// EmployeeSources are the source repositories of the employee ledger.
type EmployeeSources struct {
	Employees   EmployeeRepository
	Advances    AdvanceRepository
	Adjustments AdjustmentRepository
	Payrolls    PayrollRepository
}

// BankSources are the source repositories of the bank ledger.
type BankSources struct {
	Banks        BankRepository
	Transactions BankTransactionRepository
	DailyCash    DailyCashRepository
	Transfers    BankTransferRepository
}

// NewEmployeeLedger builds the ledger of advances, adjustments and payroll.
func NewEmployeeLedger(cfg LedgerConfig, src EmployeeSources, deps LedgerDeps, logger zerolog.Logger) *LedgerUseCase {
	cfg.Kind = domain.SubjectKindEmployee
	adapters := []SourceAdapter{
		NewAdvanceSource(src.Advances, src.Payrolls),
		NewAdjustmentSource(src.Adjustments, src.Advances, src.Payrolls),
		NewPayrollSource(src.Payrolls),
	}
	return NewLedgerUseCase(cfg, &employeeSubjects{repo: src.Employees}, adapters, deps, logger)
}

// NewBankLedger builds the ledger of bank transactions, daily cash and transfers.
func NewBankLedger(cfg LedgerConfig, src BankSources, deps LedgerDeps, logger zerolog.Logger) *LedgerUseCase {
	cfg.Kind = domain.SubjectKindBank
	adapters := []SourceAdapter{
		NewBankTransactionSource(src.Transactions),
		NewDailyCashSource(src.DailyCash),
		NewBankTransferSource(src.Transfers),
	}
	return NewLedgerUseCase(cfg, &bankSubjects{repo: src.Banks}, adapters, deps, logger)
}

type employeeSubjects struct {
	repo EmployeeRepository
}

func (s *employeeSubjects) GetSubject(ctx context.Context, id string) (*domain.Subject, error) {
	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return e.Subject(), nil
}

func (s *employeeSubjects) ListSubjectIDs(ctx context.Context) ([]string, error) {
	return s.repo.ListIDs(ctx)
}

type bankSubjects struct {
	repo BankRepository
}

func (s *bankSubjects) GetSubject(ctx context.Context, id string) (*domain.Subject, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return b.Subject(), nil
}

func (s *bankSubjects) ListSubjectIDs(ctx context.Context) ([]string, error) {
	return s.repo.ListIDs(ctx)
}

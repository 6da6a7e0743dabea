package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/iho/ledgerreplay/internal/domain"
)

// Collection is what one adapter contributes to a rebuild.
type Collection struct {
	Events []domain.RawEvent
	// Orphans reference missing upstream records and are deleted after a
	// successful rebuild.
	Orphans []domain.SourceRef
	// Suppressed are records left out because a mirror already counts them.
	Suppressed []domain.SourceRef
}

// AdvanceSource collects employee advances.
type AdvanceSource struct {
	advances AdvanceRepository
	payrolls PayrollRepository
}

// NewAdvanceSource creates a new AdvanceSource.
func NewAdvanceSource(advances AdvanceRepository, payrolls PayrollRepository) *AdvanceSource {
	return &AdvanceSource{advances: advances, payrolls: payrolls}
}

func (s *AdvanceSource) SourceType() domain.SourceType { return domain.SourceTypeAdvance }

// Collect normalizes the employee's advances. Advances linked to a payroll
// run that no longer exists are reported as orphans instead.
func (s *AdvanceSource) Collect(ctx context.Context, employeeID string) (*Collection, error) {
	live, orphans, err := liveAdvances(ctx, s.advances, s.payrolls, employeeID)
	if err != nil {
		return nil, err
	}

	out := &Collection{Orphans: orphans}
	for _, adv := range live {
		out.Events = append(out.Events, domain.NormalizeAdvance(adv))
	}
	return out, nil
}

// DeleteOrphans removes advances whose payroll run is gone.
func (s *AdvanceSource) DeleteOrphans(ctx context.Context, orphans []domain.SourceRef) error {
	var errs []error
	for _, ref := range orphans {
		if ref.Type != domain.SourceTypeAdvance {
			continue
		}
		if err := s.advances.Delete(ctx, ref.ID); err != nil {
			errs = append(errs, fmt.Errorf("delete advance %s: %w", ref.ID, err))
		}
	}
	return errors.Join(errs...)
}

// AdjustmentSource collects employee adjustments.
type AdjustmentSource struct {
	adjustments AdjustmentRepository
	advances    AdvanceRepository
	payrolls    PayrollRepository
}

// NewAdjustmentSource creates a new AdjustmentSource.
func NewAdjustmentSource(adjustments AdjustmentRepository, advances AdvanceRepository, payrolls PayrollRepository) *AdjustmentSource {
	return &AdjustmentSource{adjustments: adjustments, advances: advances, payrolls: payrolls}
}

func (s *AdjustmentSource) SourceType() domain.SourceType { return domain.SourceTypeAdjustment }

// Collect normalizes the employee's adjustments, suppressing every
// adjustment already materialized as an advance. Orphaned advances do not
// suppress anything since they are about to be deleted.
func (s *AdjustmentSource) Collect(ctx context.Context, employeeID string) (*Collection, error) {
	adjustments, err := s.adjustments.ListByEmployee(ctx, employeeID)
	if err != nil {
		return nil, fmt.Errorf("list adjustments: %w", err)
	}
	if len(adjustments) == 0 {
		return &Collection{}, nil
	}

	live, _, err := liveAdvances(ctx, s.advances, s.payrolls, employeeID)
	if err != nil {
		return nil, err
	}

	out := &Collection{}
	for _, adj := range adjustments {
		if hasMirror(adj, live) {
			out.Suppressed = append(out.Suppressed, domain.SourceRef{Type: domain.SourceTypeAdjustment, ID: adj.ID})
			continue
		}
		out.Events = append(out.Events, domain.NormalizeAdjustment(adj))
	}
	return out, nil
}

func hasMirror(adj *domain.Adjustment, advances []*domain.Advance) bool {
	for _, adv := range advances {
		if domain.IsMirrorOf(adv, adj) {
			return true
		}
	}
	return false
}

func liveAdvances(ctx context.Context, advances AdvanceRepository, payrolls PayrollRepository, employeeID string) ([]*domain.Advance, []domain.SourceRef, error) {
	all, err := advances.ListByEmployee(ctx, employeeID)
	if err != nil {
		return nil, nil, fmt.Errorf("list advances: %w", err)
	}

	var payrollIDs []string
	for _, adv := range all {
		if adv.PayrollID != nil {
			payrollIDs = append(payrollIDs, *adv.PayrollID)
		}
	}
	if len(payrollIDs) == 0 {
		return all, nil, nil
	}

	existing, err := payrolls.ExistingIDs(ctx, payrollIDs)
	if err != nil {
		return nil, nil, fmt.Errorf("check payrolls: %w", err)
	}

	live := make([]*domain.Advance, 0, len(all))
	var orphans []domain.SourceRef
	for _, adv := range all {
		if adv.PayrollID != nil && !existing[*adv.PayrollID] {
			orphans = append(orphans, domain.SourceRef{Type: domain.SourceTypeAdvance, ID: adv.ID})
			continue
		}
		live = append(live, adv)
	}
	return live, orphans, nil
}

// PayrollSource collects payroll runs.
type PayrollSource struct {
	payrolls PayrollRepository
}

// NewPayrollSource creates a new PayrollSource.
func NewPayrollSource(payrolls PayrollRepository) *PayrollSource {
	return &PayrollSource{payrolls: payrolls}
}

func (s *PayrollSource) SourceType() domain.SourceType { return domain.SourceTypePayroll }

// Collect emits the informational salary pair of every payroll run.
func (s *PayrollSource) Collect(ctx context.Context, employeeID string) (*Collection, error) {
	payrolls, err := s.payrolls.ListByEmployee(ctx, employeeID)
	if err != nil {
		return nil, fmt.Errorf("list payrolls: %w", err)
	}

	out := &Collection{}
	for _, p := range payrolls {
		out.Events = append(out.Events, domain.NormalizePayroll(p)...)
	}
	return out, nil
}

// BankTransactionSource collects direct bank transactions.
type BankTransactionSource struct {
	transactions BankTransactionRepository
}

// NewBankTransactionSource creates a new BankTransactionSource.
func NewBankTransactionSource(transactions BankTransactionRepository) *BankTransactionSource {
	return &BankTransactionSource{transactions: transactions}
}

func (s *BankTransactionSource) SourceType() domain.SourceType {
	return domain.SourceTypeBankTransaction
}

// Collect skips transactions mirrored from bank transfers; those are
// counted by the transfer source only.
func (s *BankTransactionSource) Collect(ctx context.Context, bankID string) (*Collection, error) {
	txs, err := s.transactions.ListByBank(ctx, bankID)
	if err != nil {
		return nil, fmt.Errorf("list bank transactions: %w", err)
	}

	out := &Collection{}
	for _, t := range txs {
		if ev, ok := domain.NormalizeBankTransaction(t); ok {
			out.Events = append(out.Events, ev)
		}
	}
	return out, nil
}

// DailyCashSource collects daily-cash batches banked into the account.
type DailyCashSource struct {
	batches DailyCashRepository
}

// NewDailyCashSource creates a new DailyCashSource.
func NewDailyCashSource(batches DailyCashRepository) *DailyCashSource {
	return &DailyCashSource{batches: batches}
}

func (s *DailyCashSource) SourceType() domain.SourceType { return domain.SourceTypeDailyCash }

func (s *DailyCashSource) Collect(ctx context.Context, bankID string) (*Collection, error) {
	batches, err := s.batches.ListByBank(ctx, bankID)
	if err != nil {
		return nil, fmt.Errorf("list daily cash: %w", err)
	}

	out := &Collection{}
	for _, b := range batches {
		if ev, ok := domain.NormalizeDailyCash(b); ok {
			out.Events = append(out.Events, ev)
		}
	}
	return out, nil
}

// BankTransferSource collects inter-bank transfers.
type BankTransferSource struct {
	transfers BankTransferRepository
}

// NewBankTransferSource creates a new BankTransferSource.
func NewBankTransferSource(transfers BankTransferRepository) *BankTransferSource {
	return &BankTransferSource{transfers: transfers}
}

func (s *BankTransferSource) SourceType() domain.SourceType { return domain.SourceTypeBankTransfer }

// Collect emits at most one event per transfer, for the side bankID is on.
func (s *BankTransferSource) Collect(ctx context.Context, bankID string) (*Collection, error) {
	transfers, err := s.transfers.ListByBank(ctx, bankID)
	if err != nil {
		return nil, fmt.Errorf("list bank transfers: %w", err)
	}

	out := &Collection{}
	for _, t := range transfers {
		if ev, ok := domain.NormalizeBankTransfer(t, bankID); ok {
			out.Events = append(out.Events, ev)
		}
	}
	return out, nil
}

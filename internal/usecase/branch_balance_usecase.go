package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/iho/ledgerreplay/internal/domain"
)

// OpeningBalanceQuerier answers opening balance queries for one ledger.
type OpeningBalanceQuerier interface {
	OpeningBalanceAsOf(ctx context.Context, subjectID string, date time.Time, opts QueryOptions) (decimal.Decimal, error)
}

// BranchBalanceUseCase reports the bank balances of a branch.
type BranchBalanceUseCase struct {
	banks        BankRepository
	ledger       OpeningBalanceQuerier
	verifiedOnly bool
	concurrency  int
}

// NewBranchBalanceUseCase creates a new BranchBalanceUseCase.
func NewBranchBalanceUseCase(banks BankRepository, ledger OpeningBalanceQuerier, verifiedOnly bool, concurrency int) *BranchBalanceUseCase {
	if concurrency <= 0 {
		concurrency = DefaultFetchConcurrency
	}
	return &BranchBalanceUseCase{
		banks:        banks,
		ledger:       ledger,
		verifiedOnly: verifiedOnly,
		concurrency:  concurrency,
	}
}

// BankBalance is one bank's balance at the end of a day.
type BankBalance struct {
	BankID      string
	DisplayName string
	Balance     decimal.Decimal
}

// BranchBalances is the balance sheet of a branch's banks.
type BranchBalances struct {
	Branch string
	Date   time.Time
	Banks  []BankBalance
	Total  decimal.Decimal
}

// BranchBalances returns the balance of every bank of the branch at the end
// of date. Branch float banks are excluded.
func (uc *BranchBalanceUseCase) BranchBalances(ctx context.Context, branch string, date time.Time) (*BranchBalances, error) {
	banks, err := uc.banks.ListByBranch(ctx, branch)
	if err != nil {
		return nil, fmt.Errorf("list banks: %w", err)
	}

	eligible := make([]*domain.Bank, 0, len(banks))
	for _, b := range banks {
		if !b.IsBranchBank() {
			eligible = append(eligible, b)
		}
	}

	balances := make([]BankBalance, len(eligible))
	cutoff := domain.NextDay(date)
	opts := QueryOptions{VerifiedOnly: &uc.verifiedOnly}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uc.concurrency)
	for i, b := range eligible {
		g.Go(func() error {
			bal, err := uc.ledger.OpeningBalanceAsOf(gctx, b.ID, cutoff, opts)
			if err != nil {
				return fmt.Errorf("bank %s: %w", b.ID, err)
			}
			balances[i] = BankBalance{BankID: b.ID, DisplayName: b.DisplayName(), Balance: bal}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.SliceStable(balances, func(i, j int) bool {
		return balances[i].DisplayName < balances[j].DisplayName
	})

	out := &BranchBalances{Branch: branch, Date: domain.DateOnly(date), Banks: balances, Total: decimal.Zero}
	for _, b := range balances {
		out.Total = out.Total.Add(b.Balance)
	}
	return out, nil
}

package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/ledgerreplay/internal/usecase"
)

func TestBranchBalanceUseCase_BranchBalances(t *testing.T) {
	f := newBankFixture()
	ledger := f.ledger(usecase.LedgerConfig{})
	uc := usecase.NewBranchBalanceUseCase(f.banks, ledger, true, 2)

	got, err := uc.BranchBalances(context.Background(), "north", day("2026-01-31"))
	require.NoError(t, err)

	require.Len(t, got.Banks, 2)
	assert.Equal(t, "City Bank (GRO)", got.Banks[0].DisplayName)
	assert.Equal(t, "11200", got.Banks[0].Balance.String())
	assert.Equal(t, "HBL", got.Banks[1].DisplayName)
	assert.Equal(t, "-700", got.Banks[1].Balance.String())
	assert.Equal(t, "10500", got.Total.String())
	assert.Equal(t, day("2026-01-31"), got.Date)
}

func TestBranchBalanceUseCase_AllEvents(t *testing.T) {
	f := newBankFixture()
	uc := usecase.NewBranchBalanceUseCase(f.banks, f.ledger(usecase.LedgerConfig{}), false, 0)

	got, err := uc.BranchBalances(context.Background(), "north", day("2026-01-31"))

	require.NoError(t, err)
	assert.Equal(t, "11000", got.Total.String())
}

func TestBranchBalanceUseCase_EmptyBranch(t *testing.T) {
	f := newBankFixture()
	uc := usecase.NewBranchBalanceUseCase(f.banks, f.ledger(usecase.LedgerConfig{}), true, 0)

	got, err := uc.BranchBalances(context.Background(), "south", day("2026-01-31"))

	require.NoError(t, err)
	assert.Empty(t, got.Banks)
	assert.True(t, got.Total.IsZero())
}

type failingQuerier struct{}

func (failingQuerier) OpeningBalanceAsOf(context.Context, string, time.Time, usecase.QueryOptions) (decimal.Decimal, error) {
	return decimal.Zero, errors.New("replay failed")
}

func TestBranchBalanceUseCase_PropagatesErrors(t *testing.T) {
	f := newBankFixture()
	uc := usecase.NewBranchBalanceUseCase(f.banks, failingQuerier{}, true, 0)

	_, err := uc.BranchBalances(context.Background(), "north", day("2026-01-31"))

	require.Error(t, err)
}

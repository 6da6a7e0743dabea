package postgres

import (
	"context"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/iho/ledgerreplay/internal/domain"
)

const dailyCashTable = "daily_cash_batches"

type dailyCashRow struct {
	ID             string         `db:"id"`
	BankID         string         `db:"bank_id"`
	Branch         string         `db:"branch"`
	Mode           string         `db:"mode"`
	BatchNo        string         `db:"batch_no"`
	Remarks        string         `db:"remarks"`
	Date           time.Time      `db:"date"`
	TotalAmount    pgtype.Numeric `db:"total_amount"`
	DeductedAmount pgtype.Numeric `db:"deducted_amount"`
	IsDeduction    bool           `db:"is_deduction"`
	IsVerified     bool           `db:"is_verified"`
	VerifiedDate   *time.Time     `db:"verified_date"`
	CreatedAt      time.Time      `db:"created_at"`
}

var dailyCashColumns = []string{
	"id", "bank_id", "branch", "mode", "batch_no", "remarks", "date",
	"total_amount", "deducted_amount", "is_deduction", "is_verified",
	"verified_date", "created_at",
}

// DailyCashRepository implements usecase.DailyCashRepository.
type DailyCashRepository struct {
	db DB
}

// NewDailyCashRepository creates a new DailyCashRepository.
func NewDailyCashRepository(db DB) *DailyCashRepository {
	return &DailyCashRepository{db: db}
}

// ListByBank returns all daily-cash batches credited to a bank, whatever
// their mode.
func (r *DailyCashRepository) ListByBank(ctx context.Context, bankID string) ([]*domain.DailyCashBatch, error) {
	q := psql.Select(dailyCashColumns...).
		From(dailyCashTable).
		Where(squirrel.Eq{"bank_id": bankID}).
		OrderBy("date", "created_at", "id")

	var rows []dailyCashRow
	if err := selectAll(ctx, r.db, &rows, q); err != nil {
		return nil, err
	}

	batches := make([]*domain.DailyCashBatch, 0, len(rows))
	for _, row := range rows {
		batches = append(batches, &domain.DailyCashBatch{
			ID:             row.ID,
			BankID:         row.BankID,
			Branch:         row.Branch,
			Mode:           row.Mode,
			BatchNo:        row.BatchNo,
			Remarks:        row.Remarks,
			Date:           row.Date,
			TotalAmount:    numericToNullDecimal(row.TotalAmount),
			DeductedAmount: numericToNullDecimal(row.DeductedAmount),
			IsDeduction:    row.IsDeduction,
			IsVerified:     row.IsVerified,
			VerifiedDate:   row.VerifiedDate,
			CreatedAt:      row.CreatedAt,
		})
	}

	return batches, nil
}

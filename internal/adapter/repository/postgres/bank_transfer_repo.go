package postgres

import (
	"context"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/iho/ledgerreplay/internal/domain"
)

const bankTransfersTable = "bank_transfers"

type bankTransferRow struct {
	ID           string         `db:"id"`
	Date         time.Time      `db:"date"`
	FromBankID   string         `db:"from_bank_id"`
	ToBankID     string         `db:"to_bank_id"`
	FromBankName string         `db:"from_bank_name"`
	ToBankName   string         `db:"to_bank_name"`
	Amount       pgtype.Numeric `db:"amount"`
	Remarks      string         `db:"remarks"`
	BatchNo      string         `db:"batch_no"`
	CreatedAt    time.Time      `db:"created_at"`
}

var bankTransferColumns = []string{
	"id", "date", "from_bank_id", "to_bank_id", "from_bank_name",
	"to_bank_name", "amount", "remarks", "batch_no", "created_at",
}

// BankTransferRepository implements usecase.BankTransferRepository.
type BankTransferRepository struct {
	db DB
}

// NewBankTransferRepository creates a new BankTransferRepository.
func NewBankTransferRepository(db DB) *BankTransferRepository {
	return &BankTransferRepository{db: db}
}

// ListByBank returns transfers where the bank is either side.
func (r *BankTransferRepository) ListByBank(ctx context.Context, bankID string) ([]*domain.BankTransfer, error) {
	q := psql.Select(bankTransferColumns...).
		From(bankTransfersTable).
		Where(squirrel.Or{
			squirrel.Eq{"from_bank_id": bankID},
			squirrel.Eq{"to_bank_id": bankID},
		}).
		OrderBy("date", "created_at", "id")

	var rows []bankTransferRow
	if err := selectAll(ctx, r.db, &rows, q); err != nil {
		return nil, err
	}

	transfers := make([]*domain.BankTransfer, 0, len(rows))
	for _, row := range rows {
		transfers = append(transfers, &domain.BankTransfer{
			ID:           row.ID,
			Date:         row.Date,
			FromBankID:   row.FromBankID,
			ToBankID:     row.ToBankID,
			FromBankName: row.FromBankName,
			ToBankName:   row.ToBankName,
			Amount:       numericToNullDecimal(row.Amount),
			Remarks:      row.Remarks,
			BatchNo:      row.BatchNo,
			CreatedAt:    row.CreatedAt,
		})
	}

	return transfers, nil
}

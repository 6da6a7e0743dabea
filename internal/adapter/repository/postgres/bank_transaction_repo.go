package postgres

import (
	"context"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/iho/ledgerreplay/internal/domain"
)

const bankTransactionsTable = "bank_transactions"

type bankTransactionRow struct {
	ID              string         `db:"id"`
	BankID          string         `db:"bank_id"`
	Date            time.Time      `db:"date"`
	Type            string         `db:"type"`
	TransactionType string         `db:"transaction_type"`
	RefType         string         `db:"ref_type"`
	Amount          pgtype.Numeric `db:"amount"`
	Narration       string         `db:"narration"`
	Remarks         string         `db:"remarks"`
	InvoiceNo       string         `db:"invoice_no"`
	ChequeDate      *time.Time     `db:"cheque_date"`
	IsVerified      bool           `db:"is_verified"`
	VerifiedDate    *time.Time     `db:"verified_date"`
	CreatedAt       time.Time      `db:"created_at"`
}

var bankTransactionColumns = []string{
	"id", "bank_id", "date", "type", "transaction_type", "ref_type", "amount",
	"narration", "remarks", "invoice_no", "cheque_date", "is_verified",
	"verified_date", "created_at",
}

func (r *bankTransactionRow) toDomain() *domain.BankTransaction {
	return &domain.BankTransaction{
		ID:              r.ID,
		BankID:          r.BankID,
		Date:            r.Date,
		Type:            r.Type,
		TransactionType: r.TransactionType,
		RefType:         r.RefType,
		Amount:          numericToNullDecimal(r.Amount),
		Narration:       r.Narration,
		Remarks:         r.Remarks,
		InvoiceNo:       r.InvoiceNo,
		ChequeDate:      r.ChequeDate,
		IsVerified:      r.IsVerified,
		VerifiedDate:    r.VerifiedDate,
		CreatedAt:       r.CreatedAt,
	}
}

// BankTransactionRepository implements usecase.BankTransactionRepository.
type BankTransactionRepository struct {
	db DB
}

// NewBankTransactionRepository creates a new BankTransactionRepository.
func NewBankTransactionRepository(db DB) *BankTransactionRepository {
	return &BankTransactionRepository{db: db}
}

// ListByBank returns all direct transactions of a bank, including those
// mirrored from transfers. Exclusion of mirrored rows is the adapter's job.
func (r *BankTransactionRepository) ListByBank(ctx context.Context, bankID string) ([]*domain.BankTransaction, error) {
	q := psql.Select(bankTransactionColumns...).
		From(bankTransactionsTable).
		Where(squirrel.Eq{"bank_id": bankID}).
		OrderBy("date", "created_at", "id")

	var rows []bankTransactionRow
	if err := selectAll(ctx, r.db, &rows, q); err != nil {
		return nil, err
	}

	txns := make([]*domain.BankTransaction, 0, len(rows))
	for i := range rows {
		txns = append(txns, rows[i].toDomain())
	}

	return txns, nil
}

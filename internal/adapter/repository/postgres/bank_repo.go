package postgres

import (
	"context"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/iho/ledgerreplay/internal/domain"
)

const banksTable = "banks"

type bankRow struct {
	ID             string         `db:"id"`
	BankName       string         `db:"bank_name"`
	BankType       string         `db:"bank_type"`
	Branch         string         `db:"branch"`
	Department     string         `db:"department"`
	OpeningBalance pgtype.Numeric `db:"opening_balance"`
	Active         bool           `db:"active"`
	CreatedAt      time.Time      `db:"created_at"`
}

var bankColumns = []string{
	"id", "bank_name", "bank_type", "branch", "department",
	"opening_balance", "active", "created_at",
}

func (r *bankRow) toDomain() *domain.Bank {
	return &domain.Bank{
		ID:             r.ID,
		BankName:       r.BankName,
		BankType:       r.BankType,
		Branch:         r.Branch,
		Department:     r.Department,
		OpeningBalance: numericToNullDecimal(r.OpeningBalance),
		Active:         r.Active,
		CreatedAt:      r.CreatedAt,
	}
}

// BankRepository implements usecase.BankRepository.
type BankRepository struct {
	db DB
}

// NewBankRepository creates a new BankRepository.
func NewBankRepository(db DB) *BankRepository {
	return &BankRepository{db: db}
}

// GetByID retrieves a bank by ID.
func (r *BankRepository) GetByID(ctx context.Context, id string) (*domain.Bank, error) {
	q := psql.Select(bankColumns...).
		From(banksTable).
		Where(squirrel.Eq{"id": id})

	var row bankRow
	if err := selectOne(ctx, r.db, &row, q, domain.ErrSubjectNotFound); err != nil {
		return nil, err
	}

	return row.toDomain(), nil
}

// ListIDs returns every bank id in ascending order.
func (r *BankRepository) ListIDs(ctx context.Context) ([]string, error) {
	q := psql.Select("id").From(banksTable).OrderBy("id")

	var ids []string
	if err := selectAll(ctx, r.db, &ids, q); err != nil {
		return nil, err
	}

	return ids, nil
}

// ListByBranch returns the banks of a branch ordered by name.
func (r *BankRepository) ListByBranch(ctx context.Context, branch string) ([]*domain.Bank, error) {
	q := psql.Select(bankColumns...).
		From(banksTable).
		Where(squirrel.Eq{"branch": branch}).
		OrderBy("bank_name", "id")

	var rows []bankRow
	if err := selectAll(ctx, r.db, &rows, q); err != nil {
		return nil, err
	}

	banks := make([]*domain.Bank, 0, len(rows))
	for i := range rows {
		banks = append(banks, rows[i].toDomain())
	}

	return banks, nil
}

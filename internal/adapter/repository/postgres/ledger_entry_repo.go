package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/iho/ledgerreplay/internal/domain"
	"github.com/iho/ledgerreplay/internal/usecase"
)

const ledgerEntriesTable = "ledger_entries"

type ledgerEntryRow struct {
	SubjectKind string         `db:"subject_kind"`
	SubjectID   string         `db:"subject_id"`
	Seq         int            `db:"seq"`
	Date        time.Time      `db:"date"`
	Type        string         `db:"type"`
	Description string         `db:"description"`
	Debit       pgtype.Numeric `db:"debit"`
	Credit      pgtype.Numeric `db:"credit"`
	Balance     pgtype.Numeric `db:"balance"`
	SourceType  string         `db:"source_type"`
	SourceID    string         `db:"source_id"`
}

var ledgerEntryColumns = []string{
	"subject_kind", "subject_id", "seq", "date", "type", "description",
	"debit", "credit", "balance", "source_type", "source_id",
}

func (r *ledgerEntryRow) toDomain() *domain.LedgerEntry {
	return &domain.LedgerEntry{
		SubjectKind: domain.SubjectKind(r.SubjectKind),
		SubjectID:   r.SubjectID,
		Seq:         r.Seq,
		Date:        domain.DateOnly(r.Date),
		Type:        r.Type,
		Description: r.Description,
		Debit:       numericToDecimal(r.Debit),
		Credit:      numericToDecimal(r.Credit),
		Balance:     numericToDecimal(r.Balance),
		SourceType:  domain.SourceType(r.SourceType),
		SourceID:    r.SourceID,
	}
}

// LedgerEntryRepository implements usecase.EntryRepository.
type LedgerEntryRepository struct {
	db DB
}

// NewLedgerEntryRepository creates a new LedgerEntryRepository.
func NewLedgerEntryRepository(db DB) *LedgerEntryRepository {
	return &LedgerEntryRepository{db: db}
}

// ReplaceEntries deletes the subject's entries and copies the new set in
// within tx, so readers see either the old or the new ledger.
func (r *LedgerEntryRepository) ReplaceEntries(ctx context.Context, tx usecase.Transaction, kind domain.SubjectKind, subjectID string, entries []*domain.LedgerEntry) error {
	pgxTx, err := pgxTxFrom(tx)
	if err != nil {
		return err
	}

	sql, args, err := psql.Delete(ledgerEntriesTable).
		Where(squirrel.Eq{"subject_kind": string(kind), "subject_id": subjectID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	if _, err := pgxTx.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("delete entries: %w", err)
	}

	if len(entries) == 0 {
		return nil
	}

	_, err = pgxTx.CopyFrom(
		ctx,
		pgx.Identifier{ledgerEntriesTable},
		ledgerEntryColumns,
		pgx.CopyFromSlice(len(entries), func(i int) ([]any, error) {
			e := entries[i]
			return []any{
				string(kind), subjectID, e.Seq, dateToPgDate(e.Date), e.Type, e.Description,
				decimalToNumeric(e.Debit), decimalToNumeric(e.Credit), decimalToNumeric(e.Balance),
				string(e.SourceType), e.SourceID,
			}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("copy entries: %w", err)
	}

	return nil
}

// GetEntries returns the subject's entries in sequence order, restricted to
// the inclusive date range.
func (r *LedgerEntryRepository) GetEntries(ctx context.Context, kind domain.SubjectKind, subjectID string, dr domain.DateRange) ([]*domain.LedgerEntry, error) {
	q := psql.Select(ledgerEntryColumns...).
		From(ledgerEntriesTable).
		Where(squirrel.Eq{"subject_kind": string(kind), "subject_id": subjectID})

	if dr.From != nil {
		q = q.Where(squirrel.GtOrEq{"date": dateToPgDate(*dr.From)})
	}
	if dr.To != nil {
		q = q.Where(squirrel.LtOrEq{"date": dateToPgDate(*dr.To)})
	}

	var rows []ledgerEntryRow
	if err := selectAll(ctx, r.db, &rows, q.OrderBy("seq")); err != nil {
		return nil, err
	}

	entries := make([]*domain.LedgerEntry, 0, len(rows))
	for i := range rows {
		entries = append(entries, rows[i].toDomain())
	}

	return entries, nil
}

// GetLastEntry returns the entry with the highest sequence, or nil.
func (r *LedgerEntryRepository) GetLastEntry(ctx context.Context, kind domain.SubjectKind, subjectID string) (*domain.LedgerEntry, error) {
	q := psql.Select(ledgerEntryColumns...).
		From(ledgerEntriesTable).
		Where(squirrel.Eq{"subject_kind": string(kind), "subject_id": subjectID}).
		OrderBy("seq DESC").
		Limit(1)

	var row ledgerEntryRow
	if err := selectOne(ctx, r.db, &row, q, errNoRow); err != nil {
		if errors.Is(err, errNoRow) {
			return nil, nil
		}
		return nil, err
	}

	return row.toDomain(), nil
}

// SumNet returns the sum of debit minus credit over entries dated on or
// before asOf.
func (r *LedgerEntryRepository) SumNet(ctx context.Context, kind domain.SubjectKind, subjectID string, asOf time.Time) (decimal.Decimal, error) {
	sql, args, err := psql.Select("COALESCE(SUM(debit - credit), 0)").
		From(ledgerEntriesTable).
		Where(squirrel.Eq{"subject_kind": string(kind), "subject_id": subjectID}).
		Where(squirrel.LtOrEq{"date": dateToPgDate(asOf)}).
		ToSql()
	if err != nil {
		return decimal.Zero, fmt.Errorf("build query: %w", err)
	}

	var sum pgtype.Numeric
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("%w: sum entries: %w", domain.ErrStorage, err)
	}

	return numericToDecimal(sum), nil
}

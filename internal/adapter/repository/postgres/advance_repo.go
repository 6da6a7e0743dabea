package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/iho/ledgerreplay/internal/domain"
)

const advancesTable = "employee_advances"

type advanceRow struct {
	ID                 string         `db:"id"`
	EmployeeID         string         `db:"employee_id"`
	Date               time.Time      `db:"date"`
	Branch             string         `db:"branch"`
	TransactionType    string         `db:"transaction_type"`
	Paid               pgtype.Numeric `db:"paid"`
	Remarks            string         `db:"remarks"`
	PayrollID          *string        `db:"payroll_id"`
	OriginAdjustmentID *string        `db:"origin_adjustment_id"`
	CreatedAt          time.Time      `db:"created_at"`
}

var advanceColumns = []string{
	"id", "employee_id", "date", "branch", "transaction_type", "paid",
	"remarks", "payroll_id", "origin_adjustment_id", "created_at",
}

func (r *advanceRow) toDomain() *domain.Advance {
	return &domain.Advance{
		ID:                 r.ID,
		EmployeeID:         r.EmployeeID,
		Date:               r.Date,
		Branch:             r.Branch,
		TransactionType:    r.TransactionType,
		Paid:               numericToNullDecimal(r.Paid),
		Remarks:            r.Remarks,
		PayrollID:          r.PayrollID,
		OriginAdjustmentID: r.OriginAdjustmentID,
		CreatedAt:          r.CreatedAt,
	}
}

// AdvanceRepository implements usecase.AdvanceRepository.
type AdvanceRepository struct {
	db DB
}

// NewAdvanceRepository creates a new AdvanceRepository.
func NewAdvanceRepository(db DB) *AdvanceRepository {
	return &AdvanceRepository{db: db}
}

// ListByEmployee returns all advances of an employee.
func (r *AdvanceRepository) ListByEmployee(ctx context.Context, employeeID string) ([]*domain.Advance, error) {
	q := psql.Select(advanceColumns...).
		From(advancesTable).
		Where(squirrel.Eq{"employee_id": employeeID}).
		OrderBy("date", "created_at", "id")

	var rows []advanceRow
	if err := selectAll(ctx, r.db, &rows, q); err != nil {
		return nil, err
	}

	advances := make([]*domain.Advance, 0, len(rows))
	for i := range rows {
		advances = append(advances, rows[i].toDomain())
	}

	return advances, nil
}

// Delete removes an advance. Deleting a missing advance is not an error.
func (r *AdvanceRepository) Delete(ctx context.Context, id string) error {
	sql, args, err := psql.Delete(advancesTable).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("%w: delete advance %s: %w", domain.ErrStorage, id, err)
	}

	return nil
}

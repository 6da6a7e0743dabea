package postgres

import (
	"context"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/iho/ledgerreplay/internal/domain"
)

const adjustmentsTable = "employee_adjustments"

type adjustmentRow struct {
	ID         string         `db:"id"`
	EmployeeID string         `db:"employee_id"`
	Date       time.Time      `db:"date"`
	Type       string         `db:"type"`
	Amount     pgtype.Numeric `db:"amount"`
	Branch     string         `db:"branch"`
	Remarks    string         `db:"remarks"`
	CreatedAt  time.Time      `db:"created_at"`
}

var adjustmentColumns = []string{
	"id", "employee_id", "date", "type", "amount", "branch", "remarks", "created_at",
}

// AdjustmentRepository implements usecase.AdjustmentRepository.
type AdjustmentRepository struct {
	db DB
}

// NewAdjustmentRepository creates a new AdjustmentRepository.
func NewAdjustmentRepository(db DB) *AdjustmentRepository {
	return &AdjustmentRepository{db: db}
}

// ListByEmployee returns all adjustments of an employee.
func (r *AdjustmentRepository) ListByEmployee(ctx context.Context, employeeID string) ([]*domain.Adjustment, error) {
	q := psql.Select(adjustmentColumns...).
		From(adjustmentsTable).
		Where(squirrel.Eq{"employee_id": employeeID}).
		OrderBy("date", "created_at", "id")

	var rows []adjustmentRow
	if err := selectAll(ctx, r.db, &rows, q); err != nil {
		return nil, err
	}

	adjustments := make([]*domain.Adjustment, 0, len(rows))
	for _, row := range rows {
		adjustments = append(adjustments, &domain.Adjustment{
			ID:         row.ID,
			EmployeeID: row.EmployeeID,
			Date:       row.Date,
			Type:       row.Type,
			Amount:     numericToNullDecimal(row.Amount),
			Branch:     row.Branch,
			Remarks:    row.Remarks,
			CreatedAt:  row.CreatedAt,
		})
	}

	return adjustments, nil
}

package postgres

import (
	"context"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/iho/ledgerreplay/internal/domain"
)

const payrollsTable = "payrolls"

type payrollRow struct {
	ID         string         `db:"id"`
	EmployeeID string         `db:"employee_id"`
	MonthYear  string         `db:"month_year"`
	Branch     string         `db:"branch"`
	NetTotal   pgtype.Numeric `db:"net_total"`
	CreatedAt  time.Time      `db:"created_at"`
}

var payrollColumns = []string{"id", "employee_id", "month_year", "branch", "net_total", "created_at"}

// PayrollRepository implements usecase.PayrollRepository.
type PayrollRepository struct {
	db DB
}

// NewPayrollRepository creates a new PayrollRepository.
func NewPayrollRepository(db DB) *PayrollRepository {
	return &PayrollRepository{db: db}
}

// ListByEmployee returns all payroll runs of an employee.
func (r *PayrollRepository) ListByEmployee(ctx context.Context, employeeID string) ([]*domain.Payroll, error) {
	q := psql.Select(payrollColumns...).
		From(payrollsTable).
		Where(squirrel.Eq{"employee_id": employeeID}).
		OrderBy("month_year", "created_at", "id")

	var rows []payrollRow
	if err := selectAll(ctx, r.db, &rows, q); err != nil {
		return nil, err
	}

	payrolls := make([]*domain.Payroll, 0, len(rows))
	for _, row := range rows {
		payrolls = append(payrolls, &domain.Payroll{
			ID:         row.ID,
			EmployeeID: row.EmployeeID,
			MonthYear:  row.MonthYear,
			Branch:     row.Branch,
			NetTotal:   numericToNullDecimal(row.NetTotal),
			CreatedAt:  row.CreatedAt,
		})
	}

	return payrolls, nil
}

// ExistingIDs returns the subset of ids that still exist.
func (r *PayrollRepository) ExistingIDs(ctx context.Context, ids []string) (map[string]bool, error) {
	existing := make(map[string]bool, len(ids))
	if len(ids) == 0 {
		return existing, nil
	}

	q := psql.Select("id").
		From(payrollsTable).
		Where(squirrel.Eq{"id": ids})

	var found []string
	if err := selectAll(ctx, r.db, &found, q); err != nil {
		return nil, err
	}

	for _, id := range found {
		existing[id] = true
	}

	return existing, nil
}

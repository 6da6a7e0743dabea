package postgres

import (
	"context"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/iho/ledgerreplay/internal/domain"
)

const employeesTable = "employees"

type employeeRow struct {
	ID        string         `db:"id"`
	Code      string         `db:"code"`
	Name      string         `db:"name"`
	Branch    string         `db:"branch"`
	Opening   pgtype.Numeric `db:"opening"`
	Active    bool           `db:"active"`
	CreatedAt time.Time      `db:"created_at"`
}

var employeeColumns = []string{"id", "code", "name", "branch", "opening", "active", "created_at"}

func (r *employeeRow) toDomain() *domain.Employee {
	return &domain.Employee{
		ID:        r.ID,
		Code:      r.Code,
		Name:      r.Name,
		Branch:    r.Branch,
		Opening:   numericToNullDecimal(r.Opening),
		Active:    r.Active,
		CreatedAt: r.CreatedAt,
	}
}

// EmployeeRepository implements usecase.EmployeeRepository.
type EmployeeRepository struct {
	db DB
}

// NewEmployeeRepository creates a new EmployeeRepository.
func NewEmployeeRepository(db DB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

// GetByID retrieves an employee by ID.
func (r *EmployeeRepository) GetByID(ctx context.Context, id string) (*domain.Employee, error) {
	q := psql.Select(employeeColumns...).
		From(employeesTable).
		Where(squirrel.Eq{"id": id})

	var row employeeRow
	if err := selectOne(ctx, r.db, &row, q, domain.ErrSubjectNotFound); err != nil {
		return nil, err
	}

	return row.toDomain(), nil
}

// ListIDs returns every employee id in ascending order.
func (r *EmployeeRepository) ListIDs(ctx context.Context) ([]string, error) {
	q := psql.Select("id").From(employeesTable).OrderBy("id")

	var ids []string
	if err := selectAll(ctx, r.db, &ids, q); err != nil {
		return nil, err
	}

	return ids, nil
}

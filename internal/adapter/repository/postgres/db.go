package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/iho/ledgerreplay/internal/domain"
)

// DB is the subset of *pgxpool.Pool the repositories use.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// errNoRow is returned by selectOne callers that treat a missing row as empty.
var errNoRow = errors.New("no row")

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// selectAll runs a built query and scans every row into dst.
func selectAll(ctx context.Context, db DB, dst any, q squirrel.Sqlizer) error {
	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}
	if err := pgxscan.Select(ctx, db, dst, sql, args...); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStorage, err)
	}
	return nil
}

// selectOne runs a built query and scans one row into dst. It returns
// notFound when there is no row.
func selectOne(ctx context.Context, db DB, dst any, q squirrel.Sqlizer, notFound error) error {
	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}
	if err := pgxscan.Get(ctx, db, dst, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return notFound
		}
		return fmt.Errorf("%w: %w", domain.ErrStorage, err)
	}
	return nil
}

func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric

	_ = n.Scan(d.String())

	return n
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	return numericToNullDecimal(n).Decimal
}

// numericToNullDecimal keeps NULL distinct from zero so malformed source
// amounts can be detected.
func numericToNullDecimal(n pgtype.Numeric) decimal.NullDecimal {
	if !n.Valid || n.NaN || n.InfinityModifier != pgtype.Finite {
		return decimal.NullDecimal{}
	}

	if n.Int == nil {
		return decimal.NullDecimal{Decimal: decimal.Zero, Valid: true}
	}

	d := decimal.NewFromBigInt(n.Int, n.Exp)

	return decimal.NullDecimal{Decimal: d, Valid: true}
}

func dateToPgDate(t time.Time) pgtype.Date {
	return pgtype.Date{Time: domain.DateOnly(t), Valid: true}
}

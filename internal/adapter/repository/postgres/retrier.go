package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
)

// PostgreSQL error codes for retryable errors.
const (
	pgErrDeadlock             = "40P01"
	pgErrSerializationFailure = "40001"
	pgErrLockNotAvailable     = "55P03"
)

// Retrier implements usecase.Retrier for ledger replacement transactions.
type Retrier struct {
	maxRetries      int
	initialInterval time.Duration
	maxInterval     time.Duration
	maxElapsedTime  time.Duration
	logger          zerolog.Logger
}

// NewRetrier creates a retrier allowing three retries within ten seconds.
func NewRetrier(logger zerolog.Logger) *Retrier {
	return &Retrier{
		maxRetries:      3,
		initialInterval: 50 * time.Millisecond,
		maxInterval:     1 * time.Second,
		maxElapsedTime:  10 * time.Second,
		logger:          logger,
	}
}

// Retry runs operation, retrying transient lock and serialization failures
// with exponential backoff. Other errors are returned at once.
func (r *Retrier) Retry(ctx context.Context, operation func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.initialInterval
	b.MaxInterval = r.maxInterval
	b.MaxElapsedTime = r.maxElapsedTime

	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(r.maxRetries)), ctx)

	attempt := 0
	return backoff.RetryNotify(func() error {
		attempt++
		err := operation()
		if err != nil && !isRetryableError(err) {
			return backoff.Permanent(err)
		}
		return err
	}, policy, func(err error, wait time.Duration) {
		r.logger.Warn().
			Err(err).
			Str("pg_code", pgErrorCode(err)).
			Int("attempt", attempt).
			Dur("wait", wait).
			Msg("retryable database error, retrying")
	})
}

// isRetryableError checks if a PostgreSQL error should trigger a retry.
func isRetryableError(err error) bool {
	switch pgErrorCode(err) {
	case pgErrDeadlock, pgErrSerializationFailure, pgErrLockNotAvailable:
		return true
	}
	return false
}

func pgErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

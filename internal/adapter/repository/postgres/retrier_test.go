package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
)

func newFastRetrier(maxRetries int) *Retrier {
	r := NewRetrier(zerolog.Nop())
	r.maxRetries = maxRetries
	r.initialInterval = 1 * time.Millisecond
	r.maxInterval = 2 * time.Millisecond
	r.maxElapsedTime = time.Second
	return r
}

func TestRetrierRetriesOnRetryableError(t *testing.T) {
	r := newFastRetrier(2)

	attempts := 0
	err := r.Retry(context.Background(), func() error {
		attempts++
		if attempts < 2 {
			return &pgconn.PgError{Code: pgErrDeadlock}
		}
		return nil
	})

	if err != nil {
		t.Fatalf("expected success after retry, got %v", err)
	}
	if attempts != 2 {
		t.Fatalf("expected 2 attempts, got %d", attempts)
	}
}

func TestRetrierRetriesWrappedSerializationFailure(t *testing.T) {
	r := newFastRetrier(3)

	attempts := 0
	err := r.Retry(context.Background(), func() error {
		attempts++
		if attempts < 3 {
			return fmt.Errorf("replace entries: %w", &pgconn.PgError{Code: pgErrSerializationFailure})
		}
		return nil
	})

	if err != nil {
		t.Fatalf("expected success after retry, got %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestRetrierGivesUpAfterMaxRetries(t *testing.T) {
	r := newFastRetrier(2)

	attempts := 0
	err := r.Retry(context.Background(), func() error {
		attempts++
		return &pgconn.PgError{Code: pgErrDeadlock}
	})

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		t.Fatalf("expected pg error after exhausting retries, got %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestRetrierStopsOnPermanentError(t *testing.T) {
	r := newFastRetrier(3)
	attempts := 0
	permanentErr := errors.New("permanent")

	err := r.Retry(context.Background(), func() error {
		attempts++
		return permanentErr
	})

	if !errors.Is(err, permanentErr) {
		t.Fatalf("expected permanent error, got %v", err)
	}
	if attempts != 1 {
		t.Fatalf("expected 1 attempt, got %d", attempts)
	}
}

func TestIsRetryableError(t *testing.T) {
	for _, code := range []string{pgErrDeadlock, pgErrSerializationFailure, pgErrLockNotAvailable} {
		if !isRetryableError(&pgconn.PgError{Code: code}) {
			t.Fatalf("expected %s to be retryable", code)
		}
	}

	if isRetryableError(&pgconn.PgError{Code: "23505"}) {
		t.Fatalf("expected unique violation to be non-retryable")
	}

	if isRetryableError(errors.New("other")) {
		t.Fatalf("expected generic error to be non-retryable")
	}
}

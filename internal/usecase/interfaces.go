package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/ledgerreplay/internal/domain"
)

// SubjectRepository resolves ledger subjects of one kind.
type SubjectRepository interface {
	// GetSubject returns domain.ErrSubjectNotFound for unknown ids.
	GetSubject(ctx context.Context, id string) (*domain.Subject, error)
	ListSubjectIDs(ctx context.Context) ([]string, error)
}

// EmployeeRepository defines read access for employees.
type EmployeeRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Employee, error)
	ListIDs(ctx context.Context) ([]string, error)
}

// BankRepository defines read access for banks.
type BankRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Bank, error)
	ListIDs(ctx context.Context) ([]string, error)
	ListByBranch(ctx context.Context, branch string) ([]*domain.Bank, error)
}

// AdvanceRepository defines data access for employee advances.
type AdvanceRepository interface {
	ListByEmployee(ctx context.Context, employeeID string) ([]*domain.Advance, error)
	Delete(ctx context.Context, id string) error
}

// AdjustmentRepository defines read access for employee adjustments.
type AdjustmentRepository interface {
	ListByEmployee(ctx context.Context, employeeID string) ([]*domain.Adjustment, error)
}

// PayrollRepository defines read access for payroll runs.
type PayrollRepository interface {
	ListByEmployee(ctx context.Context, employeeID string) ([]*domain.Payroll, error)
	// ExistingIDs returns the subset of ids that still exist.
	ExistingIDs(ctx context.Context, ids []string) (map[string]bool, error)
}

// BankTransactionRepository defines read access for direct bank transactions.
type BankTransactionRepository interface {
	ListByBank(ctx context.Context, bankID string) ([]*domain.BankTransaction, error)
}

// DailyCashRepository defines read access for daily-cash batches.
type DailyCashRepository interface {
	ListByBank(ctx context.Context, bankID string) ([]*domain.DailyCashBatch, error)
}

// BankTransferRepository defines read access for inter-bank transfers.
type BankTransferRepository interface {
	// ListByBank returns transfers where the bank is either side.
	ListByBank(ctx context.Context, bankID string) ([]*domain.BankTransfer, error)
}

// EntryRepository defines data access for materialized ledger entries.
type EntryRepository interface {
	// ReplaceEntries deletes the subject's entries and inserts the new set.
	ReplaceEntries(ctx context.Context, tx Transaction, kind domain.SubjectKind, subjectID string, entries []*domain.LedgerEntry) error
	GetEntries(ctx context.Context, kind domain.SubjectKind, subjectID string, r domain.DateRange) ([]*domain.LedgerEntry, error)
	// GetLastEntry returns the entry with the highest sequence, or nil.
	GetLastEntry(ctx context.Context, kind domain.SubjectKind, subjectID string) (*domain.LedgerEntry, error)
	// SumNet returns the sum of debit minus credit over entries dated on or before asOf.
	SumNet(ctx context.Context, kind domain.SubjectKind, subjectID string, asOf time.Time) (decimal.Decimal, error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Retrier retries operations that failed with transient storage errors.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Locker serializes work on a key.
type Locker interface {
	// Lock blocks until the key is held or ctx is done.
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Release drops a claimed key so the request can be retried.
	Release(ctx context.Context, key string) error
}

// MetricsRecorder records rebuild outcomes.
type MetricsRecorder interface {
	ObserveRebuild(kind domain.SubjectKind, status string, duration time.Duration, entries int)
	IncSkipped(kind domain.SubjectKind, reason string, sourceType domain.SourceType)
}

// SourceAdapter collects the normalized events one source type contributes
// to a subject's ledger.
type SourceAdapter interface {
	SourceType() domain.SourceType
	Collect(ctx context.Context, subjectID string) (*Collection, error)
}

// OrphanCleaner deletes source records that reference missing upstream records.
type OrphanCleaner interface {
	DeleteOrphans(ctx context.Context, orphans []domain.SourceRef) error
}

// SourceChangeSubscriber is the registration surface of a source-change bus.
type SourceChangeSubscriber interface {
	Register(sourceType domain.SourceType, handler func(ctx context.Context, ev *domain.SourceChanged) error)
}

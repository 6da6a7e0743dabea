package mocks

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/ledgerreplay/internal/domain"
	"github.com/iho/ledgerreplay/internal/usecase"
)

// FakeEmployeeRepository is an in-memory EmployeeRepository.
type FakeEmployeeRepository struct {
	mu        sync.RWMutex
	employees map[string]*domain.Employee

	GetByIDErr error
}

func NewFakeEmployeeRepository(employees ...*domain.Employee) *FakeEmployeeRepository {
	r := &FakeEmployeeRepository{employees: make(map[string]*domain.Employee)}
	for _, e := range employees {
		r.employees[e.ID] = e
	}
	return r
}

func (r *FakeEmployeeRepository) Put(e *domain.Employee) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.employees[e.ID] = e
}

func (r *FakeEmployeeRepository) GetByID(ctx context.Context, id string) (*domain.Employee, error) {
	if r.GetByIDErr != nil {
		return nil, r.GetByIDErr
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.employees[id]; ok {
		return e, nil
	}
	return nil, domain.ErrSubjectNotFound
}

func (r *FakeEmployeeRepository) ListIDs(ctx context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedKeys(r.employees), nil
}

// FakeBankRepository is an in-memory BankRepository.
type FakeBankRepository struct {
	mu    sync.RWMutex
	banks map[string]*domain.Bank
}

func NewFakeBankRepository(banks ...*domain.Bank) *FakeBankRepository {
	r := &FakeBankRepository{banks: make(map[string]*domain.Bank)}
	for _, b := range banks {
		r.banks[b.ID] = b
	}
	return r
}

func (r *FakeBankRepository) GetByID(ctx context.Context, id string) (*domain.Bank, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if b, ok := r.banks[id]; ok {
		return b, nil
	}
	return nil, domain.ErrSubjectNotFound
}

func (r *FakeBankRepository) ListIDs(ctx context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedKeys(r.banks), nil
}

func (r *FakeBankRepository) ListByBranch(ctx context.Context, branch string) ([]*domain.Bank, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domain.Bank
	for _, id := range sortedKeys(r.banks) {
		if r.banks[id].Branch == branch {
			out = append(out, r.banks[id])
		}
	}
	return out, nil
}

// FakeAdvanceRepository is an in-memory AdvanceRepository.
type FakeAdvanceRepository struct {
	mu       sync.Mutex
	advances []*domain.Advance

	ListErr   error
	DeleteErr error
	Deleted   []string
}

func NewFakeAdvanceRepository(advances ...*domain.Advance) *FakeAdvanceRepository {
	return &FakeAdvanceRepository{advances: advances}
}

func (r *FakeAdvanceRepository) Add(a *domain.Advance) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.advances = append(r.advances, a)
}

func (r *FakeAdvanceRepository) ListByEmployee(ctx context.Context, employeeID string) ([]*domain.Advance, error) {
	if r.ListErr != nil {
		return nil, r.ListErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Advance
	for _, a := range r.advances {
		if a.EmployeeID == employeeID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *FakeAdvanceRepository) Delete(ctx context.Context, id string) error {
	if r.DeleteErr != nil {
		return r.DeleteErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, a := range r.advances {
		if a.ID == id {
			r.advances = append(r.advances[:i], r.advances[i+1:]...)
			r.Deleted = append(r.Deleted, id)
			return nil
		}
	}
	return nil
}

// FakeAdjustmentRepository is an in-memory AdjustmentRepository.
type FakeAdjustmentRepository struct {
	Adjustments []*domain.Adjustment
}

func (r *FakeAdjustmentRepository) ListByEmployee(ctx context.Context, employeeID string) ([]*domain.Adjustment, error) {
	var out []*domain.Adjustment
	for _, a := range r.Adjustments {
		if a.EmployeeID == employeeID {
			out = append(out, a)
		}
	}
	return out, nil
}

// FakePayrollRepository is an in-memory PayrollRepository.
type FakePayrollRepository struct {
	Payrolls []*domain.Payroll
}

func (r *FakePayrollRepository) ListByEmployee(ctx context.Context, employeeID string) ([]*domain.Payroll, error) {
	var out []*domain.Payroll
	for _, p := range r.Payrolls {
		if p.EmployeeID == employeeID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *FakePayrollRepository) ExistingIDs(ctx context.Context, ids []string) (map[string]bool, error) {
	out := make(map[string]bool, len(ids))
	for _, id := range ids {
		for _, p := range r.Payrolls {
			if p.ID == id {
				out[id] = true
			}
		}
	}
	return out, nil
}

// FakeBankTransactionRepository is an in-memory BankTransactionRepository.
type FakeBankTransactionRepository struct {
	Transactions []*domain.BankTransaction
}

func (r *FakeBankTransactionRepository) ListByBank(ctx context.Context, bankID string) ([]*domain.BankTransaction, error) {
	var out []*domain.BankTransaction
	for _, t := range r.Transactions {
		if t.BankID == bankID {
			out = append(out, t)
		}
	}
	return out, nil
}

// FakeDailyCashRepository is an in-memory DailyCashRepository.
type FakeDailyCashRepository struct {
	Batches []*domain.DailyCashBatch
}

func (r *FakeDailyCashRepository) ListByBank(ctx context.Context, bankID string) ([]*domain.DailyCashBatch, error) {
	var out []*domain.DailyCashBatch
	for _, b := range r.Batches {
		if b.BankID == bankID {
			out = append(out, b)
		}
	}
	return out, nil
}

// FakeBankTransferRepository is an in-memory BankTransferRepository.
type FakeBankTransferRepository struct {
	Transfers []*domain.BankTransfer
}

func (r *FakeBankTransferRepository) ListByBank(ctx context.Context, bankID string) ([]*domain.BankTransfer, error) {
	var out []*domain.BankTransfer
	for _, t := range r.Transfers {
		if t.FromBankID == bankID || t.ToBankID == bankID {
			out = append(out, t)
		}
	}
	return out, nil
}

// FakeTxManager hands out FakeTx transactions.
type FakeTxManager struct {
	BeginErr  error
	CommitErr error

	mu         sync.Mutex
	Committed  int
	RolledBack int
}

func (m *FakeTxManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginErr != nil {
		return nil, m.BeginErr
	}
	return &FakeTx{manager: m}, nil
}

// FakeTx runs its staged writes on commit.
type FakeTx struct {
	manager *FakeTxManager
	staged  []func()
	done    bool
}

func (t *FakeTx) stage(fn func()) {
	t.staged = append(t.staged, fn)
}

func (t *FakeTx) Commit(ctx context.Context) error {
	if t.manager.CommitErr != nil {
		return t.manager.CommitErr
	}
	for _, fn := range t.staged {
		fn()
	}
	t.done = true
	t.manager.mu.Lock()
	t.manager.Committed++
	t.manager.mu.Unlock()
	return nil
}

func (t *FakeTx) Rollback(ctx context.Context) error {
	if t.done {
		return nil
	}
	t.done = true
	t.staged = nil
	t.manager.mu.Lock()
	t.manager.RolledBack++
	t.manager.mu.Unlock()
	return nil
}

// FakeEntryRepository is an in-memory EntryRepository. Replacements only
// become visible when the FakeTx commits.
type FakeEntryRepository struct {
	mu      sync.RWMutex
	entries map[string][]*domain.LedgerEntry

	ReplaceErr error
	Replaced   int
}

func NewFakeEntryRepository() *FakeEntryRepository {
	return &FakeEntryRepository{entries: make(map[string][]*domain.LedgerEntry)}
}

func entryKey(kind domain.SubjectKind, subjectID string) string {
	return string(kind) + "/" + subjectID
}

func (r *FakeEntryRepository) ReplaceEntries(ctx context.Context, tx usecase.Transaction, kind domain.SubjectKind, subjectID string, entries []*domain.LedgerEntry) error {
	if r.ReplaceErr != nil {
		return r.ReplaceErr
	}
	copied := make([]*domain.LedgerEntry, len(entries))
	for i, e := range entries {
		c := *e
		copied[i] = &c
	}
	apply := func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.entries[entryKey(kind, subjectID)] = copied
		r.Replaced++
	}
	if ftx, ok := tx.(*FakeTx); ok {
		ftx.stage(apply)
		return nil
	}
	apply()
	return nil
}

// Seed sets the stored entries of a subject directly.
func (r *FakeEntryRepository) Seed(kind domain.SubjectKind, subjectID string, entries []*domain.LedgerEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[entryKey(kind, subjectID)] = entries
}

func (r *FakeEntryRepository) GetEntries(ctx context.Context, kind domain.SubjectKind, subjectID string, dr domain.DateRange) ([]*domain.LedgerEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domain.LedgerEntry
	for _, e := range r.entries[entryKey(kind, subjectID)] {
		if dr.Contains(e.Date) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *FakeEntryRepository) GetLastEntry(ctx context.Context, kind domain.SubjectKind, subjectID string) (*domain.LedgerEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entries := r.entries[entryKey(kind, subjectID)]
	if len(entries) == 0 {
		return nil, nil
	}
	return entries[len(entries)-1], nil
}

func (r *FakeEntryRepository) SumNet(ctx context.Context, kind domain.SubjectKind, subjectID string, asOf time.Time) (decimal.Decimal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sum := decimal.Zero
	for _, e := range r.entries[entryKey(kind, subjectID)] {
		if !e.Date.After(asOf) {
			sum = sum.Add(e.Net())
		}
	}
	return sum, nil
}

// SequenceIDGenerator returns run-1, run-2, ...
type SequenceIDGenerator struct {
	mu sync.Mutex
	n  int
}

func (g *SequenceIDGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return "run-" + strconv.Itoa(g.n)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// FakeCache is an in-memory Cache. TTLs are ignored.
type FakeCache struct {
	mu     sync.Mutex
	values map[string][]byte
}

func NewFakeCache() *FakeCache {
	return &FakeCache{values: make(map[string][]byte)}
}

func (c *FakeCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.values[key], nil
}

func (c *FakeCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = value
	return nil
}

func (c *FakeCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.values, key)
	return nil
}

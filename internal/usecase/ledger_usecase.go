package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/iho/ledgerreplay/internal/domain"
)

// LedgerConfig holds per-ledger settings.
type LedgerConfig struct {
	Kind domain.SubjectKind
	// VerifiedOnly drops pending events from the persisted ledger and is the
	// default for statements.
	VerifiedOnly bool
	// OpeningVerifiedOnly is the default for opening balance queries.
	OpeningVerifiedOnly bool
	FetchConcurrency    int
	RebuildConcurrency  int
	BalanceCacheTTL     time.Duration
}

// LedgerDeps are the collaborators shared by every ledger.
type LedgerDeps struct {
	Entries   EntryRepository
	TxManager TransactionManager
	Retrier   Retrier
	Locker    Locker
	// Cache is optional.
	Cache   Cache
	IDGen   IDGenerator
	Metrics MetricsRecorder
}

// QueryOptions override ledger defaults for a single query.
type QueryOptions struct {
	VerifiedOnly *bool
}

// LedgerUseCase replays source records into a subject's ledger and answers
// balance queries. One instance serves one subject kind.
type LedgerUseCase struct {
	cfg       LedgerConfig
	subjects  SubjectRepository
	adapters  []SourceAdapter
	entries   EntryRepository
	txManager TransactionManager
	retrier   Retrier
	locker    Locker
	cache     Cache
	idGen     IDGenerator
	metrics   MetricsRecorder
	logger    zerolog.Logger
}

// NewLedgerUseCase creates a new LedgerUseCase.
func NewLedgerUseCase(
	cfg LedgerConfig,
	subjects SubjectRepository,
	adapters []SourceAdapter,
	deps LedgerDeps,
	logger zerolog.Logger,
) *LedgerUseCase {
	if cfg.FetchConcurrency <= 0 {
		cfg.FetchConcurrency = DefaultFetchConcurrency
	}
	if cfg.RebuildConcurrency <= 0 {
		cfg.RebuildConcurrency = DefaultRebuildConcurrency
	}
	if cfg.BalanceCacheTTL <= 0 {
		cfg.BalanceCacheTTL = DefaultBalanceCacheTTL
	}
	if deps.Locker == nil {
		deps.Locker = NewKeyedLocker()
	}
	if deps.Retrier == nil {
		deps.Retrier = noRetry{}
	}
	if deps.Metrics == nil {
		deps.Metrics = noopMetrics{}
	}
	if deps.IDGen == nil {
		deps.IDGen = ulidGenerator{}
	}

	return &LedgerUseCase{
		cfg:       cfg,
		subjects:  subjects,
		adapters:  adapters,
		entries:   deps.Entries,
		txManager: deps.TxManager,
		retrier:   deps.Retrier,
		locker:    deps.Locker,
		cache:     deps.Cache,
		idGen:     deps.IDGen,
		metrics:   deps.Metrics,
		logger:    logger.With().Str("ledger", string(cfg.Kind)).Logger(),
	}
}

// Kind returns the subject kind this ledger serves.
func (uc *LedgerUseCase) Kind() domain.SubjectKind {
	return uc.cfg.Kind
}

// SourceTypes returns the source types this ledger replays.
func (uc *LedgerUseCase) SourceTypes() []domain.SourceType {
	types := make([]domain.SourceType, 0, len(uc.adapters))
	for _, a := range uc.adapters {
		types = append(types, a.SourceType())
	}
	return types
}

// RebuildResult describes one rebuild.
type RebuildResult struct {
	RunID      string
	Kind       domain.SubjectKind
	SubjectID  string
	Skipped    bool
	Entries    int
	Balance    decimal.Decimal
	Orphans    []domain.SourceRef
	Suppressed []domain.SourceRef
	Malformed  []domain.SourceRef
	Duration   time.Duration
}

// Rebuild deletes and regenerates the subject's ledger from its source
// records. A missing subject is a no-op. On failure the previous entry set is
// kept and ErrRebuildFailed is returned.
func (uc *LedgerUseCase) Rebuild(ctx context.Context, subjectID string) (*RebuildResult, error) {
	start := time.Now()
	result := &RebuildResult{RunID: uc.idGen.Generate(), Kind: uc.cfg.Kind, SubjectID: subjectID}
	log := uc.logger.With().Str("subject_id", subjectID).Str("run_id", result.RunID).Logger()

	unlock, err := uc.locker.Lock(ctx, uc.lockKey(subjectID))
	if err != nil {
		return nil, fmt.Errorf("%w: acquire lock: %w", ErrRebuildFailed, err)
	}
	defer unlock()

	subject, err := uc.subjects.GetSubject(ctx, subjectID)
	if errors.Is(err, domain.ErrSubjectNotFound) {
		result.Skipped = true
		result.Duration = time.Since(start)
		uc.metrics.ObserveRebuild(uc.cfg.Kind, RebuildStatusSkipped, result.Duration, 0)
		log.Info().Msg("subject not found, rebuild skipped")
		return result, nil
	}
	if err != nil {
		return nil, uc.fail(ctx, log, subjectID, start, fmt.Errorf("load subject: %w", err))
	}

	replay, err := uc.replay(ctx, log, subjectID)
	if err != nil {
		return nil, uc.fail(ctx, log, subjectID, start, err)
	}

	events := replay.events
	if uc.cfg.VerifiedOnly {
		events = domain.Settled(events)
	}
	entries := domain.Accumulate(uc.cfg.Kind, subjectID, subject.OpeningSeed, events)

	if err := uc.replace(ctx, subjectID, entries); err != nil {
		return nil, uc.fail(ctx, log, subjectID, start, err)
	}

	uc.cleanupOrphans(ctx, log, replay.orphans)

	result.Entries = len(entries)
	result.Balance = domain.ClosingBalance(subject.OpeningSeed, entries)
	result.Orphans = replay.orphans
	result.Suppressed = replay.suppressed
	result.Malformed = replay.malformed
	result.Duration = time.Since(start)

	uc.storeBalance(ctx, subjectID, result.Balance)
	uc.metrics.ObserveRebuild(uc.cfg.Kind, RebuildStatusOK, result.Duration, result.Entries)

	log.Info().
		Int("entries", result.Entries).
		Str("balance", result.Balance.String()).
		Int("orphans", len(result.Orphans)).
		Int("suppressed", len(result.Suppressed)).
		Dur("duration", result.Duration).
		Msg("ledger rebuilt")

	return result, nil
}

func (uc *LedgerUseCase) fail(ctx context.Context, log zerolog.Logger, subjectID string, start time.Time, err error) error {
	uc.invalidateBalance(ctx, subjectID)
	uc.metrics.ObserveRebuild(uc.cfg.Kind, RebuildStatusFailed, time.Since(start), 0)
	log.Error().Err(err).Msg("ledger rebuild failed")
	return fmt.Errorf("%w: %w", ErrRebuildFailed, err)
}

func (uc *LedgerUseCase) replace(ctx context.Context, subjectID string, entries []*domain.LedgerEntry) error {
	ctx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	return uc.retrier.Retry(ctx, func() error {
		tx, err := uc.txManager.Begin(ctx)
		if err != nil {
			return fmt.Errorf("begin: %w", err)
		}
		defer tx.Rollback(ctx)

		if err := uc.entries.ReplaceEntries(ctx, tx, uc.cfg.Kind, subjectID, entries); err != nil {
			return fmt.Errorf("replace entries: %w", err)
		}

		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("commit: %w", err)
		}
		return nil
	})
}

func (uc *LedgerUseCase) cleanupOrphans(ctx context.Context, log zerolog.Logger, orphans []domain.SourceRef) {
	if len(orphans) == 0 {
		return
	}
	for _, a := range uc.adapters {
		cleaner, ok := a.(OrphanCleaner)
		if !ok {
			continue
		}
		if err := cleaner.DeleteOrphans(ctx, orphans); err != nil {
			log.Warn().Err(err).Str("source_type", string(a.SourceType())).Msg("failed to delete orphan source records")
		}
	}
	for _, ref := range orphans {
		log.Warn().Str("source_type", string(ref.Type)).Str("source_id", ref.ID).Msg("orphan source record removed")
	}
}

type replayed struct {
	events     []domain.RawEvent
	orphans    []domain.SourceRef
	suppressed []domain.SourceRef
	malformed  []domain.SourceRef
}

// replay fetches every source with bounded concurrency and returns the
// events in sequence order.
func (uc *LedgerUseCase) replay(ctx context.Context, log zerolog.Logger, subjectID string) (*replayed, error) {
	collections := make([]*Collection, len(uc.adapters))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uc.cfg.FetchConcurrency)
	for i, a := range uc.adapters {
		g.Go(func() error {
			c, err := a.Collect(gctx, subjectID)
			if err != nil {
				return fmt.Errorf("collect %s: %w", a.SourceType(), err)
			}
			collections[i] = c
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &replayed{}
	for _, c := range collections {
		if c == nil {
			continue
		}
		for _, ev := range c.Events {
			if err := ev.Validate(); err != nil {
				ev.Amount, ev.DeductionRate, ev.Malformed = decimal.Zero, nil, true
				if !ev.Sign.IsValid() {
					ev.Sign = domain.SignDebit
				}
			}
			if ev.Malformed {
				out.malformed = append(out.malformed, ev.Ref())
				uc.metrics.IncSkipped(uc.cfg.Kind, SkipReasonMalformed, ev.SourceType)
				log.Warn().Str("source_type", string(ev.SourceType)).Str("source_id", ev.SourceID).Msg("malformed amount coerced to zero")
			}
			out.events = append(out.events, ev)
		}
		for _, ref := range c.Orphans {
			uc.metrics.IncSkipped(uc.cfg.Kind, SkipReasonOrphan, ref.Type)
			out.orphans = append(out.orphans, ref)
		}
		for _, ref := range c.Suppressed {
			uc.metrics.IncSkipped(uc.cfg.Kind, SkipReasonMirror, ref.Type)
			log.Debug().Str("source_type", string(ref.Type)).Str("source_id", ref.ID).Msg("mirrored source record suppressed")
			out.suppressed = append(out.suppressed, ref)
		}
	}
	out.events = domain.Sequence(out.events)
	return out, nil
}

// RebuildSummary describes a batch rebuild.
type RebuildSummary struct {
	Rebuilt int
	Skipped int
	Failed  int
	Results []*RebuildResult
}

// RebuildAll rebuilds every subject of this ledger. Subjects are rebuilt
// independently; failures are collected and returned joined.
func (uc *LedgerUseCase) RebuildAll(ctx context.Context) (*RebuildSummary, error) {
	ids, err := uc.subjects.ListSubjectIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}

	var (
		mu      sync.Mutex
		errs    []error
		summary = &RebuildSummary{}
		results = make([]*RebuildResult, len(ids))
	)

	var g errgroup.Group
	g.SetLimit(uc.cfg.RebuildConcurrency)
	for i, id := range ids {
		g.Go(func() error {
			res, err := uc.Rebuild(ctx, id)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				summary.Failed++
				errs = append(errs, fmt.Errorf("%s %s: %w", uc.cfg.Kind, id, err))
			case res.Skipped:
				summary.Skipped++
			default:
				summary.Rebuilt++
			}
			results[i] = res
			return nil
		})
	}
	_ = g.Wait()

	for _, r := range results {
		if r != nil {
			summary.Results = append(summary.Results, r)
		}
	}

	uc.logger.Info().
		Int("rebuilt", summary.Rebuilt).
		Int("skipped", summary.Skipped).
		Int("failed", summary.Failed).
		Msg("batch rebuild finished")

	return summary, errors.Join(errs...)
}

// GetEntries returns the persisted entries of a subject within r.
func (uc *LedgerUseCase) GetEntries(ctx context.Context, subjectID string, r domain.DateRange) ([]*domain.LedgerEntry, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	if _, err := uc.subjects.GetSubject(ctx, subjectID); err != nil {
		return nil, err
	}
	return uc.entries.GetEntries(ctx, uc.cfg.Kind, subjectID, r)
}

// GetCurrentBalance returns the balance of the last entry, or the opening
// seed when the subject has no entries.
func (uc *LedgerUseCase) GetCurrentBalance(ctx context.Context, subjectID string) (decimal.Decimal, error) {
	if cached, ok := uc.cachedBalance(ctx, subjectID); ok {
		return cached, nil
	}

	// The miss path fills the cache, so it must not interleave with a
	// rebuild storing a newer balance.
	if uc.cache != nil {
		unlock, err := uc.locker.Lock(ctx, uc.lockKey(subjectID))
		if err != nil {
			return decimal.Zero, fmt.Errorf("acquire lock: %w", err)
		}
		defer unlock()
	}

	subject, err := uc.subjects.GetSubject(ctx, subjectID)
	if err != nil {
		return decimal.Zero, err
	}

	last, err := uc.entries.GetLastEntry(ctx, uc.cfg.Kind, subjectID)
	if err != nil {
		return decimal.Zero, err
	}

	balance := subject.OpeningSeed
	if last != nil {
		balance = last.Balance
	}
	uc.storeBalance(ctx, subjectID, balance)
	return balance, nil
}

// BalanceAsOf returns the opening seed plus every persisted entry dated on
// or before asOf.
func (uc *LedgerUseCase) BalanceAsOf(ctx context.Context, subjectID string, asOf time.Time) (decimal.Decimal, error) {
	subject, err := uc.subjects.GetSubject(ctx, subjectID)
	if err != nil {
		return decimal.Zero, err
	}

	net, err := uc.entries.SumNet(ctx, uc.cfg.Kind, subjectID, domain.DateOnly(asOf))
	if err != nil {
		return decimal.Zero, err
	}
	return subject.OpeningSeed.Add(net), nil
}

// OpeningBalanceAsOf replays the subject's sources and returns the balance
// over every event settling strictly before date.
func (uc *LedgerUseCase) OpeningBalanceAsOf(ctx context.Context, subjectID string, date time.Time, opts QueryOptions) (decimal.Decimal, error) {
	subject, err := uc.subjects.GetSubject(ctx, subjectID)
	if err != nil {
		return decimal.Zero, err
	}

	replay, err := uc.replay(ctx, uc.logger, subjectID)
	if err != nil {
		return decimal.Zero, err
	}

	events := replay.events
	if resolveFlag(opts.VerifiedOnly, uc.cfg.OpeningVerifiedOnly) {
		events = domain.Settled(events)
	}
	return domain.OpeningBalanceBefore(subject.OpeningSeed, events, date), nil
}

// Statement is a period view of a ledger seeded by its opening balance.
type Statement struct {
	Subject        *domain.Subject
	From           time.Time
	To             time.Time
	VerifiedOnly   bool
	OpeningBalance decimal.Decimal
	Entries        []*domain.LedgerEntry
	TotalDebit     decimal.Decimal
	TotalCredit    decimal.Decimal
	ClosingBalance decimal.Decimal
}

// Statement replays the subject's sources and lists the events settling in
// [from, to] with running balances from the opening balance as of from.
func (uc *LedgerUseCase) Statement(ctx context.Context, subjectID string, from, to time.Time, opts QueryOptions) (*Statement, error) {
	r := domain.DateRange{From: &from, To: &to}
	if err := r.Validate(); err != nil {
		return nil, err
	}

	subject, err := uc.subjects.GetSubject(ctx, subjectID)
	if err != nil {
		return nil, err
	}

	replay, err := uc.replay(ctx, uc.logger, subjectID)
	if err != nil {
		return nil, err
	}

	verifiedOnly := resolveFlag(opts.VerifiedOnly, uc.cfg.VerifiedOnly)
	events := replay.events
	if verifiedOnly {
		events = domain.Settled(events)
	}

	opening := domain.OpeningBalanceBefore(subject.OpeningSeed, events, from)
	entries := domain.Accumulate(uc.cfg.Kind, subjectID, opening, domain.Within(events, r))

	st := &Statement{
		Subject:        subject,
		From:           domain.DateOnly(from),
		To:             domain.DateOnly(to),
		VerifiedOnly:   verifiedOnly,
		OpeningBalance: opening,
		Entries:        entries,
		TotalDebit:     decimal.Zero,
		TotalCredit:    decimal.Zero,
	}
	for _, e := range entries {
		st.TotalDebit = st.TotalDebit.Add(e.Debit)
		st.TotalCredit = st.TotalCredit.Add(e.Credit)
	}
	st.ClosingBalance = domain.ClosingBalance(opening, entries)
	return st, nil
}

// HandleSourceChanged rebuilds every subject a source change affects.
func (uc *LedgerUseCase) HandleSourceChanged(ctx context.Context, ev *domain.SourceChanged) error {
	if !uc.replays(ev.SourceType) {
		return fmt.Errorf("%w: %s", ErrSubjectKindMismatch, ev.SourceType)
	}

	var errs []error
	for _, subjectID := range ev.Subjects {
		if _, err := uc.Rebuild(ctx, subjectID); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Subscribe registers the ledger for every source type it replays.
func (uc *LedgerUseCase) Subscribe(bus SourceChangeSubscriber) {
	for _, t := range uc.SourceTypes() {
		bus.Register(t, uc.HandleSourceChanged)
	}
}

func (uc *LedgerUseCase) replays(t domain.SourceType) bool {
	for _, a := range uc.adapters {
		if a.SourceType() == t {
			return true
		}
	}
	return false
}

func (uc *LedgerUseCase) lockKey(subjectID string) string {
	return "ledger:" + string(uc.cfg.Kind) + ":" + subjectID
}

func (uc *LedgerUseCase) balanceKey(subjectID string) string {
	return "balance:" + string(uc.cfg.Kind) + ":" + subjectID
}

func (uc *LedgerUseCase) cachedBalance(ctx context.Context, subjectID string) (decimal.Decimal, bool) {
	if uc.cache == nil {
		return decimal.Zero, false
	}
	raw, err := uc.cache.Get(ctx, uc.balanceKey(subjectID))
	if err != nil || raw == nil {
		return decimal.Zero, false
	}
	balance, err := decimal.NewFromString(string(raw))
	if err != nil {
		return decimal.Zero, false
	}
	return balance, true
}

func (uc *LedgerUseCase) storeBalance(ctx context.Context, subjectID string, balance decimal.Decimal) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.Set(ctx, uc.balanceKey(subjectID), []byte(balance.String()), uc.cfg.BalanceCacheTTL); err != nil {
		uc.logger.Warn().Err(err).Str("subject_id", subjectID).Msg("failed to cache balance")
	}
}

func (uc *LedgerUseCase) invalidateBalance(ctx context.Context, subjectID string) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.Delete(ctx, uc.balanceKey(subjectID)); err != nil {
		uc.logger.Warn().Err(err).Str("subject_id", subjectID).Msg("failed to invalidate cached balance")
	}
}

func resolveFlag(override *bool, def bool) bool {
	if override != nil {
		return *override
	}
	return def
}

type noRetry struct{}

func (noRetry) Retry(_ context.Context, operation func() error) error { return operation() }

type ulidGenerator struct{}

func (ulidGenerator) Generate() string { return ulid.Make().String() }

type noopMetrics struct{}

func (noopMetrics) ObserveRebuild(domain.SubjectKind, string, time.Duration, int) {}

func (noopMetrics) IncSkipped(domain.SubjectKind, string, domain.SourceType) {}

package usecase

import "time"

const (
	// DefaultTransactionTimeout is the maximum duration for the replace transaction
	DefaultTransactionTimeout = 10 * time.Second

	// DefaultBalanceCacheTTL is how long a current balance stays cached
	DefaultBalanceCacheTTL = 5 * time.Minute

	// DefaultRebuildConcurrency bounds parallel subject rebuilds in RebuildAll
	DefaultRebuildConcurrency = 4

	// DefaultFetchConcurrency bounds parallel source fetches within one rebuild
	DefaultFetchConcurrency = 3

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour
)

// Rebuild statuses reported to metrics.
const (
	RebuildStatusOK      = "ok"
	RebuildStatusFailed  = "failed"
	RebuildStatusSkipped = "skipped"
)

// Skip reasons reported to metrics.
const (
	SkipReasonOrphan    = "orphan"
	SkipReasonMirror    = "mirror"
	SkipReasonMalformed = "malformed"
)

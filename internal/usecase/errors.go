package usecase

import "errors"

var (
	// ErrRebuildFailed is returned when a ledger could not be replaced. The
	// previous entry set is retained.
	ErrRebuildFailed = errors.New("rebuild failed, previous ledger retained")

	// ErrSubjectKindMismatch is returned when a source change is routed to the wrong ledger.
	ErrSubjectKindMismatch = errors.New("source type does not belong to this ledger")
)

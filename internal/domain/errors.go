package domain

import "errors"

var (
	// Subject errors
	ErrSubjectNotFound    = errors.New("subject not found")
	ErrUnknownSubjectKind = errors.New("unknown subject kind")

	// Event errors
	ErrInvalidAmount       = errors.New("amount must not be negative")
	ErrInvalidSign         = errors.New("sign must be +1 or -1")
	ErrUnknownSourceType   = errors.New("unknown source type")
	ErrSameBank            = errors.New("cannot transfer to same bank")
	ErrInvalidPayrollMonth = errors.New("payroll month must be YYYY-MM")
	ErrInvalidDeduction    = errors.New("deduction rate must be between 0 and 100")

	// Query errors
	ErrInvalidDateRange = errors.New("range start is after range end")

	// Storage errors
	ErrStorage = errors.New("storage failure")
)

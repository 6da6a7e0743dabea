package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Validation errors
var (
	ErrInvalidIDFormat     = errors.New("invalid ID format")
	ErrInvalidDate         = errors.New("invalid date, expected YYYY-MM-DD")
	ErrInvalidSourceChange = errors.New("invalid source change")
)

// Validation constants
const (
	MaxIDLength = 64
	DateLayout  = "2006-01-02"
)

var idRegex = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ValidateID validates a subject or source record id
func ValidateID(id string) error {
	id = strings.TrimSpace(id)

	if id == "" {
		return fmt.Errorf("%w: id cannot be empty", ErrInvalidIDFormat)
	}

	if len(id) > MaxIDLength {
		return fmt.Errorf("%w: id exceeds %d characters", ErrInvalidIDFormat, MaxIDLength)
	}

	if !idRegex.MatchString(id) {
		return fmt.Errorf("%w: id contains forbidden characters", ErrInvalidIDFormat)
	}

	return nil
}

// ParseDate parses a YYYY-MM-DD calendar day
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}

// ValidateSourceChanged validates an event published by the CRUD layer
func ValidateSourceChanged(ev *SourceChanged) error {
	if !ev.SourceType.IsValid() {
		return fmt.Errorf("%w: %q", ErrUnknownSourceType, ev.SourceType)
	}

	if err := ValidateID(ev.SourceID); err != nil {
		return fmt.Errorf("%w: source id: %w", ErrInvalidSourceChange, err)
	}

	if !IsValidSourceAction(ev.Action) {
		return fmt.Errorf("%w: unknown action %q", ErrInvalidSourceChange, ev.Action)
	}

	if len(ev.Subjects) == 0 {
		return fmt.Errorf("%w: no subjects", ErrInvalidSourceChange)
	}

	for _, subject := range ev.Subjects {
		if err := ValidateID(subject); err != nil {
			return fmt.Errorf("%w: subject: %w", ErrInvalidSourceChange, err)
		}
	}

	return nil
}

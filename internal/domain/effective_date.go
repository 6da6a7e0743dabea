package domain

import "time"

// ResolveEffectiveDate returns the calendar day an event settles on.
// The first match wins: cheque date, then verification date of a verified
// event, then the stored date.
func ResolveEffectiveDate(e *RawEvent) time.Time {
	if e.EffectiveDateHint != nil && !e.EffectiveDateHint.IsZero() {
		return DateOnly(*e.EffectiveDateHint)
	}
	if e.IsVerified && e.VerifiedDate != nil && !e.VerifiedDate.IsZero() {
		return DateOnly(*e.VerifiedDate)
	}
	return DateOnly(e.StoredDate)
}

// DateOnly truncates t to midnight UTC of its calendar day.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// NextDay returns midnight of the day after t.
func NextDay(t time.Time) time.Time {
	return DateOnly(t).AddDate(0, 0, 1)
}

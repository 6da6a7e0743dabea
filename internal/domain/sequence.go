package domain

import (
	"cmp"
	"slices"
)

// SequenceKey is the total replay order of an event.
type SequenceKey struct {
	Year       int
	Month      int
	Priority   int
	Day        int
	CreatedAt  int64
	SourceType SourceType
	SourceID   string
	Leg        int
}

// KeyFor builds the sequence key of an event from its effective date.
func KeyFor(e *RawEvent) SequenceKey {
	date := ResolveEffectiveDate(e)
	return SequenceKey{
		Year:       date.Year(),
		Month:      int(date.Month()),
		Priority:   e.TieBreakPriority,
		Day:        date.Day(),
		CreatedAt:  e.CreatedAt.UnixNano(),
		SourceType: e.SourceType,
		SourceID:   e.SourceID,
		Leg:        e.Leg,
	}
}

// Compare orders keys by year, month, priority, day and creation time.
// Source type, id and leg make the order total when all of those collide.
func (k SequenceKey) Compare(o SequenceKey) int {
	return cmp.Or(
		cmp.Compare(k.Year, o.Year),
		cmp.Compare(k.Month, o.Month),
		cmp.Compare(k.Priority, o.Priority),
		cmp.Compare(k.Day, o.Day),
		cmp.Compare(k.CreatedAt, o.CreatedAt),
		cmp.Compare(k.SourceType, o.SourceType),
		cmp.Compare(k.SourceID, o.SourceID),
		cmp.Compare(k.Leg, o.Leg),
	)
}

// Sequence returns the events sorted into replay order. The input is not
// modified.
func Sequence(events []RawEvent) []RawEvent {
	type keyed struct {
		key   SequenceKey
		event RawEvent
	}
	items := make([]keyed, len(events))
	for i := range events {
		items[i] = keyed{key: KeyFor(&events[i]), event: events[i]}
	}
	slices.SortStableFunc(items, func(a, b keyed) int {
		return a.key.Compare(b.key)
	})
	out := make([]RawEvent, len(items))
	for i := range items {
		out[i] = items[i].event
	}
	return out
}

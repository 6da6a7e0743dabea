package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestResolveEffectiveDate(t *testing.T) {
	tests := []struct {
		name  string
		event RawEvent
		want  time.Time
	}{
		{
			name:  "stored date",
			event: RawEvent{StoredDate: day("2026-03-10")},
			want:  day("2026-03-10"),
		},
		{
			name: "cheque date wins over everything",
			event: RawEvent{
				StoredDate:        day("2026-03-10"),
				EffectiveDateHint: dayPtr("2026-04-02"),
				IsVerified:        true,
				VerifiedDate:      dayPtr("2026-03-15"),
			},
			want: day("2026-04-02"),
		},
		{
			name: "verified date when verified",
			event: RawEvent{
				StoredDate:   day("2026-03-10"),
				IsVerified:   true,
				VerifiedDate: dayPtr("2026-03-15"),
			},
			want: day("2026-03-15"),
		},
		{
			name: "verified date ignored while pending",
			event: RawEvent{
				StoredDate:   day("2026-03-10"),
				VerifiedDate: dayPtr("2026-03-15"),
			},
			want: day("2026-03-10"),
		},
		{
			name: "verified without date falls back to stored",
			event: RawEvent{
				StoredDate: day("2026-03-10"),
				IsVerified: true,
			},
			want: day("2026-03-10"),
		},
		{
			name:  "time of day is dropped",
			event: RawEvent{StoredDate: time.Date(2026, 3, 10, 23, 59, 0, 0, time.UTC)},
			want:  day("2026-03-10"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveEffectiveDate(&tt.event))
		})
	}
}

func TestNextDay(t *testing.T) {
	assert.Equal(t, day("2026-03-01"), NextDay(time.Date(2026, 2, 28, 18, 0, 0, 0, time.UTC)))
}

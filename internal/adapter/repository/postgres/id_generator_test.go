package postgres

import (
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
)

func TestULIDGeneratorIsMonotonic(t *testing.T) {
	g := NewULIDGenerator()
	fixed := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	g.now = func() time.Time { return fixed }

	prev := g.Generate()
	for i := 0; i < 100; i++ {
		next := g.Generate()
		if next <= prev {
			t.Fatalf("expected %s > %s", next, prev)
		}
		prev = next
	}
}

func TestULIDGeneratorProducesValidIDs(t *testing.T) {
	g := NewULIDGenerator()

	id, err := ulid.Parse(g.Generate())
	if err != nil {
		t.Fatalf("expected valid ulid: %v", err)
	}
	if id.Time() == 0 {
		t.Fatalf("expected timestamp in ulid")
	}
}

package eventbus

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/ledgerreplay/internal/domain"
)

type fixedID string

func (f fixedID) Generate() string { return string(f) }

type stubRecorder struct {
	calls []string
}

func (r *stubRecorder) IncSourceEvent(sourceType domain.SourceType, action string) {
	r.calls = append(r.calls, string(sourceType)+":"+action)
}

func newTestBus(rec Recorder) *Bus {
	b := New(Config{
		IDGenerator: fixedID("evt-1"),
		Recorder:    rec,
		Logger:      zerolog.New(io.Discard),
	})
	b.now = func() time.Time { return time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC) }
	return b
}

func validChange() *domain.SourceChanged {
	return &domain.SourceChanged{
		SourceType: domain.SourceTypeAdvance,
		SourceID:   "adv-1",
		Action:     domain.SourceActionUpdated,
		Subjects:   []string{"emp-1", "emp-2"},
	}
}

func TestPublishDeliversToEveryHandler(t *testing.T) {
	rec := &stubRecorder{}
	b := newTestBus(rec)

	var first, second *domain.SourceChanged
	b.Register(domain.SourceTypeAdvance, func(_ context.Context, ev *domain.SourceChanged) error {
		first = ev
		return nil
	})
	b.Register(domain.SourceTypeAdvance, func(_ context.Context, ev *domain.SourceChanged) error {
		second = ev
		return nil
	})

	if err := b.Publish(context.Background(), validChange()); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	if first == nil || second == nil {
		t.Fatalf("expected both handlers to run")
	}
	if first.ID != "evt-1" {
		t.Fatalf("expected generated id, got %q", first.ID)
	}
	if first.OccurredAt.IsZero() {
		t.Fatalf("expected occurred-at to be stamped")
	}
	if len(rec.calls) != 1 || rec.calls[0] != "employee_advance:updated" {
		t.Fatalf("unexpected recorder calls: %v", rec.calls)
	}
}

func TestPublishKeepsProvidedID(t *testing.T) {
	b := newTestBus(nil)

	var got string
	b.Register(domain.SourceTypeAdvance, func(_ context.Context, ev *domain.SourceChanged) error {
		got = ev.ID
		return nil
	})

	ev := validChange()
	ev.ID = "caller-id"
	if err := b.Publish(context.Background(), ev); err != nil {
		t.Fatalf("publish failed: %v", err)
	}
	if got != "caller-id" {
		t.Fatalf("expected caller id, got %q", got)
	}
}

func TestPublishWithoutSubscriber(t *testing.T) {
	b := newTestBus(nil)

	err := b.Publish(context.Background(), validChange())
	if !errors.Is(err, ErrNoSubscriber) {
		t.Fatalf("expected ErrNoSubscriber, got %v", err)
	}
}

func TestPublishRejectsInvalidChange(t *testing.T) {
	b := newTestBus(nil)
	called := false
	b.Register(domain.SourceTypeAdvance, func(context.Context, *domain.SourceChanged) error {
		called = true
		return nil
	})

	ev := validChange()
	ev.Subjects = nil

	if err := b.Publish(context.Background(), ev); !errors.Is(err, domain.ErrInvalidSourceChange) {
		t.Fatalf("expected ErrInvalidSourceChange, got %v", err)
	}
	if called {
		t.Fatalf("handler must not run for an invalid change")
	}
}

func TestPublishJoinsHandlerErrors(t *testing.T) {
	b := newTestBus(nil)
	errA := errors.New("a failed")
	ran := 0

	b.Register(domain.SourceTypeAdvance, func(context.Context, *domain.SourceChanged) error {
		ran++
		return errA
	})
	b.Register(domain.SourceTypeAdvance, func(context.Context, *domain.SourceChanged) error {
		ran++
		return nil
	})

	err := b.Publish(context.Background(), validChange())
	if !errors.Is(err, errA) {
		t.Fatalf("expected handler error, got %v", err)
	}
	if ran != 2 {
		t.Fatalf("expected both handlers to run, ran %d", ran)
	}
}

func TestRequireAll(t *testing.T) {
	b := newTestBus(nil)
	noop := func(context.Context, *domain.SourceChanged) error { return nil }

	b.Register(domain.SourceTypeAdvance, noop)
	b.Register(domain.SourceTypePayroll, noop)

	if err := b.RequireAll([]domain.SourceType{domain.SourceTypeAdvance, domain.SourceTypePayroll}); err != nil {
		t.Fatalf("expected all covered, got %v", err)
	}

	err := b.RequireAll(domain.AllSourceTypes())
	if !errors.Is(err, ErrNoSubscriber) {
		t.Fatalf("expected ErrNoSubscriber, got %v", err)
	}
}

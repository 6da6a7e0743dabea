package eventbus

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/ledgerreplay/internal/domain"
	"github.com/iho/ledgerreplay/internal/usecase"
)

// ErrNoSubscriber is returned when a source type has no registered handler.
var ErrNoSubscriber = errors.New("no subscriber for source type")

// Handler reacts to a source change.
type Handler func(ctx context.Context, ev *domain.SourceChanged) error

// Recorder counts published source changes.
type Recorder interface {
	IncSourceEvent(sourceType domain.SourceType, action string)
}

// Bus dispatches source changes to the ledgers that replay them.
type Bus struct {
	mu       sync.RWMutex
	handlers map[domain.SourceType][]Handler
	idGen    usecase.IDGenerator
	recorder Recorder
	logger   zerolog.Logger
	now      func() time.Time
}

// Config for Bus.
type Config struct {
	IDGenerator usecase.IDGenerator
	Recorder    Recorder // optional
	Logger      zerolog.Logger
}

// New creates a new Bus.
func New(cfg Config) *Bus {
	return &Bus{
		handlers: make(map[domain.SourceType][]Handler),
		idGen:    cfg.IDGenerator,
		recorder: cfg.Recorder,
		logger:   cfg.Logger,
		now:      time.Now,
	}
}

// Register adds a handler for a source type. A source type may have several
// handlers; each is invoked on publish.
func (b *Bus) Register(sourceType domain.SourceType, handler func(ctx context.Context, ev *domain.SourceChanged) error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[sourceType] = append(b.handlers[sourceType], handler)
	b.logger.Debug().
		Str("source_type", string(sourceType)).
		Int("handlers", len(b.handlers[sourceType])).
		Msg("source subscriber registered")
}

// RequireAll returns an error naming every source type with no handler.
func (b *Bus) RequireAll(types []domain.SourceType) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var errs []error
	for _, t := range types {
		if len(b.handlers[t]) == 0 {
			errs = append(errs, fmt.Errorf("%w: %s", ErrNoSubscriber, t))
		}
	}
	return errors.Join(errs...)
}

// Publish validates the change and delivers it to every handler of its
// source type. Handler failures are joined; all handlers run regardless.
func (b *Bus) Publish(ctx context.Context, ev *domain.SourceChanged) error {
	if err := domain.ValidateSourceChanged(ev); err != nil {
		return err
	}

	if ev.ID == "" && b.idGen != nil {
		ev.ID = b.idGen.Generate()
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = b.now().UTC()
	}

	b.mu.RLock()
	handlers := append([]Handler(nil), b.handlers[ev.SourceType]...)
	b.mu.RUnlock()

	if len(handlers) == 0 {
		return fmt.Errorf("%w: %s", ErrNoSubscriber, ev.SourceType)
	}

	if b.recorder != nil {
		b.recorder.IncSourceEvent(ev.SourceType, ev.Action)
	}

	b.logger.Info().
		Str("event_id", ev.ID).
		Str("source_type", string(ev.SourceType)).
		Str("source_id", ev.SourceID).
		Str("action", ev.Action).
		Strs("subjects", ev.Subjects).
		Msg("source change published")

	var errs []error
	for _, h := range handlers {
		if err := h(ctx, ev); err != nil {
			b.logger.Error().
				Err(err).
				Str("event_id", ev.ID).
				Str("source_type", string(ev.SourceType)).
				Msg("source change handler failed")
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/iho/ledgerreplay/internal/adapter/http/dto"
	"github.com/iho/ledgerreplay/internal/domain"
)

// SourceEventPublisher delivers source changes to the ledgers.
type SourceEventPublisher interface {
	Publish(ctx context.Context, ev *domain.SourceChanged) error
}

// SourceEventHandler accepts source change notifications.
type SourceEventHandler struct {
	bus    SourceEventPublisher
	logger zerolog.Logger
}

// NewSourceEventHandler creates a new SourceEventHandler.
func NewSourceEventHandler(bus SourceEventPublisher, logger zerolog.Logger) *SourceEventHandler {
	return &SourceEventHandler{bus: bus, logger: logger}
}

// Publish rebuilds the ledgers affected by a source change. It returns once
// every subscribed ledger has processed the event.
func (h *SourceEventHandler) Publish(w http.ResponseWriter, r *http.Request) {
	var req dto.SourceEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	ev := req.ToDomain()
	if err := h.bus.Publish(r.Context(), ev); err != nil {
		if mapDomainError(err) >= http.StatusInternalServerError {
			h.logger.Error().Err(err).
				Str("source_type", string(ev.SourceType)).
				Str("source_id", ev.SourceID).
				Msg("source event failed")
		}
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.SourceEventResponse{
		ID:         ev.ID,
		SourceType: string(ev.SourceType),
		SourceID:   ev.SourceID,
		Subjects:   ev.Subjects,
	})
}

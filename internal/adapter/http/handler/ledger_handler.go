package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/ledgerreplay/internal/adapter/http/dto"
	"github.com/iho/ledgerreplay/internal/domain"
	"github.com/iho/ledgerreplay/internal/usecase"
)

// LedgerService is the part of a ledger the HTTP layer uses.
type LedgerService interface {
	Kind() domain.SubjectKind
	Rebuild(ctx context.Context, subjectID string) (*usecase.RebuildResult, error)
	RebuildAll(ctx context.Context) (*usecase.RebuildSummary, error)
	GetEntries(ctx context.Context, subjectID string, r domain.DateRange) ([]*domain.LedgerEntry, error)
	GetCurrentBalance(ctx context.Context, subjectID string) (decimal.Decimal, error)
	BalanceAsOf(ctx context.Context, subjectID string, asOf time.Time) (decimal.Decimal, error)
	OpeningBalanceAsOf(ctx context.Context, subjectID string, date time.Time, opts usecase.QueryOptions) (decimal.Decimal, error)
	Statement(ctx context.Context, subjectID string, from, to time.Time, opts usecase.QueryOptions) (*usecase.Statement, error)
}

// LedgerHandler handles read and rebuild requests for one ledger.
type LedgerHandler struct {
	ledger LedgerService
	logger zerolog.Logger
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(ledger LedgerService, logger zerolog.Logger) *LedgerHandler {
	return &LedgerHandler{
		ledger: ledger,
		logger: logger.With().Str("kind", string(ledger.Kind())).Logger(),
	}
}

// Routes mounts the ledger endpoints on r.
func (h *LedgerHandler) Routes(r chi.Router) {
	r.Post("/rebuild", h.Rebuild)
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/entries", h.GetEntries)
		r.Get("/balance", h.GetBalance)
		r.Get("/balance/as-of", h.GetBalanceAsOf)
		r.Get("/opening-balance", h.GetOpeningBalance)
		r.Get("/statement", h.GetStatement)
	})
}

// GetEntries returns the persisted ledger of a subject, optionally bounded
// by from and to.
func (h *LedgerHandler) GetEntries(w http.ResponseWriter, r *http.Request) {
	id, ok := h.subjectID(w, r)
	if !ok {
		return
	}

	from, err := parseDateQuery(r, "from")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid from", err.Error())
		return
	}
	to, err := parseDateQuery(r, "to")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid to", err.Error())
		return
	}

	entries, err := h.ledger.GetEntries(r.Context(), id, domain.DateRange{From: from, To: to})
	if err != nil {
		h.fail(w, r, "get entries", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.EntriesResponse{
		Kind:      string(h.ledger.Kind()),
		SubjectID: id,
		Entries:   dto.EntriesFromDomain(entries),
	})
}

// GetBalance returns the subject's current balance.
func (h *LedgerHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	id, ok := h.subjectID(w, r)
	if !ok {
		return
	}

	balance, err := h.ledger.GetCurrentBalance(r.Context(), id)
	if err != nil {
		h.fail(w, r, "get balance", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.BalanceResponse{
		Kind:      string(h.ledger.Kind()),
		SubjectID: id,
		Balance:   domain.Present(balance),
	})
}

// GetBalanceAsOf returns the balance after all entries dated on or before date.
func (h *LedgerHandler) GetBalanceAsOf(w http.ResponseWriter, r *http.Request) {
	id, ok := h.subjectID(w, r)
	if !ok {
		return
	}

	date, err := requireDateQuery(r, "date")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date", err.Error())
		return
	}

	balance, err := h.ledger.BalanceAsOf(r.Context(), id, date)
	if err != nil {
		h.fail(w, r, "balance as of", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.BalanceResponse{
		Kind:      string(h.ledger.Kind()),
		SubjectID: id,
		Date:      date.Format(domain.DateLayout),
		Balance:   domain.Present(balance),
	})
}

// GetOpeningBalance returns the balance brought forward into date.
func (h *LedgerHandler) GetOpeningBalance(w http.ResponseWriter, r *http.Request) {
	id, ok := h.subjectID(w, r)
	if !ok {
		return
	}

	date, err := requireDateQuery(r, "date")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date", err.Error())
		return
	}
	verified, err := parseBoolQuery(r, "verified_only")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid verified_only", err.Error())
		return
	}

	balance, err := h.ledger.OpeningBalanceAsOf(r.Context(), id, date, usecase.QueryOptions{VerifiedOnly: verified})
	if err != nil {
		h.fail(w, r, "opening balance", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.BalanceResponse{
		Kind:         string(h.ledger.Kind()),
		SubjectID:    id,
		Date:         date.Format(domain.DateLayout),
		VerifiedOnly: verified,
		Balance:      domain.Present(balance),
	})
}

// GetStatement returns the statement for the period from..to.
func (h *LedgerHandler) GetStatement(w http.ResponseWriter, r *http.Request) {
	id, ok := h.subjectID(w, r)
	if !ok {
		return
	}

	from, err := requireDateQuery(r, "from")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid from", err.Error())
		return
	}
	to, err := requireDateQuery(r, "to")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid to", err.Error())
		return
	}
	verified, err := parseBoolQuery(r, "verified_only")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid verified_only", err.Error())
		return
	}

	st, err := h.ledger.Statement(r.Context(), id, from, to, usecase.QueryOptions{VerifiedOnly: verified})
	if err != nil {
		h.fail(w, r, "statement", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.StatementFromUseCase(st))
}

// Rebuild rebuilds one subject, or every subject when no id is given.
func (h *LedgerHandler) Rebuild(w http.ResponseWriter, r *http.Request) {
	var req dto.RebuildRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	req.SubjectID = strings.TrimSpace(req.SubjectID)

	if req.SubjectID == "" {
		summary, err := h.ledger.RebuildAll(r.Context())
		if summary == nil {
			h.fail(w, r, "rebuild all", err)
			return
		}
		if err != nil {
			h.logger.Warn().Err(err).Int("failed", summary.Failed).Msg("rebuild all finished with failures")
		}
		writeJSON(w, http.StatusOK, dto.RebuildSummaryFromUseCase(h.ledger.Kind(), summary, err))
		return
	}

	if err := domain.ValidateID(req.SubjectID); err != nil {
		writeError(w, http.StatusBadRequest, "invalid subject_id", err.Error())
		return
	}

	result, err := h.ledger.Rebuild(r.Context(), req.SubjectID)
	if err != nil {
		h.fail(w, r, "rebuild", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.RebuildFromUseCase(result))
}

func (h *LedgerHandler) subjectID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if err := domain.ValidateID(id); err != nil {
		writeError(w, http.StatusBadRequest, "invalid id", err.Error())
		return "", false
	}
	return id, true
}

func (h *LedgerHandler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	if mapDomainError(err) >= http.StatusInternalServerError {
		h.logger.Error().Err(err).Str("op", op).Str("path", r.URL.Path).Msg("ledger request failed")
	}
	writeDomainError(w, err)
}

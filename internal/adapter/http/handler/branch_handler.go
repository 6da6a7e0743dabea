package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/iho/ledgerreplay/internal/adapter/http/dto"
	"github.com/iho/ledgerreplay/internal/usecase"
)

// BranchBalanceService reports the bank balances of a branch.
type BranchBalanceService interface {
	BranchBalances(ctx context.Context, branch string, date time.Time) (*usecase.BranchBalances, error)
}

// BranchHandler handles branch report requests.
type BranchHandler struct {
	branches BranchBalanceService
	logger   zerolog.Logger
	now      func() time.Time
}

// NewBranchHandler creates a new BranchHandler.
func NewBranchHandler(branches BranchBalanceService, logger zerolog.Logger) *BranchHandler {
	return &BranchHandler{
		branches: branches,
		logger:   logger,
		now:      time.Now,
	}
}

// GetBankBalances returns the balance of every bank in the branch as
// brought forward into date. date defaults to today.
func (h *BranchHandler) GetBankBalances(w http.ResponseWriter, r *http.Request) {
	branch := strings.TrimSpace(chi.URLParam(r, "branch"))
	if branch == "" {
		writeError(w, http.StatusBadRequest, "invalid branch", "branch is required")
		return
	}

	date, err := parseDateQuery(r, "date")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date", err.Error())
		return
	}
	asOf := h.now().UTC()
	if date != nil {
		asOf = *date
	}

	report, err := h.branches.BranchBalances(r.Context(), branch, asOf)
	if err != nil {
		if mapDomainError(err) >= http.StatusInternalServerError {
			h.logger.Error().Err(err).Str("branch", branch).Msg("branch balances failed")
		}
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.BranchBalancesFromUseCase(report))
}

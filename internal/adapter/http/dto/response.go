package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/ledgerreplay/internal/domain"
	"github.com/iho/ledgerreplay/internal/usecase"
)

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// EntryResponse represents a ledger row in API responses. Amounts are
// rounded to whole units.
type EntryResponse struct {
	Seq         int             `json:"seq"`
	Date        string          `json:"date"`
	Type        string          `json:"type"`
	Description string          `json:"description"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Balance     decimal.Decimal `json:"balance"`
	SourceType  string          `json:"source_type,omitempty"`
	SourceID    string          `json:"source_id,omitempty"`
}

// EntryFromDomain converts a domain entry to response.
func EntryFromDomain(e *domain.LedgerEntry) *EntryResponse {
	return &EntryResponse{
		Seq:         e.Seq,
		Date:        formatDate(e.Date),
		Type:        e.Type,
		Description: e.Description,
		Debit:       domain.Present(e.Debit),
		Credit:      domain.Present(e.Credit),
		Balance:     domain.Present(e.Balance),
		SourceType:  string(e.SourceType),
		SourceID:    e.SourceID,
	}
}

// EntriesFromDomain converts domain entries to responses.
func EntriesFromDomain(entries []*domain.LedgerEntry) []*EntryResponse {
	result := make([]*EntryResponse, len(entries))
	for i, e := range entries {
		result[i] = EntryFromDomain(e)
	}
	return result
}

// EntriesResponse lists a subject's persisted ledger.
type EntriesResponse struct {
	Kind      string           `json:"kind"`
	SubjectID string           `json:"subject_id"`
	Entries   []*EntryResponse `json:"entries"`
}

// BalanceResponse reports a single balance.
type BalanceResponse struct {
	Kind         string          `json:"kind"`
	SubjectID    string          `json:"subject_id"`
	Date         string          `json:"date,omitempty"`
	VerifiedOnly *bool           `json:"verified_only,omitempty"`
	Balance      decimal.Decimal `json:"balance"`
}

// StatementResponse is a period statement. The first row carries the
// balance brought forward.
type StatementResponse struct {
	Kind           string           `json:"kind"`
	SubjectID      string           `json:"subject_id"`
	SubjectName    string           `json:"subject_name"`
	From           string           `json:"from"`
	To             string           `json:"to"`
	VerifiedOnly   bool             `json:"verified_only"`
	OpeningBalance decimal.Decimal  `json:"opening_balance"`
	Rows           []*EntryResponse `json:"rows"`
	TotalDebit     decimal.Decimal  `json:"total_debit"`
	TotalCredit    decimal.Decimal  `json:"total_credit"`
	ClosingBalance decimal.Decimal  `json:"closing_balance"`
}

// StatementFromUseCase converts a statement to response.
func StatementFromUseCase(st *usecase.Statement) *StatementResponse {
	rows := make([]*EntryResponse, 0, len(st.Entries)+1)
	rows = append(rows, &EntryResponse{
		Date:        formatDate(st.From),
		Type:        domain.EntryTypeBalanceBF,
		Description: domain.EntryTypeBalanceBF,
		Debit:       decimal.Zero,
		Credit:      decimal.Zero,
		Balance:     domain.Present(st.OpeningBalance),
	})
	rows = append(rows, EntriesFromDomain(st.Entries)...)

	return &StatementResponse{
		Kind:           string(st.Subject.Kind),
		SubjectID:      st.Subject.ID,
		SubjectName:    st.Subject.Name,
		From:           formatDate(st.From),
		To:             formatDate(st.To),
		VerifiedOnly:   st.VerifiedOnly,
		OpeningBalance: domain.Present(st.OpeningBalance),
		Rows:           rows,
		TotalDebit:     domain.Present(st.TotalDebit),
		TotalCredit:    domain.Present(st.TotalCredit),
		ClosingBalance: domain.Present(st.ClosingBalance),
	}
}

// RebuildResponse describes one subject's rebuild.
type RebuildResponse struct {
	RunID      string          `json:"run_id"`
	Kind       string          `json:"kind"`
	SubjectID  string          `json:"subject_id"`
	Skipped    bool            `json:"skipped"`
	Entries    int             `json:"entries"`
	Balance    decimal.Decimal `json:"balance"`
	Orphans    []string        `json:"orphans,omitempty"`
	Suppressed []string        `json:"suppressed,omitempty"`
	Malformed  []string        `json:"malformed,omitempty"`
	DurationMS int64           `json:"duration_ms"`
}

// RebuildFromUseCase converts a rebuild result to response.
func RebuildFromUseCase(r *usecase.RebuildResult) *RebuildResponse {
	return &RebuildResponse{
		RunID:      r.RunID,
		Kind:       string(r.Kind),
		SubjectID:  r.SubjectID,
		Skipped:    r.Skipped,
		Entries:    r.Entries,
		Balance:    domain.Present(r.Balance),
		Orphans:    refs(r.Orphans),
		Suppressed: refs(r.Suppressed),
		Malformed:  refs(r.Malformed),
		DurationMS: r.Duration.Milliseconds(),
	}
}

// RebuildSummaryResponse describes a batch rebuild.
type RebuildSummaryResponse struct {
	Kind    string             `json:"kind"`
	Rebuilt int                `json:"rebuilt"`
	Skipped int                `json:"skipped"`
	Failed  int                `json:"failed"`
	Results []*RebuildResponse `json:"results"`
	Errors  []string           `json:"errors,omitempty"`
}

// RebuildSummaryFromUseCase converts a batch summary to response. err is
// the joined per-subject failure, if any.
func RebuildSummaryFromUseCase(kind domain.SubjectKind, s *usecase.RebuildSummary, err error) *RebuildSummaryResponse {
	resp := &RebuildSummaryResponse{
		Kind:    string(kind),
		Rebuilt: s.Rebuilt,
		Skipped: s.Skipped,
		Failed:  s.Failed,
		Results: make([]*RebuildResponse, 0, len(s.Results)),
	}
	for _, r := range s.Results {
		resp.Results = append(resp.Results, RebuildFromUseCase(r))
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			resp.Errors = append(resp.Errors, e.Error())
		}
	} else if err != nil {
		resp.Errors = []string{err.Error()}
	}
	return resp
}

// BankBalanceResponse is one bank's balance in a branch report.
type BankBalanceResponse struct {
	BankID      string          `json:"bank_id"`
	DisplayName string          `json:"display_name"`
	Balance     decimal.Decimal `json:"balance"`
}

// BranchBalancesResponse lists the bank balances of a branch.
type BranchBalancesResponse struct {
	Branch string                 `json:"branch"`
	Date   string                 `json:"date"`
	Banks  []*BankBalanceResponse `json:"banks"`
	Total  decimal.Decimal        `json:"total"`
}

// BranchBalancesFromUseCase converts a branch report to response.
func BranchBalancesFromUseCase(b *usecase.BranchBalances) *BranchBalancesResponse {
	resp := &BranchBalancesResponse{
		Branch: b.Branch,
		Date:   formatDate(b.Date),
		Banks:  make([]*BankBalanceResponse, 0, len(b.Banks)),
		Total:  domain.Present(b.Total),
	}
	for _, bank := range b.Banks {
		resp.Banks = append(resp.Banks, &BankBalanceResponse{
			BankID:      bank.BankID,
			DisplayName: bank.DisplayName,
			Balance:     domain.Present(bank.Balance),
		})
	}
	return resp
}

// SourceEventResponse acknowledges a processed source change.
type SourceEventResponse struct {
	ID         string   `json:"id"`
	SourceType string   `json:"source_type"`
	SourceID   string   `json:"source_id"`
	Subjects   []string `json:"subjects"`
}

func formatDate(t time.Time) string {
	return domain.DateOnly(t).Format(domain.DateLayout)
}

func refs(in []domain.SourceRef) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, len(in))
	for i, r := range in {
		out[i] = r.String()
	}
	return out
}

package dto

import (
	"strings"

	"github.com/iho/ledgerreplay/internal/domain"
)

// RebuildRequest asks for one subject to be rebuilt. An empty subject id
// rebuilds every subject of the ledger.
type RebuildRequest struct {
	SubjectID string `json:"subject_id,omitempty"`
}

// SourceEventRequest notifies the engine that a source record changed.
type SourceEventRequest struct {
	ID         string   `json:"id,omitempty"`
	SourceType string   `json:"source_type"`
	SourceID   string   `json:"source_id"`
	Action     string   `json:"action"`
	Subjects   []string `json:"subjects"`
}

// ToDomain converts the request to a source change.
func (r *SourceEventRequest) ToDomain() *domain.SourceChanged {
	subjects := make([]string, 0, len(r.Subjects))
	seen := make(map[string]bool, len(r.Subjects))
	for _, s := range r.Subjects {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		subjects = append(subjects, s)
	}

	return &domain.SourceChanged{
		ID:         strings.TrimSpace(r.ID),
		SourceType: domain.SourceType(strings.TrimSpace(r.SourceType)),
		SourceID:   strings.TrimSpace(r.SourceID),
		Action:     strings.ToLower(strings.TrimSpace(r.Action)),
		Subjects:   subjects,
	}
}

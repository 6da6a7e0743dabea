package domain

import "time"

// Source change actions
const (
	SourceActionCreated = "created"
	SourceActionUpdated = "updated"
	SourceActionDeleted = "deleted"
)

// SourceChanged is published whenever a source record is created, edited or
// deleted. Subjects lists every ledger subject the record affects, before and
// after the change.
type SourceChanged struct {
	ID         string
	SourceType SourceType
	SourceID   string
	Action     string
	Subjects   []string
	OccurredAt time.Time
}

// IsValidSourceAction checks if the action is known.
func IsValidSourceAction(action string) bool {
	switch action {
	case SourceActionCreated, SourceActionUpdated, SourceActionDeleted:
		return true
	}
	return false
}

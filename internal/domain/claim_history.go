package domain

import "time"

// ClaimChangeType captures what changed in a history entry.
type ClaimChangeType string

const (
	ChangeTypeStatus     ClaimChangeType = "STATUS_CHANGE"
	ChangeTypeTechnician ClaimChangeType = "TECHNICIAN_CHANGE"
)

// ClaimHistory is an immutable audit trail entry.
type ClaimHistory struct {
	ID         string
	ClaimID    string
	ChangedBy  string
	ChangeType ClaimChangeType
	OldValue   map[string]any
	NewValue   map[string]any
	CreatedAt  time.Time
}

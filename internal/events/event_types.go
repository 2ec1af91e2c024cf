package events

import (
	"time"

	"github.com/cablesur/claims-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventClaimCreated          EventType = "claim_created"
	EventStatusChanged         EventType = "status_changed"
	EventDuplicateAttempt      EventType = "duplicate_attempt"
	EventReassigned            EventType = "reassigned"
	EventClientAutoProvisioned EventType = "client_auto_provisioned"
	EventUrgentAlert           EventType = "urgent_alert"
)

// Event represents a domain event emitted by services after commit.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	ClaimID   string      `json:"claim_id,omitempty"`
	Actor     string      `json:"actor,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// ClaimCreatedPayload payload.
type ClaimCreatedPayload struct {
	ClientNumber string             `json:"client_number"`
	Sector       string             `json:"sector"`
	ClaimType    string             `json:"claim_type"`
	Status       domain.ClaimStatus `json:"status"`
}

// StatusChangedPayload payload.
type StatusChangedPayload struct {
	OldStatus domain.ClaimStatus `json:"old_status"`
	NewStatus domain.ClaimStatus `json:"new_status"`
}

// DuplicateAttemptPayload payload.
type DuplicateAttemptPayload struct {
	ClientNumber   string   `json:"client_number"`
	ConflictingIDs []string `json:"conflicting_ids"`
}

// ReassignedPayload payload.
type ReassignedPayload struct {
	Sector     string  `json:"sector,omitempty"`
	Technician *string `json:"technician,omitempty"`
	GroupName  *string `json:"group_name,omitempty"`
}

// ClientAutoProvisionedPayload payload.
type ClientAutoProvisionedPayload struct {
	ClientNumber string `json:"client_number"`
	Name         string `json:"name"`
}

// UrgentAlertPayload payload.
type UrgentAlertPayload struct {
	Message string `json:"message"`
}

package dto

import (
	"time"

	"github.com/cablesur/claims-service/internal/domain"
)

// NotificationResponse representation.
type NotificationResponse struct {
	ID        string                      `json:"id"`
	EventType string                      `json:"event_type"`
	Message   string                      `json:"message"`
	Audience  string                      `json:"audience"`
	Priority  domain.NotificationPriority `json:"priority"`
	Read      bool                        `json:"read"`
	ClaimID   *string                     `json:"claim_id,omitempty"`
	CreatedAt time.Time                   `json:"created_at"`
}

// UrgentAlertRequest payload.
type UrgentAlertRequest struct {
	Message  string `json:"message" validate:"required"`
	Audience string `json:"audience"`
}

package dto

import (
	"time"

	"github.com/cablesur/claims-service/internal/domain"
)

// CreateClaimRequest payload.
type CreateClaimRequest struct {
	ClientNumber string `json:"client_number" validate:"required"`
	Sector       string `json:"sector" validate:"required"`
	ClaimType    string `json:"claim_type" validate:"required"`
	Details      string `json:"details"`
	SealNumber   string `json:"seal_number"`
	Name         string `json:"name"`
	Address      string `json:"address"`
	Phone        string `json:"phone"`
}

// TransitionRequest payload.
type TransitionRequest struct {
	Status     string  `json:"status" validate:"required"`
	Technician *string `json:"technician"`
	SealNumber string  `json:"seal_number"`
	Notes      string  `json:"notes"`
}

// ClaimResponse representation.
type ClaimResponse struct {
	ID           string             `json:"id"`
	ClientNumber string             `json:"client_number"`
	Sector       string             `json:"sector"`
	ClaimType    string             `json:"claim_type"`
	Details      string             `json:"details"`
	Status       domain.ClaimStatus `json:"status"`
	Technician   *string            `json:"technician"`
	SealNumber   *string            `json:"seal_number"`
	ClosureNotes *string            `json:"closure_notes"`
	FiledBy      string             `json:"filed_by"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
	ClosedAt     *time.Time         `json:"closed_at"`
}

// ClaimHistoryResponse representation.
type ClaimHistoryResponse struct {
	ID         string                 `json:"id"`
	ChangeType domain.ClaimChangeType `json:"change_type"`
	ChangedBy  string                 `json:"changed_by"`
	OldValue   map[string]any         `json:"old_value"`
	NewValue   map[string]any         `json:"new_value"`
	CreatedAt  time.Time              `json:"created_at"`
}

// DuplicateCheckResponse reports whether a client may file a claim.
type DuplicateCheckResponse struct {
	Allowed        bool     `json:"allowed"`
	ConflictingIDs []string `json:"conflicting_ids,omitempty"`
}

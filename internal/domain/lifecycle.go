package domain

import (
	"strings"
	"time"

	apperrors "github.com/cablesur/claims-service/pkg/util"
)

// TransitionInput carries optional data supplied at the moment of a
// transition: a technician to bind when starting work, and closure data
// (seal number, observations) when resolving.
type TransitionInput struct {
	Technician *string
	SealNumber string
	Notes      string
	ActorID    string
}

var transitions = map[ClaimStatus][]ClaimStatus{
	ClaimStatusPending:       {ClaimStatusInProgress, ClaimStatusCancelled},
	ClaimStatusInProgress:    {ClaimStatusResolved, ClaimStatusPending, ClaimStatusCancelled},
	ClaimStatusDisconnection: {ClaimStatusResolved, ClaimStatusCancelled},
	ClaimStatusResolved:      {ClaimStatusClosed, ClaimStatusCancelled},
	ClaimStatusClosed:        {},
	ClaimStatusCancelled:     {},
}

// ValidStatus reports whether s belongs to the status vocabulary.
func ValidStatus(s ClaimStatus) bool {
	_, ok := transitions[s]
	return ok
}

// NormalizeStatus matches input case-insensitively against the vocabulary.
func NormalizeStatus(input string) (ClaimStatus, bool) {
	trimmed := strings.TrimSpace(input)
	for s := range transitions {
		if strings.EqualFold(trimmed, string(s)) {
			return s, true
		}
	}
	return "", false
}

// CanTransition reports whether the table permits from -> to.
func CanTransition(from, to ClaimStatus) bool {
	for _, candidate := range transitions[from] {
		if candidate == to {
			return true
		}
	}
	return false
}

// ApplyTransition validates and applies a status change in place. It returns
// changed=false for the idempotent Closed -> Closed no-op. On any error the
// claim is left untouched.
func ApplyTransition(claim *Claim, target ClaimStatus, input TransitionInput, now time.Time) (changed bool, err error) {
	if claim.Status == ClaimStatusClosed && target == ClaimStatusClosed {
		return false, nil
	}
	if !CanTransition(claim.Status, target) {
		return false, apperrors.NewInvalidTransition(string(claim.Status), string(target))
	}

	technician := claim.Technician
	if input.Technician != nil {
		technician = input.Technician
	}

	switch target {
	case ClaimStatusInProgress:
		if technician == nil || strings.TrimSpace(*technician) == "" {
			return false, apperrors.NewValidationError(
				"a technician must be bound before starting work",
				map[string]any{"claim_id": claim.ID})
		}
		claim.Technician = technician
	case ClaimStatusResolved:
		seal := strings.TrimSpace(input.SealNumber)
		if seal != "" {
			claim.SealNumber = &seal
		}
		// Disconnect work is field-confirmed and carries no seal requirement.
		if claim.Status == ClaimStatusInProgress && !hasSeal(claim) {
			return false, apperrors.NewValidationError(
				"a seal number is required to resolve the claim",
				map[string]any{"claim_id": claim.ID})
		}
		if notes := strings.TrimSpace(input.Notes); notes != "" {
			claim.ClosureNotes = &notes
		}
		closedAt := now
		claim.ClosedAt = &closedAt
	case ClaimStatusPending:
		claim.Technician = nil
	case ClaimStatusClosed, ClaimStatusCancelled:
		closedAt := now
		claim.ClosedAt = &closedAt
	}

	claim.Status = target
	claim.UpdatedAt = now
	return true, nil
}

func hasSeal(claim *Claim) bool {
	return claim.SealNumber != nil && strings.TrimSpace(*claim.SealNumber) != ""
}

package domain

import "time"

// ClaimStatus enumerates lifecycle states for claims.
type ClaimStatus string

const (
	ClaimStatusPending       ClaimStatus = "PENDIENTE"
	ClaimStatusInProgress    ClaimStatus = "EN CURSO"
	ClaimStatusDisconnection ClaimStatus = "DESCONEXIÓN"
	ClaimStatusResolved      ClaimStatus = "RESUELTO"
	ClaimStatusClosed        ClaimStatus = "CERRADO"
	ClaimStatusCancelled     ClaimStatus = "CANCELADO"
)

// OpenStatuses are the states that count as active work for the duplicate guard.
var OpenStatuses = []ClaimStatus{ClaimStatusPending, ClaimStatusInProgress}

// IsOpen reports whether the status counts as an active claim.
func (s ClaimStatus) IsOpen() bool {
	return s == ClaimStatusPending || s == ClaimStatusInProgress
}

// IsTerminal reports whether the status rejects all further transitions.
func (s ClaimStatus) IsTerminal() bool {
	return s == ClaimStatusClosed || s == ClaimStatusCancelled
}

// Claim is the aggregate for customer-reported service issues.
type Claim struct {
	ID           string
	ClientNumber string
	Sector       string
	Type         string
	Details      string
	Status       ClaimStatus
	Technician   *string
	SealNumber   *string
	ClosureNotes *string
	FiledBy      string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	ClosedAt     *time.Time
}

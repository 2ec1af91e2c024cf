package dto

import "time"

// AssignSectorRequest payload for manual sector assignment.
type AssignSectorRequest struct {
	Sector     string `json:"sector" validate:"required"`
	Technician string `json:"technician" validate:"required"`
}

// ReassignClaimRequest payload for a single-claim override.
type ReassignClaimRequest struct {
	Technician string `json:"technician" validate:"required"`
}

// AutoAssignRequest payload for automatic group distribution.
type AutoAssignRequest struct {
	Sector       string `json:"sector" validate:"required"`
	ActiveGroups int    `json:"active_groups" validate:"omitempty,min=1,max=5"`
}

// AssignmentResponse reports an assignment outcome.
type AssignmentResponse struct {
	Sector         string  `json:"sector"`
	Technician     *string `json:"technician,omitempty"`
	GroupName      *string `json:"group_name,omitempty"`
	ClaimsAffected int     `json:"claims_affected"`
}

// SectorAssignmentResponse is a standing sector-to-technician mapping.
type SectorAssignmentResponse struct {
	Sector     string    `json:"sector"`
	Technician string    `json:"technician"`
	AssignedBy string    `json:"assigned_by"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// GroupAssignmentResponse is a sector-to-group placement.
type GroupAssignmentResponse struct {
	Sector    string    `json:"sector"`
	GroupName string    `json:"group_name"`
	UpdatedAt time.Time `json:"updated_at"`
}

package domain

import "time"

// StaffRole enumerates internal operator roles.
type StaffRole string

const (
	StaffRoleAdmin      StaffRole = "admin"
	StaffRoleOperator   StaffRole = "operador"
	StaffRoleTechnician StaffRole = "tecnico"
	StaffRoleViewer     StaffRole = "visor"
)

// ValidRole reports whether the role belongs to the closed role set.
func ValidRole(role StaffRole) bool {
	switch role {
	case StaffRoleAdmin, StaffRoleOperator, StaffRoleTechnician, StaffRoleViewer:
		return true
	}
	return false
}

// StaffUser models an office operator, technician or administrator.
type StaffUser struct {
	ID           string
	Username     string
	Name         string
	PasswordHash string
	Role         StaffRole
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

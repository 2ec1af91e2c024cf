package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/cablesur/claims-service/internal/api/dto"
	"github.com/cablesur/claims-service/internal/auth"
	"github.com/cablesur/claims-service/internal/service"
	apperrors "github.com/cablesur/claims-service/pkg/util"
)

// AssignmentsHandler manages sector and group assignment endpoints.
type AssignmentsHandler struct {
	service *service.AssignmentService
}

// NewAssignmentsHandler constructs handler.
func NewAssignmentsHandler(assignmentService *service.AssignmentService) *AssignmentsHandler {
	return &AssignmentsHandler{service: assignmentService}
}

// AssignSector POST /assignments/sector.
func (h *AssignmentsHandler) AssignSector(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("staff required")
	}
	var req dto.AssignSectorRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	result, err := h.service.AssignTechnician(c.UserContext(), req.Sector, req.Technician, principal.Staff.Name)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": assignmentResponse(result)})
}

// ReassignClaim POST /claims/:id/reassign.
func (h *AssignmentsHandler) ReassignClaim(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("staff required")
	}
	var req dto.ReassignClaimRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	claim, err := h.service.ReassignClaim(c.UserContext(), c.Params("id"), req.Technician, principal.Staff.Name)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": claimResponse(claim)})
}

// AutoAssign POST /assignments/auto.
func (h *AssignmentsHandler) AutoAssign(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("staff required")
	}
	var req dto.AutoAssignRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	result, err := h.service.AutoAssign(c.UserContext(), req.Sector, req.ActiveGroups, principal.Staff.Name)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": assignmentResponse(result)})
}

// ListSectors GET /assignments/sectors.
func (h *AssignmentsHandler) ListSectors(c *fiber.Ctx) error {
	assignments, err := h.service.ListSectorAssignments(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.SectorAssignmentResponse, 0, len(assignments))
	for _, a := range assignments {
		items = append(items, dto.SectorAssignmentResponse{
			Sector:     a.Sector,
			Technician: a.Technician,
			AssignedBy: a.AssignedBy,
			UpdatedAt:  a.UpdatedAt,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

// ListGroups GET /assignments/groups.
func (h *AssignmentsHandler) ListGroups(c *fiber.Ctx) error {
	assignments, err := h.service.ListGroupAssignments(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.GroupAssignmentResponse, 0, len(assignments))
	for _, a := range assignments {
		items = append(items, dto.GroupAssignmentResponse{
			Sector:    a.Sector,
			GroupName: a.GroupName,
			UpdatedAt: a.UpdatedAt,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

func assignmentResponse(result *service.AssignmentResult) dto.AssignmentResponse {
	return dto.AssignmentResponse{
		Sector:         result.Sector,
		Technician:     result.Technician,
		GroupName:      result.GroupName,
		ClaimsAffected: result.ClaimsAffected,
	}
}

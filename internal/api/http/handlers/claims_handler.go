package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/cablesur/claims-service/internal/api/dto"
	"github.com/cablesur/claims-service/internal/auth"
	"github.com/cablesur/claims-service/internal/domain"
	"github.com/cablesur/claims-service/internal/repository"
	"github.com/cablesur/claims-service/internal/service"
	apperrors "github.com/cablesur/claims-service/pkg/util"
)

// ClaimsHandler manages claim endpoints.
type ClaimsHandler struct {
	service *service.ClaimService
}

// NewClaimsHandler constructs handler.
func NewClaimsHandler(claimService *service.ClaimService) *ClaimsHandler {
	return &ClaimsHandler{service: claimService}
}

// CreateClaim POST /claims.
func (h *ClaimsHandler) CreateClaim(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("staff required")
	}
	var req dto.CreateClaimRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	claim, err := h.service.CreateClaim(c.UserContext(), service.ClaimCreateInput{
		ClientNumber: req.ClientNumber,
		Sector:       req.Sector,
		ClaimType:    req.ClaimType,
		Details:      req.Details,
		SealNumber:   req.SealNumber,
		Name:         req.Name,
		Address:      req.Address,
		Phone:        req.Phone,
		FiledBy:      principal.Staff.Name,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": claimResponse(claim)})
}

// CheckActive GET /claims/check-active.
func (h *ClaimsHandler) CheckActive(c *fiber.Ctx) error {
	clientNumber := c.Query("client_number")
	if strings.TrimSpace(clientNumber) == "" {
		return apperrors.NewValidationError("client_number query parameter required", nil)
	}
	check, err := h.service.CheckActive(c.UserContext(), clientNumber, c.Query("claim_type"))
	if err != nil {
		return err
	}
	resp := dto.DuplicateCheckResponse{Allowed: !check.Blocked}
	for _, claim := range check.Conflicting {
		resp.ConflictingIDs = append(resp.ConflictingIDs, claim.ID)
	}
	return c.JSON(fiber.Map{"data": resp})
}

// ListClaims GET /claims.
func (h *ClaimsHandler) ListClaims(c *fiber.Ctx) error {
	claims, err := h.service.ListClaims(c.UserContext(), parseClaimQuery(c))
	if err != nil {
		return err
	}
	items := make([]dto.ClaimResponse, 0, len(claims))
	for i := range claims {
		items = append(items, claimResponse(&claims[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetClaim GET /claims/:id.
func (h *ClaimsHandler) GetClaim(c *fiber.Ctx) error {
	claim, err := h.service.GetClaim(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": claimResponse(claim)})
}

// GetHistory GET /claims/:id/history.
func (h *ClaimsHandler) GetHistory(c *fiber.Ctx) error {
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 50)
	entries, err := h.service.ListHistory(c.UserContext(), c.Params("id"), pageSize, (page-1)*pageSize)
	if err != nil {
		return err
	}
	items := make([]dto.ClaimHistoryResponse, 0, len(entries))
	for _, entry := range entries {
		items = append(items, dto.ClaimHistoryResponse{
			ID:         entry.ID,
			ChangeType: entry.ChangeType,
			ChangedBy:  entry.ChangedBy,
			OldValue:   entry.OldValue,
			NewValue:   entry.NewValue,
			CreatedAt:  entry.CreatedAt,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

// Transition POST /claims/:id/transition.
func (h *ClaimsHandler) Transition(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("staff required")
	}
	var req dto.TransitionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	claim, err := h.service.Transition(c.UserContext(), c.Params("id"), req.Status, domain.TransitionInput{
		Technician: req.Technician,
		SealNumber: req.SealNumber,
		Notes:      req.Notes,
		ActorID:    principal.Staff.Name,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": claimResponse(claim)})
}

func parseClaimQuery(c *fiber.Ctx) repository.ClaimFilter {
	filter := repository.ClaimFilter{}
	if clientNumber := c.Query("client_number"); clientNumber != "" {
		filter.ClientNumber = &clientNumber
	}
	if sector := c.Query("sector"); sector != "" {
		filter.Sector = &sector
	}
	if technician := c.Query("technician"); technician != "" {
		filter.Technician = &technician
	}
	if claimType := c.Query("claim_type"); claimType != "" {
		filter.ClaimType = &claimType
	}
	if statusStr := c.Query("status"); statusStr != "" {
		for _, part := range strings.Split(statusStr, ",") {
			if status, ok := domain.NormalizeStatus(strings.TrimSpace(part)); ok {
				filter.Statuses = append(filter.Statuses, status)
			}
		}
	}
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 20)
	filter.Offset = (page - 1) * pageSize
	filter.Limit = pageSize
	return filter
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func claimResponse(claim *domain.Claim) dto.ClaimResponse {
	return dto.ClaimResponse{
		ID:           claim.ID,
		ClientNumber: claim.ClientNumber,
		Sector:       claim.Sector,
		ClaimType:    claim.Type,
		Details:      claim.Details,
		Status:       claim.Status,
		Technician:   claim.Technician,
		SealNumber:   claim.SealNumber,
		ClosureNotes: claim.ClosureNotes,
		FiledBy:      claim.FiledBy,
		CreatedAt:    claim.CreatedAt,
		UpdatedAt:    claim.UpdatedAt,
		ClosedAt:     claim.ClosedAt,
	}
}

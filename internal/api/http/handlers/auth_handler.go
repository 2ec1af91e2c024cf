package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/cablesur/claims-service/internal/api/dto"
	"github.com/cablesur/claims-service/internal/auth"
	"github.com/cablesur/claims-service/internal/domain"
	"github.com/cablesur/claims-service/internal/service"
	apperrors "github.com/cablesur/claims-service/pkg/util"
)

// AuthHandler manages staff session endpoints.
type AuthHandler struct {
	service *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{service: authService}
}

// Login POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	staff, token, expiresAt, err := h.service.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		Staff:     staffResponse(staff),
	}})
}

// ChangePassword POST /auth/password/change.
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("staff required")
	}
	var req dto.ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	if err := h.service.ChangePassword(c.UserContext(), principal.Staff.ID, req.OldPassword, req.NewPassword); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// CreateStaff POST /auth/staff.
func (h *AuthHandler) CreateStaff(c *fiber.Ctx) error {
	var req dto.CreateStaffRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	staff, err := h.service.CreateStaff(c.UserContext(), req.Username, req.Name, req.Password, req.Role)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": staffResponse(staff)})
}

func staffResponse(staff *domain.StaffUser) dto.StaffResponse {
	return dto.StaffResponse{
		ID:       staff.ID,
		Username: staff.Username,
		Name:     staff.Name,
		Role:     staff.Role,
		Active:   staff.Active,
	}
}

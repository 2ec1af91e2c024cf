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

// NotificationsHandler serves the in-app notification feed.
type NotificationsHandler struct {
	service *service.NotificationService
}

// NewNotificationsHandler constructs handler.
func NewNotificationsHandler(notificationService *service.NotificationService) *NotificationsHandler {
	return &NotificationsHandler{service: notificationService}
}

// List GET /notifications.
func (h *NotificationsHandler) List(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("staff required")
	}
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 50)
	unreadOnly := c.QueryBool("unread_only")

	notifications, err := h.service.List(c.UserContext(), service.AudiencesFor(principal.Staff),
		unreadOnly, pageSize, (page-1)*pageSize)
	if err != nil {
		return err
	}
	items := make([]dto.NotificationResponse, 0, len(notifications))
	for i := range notifications {
		items = append(items, notificationResponse(&notifications[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// UnreadCount GET /notifications/unread-count.
func (h *NotificationsHandler) UnreadCount(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("staff required")
	}
	count, err := h.service.UnreadCount(c.UserContext(), service.AudiencesFor(principal.Staff))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"unread": count}})
}

// MarkRead POST /notifications/:id/read.
func (h *NotificationsHandler) MarkRead(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("staff required")
	}
	if err := h.service.MarkRead(c.UserContext(), c.Params("id"), service.AudiencesFor(principal.Staff)); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// MarkAllRead POST /notifications/read-all.
func (h *NotificationsHandler) MarkAllRead(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("staff required")
	}
	affected, err := h.service.MarkAllRead(c.UserContext(), service.AudiencesFor(principal.Staff))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"marked": affected}})
}

// SendUrgentAlert POST /notifications/urgent.
func (h *NotificationsHandler) SendUrgentAlert(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("staff required")
	}
	var req dto.UrgentAlertRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	notification, err := h.service.SendUrgentAlert(c.UserContext(), req.Message, req.Audience, principal.Staff.Name)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": notificationResponse(notification)})
}

func notificationResponse(n *domain.Notification) dto.NotificationResponse {
	return dto.NotificationResponse{
		ID:        n.ID,
		EventType: n.EventType,
		Message:   n.Message,
		Audience:  n.Audience,
		Priority:  n.Priority,
		Read:      n.Read,
		ClaimID:   n.ClaimID,
		CreatedAt: n.CreatedAt,
	}
}

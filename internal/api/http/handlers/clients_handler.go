package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/cablesur/claims-service/internal/api/dto"
	"github.com/cablesur/claims-service/internal/domain"
	"github.com/cablesur/claims-service/internal/service"
	apperrors "github.com/cablesur/claims-service/pkg/util"
)

// ClientsHandler manages the client registry endpoints.
type ClientsHandler struct {
	service *service.ClientService
}

// NewClientsHandler constructs handler.
func NewClientsHandler(clientService *service.ClientService) *ClientsHandler {
	return &ClientsHandler{service: clientService}
}

// GetClient GET /clients/:number.
func (h *ClientsHandler) GetClient(c *fiber.Ctx) error {
	client, err := h.service.Get(c.UserContext(), c.Params("number"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": clientResponse(client)})
}

// SaveClient PUT /clients/:number.
func (h *ClientsHandler) SaveClient(c *fiber.Ctx) error {
	var req dto.ClientRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	client, err := h.service.Save(c.UserContext(), c.Params("number"), service.ClientInput{
		Name:         req.Name,
		Address:      req.Address,
		Locality:     req.Locality,
		Phone:        req.Phone,
		Sector:       req.Sector,
		Plan:         req.Plan,
		SealNumber:   req.SealNumber,
		Observations: req.Observations,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": clientResponse(client)})
}

func clientResponse(client *domain.Client) dto.ClientResponse {
	return dto.ClientResponse{
		Number:       client.Number,
		Name:         client.Name,
		Address:      client.Address,
		Locality:     client.Locality,
		Phone:        client.Phone,
		Sector:       client.Sector,
		Plan:         client.Plan,
		SealNumber:   client.SealNumber,
		Observations: client.Observations,
		CreatedAt:    client.CreatedAt,
		UpdatedAt:    client.UpdatedAt,
	}
}

package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/cablesur/claims-service/internal/domain"
	"github.com/cablesur/claims-service/internal/repository"
	apperrors "github.com/cablesur/claims-service/pkg/util"
)

// ClientService exposes the client registry.
type ClientService struct {
	clients repository.ClientRepository
	now     func() time.Time
}

// NewClientService creates the service.
func NewClientService(clients repository.ClientRepository) *ClientService {
	return &ClientService{clients: clients, now: time.Now}
}

// ClientInput carries registry fields for create or update.
type ClientInput struct {
	Name         string
	Address      string
	Locality     string
	Phone        string
	Sector       string
	Plan         string
	SealNumber   string
	Observations string
}

// Get fetches a client by number.
func (s *ClientService) Get(ctx context.Context, number string) (*domain.Client, error) {
	number = strings.TrimSpace(number)
	client, err := s.clients.Get(ctx, number)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("client", map[string]any{"client_number": number})
		}
		return nil, apperrors.MapError(err)
	}
	return client, nil
}

// Save creates or replaces a client record.
func (s *ClientService) Save(ctx context.Context, number string, input ClientInput) (*domain.Client, error) {
	number = strings.TrimSpace(number)
	if number == "" {
		return nil, apperrors.NewValidationError("client number is required", nil)
	}
	sector, ok := domain.NormalizeSector(input.Sector)
	if !ok {
		return nil, apperrors.NewUnknownSector(input.Sector)
	}

	now := s.now()
	client := &domain.Client{
		Number:       number,
		Name:         strings.ToUpper(strings.TrimSpace(input.Name)),
		Address:      strings.TrimSpace(input.Address),
		Locality:     strings.TrimSpace(input.Locality),
		Phone:        strings.TrimSpace(input.Phone),
		Sector:       sector,
		Plan:         strings.TrimSpace(input.Plan),
		SealNumber:   strings.TrimSpace(input.SealNumber),
		Observations: strings.TrimSpace(input.Observations),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if existing, err := s.clients.Get(ctx, number); err == nil {
		client.CreatedAt = existing.CreatedAt
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	if err := s.clients.Upsert(ctx, client); err != nil {
		return nil, apperrors.MapError(err)
	}
	return client, nil
}

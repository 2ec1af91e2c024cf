package repository

import (
	"context"
	"strings"

	"github.com/cablesur/claims-service/internal/domain"
)

// ClientRepository encapsulates client registry persistence.
type ClientRepository interface {
	Get(ctx context.Context, number string) (*domain.Client, error)
	Upsert(ctx context.Context, client *domain.Client) error
}

type clientRepository struct {
	db DB
}

// NewClientRepository instantiates repository.
func NewClientRepository(db DB) ClientRepository {
	return &clientRepository{db: db}
}

func (r *clientRepository) Get(ctx context.Context, number string) (*domain.Client, error) {
	const query = `
        SELECT number, name, address, locality, phone, sector, plan, seal_number,
               observations, created_at, updated_at
        FROM clients WHERE number=$1`
	var client domain.Client
	if err := r.db.QueryRow(ctx, query, strings.TrimSpace(number)).Scan(
		&client.Number,
		&client.Name,
		&client.Address,
		&client.Locality,
		&client.Phone,
		&client.Sector,
		&client.Plan,
		&client.SealNumber,
		&client.Observations,
		&client.CreatedAt,
		&client.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &client, nil
}

func (r *clientRepository) Upsert(ctx context.Context, client *domain.Client) error {
	const query = `
        INSERT INTO clients (number, name, address, locality, phone, sector, plan,
                             seal_number, observations, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
        ON CONFLICT (number) DO UPDATE SET
            name=EXCLUDED.name,
            address=EXCLUDED.address,
            locality=EXCLUDED.locality,
            phone=EXCLUDED.phone,
            sector=EXCLUDED.sector,
            plan=EXCLUDED.plan,
            seal_number=EXCLUDED.seal_number,
            observations=EXCLUDED.observations,
            updated_at=EXCLUDED.updated_at`
	_, err := r.db.Exec(ctx, query,
		client.Number,
		client.Name,
		client.Address,
		client.Locality,
		client.Phone,
		client.Sector,
		client.Plan,
		client.SealNumber,
		client.Observations,
		client.CreatedAt,
		client.UpdatedAt,
	)
	return err
}

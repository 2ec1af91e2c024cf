package repository

import (
	"context"
	"time"
)

// SectorAssignment maps a sector to its standing technician so later claims
// in the sector inherit the assignment.
type SectorAssignment struct {
	Sector     string
	Technician string
	AssignedBy string
	UpdatedAt  time.Time
}

// SectorAssignmentRepository persists manual sector-to-technician mappings.
type SectorAssignmentRepository interface {
	Upsert(ctx context.Context, assignment *SectorAssignment) error
	Get(ctx context.Context, sector string) (*SectorAssignment, error)
	List(ctx context.Context) ([]SectorAssignment, error)
}

type sectorAssignmentRepository struct {
	db DB
}

// NewSectorAssignmentRepository instantiates repository.
func NewSectorAssignmentRepository(db DB) SectorAssignmentRepository {
	return &sectorAssignmentRepository{db: db}
}

func (r *sectorAssignmentRepository) Upsert(ctx context.Context, assignment *SectorAssignment) error {
	const query = `
        INSERT INTO sector_assignments (sector, technician, assigned_by, updated_at)
        VALUES ($1,$2,$3,$4)
        ON CONFLICT (sector) DO UPDATE SET
            technician=EXCLUDED.technician,
            assigned_by=EXCLUDED.assigned_by,
            updated_at=EXCLUDED.updated_at`
	_, err := r.db.Exec(ctx, query,
		assignment.Sector,
		assignment.Technician,
		assignment.AssignedBy,
		assignment.UpdatedAt,
	)
	return err
}

func (r *sectorAssignmentRepository) Get(ctx context.Context, sector string) (*SectorAssignment, error) {
	const query = `
        SELECT sector, technician, assigned_by, updated_at
        FROM sector_assignments WHERE sector=$1`
	var a SectorAssignment
	if err := r.db.QueryRow(ctx, query, sector).Scan(
		&a.Sector,
		&a.Technician,
		&a.AssignedBy,
		&a.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *sectorAssignmentRepository) List(ctx context.Context) ([]SectorAssignment, error) {
	const query = `
        SELECT sector, technician, assigned_by, updated_at
        FROM sector_assignments ORDER BY sector`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []SectorAssignment
	for rows.Next() {
		var a SectorAssignment
		if err := rows.Scan(&a.Sector, &a.Technician, &a.AssignedBy, &a.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	return result, rows.Err()
}

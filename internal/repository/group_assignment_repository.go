package repository

import (
	"context"
	"time"
)

// GroupAssignment records which work group currently serves a sector.
type GroupAssignment struct {
	Sector    string
	GroupName string
	UpdatedAt time.Time
}

// GroupAssignmentRepository persists automatic sector-to-group placements.
type GroupAssignmentRepository interface {
	Upsert(ctx context.Context, assignment *GroupAssignment) error
	List(ctx context.Context) ([]GroupAssignment, error)
}

type groupAssignmentRepository struct {
	db DB
}

// NewGroupAssignmentRepository instantiates repository.
func NewGroupAssignmentRepository(db DB) GroupAssignmentRepository {
	return &groupAssignmentRepository{db: db}
}

func (r *groupAssignmentRepository) Upsert(ctx context.Context, assignment *GroupAssignment) error {
	const query = `
        INSERT INTO group_assignments (sector, group_name, updated_at)
        VALUES ($1,$2,$3)
        ON CONFLICT (sector) DO UPDATE SET
            group_name=EXCLUDED.group_name,
            updated_at=EXCLUDED.updated_at`
	_, err := r.db.Exec(ctx, query, assignment.Sector, assignment.GroupName, assignment.UpdatedAt)
	return err
}

func (r *groupAssignmentRepository) List(ctx context.Context) ([]GroupAssignment, error) {
	const query = `SELECT sector, group_name, updated_at FROM group_assignments ORDER BY sector`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []GroupAssignment
	for rows.Next() {
		var a GroupAssignment
		if err := rows.Scan(&a.Sector, &a.GroupName, &a.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	return result, rows.Err()
}

package repository

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/cablesur/claims-service/internal/domain"
)

// StaffRepository handles persistence for staff users.
type StaffRepository interface {
	Create(ctx context.Context, staff *domain.StaffUser) error
	Update(ctx context.Context, staff *domain.StaffUser) error
	GetByID(ctx context.Context, id string) (*domain.StaffUser, error)
	GetByUsername(ctx context.Context, username string) (*domain.StaffUser, error)
}

type staffRepository struct {
	db DB
}

// NewStaffRepository instantiates the repository.
func NewStaffRepository(db DB) StaffRepository {
	return &staffRepository{db: db}
}

func (r *staffRepository) Create(ctx context.Context, staff *domain.StaffUser) error {
	const query = `
        INSERT INTO staff_users (id, username, name, password_hash, role, active_flag, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`
	_, err := r.db.Exec(ctx, query,
		staff.ID,
		strings.ToLower(strings.TrimSpace(staff.Username)),
		staff.Name,
		staff.PasswordHash,
		staff.Role,
		staff.Active,
		staff.CreatedAt,
		staff.UpdatedAt,
	)
	return err
}

func (r *staffRepository) Update(ctx context.Context, staff *domain.StaffUser) error {
	const query = `
        UPDATE staff_users
        SET name=$1, password_hash=$2, role=$3, active_flag=$4, updated_at=NOW()
        WHERE id=$5`
	cmd, err := r.db.Exec(ctx, query,
		staff.Name,
		staff.PasswordHash,
		staff.Role,
		staff.Active,
		staff.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *staffRepository) GetByID(ctx context.Context, id string) (*domain.StaffUser, error) {
	const query = `
        SELECT id, username, name, password_hash, role, active_flag, created_at, updated_at
        FROM staff_users WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *staffRepository) GetByUsername(ctx context.Context, username string) (*domain.StaffUser, error) {
	const query = `
        SELECT id, username, name, password_hash, role, active_flag, created_at, updated_at
        FROM staff_users WHERE username=$1`
	return r.fetchSingle(ctx, query, strings.ToLower(strings.TrimSpace(username)))
}

func (r *staffRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.StaffUser, error) {
	var staff domain.StaffUser
	if err := r.db.QueryRow(ctx, query, arg).Scan(
		&staff.ID,
		&staff.Username,
		&staff.Name,
		&staff.PasswordHash,
		&staff.Role,
		&staff.Active,
		&staff.CreatedAt,
		&staff.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &staff, nil
}

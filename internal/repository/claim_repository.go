package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/cablesur/claims-service/internal/domain"
)

// ClaimFilter captures claim search parameters.
type ClaimFilter struct {
	ClientNumber *string
	Sector       *string
	Technician   *string
	Statuses     []domain.ClaimStatus
	ClaimType    *string
	Limit        int
	Offset       int
}

// ClaimRepository encapsulates claim persistence.
type ClaimRepository interface {
	Create(ctx context.Context, claim *domain.Claim) error
	Update(ctx context.Context, claim *domain.Claim) error
	GetByID(ctx context.Context, id string) (*domain.Claim, error)
	ListByClient(ctx context.Context, clientNumber string) ([]domain.Claim, error)
	ListByStatus(ctx context.Context, status domain.ClaimStatus) ([]domain.Claim, error)
	ListWithFilter(ctx context.Context, filter ClaimFilter) ([]domain.Claim, error)
	CountOpenBySector(ctx context.Context) (map[string]int, error)
}

type claimRepository struct {
	db DB
}

// NewClaimRepository instantiates repository.
func NewClaimRepository(db DB) ClaimRepository {
	return &claimRepository{db: db}
}

const claimColumns = `id, client_number, sector, claim_type, details, status, technician,
               seal_number, closure_notes, filed_by, created_at, updated_at, closed_at`

func (r *claimRepository) Create(ctx context.Context, claim *domain.Claim) error {
	const query = `
        INSERT INTO claims (id, client_number, sector, claim_type, details, status, technician,
                            seal_number, closure_notes, filed_by, created_at, updated_at, closed_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`
	_, err := r.db.Exec(ctx, query,
		claim.ID,
		claim.ClientNumber,
		claim.Sector,
		claim.Type,
		claim.Details,
		claim.Status,
		claim.Technician,
		claim.SealNumber,
		claim.ClosureNotes,
		claim.FiledBy,
		claim.CreatedAt,
		claim.UpdatedAt,
		claim.ClosedAt,
	)
	return err
}

func (r *claimRepository) Update(ctx context.Context, claim *domain.Claim) error {
	const query = `
        UPDATE claims SET sector=$1, claim_type=$2, details=$3, status=$4, technician=$5,
            seal_number=$6, closure_notes=$7, updated_at=$8, closed_at=$9
        WHERE id=$10`
	cmd, err := r.db.Exec(ctx, query,
		claim.Sector,
		claim.Type,
		claim.Details,
		claim.Status,
		claim.Technician,
		claim.SealNumber,
		claim.ClosureNotes,
		claim.UpdatedAt,
		claim.ClosedAt,
		claim.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *claimRepository) GetByID(ctx context.Context, id string) (*domain.Claim, error) {
	query := fmt.Sprintf(`SELECT %s FROM claims WHERE id=$1`, claimColumns)
	var claim domain.Claim
	if err := scanClaim(r.db.QueryRow(ctx, query, id), &claim); err != nil {
		return nil, err
	}
	return &claim, nil
}

func (r *claimRepository) ListByClient(ctx context.Context, clientNumber string) ([]domain.Claim, error) {
	return r.ListWithFilter(ctx, ClaimFilter{ClientNumber: &clientNumber, Limit: 500})
}

func (r *claimRepository) ListByStatus(ctx context.Context, status domain.ClaimStatus) ([]domain.Claim, error) {
	return r.ListWithFilter(ctx, ClaimFilter{Statuses: []domain.ClaimStatus{status}, Limit: 500})
}

func (r *claimRepository) ListWithFilter(ctx context.Context, filter ClaimFilter) ([]domain.Claim, error) {
	base := fmt.Sprintf(`SELECT %s FROM claims`, claimColumns)
	clauses := []string{"1=1"}
	args := []any{}

	if filter.ClientNumber != nil {
		args = append(args, strings.TrimSpace(*filter.ClientNumber))
		clauses = append(clauses, fmt.Sprintf("client_number=$%d", len(args)))
	}
	if filter.Sector != nil {
		args = append(args, *filter.Sector)
		clauses = append(clauses, fmt.Sprintf("sector=$%d", len(args)))
	}
	if filter.Technician != nil {
		args = append(args, *filter.Technician)
		clauses = append(clauses, fmt.Sprintf("technician=$%d", len(args)))
	}
	if filter.ClaimType != nil {
		args = append(args, *filter.ClaimType)
		clauses = append(clauses, fmt.Sprintf("claim_type=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanClaims(rows)
}

func (r *claimRepository) CountOpenBySector(ctx context.Context) (map[string]int, error) {
	const query = `
        SELECT sector, COUNT(*) FROM claims
        WHERE status = ANY($1)
        GROUP BY sector`
	statuses := make([]string, 0, len(domain.OpenStatuses))
	for _, s := range domain.OpenStatuses {
		statuses = append(statuses, string(s))
	}
	rows, err := r.db.Query(ctx, query, statuses)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var sector string
		var count int
		if err := rows.Scan(&sector, &count); err != nil {
			return nil, err
		}
		counts[sector] = count
	}
	return counts, rows.Err()
}

func scanClaim(row pgx.Row, claim *domain.Claim) error {
	return row.Scan(
		&claim.ID,
		&claim.ClientNumber,
		&claim.Sector,
		&claim.Type,
		&claim.Details,
		&claim.Status,
		&claim.Technician,
		&claim.SealNumber,
		&claim.ClosureNotes,
		&claim.FiledBy,
		&claim.CreatedAt,
		&claim.UpdatedAt,
		&claim.ClosedAt,
	)
}

func scanClaims(rows pgx.Rows) ([]domain.Claim, error) {
	var result []domain.Claim
	for rows.Next() {
		var claim domain.Claim
		if err := scanClaim(rows, &claim); err != nil {
			return nil, err
		}
		result = append(result, claim)
	}
	return result, rows.Err()
}

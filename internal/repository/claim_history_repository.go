package repository

import (
	"context"
	"encoding/json"

	"github.com/cablesur/claims-service/internal/domain"
)

// ClaimHistoryRepository persists the claim audit trail.
type ClaimHistoryRepository interface {
	Create(ctx context.Context, entry *domain.ClaimHistory) error
	ListByClaim(ctx context.Context, claimID string, limit, offset int) ([]domain.ClaimHistory, error)
}

type claimHistoryRepository struct {
	db DB
}

// NewClaimHistoryRepository instantiates repository.
func NewClaimHistoryRepository(db DB) ClaimHistoryRepository {
	return &claimHistoryRepository{db: db}
}

func (r *claimHistoryRepository) Create(ctx context.Context, entry *domain.ClaimHistory) error {
	oldVal, err := json.Marshal(entry.OldValue)
	if err != nil {
		return err
	}
	newVal, err := json.Marshal(entry.NewValue)
	if err != nil {
		return err
	}
	const query = `
        INSERT INTO claim_history (id, claim_id, changed_by, change_type, old_value, new_value, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7)`
	_, err = r.db.Exec(ctx, query,
		entry.ID,
		entry.ClaimID,
		entry.ChangedBy,
		entry.ChangeType,
		oldVal,
		newVal,
		entry.CreatedAt,
	)
	return err
}

func (r *claimHistoryRepository) ListByClaim(ctx context.Context, claimID string, limit, offset int) ([]domain.ClaimHistory, error) {
	if limit <= 0 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
        SELECT id, claim_id, changed_by, change_type, old_value, new_value, created_at
        FROM claim_history WHERE claim_id=$1
        ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.db.Query(ctx, query, claimID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ClaimHistory
	for rows.Next() {
		var entry domain.ClaimHistory
		var oldVal, newVal []byte
		if err := rows.Scan(
			&entry.ID,
			&entry.ClaimID,
			&entry.ChangedBy,
			&entry.ChangeType,
			&oldVal,
			&newVal,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		if len(oldVal) > 0 {
			if err := json.Unmarshal(oldVal, &entry.OldValue); err != nil {
				return nil, err
			}
		}
		if len(newVal) > 0 {
			if err := json.Unmarshal(newVal, &entry.NewValue); err != nil {
				return nil, err
			}
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}

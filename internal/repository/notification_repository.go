package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/cablesur/claims-service/internal/domain"
)

// NotificationRepository encapsulates notification persistence.
type NotificationRepository interface {
	Create(ctx context.Context, notification *domain.Notification) error
	GetByID(ctx context.Context, id string) (*domain.Notification, error)
	ListByAudience(ctx context.Context, audiences []string, unreadOnly bool, limit, offset int) ([]domain.Notification, error)
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context, audiences []string) (int64, error)
	CountUnread(ctx context.Context, audiences []string) (int, error)
}

type notificationRepository struct {
	db DB
}

// NewNotificationRepository instantiates repository.
func NewNotificationRepository(db DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, notification *domain.Notification) error {
	const query = `
        INSERT INTO notifications (id, event_type, message, audience, priority, read, claim_id, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`
	_, err := r.db.Exec(ctx, query,
		notification.ID,
		notification.EventType,
		notification.Message,
		notification.Audience,
		notification.Priority,
		notification.Read,
		notification.ClaimID,
		notification.CreatedAt,
	)
	return err
}

func (r *notificationRepository) GetByID(ctx context.Context, id string) (*domain.Notification, error) {
	const query = `
        SELECT id, event_type, message, audience, priority, read, claim_id, created_at
        FROM notifications WHERE id=$1`
	var n domain.Notification
	if err := r.db.QueryRow(ctx, query, id).Scan(
		&n.ID,
		&n.EventType,
		&n.Message,
		&n.Audience,
		&n.Priority,
		&n.Read,
		&n.ClaimID,
		&n.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *notificationRepository) ListByAudience(ctx context.Context, audiences []string, unreadOnly bool, limit, offset int) ([]domain.Notification, error) {
	clauses := []string{"audience=ANY($1)"}
	if unreadOnly {
		clauses = append(clauses, "read=FALSE")
	}
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	query := fmt.Sprintf(`
        SELECT id, event_type, message, audience, priority, read, claim_id, created_at
        FROM notifications WHERE %s
        ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.db.Query(ctx, query, audienceArgs(audiences))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Notification
	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(
			&n.ID,
			&n.EventType,
			&n.Message,
			&n.Audience,
			&n.Priority,
			&n.Read,
			&n.ClaimID,
			&n.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, n)
	}
	return result, rows.Err()
}

func (r *notificationRepository) MarkRead(ctx context.Context, id string) error {
	cmd, err := r.db.Exec(ctx, `UPDATE notifications SET read=TRUE WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, audiences []string) (int64, error) {
	const query = `UPDATE notifications SET read=TRUE WHERE read=FALSE AND audience=ANY($1)`
	cmd, err := r.db.Exec(ctx, query, audienceArgs(audiences))
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func (r *notificationRepository) CountUnread(ctx context.Context, audiences []string) (int, error) {
	const query = `SELECT COUNT(*) FROM notifications WHERE read=FALSE AND audience=ANY($1)`
	var count int
	if err := r.db.QueryRow(ctx, query, audienceArgs(audiences)).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func audienceArgs(audiences []string) []string {
	if len(audiences) == 0 {
		return []string{domain.AudienceAll}
	}
	return audiences
}

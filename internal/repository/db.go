package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB is the querier contract satisfied by both *pgxpool.Pool and pgx.Tx,
// letting repositories run standalone or inside a transaction.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Stores bundles the repositories participating in one unit of work.
type Stores struct {
	Claims        ClaimRepository
	Clients       ClientRepository
	Notifications NotificationRepository
	History       ClaimHistoryRepository
	Sectors       SectorAssignmentRepository
	Groups        GroupAssignmentRepository
}

// UnitOfWork executes a function against transaction-scoped stores. Either
// every write inside fn commits or none does.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, stores Stores) error) error
}

type pgxUnitOfWork struct {
	pool *pgxpool.Pool
}

// NewUnitOfWork builds a pgx-backed unit of work.
func NewUnitOfWork(pool *pgxpool.Pool) UnitOfWork {
	return &pgxUnitOfWork{pool: pool}
}

func (u *pgxUnitOfWork) WithinTx(ctx context.Context, fn func(ctx context.Context, stores Stores) error) error {
	tx, err := u.pool.Begin(ctx)
	if err != nil {
		return err
	}
	stores := Stores{
		Claims:        NewClaimRepository(tx),
		Clients:       NewClientRepository(tx),
		Notifications: NewNotificationRepository(tx),
		History:       NewClaimHistoryRepository(tx),
		Sectors:       NewSectorAssignmentRepository(tx),
		Groups:        NewGroupAssignmentRepository(tx),
	}
	if err := fn(ctx, stores); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

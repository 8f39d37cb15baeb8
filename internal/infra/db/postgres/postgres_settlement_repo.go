package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"ppob-settlement/internal/domain"
	"ppob-settlement/internal/domain/model"
	"ppob-settlement/internal/domain/ports/repository"
)

// Ensure implementation satisfies the interface.
var _ repository.SettlementRecordRepository = (*settlementRecordRepo)(nil)

type settlementRecordRepo struct {
	pool *pgxpool.Pool
}

func NewSettlementRecordRepo(pool *pgxpool.Pool) repository.SettlementRecordRepository {
	return &settlementRecordRepo{pool: pool}
}

func (r *settlementRecordRepo) HasRun(ctx context.Context, kind model.OperationKind, ref model.TransactionReference) (bool, error) {
	const q = `
SELECT 1
  FROM settlement_records
 WHERE kind = $1 AND reference = $2;
`
	var one int
	err := r.pool.QueryRow(ctx, q, string(kind), ref.String()).Scan(&one)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, domain.ErrReadDatabaseRow
	}
	return true, nil
}

// MarkRun inserts the record once; ON CONFLICT DO NOTHING makes the losing
// writer observe zero affected rows instead of an error.
func (r *settlementRecordRepo) MarkRun(ctx context.Context, kind model.OperationKind, ref model.TransactionReference) (bool, error) {
	const q = `
INSERT INTO settlement_records (kind, reference, created_at)
VALUES ($1, $2, $3)
ON CONFLICT (kind, reference) DO NOTHING;
`
	tag, err := r.pool.Exec(ctx, q, string(kind), ref.String(), time.Now())
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

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
var _ repository.PendingTransactionRepository = (*pendingTransactionRepo)(nil)

type pendingTransactionRepo struct {
	pool *pgxpool.Pool
}

func NewPendingTransactionRepo(pool *pgxpool.Pool) repository.PendingTransactionRepository {
	return &pendingTransactionRepo{pool: pool}
}

// Upsert journals the transaction. Re-journaling an existing reference only
// touches updated_at; the original order details win.
func (r *pendingTransactionRepo) Upsert(ctx context.Context, tx *model.PendingTransaction) error {
	const q = `
INSERT INTO pending_transactions (reference, kind, user_id, customer_ref, product_code, amount, resolved, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (reference) DO UPDATE SET
  updated_at = EXCLUDED.updated_at;
`
	_, err := r.pool.Exec(ctx, q,
		tx.Reference.String(), string(tx.Kind), tx.UserID, tx.CustomerRef, tx.ProductCode,
		tx.Amount, tx.Resolved, tx.CreatedAt, tx.UpdatedAt,
	)
	return err
}

func (r *pendingTransactionRepo) FindByReference(ctx context.Context, ref model.TransactionReference) (*model.PendingTransaction, error) {
	const q = `
SELECT reference, kind, user_id, customer_ref, product_code, amount, resolved, created_at, updated_at
  FROM pending_transactions
 WHERE reference = $1;
`
	row := r.pool.QueryRow(ctx, q, ref.String())
	tx, err := scanPendingTransaction(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return tx, nil
}

func (r *pendingTransactionRepo) Resolve(ctx context.Context, ref model.TransactionReference) error {
	const q = `
UPDATE pending_transactions
   SET resolved = TRUE, updated_at = $2
 WHERE reference = $1;
`
	tag, err := r.pool.Exec(ctx, q, ref.String(), time.Now())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *pendingTransactionRepo) ListUnresolvedOlderThan(ctx context.Context, cutoff time.Time, limit int) ([]*model.PendingTransaction, error) {
	const q = `
SELECT reference, kind, user_id, customer_ref, product_code, amount, resolved, created_at, updated_at
  FROM pending_transactions
 WHERE resolved = FALSE AND updated_at < $1
 ORDER BY updated_at ASC
 LIMIT $2;
`
	rows, err := r.pool.Query(ctx, q, cutoff, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.PendingTransaction
	for rows.Next() {
		tx, err := scanPendingTransaction(rows)
		if err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, tx)
	}
	return out, rows.Err()
}

func scanPendingTransaction(row pgx.Row) (*model.PendingTransaction, error) {
	var tx model.PendingTransaction
	var ref, kind string
	err := row.Scan(&ref, &kind, &tx.UserID, &tx.CustomerRef, &tx.ProductCode, &tx.Amount, &tx.Resolved, &tx.CreatedAt, &tx.UpdatedAt)
	if err != nil {
		return nil, err
	}
	tx.Reference = model.TransactionReference(ref)
	tx.Kind = model.OrderKind(kind)
	return &tx, nil
}

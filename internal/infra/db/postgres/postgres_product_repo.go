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
var _ repository.ProductRepository = (*productRepo)(nil)

type productRepo struct {
	pool *pgxpool.Pool
}

func NewProductRepo(pool *pgxpool.Pool) repository.ProductRepository {
	return &productRepo{pool: pool}
}

func (r *productRepo) FindByCode(ctx context.Context, code string) (*model.Product, error) {
	const q = `
SELECT code, name, type, base_price, tier_two_price, agent_price, reward_points, created_at, updated_at
  FROM products
 WHERE code = $1;
`
	var p model.Product
	err := r.pool.QueryRow(ctx, q, code).Scan(
		&p.Code, &p.Name, &p.Type, &p.BasePrice, &p.TierTwoPrice, &p.AgentPrice, &p.RewardPoints, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return &p, nil
}

// Save creates or updates a catalog entry, keyed by the provider code.
func (r *productRepo) Save(ctx context.Context, p *model.Product) error {
	now := time.Now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	const q = `
INSERT INTO products (code, name, type, base_price, tier_two_price, agent_price, reward_points, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (code) DO UPDATE SET
  name = EXCLUDED.name,
  type = EXCLUDED.type,
  base_price = EXCLUDED.base_price,
  tier_two_price = EXCLUDED.tier_two_price,
  agent_price = EXCLUDED.agent_price,
  reward_points = EXCLUDED.reward_points,
  updated_at = EXCLUDED.updated_at;
`
	_, err := r.pool.Exec(ctx, q,
		p.Code, p.Name, p.Type, p.BasePrice, p.TierTwoPrice, p.AgentPrice, p.RewardPoints, p.CreatedAt, p.UpdatedAt,
	)
	return err
}

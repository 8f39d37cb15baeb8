package repository

import (
	"context"

	"ppob-settlement/internal/domain/model"
)

type ProductRepository interface {
	FindByCode(ctx context.Context, code string) (*model.Product, error)
	Save(ctx context.Context, p *model.Product) error
}

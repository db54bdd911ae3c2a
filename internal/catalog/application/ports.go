package application

import (
	"context"

	"github.com/bagelworks/storefront/internal/catalog/domain"
)

type ProductRepository interface {
	List(ctx context.Context) ([]domain.Product, error)
	Get(ctx context.Context, id int64) (domain.Product, error)
	GetMany(ctx context.Context, ids []int64) (map[int64]domain.Product, error)
}

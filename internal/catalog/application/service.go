package application

import (
	"context"
	"errors"

	"github.com/bagelworks/storefront/internal/catalog/domain"
)

var ErrProductNotFound = errors.New("product not found")

type Service struct {
	repo ProductRepository
}

func NewService(repo ProductRepository) *Service {
	return &Service{repo: repo}
}

// List returns the full catalog ordered by product name.
func (s *Service) List(ctx context.Context) ([]domain.Product, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (domain.Product, error) {
	return s.repo.Get(ctx, id)
}

// Lookup resolves a set of product ids. Ids that do not exist are simply
// absent from the result; callers decide whether that matters.
func (s *Service) Lookup(ctx context.Context, ids []int64) (map[int64]domain.Product, error) {
	if len(ids) == 0 {
		return map[int64]domain.Product{}, nil
	}
	return s.repo.GetMany(ctx, ids)
}

package application

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/bagelworks/storefront/internal/checkout/domain"
)

type OrderRepository interface {
	// PlaceWithOutbox commits the order header, its items, the inventory
	// decrements, and an OrderPlaced outbox row as one transaction,
	// returning the generated order id. It fails with ErrInsufficientStock
	// if any decrement would take inventory below zero.
	PlaceWithOutbox(ctx context.Context, lines []domain.PricedLine, total decimal.Decimal, headers map[string]string, traceparent string) (int64, error)
	Get(ctx context.Context, id int64) (domain.Order, error)
}

// PriceSource re-reads authoritative catalog prices. Products that no
// longer exist are simply absent from the result.
type PriceSource interface {
	PricesFor(ctx context.Context, ids []int64) (map[int64]decimal.Decimal, error)
}

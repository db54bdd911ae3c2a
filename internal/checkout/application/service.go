package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	cartdomain "github.com/bagelworks/storefront/internal/cart/domain"
	"github.com/bagelworks/storefront/internal/checkout/domain"
)

var (
	ErrEmptyCart         = errors.New("cart is empty")
	ErrUnauthorized      = errors.New("checkout requires an authenticated session")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrOrderNotFound     = errors.New("order not found")
)

type Service struct {
	log    *slog.Logger
	repo   OrderRepository
	prices PriceSource
}

func NewService(log *slog.Logger, repo OrderRepository, prices PriceSource) *Service {
	return &Service{log: log, repo: repo, prices: prices}
}

// PlaceOrder converts a cart into a durable order. Prices are re-read
// from the catalog here, never taken from whatever the session last saw,
// and each line's captured price is the one written to order_items. The
// commit itself is all-or-nothing: on any failure no order, item, or
// inventory change is visible and the caller's cart is untouched.
func (s *Service) PlaceOrder(ctx context.Context, cart cartdomain.Cart, authorized bool, headers map[string]string, traceparent string) (int64, error) {
	if !authorized {
		return 0, ErrUnauthorized
	}
	entries := cart.Items()
	if len(entries) == 0 {
		return 0, ErrEmptyCart
	}

	ids := make([]int64, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.ProductID)
	}
	prices, err := s.prices.PricesFor(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("pricing phase: %w", err)
	}

	lines := make([]domain.PricedLine, 0, len(entries))
	total := decimal.Zero
	for _, e := range entries {
		price, ok := prices[e.ProductID]
		if !ok {
			// Stale cart reference; tolerated, same as the cart view.
			s.log.Warn("cart references unknown product, skipping line", "product_id", e.ProductID)
			continue
		}
		line := domain.PricedLine{ProductID: e.ProductID, Quantity: e.Quantity, Price: price}
		lines = append(lines, line)
		total = total.Add(line.Subtotal())
	}
	if len(lines) == 0 {
		return 0, ErrEmptyCart
	}

	orderID, err := s.repo.PlaceWithOutbox(ctx, lines, total, headers, traceparent)
	if err != nil {
		if errors.Is(err, ErrInsufficientStock) {
			return 0, err
		}
		return 0, fmt.Errorf("place order: %w", err)
	}
	s.log.Info("order placed", "order_id", orderID, "total", total.String(), "lines", len(lines))
	return orderID, nil
}

func (s *Service) OrderDetails(ctx context.Context, id int64) (domain.Order, error) {
	return s.repo.Get(ctx, id)
}

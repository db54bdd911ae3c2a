package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/bagelworks/storefront/internal/checkout/application"
	"github.com/bagelworks/storefront/internal/checkout/domain"
)

type Repository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewRepository(log *slog.Logger, pool *pgxpool.Pool) *Repository {
	return &Repository{log: log, pool: pool}
}

// PlaceWithOutbox runs the whole commit phase in one transaction: order
// header, order items at their captured prices, conditional inventory
// decrements, and the OrderPlaced outbox row. The decrement's quantity
// floor is enforced by the WHERE clause, so concurrent checkouts for the
// same product serialize on the inventory row and can never drive it
// negative; zero affected rows means the stock ran out and everything
// rolls back.
func (r *Repository) PlaceWithOutbox(ctx context.Context, lines []domain.PricedLine, total decimal.Decimal, headers map[string]string, traceparent string) (int64, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, fmt.Errorf("begin checkout: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	var orderID int64
	err = tx.QueryRow(ctx, `INSERT INTO orders (order_date, total_amount, status)
			VALUES (now(), $1, $2)
			RETURNING id`,
		total, domain.StatusPending).Scan(&orderID)
	if err != nil {
		return 0, fmt.Errorf("insert order: %w", err)
	}

	for _, line := range lines {
		_, err = tx.Exec(ctx, `INSERT INTO order_items (order_id, product_id, quantity, price)
				VALUES ($1,$2,$3,$4)`,
			orderID, line.ProductID, line.Quantity, line.Price)
		if err != nil {
			return 0, fmt.Errorf("insert order item: %w", err)
		}

		ct, err := tx.Exec(ctx, `UPDATE inventory
				SET quantity = quantity - $1, last_updated = now()
				WHERE product_id = $2 AND quantity >= $1`,
			line.Quantity, line.ProductID)
		if err != nil {
			return 0, fmt.Errorf("decrement inventory: %w", err)
		}
		if ct.RowsAffected() == 0 {
			return 0, fmt.Errorf("product %d: %w", line.ProductID, application.ErrInsufficientStock)
		}
	}

	payload, err := json.Marshal(domain.OrderPlaced{OrderID: orderID, TotalAmount: total, Items: lines})
	if err != nil {
		return 0, err
	}
	_, err = tx.Exec(ctx, `INSERT INTO outbox (aggregate_type, aggregate_id, type, payload, headers, traceparent, status)
			VALUES ($1,$2,$3,$4,$5,$6,'pending')`,
		"order", strconv.FormatInt(orderID, 10), domain.EventOrderPlaced, payload, headers, traceparent)
	if err != nil {
		return 0, fmt.Errorf("insert outbox event: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit checkout: %w", err)
	}
	return orderID, nil
}

func (r *Repository) Get(ctx context.Context, id int64) (domain.Order, error) {
	var o domain.Order
	err := r.pool.QueryRow(ctx, `SELECT id, order_date, total_amount, status FROM orders WHERE id=$1`, id).
		Scan(&o.ID, &o.OrderDate, &o.TotalAmount, &o.Status)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Order{}, application.ErrOrderNotFound
	}
	if err != nil {
		return domain.Order{}, err
	}

	rows, err := r.pool.Query(ctx, `SELECT id, product_id, quantity, price FROM order_items WHERE order_id=$1 ORDER BY id`, id)
	if err != nil {
		return domain.Order{}, err
	}
	defer rows.Close()
	for rows.Next() {
		item := domain.OrderItem{OrderID: id}
		if err := rows.Scan(&item.ID, &item.ProductID, &item.Quantity, &item.Price); err != nil {
			return domain.Order{}, err
		}
		o.Items = append(o.Items, item)
	}
	return o, rows.Err()
}

package postgres

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedOutboxEvent(t *testing.T, pool *pgxpool.Pool, status string, lease time.Duration) int64 {
	t.Helper()
	var id int64
	err := pool.QueryRow(context.Background(), `
		INSERT INTO outbox (aggregate_type, aggregate_id, type, payload, headers, traceparent, status, relay_id, lease_until)
		VALUES ('order', '1', 'OrderPlaced', '{}', '{}', '', $1, 'dead-relay', now() + $2::interval)
		RETURNING id`, status, lease.String()).Scan(&id)
	require.NoError(t, err)
	return id
}

func TestLockBatchLocksPendingRows(t *testing.T) {
	pool := setupPool(t)
	ctx := context.Background()
	store := NewOutboxStore(slog.New(slog.NewTextHandler(io.Discard, nil)), pool)

	id := seedOutboxEvent(t, pool, "pending", time.Minute)

	events, err := store.LockBatch(ctx, "relay-a", 10, 5*time.Second)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, id, events[0].ID)

	// Locked rows are leased to relay-a and invisible to a second pass.
	again, err := store.LockBatch(ctx, "relay-b", 10, 5*time.Second)
	require.NoError(t, err)
	assert.Empty(t, again)
}

func TestLockBatchReclaimsExpiredLeases(t *testing.T) {
	pool := setupPool(t)
	ctx := context.Background()
	store := NewOutboxStore(slog.New(slog.NewTextHandler(io.Discard, nil)), pool)

	expired := seedOutboxEvent(t, pool, "in_progress", -time.Minute)
	seedOutboxEvent(t, pool, "in_progress", time.Minute)

	events, err := store.LockBatch(ctx, "relay-b", 10, 5*time.Second)

	require.NoError(t, err)
	require.Len(t, events, 1, "only the expired lease may be reclaimed")
	assert.Equal(t, expired, events[0].ID)
}

func TestMarkSentCompletesLifecycle(t *testing.T) {
	pool := setupPool(t)
	ctx := context.Background()
	store := NewOutboxStore(slog.New(slog.NewTextHandler(io.Discard, nil)), pool)

	id := seedOutboxEvent(t, pool, "pending", time.Minute)
	_, err := store.LockBatch(ctx, "relay-a", 10, 5*time.Second)
	require.NoError(t, err)

	require.NoError(t, store.MarkSent(ctx, []int64{id}))

	var status string
	require.NoError(t, pool.QueryRow(ctx, `SELECT status FROM outbox WHERE id=$1`, id).Scan(&status))
	assert.Equal(t, "sent", status)

	events, err := store.LockBatch(ctx, "relay-a", 10, 5*time.Second)
	require.NoError(t, err)
	assert.Empty(t, events, "sent rows never reappear")
}

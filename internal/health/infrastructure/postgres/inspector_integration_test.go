package postgres

import (
	"context"
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bagelworks/storefront/internal/health/application"
	"github.com/bagelworks/storefront/test/integration"
)

func setupPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if os.Getenv("INTEGRATION") == "" {
		t.Skip("set INTEGRATION=1 to run container-backed tests")
	}

	ctx := context.Background()
	env, err := integration.Setup(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { env.Teardown(ctx) })

	pool, err := pgxpool.New(ctx, env.PGURL)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func TestVerifierAgainstLiveSchema(t *testing.T) {
	pool := setupPool(t)
	ctx := context.Background()
	verifier := application.NewVerifier(slog.New(slog.NewTextHandler(io.Discard, nil)), NewInspector(pool))

	// Fresh database, nothing migrated yet.
	report := verifier.Check(ctx)
	assert.Equal(t, application.StatusUnhealthy, report.Status)
	assert.Equal(t, "connected", report.Database)

	// Full schema applied.
	require.NoError(t, integration.ApplySchema(ctx, pool))
	report = verifier.Check(ctx)
	assert.Equal(t, application.StatusHealthy, report.Status)
	assert.ElementsMatch(t, []string{"products", "inventory", "orders", "order_items"}, report.Tables)

	// Partial schema: drop half the required tables.
	_, err := pool.Exec(ctx, `DROP TABLE order_items; DROP TABLE inventory`)
	require.NoError(t, err)
	report = verifier.Check(ctx)
	assert.Equal(t, application.StatusDegraded, report.Status)
	assert.ElementsMatch(t, []string{"inventory", "order_items"}, report.MissingTables)
}

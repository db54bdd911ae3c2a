package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Inspector struct {
	pool *pgxpool.Pool
}

func NewInspector(pool *pgxpool.Pool) *Inspector {
	return &Inspector{pool: pool}
}

func (i *Inspector) Ping(ctx context.Context) error {
	var one int
	return i.pool.QueryRow(ctx, `SELECT 1`).Scan(&one)
}

func (i *Inspector) PresentTables(ctx context.Context, names []string) ([]string, error) {
	rows, err := i.pool.Query(ctx, `
		SELECT table_name FROM information_schema.tables
		WHERE table_schema = 'public' AND table_name = ANY($1)
		ORDER BY table_name`, names)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var present []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		present = append(present, name)
	}
	return present, rows.Err()
}

func (i *Inspector) ChangelogInfo(ctx context.Context) (bool, int, error) {
	var present bool
	err := i.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT FROM information_schema.tables
			WHERE table_schema = 'public' AND table_name = 'databasechangelog'
		)`).Scan(&present)
	if err != nil || !present {
		return false, 0, err
	}

	var applied int
	if err := i.pool.QueryRow(ctx, `SELECT count(*) FROM databasechangelog`).Scan(&applied); err != nil {
		return true, 0, err
	}
	return true, applied, nil
}

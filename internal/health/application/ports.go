package application

import "context"

// SchemaInspector exposes the storage engine's metadata, read-only.
type SchemaInspector interface {
	Ping(ctx context.Context) error
	PresentTables(ctx context.Context, names []string) ([]string, error)
	// ChangelogInfo reports whether the migration ledger table exists and
	// how many changesets it records.
	ChangelogInfo(ctx context.Context) (present bool, applied int, err error)
}

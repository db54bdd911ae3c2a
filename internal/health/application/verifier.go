package application

import (
	"context"
	"log/slog"
)

type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

// RequiredTables must all exist before the storefront is fully
// operational. A subset means a migration is still in flight.
var RequiredTables = []string{"products", "inventory", "orders", "order_items"}

type Report struct {
	Status            Status   `json:"status"`
	Database          string   `json:"database"`
	Tables            []string `json:"tables"`
	MissingTables     []string `json:"missing_tables,omitempty"`
	ChangelogPresent  bool     `json:"changelog_present"`
	ChangesetsApplied int      `json:"changesets_applied"`
	Error             string   `json:"error,omitempty"`
}

// Verifier distinguishes "not yet migrated", "partially migrated", and
// "fully operational" so deployment gates can tell still-migrating from
// totally broken.
type Verifier struct {
	log       *slog.Logger
	inspector SchemaInspector
}

func NewVerifier(log *slog.Logger, inspector SchemaInspector) *Verifier {
	return &Verifier{log: log, inspector: inspector}
}

func (v *Verifier) Check(ctx context.Context) Report {
	report := Report{Tables: []string{}}

	if err := v.inspector.Ping(ctx); err != nil {
		v.log.Error("health probe failed", "err", err)
		report.Status = StatusUnhealthy
		report.Database = "disconnected"
		report.Error = err.Error()
		return report
	}
	report.Database = "connected"

	present, err := v.inspector.PresentTables(ctx, RequiredTables)
	if err != nil {
		v.log.Error("schema inspection failed", "err", err)
		report.Status = StatusUnhealthy
		report.Error = err.Error()
		return report
	}
	report.Tables = present

	switch {
	case len(present) == len(RequiredTables):
		report.Status = StatusHealthy
	case len(present) > 0:
		report.Status = StatusDegraded
		report.MissingTables = missing(RequiredTables, present)
	default:
		report.Status = StatusUnhealthy
		report.Error = "database schema not initialized"
	}

	// Ledger state is informational; classification depends only on the
	// required tables.
	if ok, applied, err := v.inspector.ChangelogInfo(ctx); err != nil {
		v.log.Warn("changelog inspection failed", "err", err)
	} else {
		report.ChangelogPresent = ok
		report.ChangesetsApplied = applied
	}

	return report
}

func missing(required, present []string) []string {
	have := make(map[string]bool, len(present))
	for _, t := range present {
		have[t] = true
	}
	var out []string
	for _, t := range required {
		if !have[t] {
			out = append(out, t)
		}
	}
	return out
}

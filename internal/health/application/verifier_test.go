package application

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeInspector struct {
	pingErr          error
	present          []string
	presentErr       error
	changelogPresent bool
	applied          int
	changelogErr     error
}

func (f *fakeInspector) Ping(_ context.Context) error { return f.pingErr }

func (f *fakeInspector) PresentTables(_ context.Context, _ []string) ([]string, error) {
	return f.present, f.presentErr
}

func (f *fakeInspector) ChangelogInfo(_ context.Context) (bool, int, error) {
	return f.changelogPresent, f.applied, f.changelogErr
}

func newVerifier(i SchemaInspector) *Verifier {
	return NewVerifier(slog.New(slog.NewTextHandler(io.Discard, nil)), i)
}

func TestCheckAllTablesPresentIsHealthy(t *testing.T) {
	v := newVerifier(&fakeInspector{
		present:          []string{"inventory", "order_items", "orders", "products"},
		changelogPresent: true,
		applied:          9,
	})

	report := v.Check(context.Background())

	assert.Equal(t, StatusHealthy, report.Status)
	assert.Equal(t, "connected", report.Database)
	assert.Empty(t, report.MissingTables)
	assert.True(t, report.ChangelogPresent)
	assert.Equal(t, 9, report.ChangesetsApplied)
}

func TestCheckPartialSchemaIsDegradedAndNamesMissing(t *testing.T) {
	v := newVerifier(&fakeInspector{present: []string{"orders", "products"}})

	report := v.Check(context.Background())

	assert.Equal(t, StatusDegraded, report.Status)
	assert.Equal(t, "connected", report.Database)
	require.ElementsMatch(t, []string{"inventory", "order_items"}, report.MissingTables)
}

func TestCheckNoTablesIsUnhealthy(t *testing.T) {
	v := newVerifier(&fakeInspector{present: nil})

	report := v.Check(context.Background())

	assert.Equal(t, StatusUnhealthy, report.Status)
	assert.Equal(t, "connected", report.Database)
	assert.NotEmpty(t, report.Error)
}

func TestCheckConnectionFailureIsUnhealthy(t *testing.T) {
	v := newVerifier(&fakeInspector{pingErr: errors.New("dial tcp: connection refused")})

	report := v.Check(context.Background())

	assert.Equal(t, StatusUnhealthy, report.Status)
	assert.Equal(t, "disconnected", report.Database)
	assert.Contains(t, report.Error, "connection refused")
}

func TestCheckInspectionFailureIsUnhealthy(t *testing.T) {
	v := newVerifier(&fakeInspector{presentErr: errors.New("permission denied")})

	report := v.Check(context.Background())

	assert.Equal(t, StatusUnhealthy, report.Status)
}

func TestCheckChangelogErrorDoesNotAffectClassification(t *testing.T) {
	v := newVerifier(&fakeInspector{
		present:      []string{"inventory", "order_items", "orders", "products"},
		changelogErr: errors.New("ledger unreadable"),
	})

	report := v.Check(context.Background())

	assert.Equal(t, StatusHealthy, report.Status)
	assert.False(t, report.ChangelogPresent)
}

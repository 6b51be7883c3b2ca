package iocache

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/repolens/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecuteReportExport(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryReportStore()
	out := filepath.Join(t.TempDir(), "export")

	assert.Error(t, ExecuteReportExport(ctx, store, ""))
	assert.Error(t, ExecuteReportExport(ctx, store, out), "empty store has nothing to export")

	require.NoError(t, store.Put(ctx, newTestReport("r-1", "acme/widgets", time.Now().UTC())))
	require.NoError(t, ExecuteReportExport(ctx, store, out))

	for _, suffix := range []string{".reports.parquet", ".languages.parquet"} {
		info, err := os.Stat(out + suffix)
		require.NoError(t, err)
		assert.Greater(t, info.Size(), int64(0))
	}
}

func TestPrintStatus(t *testing.T) {
	// Smoke test: printing must not panic for either shape.
	PrintStoreStatus(schema.StoreStatus{Backend: "sqlite", Connected: true, TotalReports: 1,
		LastReportTime: time.Now(), OldestReportTime: time.Now(), TableSizes: map[string]int64{reportsTable: 4096}})
	PrintStoreStatus(schema.StoreStatus{Backend: "mysql"})
	PrintArtifactStatus(schema.ArtifactStatus{Backend: "memory", Connected: true, TotalEntries: 1, TotalBytes: 10})
}

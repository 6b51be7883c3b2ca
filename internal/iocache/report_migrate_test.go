package iocache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/huangsam/repolens/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateReports_Unsupported(t *testing.T) {
	err := MigrateReports(schema.MemoryBackend, "", -1)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "migrations are not supported for memory backend")
}

func TestMigrateReports_SQLite(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test_migration.db")

	// Latest, then a no-op rerun
	require.NoError(t, MigrateReports(schema.SQLiteBackend, dbPath, -1))
	_, err := os.Stat(dbPath)
	assert.NoError(t, err)
	assert.NoError(t, MigrateReports(schema.SQLiteBackend, dbPath, -1))

	// Step down, all the way down, and back up
	assert.NoError(t, MigrateReports(schema.SQLiteBackend, dbPath, 1))
	assert.NoError(t, MigrateReports(schema.SQLiteBackend, dbPath, 0))
	assert.NoError(t, MigrateReports(schema.SQLiteBackend, dbPath, 2))

	// A migrated database is usable by the store.
	store, err := NewReportStore(schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	assert.NoError(t, store.Close())
}

func TestMigrationDirsEmbedded(t *testing.T) {
	for backend, dir := range migrationDirs {
		entries, err := migrationsFS.ReadDir(dir)
		require.NoError(t, err, backend)
		assert.Len(t, entries, 4, backend)
	}
}

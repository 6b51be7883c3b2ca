package iocache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/huangsam/repolens/internal/contract"
	"github.com/huangsam/repolens/schema"
)

// artifactsTable is the name of the table for derived-artifact caching.
const artifactsTable = "repolens_artifacts"

// ArtifactCacheImpl caches derived artifacts in a SQL table.
type ArtifactCacheImpl struct {
	db        *sql.DB
	tableName string
	backend   schema.DatabaseBackend
}

var _ contract.ArtifactCache = &ArtifactCacheImpl{} // Compile-time check

// NewArtifactCache creates an artifact cache for the given backend. The
// in-process LRU front is added when lruSize is positive.
func NewArtifactCache(backend schema.DatabaseBackend, connStr string, s3 contract.S3Config, lruSize int) (contract.ArtifactCache, error) {
	var (
		cache contract.ArtifactCache
		err   error
	)
	switch backend {
	case schema.MemoryBackend:
		cache = NewMemoryArtifactCache()
	case schema.S3Backend:
		cache, err = NewS3ArtifactCache(s3)
	case schema.SQLiteBackend, schema.MySQLBackend, schema.PostgreSQLBackend:
		cache, err = NewSQLArtifactCache(artifactsTable, backend, connStr)
	default:
		return nil, fmt.Errorf("unsupported artifact backend: %s. Must be sqlite, mysql, postgresql, s3, or memory", backend)
	}
	if err != nil {
		return nil, err
	}
	if lruSize > 0 {
		return NewLRUArtifactCache(cache, lruSize)
	}
	return cache, nil
}

// NewSQLArtifactCache creates an artifact cache backed by a SQL table.
func NewSQLArtifactCache(tableName string, backend schema.DatabaseBackend, connStr string) (*ArtifactCacheImpl, error) {
	// Validate table name to prevent SQL injection
	if err := validateTableName(tableName); err != nil {
		return nil, err
	}
	db, err := openDB(backend, connStr, contract.GetArtifactDBFilePath())
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(getCreateArtifactsQuery(tableName, backend)); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create table %s: %w", tableName, err)
	}
	return &ArtifactCacheImpl{db: db, tableName: tableName, backend: backend}, nil
}

// getCreateArtifactsQuery returns the CREATE TABLE query for the given backend.
func getCreateArtifactsQuery(tableName string, backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(tableName, backend)
	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				artifact_key VARCHAR(255) PRIMARY KEY,
				artifact_value LONGBLOB NOT NULL,
				artifact_size BIGINT NOT NULL,
				created_at BIGINT NOT NULL
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				artifact_key TEXT PRIMARY KEY,
				artifact_value BYTEA NOT NULL,
				artifact_size BIGINT NOT NULL,
				created_at BIGINT NOT NULL
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				artifact_key TEXT PRIMARY KEY,
				artifact_value BLOB NOT NULL,
				artifact_size INTEGER NOT NULL,
				created_at INTEGER NOT NULL
			);
		`, quotedTableName)
	}
}

// Get retrieves an artifact by key.
func (ac *ArtifactCacheImpl) Get(ctx context.Context, key string) ([]byte, error) {
	query := fmt.Sprintf(`SELECT artifact_value FROM %s WHERE artifact_key = %s`,
		quoteTableName(ac.tableName, ac.backend), placeholder(ac.backend, 1))

	var value []byte
	if err := ac.db.QueryRowContext(ctx, query, key).Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, contract.ErrArtifactNotFound
		}
		return nil, err
	}
	return value, nil
}

// Put inserts or replaces an artifact.
func (ac *ArtifactCacheImpl) Put(ctx context.Context, key string, data []byte) error {
	if data == nil {
		data = []byte{}
	}
	_, err := ac.db.ExecContext(ctx, ac.getUpsertQuery(), key, data, len(data), time.Now().Unix())
	return err
}

// getUpsertQuery returns the UPSERT query for the backend.
func (ac *ArtifactCacheImpl) getUpsertQuery() string {
	quotedTableName := quoteTableName(ac.tableName, ac.backend)
	switch ac.backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`INSERT INTO %s (artifact_key, artifact_value, artifact_size, created_at) VALUES (?, ?, ?, ?) AS new
			ON DUPLICATE KEY UPDATE artifact_value = new.artifact_value, artifact_size = new.artifact_size, created_at = new.created_at`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`INSERT INTO %s (artifact_key, artifact_value, artifact_size, created_at) VALUES ($1, $2, $3, $4)
			ON CONFLICT (artifact_key) DO UPDATE SET artifact_value = EXCLUDED.artifact_value, artifact_size = EXCLUDED.artifact_size, created_at = EXCLUDED.created_at`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`INSERT OR REPLACE INTO %s (artifact_key, artifact_value, artifact_size, created_at) VALUES (?, ?, ?, ?)`, quotedTableName)
	}
}

// GetStatus returns status information about the artifact cache.
func (ac *ArtifactCacheImpl) GetStatus(ctx context.Context) (schema.ArtifactStatus, error) {
	status := schema.ArtifactStatus{
		Backend:   string(ac.backend),
		Connected: ac.db != nil,
	}
	if ac.db == nil {
		return status, nil
	}

	query := fmt.Sprintf("SELECT COUNT(*), COALESCE(SUM(artifact_size), 0) FROM %s", quoteTableName(ac.tableName, ac.backend))
	if err := ac.db.QueryRowContext(ctx, query).Scan(&status.TotalEntries, &status.TotalBytes); err != nil {
		return status, fmt.Errorf("failed to get artifact totals: %w", err)
	}
	return status, nil
}

// Close closes the underlying DB connection.
func (ac *ArtifactCacheImpl) Close() error {
	if ac.db != nil {
		return ac.db.Close()
	}
	return nil
}

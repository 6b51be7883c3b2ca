package iocache

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"sync"

	"github.com/huangsam/repolens/internal/contract"
	"github.com/huangsam/repolens/schema"
)

// Global Manager instance for main logic.
var (
	Manager   = &StoreManagerImpl{}
	initOnce  sync.Once
	closeOnce sync.Once
)

// InitStores initializes the global manager with the configured report store
// and artifact cache. An empty backend leaves that store unset.
func InitStores(cfg *contract.Config) error {
	var initErr error

	initOnce.Do(func() {
		var reports contract.ReportStore
		if cfg.ReportBackend != "" {
			store, err := NewReportStore(cfg.ReportBackend, cfg.ReportDBConnect)
			if err != nil {
				initErr = fmt.Errorf("failed to initialize report store: %w", err)
				return
			}
			reports = store
		}

		var artifacts contract.ArtifactCache
		if cfg.ArtifactBackend != "" {
			cache, err := NewArtifactCache(cfg.ArtifactBackend, cfg.ArtifactDBConnect, cfg.S3, cfg.ArtifactLRUSize)
			if err != nil {
				if reports != nil {
					_ = reports.Close()
				}
				initErr = fmt.Errorf("failed to initialize artifact cache: %w", err)
				return
			}
			artifacts = cache
		}

		Manager.Lock()
		defer Manager.Unlock()
		Manager.reports = reports
		Manager.artifacts = artifacts
	})

	return initErr
}

// CloseStores should be called on application shutdown.
func CloseStores() {
	closeOnce.Do(func() {
		Manager.Lock()
		defer Manager.Unlock()
		if Manager.reports != nil {
			_ = Manager.reports.Close()
		}
		if Manager.artifacts != nil {
			_ = Manager.artifacts.Close()
		}
	})
}

// ClearReports removes every stored report.
// For SQLite, it deletes the database file.
// For SQL backends (MySQL/PostgreSQL), it drops the reports table.
func ClearReports(backend schema.DatabaseBackend, dbFilePath, connStr string) error {
	switch backend {
	case schema.SQLiteBackend:
		return removeSQLiteFile(dbFilePath)
	case schema.MySQLBackend, schema.PostgreSQLBackend:
		return clearSQLTable(backend, connStr, reportsTable)
	case schema.MemoryBackend:
		return nil
	default:
		return fmt.Errorf("unsupported report backend for clearing: %s", backend)
	}
}

// ClearArtifacts removes every cached artifact.
// For SQLite, it deletes the database file; for S3, it empties the bucket.
func ClearArtifacts(ctx context.Context, backend schema.DatabaseBackend, dbFilePath, connStr string, s3 contract.S3Config) error {
	switch backend {
	case schema.SQLiteBackend:
		return removeSQLiteFile(dbFilePath)
	case schema.MySQLBackend, schema.PostgreSQLBackend:
		return clearSQLTable(backend, connStr, artifactsTable)
	case schema.S3Backend:
		cache, err := NewS3ArtifactCache(s3)
		if err != nil {
			return err
		}
		return cache.Clear(ctx)
	case schema.MemoryBackend:
		return nil
	default:
		return fmt.Errorf("unsupported artifact backend for clearing: %s", backend)
	}
}

// removeSQLiteFile deletes a SQLite database file; a missing file is not an error.
func removeSQLiteFile(dbFilePath string) error {
	if dbFilePath == "" {
		return fmt.Errorf("dbFilePath cannot be empty for SQLite backend")
	}
	if err := os.Remove(dbFilePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove SQLite database file %s: %w", dbFilePath, err)
	}
	return nil
}

// clearSQLTable connects to the SQL database and drops the table if it exists.
func clearSQLTable(backend schema.DatabaseBackend, connStr, tableName string) error {
	if err := validateTableName(tableName); err != nil {
		return err
	}
	driverName, err := driverFor(backend)
	if err != nil {
		return err
	}
	db, err := sql.Open(driverName, connStr)
	if err != nil {
		return fmt.Errorf("failed to connect to %s database: %w", backend, err)
	}
	defer func() { _ = db.Close() }()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping %s database: %w", backend, err)
	}

	query := fmt.Sprintf("DROP TABLE IF EXISTS %s", quoteTableName(tableName, backend))
	if _, err := db.Exec(query); err != nil {
		return fmt.Errorf("failed to drop table %s: %w", tableName, err)
	}
	return nil
}

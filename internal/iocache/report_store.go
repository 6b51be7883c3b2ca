package iocache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/huangsam/repolens/internal/contract"
	"github.com/huangsam/repolens/schema"
)

// reportsTable holds one canonical record per report id.
const reportsTable = "repolens_reports"

// ReportStoreImpl persists canonical reports in a SQL database.
type ReportStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
	connStr string
}

var _ contract.ReportStore = &ReportStoreImpl{} // Compile-time check

// NewReportStore creates a report store for the given backend.
// The memory backend returns a process-local store.
func NewReportStore(backend schema.DatabaseBackend, connStr string) (contract.ReportStore, error) {
	if backend == schema.MemoryBackend {
		return NewMemoryReportStore(), nil
	}
	if _, ok := schema.ValidReportBackends[backend]; !ok {
		return nil, fmt.Errorf("unsupported report backend: %s. Must be sqlite, mysql, postgresql, or memory", backend)
	}

	db, err := openDB(backend, connStr, contract.GetReportDBFilePath())
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(getCreateReportsQuery(backend)); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create table %s: %w", reportsTable, err)
	}

	return &ReportStoreImpl{db: db, backend: backend, connStr: connStr}, nil
}

// getCreateReportsQuery returns the CREATE TABLE query for the reports table.
func getCreateReportsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(reportsTable, backend)
	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id VARCHAR(64) PRIMARY KEY,
				repo_full_name VARCHAR(255) NOT NULL,
				generated_at DATETIME(6) NOT NULL,
				total_files INT NOT NULL,
				language_count INT NOT NULL,
				report_json LONGTEXT NOT NULL
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id TEXT PRIMARY KEY,
				repo_full_name TEXT NOT NULL,
				generated_at TIMESTAMPTZ NOT NULL,
				total_files INTEGER NOT NULL,
				language_count INTEGER NOT NULL,
				report_json TEXT NOT NULL
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id TEXT PRIMARY KEY,
				repo_full_name TEXT NOT NULL,
				generated_at TEXT NOT NULL,
				total_files INTEGER NOT NULL,
				language_count INTEGER NOT NULL,
				report_json TEXT NOT NULL
			);
		`, quotedTableName)
	}
}

// exists reports whether a record with the id is already stored.
func (rs *ReportStoreImpl) exists(ctx context.Context, id string) (bool, error) {
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE id = %s",
		quoteTableName(reportsTable, rs.backend), placeholder(rs.backend, 1))
	var n int
	if err := rs.db.QueryRowContext(ctx, query, id).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

// Put writes a new canonical record. Records are never overwritten.
func (rs *ReportStoreImpl) Put(ctx context.Context, report *schema.AnalysisReport) error {
	if report == nil || report.ID == "" {
		return errors.New("report must have an id")
	}
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to encode report %s: %w", report.ID, err)
	}

	found, err := rs.exists(ctx, report.ID)
	if err != nil {
		return fmt.Errorf("failed to look up report %s: %w", report.ID, err)
	}
	if found {
		return fmt.Errorf("%w: %s", contract.ErrReportExists, report.ID)
	}

	b := rs.backend
	query := fmt.Sprintf(`INSERT INTO %s (id, repo_full_name, generated_at, total_files, language_count, report_json)
		VALUES (%s, %s, %s, %s, %s, %s)`, quoteTableName(reportsTable, b),
		placeholder(b, 1), placeholder(b, 2), placeholder(b, 3), placeholder(b, 4), placeholder(b, 5), placeholder(b, 6))
	_, err = rs.db.ExecContext(ctx, query,
		report.ID, report.Repo.FullName, formatTime(report.GeneratedAt, b),
		report.Files.Total, len(report.Files.Languages), string(payload))
	if err != nil {
		// A concurrent writer may have won the race on the primary key.
		if found, lookupErr := rs.exists(ctx, report.ID); lookupErr == nil && found {
			return fmt.Errorf("%w: %s", contract.ErrReportExists, report.ID)
		}
		return fmt.Errorf("failed to insert report %s: %w", report.ID, err)
	}
	return nil
}

// Get decodes the stored record into a fresh value.
func (rs *ReportStoreImpl) Get(ctx context.Context, id string) (*schema.AnalysisReport, error) {
	query := fmt.Sprintf("SELECT report_json FROM %s WHERE id = %s",
		quoteTableName(reportsTable, rs.backend), placeholder(rs.backend, 1))

	var payload string
	if err := rs.db.QueryRowContext(ctx, query, id).Scan(&payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", contract.ErrReportNotFound, id)
		}
		return nil, fmt.Errorf("failed to read report %s: %w", id, err)
	}

	var report schema.AnalysisReport
	if err := json.Unmarshal([]byte(payload), &report); err != nil {
		return nil, fmt.Errorf("failed to decode report %s: %w", id, err)
	}
	return &report, nil
}

// List returns summaries from the denormalized columns, newest first.
func (rs *ReportStoreImpl) List(ctx context.Context) ([]schema.ReportSummary, error) {
	query := fmt.Sprintf(`SELECT id, repo_full_name, generated_at, total_files, language_count
		FROM %s ORDER BY generated_at DESC, id ASC`, quoteTableName(reportsTable, rs.backend))

	rows, err := rs.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query reports: %w", err)
	}
	defer func() { _ = rows.Close() }()

	results := []schema.ReportSummary{}
	for rows.Next() {
		var summary schema.ReportSummary
		switch rs.backend {
		case schema.SQLiteBackend:
			var generatedAt string
			if err := rows.Scan(&summary.ID, &summary.Repo, &generatedAt, &summary.Files, &summary.Languages); err != nil {
				return nil, fmt.Errorf("failed to scan report summary: %w", err)
			}
			t, err := time.Parse(time.RFC3339Nano, generatedAt)
			if err != nil {
				return nil, fmt.Errorf("failed to parse generated_at: %w", err)
			}
			summary.GeneratedAt = t
		default: // MySQL and PostgreSQL store as native datetime
			if err := rows.Scan(&summary.ID, &summary.Repo, &summary.GeneratedAt, &summary.Files, &summary.Languages); err != nil {
				return nil, fmt.Errorf("failed to scan report summary: %w", err)
			}
			summary.GeneratedAt = summary.GeneratedAt.UTC()
		}
		results = append(results, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reports: %w", err)
	}
	return results, nil
}

// Close closes the underlying DB connection.
func (rs *ReportStoreImpl) Close() error {
	if rs.db != nil {
		return rs.db.Close()
	}
	return nil
}

// GetStatus returns status information about the report store.
func (rs *ReportStoreImpl) GetStatus() (schema.StoreStatus, error) {
	status := schema.StoreStatus{
		Backend:    string(rs.backend),
		Connected:  rs.db != nil,
		TableSizes: make(map[string]int64),
	}
	if rs.db == nil {
		return status, nil
	}

	quotedTableName := quoteTableName(reportsTable, rs.backend)
	row := rs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", quotedTableName))
	if err := row.Scan(&status.TotalReports); err != nil {
		return status, fmt.Errorf("failed to get total reports: %w", err)
	}

	if status.TotalReports > 0 {
		last, err := scanTime(rs.db.QueryRow(fmt.Sprintf("SELECT MAX(generated_at) FROM %s", quotedTableName)), rs.backend)
		if err != nil {
			return status, fmt.Errorf("failed to get last report time: %w", err)
		}
		status.LastReportTime = last

		oldest, err := scanTime(rs.db.QueryRow(fmt.Sprintf("SELECT MIN(generated_at) FROM %s", quotedTableName)), rs.backend)
		if err != nil {
			return status, fmt.Errorf("failed to get oldest report time: %w", err)
		}
		status.OldestReportTime = oldest
	}

	status.TableSizes[reportsTable] = tableSizeBytes(rs.db, rs.backend, rs.connStr, reportsTable, int64(status.TotalReports))
	return status, nil
}

package cmd

import (
	"fmt"
	"strings"

	"github.com/huangsam/repolens/internal/contract"
	"github.com/huangsam/repolens/internal/iocache"
	"github.com/huangsam/repolens/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// reportBackendFromViper reads and validates the report backend settings.
func reportBackendFromViper() (schema.DatabaseBackend, string, error) {
	if err := loadConfigFile(); err != nil {
		return "", "", err
	}

	backend := schema.DatabaseBackend(strings.ToLower(viper.GetString("report-backend")))
	if _, ok := schema.ValidReportBackends[backend]; !ok {
		return "", "", fmt.Errorf("invalid report backend '%s'. must be sqlite, mysql, postgresql, memory", backend)
	}
	connStr := viper.GetString("report-db-connect")
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return "", "", err
	}
	return backend, connStr, nil
}

// storeSetup loads minimal configuration needed for report store operations.
// This is used by commands that need store access without full shared setup.
func storeSetup(_ *cobra.Command, _ []string) error {
	backend, connStr, err := reportBackendFromViper()
	if err != nil {
		return err
	}

	cfg.ReportBackend = backend
	cfg.ReportDBConnect = connStr
	cfg.OutputFile = viper.GetString("output-file")

	// No artifact cache for store commands
	if err := iocache.InitStores(cfg); err != nil {
		return fmt.Errorf("failed to initialize report store: %w", err)
	}
	return nil
}

// storeMigrateSetup loads minimal configuration needed for migrate operations.
// It does NOT initialize stores or create tables, so migrations can run on a fresh database.
func storeMigrateSetup(_ *cobra.Command, _ []string) error {
	backend, connStr, err := reportBackendFromViper()
	if err != nil {
		return err
	}

	// For SQLite backend with empty connection string, use default path
	if backend == schema.SQLiteBackend && connStr == "" {
		connStr = contract.GetReportDBFilePath()
	}

	cfg.ReportBackend = backend
	cfg.ReportDBConnect = connStr
	return nil
}

// storeCmd focused on report store management.
//
// Note: Store subcommands use minimal initialization (storeSetup) instead of
// the full sharedSetup used by analysis commands. This avoids GitHub and
// artifact settings for simple maintenance operations.
var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Manage the canonical report store",
	Long: `Manage the store that holds canonical analysis reports.

Reports are immutable once written. Every render, listing and question reads
from this store.

Supported backends: SQLite (default), MySQL, PostgreSQL, or Memory

Subcommands:
  status  - Show report counts and connection details
  export  - Export reports to Parquet for analytics
  clear   - Remove all stored reports
  migrate - Run database schema migrations

Examples:
  # Check store status
  repolens store status

  # Export for analysis in pandas/DuckDB
  repolens store export --output-file reports`,
}

// storeClearCmd clears the report store.
var storeClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all stored reports",
	Long: `Delete every stored report.

WARNING: This action cannot be undone. Consider exporting data first.
Cached artifacts of removed reports stay in the artifact backend until
'repolens artifacts clear' is run.

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Drops the reports table

Examples:
  # Export before clearing
  repolens store export --output-file backup
  repolens store clear`,
	PreRunE: storeMigrateSetup,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ClearReports(cfg.ReportBackend, cfg.ReportDBConnect, cfg.ReportDBConnect); err != nil {
			contract.LogFatal("Failed to clear reports", err)
		}
		fmt.Println("Reports cleared successfully.")
	},
}

// storeStatusCmd shows report store status.
var storeStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display report store statistics and connection details",
	Long: `Show detailed information about the report store.

Displays:
- Backend type and connection status
- Total number of stored reports
- Newest and oldest report timestamps
- Database table sizes

Examples:
  repolens store status`,
	PreRunE: storeSetup,
	Run: func(_ *cobra.Command, _ []string) {
		status, err := iocache.Manager.GetReportStore().GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get store status", err)
		}
		iocache.PrintStoreStatus(status)
	},
}

// storeExportCmd exports stored reports to Parquet files.
var storeExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored reports to Parquet files",
	Long: `Export every stored report to Parquet files for external analytics.

Creates two files:
- <output-file>.reports.parquet: one row per report
- <output-file>.languages.parquet: one row per report and language

Examples:
  repolens store export --output-file reports
  duckdb -c "SELECT repo, total_files FROM 'reports.reports.parquet'"`,
	PreRunE: storeSetup,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ExecuteReportExport(rootCtx, iocache.Manager.GetReportStore(), cfg.OutputFile); err != nil {
			contract.LogFatal("Export failed", err)
		}
	},
}

// storeMigrateCmd runs database migrations for the report store.
var storeMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations for the report store",
	Long: `Apply or roll back report store schema migrations.

Examples:
  # Migrate to latest version
  repolens store migrate

  # Roll back to the initial state
  repolens store migrate --target-version 0`,
	PreRunE: storeMigrateSetup,
	Run: func(_ *cobra.Command, _ []string) {
		if cfg.ReportBackend == schema.MemoryBackend {
			contract.LogFatal("Migration not supported", fmt.Errorf("%s backend has no schema", schema.MemoryBackend))
		}
		targetVersion := viper.GetInt("target-version")
		if err := iocache.MigrateReports(cfg.ReportBackend, cfg.ReportDBConnect, targetVersion); err != nil {
			contract.LogFatal("Migration failed", err)
		}
		fmt.Println("Migration completed successfully.")
	},
}

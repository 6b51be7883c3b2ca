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

// artifactsSetup loads minimal configuration needed for artifact cache operations.
func artifactsSetup(_ *cobra.Command, _ []string) error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	backend := schema.DatabaseBackend(strings.ToLower(viper.GetString("artifact-backend")))
	if _, ok := schema.ValidArtifactBackends[backend]; !ok {
		return fmt.Errorf("invalid artifact backend '%s'. must be sqlite, mysql, postgresql, s3, memory", backend)
	}
	connStr := viper.GetString("artifact-db-connect")
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	useSSL, err := contract.ParseBoolString(viper.GetString("s3-use-ssl"))
	if err != nil {
		return fmt.Errorf("invalid --s3-use-ssl value: %w", err)
	}

	cfg.ArtifactBackend = backend
	cfg.ArtifactDBConnect = connStr
	cfg.ArtifactLRUSize = max(viper.GetInt("artifact-lru-size"), 0)
	cfg.S3 = contract.S3Config{
		Endpoint:  viper.GetString("s3-endpoint"),
		Bucket:    viper.GetString("s3-bucket"),
		AccessKey: viper.GetString("s3-access-key"),
		SecretKey: viper.GetString("s3-secret-key"),
		Region:    viper.GetString("s3-region"),
		UseSSL:    useSSL,
	}
	return nil
}

// artifactsCmd focused on derived artifact cache management.
//
// Note: Artifact subcommands use minimal initialization (artifactsSetup) instead of
// the full sharedSetup. Losing the cache never loses data, since every artifact
// can be rendered again from its canonical report.
var artifactsCmd = &cobra.Command{
	Use:   "artifacts",
	Short: "Manage the rendered artifact cache",
	Long: `Manage the cache of rendered HTML, PDF and JSON artifacts.

Artifacts are keyed by report id, format, renderer version and a hash of the
canonical report, so stale entries are never served.

Supported backends: SQLite (default), MySQL, PostgreSQL, S3, or Memory

Subcommands:
  status - Show cache statistics and connection info
  clear  - Remove all cached artifacts

Examples:
  repolens artifacts status
  REPOLENS_ARTIFACT_BACKEND=s3 REPOLENS_S3_ENDPOINT=localhost:9000 repolens artifacts clear`,
}

// artifactsStatusCmd shows artifact cache status.
var artifactsStatusCmd = &cobra.Command{
	Use:     "status",
	Short:   "Display artifact cache statistics and connection details",
	PreRunE: artifactsSetup,
	Run: func(_ *cobra.Command, _ []string) {
		cache, err := iocache.NewArtifactCache(cfg.ArtifactBackend, cfg.ArtifactDBConnect, cfg.S3, cfg.ArtifactLRUSize)
		if err != nil {
			contract.LogFatal("Failed to open artifact cache", err)
		}
		defer func() { _ = cache.Close() }()

		status, err := cache.GetStatus(rootCtx)
		if err != nil {
			contract.LogFatal("Failed to get artifact status", err)
		}
		iocache.PrintArtifactStatus(status)
	},
}

// artifactsClearCmd clears the artifact cache.
var artifactsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cached artifacts",
	Long: `Delete every cached artifact from the configured backend.

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Drops the artifacts table
For S3: Removes every object in the bucket

Examples:
  repolens artifacts clear`,
	PreRunE: artifactsSetup,
	Run: func(_ *cobra.Command, _ []string) {
		dbFilePath := cfg.ArtifactDBConnect
		if dbFilePath == "" {
			dbFilePath = contract.GetArtifactDBFilePath()
		}
		if err := iocache.ClearArtifacts(rootCtx, cfg.ArtifactBackend, dbFilePath, cfg.ArtifactDBConnect, cfg.S3); err != nil {
			contract.LogFatal("Failed to clear artifacts", err)
		}
		fmt.Println("Artifacts cleared successfully.")
	},
}

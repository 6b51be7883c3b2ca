// Package cmd defines the command-line interface for repolens.
package cmd

import (
	"github.com/huangsam/repolens/internal/contract"
	"github.com/huangsam/repolens/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(reportsCmd)
	rootCmd.AddCommand(reposCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(storeCmd)
	rootCmd.AddCommand(artifactsCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the reports subcommands to the parent reports command
	reportsCmd.AddCommand(reportsListCmd)
	reportsCmd.AddCommand(reportsShowCmd)
	reportsCmd.AddCommand(reportsRenderCmd)
	reportsCmd.AddCommand(reportsAskCmd)

	// Add the store subcommands to the parent store command
	storeCmd.AddCommand(storeStatusCmd)
	storeCmd.AddCommand(storeClearCmd)
	storeCmd.AddCommand(storeExportCmd)
	storeCmd.AddCommand(storeMigrateCmd)

	// Add the artifacts subcommands to the parent artifacts command
	artifactsCmd.AddCommand(artifactsStatusCmd)
	artifactsCmd.AddCommand(artifactsClearCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("profile", "", "Enable profiling and write profiles to files with this prefix")
	rootCmd.PersistentFlags().Int("workers", contract.DefaultWorkers, "Number of concurrent manifest fetches")
	rootCmd.PersistentFlags().String("timeout", contract.DefaultTimeout.String(), "Upper bound for a single analysis")
	rootCmd.PersistentFlags().Int("top-dirs", contract.DefaultTopDirs, "Number of top-level directories to report")
	rootCmd.PersistentFlags().Int("window-days", contract.DefaultWindowDays, "Commit activity window in days")
	rootCmd.PersistentFlags().String("github-token", "", "GitHub token (prefer the GITHUB_TOKEN env variable)")
	rootCmd.PersistentFlags().String("github-api-url", "", "GitHub Enterprise API base URL")
	rootCmd.PersistentFlags().String("report-backend", contract.DefaultReportEngine, "Report backend: sqlite or mysql or postgresql or memory")
	rootCmd.PersistentFlags().String("report-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("artifact-backend", string(schema.SQLiteBackend), "Artifact backend: sqlite or mysql or postgresql or s3 or memory")
	rootCmd.PersistentFlags().String("artifact-db-connect", "", "Database connection string for artifacts (must differ from report-db-connect)")
	rootCmd.PersistentFlags().Int("artifact-lru-size", contract.DefaultLRUSize, "In-process LRU entries in front of the artifact backend (0 disables)")
	rootCmd.PersistentFlags().String("s3-endpoint", "", "S3-compatible endpoint (host:port)")
	rootCmd.PersistentFlags().String("s3-bucket", contract.DefaultS3Bucket, "S3 bucket for cached artifacts")
	rootCmd.PersistentFlags().String("s3-access-key", "", "S3 access key")
	rootCmd.PersistentFlags().String("s3-secret-key", "", "S3 secret key (prefer the REPOLENS_S3_SECRET_KEY env variable)")
	rootCmd.PersistentFlags().String("s3-region", contract.DefaultS3Region, "S3 region")
	rootCmd.PersistentFlags().String("s3-use-ssl", "no", "Use TLS for the S3 endpoint (yes/no)")
	rootCmd.PersistentFlags().String("assistant-model", contract.DefaultAssistModel, "Model used for report questions")
	rootCmd.PersistentFlags().String("assistant-api-key", "", "Assistant API key (prefer the GEMINI_API_KEY env variable)")
	rootCmd.PersistentFlags().String("metrics-file", "", "Write Prometheus counters to this textfile on exit")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of analyzeCmd to Viper
	analyzeCmd.Flags().String("ref", "", "Branch, tag or commit to analyze (defaults to the default branch)")
	if err := viper.BindPFlags(analyzeCmd.Flags()); err != nil {
		contract.LogFatal("Error binding analyze flags", err)
	}

	// Bind all flags of reportsRenderCmd to Viper
	reportsRenderCmd.Flags().String("format", string(schema.HTMLFormat), "Artifact format: html or pdf or json")
	if err := viper.BindPFlags(reportsRenderCmd.Flags()); err != nil {
		contract.LogFatal("Error binding render flags", err)
	}

	// Bind all flags of storeMigrateCmd to Viper
	storeMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(storeMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding store migrate flags", err)
	}
}

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime/pprof"
	"strings"

	"github.com/huangsam/repolens/core"
	"github.com/huangsam/repolens/internal/contract"
	"github.com/huangsam/repolens/internal/ghclient"
	"github.com/huangsam/repolens/internal/iocache"
	"github.com/huangsam/repolens/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// All linker flags will be set by goreleaser infra at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCtx is the root context for all operations.
var rootCtx = context.Background()

// cfg will hold the validated, final configuration.
var cfg = &contract.Config{}

// input holds the raw, unvalidated configuration from all sources (file, env, flags).
// Viper will unmarshal into this struct.
var input = &contract.ConfigRawInput{}

// profile holds profiling configuration.
var profile = &contract.ProfileConfig{}

// exitNotFound is the process status for a missing report.
const exitNotFound = 2

// startProfiling starts CPU profiling if enabled.
func startProfiling() error {
	if !profile.Enabled {
		return nil
	}

	cpuFile, err := os.Create(profile.Prefix + ".cpu.prof")
	if err != nil {
		return fmt.Errorf("could not create CPU profile: %w", err)
	}
	if err := pprof.StartCPUProfile(cpuFile); err != nil {
		return fmt.Errorf("could not start CPU profiling: %w", err)
	}

	_, err = fmt.Fprintf(os.Stderr, "Profiling enabled. CPU profile: %s.cpu.prof, Memory profile: %s.mem.prof\n", profile.Prefix, profile.Prefix)
	return err
}

// stopProfiling stops profiling and writes memory profile.
func stopProfiling() error {
	if !profile.Enabled {
		return nil
	}

	pprof.StopCPUProfile()

	memFile, err := os.Create(profile.Prefix + ".mem.prof")
	if err != nil {
		return fmt.Errorf("could not create memory profile: %w", err)
	}
	defer func() { _ = memFile.Close() }()

	if err := pprof.WriteHeapProfile(memFile); err != nil {
		return fmt.Errorf("could not write memory profile: %w", err)
	}

	_, err = fmt.Fprintf(os.Stderr, "Profiling complete. Use 'go tool pprof %s.cpu.prof' to analyze.\n", profile.Prefix)
	return err
}

// rootCmd is the command-line entrypoint for all other commands.
var rootCmd = &cobra.Command{
	Use:                "repolens",
	Short:              "Analyze GitHub repositories and keep canonical reports.",
	Long:               `Repolens inspects a GitHub repository's files, manifests and commit history, then stores a canonical report you can list, render and question later.`,
	Version:            version,
	SilenceErrors:      true,
	SilenceUsage:       true,
	DisableSuggestions: true,
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	setConfigSource()

	viper.SetEnvPrefix("REPOLENS")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	// Well-known variables work without the prefix
	_ = viper.BindEnv("github-token", "REPOLENS_GITHUB_TOKEN", "GITHUB_TOKEN")
	_ = viper.BindEnv("assistant-api-key", "REPOLENS_ASSISTANT_API_KEY", "GEMINI_API_KEY")

	viper.SetDefault("output", schema.TextOut)
	viper.SetDefault("color", "yes")
	viper.SetDefault("workers", contract.DefaultWorkers)
	viper.SetDefault("timeout", contract.DefaultTimeout.String())
	viper.SetDefault("top-dirs", contract.DefaultTopDirs)
	viper.SetDefault("window-days", contract.DefaultWindowDays)
	viper.SetDefault("report-backend", contract.DefaultReportEngine)
	viper.SetDefault("report-db-connect", "")
	viper.SetDefault("artifact-backend", schema.SQLiteBackend)
	viper.SetDefault("artifact-db-connect", "")
	viper.SetDefault("artifact-lru-size", contract.DefaultLRUSize)
	viper.SetDefault("s3-bucket", contract.DefaultS3Bucket)
	viper.SetDefault("s3-region", contract.DefaultS3Region)
	viper.SetDefault("s3-use-ssl", "no")
	viper.SetDefault("assistant-model", contract.DefaultAssistModel)
}

// setConfigSource points viper at an explicit config file or the default search paths.
func setConfigSource() {
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
		return
	}
	viper.SetConfigName(".repolens") // Name of config file (without extension)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME")
}

// loadConfigFile reads the config file if one is present.
func loadConfigFile() error {
	setConfigSource()
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			// Config file was found but another error was produced
			return fmt.Errorf("error reading config file: %w", err)
		}
	}
	return nil
}

// configSetup resolves and validates the full configuration without touching storage.
func configSetup(_ *cobra.Command, _ []string) error {
	processProfiling()
	if err := startProfiling(); err != nil {
		return fmt.Errorf("failed to start profiling: %w", err)
	}

	// 1. Read config file. This merges defaults, file, env, and flags.
	if err := loadConfigFile(); err != nil {
		return err
	}

	// 2. Unmarshal all resolved values from Viper into our raw input struct.
	if err := viper.Unmarshal(input); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}

	// 3. Run all validation and complex parsing.
	if err := contract.ProcessAndValidate(cfg, input); err != nil {
		return err
	}

	core.Version = version
	return nil
}

// sharedSetup validates the configuration and opens the report store and artifact cache.
func sharedSetup(cmd *cobra.Command, args []string) error {
	if err := configSetup(cmd, args); err != nil {
		return err
	}
	if err := iocache.InitStores(cfg); err != nil {
		return fmt.Errorf("failed to initialize persistence: %w", err)
	}
	return nil
}

// processProfiling reads the --profile flag into the profiling settings.
func processProfiling() {
	contract.ProcessProfilingConfig(profile, viper.GetString("profile"))
}

// newSourceClient builds the GitHub adapter from the validated config.
func newSourceClient() (*ghclient.GitHubClient, error) {
	return ghclient.NewGitHubClient(cfg.GitHubToken, cfg.GitHubAPIURL, nil)
}

// exitOnReportError terminates with a dedicated status when a report id is unknown.
func exitOnReportError(id, msg string, err error) {
	if errors.Is(err, contract.ErrReportNotFound) {
		_, _ = fmt.Fprintf(os.Stderr, "report %s not found\n", id)
		os.Exit(exitNotFound)
	}
	contract.LogFatal(msg, err)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// Shutdown flushes metrics and profiles, then closes open stores.
func Shutdown() error {
	defer iocache.CloseStores()
	if cfg.MetricsFile != "" {
		if err := core.DefaultMetrics.WriteTextfile(cfg.MetricsFile); err != nil {
			return fmt.Errorf("failed to write metrics: %w", err)
		}
	}
	return stopProfiling()
}

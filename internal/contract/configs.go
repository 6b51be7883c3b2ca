package contract

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/huangsam/repolens/schema"
)

// Default values for configuration.
const (
	DefaultWorkers      = 3
	MaxWorkers          = 16
	DefaultTimeout      = 2 * time.Minute
	DefaultTopDirs      = 10
	DefaultWindowDays   = 90
	MaxWindowDays       = 365
	DefaultLRUSize      = 64
	DefaultS3Bucket     = "repolens-artifacts"
	DefaultS3Region     = "us-east-1"
	DefaultAssistModel  = "gemini-2.5-flash"
	DefaultOutput       = "text"
	DefaultReportEngine = "sqlite"
)

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// S3Config holds the settings of the S3 artifact backend.
type S3Config struct {
	Endpoint  string
	Bucket    string
	AccessKey string
	SecretKey string // Please use env var as this is plaintext
	Region    string
	UseSSL    bool
}

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// Config holds the runtime configuration for the application.
// This struct is the "final, validated" config.
type Config struct {
	Output     schema.OutputMode
	OutputFile string
	UseColors  bool

	Workers    int
	Timeout    time.Duration
	TopDirs    int
	WindowDays int

	GitHubToken  string // Please use env var as this is plaintext
	GitHubAPIURL string

	ReportBackend   schema.DatabaseBackend
	ReportDBConnect string // Please use env var as this is plaintext

	ArtifactBackend   schema.DatabaseBackend
	ArtifactDBConnect string // Please use env var as this is plaintext
	ArtifactLRUSize   int
	S3                S3Config

	AssistantModel  string
	AssistantAPIKey string

	MetricsFile string
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	Output     string `mapstructure:"output"`
	OutputFile string `mapstructure:"output-file"`
	Color      string `mapstructure:"color"`

	Workers    int    `mapstructure:"workers"`
	Timeout    string `mapstructure:"timeout"`
	TopDirs    int    `mapstructure:"top-dirs"`
	WindowDays int    `mapstructure:"window-days"`

	GitHubToken  string `mapstructure:"github-token"`
	GitHubAPIURL string `mapstructure:"github-api-url"`

	ReportBackend     string `mapstructure:"report-backend"`
	ReportDBConnect   string `mapstructure:"report-db-connect"`
	ArtifactBackend   string `mapstructure:"artifact-backend"`
	ArtifactDBConnect string `mapstructure:"artifact-db-connect"`
	ArtifactLRUSize   int    `mapstructure:"artifact-lru-size"`

	S3Endpoint  string `mapstructure:"s3-endpoint"`
	S3Bucket    string `mapstructure:"s3-bucket"`
	S3AccessKey string `mapstructure:"s3-access-key"`
	S3SecretKey string `mapstructure:"s3-secret-key"`
	S3Region    string `mapstructure:"s3-region"`
	S3UseSSL    string `mapstructure:"s3-use-ssl"`

	AssistantModel  string `mapstructure:"assistant-model"`
	AssistantAPIKey string `mapstructure:"assistant-api-key"`

	MetricsFile string `mapstructure:"metrics-file"`
}

// Window returns the commit activity window as a duration.
func (c *Config) Window() time.Duration {
	return time.Duration(c.WindowDays) * 24 * time.Hour
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := validateLimits(cfg, input); err != nil {
		return err
	}
	if err := validateGitHub(cfg, input); err != nil {
		return err
	}
	if err := validateBackendConfigs(cfg, input); err != nil {
		return err
	}
	if err := validateS3(cfg, input); err != nil {
		return err
	}
	return validateAssistant(cfg, input)
}

// ProcessProfilingConfig enables profiling when a file prefix is given.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) {
	profilePrefix = strings.TrimSpace(profilePrefix)
	profile.Enabled = profilePrefix != ""
	profile.Prefix = profilePrefix
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.MemoryBackend, schema.S3Backend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateSimpleInputs processes output and presentation fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.OutputFile = input.OutputFile
	cfg.MetricsFile = strings.TrimSpace(input.MetricsFile)

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, json, csv, parquet", input.Output)
	}
	return nil
}

// validateLimits checks the numeric pipeline bounds.
func validateLimits(cfg *Config, input *ConfigRawInput) error {
	if input.Workers <= 0 || input.Workers > MaxWorkers {
		return fmt.Errorf("workers must be greater than 0 and cannot exceed %d (received %d)", MaxWorkers, input.Workers)
	}
	cfg.Workers = input.Workers

	timeout, err := time.ParseDuration(input.Timeout)
	if err != nil {
		return fmt.Errorf("invalid timeout '%s': %w", input.Timeout, err)
	}
	if timeout <= 0 {
		return fmt.Errorf("timeout must be positive (received %s)", input.Timeout)
	}
	cfg.Timeout = timeout

	if input.TopDirs < 0 {
		return fmt.Errorf("top-dirs cannot be negative (received %d)", input.TopDirs)
	}
	cfg.TopDirs = input.TopDirs

	if input.WindowDays <= 0 || input.WindowDays > MaxWindowDays {
		return fmt.Errorf("window-days must be greater than 0 and cannot exceed %d (received %d)", MaxWindowDays, input.WindowDays)
	}
	cfg.WindowDays = input.WindowDays

	if input.ArtifactLRUSize < 0 {
		return fmt.Errorf("artifact-lru-size cannot be negative (received %d)", input.ArtifactLRUSize)
	}
	cfg.ArtifactLRUSize = input.ArtifactLRUSize
	return nil
}

// validateGitHub checks credentials and the optional enterprise base URL.
func validateGitHub(cfg *Config, input *ConfigRawInput) error {
	cfg.GitHubToken = strings.TrimSpace(input.GitHubToken)
	cfg.GitHubAPIURL = strings.TrimSpace(input.GitHubAPIURL)
	if cfg.GitHubAPIURL == "" {
		return nil
	}
	u, err := url.Parse(cfg.GitHubAPIURL)
	if err != nil || !u.IsAbs() || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("github-api-url must be an absolute http(s) URL (received %q)", cfg.GitHubAPIURL)
	}
	return nil
}

// validateBackendConfigs validates report and artifact backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	// --- Report Backend Validation ---
	cfg.ReportBackend = schema.DatabaseBackend(strings.ToLower(input.ReportBackend))
	if _, ok := schema.ValidReportBackends[cfg.ReportBackend]; !ok {
		return fmt.Errorf("invalid report backend '%s'. must be sqlite, mysql, postgresql, memory", input.ReportBackend)
	}
	cfg.ReportDBConnect = input.ReportDBConnect
	if err := ValidateDatabaseConnectionString(cfg.ReportBackend, cfg.ReportDBConnect); err != nil {
		return fmt.Errorf("report-db-connect: %w", err)
	}

	// --- Artifact Backend Validation ---
	cfg.ArtifactBackend = schema.DatabaseBackend(strings.ToLower(input.ArtifactBackend))
	if _, ok := schema.ValidArtifactBackends[cfg.ArtifactBackend]; !ok {
		return fmt.Errorf("invalid artifact backend '%s'. must be sqlite, mysql, postgresql, s3, memory", input.ArtifactBackend)
	}
	cfg.ArtifactDBConnect = input.ArtifactDBConnect
	if err := ValidateDatabaseConnectionString(cfg.ArtifactBackend, cfg.ArtifactDBConnect); err != nil {
		return fmt.Errorf("artifact-db-connect: %w", err)
	}

	// Reports and artifacts must not share a SQLite file
	if cfg.ReportBackend == schema.SQLiteBackend && cfg.ArtifactBackend == schema.SQLiteBackend {
		reportPath := cfg.ReportDBConnect
		if reportPath == "" {
			reportPath = GetReportDBFilePath()
		}
		artifactPath := cfg.ArtifactDBConnect
		if artifactPath == "" {
			artifactPath = GetArtifactDBFilePath()
		}
		if reportPath == artifactPath {
			return fmt.Errorf("report and artifact storage must use different SQLite database files. Both resolve to %q", reportPath)
		}
	}
	return nil
}

// validateS3 fills the S3 settings, requiring them only for the s3 backend.
func validateS3(cfg *Config, input *ConfigRawInput) error {
	useSSL, err := ParseBoolString(input.S3UseSSL)
	if err != nil {
		return fmt.Errorf("invalid --s3-use-ssl value: %w", err)
	}
	cfg.S3 = S3Config{
		Endpoint:  strings.TrimSpace(input.S3Endpoint),
		Bucket:    strings.TrimSpace(input.S3Bucket),
		AccessKey: input.S3AccessKey,
		SecretKey: input.S3SecretKey,
		Region:    strings.TrimSpace(input.S3Region),
		UseSSL:    useSSL,
	}
	if cfg.ArtifactBackend != schema.S3Backend {
		return nil
	}
	switch {
	case cfg.S3.Endpoint == "":
		return fmt.Errorf("s3-endpoint is required when using %s artifact backend", schema.S3Backend)
	case cfg.S3.Bucket == "":
		return fmt.Errorf("s3-bucket is required when using %s artifact backend", schema.S3Backend)
	case cfg.S3.AccessKey == "" || cfg.S3.SecretKey == "":
		return fmt.Errorf("s3-access-key and s3-secret-key are required when using %s artifact backend", schema.S3Backend)
	}
	return nil
}

// validateAssistant fills the Q&A collaborator settings.
func validateAssistant(cfg *Config, input *ConfigRawInput) error {
	cfg.AssistantModel = strings.TrimSpace(input.AssistantModel)
	if cfg.AssistantModel == "" {
		return fmt.Errorf("assistant-model cannot be empty")
	}
	cfg.AssistantAPIKey = strings.TrimSpace(input.AssistantAPIKey)
	return nil
}

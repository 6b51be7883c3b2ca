package cmd

import (
	"github.com/huangsam/repolens/internal/contract"
	"github.com/huangsam/repolens/internal/outwriter"
	"github.com/huangsam/repolens/schema"
	"github.com/spf13/cobra"
)

// healthCmd reports whether the service is usable and authenticated.
var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Report service status and GitHub authentication",
	Long: `Print the service name, version and whether the configured GitHub token
is accepted by the API.

Examples:
  repolens health --output json`,
	Args:    cobra.NoArgs,
	PreRunE: configSetup,
	Run: func(_ *cobra.Command, _ []string) {
		status := schema.HealthStatus{
			Status:  "ok",
			Service: schema.ToolName,
			Version: version,
		}
		if cfg.GitHubToken != "" {
			client, err := newSourceClient()
			if err != nil {
				contract.LogFatal("Cannot create GitHub client", err)
			}
			if _, err := client.AuthenticatedLogin(rootCtx); err == nil {
				status.Authenticated = true
			} else {
				contract.LogWarn("GitHub authentication check failed", err)
			}
		}
		if err := outwriter.NewOutWriter().WriteHealth(status, cfg); err != nil {
			contract.LogFatal("Error writing health status", err)
		}
	},
}

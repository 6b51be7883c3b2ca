package cmd

import (
	"github.com/huangsam/repolens/internal/contract"
	"github.com/huangsam/repolens/internal/outwriter"
	"github.com/spf13/cobra"
)

// reposCmd lists repositories visible to the authenticated user.
var reposCmd = &cobra.Command{
	Use:   "repos",
	Short: "List repositories of the authenticated GitHub user",
	Long: `List repositories owned by or shared with the user behind the configured token,
most recently updated first.

Examples:
  GITHUB_TOKEN=... repolens repos
  repolens repos --output csv --output-file repos.csv`,
	Args:    cobra.NoArgs,
	PreRunE: configSetup,
	Run: func(_ *cobra.Command, _ []string) {
		client, err := newSourceClient()
		if err != nil {
			contract.LogFatal("Cannot create GitHub client", err)
		}
		repos, err := client.ListRepositories(rootCtx)
		if err != nil {
			contract.LogFatal("Failed to list repositories", err)
		}
		if err := outwriter.NewOutWriter().WriteRepositories(repos, cfg); err != nil {
			contract.LogFatal("Error writing repositories", err)
		}
	},
}

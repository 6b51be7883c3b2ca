package cmd

import (
	"time"

	"github.com/huangsam/repolens/core"
	"github.com/huangsam/repolens/internal/contract"
	"github.com/huangsam/repolens/internal/iocache"
	"github.com/huangsam/repolens/internal/outwriter"
	"github.com/huangsam/repolens/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// analyzeCmd runs the full pipeline against one repository.
var analyzeCmd = &cobra.Command{
	Use:   "analyze <owner>/<name>",
	Short: "Analyze a GitHub repository and store its report",
	Long: `Fetch a repository's metadata, file tree, dependency manifests and recent
commits, then synthesize and store a canonical report.

The report records:
- Language breakdown by file extension and top-level directories
- Dependencies from package.json, requirements.txt, pom.xml, go.mod and Gemfile
- Open issues, commit activity and contributors in the activity window
- Quality issues with matching recommendations

Examples:
  # Analyze the default branch
  repolens analyze acme/widgets

  # Analyze a tag and print the canonical JSON
  repolens analyze acme/widgets --ref v1.2.0 --output json`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetup,
	Run: func(_ *cobra.Command, args []string) {
		target, err := schema.ParseRepoTarget(args[0])
		if err != nil {
			contract.LogFatal("Invalid repository", err)
		}
		if ref := viper.GetString("ref"); ref != "" {
			target.Ref = ref
		}

		client, err := newSourceClient()
		if err != nil {
			contract.LogFatal("Cannot create GitHub client", err)
		}

		start := time.Now()
		report, err := core.Analyze(rootCtx, cfg, client, iocache.Manager.GetReportStore(), target)
		if err != nil {
			contract.LogFatal("Analysis failed", err)
		}

		if err := outwriter.NewOutWriter().WriteReport(report, cfg, time.Since(start)); err != nil {
			contract.LogFatal("Error writing report", err)
		}
	},
}

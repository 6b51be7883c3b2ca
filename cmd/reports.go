package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/huangsam/repolens/core"
	"github.com/huangsam/repolens/internal/assistant"
	"github.com/huangsam/repolens/internal/contract"
	"github.com/huangsam/repolens/internal/iocache"
	"github.com/huangsam/repolens/internal/outwriter"
	"github.com/huangsam/repolens/internal/render"
	"github.com/huangsam/repolens/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// reportsCmd groups operations on stored reports.
var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "List, show, render and question stored reports",
	Long: `Work with canonical reports produced by 'repolens analyze'.

Subcommands:
  list   - Show report summaries, newest first
  show   - Print one report
  render - Produce an HTML, PDF or JSON artifact
  ask    - Ask the assistant a question about a report

Examples:
  repolens reports list
  repolens reports render 3f1c... --format pdf --output-file report.pdf
  repolens reports ask 3f1c... "Which dependencies look risky?"`,
}

// reportsListCmd lists report summaries.
var reportsListCmd = &cobra.Command{
	Use:     "list",
	Short:   "List stored report summaries, newest first",
	Args:    cobra.NoArgs,
	PreRunE: sharedSetup,
	Run: func(_ *cobra.Command, _ []string) {
		summaries, err := iocache.Manager.GetReportStore().List(rootCtx)
		if err != nil {
			contract.LogFatal("Failed to list reports", err)
		}
		if err := outwriter.NewOutWriter().WriteSummaries(summaries, cfg); err != nil {
			contract.LogFatal("Error writing summaries", err)
		}
	},
}

// reportsShowCmd prints a single report.
var reportsShowCmd = &cobra.Command{
	Use:     "show <id>",
	Short:   "Print a stored report",
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetup,
	Run: func(_ *cobra.Command, args []string) {
		report, err := iocache.Manager.GetReportStore().Get(rootCtx, args[0])
		if err != nil {
			exitOnReportError(args[0], "Failed to load report", err)
		}
		if err := outwriter.NewOutWriter().WriteReport(report, cfg, 0); err != nil {
			contract.LogFatal("Error writing report", err)
		}
	},
}

// reportsRenderCmd renders a derived artifact through the artifact cache.
var reportsRenderCmd = &cobra.Command{
	Use:   "render <id>",
	Short: "Render a stored report as HTML, PDF or JSON",
	Long: `Render a derived artifact of a stored report.

Artifacts are cached by report id, format and content hash, so repeated
renders of the same report are served from the artifact backend.

Examples:
  repolens reports render 3f1c... > report.html
  repolens reports render 3f1c... --format pdf --output-file report.pdf`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetup,
	Run: func(_ *cobra.Command, args []string) {
		format := schema.ArtifactFormat(strings.ToLower(viper.GetString("format")))
		if _, ok := schema.ValidArtifactFormats[format]; !ok {
			contract.LogFatal("Invalid format", fmt.Errorf("'%s' must be html, pdf or json", format))
		}

		svc := render.NewArtifactService(iocache.Manager.GetReportStore(), iocache.Manager.GetArtifactCache(), core.DefaultMetrics)
		data, err := svc.Get(rootCtx, args[0], format)
		if err != nil {
			exitOnReportError(args[0], "Render failed", err)
		}

		file, err := contract.SelectOutputFile(cfg.OutputFile)
		if err != nil {
			contract.LogFatal("Cannot open output file", err)
		}
		if file != os.Stdout {
			defer func() { _ = file.Close() }()
		}
		if _, err := file.Write(data); err != nil {
			contract.LogFatal("Error writing artifact", err)
		}
		if cfg.OutputFile != "" {
			_, _ = fmt.Fprintf(os.Stderr, "Wrote %s artifact to %s\n", format, cfg.OutputFile)
		}
	},
}

// reportsAskCmd answers a question about a report.
var reportsAskCmd = &cobra.Command{
	Use:   "ask <id> <question>",
	Short: "Ask the assistant a question about a stored report",
	Long: `Send a question together with a compact summary of the report to the assistant.

Requires an API key via --assistant-api-key or the GEMINI_API_KEY env variable.

Examples:
  repolens reports ask 3f1c... "What should this project fix first?"`,
	Args:    cobra.MinimumNArgs(2),
	PreRunE: sharedSetup,
	Run: func(_ *cobra.Command, args []string) {
		id, question := args[0], strings.Join(args[1:], " ")

		var assist contract.Assistant
		if gemini, err := assistant.NewGemini(rootCtx, cfg.AssistantAPIKey, cfg.AssistantModel, ""); err == nil {
			assist = gemini
		}

		answer, err := core.AskReport(rootCtx, iocache.Manager.GetReportStore(), assist, id, question)
		if err != nil {
			exitOnReportError(id, "Question failed", err)
		}
		if err := outwriter.NewOutWriter().WriteAnswer(id, question, answer, cfg); err != nil {
			contract.LogFatal("Error writing answer", err)
		}
	},
}

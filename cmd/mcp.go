package cmd

import (
	"github.com/huangsam/repolens/core"
	"github.com/huangsam/repolens/internal/assistant"
	"github.com/huangsam/repolens/internal/iocache"
	"github.com/huangsam/repolens/internal/mcp"
	"github.com/huangsam/repolens/internal/render"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:     "mcp",
	Short:   "Start the repolens MCP server",
	Long:    `Launch an MCP server on stdio that lets AI agents analyze repositories and read, render or question stored reports.`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetup,
	RunE: func(_ *cobra.Command, _ []string) error {
		client, err := newSourceClient()
		if err != nil {
			return err
		}
		deps := mcp.Deps{
			Client:    client,
			Stores:    iocache.Manager,
			Artifacts: render.NewArtifactService(iocache.Manager.GetReportStore(), iocache.Manager.GetArtifactCache(), core.DefaultMetrics),
		}
		if gemini, err := assistant.NewGemini(rootCtx, cfg.AssistantAPIKey, cfg.AssistantModel, ""); err == nil {
			deps.Assistant = gemini
		}
		return mcp.StartMCPServer(rootCtx, cfg, deps, version)
	},
}

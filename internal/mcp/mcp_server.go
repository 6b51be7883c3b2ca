// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/repolens/internal/contract"
	"github.com/huangsam/repolens/internal/render"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Deps are the collaborators the tools run against. Assistant may be nil.
type Deps struct {
	Client    contract.SourceClient
	Stores    contract.StoreManager
	Artifacts *render.ArtifactService
	Assistant contract.Assistant
}

// NewMCPServer initializes and configures the repolens MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, deps Deps, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"Repolens Analysis Server",
		version,
		server.WithLogging(),
	)

	h := &toolHandler{baseCfg: baseCfg, deps: deps}

	// --- 1. Tool: analyze_repository ---
	s.AddTool(mcp.NewTool("analyze_repository",
		mcp.WithDescription("Analyze a GitHub repository and store a canonical report of its languages, dependencies, activity and quality findings."),
		mcp.WithString("repo", mcp.Description("Repository as owner/name."), mcp.Required()),
		mcp.WithString("ref", mcp.Description("Branch, tag or commit to analyze. Defaults to the default branch.")),
	), h.handleAnalyzeRepository)

	// --- 2. Tool: list_reports ---
	s.AddTool(mcp.NewTool("list_reports",
		mcp.WithDescription("List stored analysis reports, newest first."),
	), h.handleListReports)

	// --- 3. Tool: get_report ---
	s.AddTool(mcp.NewTool("get_report",
		mcp.WithDescription("Fetch a stored analysis report by id."),
		mcp.WithString("id", mcp.Description("Report id."), mcp.Required()),
	), h.handleGetReport)

	// --- 4. Tool: render_report ---
	s.AddTool(mcp.NewTool("render_report",
		mcp.WithDescription("Render a stored report as HTML, PDF (base64) or JSON."),
		mcp.WithString("id", mcp.Description("Report id."), mcp.Required()),
		mcp.WithString("format", mcp.Description("Artifact format. Defaults to 'html'."), mcp.Enum("html", "pdf", "json")),
	), h.handleRenderReport)

	// --- 5. Tool: ask_report ---
	s.AddTool(mcp.NewTool("ask_report",
		mcp.WithDescription("Ask the assistant a question about a stored report."),
		mcp.WithString("id", mcp.Description("Report id."), mcp.Required()),
		mcp.WithString("question", mcp.Description("Free-text question."), mcp.Required()),
	), h.handleAskReport)

	return s
}

// StartMCPServer starts the repolens MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, deps Deps, version string) error {
	s := NewMCPServer(baseCfg, deps, version)
	return server.ServeStdio(s)
}

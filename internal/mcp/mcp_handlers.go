package mcp

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/huangsam/repolens/core"
	"github.com/huangsam/repolens/internal/contract"
	"github.com/huangsam/repolens/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	deps    Deps
}

func (h *toolHandler) handleAnalyzeRepository(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	target, err := schema.ParseRepoTarget(request.GetString("repo", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if ref := request.GetString("ref", ""); ref != "" {
		target.Ref = ref
	}

	report, err := core.Analyze(core.WithSuppressHeader(ctx), h.baseCfg, h.deps.Client, h.deps.Stores.GetReportStore(), target)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("analysis failed: %v", err)), nil
	}
	return jsonResult(report)
}

func (h *toolHandler) handleListReports(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	summaries, err := h.deps.Stores.GetReportStore().List(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("listing failed: %v", err)), nil
	}
	return jsonResult(summaries)
}

func (h *toolHandler) handleGetReport(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	report, err := h.deps.Stores.GetReportStore().Get(ctx, id)
	if err != nil {
		return reportError(id, err), nil
	}
	return jsonResult(report)
}

func (h *toolHandler) handleRenderReport(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	format := schema.ArtifactFormat(request.GetString("format", string(schema.HTMLFormat)))
	if _, ok := schema.ValidArtifactFormats[format]; !ok {
		return mcp.NewToolResultError(fmt.Sprintf("invalid format %q. must be html, pdf, json", format)), nil
	}

	data, err := h.deps.Artifacts.Get(ctx, id, format)
	if err != nil {
		return reportError(id, err), nil
	}
	if format == schema.PDFFormat {
		return mcp.NewToolResultText(base64.StdEncoding.EncodeToString(data)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (h *toolHandler) handleAskReport(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	question := request.GetString("question", "")

	answer, err := core.AskReport(ctx, h.deps.Stores.GetReportStore(), h.deps.Assistant, id, question)
	if err != nil {
		return reportError(id, err), nil
	}
	return mcp.NewToolResultText(answer), nil
}

// reportError keeps the not-found outcome distinct from other failures.
func reportError(id string, err error) *mcp.CallToolResult {
	if errors.Is(err, contract.ErrReportNotFound) {
		return mcp.NewToolResultError(fmt.Sprintf("report %s not found", id))
	}
	return mcp.NewToolResultError(err.Error())
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding result: %w", err)
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}

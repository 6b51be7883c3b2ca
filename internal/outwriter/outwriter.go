// Package outwriter has output and writer logic.
package outwriter

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/huangsam/repolens/internal/contract"
	"github.com/huangsam/repolens/schema"
	"golang.org/x/term"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the command layer.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteReport prints one analysis report using the configured output format.
func (ow *OutWriter) WriteReport(report *schema.AnalysisReport, cfg *contract.Config, duration time.Duration) error {
	return WriteReport(report, cfg, duration)
}

// WriteSummaries prints stored report summaries using the configured output format.
func (ow *OutWriter) WriteSummaries(summaries []schema.ReportSummary, cfg *contract.Config) error {
	return WriteSummaries(summaries, cfg)
}

// WriteRepositories prints the authenticated user's repositories.
func (ow *OutWriter) WriteRepositories(repos []schema.RepositoryListing, cfg *contract.Config) error {
	return WriteRepositories(repos, cfg)
}

// WriteHealth prints the health probe result.
func (ow *OutWriter) WriteHealth(status schema.HealthStatus, cfg *contract.Config) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		if cfg.Output == schema.JSONOut {
			return writeJSON(w, status)
		}
		_, err := fmt.Fprintf(w, "%s: %s (version %s, authenticated: %t)\n", status.Service, status.Status, status.Version, status.Authenticated)
		return err
	}, "Wrote health status")
}

// WriteAnswer prints an assistant answer.
func (ow *OutWriter) WriteAnswer(reportID, question, answer string, cfg *contract.Config) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		if cfg.Output == schema.JSONOut {
			return writeJSON(w, map[string]string{"reportId": reportID, "question": question, "answer": answer})
		}
		_, err := fmt.Fprintln(w, answer)
		return err
	}, "Wrote answer")
}

// getMaxTextWidth calculates the maximum width of free-text table cells
// (descriptions, commit messages) based on terminal width.
func getMaxTextWidth(reserved int) int {
	termWidth := 80 // Conservative default for narrow terminals and CI
	if detected, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && detected > 0 {
		termWidth = detected
	}

	available := termWidth - reserved
	if available < 20 {
		return 20
	}
	if available > 80 {
		return 80
	}
	return available
}

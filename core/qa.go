package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/huangsam/repolens/internal/contract"
	"github.com/huangsam/repolens/schema"
)

// AssistantInstruction is the system instruction sent with every question.
const AssistantInstruction = "You are an expert software engineer and code analyst. Provide clear, actionable insights about codebases."

// BuildQAContext renders the summarized fields of a report followed by the question.
func BuildQAContext(report *schema.AnalysisReport, question string) string {
	languages := make([]string, 0, len(report.Files.Languages))
	for _, lang := range report.Files.Languages.Ranked() {
		languages = append(languages, fmt.Sprintf("%s (%d)", lang.Name, lang.Files))
	}
	deps, err := json.MarshalIndent(report.Dependencies, "", "  ")
	if err != nil {
		deps = []byte("{}")
	}

	var b strings.Builder
	b.WriteString("You are an AI assistant helping developers understand their codebase analysis report.\n\n")
	fmt.Fprintf(&b, "Repository: %s\n", report.Repo.FullName)
	fmt.Fprintf(&b, "Total Files: %d\n", report.Files.Total)
	fmt.Fprintf(&b, "Languages: %s\n", strings.Join(languages, ", "))
	fmt.Fprintf(&b, "Dependencies: %s\n", deps)
	fmt.Fprintf(&b, "Issues: %s\n", strings.Join(report.Quality.Issues, "; "))
	fmt.Fprintf(&b, "Recommendations: %s\n", strings.Join(report.Quality.Recommendations, "; "))
	fmt.Fprintf(&b, "Recent Activity: %d commits in last %d days by %d contributors\n",
		report.Activity.CommitsInWindow, report.Activity.WindowDays, report.Activity.DistinctAuthors)
	b.WriteString("\nBased on this codebase analysis, answer the following question:\n")
	b.WriteString(question)
	b.WriteString("\n")
	return b.String()
}

// AskReport loads a report and asks the assistant a question about it.
// Store errors pass through unchanged; assistant failures are reported as
// contract.ErrAssistantUnavailable.
func AskReport(ctx context.Context, store contract.ReportStore, assistant contract.Assistant, reportID, question string) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", errors.New("question cannot be empty")
	}
	report, err := store.Get(ctx, reportID)
	if err != nil {
		return "", err
	}
	if assistant == nil {
		return "", contract.ErrAssistantUnavailable
	}
	answer, err := assistant.Ask(ctx, BuildQAContext(report, question))
	if err != nil {
		if errors.Is(err, contract.ErrAssistantUnavailable) {
			return "", err
		}
		return "", fmt.Errorf("%w: %w", contract.ErrAssistantUnavailable, err)
	}
	return answer, nil
}

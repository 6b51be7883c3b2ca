// Package parquet provides data structures and functions for exporting repolens
// reports to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/huangsam/repolens/schema"
	"github.com/parquet-go/parquet-go"
)

// ReportRow is the flattened form of one canonical report.
type ReportRow struct {
	ID                  string    `parquet:"id,snappy"`
	Repo                string    `parquet:"repo,snappy"`
	GeneratedAt         time.Time `parquet:"generated_at,snappy"`
	TotalFiles          int32     `parquet:"total_files,snappy"`
	TotalBytes          int64     `parquet:"total_bytes,snappy"`
	LanguageCount       int32     `parquet:"language_count,snappy"`
	DependencyCount     int32     `parquet:"dependency_count,snappy"`
	OpenIssues          int32     `parquet:"open_issues,snappy"`
	CommitsInWindow     int32     `parquet:"commits_in_window,snappy"`
	DistinctAuthors     int32     `parquet:"distinct_authors,snappy"`
	WindowDays          int32     `parquet:"window_days,snappy"`
	TestCoveragePercent float64   `parquet:"test_coverage_percent,snappy"`
	IssueCount          int32     `parquet:"issue_count,snappy"`
	RecommendationCount int32     `parquet:"recommendation_count,snappy"`

	// AnalyzedBy is empty for unauthenticated runs.
	AnalyzedBy *string `parquet:"analyzed_by,optional,snappy"`
}

// LanguageRow is one language entry of one report.
type LanguageRow struct {
	ReportID string `parquet:"report_id,snappy"`
	Language string `parquet:"language,snappy"`
	Files    int32  `parquet:"files,snappy"`
	Bytes    int64  `parquet:"bytes,snappy"`
}

// SummaryRow mirrors schema.ReportSummary for listings.
type SummaryRow struct {
	ID          string    `parquet:"id,snappy"`
	Repo        string    `parquet:"repo,snappy"`
	GeneratedAt time.Time `parquet:"generated_at,snappy"`
	Files       int32     `parquet:"files,snappy"`
	Languages   int32     `parquet:"languages,snappy"`
}

// ConvertReports flattens reports into report rows and language rows.
// Language rows follow each report's ranked language order.
func ConvertReports(reports []*schema.AnalysisReport) ([]ReportRow, []LanguageRow) {
	reportRows := make([]ReportRow, 0, len(reports))
	var languageRows []LanguageRow
	for _, r := range reports {
		row := ReportRow{
			ID:                  r.ID,
			Repo:                r.Repo.FullName,
			GeneratedAt:         r.GeneratedAt,
			TotalFiles:          int32(r.Files.Total),
			TotalBytes:          r.Files.TotalBytes,
			LanguageCount:       int32(len(r.Files.Languages)),
			DependencyCount:     int32(r.Dependencies.Total()),
			OpenIssues:          int32(r.Activity.OpenIssues),
			CommitsInWindow:     int32(r.Activity.CommitsInWindow),
			DistinctAuthors:     int32(r.Activity.DistinctAuthors),
			WindowDays:          int32(r.Activity.WindowDays),
			TestCoveragePercent: r.Quality.Metrics.TestCoveragePercent,
			IssueCount:          int32(len(r.Quality.Issues)),
			RecommendationCount: int32(len(r.Quality.Recommendations)),
		}
		if r.Provenance.AnalyzedBy != "" {
			by := r.Provenance.AnalyzedBy
			row.AnalyzedBy = &by
		}
		reportRows = append(reportRows, row)

		for _, lang := range r.Files.Languages.Ranked() {
			languageRows = append(languageRows, LanguageRow{
				ReportID: r.ID,
				Language: lang.Name,
				Files:    int32(lang.Files),
				Bytes:    lang.Bytes,
			})
		}
	}
	return reportRows, languageRows
}

// ConvertSummaries maps report summaries to Parquet rows.
func ConvertSummaries(summaries []schema.ReportSummary) []SummaryRow {
	rows := make([]SummaryRow, 0, len(summaries))
	for _, s := range summaries {
		rows = append(rows, SummaryRow{
			ID:          s.ID,
			Repo:        s.Repo,
			GeneratedAt: s.GeneratedAt,
			Files:       int32(s.Files),
			Languages:   int32(s.Languages),
		})
	}
	return rows
}

// WriteRows writes rows to w using the schema inferred from T's struct tags.
func WriteRows[T any](w io.Writer, rows []T) error {
	writer := parquet.NewGenericWriter[T](w)
	if _, err := writer.Write(rows); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// WriteRowsFile creates outputPath and writes rows into it.
func WriteRowsFile[T any](rows []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := WriteRows(file, rows); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

// WriteReportsParquet writes report rows to a Parquet file.
func WriteReportsParquet(rows []ReportRow, outputPath string) error {
	return WriteRowsFile(rows, outputPath)
}

// WriteLanguagesParquet writes language rows to a Parquet file.
func WriteLanguagesParquet(rows []LanguageRow, outputPath string) error {
	return WriteRowsFile(rows, outputPath)
}

package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/huangsam/repolens/internal/contract"
	"github.com/huangsam/repolens/internal/parquet"
	"github.com/huangsam/repolens/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// WriteReport outputs one report, dispatching based on the output format configured.
func WriteReport(report *schema.AnalysisReport, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, report)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeReportCSV(w, report)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		_, languageRows := parquet.ConvertReports([]*schema.AnalysisReport{report})
		if err := writeParquetFile(languageRows, cfg.OutputFile); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
	default:
		// Default to human-readable tables
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeReportText(w, report, cfg, duration)
		}, "Wrote report")
	}
	return nil
}

// writeReportCSV writes the language breakdown of a report.
func writeReportCSV(w io.Writer, report *schema.AnalysisReport) error {
	header := []string{"report_id", "rank", "language", "files", "bytes", "percent"}
	total := report.Files.Languages.TotalFiles()
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for i, lang := range report.Files.Languages.Ranked() {
			rec := []string{
				report.ID,
				strconv.Itoa(i + 1),
				lang.Name,
				strconv.Itoa(lang.Files),
				strconv.FormatInt(lang.Bytes, 10),
				strconv.FormatFloat(schema.Percent(lang.Files, total), 'f', 1, 64),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

// writeReportText writes the report as a series of small tables.
func writeReportText(w io.Writer, report *schema.AnalysisReport, cfg *contract.Config, duration time.Duration) error {
	colors := cfg.UseColors
	header := fmt.Sprintf("📦 %s (%s)", report.Repo.FullName, report.Repo.DefaultBranch)
	if _, err := fmt.Fprintln(w, contract.Colorize(contract.HeaderColor, header, colors)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Report ID: %s\nGenerated: %s\n\n", report.ID, report.GeneratedAt.Format(contract.DateTimeFormat)); err != nil {
		return err
	}

	summary := [][]string{
		{"Total Files", strconv.Itoa(report.Files.Total)},
		{"Total Size", humanize.Bytes(uint64(max(report.Files.TotalBytes, 0)))},
		{"Languages", strconv.Itoa(len(report.Files.Languages))},
		{"Dependencies", strconv.Itoa(report.Dependencies.Total())},
		{"Open Issues", strconv.Itoa(report.Activity.OpenIssues)},
		{fmt.Sprintf("Commits (%dd)", report.Activity.WindowDays), strconv.Itoa(report.Activity.CommitsInWindow)},
		{fmt.Sprintf("Contributors (%dd)", report.Activity.WindowDays), strconv.Itoa(report.Activity.DistinctAuthors)},
		{"Test Files", schema.FormatPercent(report.Quality.Metrics.TestCoveragePercent)},
	}
	if err := renderTable(w, []string{"Metric", "Value"}, summary, tw.AlignLeft); err != nil {
		return err
	}

	if err := writeLanguageTable(w, report); err != nil {
		return err
	}

	if len(report.Files.TopDirs) > 0 {
		var rows [][]string
		for _, d := range report.Files.TopDirs {
			rows = append(rows, []string{d.Name, strconv.Itoa(d.Count)})
		}
		if err := renderTable(w, []string{"Directory", "Files"}, rows, tw.AlignRight); err != nil {
			return err
		}
	}

	if err := writeDependencyLines(w, report.Dependencies, colors); err != nil {
		return err
	}
	if err := writeFindings(w, report.Quality, colors); err != nil {
		return err
	}

	if len(report.Activity.RecentCommits) > 0 {
		width := getMaxTextWidth(45)
		var rows [][]string
		for _, c := range report.Activity.RecentCommits {
			rows = append(rows, []string{
				schema.ShortSHA(c.SHA),
				c.Author,
				c.Date.Format("2006-01-02"),
				contract.TruncateText(contract.FirstLine(c.Message), width),
			})
		}
		if err := renderTable(w, []string{"SHA", "Author", "Date", "Message"}, rows, tw.AlignLeft); err != nil {
			return err
		}
	}

	if duration > 0 {
		if _, err := fmt.Fprintf(w, "Analysis completed in %v with %d workers. Report backend: %s\n", duration, cfg.Workers, cfg.ReportBackend); err != nil {
			return err
		}
	}
	return nil
}

func writeLanguageTable(w io.Writer, report *schema.AnalysisReport) error {
	total := report.Files.Languages.TotalFiles()
	var rows [][]string
	for i, lang := range report.Files.Languages.Ranked() {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			lang.Name,
			strconv.Itoa(lang.Files),
			schema.FormatPercent(schema.Percent(lang.Files, total)),
			humanize.Bytes(uint64(max(lang.Bytes, 0))),
		})
	}
	if len(rows) == 0 {
		return nil
	}
	return renderTable(w, []string{"Rank", "Language", "Files", "Share", "Size"}, rows, tw.AlignRight)
}

func writeDependencyLines(w io.Writer, deps schema.DependencySet, colors bool) error {
	for _, eco := range schema.AllEcosystems {
		d, ok := deps[eco]
		if !ok || !d.Present {
			continue
		}
		line := fmt.Sprintf("%s (%s): %d dependencies", eco, d.Manifest, d.Count())
		if n := len(d.DevDependencies); n > 0 {
			line += fmt.Sprintf(", %d dev", n)
		}
		if _, err := fmt.Fprintln(w, contract.Colorize(contract.MetricColor, line, colors)); err != nil {
			return err
		}
	}
	return nil
}

func writeFindings(w io.Writer, findings schema.QualityFindings, colors bool) error {
	if len(findings.Issues) == 0 {
		if _, err := fmt.Fprintln(w, "✅ No major issues detected"); err != nil {
			return err
		}
	}
	for _, issue := range findings.Issues {
		if _, err := fmt.Fprintln(w, contract.Colorize(contract.IssueColor, "⚠️  "+issue, colors)); err != nil {
			return err
		}
	}
	for _, rec := range findings.Recommendations {
		if _, err := fmt.Fprintln(w, contract.Colorize(contract.RecommendationColor, "💡 "+rec, colors)); err != nil {
			return err
		}
	}
	return nil
}

// renderTable writes one tablewriter table with the given row alignment.
func renderTable(w io.Writer, headers []string, rows [][]string, align tw.Align) error {
	table := tablewriter.NewWriter(w)
	table.Header(headers)
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = align
	})
	if err := table.Bulk(rows); err != nil {
		return err
	}
	return table.Render()
}

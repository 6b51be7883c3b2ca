package outwriter

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/huangsam/repolens/internal/contract"
	"github.com/huangsam/repolens/internal/parquet"
	"github.com/huangsam/repolens/schema"
	"github.com/olekukonko/tablewriter/tw"
)

// WriteSummaries outputs stored report summaries, newest first.
func WriteSummaries(summaries []schema.ReportSummary, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, summaries)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeSummariesCSV(w, summaries)
		}, "Wrote CSV")
	case schema.ParquetOut:
		return writeParquetFile(parquet.ConvertSummaries(summaries), cfg.OutputFile)
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeSummariesTable(w, summaries)
		}, "Wrote table")
	}
}

func writeSummariesCSV(w io.Writer, summaries []schema.ReportSummary) error {
	header := []string{"id", "repo", "generated_at", "files", "languages"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, s := range summaries {
			rec := []string{
				s.ID,
				s.Repo,
				s.GeneratedAt.Format(contract.DateTimeFormat),
				strconv.Itoa(s.Files),
				strconv.Itoa(s.Languages),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

func writeSummariesTable(w io.Writer, summaries []schema.ReportSummary) error {
	var rows [][]string
	for _, s := range summaries {
		rows = append(rows, []string{
			s.ID,
			s.Repo,
			s.GeneratedAt.Format(contract.DateTimeFormat),
			strconv.Itoa(s.Files),
			strconv.Itoa(s.Languages),
		})
	}
	if err := renderTable(w, []string{"ID", "Repository", "Generated", "Files", "Languages"}, rows, tw.AlignLeft); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Showing %d reports\n", len(summaries))
	return err
}

// WriteRepositories outputs repository listings.
func WriteRepositories(repos []schema.RepositoryListing, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, map[string]any{"repos": repos, "count": len(repos)})
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeRepositoriesCSV(w, repos)
		}, "Wrote CSV")
	case schema.ParquetOut:
		return errors.New("parquet output is not supported for repository listings")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeRepositoriesTable(w, repos)
		}, "Wrote table")
	}
}

func writeRepositoriesCSV(w io.Writer, repos []schema.RepositoryListing) error {
	header := []string{"full_name", "private", "default_branch", "language", "stars", "forks", "updated_at", "url"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, r := range repos {
			rec := []string{
				r.FullName,
				strconv.FormatBool(r.Private),
				r.DefaultBranch,
				r.Language,
				strconv.Itoa(r.Stars),
				strconv.Itoa(r.Forks),
				r.UpdatedAt.Format(contract.DateTimeFormat),
				r.URL,
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

func writeRepositoriesTable(w io.Writer, repos []schema.RepositoryListing) error {
	width := getMaxTextWidth(70)
	var rows [][]string
	for _, r := range repos {
		visibility := "public"
		if r.Private {
			visibility = "private"
		}
		rows = append(rows, []string{
			r.FullName,
			visibility,
			r.Language,
			strconv.Itoa(r.Stars),
			r.UpdatedAt.Format("2006-01-02"),
			contract.TruncateText(r.Description, width),
		})
	}
	if err := renderTable(w, []string{"Repository", "Visibility", "Language", "Stars", "Updated", "Description"}, rows, tw.AlignLeft); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Showing %d repositories\n", len(repos))
	return err
}

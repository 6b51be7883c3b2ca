package iocache

import (
	"context"
	"errors"
	"fmt"

	"github.com/huangsam/repolens/internal/contract"
	"github.com/huangsam/repolens/internal/parquet"
	"github.com/huangsam/repolens/schema"
)

// ExecuteReportExport exports every stored report to Parquet files.
func ExecuteReportExport(ctx context.Context, store contract.ReportStore, outputFile string) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get store status: %w", err)
	}
	if status.TotalReports == 0 {
		return errors.New("no reports found to export")
	}

	fmt.Printf("Exporting data from %s backend...\n", status.Backend)
	fmt.Printf("Total reports: %d\n", status.TotalReports)

	summaries, err := store.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list reports: %w", err)
	}
	reports := make([]*schema.AnalysisReport, 0, len(summaries))
	for _, s := range summaries {
		report, err := store.Get(ctx, s.ID)
		if err != nil {
			return fmt.Errorf("failed to load report %s: %w", s.ID, err)
		}
		reports = append(reports, report)
	}

	reportRows, languageRows := parquet.ConvertReports(reports)

	reportsFile := outputFile + ".reports.parquet"
	if err := parquet.WriteReportsParquet(reportRows, reportsFile); err != nil {
		return fmt.Errorf("failed to write reports: %w", err)
	}
	fmt.Printf("Exported %d reports to: %s\n", len(reportRows), reportsFile)

	languagesFile := outputFile + ".languages.parquet"
	if err := parquet.WriteLanguagesParquet(languageRows, languagesFile); err != nil {
		return fmt.Errorf("failed to write languages: %w", err)
	}
	fmt.Printf("Exported %d language rows to: %s\n", len(languageRows), languagesFile)

	fmt.Println("\nExport complete! The Parquet files can be used with:")
	fmt.Println("  - Apache Spark")
	fmt.Println("  - Apache Arrow")
	fmt.Println("  - Pandas (via pyarrow)")
	fmt.Println("  - DuckDB")
	fmt.Println("  - Any other Parquet-compatible tool")
	return nil
}

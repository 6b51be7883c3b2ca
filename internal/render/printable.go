package render

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
	"github.com/huangsam/repolens/schema"
)

const (
	pageMargin  = 15.0
	lineHeight  = 6.0
	titleSize   = 20.0
	headingSize = 14.0
	bodySize    = 11.0
	fontFamily  = "Helvetica"
)

// RenderPrintable renders the report as an A4 PDF. Document dates come
// from the report and compression is off, so the same record always yields
// the same bytes.
func RenderPrintable(report *schema.AnalysisReport) ([]byte, error) {
	v := buildView(report)

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin)
	pdf.SetCreationDate(report.GeneratedAt.UTC())
	pdf.SetModificationDate(report.GeneratedAt.UTC())
	pdf.SetCatalogSort(true)
	pdf.SetCompression(false)
	pdf.SetTitle(v.Repo+" - Codebase Analysis Report", true)
	pdf.SetCreator(v.Tool, true)
	pdf.SetProducer(schema.ToolName, true)

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	w := &pdfWriter{pdf: pdf, tr: tr}
	pdf.AddPage()

	pdf.SetFont(fontFamily, "B", titleSize)
	pdf.CellFormat(0, 12, "Codebase Analysis Report", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont(fontFamily, "", bodySize)
	w.line("Repository: " + v.Repo)
	w.line("Branch: " + v.Branch)
	w.line("Generated: " + v.Generated)

	w.heading("Summary")
	for _, c := range v.Cards {
		w.line(fmt.Sprintf("%s: %s", c.Title, c.Value))
	}
	w.line("Test Files: " + v.CoverageText)

	if len(v.TopDirs) > 0 {
		w.heading("Top Directories")
		for _, d := range v.TopDirs {
			w.line(fmt.Sprintf("- %s: %d files", d.Name, d.Count))
		}
	}

	if len(v.Languages) > 0 {
		w.heading("Language Breakdown")
		for _, lang := range v.Languages {
			w.line(fmt.Sprintf("- %s: %d files (%s)", lang.Name, lang.Files, lang.PercentText))
		}
	}

	if len(v.Dependencies) > 0 {
		w.heading("Dependencies")
		for _, section := range v.Dependencies {
			w.line(fmt.Sprintf("- %s: %d (%s)", section.Title, section.Count, section.PercentText))
		}
	}

	if len(v.Issues) > 0 {
		w.heading("Issues")
		for _, issue := range v.Issues {
			w.line("- " + issue)
		}
	}

	if len(v.Recommendations) > 0 {
		w.heading("Recommendations")
		for _, rec := range v.Recommendations {
			w.line("- " + rec)
		}
	}

	pdf.Ln(8)
	pdf.SetFont(fontFamily, "I", 9)
	w.line("Report ID: " + v.ID)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("writing pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// pdfWriter wraps the few layout primitives the document uses.
type pdfWriter struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
}

func (w *pdfWriter) heading(text string) {
	w.pdf.Ln(4)
	w.pdf.SetFont(fontFamily, "B", headingSize)
	w.pdf.CellFormat(0, 9, w.tr(text), "", 1, "L", false, 0, "")
	w.pdf.SetFont(fontFamily, "", bodySize)
}

func (w *pdfWriter) line(text string) {
	w.pdf.MultiCell(0, lineHeight, w.tr(text), "", "L", false)
}

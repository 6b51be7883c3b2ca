package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"regexp"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/huangsam/repolens/schema"
)

//go:embed templates/*.html
var templateFS embed.FS

var reportTemplate = template.Must(template.ParseFS(templateFS, "templates/report.html"))

var nonIdentChars = regexp.MustCompile(`[^A-Za-z0-9_]`)

type styledPage struct {
	view
	Chart template.HTML
}

// RenderStyled renders the report as a self-contained HTML document.
func RenderStyled(report *schema.AnalysisReport) ([]byte, error) {
	v := buildView(report)
	chart, err := languageChart(v)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, styledPage{view: v, Chart: chart}); err != nil {
		return nil, fmt.Errorf("executing report template: %w", err)
	}
	return buf.Bytes(), nil
}

// chartID is a stable JavaScript-safe identifier for a report's chart.
func chartID(reportID string) string {
	return "languages_" + nonIdentChars.ReplaceAllString(reportID, "_")
}

// languageChart draws the language shares as a pie. The chart id is fixed
// per report so the output never changes between renders.
func languageChart(v view) (template.HTML, error) {
	if len(v.Languages) == 0 {
		return "", nil
	}
	pie := charts.NewPie()
	pie.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			ChartID: chartID(v.ID),
			Width:   "720px",
			Height:  "420px",
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "item"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "bottom"}),
	)

	data := make([]opts.PieData, 0, len(v.Languages))
	for _, lang := range v.Languages {
		data = append(data, opts.PieData{Name: lang.Name, Value: lang.Files})
	}
	pie.AddSeries("Files", data).
		SetSeriesOptions(
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Formatter: "{b}: {c}"}),
			charts.WithPieChartOpts(opts.PieChart{Radius: []string{"35%", "65%"}}),
		)

	var buf bytes.Buffer
	if err := pie.Render(&buf); err != nil {
		return "", fmt.Errorf("rendering language chart: %w", err)
	}
	return template.HTML(extractChartContent(buf.String())), nil
}

// extractChartContent keeps the chart container and its script, dropping
// the standalone page around them.
func extractChartContent(page string) string {
	start := strings.Index(page, `<div class="container">`)
	end := strings.Index(page, `</body>`)
	if start == -1 || end == -1 || end < start {
		return page
	}
	content := page[start:end]
	content = strings.ReplaceAll(content, `class="container"`, `class="chart-box"`)
	for {
		i := strings.Index(content, "<style>")
		if i == -1 {
			break
		}
		j := strings.Index(content[i:], "</style>")
		if j == -1 {
			break
		}
		content = content[:i] + content[i+j+len("</style>"):]
	}
	return strings.TrimSpace(content)
}

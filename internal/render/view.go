package render

import (
	"fmt"
	"maps"
	"slices"

	"github.com/dustin/go-humanize"
	"github.com/huangsam/repolens/internal/contract"
	"github.com/huangsam/repolens/schema"
)

// maxLanguages caps the language rows shown by every renderer.
const maxLanguages = 10

// generatedLayout is how the generation time appears in documents.
const generatedLayout = "2006-01-02 15:04:05 UTC"

// ecosystemTitles are the headings of the dependency sections.
var ecosystemTitles = map[schema.Ecosystem]string{
	schema.NPM:    "NPM Packages",
	schema.Pip:    "Python Packages",
	schema.Maven:  "Maven Dependencies",
	schema.Golang: "Go Modules",
	schema.Ruby:   "Ruby Gems",
}

type card struct {
	Title string
	Value string
}

type languageRow struct {
	Name        string
	Files       int
	Size        string
	Percent     float64
	PercentText string
}

type dependencyItem struct {
	Name    string
	Version string
	Dev     bool
}

type dependencySection struct {
	Title       string
	Manifest    string
	Count       int
	PercentText string
	Items       []dependencyItem
}

type commitRow struct {
	SHA     string
	Message string
	Author  string
	Date    string
}

// view is the presentation model shared by the styled and printable
// renderers. Every number either of them shows is computed here exactly once.
type view struct {
	ID              string
	Repo            string
	Description     string
	URL             string
	Branch          string
	Generated       string
	Tool            string
	TotalFiles      int
	TotalSize       string
	CoverageText    string
	Cards           []card
	TopDirs         []schema.DirCount
	Languages       []languageRow
	Dependencies    []dependencySection
	Issues          []string
	Recommendations []string
	Commits         []commitRow
}

func buildView(report *schema.AnalysisReport) view {
	v := view{
		ID:              report.ID,
		Repo:            report.Repo.FullName,
		Description:     report.Repo.Description,
		URL:             report.Repo.URL,
		Branch:          report.Repo.DefaultBranch,
		Generated:       report.GeneratedAt.UTC().Format(generatedLayout),
		Tool:            report.Provenance.Tool,
		TotalFiles:      report.Files.Total,
		TotalSize:       humanize.Bytes(uint64(max(report.Files.TotalBytes, 0))),
		CoverageText:    schema.FormatPercent(report.Quality.Metrics.TestCoveragePercent),
		TopDirs:         report.Files.TopDirs,
		Issues:          report.Quality.Issues,
		Recommendations: report.Quality.Recommendations,
	}

	v.Cards = []card{
		{Title: "Total Files", Value: fmt.Sprint(report.Files.Total)},
		{Title: "Languages", Value: fmt.Sprint(len(report.Files.Languages))},
		{Title: "Dependencies", Value: fmt.Sprint(report.Dependencies.Total())},
		{Title: "Open Issues", Value: fmt.Sprint(report.Activity.OpenIssues)},
		{Title: fmt.Sprintf("Commits (%dd)", report.Activity.WindowDays), Value: fmt.Sprint(report.Activity.CommitsInWindow)},
		{Title: fmt.Sprintf("Contributors (%dd)", report.Activity.WindowDays), Value: fmt.Sprint(report.Activity.DistinctAuthors)},
	}

	total := report.Files.Languages.TotalFiles()
	for i, lang := range report.Files.Languages.Ranked() {
		if i >= maxLanguages {
			break
		}
		pct := schema.Percent(lang.Files, total)
		v.Languages = append(v.Languages, languageRow{
			Name:        lang.Name,
			Files:       lang.Files,
			Size:        humanize.Bytes(uint64(max(lang.Bytes, 0))),
			Percent:     pct,
			PercentText: schema.FormatPercent(pct),
		})
	}

	v.Dependencies = buildDependencySections(report.Dependencies)

	for _, c := range report.Activity.RecentCommits {
		v.Commits = append(v.Commits, commitRow{
			SHA:     schema.ShortSHA(c.SHA),
			Message: contract.TruncateText(contract.FirstLine(c.Message), 80),
			Author:  c.Author,
			Date:    c.Date.UTC().Format("2006-01-02"),
		})
	}
	return v
}

// buildDependencySections lists the ecosystems that declare anything, in
// the fixed ecosystem order, with each one's share of all dependencies.
func buildDependencySections(deps schema.DependencySet) []dependencySection {
	total := deps.Total()
	var sections []dependencySection
	for _, eco := range schema.AllEcosystems {
		d, ok := deps[eco]
		if !ok {
			continue
		}
		count := len(d.Dependencies) + len(d.DevDependencies)
		if count == 0 {
			continue
		}
		section := dependencySection{
			Title:       ecosystemTitles[eco],
			Manifest:    d.Manifest,
			Count:       count,
			PercentText: schema.FormatPercent(schema.Percent(count, total)),
		}
		for _, name := range slices.Sorted(maps.Keys(d.Dependencies)) {
			section.Items = append(section.Items, dependencyItem{Name: name, Version: d.Dependencies[name]})
		}
		for _, name := range slices.Sorted(maps.Keys(d.DevDependencies)) {
			section.Items = append(section.Items, dependencyItem{Name: name, Version: d.DevDependencies[name], Dev: true})
		}
		sections = append(sections, section)
	}
	return sections
}

package schema

import (
	"maps"
	"slices"
	"sort"
	"time"
)

// LanguageStat is the per-language file count and byte total.
type LanguageStat struct {
	Files int   `json:"files"`
	Bytes int64 `json:"bytes"`
}

// LanguageBreakdown maps a language label to its stats.
type LanguageBreakdown map[string]LanguageStat

// TotalFiles sums the file counts of every label.
func (lb LanguageBreakdown) TotalFiles() int {
	total := 0
	for _, s := range lb {
		total += s.Files
	}
	return total
}

// NamedLanguageStat is a LanguageStat with its label.
type NamedLanguageStat struct {
	Name string
	LanguageStat
}

// Ranked returns the breakdown ordered by file count descending, then name.
func (lb LanguageBreakdown) Ranked() []NamedLanguageStat {
	out := make([]NamedLanguageStat, 0, len(lb))
	for name, s := range lb {
		out = append(out, NamedLanguageStat{Name: name, LanguageStat: s})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Files != out[j].Files {
			return out[i].Files > out[j].Files
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// DirCount is one bucket of the top-directory histogram.
type DirCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// FileSummary groups the structure statistics of a report.
type FileSummary struct {
	Total      int               `json:"total"`
	TotalBytes int64             `json:"totalBytes"`
	Languages  LanguageBreakdown `json:"languages"`
	TopDirs    []DirCount        `json:"topDirs"`
}

// EcosystemDeps is the normalized dependency mapping of one ecosystem.
type EcosystemDeps struct {
	Manifest        string            `json:"manifest"`
	Present         bool              `json:"present"`
	Name            string            `json:"name,omitempty"`
	Version         string            `json:"version,omitempty"`
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
}

// Count returns the number of production dependencies.
func (d EcosystemDeps) Count() int {
	return len(d.Dependencies)
}

// DependencySet maps each ecosystem to its dependencies.
type DependencySet map[Ecosystem]EcosystemDeps

// Total counts production and development dependencies across all ecosystems.
func (ds DependencySet) Total() int {
	total := 0
	for _, d := range ds {
		total += len(d.Dependencies) + len(d.DevDependencies)
	}
	return total
}

// CommitSample is a condensed commit shown in reports.
type CommitSample struct {
	SHA     string    `json:"sha"`
	Message string    `json:"message"`
	Author  string    `json:"author"`
	Date    time.Time `json:"date"`
}

// ActivitySummary describes recent commit activity.
type ActivitySummary struct {
	WindowDays      int            `json:"windowDays"`
	OpenIssues      int            `json:"openIssues"`
	CommitsInWindow int            `json:"commitsInWindow"`
	DistinctAuthors int            `json:"distinctAuthors"`
	LastCommitDate  *time.Time     `json:"lastCommitDate"`
	RecentCommits   []CommitSample `json:"recentCommits"`
}

// QualityMetrics are the raw numbers behind the quality findings.
type QualityMetrics struct {
	TotalFiles          int     `json:"totalFiles"`
	TestFiles           int     `json:"testFiles"`
	TestCoveragePercent float64 `json:"testCoveragePercent"`
	HasReadme           bool    `json:"hasReadme"`
	HasContributing     bool    `json:"hasContributing"`
	HasCI               bool    `json:"hasCI"`
	VendoredFiles       int     `json:"vendoredFiles"`
	DocumentationFiles  int     `json:"documentationFiles"`
}

// QualityFindings is the ordered output of the quality rules.
type QualityFindings struct {
	Issues          []string       `json:"issues"`
	Recommendations []string       `json:"recommendations"`
	Metrics         QualityMetrics `json:"metrics"`
}

// Provenance records what triggered a report.
type Provenance struct {
	Mode       string `json:"mode"`
	AnalyzedBy string `json:"analyzedBy,omitempty"`
	Tool       string `json:"tool"`
}

// AnalysisReport is the canonical, immutable analysis record.
type AnalysisReport struct {
	ID           string             `json:"id"`
	GeneratedAt  time.Time          `json:"generatedAt"`
	Repo         RepositoryMetadata `json:"repo"`
	Files        FileSummary        `json:"files"`
	Dependencies DependencySet      `json:"dependencies"`
	Activity     ActivitySummary    `json:"activity"`
	Quality      QualityFindings    `json:"quality"`
	Provenance   Provenance         `json:"provenance"`
}

// Summary returns the list view of the report.
func (r *AnalysisReport) Summary() ReportSummary {
	return ReportSummary{
		ID:          r.ID,
		Repo:        r.Repo.FullName,
		GeneratedAt: r.GeneratedAt,
		Files:       r.Files.Total,
		Languages:   len(r.Files.Languages),
	}
}

// Clone returns a deep copy of the report.
func (r *AnalysisReport) Clone() *AnalysisReport {
	clone := *r
	if r.Files.Languages != nil {
		clone.Files.Languages = make(LanguageBreakdown, len(r.Files.Languages))
		maps.Copy(clone.Files.Languages, r.Files.Languages)
	}
	clone.Files.TopDirs = slices.Clone(r.Files.TopDirs)
	if r.Dependencies != nil {
		clone.Dependencies = make(DependencySet, len(r.Dependencies))
		for eco, deps := range r.Dependencies {
			deps.Dependencies = maps.Clone(deps.Dependencies)
			deps.DevDependencies = maps.Clone(deps.DevDependencies)
			clone.Dependencies[eco] = deps
		}
	}
	if r.Activity.LastCommitDate != nil {
		t := *r.Activity.LastCommitDate
		clone.Activity.LastCommitDate = &t
	}
	clone.Activity.RecentCommits = slices.Clone(r.Activity.RecentCommits)
	clone.Quality.Issues = slices.Clone(r.Quality.Issues)
	clone.Quality.Recommendations = slices.Clone(r.Quality.Recommendations)
	return &clone
}

// ReportSummary is the list view of a stored report.
type ReportSummary struct {
	ID          string    `json:"id"`
	Repo        string    `json:"repo"`
	GeneratedAt time.Time `json:"generatedAt"`
	Files       int       `json:"files"`
	Languages   int       `json:"languages"`
}

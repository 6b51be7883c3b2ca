package core

import (
	"time"

	"github.com/google/uuid"
	"github.com/huangsam/repolens/internal/contract"
	"github.com/huangsam/repolens/schema"
)

// SynthesisInput carries every component of a report before it is frozen.
type SynthesisInput struct {
	Metadata     *schema.RepositoryMetadata
	Languages    schema.LanguageBreakdown
	TopDirs      []schema.DirCount
	Dependencies schema.DependencySet
	Activity     schema.ActivitySummary
	Quality      schema.QualityFindings
	Provenance   schema.Provenance
}

// Clock and id sources, replaced in tests.
var (
	now   = time.Now
	newID = func() string { return uuid.New().String() }
)

// Synthesize freezes the inputs into a new canonical report. Only missing
// metadata is fatal; every other component degrades to its empty form.
func Synthesize(in SynthesisInput) (*schema.AnalysisReport, error) {
	if in.Metadata == nil {
		return nil, contract.ErrMissingMetadata
	}

	languages := in.Languages
	if languages == nil {
		languages = schema.LanguageBreakdown{}
	}
	var totalBytes int64
	for _, stat := range languages {
		totalBytes += stat.Bytes
	}
	topDirs := in.TopDirs
	if topDirs == nil {
		topDirs = []schema.DirCount{}
	}
	deps := in.Dependencies
	if deps == nil {
		deps = schema.DependencySet{}
	}

	activity := in.Activity
	activity.OpenIssues = in.Metadata.OpenIssues
	if activity.RecentCommits == nil {
		activity.RecentCommits = []schema.CommitSample{}
	}
	quality := in.Quality
	if quality.Issues == nil {
		quality.Issues = []string{}
	}
	if quality.Recommendations == nil {
		quality.Recommendations = []string{}
	}

	draft := &schema.AnalysisReport{
		ID:          newID(),
		GeneratedAt: now().UTC().Truncate(time.Millisecond),
		Repo:        *in.Metadata,
		Files: schema.FileSummary{
			Total:      languages.TotalFiles(),
			TotalBytes: totalBytes,
			Languages:  languages,
			TopDirs:    topDirs,
		},
		Dependencies: deps,
		Activity:     activity,
		Quality:      quality,
		Provenance:   in.Provenance,
	}
	// Detach from caller-owned maps and slices.
	return draft.Clone(), nil
}

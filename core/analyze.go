package core

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/huangsam/repolens/core/activity"
	"github.com/huangsam/repolens/core/langs"
	"github.com/huangsam/repolens/core/manifest"
	"github.com/huangsam/repolens/core/quality"
	"github.com/huangsam/repolens/internal/contract"
	"github.com/huangsam/repolens/schema"
	"golang.org/x/sync/errgroup"
)

// Version is recorded in report provenance. The CLI overrides it at startup.
var Version = "dev"

// Analyze runs acquisition, normalization, synthesis and persistence for one
// repository. The whole operation is bounded by cfg.Timeout; a timeout or any
// fatal acquisition failure yields a *contract.PipelineError and no report.
func Analyze(ctx context.Context, cfg *contract.Config, client contract.SourceClient, store contract.ReportStore, target schema.RepoTarget) (*schema.AnalysisReport, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	report, err := analyze(ctx, cfg, client, store, target)
	if err != nil {
		DefaultMetrics.ObserveAnalysis(ResultFailure)
		return nil, err
	}
	DefaultMetrics.ObserveAnalysis(ResultSuccess)
	return report, nil
}

func analyze(ctx context.Context, cfg *contract.Config, client contract.SourceClient, store contract.ReportStore, target schema.RepoTarget) (*schema.AnalysisReport, error) {
	snapshot, err := Acquire(ctx, cfg, client, target)
	if err != nil {
		return nil, err
	}

	report, err := BuildReport(snapshot, cfg, provenance(ctx, client))
	if err != nil {
		return nil, &contract.PipelineError{Stage: contract.StageSynthesis, Repo: target.FullName(), Err: err}
	}

	if err := store.Put(ctx, report); err != nil {
		return nil, &contract.PipelineError{Stage: contract.StageStore, Repo: target.FullName(), Err: err}
	}
	return report, nil
}

// BuildReport normalizes a snapshot and synthesizes the canonical report.
func BuildReport(snapshot *schema.RepositorySnapshot, cfg *contract.Config, prov schema.Provenance) (*schema.AnalysisReport, error) {
	breakdown, topDirs := langs.Summarize(snapshot.Entries, cfg.TopDirs)
	deps := manifest.ParseAll(snapshot.Manifests)
	findings := quality.Evaluate(snapshot.Entries, deps)
	summary := activity.Summarize(snapshot.Commits, cfg.Window())

	return Synthesize(SynthesisInput{
		Metadata:     snapshot.Metadata,
		Languages:    breakdown,
		TopDirs:      topDirs,
		Dependencies: deps,
		Activity:     summary,
		Quality:      findings,
		Provenance:   prov,
	})
}

// Acquire fetches everything needed for a report. Metadata and tree failures
// are fatal. Manifests are fetched concurrently with at most cfg.Workers in
// flight, and the commit history is paginated alongside them; failures of
// either degrade to empty data.
func Acquire(ctx context.Context, cfg *contract.Config, client contract.SourceClient, target schema.RepoTarget) (*schema.RepositorySnapshot, error) {
	repo := target.FullName()

	meta, err := client.GetRepositoryMetadata(ctx, target.Owner, target.Name)
	if err != nil {
		return nil, &contract.PipelineError{Stage: contract.StageMetadata, Repo: repo, Err: err}
	}
	ref := target.Ref
	if ref == "" {
		ref = meta.DefaultBranch
	}
	since := time.Now().Add(-cfg.Window()).UTC()

	if !shouldSuppressHeader(ctx) {
		logAnalysisHeader(repo, ref, since)
	}

	entries, err := client.GetTree(ctx, target.Owner, target.Name, ref)
	if err != nil {
		return nil, &contract.PipelineError{Stage: contract.StageTree, Repo: repo, Err: err}
	}

	snapshot := &schema.RepositorySnapshot{
		Target:   schema.RepoTarget{Owner: target.Owner, Name: target.Name, Ref: ref},
		Metadata: meta,
		Entries:  entries,
		Since:    since,
	}

	var wg sync.WaitGroup
	wg.Go(func() {
		snapshot.Manifests = fetchManifests(ctx, cfg.Workers, client, snapshot.Target)
	})
	wg.Go(func() {
		snapshot.Commits = fetchCommits(ctx, client, snapshot.Target, since)
	})
	wg.Wait()

	// Degraded fetches hide cancellation, so the deadline is checked here.
	if err := ctx.Err(); err != nil {
		return nil, &contract.PipelineError{Stage: contract.StageAcquisition, Repo: repo, Err: err}
	}
	return snapshot, nil
}

// fetchManifests downloads the well-known manifests. One failure never
// cancels the others.
func fetchManifests(ctx context.Context, workers int, client contract.SourceClient, target schema.RepoTarget) map[schema.Ecosystem]schema.Manifest {
	var mu sync.Mutex
	manifests := make(map[schema.Ecosystem]schema.Manifest, len(schema.AllEcosystems))

	g := new(errgroup.Group)
	g.SetLimit(max(workers, 1))
	for _, kind := range schema.AllEcosystems {
		path := manifest.KnownManifests[kind]
		g.Go(func() error {
			m := schema.Manifest{Path: path}
			content, found, err := client.GetFileContent(ctx, target.Owner, target.Name, target.Ref, path)
			if err != nil {
				contract.LogWarn(fmt.Sprintf("Could not fetch %s", path), err)
				DefaultMetrics.ObserveManifestFailure()
			} else if found {
				m.Content = content
				m.Present = true
			}
			mu.Lock()
			manifests[kind] = m
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return manifests
}

// fetchCommits paginates the commit history of the analysis window.
func fetchCommits(ctx context.Context, client contract.SourceClient, target schema.RepoTarget, since time.Time) []schema.CommitRecord {
	fetch := func(ctx context.Context, page, pageSize int) ([]schema.CommitRecord, error) {
		return client.ListCommits(ctx, target.Owner, target.Name, target.Ref, since, page, pageSize)
	}
	commits, err := activity.Collect(ctx, fetch)
	if err != nil {
		contract.LogWarn("Error fetching commits", err)
		return nil
	}
	return commits
}

// provenance describes who and what produced a report.
func provenance(ctx context.Context, client contract.SourceClient) schema.Provenance {
	login, err := client.AuthenticatedLogin(ctx)
	if err != nil {
		login = ""
	}
	return schema.Provenance{
		Mode:       schema.GitHubAPIMode,
		AnalyzedBy: login,
		Tool:       fmt.Sprintf("%s %s", schema.ToolName, Version),
	}
}

// logAnalysisHeader prints a concise, 2-line header for an analysis.
func logAnalysisHeader(repo, ref string, since time.Time) {
	_, _ = fmt.Fprintf(os.Stderr, "🔎 Repo: %s (Ref: %s)\n", repo, ref)
	_, _ = fmt.Fprintf(os.Stderr, "📅 Window: %s → %s\n", since.Format(contract.DateTimeFormat), time.Now().UTC().Format(contract.DateTimeFormat))
}

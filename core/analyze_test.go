package core

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/huangsam/repolens/internal/contract"
	"github.com/huangsam/repolens/internal/iocache"
	"github.com/huangsam/repolens/schema"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var target = schema.RepoTarget{Owner: "acme", Name: "widgets"}

func quietContext() context.Context {
	return WithSuppressHeader(context.Background())
}

func TestAnalyzeScenario(t *testing.T) {
	client := newFakeClient("src/a.js", "src/b.py", "README.md")
	client.login = "octocat"
	store := iocache.NewMemoryReportStore()

	report, err := Analyze(quietContext(), testConfig(), client, store, target)
	require.NoError(t, err)

	assert.Equal(t, schema.LanguageBreakdown{
		"JavaScript": {Files: 1, Bytes: 100},
		"Python":     {Files: 1, Bytes: 100},
		"Markdown":   {Files: 1, Bytes: 100},
	}, report.Files.Languages)
	assert.Equal(t, 3, report.Files.Total)
	assert.Equal(t, int64(300), report.Files.TotalBytes)
	assert.True(t, report.Quality.Metrics.HasReadme)
	assert.NotContains(t, report.Quality.Issues, "Missing README.md file")
	assert.Contains(t, report.Quality.Issues, "Low test coverage detected")
	assert.Contains(t, report.Quality.Recommendations, "Set up CI/CD pipeline for automated testing")

	assert.Equal(t, 0, report.Activity.CommitsInWindow)
	assert.Nil(t, report.Activity.LastCommitDate)
	assert.Equal(t, 7, report.Activity.OpenIssues)
	assert.Equal(t, contract.DefaultWindowDays, report.Activity.WindowDays)

	require.Len(t, report.Dependencies, len(schema.AllEcosystems))
	for _, eco := range schema.AllEcosystems {
		assert.False(t, report.Dependencies[eco].Present, eco)
		assert.Empty(t, report.Dependencies[eco].Dependencies, eco)
	}

	assert.Equal(t, schema.Provenance{Mode: schema.GitHubAPIMode, AnalyzedBy: "octocat", Tool: "repolens " + Version}, report.Provenance)
	assert.Equal(t, []string{"main"}, client.treeRefs, "ref defaults to the default branch")

	stored, err := store.Get(context.Background(), report.ID)
	require.NoError(t, err)
	assert.Equal(t, report, stored)
}

func TestAnalyzeManifests(t *testing.T) {
	client := newFakeClient("package.json", "go.mod", "index.js")
	client.files["package.json"] = []byte(`{"name":"widgets","dependencies":{"left-pad":"^1.0.0"}}`)
	client.files["go.mod"] = []byte("module example.com/widgets\n\nrequire github.com/spf13/cobra v1.10.2\n")
	client.fileErrs = map[string]error{"requirements.txt": errors.New("rate limited")}

	failuresBefore := testutil.ToFloat64(DefaultMetrics.manifestFailures)
	report, err := Analyze(quietContext(), testConfig(), client, iocache.NewMemoryReportStore(), target)
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"left-pad": "^1.0.0"}, report.Dependencies[schema.NPM].Dependencies)
	assert.Equal(t, "v1.10.2", report.Dependencies[schema.Golang].Dependencies["github.com/spf13/cobra"])
	assert.False(t, report.Dependencies[schema.Pip].Present, "a failed fetch degrades to an empty mapping")
	assert.Empty(t, report.Dependencies[schema.Pip].Dependencies)
	assert.Equal(t, failuresBefore+1, testutil.ToFloat64(DefaultMetrics.manifestFailures))
}

func TestAnalyzeMalformedManifest(t *testing.T) {
	client := newFakeClient("package.json")
	client.files["package.json"] = []byte(`{"dependencies": {`)

	report, err := Analyze(quietContext(), testConfig(), client, iocache.NewMemoryReportStore(), target)
	require.NoError(t, err)
	assert.True(t, report.Dependencies[schema.NPM].Present)
	assert.Empty(t, report.Dependencies[schema.NPM].Dependencies)
}

func TestAnalyzeWorkerLimit(t *testing.T) {
	client := newFakeClient("main.go")
	client.fileDelay = 20 * time.Millisecond
	cfg := testConfig()
	cfg.Workers = 2

	_, err := Analyze(quietContext(), cfg, client, iocache.NewMemoryReportStore(), target)
	require.NoError(t, err)
	assert.LessOrEqual(t, client.maxFlight.Load(), int32(2))
}

func TestAnalyzeCommitActivity(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	client := newFakeClient("main.go")
	for i := range 350 {
		client.commits = append(client.commits, schema.CommitRecord{
			SHA:         fmt.Sprintf("%040d", i),
			Message:     fmt.Sprintf("commit %d\n\nbody", i),
			AuthorLogin: fmt.Sprintf("dev%d", i%4),
			Date:        now.Add(-time.Duration(i) * time.Minute),
		})
	}

	report, err := Analyze(quietContext(), testConfig(), client, iocache.NewMemoryReportStore(), target)
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2, 3}, client.pages, "pagination stops at the ceiling")
	assert.Equal(t, 300, report.Activity.CommitsInWindow)
	assert.Equal(t, 4, report.Activity.DistinctAuthors)
	require.NotNil(t, report.Activity.LastCommitDate)
	assert.True(t, report.Activity.LastCommitDate.Equal(now))
	require.Len(t, report.Activity.RecentCommits, 10)
	assert.Equal(t, "commit 0", report.Activity.RecentCommits[0].Message)
	assert.Len(t, report.Activity.RecentCommits[0].SHA, 7)
}

func TestAnalyzeCommitFailureDegrades(t *testing.T) {
	client := newFakeClient("main.go")
	client.pageErr = errors.New("502 bad gateway")

	report, err := Analyze(quietContext(), testConfig(), client, iocache.NewMemoryReportStore(), target)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Activity.CommitsInWindow)
	assert.Empty(t, report.Activity.RecentCommits)
}

func TestAnalyzeFatalErrors(t *testing.T) {
	t.Run("metadata", func(t *testing.T) {
		client := newFakeClient()
		client.metaErr = contract.ErrRepositoryNotFound
		store := iocache.NewMemoryReportStore()

		_, err := Analyze(quietContext(), testConfig(), client, store, target)
		var pe *contract.PipelineError
		require.ErrorAs(t, err, &pe)
		assert.Equal(t, contract.StageMetadata, pe.Stage)
		assert.ErrorIs(t, err, contract.ErrRepositoryNotFound)

		summaries, _ := store.List(context.Background())
		assert.Empty(t, summaries, "no report is persisted")
	})

	t.Run("tree", func(t *testing.T) {
		client := newFakeClient()
		client.treeErr = contract.ErrUnauthorized

		_, err := Analyze(quietContext(), testConfig(), client, iocache.NewMemoryReportStore(), target)
		var pe *contract.PipelineError
		require.ErrorAs(t, err, &pe)
		assert.Equal(t, contract.StageTree, pe.Stage)
		assert.ErrorIs(t, err, contract.ErrUnauthorized)
	})

	t.Run("store", func(t *testing.T) {
		store := &iocache.MockReportStore{}
		store.On("Put", mock.Anything, mock.Anything).Return(errors.New("disk full"))

		_, err := Analyze(quietContext(), testConfig(), newFakeClient("a.go"), store, target)
		var pe *contract.PipelineError
		require.ErrorAs(t, err, &pe)
		assert.Equal(t, contract.StageStore, pe.Stage)
		store.AssertExpectations(t)
	})
}

func TestAnalyzeTimeout(t *testing.T) {
	client := newFakeClient("main.go")
	client.blockFiles = true
	cfg := testConfig()
	cfg.Timeout = 50 * time.Millisecond
	store := iocache.NewMemoryReportStore()

	failuresBefore := testutil.ToFloat64(DefaultMetrics.analyses.WithLabelValues(ResultFailure))
	_, err := Analyze(quietContext(), cfg, client, store, target)

	var pe *contract.PipelineError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, contract.StageAcquisition, pe.Stage)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, failuresBefore+1, testutil.ToFloat64(DefaultMetrics.analyses.WithLabelValues(ResultFailure)))

	summaries, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, summaries)
}

func TestAnalyzeExplicitRef(t *testing.T) {
	client := newFakeClient("main.go")
	withRef := target
	withRef.Ref = "v1.2.3"

	report, err := Analyze(quietContext(), testConfig(), client, iocache.NewMemoryReportStore(), withRef)
	require.NoError(t, err)
	assert.Equal(t, []string{"v1.2.3"}, client.treeRefs)
	assert.Equal(t, "acme/widgets", report.Repo.FullName)
}

func TestAnalyzeAnonymousProvenance(t *testing.T) {
	client := newFakeClient("main.go")
	client.loginErr = contract.ErrUnauthorized

	report, err := Analyze(quietContext(), testConfig(), client, iocache.NewMemoryReportStore(), target)
	require.NoError(t, err)
	assert.Empty(t, report.Provenance.AnalyzedBy)
}

func TestLanguageTotalsMatchListing(t *testing.T) {
	client := newFakeClient("a.go", "b.go", "c.ts", "d/e/f.rs", "Makefile", ".gitignore", "docs/x.MD")
	client.tree = append(client.tree, schema.TreeEntry{Path: "d", Kind: schema.DirEntry})

	report, err := Analyze(quietContext(), testConfig(), client, iocache.NewMemoryReportStore(), target)
	require.NoError(t, err)
	assert.Equal(t, 7, report.Files.Languages.TotalFiles())
	assert.Equal(t, report.Files.Total, report.Files.Languages.TotalFiles())
}

func TestShouldSuppressHeader(t *testing.T) {
	assert.False(t, shouldSuppressHeader(context.Background()))
	assert.True(t, shouldSuppressHeader(WithSuppressHeader(context.Background())))
}

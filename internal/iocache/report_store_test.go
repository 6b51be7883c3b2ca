package iocache

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/huangsam/repolens/internal/contract"
	"github.com/huangsam/repolens/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestReport(id, repo string, generatedAt time.Time) *schema.AnalysisReport {
	last := generatedAt.Add(-time.Hour)
	return &schema.AnalysisReport{
		ID:          id,
		GeneratedAt: generatedAt,
		Repo:        schema.RepositoryMetadata{FullName: repo, DefaultBranch: "main", OpenIssues: 2},
		Files: schema.FileSummary{
			Total:      2,
			TotalBytes: 300,
			Languages:  schema.LanguageBreakdown{"Go": {Files: 1, Bytes: 200}, "Markdown": {Files: 1, Bytes: 100}},
			TopDirs:    []schema.DirCount{{Name: "cmd", Count: 1}},
		},
		Dependencies: schema.DependencySet{
			schema.NPM:    {Manifest: "package.json", Dependencies: map[string]string{}, DevDependencies: map[string]string{}},
			schema.Golang: {Manifest: "go.mod", Present: true, Dependencies: map[string]string{"github.com/spf13/cobra": "v1.10.2"}},
		},
		Activity: schema.ActivitySummary{
			WindowDays:      90,
			OpenIssues:      2,
			CommitsInWindow: 1,
			DistinctAuthors: 1,
			LastCommitDate:  &last,
			RecentCommits:   []schema.CommitSample{{SHA: "abc1234", Message: "init", Author: "octocat", Date: last}},
		},
		Quality: schema.QualityFindings{
			Issues:          []string{"Low test coverage detected"},
			Recommendations: []string{"Add more unit and integration tests"},
		},
		Provenance: schema.Provenance{Mode: schema.GitHubAPIMode, Tool: "repolens dev"},
	}
}

// reportStoreContract runs the behavior every ReportStore backend must share.
func reportStoreContract(t *testing.T, store contract.ReportStore) {
	ctx := context.Background()
	base := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	t.Run("get unknown id", func(t *testing.T) {
		_, err := store.Get(ctx, "missing")
		assert.ErrorIs(t, err, contract.ErrReportNotFound)
	})

	t.Run("round trip", func(t *testing.T) {
		report := newTestReport("r-1", "acme/widgets", base)
		require.NoError(t, store.Put(ctx, report))

		got, err := store.Get(ctx, "r-1")
		require.NoError(t, err)
		assert.Equal(t, report, got)
	})

	t.Run("put is insert only", func(t *testing.T) {
		err := store.Put(ctx, newTestReport("r-1", "acme/other", base))
		assert.ErrorIs(t, err, contract.ErrReportExists)

		got, err := store.Get(ctx, "r-1")
		require.NoError(t, err)
		assert.Equal(t, "acme/widgets", got.Repo.FullName)
	})

	t.Run("get returns a detached copy", func(t *testing.T) {
		got, err := store.Get(ctx, "r-1")
		require.NoError(t, err)
		got.Files.Languages["Go"] = schema.LanguageStat{Files: 99}
		got.Quality.Issues[0] = "tampered"

		again, err := store.Get(ctx, "r-1")
		require.NoError(t, err)
		assert.Equal(t, 1, again.Files.Languages["Go"].Files)
		assert.Equal(t, "Low test coverage detected", again.Quality.Issues[0])
	})

	t.Run("list newest first", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, newTestReport("r-3", "acme/newest", base.Add(2*time.Hour))))
		require.NoError(t, store.Put(ctx, newTestReport("r-0", "acme/tie", base)))
		require.NoError(t, store.Put(ctx, newTestReport("r-2", "acme/middle", base.Add(500*time.Millisecond))))

		summaries, err := store.List(ctx)
		require.NoError(t, err)
		ids := make([]string, 0, len(summaries))
		for _, s := range summaries {
			ids = append(ids, s.ID)
		}
		assert.Equal(t, []string{"r-3", "r-2", "r-0", "r-1"}, ids)
		assert.Equal(t, schema.ReportSummary{
			ID: "r-3", Repo: "acme/newest", GeneratedAt: base.Add(2 * time.Hour), Files: 2, Languages: 2,
		}, summaries[0])
	})

	t.Run("status", func(t *testing.T) {
		status, err := store.GetStatus()
		require.NoError(t, err)
		assert.True(t, status.Connected)
		assert.Equal(t, 4, status.TotalReports)
		assert.True(t, status.LastReportTime.Equal(base.Add(2*time.Hour)))
		assert.True(t, status.OldestReportTime.Equal(base))
	})
}

func TestMemoryReportStore(t *testing.T) {
	reportStoreContract(t, NewMemoryReportStore())
}

func TestSQLiteReportStore(t *testing.T) {
	store, err := NewReportStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()
	reportStoreContract(t, store)
}

func TestSQLiteReportStore_File(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "reports.db")
	ctx := context.Background()

	store, err := NewReportStore(schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	require.NoError(t, store.Put(ctx, newTestReport("persisted", "acme/widgets", time.Now().UTC().Truncate(time.Millisecond))))
	require.NoError(t, store.Close())

	reopened, err := NewReportStore(schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()
	got, err := reopened.Get(ctx, "persisted")
	require.NoError(t, err)
	assert.Equal(t, "acme/widgets", got.Repo.FullName)

	status, err := reopened.GetStatus()
	require.NoError(t, err)
	assert.Greater(t, status.TableSizes[reportsTable], int64(0))
}

func TestNewReportStore_Unsupported(t *testing.T) {
	_, err := NewReportStore(schema.S3Backend, "")
	assert.Error(t, err)

	store, err := NewReportStore(schema.MemoryBackend, "")
	require.NoError(t, err)
	assert.IsType(t, &MemoryReportStore{}, store)
}

func TestMemoryReportStore_ConcurrentPut(t *testing.T) {
	store := NewMemoryReportStore()
	report := newTestReport("same", "acme/widgets", time.Now().UTC())

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for range 8 {
		wg.Go(func() { errs <- store.Put(context.Background(), report) })
	}
	wg.Wait()
	close(errs)

	successes := 0
	for err := range errs {
		if err == nil {
			successes++
			continue
		}
		assert.ErrorIs(t, err, contract.ErrReportExists)
	}
	assert.Equal(t, 1, successes)
}

func TestPutRejectsMissingID(t *testing.T) {
	assert.Error(t, NewMemoryReportStore().Put(context.Background(), &schema.AnalysisReport{}))
}

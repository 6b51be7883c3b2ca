package activity

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/huangsam/repolens/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

// makeCommits returns n commits, newest first, with distinct logins.
func makeCommits(n, offset int) []schema.CommitRecord {
	out := make([]schema.CommitRecord, n)
	for i := range n {
		idx := offset + i
		out[i] = schema.CommitRecord{
			SHA:         fmt.Sprintf("%040d", idx),
			Message:     fmt.Sprintf("commit %d\n\nbody", idx),
			AuthorLogin: fmt.Sprintf("user%d", idx%5),
			Date:        base.Add(-time.Duration(idx) * time.Hour),
		}
	}
	return out
}

// pagedFetcher serves pages of size 100 from total commits and counts calls.
func pagedFetcher(total int, calls *int) PageFetcher {
	all := makeCommits(total, 0)
	return func(_ context.Context, page, pageSize int) ([]schema.CommitRecord, error) {
		*calls++
		start := (page - 1) * pageSize
		if start >= len(all) {
			return nil, nil
		}
		end := min(start+pageSize, len(all))
		return all[start:end], nil
	}
}

func TestCollectStopsAtCeiling(t *testing.T) {
	calls := 0
	commits, err := Collect(context.Background(), pagedFetcher(450, &calls))
	require.NoError(t, err)
	assert.Equal(t, MaxPages, calls)
	assert.Len(t, commits, MaxPages*PageSize)
}

func TestCollectStopsOnShortPage(t *testing.T) {
	calls := 0
	commits, err := Collect(context.Background(), pagedFetcher(150, &calls))
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Len(t, commits, 150)
}

func TestCollectExactMultipleNeedsExtraPage(t *testing.T) {
	calls := 0
	commits, err := Collect(context.Background(), pagedFetcher(100, &calls))
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Len(t, commits, 100)
}

func TestCollectHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	calls := 0
	_, err := Collect(ctx, pagedFetcher(10, &calls))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, calls)
}

func TestSummarize(t *testing.T) {
	commits := []schema.CommitRecord{
		{SHA: "aaaaaaaaaa", Message: "Newest\nbody", AuthorLogin: "alice", AuthorEmail: "a@x.io", Date: base},
		{SHA: "bbbbbbbbbb", Message: "Second", AuthorEmail: "bob@x.io", AuthorName: "Bob", Date: base.Add(-time.Hour)},
		{SHA: "cccccccccc", Message: "Third", AuthorLogin: "alice", Date: base.Add(-2 * time.Hour)},
		{SHA: "dddddddddd", Message: "Anonymous", Date: base.Add(-3 * time.Hour)},
	}
	summary := Summarize(commits, DefaultWindow)

	assert.Equal(t, 90, summary.WindowDays)
	assert.Equal(t, 4, summary.CommitsInWindow)
	assert.Equal(t, 2, summary.DistinctAuthors)
	require.NotNil(t, summary.LastCommitDate)
	assert.Equal(t, base, *summary.LastCommitDate)

	require.Len(t, summary.RecentCommits, 4)
	assert.Equal(t, schema.CommitSample{SHA: "aaaaaaa", Message: "Newest", Author: "alice", Date: base}, summary.RecentCommits[0])
	assert.Equal(t, "Bob", summary.RecentCommits[1].Author)
	assert.Equal(t, UnknownAuthor, summary.RecentCommits[3].Author)
}

func TestSummarizeSamplesTenCommits(t *testing.T) {
	summary := Summarize(makeCommits(25, 0), DefaultWindow)
	assert.Len(t, summary.RecentCommits, SampleSize)
	assert.Equal(t, 25, summary.CommitsInWindow)
	assert.Equal(t, 5, summary.DistinctAuthors)
}

func TestSummarizeEmpty(t *testing.T) {
	summary := Summarize(nil, DefaultWindow)
	assert.Zero(t, summary.CommitsInWindow)
	assert.Nil(t, summary.LastCommitDate)
	assert.NotNil(t, summary.RecentCommits)
	assert.Empty(t, summary.RecentCommits)
}

func TestAggregate(t *testing.T) {
	calls := 0
	summary := Aggregate(context.Background(), pagedFetcher(30, &calls), DefaultWindow)
	assert.Equal(t, 30, summary.CommitsInWindow)
	assert.Equal(t, 1, calls)
}

func TestAggregateFailureYieldsZeroSummary(t *testing.T) {
	page := 0
	fetch := func(_ context.Context, _, pageSize int) ([]schema.CommitRecord, error) {
		page++
		if page == 2 {
			return nil, errors.New("rate limited")
		}
		return makeCommits(pageSize, 0), nil
	}
	summary := Aggregate(context.Background(), fetch, 30*24*time.Hour)
	assert.Equal(t, 30, summary.WindowDays)
	assert.Zero(t, summary.CommitsInWindow)
	assert.Zero(t, summary.DistinctAuthors)
	assert.Nil(t, summary.LastCommitDate)
	assert.Empty(t, summary.RecentCommits)
}

// Package activity aggregates recent commit history into an activity summary.
package activity

import (
	"context"
	"time"

	"github.com/huangsam/repolens/internal/contract"
	"github.com/huangsam/repolens/schema"
)

// Pagination bounds and the default lookback window.
const (
	PageSize      = 100
	MaxPages      = 3
	DefaultWindow = 90 * 24 * time.Hour
	SampleSize    = 10
)

// UnknownAuthor is shown for commits without any author information.
const UnknownAuthor = "Unknown"

// PageFetcher returns one page (1-based) of commits in reverse-chronological order.
type PageFetcher func(ctx context.Context, page, pageSize int) ([]schema.CommitRecord, error)

// Collect requests pages until a short page or the MaxPages ceiling.
func Collect(ctx context.Context, fetch PageFetcher) ([]schema.CommitRecord, error) {
	var commits []schema.CommitRecord
	for page := 1; page <= MaxPages; page++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		batch, err := fetch(ctx, page, PageSize)
		if err != nil {
			return nil, err
		}
		commits = append(commits, batch...)
		if len(batch) < PageSize {
			break
		}
	}
	return commits, nil
}

// Summarize condenses commits, newest first, into an activity summary.
func Summarize(commits []schema.CommitRecord, window time.Duration) schema.ActivitySummary {
	summary := emptySummary(window)
	summary.CommitsInWindow = len(commits)

	authors := make(map[string]struct{})
	for _, c := range commits {
		if id := identity(c); id != "" {
			authors[id] = struct{}{}
		}
	}
	summary.DistinctAuthors = len(authors)

	if len(commits) > 0 && !commits[0].Date.IsZero() {
		last := commits[0].Date.UTC()
		summary.LastCommitDate = &last
	}

	for _, c := range commits[:min(SampleSize, len(commits))] {
		summary.RecentCommits = append(summary.RecentCommits, schema.CommitSample{
			SHA:     schema.ShortSHA(c.SHA),
			Message: contract.FirstLine(c.Message),
			Author:  displayAuthor(c),
			Date:    c.Date.UTC(),
		})
	}
	return summary
}

// Aggregate collects and summarizes commits. Activity is best-effort: any
// fetch failure yields the zero summary instead of an error.
func Aggregate(ctx context.Context, fetch PageFetcher, window time.Duration) schema.ActivitySummary {
	commits, err := Collect(ctx, fetch)
	if err != nil {
		contract.LogWarn("Error fetching commits", err)
		return emptySummary(window)
	}
	return Summarize(commits, window)
}

func emptySummary(window time.Duration) schema.ActivitySummary {
	return schema.ActivitySummary{
		WindowDays:    int(window / (24 * time.Hour)),
		RecentCommits: []schema.CommitSample{},
	}
}

// identity prefers the platform login and falls back to the author email.
func identity(c schema.CommitRecord) string {
	if c.AuthorLogin != "" {
		return c.AuthorLogin
	}
	return c.AuthorEmail
}

func displayAuthor(c schema.CommitRecord) string {
	switch {
	case c.AuthorLogin != "":
		return c.AuthorLogin
	case c.AuthorName != "":
		return c.AuthorName
	default:
		return UnknownAuthor
	}
}

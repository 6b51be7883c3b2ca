// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/huangsam/repolens/schema"
)

// SourceClient defines the operations needed to acquire repository data from a hosting provider.
// This allows the pipeline to be tested without talking to a real API.
type SourceClient interface {
	// --- Repository / Tree ---

	// GetRepositoryMetadata returns the provider's description of a repository.
	GetRepositoryMetadata(ctx context.Context, owner, name string) (*schema.RepositoryMetadata, error)

	// GetTree returns the full recursive listing of a ref in one logical call.
	GetTree(ctx context.Context, owner, name, ref string) ([]schema.TreeEntry, error)

	// --- Content / History ---

	// GetFileContent returns the raw bytes of a file. A missing file reports
	// found=false with a nil error.
	GetFileContent(ctx context.Context, owner, name, ref, path string) (content []byte, found bool, err error)

	// ListCommits returns one page of commits since a timestamp, newest first.
	ListCommits(ctx context.Context, owner, name, ref string, since time.Time, page, pageSize int) ([]schema.CommitRecord, error)

	// --- Account ---

	// ListRepositories returns repositories visible to the authenticated user.
	ListRepositories(ctx context.Context) ([]schema.RepositoryListing, error)

	// AuthenticatedLogin returns the login behind the configured credentials.
	AuthenticatedLogin(ctx context.Context) (string, error)
}

// StoreManager defines the interface for managing persistence stores.
// This allows the persistence layer to be mocked for testing.
type StoreManager interface {
	GetReportStore() ReportStore
	GetArtifactCache() ArtifactCache
}

// ReportStore persists canonical analysis reports.
type ReportStore interface {
	// Put writes a new report. Existing ids are rejected with ErrReportExists.
	Put(ctx context.Context, report *schema.AnalysisReport) error

	// Get returns a detached copy of a report or ErrReportNotFound.
	Get(ctx context.Context, id string) (*schema.AnalysisReport, error)

	// List returns report summaries ordered by generation time, newest first.
	List(ctx context.Context) ([]schema.ReportSummary, error)

	// GetStatus returns status information about the store
	GetStatus() (schema.StoreStatus, error)

	// Close closes the underlying connection
	Close() error
}

// ArtifactCache stores derived artifacts under content-addressed keys.
type ArtifactCache interface {
	// Get returns cached bytes or ErrArtifactNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte) error
	GetStatus(ctx context.Context) (schema.ArtifactStatus, error)
	Close() error
}

// Assistant answers free-text questions about a report context.
type Assistant interface {
	Ask(ctx context.Context, prompt string) (string, error)
}

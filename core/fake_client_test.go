package core

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/huangsam/repolens/internal/contract"
	"github.com/huangsam/repolens/schema"
)

// fakeClient is an in-memory SourceClient.
type fakeClient struct {
	meta     *schema.RepositoryMetadata
	metaErr  error
	tree     []schema.TreeEntry
	treeErr  error
	files    map[string][]byte
	fileErrs map[string]error
	commits  []schema.CommitRecord
	pageErr  error
	login    string
	loginErr error

	// blockFiles makes GetFileContent wait for cancellation.
	blockFiles bool
	fileDelay  time.Duration

	mu        sync.Mutex
	treeRefs  []string
	pages     []int
	inFlight  atomic.Int32
	maxFlight atomic.Int32
}

var _ contract.SourceClient = &fakeClient{} // Compile-time check

func (f *fakeClient) GetRepositoryMetadata(_ context.Context, _, _ string) (*schema.RepositoryMetadata, error) {
	if f.metaErr != nil {
		return nil, f.metaErr
	}
	meta := *f.meta
	return &meta, nil
}

func (f *fakeClient) GetTree(_ context.Context, _, _, ref string) ([]schema.TreeEntry, error) {
	f.mu.Lock()
	f.treeRefs = append(f.treeRefs, ref)
	f.mu.Unlock()
	return f.tree, f.treeErr
}

func (f *fakeClient) GetFileContent(ctx context.Context, _, _, _, path string) ([]byte, bool, error) {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		current := f.maxFlight.Load()
		if n <= current || f.maxFlight.CompareAndSwap(current, n) {
			break
		}
	}

	if f.blockFiles {
		<-ctx.Done()
		return nil, false, ctx.Err()
	}
	if f.fileDelay > 0 {
		time.Sleep(f.fileDelay)
	}
	if err := f.fileErrs[path]; err != nil {
		return nil, false, err
	}
	content, ok := f.files[path]
	return content, ok, nil
}

func (f *fakeClient) ListCommits(_ context.Context, _, _, _ string, _ time.Time, page, pageSize int) ([]schema.CommitRecord, error) {
	f.mu.Lock()
	f.pages = append(f.pages, page)
	f.mu.Unlock()
	if f.pageErr != nil {
		return nil, f.pageErr
	}
	start := (page - 1) * pageSize
	if start >= len(f.commits) {
		return nil, nil
	}
	end := min(start+pageSize, len(f.commits))
	return f.commits[start:end], nil
}

func (f *fakeClient) ListRepositories(context.Context) ([]schema.RepositoryListing, error) {
	return nil, nil
}

func (f *fakeClient) AuthenticatedLogin(context.Context) (string, error) {
	return f.login, f.loginErr
}

func newFakeClient(paths ...string) *fakeClient {
	entries := make([]schema.TreeEntry, 0, len(paths))
	for _, p := range paths {
		entries = append(entries, schema.TreeEntry{Path: p, Kind: schema.FileEntry, SizeBytes: 100})
	}
	return &fakeClient{
		meta: &schema.RepositoryMetadata{
			Owner:         "acme",
			Name:          "widgets",
			FullName:      "acme/widgets",
			DefaultBranch: "main",
			OpenIssues:    7,
		},
		tree:  entries,
		files: map[string][]byte{},
	}
}

func testConfig() *contract.Config {
	return &contract.Config{
		Workers:    contract.DefaultWorkers,
		Timeout:    5 * time.Second,
		TopDirs:    contract.DefaultTopDirs,
		WindowDays: contract.DefaultWindowDays,
	}
}

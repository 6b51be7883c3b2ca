// Package ghclient acquires repository data from the GitHub REST API.
package ghclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/go-github/v62/github"
	"github.com/huangsam/repolens/internal/contract"
	"github.com/huangsam/repolens/schema"
)

const (
	listPageSize = 100
	maxListPages = 5
)

// GitHubClient implements contract.SourceClient on top of go-github.
type GitHubClient struct {
	gh *github.Client
}

var _ contract.SourceClient = &GitHubClient{} // Compile-time check

// NewGitHubClient creates a client for github.com, or for a GitHub
// Enterprise server when apiURL is set. An empty token makes anonymous calls.
func NewGitHubClient(token, apiURL string, httpClient *http.Client) (*GitHubClient, error) {
	gh := github.NewClient(httpClient)
	if token != "" {
		gh = gh.WithAuthToken(token)
	}
	if apiURL != "" {
		var err error
		gh, err = gh.WithEnterpriseURLs(apiURL, apiURL)
		if err != nil {
			return nil, fmt.Errorf("invalid github api url %q: %w", apiURL, err)
		}
	}
	return &GitHubClient{gh: gh}, nil
}

// GetRepositoryMetadata returns the provider's description of a repository.
func (c *GitHubClient) GetRepositoryMetadata(ctx context.Context, owner, name string) (*schema.RepositoryMetadata, error) {
	repo, _, err := c.gh.Repositories.Get(ctx, owner, name)
	if err != nil {
		return nil, classify(err, fmt.Sprintf("%s/%s", owner, name))
	}
	return &schema.RepositoryMetadata{
		Owner:         repo.GetOwner().GetLogin(),
		Name:          repo.GetName(),
		FullName:      repo.GetFullName(),
		DefaultBranch: repo.GetDefaultBranch(),
		Visibility:    repo.GetVisibility(),
		Description:   repo.GetDescription(),
		URL:           repo.GetHTMLURL(),
		Language:      repo.GetLanguage(),
		Stars:         repo.GetStargazersCount(),
		Forks:         repo.GetForksCount(),
		OpenIssues:    repo.GetOpenIssuesCount(),
		CreatedAt:     repo.GetCreatedAt().UTC(),
		UpdatedAt:     repo.GetUpdatedAt().UTC(),
	}, nil
}

// GetTree returns the recursive listing of ref. Blobs become file entries
// and trees become directory entries; submodules are skipped.
func (c *GitHubClient) GetTree(ctx context.Context, owner, name, ref string) ([]schema.TreeEntry, error) {
	tree, _, err := c.gh.Git.GetTree(ctx, owner, name, ref, true)
	if err != nil {
		return nil, classify(err, fmt.Sprintf("%s/%s@%s", owner, name, ref))
	}
	if tree.GetTruncated() {
		contract.LogWarn(fmt.Sprintf("Tree of %s/%s", owner, name), errors.New("listing truncated by the provider"))
	}
	entries := make([]schema.TreeEntry, 0, len(tree.Entries))
	for _, e := range tree.Entries {
		switch e.GetType() {
		case "blob":
			entries = append(entries, schema.TreeEntry{Path: e.GetPath(), Kind: schema.FileEntry, SizeBytes: int64(e.GetSize())})
		case "tree":
			entries = append(entries, schema.TreeEntry{Path: e.GetPath(), Kind: schema.DirEntry})
		}
	}
	return entries, nil
}

// GetFileContent returns the decoded bytes of a file. A missing path or a
// directory reports found=false.
func (c *GitHubClient) GetFileContent(ctx context.Context, owner, name, ref, path string) ([]byte, bool, error) {
	file, _, _, err := c.gh.Repositories.GetContents(ctx, owner, name, path, &github.RepositoryContentGetOptions{Ref: ref})
	if err != nil {
		if statusCode(err) == http.StatusNotFound {
			return nil, false, nil
		}
		return nil, false, classify(err, path)
	}
	if file == nil {
		return nil, false, nil
	}
	content, err := file.GetContent()
	if err != nil {
		return nil, false, fmt.Errorf("decoding %s: %w", path, err)
	}
	return []byte(content), true, nil
}

// ListCommits returns one page of commits on ref since a timestamp.
func (c *GitHubClient) ListCommits(ctx context.Context, owner, name, ref string, since time.Time, page, pageSize int) ([]schema.CommitRecord, error) {
	opts := &github.CommitsListOptions{
		SHA:         ref,
		Since:       since,
		ListOptions: github.ListOptions{Page: page, PerPage: pageSize},
	}
	commits, _, err := c.gh.Repositories.ListCommits(ctx, owner, name, opts)
	if err != nil {
		return nil, classify(err, fmt.Sprintf("%s/%s commits", owner, name))
	}
	records := make([]schema.CommitRecord, 0, len(commits))
	for _, rc := range commits {
		author := rc.GetCommit().GetAuthor()
		records = append(records, schema.CommitRecord{
			SHA:         rc.GetSHA(),
			Message:     rc.GetCommit().GetMessage(),
			AuthorLogin: rc.GetAuthor().GetLogin(),
			AuthorName:  author.GetName(),
			AuthorEmail: author.GetEmail(),
			Date:        author.GetDate().UTC(),
		})
	}
	return records, nil
}

// ListRepositories returns up to 500 repositories of the authenticated
// user, most recently updated first.
func (c *GitHubClient) ListRepositories(ctx context.Context) ([]schema.RepositoryListing, error) {
	var listings []schema.RepositoryListing
	for page := 1; page <= maxListPages; page++ {
		opts := &github.RepositoryListByAuthenticatedUserOptions{
			Sort:        "updated",
			Direction:   "desc",
			ListOptions: github.ListOptions{Page: page, PerPage: listPageSize},
		}
		repos, _, err := c.gh.Repositories.ListByAuthenticatedUser(ctx, opts)
		if err != nil {
			return nil, classify(err, "repository list")
		}
		for _, r := range repos {
			listings = append(listings, schema.RepositoryListing{
				Name:          r.GetName(),
				FullName:      r.GetFullName(),
				Owner:         r.GetOwner().GetLogin(),
				Private:       r.GetPrivate(),
				DefaultBranch: r.GetDefaultBranch(),
				Description:   r.GetDescription(),
				URL:           r.GetHTMLURL(),
				Language:      r.GetLanguage(),
				Stars:         r.GetStargazersCount(),
				Forks:         r.GetForksCount(),
				UpdatedAt:     r.GetUpdatedAt().UTC(),
			})
		}
		if len(repos) < listPageSize {
			break
		}
	}
	if listings == nil {
		listings = []schema.RepositoryListing{}
	}
	return listings, nil
}

// AuthenticatedLogin returns the login behind the configured token.
func (c *GitHubClient) AuthenticatedLogin(ctx context.Context) (string, error) {
	user, _, err := c.gh.Users.Get(ctx, "")
	if err != nil {
		return "", classify(err, "authenticated user")
	}
	return user.GetLogin(), nil
}

// classify maps provider status codes onto the shared sentinel errors.
func classify(err error, subject string) error {
	switch statusCode(err) {
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", contract.ErrRepositoryNotFound, subject)
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %s: %w", contract.ErrUnauthorized, subject, err)
	}
	return err
}

func statusCode(err error) int {
	var errResp *github.ErrorResponse
	if errors.As(err, &errResp) && errResp.Response != nil {
		return errResp.Response.StatusCode
	}
	return 0
}

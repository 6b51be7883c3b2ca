package ghclient

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/huangsam/repolens/internal/contract"
	"github.com/huangsam/repolens/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setup starts a fake enterprise API; handlers are mounted under /api/v3.
func setup(t *testing.T) (*GitHubClient, *http.ServeMux) {
	t.Helper()
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	client, err := NewGitHubClient("test-token", srv.URL+"/", nil)
	require.NoError(t, err)
	return client, mux
}

func TestGetRepositoryMetadata(t *testing.T) {
	client, mux := setup(t)
	mux.HandleFunc("GET /api/v3/repos/acme/widgets", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		fmt.Fprint(w, `{
			"name": "widgets", "full_name": "acme/widgets", "owner": {"login": "acme"},
			"default_branch": "trunk", "visibility": "public", "description": "Widgets",
			"html_url": "https://example.test/acme/widgets", "language": "Go",
			"stargazers_count": 12, "forks_count": 3, "open_issues_count": 5,
			"created_at": "2020-01-02T03:04:05Z", "updated_at": "2025-01-02T03:04:05Z"
		}`)
	})

	meta, err := client.GetRepositoryMetadata(t.Context(), "acme", "widgets")
	require.NoError(t, err)
	assert.Equal(t, &schema.RepositoryMetadata{
		Owner:         "acme",
		Name:          "widgets",
		FullName:      "acme/widgets",
		DefaultBranch: "trunk",
		Visibility:    "public",
		Description:   "Widgets",
		URL:           "https://example.test/acme/widgets",
		Language:      "Go",
		Stars:         12,
		Forks:         3,
		OpenIssues:    5,
		CreatedAt:     time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC),
		UpdatedAt:     time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
	}, meta)
}

func TestGetRepositoryMetadataErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{"not found", http.StatusNotFound, contract.ErrRepositoryNotFound},
		{"unauthorized", http.StatusUnauthorized, contract.ErrUnauthorized},
		{"forbidden", http.StatusForbidden, contract.ErrUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, mux := setup(t)
			mux.HandleFunc("GET /api/v3/repos/acme/widgets", func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, `{"message": "nope"}`)
			})
			_, err := client.GetRepositoryMetadata(t.Context(), "acme", "widgets")
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestGetTree(t *testing.T) {
	client, mux := setup(t)
	mux.HandleFunc("GET /api/v3/repos/acme/widgets/git/trees/main", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1", r.URL.Query().Get("recursive"))
		fmt.Fprint(w, `{"sha": "abc", "truncated": false, "tree": [
			{"path": "cmd", "type": "tree"},
			{"path": "cmd/main.go", "type": "blob", "size": 120},
			{"path": "vendor/lib", "type": "commit"}
		]}`)
	})

	entries, err := client.GetTree(t.Context(), "acme", "widgets", "main")
	require.NoError(t, err)
	assert.Equal(t, []schema.TreeEntry{
		{Path: "cmd", Kind: schema.DirEntry},
		{Path: "cmd/main.go", Kind: schema.FileEntry, SizeBytes: 120},
	}, entries)
}

func TestGetFileContent(t *testing.T) {
	client, mux := setup(t)
	mux.HandleFunc("GET /api/v3/repos/acme/widgets/contents/go.mod", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "main", r.URL.Query().Get("ref"))
		// "module x\n"
		fmt.Fprint(w, `{"type": "file", "encoding": "base64", "content": "bW9kdWxlIHgK"}`)
	})
	mux.HandleFunc("GET /api/v3/repos/acme/widgets/contents/Gemfile", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"message": "Not Found"}`)
	})
	mux.HandleFunc("GET /api/v3/repos/acme/widgets/contents/pom.xml", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"message": "boom"}`)
	})

	content, found, err := client.GetFileContent(t.Context(), "acme", "widgets", "main", "go.mod")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "module x\n", string(content))

	content, found, err = client.GetFileContent(t.Context(), "acme", "widgets", "main", "Gemfile")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, content)

	_, found, err = client.GetFileContent(t.Context(), "acme", "widgets", "main", "pom.xml")
	require.Error(t, err)
	assert.False(t, found)
}

func TestListCommits(t *testing.T) {
	client, mux := setup(t)
	since := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	mux.HandleFunc("GET /api/v3/repos/acme/widgets/commits", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "main", q.Get("sha"))
		assert.Equal(t, "2", q.Get("page"))
		assert.Equal(t, "100", q.Get("per_page"))
		assert.Equal(t, "2025-01-01T00:00:00Z", q.Get("since"))
		fmt.Fprint(w, `[{
			"sha": "abcdef0123",
			"author": {"login": "octocat"},
			"commit": {"message": "Fix bug", "author": {"name": "Octo Cat", "email": "octo@example.test", "date": "2025-02-03T04:05:06Z"}}
		}]`)
	})

	commits, err := client.ListCommits(t.Context(), "acme", "widgets", "main", since, 2, 100)
	require.NoError(t, err)
	assert.Equal(t, []schema.CommitRecord{{
		SHA:         "abcdef0123",
		Message:     "Fix bug",
		AuthorLogin: "octocat",
		AuthorName:  "Octo Cat",
		AuthorEmail: "octo@example.test",
		Date:        time.Date(2025, 2, 3, 4, 5, 6, 0, time.UTC),
	}}, commits)
}

func TestListRepositoriesStopsOnShortPage(t *testing.T) {
	client, mux := setup(t)
	var pages []string
	mux.HandleFunc("GET /api/v3/user/repos", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "updated", q.Get("sort"))
		assert.Equal(t, "desc", q.Get("direction"))
		pages = append(pages, q.Get("page"))

		n := listPageSize
		if q.Get("page") == "2" {
			n = 1
		}
		fmt.Fprint(w, "[")
		for i := range n {
			if i > 0 {
				fmt.Fprint(w, ",")
			}
			fmt.Fprintf(w, `{"name": "r%d", "full_name": "acme/r%d", "owner": {"login": "acme"}}`, i, i)
		}
		fmt.Fprint(w, "]")
	})

	repos, err := client.ListRepositories(t.Context())
	require.NoError(t, err)
	assert.Len(t, repos, listPageSize+1)
	assert.Equal(t, []string{"1", "2"}, pages)
	assert.Equal(t, "acme/r0", repos[0].FullName)
}

func TestListRepositoriesPageCeiling(t *testing.T) {
	client, mux := setup(t)
	calls := 0
	mux.HandleFunc("GET /api/v3/user/repos", func(w http.ResponseWriter, _ *http.Request) {
		calls++
		fmt.Fprint(w, "[")
		for i := range listPageSize {
			if i > 0 {
				fmt.Fprint(w, ",")
			}
			fmt.Fprintf(w, `{"name": "r%s"}`, strconv.Itoa(i))
		}
		fmt.Fprint(w, "]")
	})

	repos, err := client.ListRepositories(t.Context())
	require.NoError(t, err)
	assert.Equal(t, maxListPages, calls)
	assert.Len(t, repos, maxListPages*listPageSize)
}

func TestAuthenticatedLogin(t *testing.T) {
	client, mux := setup(t)
	mux.HandleFunc("GET /api/v3/user", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"login": "octocat"}`)
	})

	login, err := client.AuthenticatedLogin(t.Context())
	require.NoError(t, err)
	assert.Equal(t, "octocat", login)
}

func TestNewGitHubClientInvalidURL(t *testing.T) {
	_, err := NewGitHubClient("", "://bad", nil)
	assert.Error(t, err)
}

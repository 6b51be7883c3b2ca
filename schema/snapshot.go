package schema

import (
	"fmt"
	"strings"
	"time"
)

// RepoTarget identifies the repository and ref to analyze.
type RepoTarget struct {
	Owner string
	Name  string
	Ref   string // empty means the default branch
}

// FullName returns "owner/name".
func (t RepoTarget) FullName() string {
	return t.Owner + "/" + t.Name
}

// ParseRepoTarget parses "owner/name" or "owner/name@ref".
func ParseRepoTarget(s string) (RepoTarget, error) {
	s = strings.TrimSpace(s)
	var ref string
	if at := strings.LastIndex(s, "@"); at >= 0 {
		ref = s[at+1:]
		s = s[:at]
	}
	owner, name, ok := strings.Cut(s, "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return RepoTarget{}, fmt.Errorf("invalid repository %q: expected owner/name", s)
	}
	return RepoTarget{Owner: owner, Name: name, Ref: ref}, nil
}

// TreeEntry is one node of a flat recursive repository listing.
type TreeEntry struct {
	Path      string
	Kind      EntryKind
	SizeBytes int64
}

// RepositoryMetadata is the hosting provider's description of a repository.
type RepositoryMetadata struct {
	Owner         string    `json:"owner"`
	Name          string    `json:"name"`
	FullName      string    `json:"fullName"`
	DefaultBranch string    `json:"defaultBranch"`
	Visibility    string    `json:"visibility"`
	Description   string    `json:"description"`
	URL           string    `json:"url"`
	Language      string    `json:"language,omitempty"`
	Stars         int       `json:"stars"`
	Forks         int       `json:"forks"`
	OpenIssues    int       `json:"openIssues"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// CommitRecord is a single commit as delivered by the acquisition adapter.
type CommitRecord struct {
	SHA         string
	Message     string
	AuthorLogin string
	AuthorName  string
	AuthorEmail string
	Date        time.Time
}

// Manifest holds the raw bytes of one well-known manifest file.
type Manifest struct {
	Path    string
	Content []byte
	Present bool
}

// RepositorySnapshot is the ephemeral, in-memory result of acquisition.
type RepositorySnapshot struct {
	Target    RepoTarget
	Metadata  *RepositoryMetadata
	Entries   []TreeEntry
	Manifests map[Ecosystem]Manifest
	Commits   []CommitRecord
	Since     time.Time
}

// Files returns only the file entries of the snapshot.
func (s *RepositorySnapshot) Files() []TreeEntry {
	files := make([]TreeEntry, 0, len(s.Entries))
	for _, e := range s.Entries {
		if e.Kind == FileEntry {
			files = append(files, e)
		}
	}
	return files
}

// RepositoryListing is a row of the authenticated user's repository list.
type RepositoryListing struct {
	Name          string    `json:"name"`
	FullName      string    `json:"fullName"`
	Owner         string    `json:"owner"`
	Private       bool      `json:"private"`
	DefaultBranch string    `json:"defaultBranch"`
	Description   string    `json:"description"`
	URL           string    `json:"url"`
	Language      string    `json:"language"`
	Stars         int       `json:"stars"`
	Forks         int       `json:"forks"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

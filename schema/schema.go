// Package schema has the models shared by all parts of repolens.
package schema

// Provenance modes.
const (
	GitHubAPIMode = "github-api"
)

// ToolName is the name recorded in report provenance.
const ToolName = "repolens"

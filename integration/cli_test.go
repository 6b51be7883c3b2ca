//go:build basic

package integration

import (
	"encoding/json"
	"testing"

	"github.com/huangsam/repolens/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryEnv keeps every store in-process so no files or services are needed.
var memoryEnv = map[string]string{
	"REPOLENS_REPORT_BACKEND":   "memory",
	"REPOLENS_ARTIFACT_BACKEND": "memory",
}

func TestVersion(t *testing.T) {
	stdout, _, code := runRepolens(t, nil, "version")
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "repolens CLI")
	assert.Contains(t, stdout, "Runtime:")
}

func TestHealthWithoutToken(t *testing.T) {
	stdout, _, code := runRepolens(t, memoryEnv, "health", "--output", "json")
	require.Equal(t, 0, code)

	var status schema.HealthStatus
	require.NoError(t, json.Unmarshal([]byte(stdout), &status))
	assert.Equal(t, "ok", status.Status)
	assert.Equal(t, schema.ToolName, status.Service)
	assert.False(t, status.Authenticated)
}

func TestReportsListEmpty(t *testing.T) {
	stdout, _, code := runRepolens(t, memoryEnv, "reports", "list", "--output", "json")
	require.Equal(t, 0, code)
	assert.JSONEq(t, "[]", stdout)
}

func TestUnknownReportExitsNotFound(t *testing.T) {
	for _, args := range [][]string{
		{"reports", "show", "does-not-exist"},
		{"reports", "render", "does-not-exist", "--format", "pdf"},
		{"reports", "ask", "does-not-exist", "what", "is", "this?"},
	} {
		t.Run(args[1], func(t *testing.T) {
			_, stderr, code := runRepolens(t, memoryEnv, args...)
			assert.Equal(t, 2, code)
			assert.Contains(t, stderr, "report does-not-exist not found")
		})
	}
}

func TestInvalidConfigurationFails(t *testing.T) {
	_, stderr, code := runRepolens(t, memoryEnv, "reports", "list", "--workers", "0")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "workers must be greater than 0")
}

func TestSQLiteStoreLifecycle(t *testing.T) {
	// Every run shares one HOME so the default database file persists
	env := map[string]string{"HOME": t.TempDir(), "REPOLENS_ARTIFACT_BACKEND": "memory"}

	_, _, code := runRepolens(t, env, "store", "migrate")
	require.Equal(t, 0, code)

	stdout, _, code := runRepolens(t, env, "store", "status")
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "Report Backend: sqlite")
	assert.Contains(t, stdout, "Total Reports: 0")

	stdout, _, code = runRepolens(t, env, "store", "clear")
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "Reports cleared successfully.")
}

package contract

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/huangsam/repolens/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColorize(t *testing.T) {
	color.NoColor = false
	defer func() { color.NoColor = true }()

	assert.Equal(t, "plain", Colorize(IssueColor, "plain", false))
	colored := Colorize(IssueColor, "issue", true)
	assert.Contains(t, colored, "issue")
	assert.NotEqual(t, "issue", colored)
}

func TestSelectOutputFile(t *testing.T) {
	t.Run("empty path is stdout", func(t *testing.T) {
		f, err := SelectOutputFile("")
		require.NoError(t, err)
		assert.Equal(t, os.Stdout, f)
	})

	t.Run("creates file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.json")
		f, err := SelectOutputFile(path)
		require.NoError(t, err)
		defer func() { _ = f.Close() }()
		_, err = os.Stat(path)
		assert.NoError(t, err)
	})

	t.Run("missing directory fails", func(t *testing.T) {
		_, err := SelectOutputFile(filepath.Join(t.TempDir(), "nope", "out.json"))
		assert.Error(t, err)
	})
}

func TestDBFilePaths(t *testing.T) {
	assert.True(t, strings.HasSuffix(GetReportDBFilePath(), ".repolens_reports.db"))
	assert.True(t, strings.HasSuffix(GetArtifactDBFilePath(), ".repolens_artifacts.db"))
	assert.NotEqual(t, GetReportDBFilePath(), GetArtifactDBFilePath())
}

func TestTruncateText(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		width    int
		expected string
	}{
		{"fits", "hello", 10, "hello"},
		{"exact", "hello", 5, "hello"},
		{"truncated", "hello world", 8, "hello..."},
		{"tiny width untouched", "hello", 3, "hello"},
		{"multibyte", "héllo wörld", 6, "hél..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, TruncateText(tt.text, tt.width))
		})
	}
}

func TestFirstLine(t *testing.T) {
	assert.Equal(t, "Fix parser", FirstLine("Fix parser\n\nLonger body"))
	assert.Equal(t, "Windows", FirstLine("Windows\r\nbody"))
	assert.Equal(t, "single", FirstLine("single"))
	assert.Equal(t, "", FirstLine(""))
}

func TestParseBoolString(t *testing.T) {
	for _, s := range []string{"yes", "YES", "true", "True", "1"} {
		v, err := ParseBoolString(s)
		require.NoError(t, err, s)
		assert.True(t, v, s)
	}
	for _, s := range []string{"no", "No", "false", "FALSE", "0"} {
		v, err := ParseBoolString(s)
		require.NoError(t, err, s)
		assert.False(t, v, s)
	}
	_, err := ParseBoolString("maybe")
	assert.ErrorContains(t, err, "invalid boolean string")
}

func TestPipelineError(t *testing.T) {
	cause := fmt.Errorf("fetch tree: %w", ErrRepositoryNotFound)
	err := error(&PipelineError{Stage: StageTree, Repo: "acme/widgets", Err: cause})

	assert.Equal(t, "analysis of acme/widgets failed at tree: fetch tree: repository not found", err.Error())
	assert.ErrorIs(t, err, ErrRepositoryNotFound)

	var pe *PipelineError
	require.True(t, errors.As(fmt.Errorf("wrapped: %w", err), &pe))
	assert.Equal(t, StageTree, pe.Stage)
}

func TestRenderError(t *testing.T) {
	cause := errors.New("template exploded")
	err := error(&RenderError{Format: schema.PDFFormat, ReportID: "r1", Err: cause})

	assert.Equal(t, "failed to render pdf for report r1: template exploded", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.False(t, errors.Is(err, ErrReportNotFound))
}

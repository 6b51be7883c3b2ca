package contract

import (
	"errors"
	"fmt"

	"github.com/huangsam/repolens/schema"
)

// Sentinel errors shared across layers.
var (
	ErrReportNotFound       = errors.New("report not found")
	ErrReportExists         = errors.New("report already exists")
	ErrArtifactNotFound     = errors.New("artifact not found")
	ErrRepositoryNotFound   = errors.New("repository not found")
	ErrUnauthorized         = errors.New("not authorized by the hosting provider")
	ErrAssistantUnavailable = errors.New("assistant unavailable")
	ErrMissingMetadata      = errors.New("repository metadata is required")
)

// Pipeline stages that abort a report.
const (
	StageMetadata    = "metadata"
	StageTree        = "tree"
	StageAcquisition = "acquisition"
	StageSynthesis   = "synthesis"
	StageStore       = "store"
)

// PipelineError is a fatal-to-report failure.
type PipelineError struct {
	Stage string
	Repo  string
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("analysis of %s failed at %s: %v", e.Repo, e.Stage, e.Err)
}

func (e *PipelineError) Unwrap() error { return e.Err }

// RenderError is a render-time failure. The canonical record is unaffected.
type RenderError struct {
	Format   schema.ArtifactFormat
	ReportID string
	Err      error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("failed to render %s for report %s: %v", e.Format, e.ReportID, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

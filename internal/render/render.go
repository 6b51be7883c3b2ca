// Package render turns canonical analysis reports into derived artifacts.
package render

import (
	"encoding/json"
	"fmt"

	"github.com/huangsam/repolens/schema"
)

// RendererVersion is part of every artifact cache key. Bump it whenever a
// renderer's output changes for the same record.
const RendererVersion = "1"

// Renderer is a pure function from a report to artifact bytes.
type Renderer func(report *schema.AnalysisReport) ([]byte, error)

// DefaultRenderers maps every supported format to its renderer.
func DefaultRenderers() map[schema.ArtifactFormat]Renderer {
	return map[schema.ArtifactFormat]Renderer{
		schema.HTMLFormat: RenderStyled,
		schema.PDFFormat:  RenderPrintable,
		schema.JSONFormat: RenderJSON,
	}
}

// RenderJSON renders the canonical record with a 2-space indent.
func RenderJSON(report *schema.AnalysisReport) ([]byte, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling report: %w", err)
	}
	return append(data, '\n'), nil
}

package render

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/huangsam/repolens/internal/contract"
	"github.com/huangsam/repolens/schema"
	"github.com/zeebo/xxh3"
	"golang.org/x/sync/singleflight"
)

// Observer receives artifact generation events.
type Observer interface {
	ObserveRender(format schema.ArtifactFormat)
	ObserveCacheHit(format schema.ArtifactFormat)
}

// ArtifactService serves derived artifacts lazily. Each artifact is rendered
// at most once per cache key, even under concurrent requests.
type ArtifactService struct {
	store     contract.ReportStore
	cache     contract.ArtifactCache
	renderers map[schema.ArtifactFormat]Renderer
	observer  Observer
	group     singleflight.Group
}

// NewArtifactService creates a service with the default renderers.
// A nil observer disables event reporting.
func NewArtifactService(store contract.ReportStore, cache contract.ArtifactCache, observer Observer) *ArtifactService {
	return NewArtifactServiceWithRenderers(store, cache, observer, DefaultRenderers())
}

// NewArtifactServiceWithRenderers creates a service with custom renderers.
func NewArtifactServiceWithRenderers(store contract.ReportStore, cache contract.ArtifactCache, observer Observer, renderers map[schema.ArtifactFormat]Renderer) *ArtifactService {
	return &ArtifactService{store: store, cache: cache, renderers: renderers, observer: observer}
}

// ArtifactKey derives the content address of an artifact from the canonical
// record bytes, the format and the renderer version.
func ArtifactKey(id string, format schema.ArtifactFormat, canonical []byte) string {
	return fmt.Sprintf("%s/%s-%s-%016x", id, format, RendererVersion, xxh3.Hash(canonical))
}

// Get returns the artifact of a report in the given format. Unknown reports
// surface the store's not-found error; renderer failures are returned as
// *contract.RenderError and leave the canonical record untouched.
func (s *ArtifactService) Get(ctx context.Context, id string, format schema.ArtifactFormat) ([]byte, error) {
	render, ok := s.renderers[format]
	if !ok {
		return nil, fmt.Errorf("unsupported artifact format %q", format)
	}

	report, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	canonical, err := json.Marshal(report)
	if err != nil {
		return nil, &contract.RenderError{Format: format, ReportID: id, Err: err}
	}
	key := ArtifactKey(id, format, canonical)

	if data, err := s.cache.Get(ctx, key); err == nil {
		s.observeCacheHit(format)
		return data, nil
	} else if !errors.Is(err, contract.ErrArtifactNotFound) {
		contract.LogWarn("Artifact cache lookup failed", err)
	}

	v, err, _ := s.group.Do(key, func() (any, error) {
		// A concurrent caller may have filled the cache while we waited.
		if data, err := s.cache.Get(ctx, key); err == nil {
			s.observeCacheHit(format)
			return data, nil
		}
		data, err := render(report)
		if err != nil {
			return nil, &contract.RenderError{Format: format, ReportID: id, Err: err}
		}
		s.observeRender(format)
		if err := s.cache.Put(ctx, key, data); err != nil {
			contract.LogWarn("Could not cache artifact", err)
		}
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

func (s *ArtifactService) observeRender(format schema.ArtifactFormat) {
	if s.observer != nil {
		s.observer.ObserveRender(format)
	}
}

func (s *ArtifactService) observeCacheHit(format schema.ArtifactFormat) {
	if s.observer != nil {
		s.observer.ObserveCacheHit(format)
	}
}

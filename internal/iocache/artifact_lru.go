package iocache

import (
	"context"
	"slices"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/huangsam/repolens/internal/contract"
	"github.com/huangsam/repolens/schema"
)

// LRUArtifactCache fronts another cache with a bounded in-process LRU.
type LRUArtifactCache struct {
	next  contract.ArtifactCache
	cache *lru.Cache[string, []byte]
}

var _ contract.ArtifactCache = &LRUArtifactCache{} // Compile-time check

// NewLRUArtifactCache wraps next with an LRU holding at most size entries.
func NewLRUArtifactCache(next contract.ArtifactCache, size int) (*LRUArtifactCache, error) {
	cache, err := lru.New[string, []byte](size)
	if err != nil {
		return nil, err
	}
	return &LRUArtifactCache{next: next, cache: cache}, nil
}

// Get checks the LRU before falling through to the backing cache.
func (lc *LRUArtifactCache) Get(ctx context.Context, key string) ([]byte, error) {
	if data, ok := lc.cache.Get(key); ok {
		return slices.Clone(data), nil
	}
	data, err := lc.next.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	lc.cache.Add(key, slices.Clone(data))
	return data, nil
}

// Put writes through to the backing cache, then remembers the bytes.
func (lc *LRUArtifactCache) Put(ctx context.Context, key string, data []byte) error {
	if err := lc.next.Put(ctx, key, data); err != nil {
		return err
	}
	lc.cache.Add(key, slices.Clone(data))
	return nil
}

// GetStatus reports the backing cache status plus the LRU occupancy.
func (lc *LRUArtifactCache) GetStatus(ctx context.Context) (schema.ArtifactStatus, error) {
	status, err := lc.next.GetStatus(ctx)
	status.LRUEntries = lc.cache.Len()
	return status, err
}

// Clear empties the LRU and, when supported, the backing cache.
func (lc *LRUArtifactCache) Clear(ctx context.Context) error {
	lc.cache.Purge()
	if c, ok := lc.next.(interface{ Clear(context.Context) error }); ok {
		return c.Clear(ctx)
	}
	return nil
}

// Close purges the LRU and closes the backing cache.
func (lc *LRUArtifactCache) Close() error {
	lc.cache.Purge()
	return lc.next.Close()
}

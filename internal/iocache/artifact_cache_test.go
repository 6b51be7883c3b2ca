package iocache

import (
	"context"
	"errors"
	"testing"

	"github.com/huangsam/repolens/internal/contract"
	"github.com/huangsam/repolens/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func artifactCacheContract(t *testing.T, cache contract.ArtifactCache) {
	ctx := context.Background()

	_, err := cache.Get(ctx, "r-1/html-1-abc")
	assert.ErrorIs(t, err, contract.ErrArtifactNotFound)

	require.NoError(t, cache.Put(ctx, "r-1/html-1-abc", []byte("<html></html>")))
	data, err := cache.Get(ctx, "r-1/html-1-abc")
	require.NoError(t, err)
	assert.Equal(t, []byte("<html></html>"), data)

	// Upsert replaces the previous bytes.
	require.NoError(t, cache.Put(ctx, "r-1/html-1-abc", []byte("<html>v2</html>")))
	data, err = cache.Get(ctx, "r-1/html-1-abc")
	require.NoError(t, err)
	assert.Equal(t, []byte("<html>v2</html>"), data)

	require.NoError(t, cache.Put(ctx, "r-1/pdf-1-abc", []byte("%PDF")))
	status, err := cache.GetStatus(ctx)
	require.NoError(t, err)
	assert.True(t, status.Connected)
	assert.Equal(t, 2, status.TotalEntries)
	assert.Equal(t, int64(len("<html>v2</html>")+len("%PDF")), status.TotalBytes)
}

func TestMemoryArtifactCache(t *testing.T) {
	artifactCacheContract(t, NewMemoryArtifactCache())
}

func TestSQLiteArtifactCache(t *testing.T) {
	cache, err := NewSQLArtifactCache(artifactsTable, schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	defer func() { _ = cache.Close() }()
	artifactCacheContract(t, cache)
}

func TestNewSQLArtifactCache_InvalidTable(t *testing.T) {
	_, err := NewSQLArtifactCache("bad-name", schema.SQLiteBackend, ":memory:")
	assert.Error(t, err)
}

func TestNewArtifactCache(t *testing.T) {
	cache, err := NewArtifactCache(schema.MemoryBackend, "", contract.S3Config{}, 0)
	require.NoError(t, err)
	assert.IsType(t, &MemoryArtifactCache{}, cache)

	cache, err = NewArtifactCache(schema.MemoryBackend, "", contract.S3Config{}, 4)
	require.NoError(t, err)
	assert.IsType(t, &LRUArtifactCache{}, cache)

	_, err = NewArtifactCache(schema.S3Backend, "", contract.S3Config{}, 0)
	assert.Error(t, err, "s3 requires an endpoint")

	_, err = NewArtifactCache("redis", "", contract.S3Config{}, 0)
	assert.Error(t, err)
}

func TestLRUArtifactCache(t *testing.T) {
	ctx := context.Background()
	backing := &MockArtifactCache{}
	backing.On("Get", ctx, "k1").Return([]byte("one"), nil).Once()
	backing.On("Get", ctx, "missing").Return(nil, contract.ErrArtifactNotFound)
	backing.On("Put", ctx, "k2", []byte("two")).Return(nil).Once()
	backing.On("GetStatus", ctx).Return(schema.ArtifactStatus{Backend: "mock", Connected: true, TotalEntries: 2}, nil)
	backing.On("Close").Return(nil)

	lc, err := NewLRUArtifactCache(backing, 8)
	require.NoError(t, err)

	// The second read is served from the LRU.
	for range 2 {
		data, err := lc.Get(ctx, "k1")
		require.NoError(t, err)
		assert.Equal(t, []byte("one"), data)
	}

	require.NoError(t, lc.Put(ctx, "k2", []byte("two")))
	data, err := lc.Get(ctx, "k2")
	require.NoError(t, err)
	assert.Equal(t, []byte("two"), data)

	_, err = lc.Get(ctx, "missing")
	assert.ErrorIs(t, err, contract.ErrArtifactNotFound)

	status, err := lc.GetStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, status.LRUEntries)
	assert.Equal(t, 2, status.TotalEntries)

	require.NoError(t, lc.Close())
	backing.AssertExpectations(t)
}

func TestLRUArtifactCache_PutFailure(t *testing.T) {
	ctx := context.Background()
	backing := &MockArtifactCache{}
	backing.On("Put", ctx, "k", mock.Anything).Return(errors.New("disk full"))
	backing.On("Get", ctx, "k").Return(nil, contract.ErrArtifactNotFound)

	lc, err := NewLRUArtifactCache(backing, 2)
	require.NoError(t, err)
	assert.Error(t, lc.Put(ctx, "k", []byte("x")))

	_, err = lc.Get(ctx, "k")
	assert.ErrorIs(t, err, contract.ErrArtifactNotFound, "failed writes are not remembered")
}

func TestLRUArtifactCache_Clear(t *testing.T) {
	ctx := context.Background()
	lc, err := NewLRUArtifactCache(NewMemoryArtifactCache(), 2)
	require.NoError(t, err)
	require.NoError(t, lc.Put(ctx, "k", []byte("x")))
	require.NoError(t, lc.Clear(ctx))

	status, err := lc.GetStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, status.LRUEntries)
}

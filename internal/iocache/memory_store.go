package iocache

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/huangsam/repolens/internal/contract"
	"github.com/huangsam/repolens/schema"
)

// MemoryReportStore keeps canonical reports in process memory.
type MemoryReportStore struct {
	mu      sync.RWMutex
	reports map[string]*schema.AnalysisReport
}

var _ contract.ReportStore = &MemoryReportStore{} // Compile-time check

// NewMemoryReportStore returns an empty in-memory report store.
func NewMemoryReportStore() *MemoryReportStore {
	return &MemoryReportStore{reports: make(map[string]*schema.AnalysisReport)}
}

// Put stores a private copy of the report.
func (ms *MemoryReportStore) Put(_ context.Context, report *schema.AnalysisReport) error {
	if report == nil || report.ID == "" {
		return fmt.Errorf("report must have an id")
	}
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if _, ok := ms.reports[report.ID]; ok {
		return fmt.Errorf("%w: %s", contract.ErrReportExists, report.ID)
	}
	ms.reports[report.ID] = report.Clone()
	return nil
}

// Get returns a copy so callers cannot mutate the stored record.
func (ms *MemoryReportStore) Get(_ context.Context, id string) (*schema.AnalysisReport, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	report, ok := ms.reports[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", contract.ErrReportNotFound, id)
	}
	return report.Clone(), nil
}

// List returns summaries ordered by generation time, newest first.
func (ms *MemoryReportStore) List(_ context.Context) ([]schema.ReportSummary, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	results := make([]schema.ReportSummary, 0, len(ms.reports))
	for _, report := range ms.reports {
		results = append(results, report.Summary())
	}
	sortSummaries(results)
	return results, nil
}

// GetStatus returns status information about the memory store.
func (ms *MemoryReportStore) GetStatus() (schema.StoreStatus, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	status := schema.StoreStatus{
		Backend:      string(schema.MemoryBackend),
		Connected:    true,
		TotalReports: len(ms.reports),
		TableSizes:   map[string]int64{},
	}
	for report := range maps.Values(ms.reports) {
		if status.LastReportTime.IsZero() || report.GeneratedAt.After(status.LastReportTime) {
			status.LastReportTime = report.GeneratedAt
		}
		if status.OldestReportTime.IsZero() || report.GeneratedAt.Before(status.OldestReportTime) {
			status.OldestReportTime = report.GeneratedAt
		}
	}
	return status, nil
}

// Close is a no-op for the memory store.
func (ms *MemoryReportStore) Close() error {
	return nil
}

// sortSummaries orders summaries by generatedAt descending, then id ascending.
func sortSummaries(summaries []schema.ReportSummary) {
	slices.SortFunc(summaries, func(a, b schema.ReportSummary) int {
		if c := b.GeneratedAt.Compare(a.GeneratedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
}

// MemoryArtifactCache keeps derived artifacts in process memory.
type MemoryArtifactCache struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

var _ contract.ArtifactCache = &MemoryArtifactCache{} // Compile-time check

// NewMemoryArtifactCache returns an empty in-memory artifact cache.
func NewMemoryArtifactCache() *MemoryArtifactCache {
	return &MemoryArtifactCache{entries: make(map[string][]byte)}
}

// Get returns a copy of the cached bytes or ErrArtifactNotFound.
func (mc *MemoryArtifactCache) Get(_ context.Context, key string) ([]byte, error) {
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	data, ok := mc.entries[key]
	if !ok {
		return nil, contract.ErrArtifactNotFound
	}
	return slices.Clone(data), nil
}

// Put stores a copy of data under key.
func (mc *MemoryArtifactCache) Put(_ context.Context, key string, data []byte) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.entries[key] = slices.Clone(data)
	return nil
}

// GetStatus returns status information about the memory cache.
func (mc *MemoryArtifactCache) GetStatus(_ context.Context) (schema.ArtifactStatus, error) {
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	status := schema.ArtifactStatus{
		Backend:      string(schema.MemoryBackend),
		Connected:    true,
		TotalEntries: len(mc.entries),
	}
	for _, data := range mc.entries {
		status.TotalBytes += int64(len(data))
	}
	return status, nil
}

// Close is a no-op for the memory cache.
func (mc *MemoryArtifactCache) Close() error {
	return nil
}

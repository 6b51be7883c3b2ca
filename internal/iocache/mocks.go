package iocache

import (
	"context"

	"github.com/huangsam/repolens/internal/contract"
	"github.com/huangsam/repolens/schema"
	"github.com/stretchr/testify/mock"
)

// MockStoreManager is a mock implementation of StoreManager for testing.
type MockStoreManager struct {
	mock.Mock
}

var _ contract.StoreManager = &MockStoreManager{} // Compile-time check

// GetReportStore implements the StoreManager interface.
func (m *MockStoreManager) GetReportStore() contract.ReportStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.ReportStore)
	return store
}

// GetArtifactCache implements the StoreManager interface.
func (m *MockStoreManager) GetArtifactCache() contract.ArtifactCache {
	ret := m.Called()
	cache, _ := ret.Get(0).(contract.ArtifactCache)
	return cache
}

// MockReportStore is a mock implementation of ReportStore for testing.
type MockReportStore struct {
	mock.Mock
}

var _ contract.ReportStore = &MockReportStore{} // Compile-time check

// Put implements the ReportStore interface.
func (m *MockReportStore) Put(ctx context.Context, report *schema.AnalysisReport) error {
	args := m.Called(ctx, report)
	return args.Error(0)
}

// Get implements the ReportStore interface.
func (m *MockReportStore) Get(ctx context.Context, id string) (*schema.AnalysisReport, error) {
	args := m.Called(ctx, id)
	report, _ := args.Get(0).(*schema.AnalysisReport)
	return report, args.Error(1)
}

// List implements the ReportStore interface.
func (m *MockReportStore) List(ctx context.Context) ([]schema.ReportSummary, error) {
	args := m.Called(ctx)
	summaries, _ := args.Get(0).([]schema.ReportSummary)
	return summaries, args.Error(1)
}

// GetStatus implements the ReportStore interface.
func (m *MockReportStore) GetStatus() (schema.StoreStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.StoreStatus), args.Error(1)
}

// Close implements the ReportStore interface.
func (m *MockReportStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockArtifactCache is a mock implementation of ArtifactCache for testing.
type MockArtifactCache struct {
	mock.Mock
}

var _ contract.ArtifactCache = &MockArtifactCache{} // Compile-time check

// Get implements the ArtifactCache interface.
func (m *MockArtifactCache) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}

// Put implements the ArtifactCache interface.
func (m *MockArtifactCache) Put(ctx context.Context, key string, data []byte) error {
	args := m.Called(ctx, key, data)
	return args.Error(0)
}

// GetStatus implements the ArtifactCache interface.
func (m *MockArtifactCache) GetStatus(ctx context.Context) (schema.ArtifactStatus, error) {
	args := m.Called(ctx)
	return args.Get(0).(schema.ArtifactStatus), args.Error(1)
}

// Close implements the ArtifactCache interface.
func (m *MockArtifactCache) Close() error {
	args := m.Called()
	return args.Error(0)
}

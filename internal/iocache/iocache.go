// Package iocache persists canonical reports and caches derived artifacts.
package iocache

import (
	"sync"

	"github.com/huangsam/repolens/internal/contract"
)

// StoreManagerImpl holds the report store and artifact cache for the process.
type StoreManagerImpl struct {
	sync.RWMutex // Protects the store pointers during initialization
	reports      contract.ReportStore
	artifacts    contract.ArtifactCache
}

var _ contract.StoreManager = &StoreManagerImpl{} // Compile-time check

// GetReportStore returns the canonical report store.
func (mgr *StoreManagerImpl) GetReportStore() contract.ReportStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.reports
}

// GetArtifactCache returns the derived-artifact cache.
func (mgr *StoreManagerImpl) GetArtifactCache() contract.ArtifactCache {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.artifacts
}

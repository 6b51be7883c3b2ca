package schema

import "time"

// StoreStatus represents the status of the report store.
type StoreStatus struct {
	Backend          string           `json:"backend"`
	Connected        bool             `json:"connected"`
	TotalReports     int              `json:"total_reports"`
	LastReportTime   time.Time        `json:"last_report_time"`
	OldestReportTime time.Time        `json:"oldest_report_time"`
	TableSizes       map[string]int64 `json:"table_sizes"`
}

// ArtifactStatus represents the status of the derived-artifact cache.
type ArtifactStatus struct {
	Backend      string `json:"backend"`
	Connected    bool   `json:"connected"`
	TotalEntries int    `json:"total_entries"`
	TotalBytes   int64  `json:"total_bytes"`
	LRUEntries   int    `json:"lru_entries"`
}

// HealthStatus is the output of the health command.
type HealthStatus struct {
	Status        string `json:"status"`
	Service       string `json:"service"`
	Version       string `json:"version"`
	Authenticated bool   `json:"authenticated"`
}

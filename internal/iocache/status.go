package iocache

import (
	"fmt"
	"maps"
	"slices"

	"github.com/dustin/go-humanize"
	"github.com/huangsam/repolens/schema"
)

// PrintStoreStatus prints report store status information.
func PrintStoreStatus(status schema.StoreStatus) {
	fmt.Printf("Report Backend: %s\n", status.Backend)
	fmt.Printf("Connected: %t\n", status.Connected)
	if !status.Connected {
		return
	}
	fmt.Printf("Total Reports: %d\n", status.TotalReports)
	if status.TotalReports > 0 {
		fmt.Printf("Last Report: %s (%s)\n", status.LastReportTime.Format("2006-01-02 15:04:05"), humanize.Time(status.LastReportTime))
		fmt.Printf("Oldest Report: %s (%s)\n", status.OldestReportTime.Format("2006-01-02 15:04:05"), humanize.Time(status.OldestReportTime))
	}
	if len(status.TableSizes) > 0 {
		fmt.Println("Table Sizes:")
		for _, table := range slices.Sorted(maps.Keys(status.TableSizes)) {
			fmt.Printf("  %s: %s\n", table, humanize.Bytes(uint64(max(status.TableSizes[table], 0))))
		}
	}
}

// PrintArtifactStatus prints artifact cache status information.
func PrintArtifactStatus(status schema.ArtifactStatus) {
	fmt.Printf("Artifact Backend: %s\n", status.Backend)
	fmt.Printf("Connected: %t\n", status.Connected)
	if !status.Connected {
		return
	}
	fmt.Printf("Total Artifacts: %d\n", status.TotalEntries)
	fmt.Printf("Total Size: %s\n", humanize.Bytes(uint64(max(status.TotalBytes, 0))))
	fmt.Printf("LRU Entries: %d\n", status.LRUEntries)
}

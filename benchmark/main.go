// Package main provides a performance benchmarking tool for the repolens CLI.
// It analyzes each repository once, then measures artifact rendering across
// formats: an uncached phase that always renders, and a cached phase where the
// first successful run is cold and the rest are averaged as warm.
//
// Prerequisites:
// - repolens binary installed and available in PATH
// - GITHUB_TOKEN set to avoid anonymous rate limits
//
// Usage: go run benchmark/main.go owner/name [owner/name...]
package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

// BenchmarkResult holds the result of a benchmark run (no-cache average, cold run and average of warm runs).
type BenchmarkResult struct {
	Repository  string
	Format      string
	NoCacheTime string
	ColdTime    string
	WarmTime    string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	Timeout     time.Duration
	NoCacheRuns int
	CacheRuns   int
	Repos       []string
	Formats     []string
	WorkDir     string
}

func main() {
	if len(os.Args) < 2 {
		fmt.Printf("Usage: %s owner/name [owner/name...]\n", os.Args[0])
		os.Exit(1)
	}

	workDir, err := os.MkdirTemp("", "repolens-benchmark-*")
	if err != nil {
		fmt.Printf("Failed to create work dir: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = os.RemoveAll(workDir) }()

	config := BenchmarkConfig{
		Timeout:     2 * time.Minute,
		NoCacheRuns: 3,
		CacheRuns:   4,
		Repos:       os.Args[1:],
		Formats:     []string{"html", "pdf", "json"},
		WorkDir:     workDir,
	}

	if _, err := exec.LookPath("repolens"); err != nil {
		fmt.Printf("Prerequisites check failed: repolens binary not found in PATH\n")
		os.Exit(1)
	}

	fmt.Printf("Clearing artifact cache...\n")
	if output, err := runRepolens(config, "sqlite", "artifacts", "clear"); err != nil {
		fmt.Printf("Warning: failed to clear artifacts: %v\nOutput: %s\n", err, string(output))
	}

	results := runBenchmarks(config)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(config, results)
}

// runRepolens runs one CLI invocation with the given artifact backend.
func runRepolens(config BenchmarkConfig, artifactBackend string, args ...string) ([]byte, error) {
	cmd := exec.Command("repolens", args...)
	cmd.Env = append(os.Environ(),
		"REPOLENS_ARTIFACT_BACKEND="+artifactBackend,
		"REPOLENS_ARTIFACT_LRU_SIZE=0",
	)

	type result struct {
		output []byte
		err    error
	}
	done := make(chan result, 1)
	go func() {
		output, err := cmd.Output()
		done <- result{output, err}
	}()

	select {
	case r := <-done:
		return r.output, r.err
	case <-time.After(config.Timeout):
		_ = cmd.Process.Kill()
		return nil, fmt.Errorf("timed out after %v", config.Timeout)
	}
}

// analyzeRepo stores a fresh report and returns its id.
func analyzeRepo(config BenchmarkConfig, repo string) (string, error) {
	output, err := runRepolens(config, "memory", "analyze", repo, "--output", "json")
	if err != nil {
		return "", err
	}
	var report struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(output, &report); err != nil {
		return "", fmt.Errorf("unexpected analyze output: %w", err)
	}
	return report.ID, nil
}

// runBenchmarks executes all benchmark tests across configured repositories
func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d repos, %v timeout, no-cache: %d runs, cache: %d runs\n",
		len(config.Repos), config.Timeout, config.NoCacheRuns, config.CacheRuns)

	for _, repo := range config.Repos {
		fmt.Printf("Benchmarking %s\n", repo)

		id, err := analyzeRepo(config, repo)
		if err != nil {
			fmt.Printf("  Skipping %s: analyze failed: %v\n", repo, err)
			continue
		}

		for _, format := range config.Formats {
			results = append(results, runBenchmarkSuite(config, repo, id, format))
		}
	}

	return results
}

// runBenchmarkSuite runs both no-cache and cache benchmarks for a format
func runBenchmarkSuite(config BenchmarkConfig, repo, id, format string) BenchmarkResult {
	fmt.Printf("Rendering %s of %s\n", format, repo)

	runPhase := func(artifactBackend string, numRuns int, phaseName string) (coldTime float64, avgTime string) {
		fmt.Printf("  %s phase (%d runs)\n", phaseName, numRuns)
		cold, times := runBenchmark(config, id, format, artifactBackend, numRuns)
		if len(times) == 0 {
			return cold, "TIMEOUT"
		}
		var sum float64
		for _, t := range times {
			sum += t
		}
		return cold, fmt.Sprintf("%.3fs", sum/float64(len(times)))
	}

	// Phase 1: every run renders, since each process starts with an empty memory cache
	_, noCacheAvg := runPhase("memory", config.NoCacheRuns, "No-cache")

	// Phase 2: the first run renders and stores, later runs hit the cache
	coldTime, warmAvg := runPhase("sqlite", config.CacheRuns, "Cache")

	coldTimeStr := "TIMEOUT"
	if coldTime > 0 {
		coldTimeStr = fmt.Sprintf("%.3fs", coldTime)
	}

	fmt.Printf("  No-cache average: %s, Cold time: %s, Warm average: %s\n", noCacheAvg, coldTimeStr, warmAvg)

	return BenchmarkResult{
		Repository:  repo,
		Format:      format,
		NoCacheTime: noCacheAvg,
		ColdTime:    coldTimeStr,
		WarmTime:    warmAvg,
	}
}

// runBenchmark renders an artifact multiple times and returns cold time and warm times
func runBenchmark(config BenchmarkConfig, id, format, artifactBackend string, numRuns int) (coldTime float64, warmTimes []float64) {
	outFile := filepath.Join(config.WorkDir, id+"."+format)

	var times []float64
	for run := 1; run <= numRuns; run++ {
		_ = os.Remove(outFile)
		start := time.Now()
		_, err := runRepolens(config, artifactBackend, "reports", "render", id, "--format", format, "--output-file", outFile)
		if err == nil && isSuccess(outFile) {
			times = append(times, time.Since(start).Seconds())
		}
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return
}

// isSuccess checks that the render produced a non-empty artifact
func isSuccess(outFile string) bool {
	info, err := os.Stat(outFile)
	return err == nil && info.Size() > 0
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := filepath.Join(os.TempDir(), fmt.Sprintf("repolens_benchmark_%s.csv", timestamp))

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"repo", "format", "no_cache_avg", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, result := range results {
		if err := writer.Write([]string{result.Repository, result.Format, result.NoCacheTime, result.ColdTime, result.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(config BenchmarkConfig, results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")
	for _, format := range config.Formats {
		fmt.Printf("%s rendering:\n", format)
		for _, result := range results {
			if result.Format == format {
				fmt.Printf("  %-30s: No-cache: %s, Cold: %s, Warm: %s\n", result.Repository, result.NoCacheTime, result.ColdTime, result.WarmTime)
			}
		}
	}
}

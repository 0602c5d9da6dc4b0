// Package main benchmarks the recon CLI across repositories of different sizes.
// Each scenario runs several times without a history cache and then with one,
// treating the first cached run as cold and averaging the rest as warm.
// Results are written as CSV for performance tracking.
//
// Prerequisites:
// - recon binary installed and available in PATH
// - Test repositories cloned to the specified base directory
//
// Usage: go run benchmark/main.go [repo-base-dir] [repo...]
//
//	repo-base-dir: Directory containing test repositories
//	repo:          Repository names to run (default: csv-parser fd git kubernetes)
package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/huangsam/recon/internal/contract"
)

// Scenario is one recon invocation to time.
type Scenario struct {
	Name string
	Args []string
}

// BenchmarkResult holds the no-cache average, cold run and warm average for a scenario.
type BenchmarkResult struct {
	Repository  string
	Scenario    string
	NoCacheTime string
	ColdTime    string
	WarmTime    string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	RepoBase     string
	Timeout      time.Duration
	NoCacheRuns  int
	CacheRuns    int
	CacheBackend string
	TestRepos    []string
	Scenarios    []Scenario
}

var defaultScenarios = []Scenario{
	{Name: "scan", Args: []string{"scan", "--format", "json"}},
	{Name: "scan-churn", Args: []string{"scan", "--format", "compact", "--sort", "churn", "--top", "50"}},
	{Name: "history", Args: []string{"history", "--format", "json"}},
}

func main() {
	if len(os.Args) < 2 {
		fmt.Printf("Usage: %s [repo-base-dir] [repo...]\n", os.Args[0])
		os.Exit(1)
	}

	config := BenchmarkConfig{
		RepoBase:     os.Args[1],
		Timeout:      5 * time.Minute,
		NoCacheRuns:  3,
		CacheRuns:    4,
		CacheBackend: "bolt",
		TestRepos:    []string{"csv-parser", "fd", "git", "kubernetes"},
		Scenarios:    defaultScenarios,
	}
	if len(os.Args) > 2 {
		config.TestRepos = os.Args[2:]
	}

	if err := checkPrerequisites(config); err != nil {
		contract.LogFatal("Prerequisites check failed", err)
	}

	fmt.Printf("Clearing cache...\n")
	clearCmd := exec.Command("recon", "cache", "clear", "--cache-backend", config.CacheBackend)
	if output, err := clearCmd.CombinedOutput(); err != nil {
		contract.LogWarn(fmt.Sprintf("Failed to clear cache: %s", output), err)
	}

	results := runBenchmarks(config)

	if err := saveResults(results); err != nil {
		contract.LogFatal("Failed to save results", err)
	}
	printSummary(config, results)
}

// checkPrerequisites verifies that the recon binary and test repositories exist.
func checkPrerequisites(config BenchmarkConfig) error {
	if _, err := exec.LookPath("recon"); err != nil {
		return errors.New("recon binary not found in PATH")
	}
	for _, repo := range config.TestRepos {
		repoPath := filepath.Join(config.RepoBase, repo)
		if _, err := os.Stat(repoPath); os.IsNotExist(err) {
			return fmt.Errorf("repository %s not found at %s", repo, repoPath)
		}
	}
	return nil
}

// runBenchmarks executes every scenario against every repository.
func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d repos, %d scenarios, %v timeout, no-cache: %d runs, cache: %d runs\n",
		len(config.TestRepos), len(config.Scenarios), config.Timeout, config.NoCacheRuns, config.CacheRuns)

	for _, repo := range config.TestRepos {
		fmt.Printf("Benchmarking %s\n", repo)
		repoPath := filepath.Join(config.RepoBase, repo)
		for _, scenario := range config.Scenarios {
			results = append(results, runBenchmarkSuite(config, repo, repoPath, scenario))
		}
	}
	return results
}

// runBenchmarkSuite runs the no-cache and cache phases for one scenario.
func runBenchmarkSuite(config BenchmarkConfig, repo, repoPath string, scenario Scenario) BenchmarkResult {
	fmt.Printf("Running %s on %s\n", scenario.Name, repo)

	first, rest := runBenchmark(config, repoPath, scenario, "none", config.NoCacheRuns)
	var noCache []float64
	if first > 0 {
		noCache = append([]float64{first}, rest...)
	}
	cold, warm := runBenchmark(config, repoPath, scenario, config.CacheBackend, config.CacheRuns)

	result := BenchmarkResult{
		Repository:  repo,
		Scenario:    scenario.Name,
		NoCacheTime: formatAverage(noCache),
		ColdTime:    "TIMEOUT",
		WarmTime:    formatAverage(warm),
	}
	if cold > 0 {
		result.ColdTime = fmt.Sprintf("%.3fs", cold)
	}
	fmt.Printf("  No-cache average: %s, Cold time: %s, Warm average: %s\n",
		result.NoCacheTime, result.ColdTime, result.WarmTime)
	return result
}

// runBenchmark runs recon numRuns times and returns the first successful run
// time plus the times of the remaining successful runs.
func runBenchmark(config BenchmarkConfig, repoPath string, scenario Scenario, cacheBackend string, numRuns int) (coldTime float64, warmTimes []float64) {
	args := append(append([]string{}, scenario.Args...), "--cache-backend", cacheBackend)

	var times []float64
	for range numRuns {
		ctx, cancel := context.WithTimeout(context.Background(), config.Timeout)
		cmd := exec.CommandContext(ctx, "recon", args...)
		cmd.Dir = repoPath

		start := time.Now()
		output, err := cmd.Output()
		elapsed := time.Since(start).Seconds()
		cancel()

		if err == nil && len(output) > 0 {
			times = append(times, elapsed)
		}
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return coldTime, warmTimes
}

func formatAverage(times []float64) string {
	if len(times) == 0 {
		return "TIMEOUT"
	}
	var sum float64
	for _, t := range times {
		sum += t
	}
	return fmt.Sprintf("%.3fs", sum/float64(len(times)))
}

// saveResults writes benchmark results to a timestamped CSV file.
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := filepath.Join(os.TempDir(), fmt.Sprintf("recon_benchmark_%s.csv", timestamp))

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			contract.LogWarn("Failed to close "+filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"repo", "scenario", "no_cache_avg", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, result := range results {
		if err := writer.Write([]string{result.Repository, result.Scenario, result.NoCacheTime, result.ColdTime, result.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return err
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays results grouped by scenario.
func printSummary(config BenchmarkConfig, results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")
	for _, scenario := range config.Scenarios {
		fmt.Printf("%s:\n", scenario.Name)
		for _, result := range results {
			if result.Scenario == scenario.Name {
				fmt.Printf("  %-12s: No-cache: %s, Cold: %s, Warm: %s\n", result.Repository, result.NoCacheTime, result.ColdTime, result.WarmTime)
			}
		}
	}
}

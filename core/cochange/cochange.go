// Package cochange measures how often pairs of files are modified in the same commit.
package cochange

import (
	"math"
	"slices"
	"strings"

	"github.com/huangsam/recon/schema"
)

// Default thresholds for reporting a pair.
const (
	DefaultMinCommits = 8
	DefaultMinRatio   = 0.6
	DefaultLimit      = 10
)

// Options controls which pairs are reported.
type Options struct {
	MinCommits int
	MinRatio   float64
	Limit      int
}

// DefaultOptions returns the standard thresholds.
func DefaultOptions() Options {
	return Options{MinCommits: DefaultMinCommits, MinRatio: DefaultMinRatio, Limit: DefaultLimit}
}

type pairKey struct {
	a, b string // a < b
}

func newPairKey(x, y string) pairKey {
	if y < x {
		x, y = y, x
	}
	return pairKey{a: x, b: y}
}

type pairCount struct {
	key   pairKey
	count int
}

// Cluster counts per-file and per-pair commit occurrences and returns the most
// strongly coupled pairs, strongest first.
func Cluster(records []schema.CommitRecord, opts Options) []schema.CoChangeCluster {
	if opts.Limit <= 0 {
		opts.Limit = DefaultLimit
	}

	fileTotals := make(map[string]int)
	pairTotals := make(map[pairKey]int)
	for _, rec := range records {
		files := uniqueFiles(rec.Files)
		for _, f := range files {
			fileTotals[f]++
		}
		for i, f1 := range files {
			for _, f2 := range files[i+1:] {
				pairTotals[newPairKey(f1, f2)]++
			}
		}
	}

	ranked := make([]pairCount, 0, len(pairTotals))
	for k, c := range pairTotals {
		if c >= opts.MinCommits {
			ranked = append(ranked, pairCount{key: k, count: c})
		}
	}
	slices.SortFunc(ranked, func(x, y pairCount) int {
		if x.count != y.count {
			return y.count - x.count
		}
		if c := strings.Compare(x.key.a, y.key.a); c != 0 {
			return c
		}
		return strings.Compare(x.key.b, y.key.b)
	})

	var clusters []schema.CoChangeCluster
	seen := make(map[pairKey]struct{})
	for _, p := range ranked {
		if len(clusters) >= opts.Limit {
			break
		}
		ratio := math.Max(
			float64(p.count)/float64(fileTotals[p.key.a]),
			float64(p.count)/float64(fileTotals[p.key.b]),
		)
		if ratio < opts.MinRatio {
			continue
		}
		if isTestPath(p.key.a) != isTestPath(p.key.b) {
			continue
		}
		if isTypesPath(p.key.a) != isTypesPath(p.key.b) {
			continue
		}
		if _, dup := seen[p.key]; dup {
			continue
		}
		seen[p.key] = struct{}{}
		clusters = append(clusters, schema.CoChangeCluster{
			Files:   [2]string{p.key.a, p.key.b},
			Commits: p.count,
			Ratio:   math.Round(ratio*100) / 100,
		})
	}
	return clusters
}

// uniqueFiles drops repeated paths while keeping first-seen order.
func uniqueFiles(files []string) []string {
	if len(files) < 2 {
		return files
	}
	seen := make(map[string]struct{}, len(files))
	out := make([]string, 0, len(files))
	for _, f := range files {
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}

// isTestPath is a substring heuristic; "latest.go" counts as a test path.
func isTestPath(p string) bool {
	lower := strings.ToLower(p)
	return strings.Contains(lower, "test") || strings.Contains(lower, "spec")
}

func isTypesPath(p string) bool {
	return strings.Contains(strings.ToLower(p), "types") || strings.Contains(p, ".d.ts")
}

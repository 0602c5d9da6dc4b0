package scan

import (
	"path"
	"slices"

	"github.com/huangsam/recon/core/classify"
	"github.com/huangsam/recon/core/history"
	"github.com/huangsam/recon/schema"
)

// todoDirLimit caps the directories listed in the TODO summary.
const todoDirLimit = 10

// folded is the reduction of all per-file results in walk order.
type folded struct {
	files          []schema.FileEntry
	skipped        []schema.Skip
	totalTokens    int
	duplicates     map[string][]string
	configSurface  map[string][]string
	generatedFiles []string
	todos          schema.TodoSummary
}

// fold reduces per-file results, in walk order, into report sections.
// Git columns are filled from hist when it is available.
func fold(results []fileResult, hist *history.Output) folded {
	out := folded{
		files:          []schema.FileEntry{},
		skipped:        []schema.Skip{},
		configSurface:  map[string][]string{},
		generatedFiles: []string{},
	}
	byHash := map[string][]string{}
	var hashOrder []string
	todoByDir := map[string]int{}
	var dirOrder []string

	for _, r := range results {
		if r.skip != nil {
			out.skipped = append(out.skipped, *r.skip)
			continue
		}
		f := *r.entry
		if hist != nil && hist.Available {
			f.GitCommits90d = hist.Churn[f.Path]
			f.GitLastCommit = hist.Staleness[f.Path]
		}
		out.files = append(out.files, f)
		out.totalTokens += f.Tokens

		if _, seen := byHash[f.ContentHash]; !seen {
			hashOrder = append(hashOrder, f.ContentHash)
		}
		byHash[f.ContentHash] = append(byHash[f.ContentHash], f.Path)

		for _, c := range r.categories {
			if c == classify.CategoryGenerated {
				out.generatedFiles = append(out.generatedFiles, f.Path)
				continue
			}
			out.configSurface[string(c)] = append(out.configSurface[string(c)], f.Path)
		}

		out.todos.TotalTodos += f.TodoCount
		out.todos.TotalFixmes += f.FixmeCount
		if n := f.TodoCount + f.FixmeCount; n > 0 {
			dir := path.Dir(f.Path)
			if _, seen := todoByDir[dir]; !seen {
				dirOrder = append(dirOrder, dir)
			}
			todoByDir[dir] += n
		}
	}

	out.duplicates = map[string][]string{}
	for _, h := range hashOrder {
		if paths := byHash[h]; len(paths) > 1 {
			out.duplicates[h] = paths
		}
	}
	out.todos.ByDirectory = topDirs(todoByDir, dirOrder)
	return out
}

// topDirs orders directories by count, keeping first-seen order among ties.
func topDirs(counts map[string]int, order []string) schema.DirCounts {
	dirs := make(schema.DirCounts, 0, len(order))
	for _, d := range order {
		dirs = append(dirs, schema.DirCount{Dir: d, Count: counts[d]})
	}
	slices.SortStableFunc(dirs, func(a, b schema.DirCount) int {
		return b.Count - a.Count
	})
	if len(dirs) > todoDirLimit {
		dirs = dirs[:todoDirLimit]
	}
	return dirs
}

// sortFiles orders files by churn when requested and history is available,
// otherwise by tokens, both descending. Ties keep walk order.
func sortFiles(files []schema.FileEntry, key schema.SortKey, gitAvailable bool) {
	byChurn := key == schema.SortByChurn && gitAvailable
	slices.SortStableFunc(files, func(a, b schema.FileEntry) int {
		if byChurn {
			return b.GitCommits90d - a.GitCommits90d
		}
		return b.Tokens - a.Tokens
	})
}

// limitFiles keeps the first n files; n <= 0 keeps all.
func limitFiles(files []schema.FileEntry, n int) []schema.FileEntry {
	if n > 0 && len(files) > n {
		return files[:n]
	}
	return files
}

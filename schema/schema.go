// Package schema has the report model shared by the scanner, writers and stores.
package schema

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Report is the complete result of one scan.
type Report struct {
	Root           string              `json:"root" yaml:"root"`
	ScannerVersion string              `json:"scanner_version" yaml:"scanner_version"`
	Timestamp      string              `json:"timestamp" yaml:"timestamp"`
	Args           ScanArgs            `json:"args" yaml:"args"`
	Files          []FileEntry         `json:"files" yaml:"files"`
	Directories    []string            `json:"directories" yaml:"directories"`
	TotalTokens    int                 `json:"total_tokens" yaml:"total_tokens"`
	TotalFiles     int                 `json:"total_files" yaml:"total_files"`
	Skipped        []Skip              `json:"skipped" yaml:"skipped"`
	Entrypoints    []Entrypoint        `json:"entrypoints" yaml:"entrypoints"`
	ConfigSurface  map[string][]string `json:"config_surface" yaml:"config_surface"`
	Duplicates     map[string][]string `json:"duplicates" yaml:"duplicates"`
	GitAvailable   bool                `json:"git_available" yaml:"git_available"`
	GitStats       GitStats            `json:"git_stats" yaml:"git_stats"`
	GeneratedFiles []string            `json:"generated_files" yaml:"generated_files"`
	TodoSummary    TodoSummary         `json:"todo_summary" yaml:"todo_summary"`
}

// ScanArgs echoes the arguments that shaped a scan.
type ScanArgs struct {
	MaxFileTokens   int      `json:"max_file_tokens" yaml:"max_file_tokens"`
	IncludePatterns []string `json:"include_patterns" yaml:"include_patterns"`
	ExcludePatterns []string `json:"exclude_patterns" yaml:"exclude_patterns"`
	Extensions      []string `json:"extensions" yaml:"extensions"`
	TopN            *int     `json:"top_n" yaml:"top_n"`
	SortBy          SortKey  `json:"sort_by" yaml:"sort_by"`
	Encoding        string   `json:"encoding" yaml:"encoding"`
	ChurnDays       int      `json:"churn_days" yaml:"churn_days"`
}

// FileEntry holds the per-file metrics of an analyzed file.
type FileEntry struct {
	Path          string `json:"path" yaml:"path"`
	Tokens        int    `json:"tokens" yaml:"tokens"`
	SizeBytes     int64  `json:"size_bytes" yaml:"size_bytes"`
	ContentHash   string `json:"content_hash,omitempty" yaml:"content_hash,omitempty"`
	IsGenerated   bool   `json:"is_generated,omitempty" yaml:"is_generated,omitempty"`
	TodoCount     int    `json:"todo_count,omitempty" yaml:"todo_count,omitempty"`
	FixmeCount    int    `json:"fixme_count,omitempty" yaml:"fixme_count,omitempty"`
	GitCommits90d int    `json:"git_commits_90d,omitempty" yaml:"git_commits_90d,omitempty"`
	GitLastCommit string `json:"git_last_commit,omitempty" yaml:"git_last_commit,omitempty"`
}

// Skip records a path that could not be analyzed and why.
type Skip struct {
	Path      string     `json:"path" yaml:"path"`
	Reason    SkipReason `json:"reason" yaml:"reason"`
	SizeBytes *int64     `json:"size_bytes,omitempty" yaml:"size_bytes,omitempty"`
	Tokens    *int       `json:"tokens,omitempty" yaml:"tokens,omitempty"`
}

// Entrypoint is a likely starting point for reading the codebase.
type Entrypoint struct {
	Path     string `json:"path" yaml:"path"`
	Type     string `json:"type" yaml:"type"`
	Evidence string `json:"evidence" yaml:"evidence"`
}

// GitStats summarizes history-derived signals.
// The zero value renders as an empty object.
type GitStats struct {
	Available        bool              `json:"-" yaml:"-"`
	Hotspots         []Hotspot         `json:"hotspots" yaml:"hotspots"`
	StaleFiles       []StaleFile       `json:"stale_files" yaml:"stale_files"`
	CoChangeClusters []CoChangeCluster `json:"cochange_clusters" yaml:"cochange_clusters"`
}

// MarshalJSON renders an empty object when history was unavailable.
func (g GitStats) MarshalJSON() ([]byte, error) {
	if !g.Available {
		return []byte("{}"), nil
	}
	type alias GitStats
	return json.Marshal(alias(g))
}

// MarshalYAML mirrors MarshalJSON.
func (g GitStats) MarshalYAML() (any, error) {
	if !g.Available {
		return map[string]any{}, nil
	}
	type alias GitStats
	return alias(g), nil
}

// Hotspot is a file with many recent commits.
type Hotspot struct {
	Path       string `json:"path" yaml:"path"`
	Commits90d int    `json:"commits_90d" yaml:"commits_90d"`
}

// StaleFile is a file whose last commit is old.
type StaleFile struct {
	Path       string `json:"path" yaml:"path"`
	LastCommit string `json:"last_commit" yaml:"last_commit"`
	DaysStale  int    `json:"days_stale" yaml:"days_stale"`
}

// CommitRecord is one commit reconstructed from a flat log.
// Files holds each path once, in first-seen order.
type CommitRecord struct {
	Hash      string   `json:"hash,omitempty"`
	Timestamp string   `json:"timestamp,omitempty"`
	Files     []string `json:"files"`
}

// CoChangeCluster is a pair of files that tend to change in the same commit.
// Files are stored in sorted order.
type CoChangeCluster struct {
	Files   [2]string `json:"files" yaml:"files"`
	Commits int       `json:"commits" yaml:"commits"`
	Ratio   float64   `json:"ratio" yaml:"ratio"`
}

// TodoSummary aggregates TODO and FIXME markers.
type TodoSummary struct {
	TotalTodos  int       `json:"total_todos" yaml:"total_todos"`
	TotalFixmes int       `json:"total_fixmes" yaml:"total_fixmes"`
	ByDirectory DirCounts `json:"by_directory" yaml:"by_directory"`
}

// DirCount is a marker count for one directory.
type DirCount struct {
	Dir   string
	Count int
}

// DirCounts is an ordered directory -> count mapping.
// It renders as an object whose keys keep slice order.
type DirCounts []DirCount

// MarshalJSON writes the counts as an ordered JSON object.
func (d DirCounts) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, dc := range d {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(dc.Dir)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(dc.Count)
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads an object written by MarshalJSON, keeping key order.
func (d *DirCounts) UnmarshalJSON(data []byte) error {
	if string(bytes.TrimSpace(data)) == "null" {
		*d = nil
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("directory counts must be an object, got %v", tok)
	}
	out := DirCounts{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		dir, ok := tok.(string)
		if !ok {
			return fmt.Errorf("directory counts: unexpected key %v", tok)
		}
		var count int
		if err := dec.Decode(&count); err != nil {
			return fmt.Errorf("directory counts: %s: %w", dir, err)
		}
		out = append(out, DirCount{Dir: dir, Count: count})
	}
	*d = out
	return nil
}

// MarshalYAML writes the counts as an ordered YAML mapping.
func (d DirCounts) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, dc := range d {
		var val yaml.Node
		if err := val.Encode(dc.Count); err != nil {
			return nil, err
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: dc.Dir},
			&val,
		)
	}
	return node, nil
}

// Lookup returns the count recorded for dir.
func (d DirCounts) Lookup(dir string) (int, bool) {
	for _, dc := range d {
		if dc.Dir == dir {
			return dc.Count, true
		}
	}
	return 0, false
}

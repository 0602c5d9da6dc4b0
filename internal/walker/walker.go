// Package walker traverses a source tree depth-first, pruning ignored paths.
package walker

import (
	"errors"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/huangsam/recon/internal/contract"
	"github.com/huangsam/recon/schema"
	"github.com/sirupsen/logrus"
)

// PathFilter decides whether a root-relative, slash-separated path is excluded.
type PathFilter interface {
	IsIgnored(relPath string, isDir bool) bool
}

// Entry is a path that survived ignore evaluation.
type Entry struct {
	Path  string // slash-separated, relative to the root
	IsDir bool
}

// Result holds the walk output in visit order plus the paths that could not be visited.
type Result struct {
	Entries []Entry
	Skipped []schema.Skip
}

// Files returns the file entries in walk order.
func (r Result) Files() []string {
	return r.collect(false)
}

// Dirs returns the directory entries in walk order.
func (r Result) Dirs() []string {
	return r.collect(true)
}

func (r Result) collect(dirs bool) []string {
	var out []string
	for _, e := range r.Entries {
		if e.IsDir == dirs {
			out = append(out, e.Path)
		}
	}
	return out
}

// Walk visits root depth-first. Directories come before files at every level,
// each group ordered by case-insensitive name. Ignored directories are not entered.
func Walk(root string, filter PathFilter) Result {
	w := &walk{root: root, filter: filter}
	w.visitDir("")
	return w.result
}

type walk struct {
	root   string
	filter PathFilter
	result Result
}

type child struct {
	name  string
	isDir bool
}

func (w *walk) visitDir(rel string) {
	children, err := w.readDir(rel)
	if err != nil {
		reason := schema.SkipReadDir
		if errors.Is(err, fs.ErrPermission) {
			reason = schema.SkipPermissionDenied
		}
		skipPath := rel
		if skipPath == "" {
			skipPath = "."
		}
		contract.LogDebug("abandoning subtree", logrus.Fields{"path": skipPath, "error": err})
		w.result.Skipped = append(w.result.Skipped, schema.Skip{Path: skipPath, Reason: reason})
		return
	}

	for _, c := range children {
		childRel := c.name
		if rel != "" {
			childRel = path.Join(rel, c.name)
		}
		if w.filter != nil && w.filter.IsIgnored(childRel, c.isDir) {
			continue
		}
		w.result.Entries = append(w.result.Entries, Entry{Path: childRel, IsDir: c.isDir})
		if c.isDir {
			w.visitDir(childRel)
		}
	}
}

// readDir lists a directory in walk order. Symlinks to files count as files;
// symlinked directories and dangling links are left out so the walk cannot cycle.
func (w *walk) readDir(rel string) ([]child, error) {
	entries, err := os.ReadDir(filepath.Join(w.root, filepath.FromSlash(rel)))
	if err != nil {
		return nil, err
	}

	children := make([]child, 0, len(entries))
	for _, e := range entries {
		c := child{name: e.Name(), isDir: e.IsDir()}
		if e.Type()&fs.ModeSymlink != 0 {
			info, statErr := os.Stat(filepath.Join(w.root, filepath.FromSlash(rel), e.Name()))
			if statErr != nil || info.IsDir() {
				continue
			}
		} else if !e.IsDir() && !e.Type().IsRegular() {
			// sockets, devices and pipes
			continue
		}
		children = append(children, c)
	}

	slices.SortFunc(children, func(a, b child) int {
		if a.isDir != b.isDir {
			if a.isDir {
				return -1
			}
			return 1
		}
		if c := strings.Compare(strings.ToLower(a.name), strings.ToLower(b.name)); c != 0 {
			return c
		}
		return strings.Compare(a.name, b.name)
	})
	return children, nil
}

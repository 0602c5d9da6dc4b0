package scan

import (
	"path"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Filter is the caller-supplied include decision applied to walked files.
type Filter struct {
	Extensions []string // ".go" and "go" are both accepted
	Include    []string // at least one must match, when set
	Exclude    []string // none may match
}

// Allows reports whether relPath passes the extension, include and exclude checks.
func (f Filter) Allows(relPath string) bool {
	if len(f.Extensions) > 0 {
		ext := strings.ToLower(path.Ext(relPath))
		if !slices.Contains(f.Extensions, ext) && !slices.Contains(f.Extensions, strings.TrimPrefix(ext, ".")) {
			return false
		}
	}
	if len(f.Include) > 0 && !anyMatch(f.Include, relPath) {
		return false
	}
	return !anyMatch(f.Exclude, relPath)
}

func anyMatch(patterns []string, relPath string) bool {
	for _, p := range patterns {
		if ok, err := doublestar.Match(p, relPath); err == nil && ok {
			return true
		}
	}
	return false
}

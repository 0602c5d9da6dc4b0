package ignore

import "strings"

// DefaultDenyDirs lists directory names that are never descended into.
// A regular file with one of these names is still scanned.
var DefaultDenyDirs = []string{
	// VCS and dependency directories
	".svn", ".hg", "node_modules", "__pycache__", ".pytest_cache",
	".mypy_cache", ".ruff_cache", "venv", ".venv", "env",
	// build output
	"dist", "build", ".next", ".nuxt", ".output", "coverage",
	".nyc_output", "target", "vendor", ".bundle", ".cargo",
}

// DefaultDeny lists names that are excluded everywhere, files and directories alike.
// Entries containing '*' are globs against the base name; the rest must match it exactly.
// .git is here because worktrees and submodules carry it as a file.
var DefaultDeny = []string{
	".git", ".env", ".coverage",
	// OS droppings, compiled artifacts and lockfiles
	".DS_Store", "Thumbs.db", "*.pyc", "*.pyo", "*.so", "*.dylib", "*.dll",
	"*.exe", "*.o", "*.a", "*.lib", "*.class", "*.jar", "*.war", "*.egg",
	"*.whl", "*.lock", "package-lock.json", "yarn.lock", "pnpm-lock.yaml",
	"bun.lockb", "Cargo.lock", "poetry.lock", "Gemfile.lock", "composer.lock",
	// media and archives
	"*.png", "*.jpg", "*.jpeg", "*.gif", "*.ico", "*.svg", "*.webp", "*.mp3",
	"*.mp4", "*.wav", "*.avi", "*.mov", "*.pdf", "*.zip", "*.tar", "*.gz",
	"*.rar", "*.7z", "*.woff", "*.woff2", "*.ttf", "*.eot", "*.otf",
	// bundles
	"*.min.js", "*.min.css", "*.map", "*.chunk.js", "*.bundle.js",
}

type denyList struct {
	dirs  map[string]struct{}
	exact map[string]struct{}
	globs []string
}

func newDenyList(dirs, entries []string) denyList {
	d := denyList{
		dirs:  make(map[string]struct{}, len(dirs)),
		exact: make(map[string]struct{}, len(entries)),
	}
	for _, e := range dirs {
		d.dirs[e] = struct{}{}
	}
	for _, e := range entries {
		if strings.Contains(e, "*") {
			d.globs = append(d.globs, e)
		} else {
			d.exact[e] = struct{}{}
		}
	}
	return d
}

func (d denyList) denies(name string, isDir bool) bool {
	if _, ok := d.dirs[name]; ok && isDir {
		return true
	}
	if _, ok := d.exact[name]; ok {
		return true
	}
	for _, g := range d.globs {
		if globMatch(g, name) {
			return true
		}
	}
	return false
}

// Package ignore implements gitignore-style rule collection and path matching
// scoped to the directory that declared each rule.
//
// Patterns follow gitignore globbing: '*' never crosses a '/', so docs/*.md
// excludes docs/a.md but not docs/a/b.md. Use docs/**/*.md for any depth.
package ignore

import (
	"bufio"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// FileName is the per-directory ignore file consulted during collection.
const FileName = ".gitignore"

// heavyDirs are never descended into while looking for nested ignore files.
var heavyDirs = map[string]struct{}{
	".git":         {},
	"node_modules": {},
	".venv":        {},
	"venv":         {},
	"vendor":       {},
}

// Rule is a single parsed ignore line.
type Rule struct {
	Pattern   string
	Negated   bool
	DirOnly   bool
	Anchored  bool
	OriginDir string // slash-separated, relative to the scan root; "" for the root
}

// RuleSet is an ordered list of rules. Later rules override earlier ones.
type RuleSet []Rule

// ParseRules reads ignore lines from r. Lines that cannot form a valid glob are dropped.
func ParseRules(r io.Reader, originDir string) []Rule {
	var rules []Rule
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if rule, ok := parseLine(scanner.Text(), originDir); ok {
			rules = append(rules, rule)
		}
	}
	// A read error keeps whatever was parsed up to that point.
	return rules
}

func parseLine(line, originDir string) (Rule, bool) {
	line = strings.TrimRight(line, "\r")
	if line == "" || strings.HasPrefix(line, "#") {
		return Rule{}, false
	}

	rule := Rule{OriginDir: originDir}
	if strings.HasPrefix(line, "!") {
		rule.Negated = true
		line = line[1:]
	}
	if strings.HasSuffix(line, "/") {
		rule.DirOnly = true
		line = line[:len(line)-1]
	}
	if strings.HasPrefix(line, "/") {
		rule.Anchored = true
		line = line[1:]
	}
	if strings.Contains(line, "/") {
		rule.Anchored = true
	}

	if line == "" || !doublestar.ValidatePattern(line) {
		return Rule{}, false
	}
	rule.Pattern = line
	return rule, true
}

// ParseFile parses the ignore file at filePath. A missing or unreadable file yields no rules.
func ParseFile(filePath, originDir string) []Rule {
	f, err := os.Open(filePath)
	if err != nil {
		return nil
	}
	defer func() { _ = f.Close() }()
	return ParseRules(f, originDir)
}

// CollectRules gathers the root ignore file followed by every nested one,
// in lexical directory order, skipping dependency and VCS directories.
func CollectRules(root string) RuleSet {
	rules := RuleSet(ParseFile(filepath.Join(root, FileName), ""))

	_ = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable subtrees contribute nothing.
			if d != nil && d.IsDir() && p != root {
				return fs.SkipDir
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if p == root {
			return nil
		}
		if _, heavy := heavyDirs[d.Name()]; heavy {
			return fs.SkipDir
		}
		rel, relErr := filepath.Rel(root, p)
		if relErr != nil {
			return fs.SkipDir
		}
		rules = append(rules, ParseFile(filepath.Join(p, FileName), filepath.ToSlash(rel))...)
		return nil
	})
	return rules
}

// appliesTo reports whether the rule's origin directory is a strict ancestor of relPath
// and returns relPath re-rooted at the origin.
func (r Rule) appliesTo(relPath string) (string, bool) {
	if r.OriginDir == "" {
		return relPath, true
	}
	rest, ok := strings.CutPrefix(relPath, r.OriginDir+"/")
	if !ok || rest == "" {
		return "", false
	}
	return rest, true
}

// matches evaluates the rule pattern against a path relative to the rule's origin.
func (r Rule) matches(rel string) bool {
	if r.Anchored {
		if globMatch(r.Pattern, rel) || globMatch(r.Pattern+"/**", rel) {
			return true
		}
		prefix := ""
		for part := range strings.SplitSeq(rel, "/") {
			if prefix == "" {
				prefix = part
			} else {
				prefix += "/" + part
			}
			if globMatch(r.Pattern, prefix) {
				return true
			}
		}
		return false
	}

	if globMatch(r.Pattern, path.Base(rel)) || globMatch(r.Pattern, rel) {
		return true
	}
	for part := range strings.SplitSeq(rel, "/") {
		if globMatch(r.Pattern, part) {
			return true
		}
	}
	return false
}

func globMatch(pattern, name string) bool {
	ok, err := doublestar.Match(pattern, name)
	return err == nil && ok
}

package ignore

import (
	"path"
	"strings"
)

// Matcher decides whether a path below the scan root is excluded.
type Matcher struct {
	rules RuleSet
	deny  denyList
}

// NewMatcher builds a matcher over rules plus the built-in deny list.
func NewMatcher(rules RuleSet) *Matcher {
	return &Matcher{rules: rules, deny: newDenyList(DefaultDenyDirs, DefaultDeny)}
}

// Load collects every ignore file below root and returns a matcher for them.
func Load(root string) *Matcher {
	return NewMatcher(CollectRules(root))
}

// Rules returns the collected rule set.
func (m *Matcher) Rules() RuleSet {
	return m.rules
}

// IsIgnored reports whether relPath (slash-separated, relative to the root) is excluded.
// The deny list is consulted first; after that the last matching rule wins.
func (m *Matcher) IsIgnored(relPath string, isDir bool) bool {
	relPath = strings.Trim(relPath, "/")
	if relPath == "" || relPath == "." {
		return false
	}
	if m.deny.denies(path.Base(relPath), isDir) {
		return true
	}

	matched := false
	for _, rule := range m.rules {
		if rule.DirOnly && !isDir {
			continue
		}
		rel, ok := rule.appliesTo(relPath)
		if !ok {
			continue
		}
		if rule.matches(rel) {
			matched = !rule.Negated
		}
	}
	return matched
}

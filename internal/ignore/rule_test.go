package ignore

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRules(t *testing.T) {
	input := strings.Join([]string{
		"# comment",
		"",
		"*.log\r",
		"!keep.log",
		"build/",
		"/secret.txt",
		"docs/internal",
		"!/generated/",
		"[",
	}, "\n")

	rules := ParseRules(strings.NewReader(input), "sub")
	require.Len(t, rules, 6, "comments, blanks and invalid globs are dropped")

	expected := []Rule{
		{Pattern: "*.log", OriginDir: "sub"},
		{Pattern: "keep.log", Negated: true, OriginDir: "sub"},
		{Pattern: "build", DirOnly: true, OriginDir: "sub"},
		{Pattern: "secret.txt", Anchored: true, OriginDir: "sub"},
		{Pattern: "docs/internal", Anchored: true, OriginDir: "sub"},
		{Pattern: "generated", Negated: true, DirOnly: true, Anchored: true, OriginDir: "sub"},
	}
	assert.Equal(t, expected, rules)
}

func TestParseFile_Missing(t *testing.T) {
	assert.Empty(t, ParseFile(filepath.Join(t.TempDir(), FileName), ""))
}

func TestCollectRules_OrderAndScope(t *testing.T) {
	root := t.TempDir()
	write := func(rel, content string) {
		full := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
	write(".gitignore", "*.tmp\n")
	write("b/.gitignore", "b-rule\n")
	write("a/.gitignore", "a-rule\n")
	write("a/deep/.gitignore", "deep-rule\n")
	write("node_modules/pkg/.gitignore", "never\n")
	write("vendor/.gitignore", "never\n")

	rules := CollectRules(root)

	var got []string
	for _, r := range rules {
		got = append(got, r.OriginDir+":"+r.Pattern)
	}
	assert.Equal(t, []string{":*.tmp", "a:a-rule", "a/deep:deep-rule", "b:b-rule"}, got)
}

func TestRuleMatches(t *testing.T) {
	tests := []struct {
		name     string
		rule     Rule
		rel      string
		expected bool
	}{
		{"unanchored base name", Rule{Pattern: "*.log"}, "logs/a.log", true},
		{"unanchored component", Rule{Pattern: "cache"}, "x/cache/y.txt", true},
		{"unanchored no match", Rule{Pattern: "*.log"}, "a.txt", false},
		{"anchored full path", Rule{Pattern: "docs/internal", Anchored: true}, "docs/internal", true},
		{"anchored descendant", Rule{Pattern: "docs/internal", Anchored: true}, "docs/internal/a.md", true},
		{"anchored prefix only", Rule{Pattern: "secret", Anchored: true}, "secret/key.pem", true},
		{"anchored not at origin", Rule{Pattern: "secret", Anchored: true}, "app/secret", false},
		{"double star", Rule{Pattern: "**/fixtures", Anchored: true}, "a/b/fixtures/x.json", true},
		{"star within one level", Rule{Pattern: "docs/*.md", Anchored: true}, "docs/a.md", true},
		{"star does not cross slash", Rule{Pattern: "docs/*.md", Anchored: true}, "docs/a/b.md", false},
		{"double star crosses slash", Rule{Pattern: "docs/**/*.md", Anchored: true}, "docs/a/b.md", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.rule.matches(tt.rel))
		})
	}
}

package walker

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/huangsam/recon/internal/ignore"
	"github.com/huangsam/recon/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		full := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
}

func TestWalk_GitignoreScenario(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		".gitignore":    "*.log\n!keep.log\nbuild/\n",
		"a.log":         "x",
		"keep.log":      "x",
		"build/out.txt": "x",
		"src/main.txt":  "x",
	})

	res := Walk(root, ignore.Load(root))

	assert.Equal(t, []string{"src/main.txt", ".gitignore", "keep.log"}, res.Files())
	assert.Equal(t, []string{"src"}, res.Dirs())
	assert.Empty(t, res.Skipped)
}

func TestWalk_DirOnlyRuleKeepsSameNamedFile(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		".gitignore":          "out/\n",
		"out/result.txt":      "x",
		"out/nested/deep.txt": "x",
		"pkg/out":             "a file named out",
	})

	res := Walk(root, ignore.Load(root))

	assert.Equal(t, []string{"pkg/out", ".gitignore"}, res.Files())
	assert.Equal(t, []string{"pkg"}, res.Dirs())
}

func TestWalk_NestedAnchoredRuleIsScoped(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"app/.gitignore":       "/fixtures\n",
		"app/fixtures/a.json":  "{}",
		"lib/fixtures/b.json":  "{}",
		"app/sub/fixtures/c.j": "{}",
	})

	res := Walk(root, ignore.Load(root))

	assert.Equal(t, []string{"app/sub/fixtures/c.j", "app/.gitignore", "lib/fixtures/b.json"}, res.Files())
}

func TestWalk_DefaultDenyWithoutIgnoreFile(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		".git/HEAD":               "ref: refs/heads/main",
		"node_modules/x/index.js": "x",
		"web/node_modules/y.js":   "x",
		"web/app.js":              "x",
		"web/logo.png":            "x",
		"web/dist/bundle.js":      "x",
		"README.md":               "# hi",
	})

	res := Walk(root, ignore.NewMatcher(nil))

	assert.Equal(t, []string{"web/app.js", "README.md"}, res.Files())
}

func TestWalk_BuildDirRuleKeepsBuildFile(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		".gitignore":   "build/\n",
		"build/out.js": "x",
		"pkg/build":    "#!/bin/sh",
		"pkg/main.go":  "package main",
	})

	res := Walk(root, ignore.Load(root))

	assert.Equal(t, []string{"pkg/build", "pkg/main.go", ".gitignore"}, res.Files())
}

func TestWalk_Order(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"b.txt":       "x",
		"A.txt":       "x",
		"zeta/z.txt":  "x",
		"Alpha/a.txt": "x",
		"c.txt":       "x",
	})

	res := Walk(root, nil)

	var paths []string
	for _, e := range res.Entries {
		paths = append(paths, e.Path)
	}
	assert.Equal(t, []string{"Alpha", "Alpha/a.txt", "zeta", "zeta/z.txt", "A.txt", "b.txt", "c.txt"}, paths)
}

func TestWalk_Deterministic(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"x/1.go": "a", "x/2.go": "b", "y/Z.go": "c", "y/a.go": "d", "top.md": "e",
	})

	first := Walk(root, ignore.Load(root))
	second := Walk(root, ignore.Load(root))
	assert.Equal(t, first, second)
}

func TestWalk_PermissionDenied(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced for this user")
	}
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"open/a.txt":   "x",
		"locked/b.txt": "x",
	})
	locked := filepath.Join(root, "locked")
	require.NoError(t, os.Chmod(locked, 0o000))
	t.Cleanup(func() { _ = os.Chmod(locked, 0o755) })

	res := Walk(root, nil)

	assert.Equal(t, []string{"open/a.txt"}, res.Files())
	assert.Equal(t, []string{"locked", "open"}, res.Dirs())
	require.Len(t, res.Skipped, 1)
	assert.Equal(t, schema.Skip{Path: "locked", Reason: schema.SkipPermissionDenied}, res.Skipped[0])
}

package scan

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/huangsam/recon/internal/contract"
	"github.com/huangsam/recon/internal/gittest"
	"github.com/huangsam/recon/internal/iocache"
	"github.com/huangsam/recon/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testConfig(root string) *contract.Config {
	return &contract.Config{
		RootPath:           root,
		Output:             schema.JSONOut,
		MaxFileTokens:      contract.DefaultMaxFileTokens,
		Encoding:           contract.DefaultEncoding,
		SortBy:             schema.SortByTokens,
		Workers:            4,
		NoGit:              true,
		ChurnDays:          contract.DefaultChurnDays,
		MinCoChangeCommits: contract.DefaultMinCoChangeCommits,
		MinCoChangeRatio:   contract.DefaultMinCoChangeRatio,
	}
}

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		full := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
}

func runScan(t *testing.T, cfg *contract.Config, client contract.GitClient, mgr contract.CacheManager) *schema.Report {
	t.Helper()
	s, err := NewScanner(cfg, client, mgr)
	require.NoError(t, err)
	report, err := s.Run(context.Background())
	require.NoError(t, err)
	return report
}

func filePaths(files []schema.FileEntry) []string {
	paths := make([]string, 0, len(files))
	for _, f := range files {
		paths = append(paths, f.Path)
	}
	return paths
}

func TestNewScanner_UnknownEncoding(t *testing.T) {
	cfg := testConfig(t.TempDir())
	cfg.Encoding = "no_such_encoding"
	_, err := NewScanner(cfg, nil, nil)
	assert.Error(t, err)
}

func TestRun_RespectsIgnoreRules(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		".gitignore":          "*.log\n!keep.log\n",
		"debug.log":           "noise\n",
		"keep.log":            "kept\n",
		"src/main.go":         "package main\n\nfunc main() {}\n",
		"node_modules/pkg.js": "module.exports = {}\n",
	})

	report := runScan(t, testConfig(root), nil, nil)

	assert.ElementsMatch(t, []string{".gitignore", "keep.log", "src/main.go"}, filePaths(report.Files))
	assert.Equal(t, []string{"src"}, report.Directories)
	assert.Equal(t, 3, report.TotalFiles)
	assert.Empty(t, report.Skipped)
	assert.False(t, report.GitAvailable)
	assert.False(t, report.GitStats.Available)
	assert.Equal(t, schema.ScannerVersion, report.ScannerVersion)
	assert.Equal(t, root, report.Root)
}

func TestRun_TotalsAndArgs(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"a.txt": "hello world\n",
		"b.txt": "one two three four five six seven\n",
	})

	cfg := testConfig(root)
	cfg.TopN = 1
	report := runScan(t, cfg, nil, nil)

	require.Len(t, report.Files, 1)
	assert.Equal(t, "b.txt", report.Files[0].Path, "most tokens first")
	assert.Equal(t, 1, report.TotalFiles, "total reflects the capped list")
	require.NotNil(t, report.Args.TopN)
	assert.Equal(t, 1, *report.Args.TopN)
	assert.Nil(t, report.Args.Extensions)
	assert.Equal(t, contract.DefaultEncoding, report.Args.Encoding)

	full := runScan(t, testConfig(root), nil, nil)
	sum := 0
	for _, f := range full.Files {
		sum += f.Tokens
	}
	assert.Equal(t, sum, full.TotalTokens)
	assert.Equal(t, full.TotalTokens, report.TotalTokens, "total tokens cover files beyond the cap")
	assert.Nil(t, full.Args.TopN)
}

func TestRun_SkipReasons(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"big.txt":   strings.Repeat("a", MaxFileBytes+1),
		"image.bin": "\x89PNG\x00\x00\x01\x02",
		"words.txt": strings.Repeat("lorem ipsum dolor sit amet ", 20),
		"ok.txt":    "hi\n",
	})

	cfg := testConfig(root)
	cfg.MaxFileTokens = 10
	report := runScan(t, cfg, nil, nil)

	reasons := map[string]schema.Skip{}
	for _, s := range report.Skipped {
		reasons[s.Path] = s
	}
	require.Contains(t, reasons, "big.txt")
	assert.Equal(t, schema.SkipTooLarge, reasons["big.txt"].Reason)
	require.NotNil(t, reasons["big.txt"].SizeBytes)
	assert.Equal(t, int64(MaxFileBytes+1), *reasons["big.txt"].SizeBytes)

	require.Contains(t, reasons, "image.bin")
	assert.Equal(t, schema.SkipBinary, reasons["image.bin"].Reason)

	require.Contains(t, reasons, "words.txt")
	assert.Equal(t, schema.SkipTooManyTokens, reasons["words.txt"].Reason)
	require.NotNil(t, reasons["words.txt"].Tokens)
	assert.Greater(t, *reasons["words.txt"].Tokens, 10)

	assert.Equal(t, []string{"ok.txt"}, filePaths(report.Files))
}

func TestRun_Filters(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"cmd/main.go":      "package main\n",
		"cmd/main_test.go": "package main\n",
		"README.md":        "# readme\n",
		"pkg/util.go":      "package pkg\n",
	})

	cfg := testConfig(root)
	cfg.Extensions = []string{"go"}
	cfg.ExcludePatterns = []string{"**/*_test.go"}
	cfg.IncludePatterns = []string{"cmd/**"}
	report := runScan(t, cfg, nil, nil)

	assert.Equal(t, []string{"cmd/main.go"}, filePaths(report.Files))
	assert.Equal(t, []string{"go"}, report.Args.Extensions)
}

func TestRun_DuplicatesGeneratedAndTodos(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"a/copy.txt":         "same content\n",
		"b/copy.txt":         "same content\n",
		"unique.txt":         "different\n",
		"api/client.go":      "// Code generated by protoc. DO NOT EDIT.\npackage api\n",
		"src/work.py":        "# TODO: one\n# TODO: two\n# FIXME: three\n",
		"notes.txt":          "TODO tidy\n",
		"docker-compose.yml": "services: {}\n",
	})

	report := runScan(t, testConfig(root), nil, nil)

	require.Len(t, report.Duplicates, 1)
	for hash, paths := range report.Duplicates {
		assert.Len(t, hash, 16)
		assert.Equal(t, []string{"a/copy.txt", "b/copy.txt"}, paths, "walk order")
	}

	assert.Equal(t, []string{"api/client.go"}, report.GeneratedFiles)
	assert.Equal(t, map[string][]string{"docker": {"docker-compose.yml"}}, report.ConfigSurface)

	assert.Equal(t, 3, report.TodoSummary.TotalTodos)
	assert.Equal(t, 1, report.TodoSummary.TotalFixmes)
	require.Len(t, report.TodoSummary.ByDirectory, 2)
	assert.Equal(t, schema.DirCount{Dir: "src", Count: 3}, report.TodoSummary.ByDirectory[0])
	assert.Equal(t, schema.DirCount{Dir: ".", Count: 1}, report.TodoSummary.ByDirectory[1])
}

func TestRun_DeterministicAcrossWorkers(t *testing.T) {
	root := t.TempDir()
	files := map[string]string{}
	for i := range 40 {
		dir := []string{"alpha", "beta", "gamma"}[i%3]
		files[fmt.Sprintf("%s/f%02d.txt", dir, i)] = strings.Repeat("token ", i%7+1)
	}
	writeTree(t, root, files)

	serial := testConfig(root)
	serial.Workers = 1
	parallel := testConfig(root)
	parallel.Workers = 8

	a := runScan(t, serial, nil, nil)
	b := runScan(t, parallel, nil, nil)
	b.Timestamp = a.Timestamp
	assert.Equal(t, a, b)
}

func TestRun_TimestampFormat(t *testing.T) {
	root := t.TempDir()
	s, err := NewScanner(testConfig(root), nil, nil)
	require.NoError(t, err)
	s.now = func() time.Time { return time.Date(2025, 6, 1, 8, 30, 0, 123456000, time.UTC) }

	report, err := s.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2025-06-01T08:30:00.123456+00:00", report.Timestamp)
}

func TestRun_CanceledContext(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.txt": "a\n"})
	s, err := NewScanner(testConfig(root), nil, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_TracksRun(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.txt": "alpha\n", "b.txt": "beta gamma\n"})

	runs := new(iocache.MockRunStore)
	runs.On("BeginRun", root, mock.AnythingOfType("time.Time"), mock.Anything).Return(int64(7), nil)
	runs.On("RecordFiles", int64(7), mock.MatchedBy(func(files []schema.FileEntry) bool {
		return len(files) == 2
	})).Return(nil)
	runs.On("EndRun", int64(7), mock.AnythingOfType("time.Time"), 2, mock.AnythingOfType("int64"), false).Return(nil)

	mgr := new(iocache.MockCacheManager)
	mgr.On("GetRunStore").Return(runs)

	cfg := testConfig(root)
	cfg.TopN = 1
	report := runScan(t, cfg, nil, mgr)

	assert.Len(t, report.Files, 1)
	runs.AssertExpectations(t)
	mgr.AssertExpectations(t)
}

func TestRun_TrackingFailureIsNotFatal(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.txt": "alpha\n"})

	runs := new(iocache.MockRunStore)
	runs.On("BeginRun", root, mock.Anything, mock.Anything).Return(int64(0), assert.AnError)

	mgr := new(iocache.MockCacheManager)
	mgr.On("GetRunStore").Return(runs)

	report := runScan(t, testConfig(root), nil, mgr)
	assert.Len(t, report.Files, 1)
	runs.AssertNotCalled(t, "RecordFiles", mock.Anything, mock.Anything)
	runs.AssertNotCalled(t, "EndRun", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRun_WithGitHistory(t *testing.T) {
	repo := gittest.New(t)
	recent := time.Now().Add(-48 * time.Hour).Truncate(time.Second)
	for i := range 3 {
		repo.Commit(recent.Add(time.Duration(i)*time.Minute), "busy.txt")
	}
	repo.Commit(recent.Add(time.Hour), "quiet.txt")

	cfg := testConfig(repo.Dir)
	cfg.NoGit = false
	cfg.SortBy = schema.SortByChurn
	report := runScan(t, cfg, contract.NewLocalGitClient(), nil)

	require.True(t, report.GitAvailable)
	assert.True(t, report.GitStats.Available)
	require.Equal(t, []string{"busy.txt", "quiet.txt"}, filePaths(report.Files))
	assert.Equal(t, 3, report.Files[0].GitCommits90d)
	assert.Equal(t, 1, report.Files[1].GitCommits90d)
	assert.NotEmpty(t, report.Files[0].GitLastCommit)
	assert.Empty(t, report.GitStats.Hotspots, "below the hotspot threshold")
}

func TestRun_NoGitIgnoresRepository(t *testing.T) {
	repo := gittest.New(t)
	repo.Commit(time.Now().Add(-time.Hour), "a.txt")

	cfg := testConfig(repo.Dir)
	cfg.NoGit = true
	report := runScan(t, cfg, contract.NewLocalGitClient(), nil)

	assert.False(t, report.GitAvailable)
	assert.Zero(t, report.Files[0].GitCommits90d)
	assert.Empty(t, report.Files[0].GitLastCommit)
}

func TestLoadHistory_UsesHistoryCache(t *testing.T) {
	repo := gittest.New(t)
	repo.Commit(time.Now().Add(-time.Hour), "a.txt")

	store := new(iocache.MockCacheStore)
	store.On("Get", mock.AnythingOfType("string")).Return(nil, 0, int64(0), assert.AnError)
	store.On("Set", mock.AnythingOfType("string"), mock.Anything, 1, mock.AnythingOfType("int64")).Return(nil)

	mgr := new(iocache.MockCacheManager)
	mgr.On("GetHistoryStore").Return(store)

	cfg := testConfig(repo.Dir)
	cfg.NoGit = false
	out := LoadHistory(context.Background(), cfg, contract.NewLocalGitClient(), mgr)

	require.True(t, out.Available)
	assert.Equal(t, 1, out.Churn["a.txt"])
	store.AssertExpectations(t)
	mgr.AssertExpectations(t)
}

func TestLoadHistory_Disabled(t *testing.T) {
	cfg := testConfig(t.TempDir())
	assert.False(t, LoadHistory(context.Background(), cfg, contract.NewLocalGitClient(), nil).Available)

	cfg.NoGit = false
	assert.False(t, LoadHistory(context.Background(), cfg, nil, nil).Available, "no client means no history")
}

package outwriter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/huangsam/recon/internal/contract"
	"github.com/huangsam/recon/schema"
	pq "github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/huangsam/recon/internal/parquet"
)

func sampleReport() *schema.Report {
	return &schema.Report{
		Root:           "/work/demo",
		ScannerVersion: schema.ScannerVersion,
		Timestamp:      "2025-06-01T08:30:00.000000+00:00",
		Files: []schema.FileEntry{
			{Path: "src/server.go", Tokens: 12345, SizeBytes: 40960, ContentHash: "abcd", GitCommits90d: 14},
			{Path: "README.md", Tokens: 800, SizeBytes: 3000, GitCommits90d: 2},
			{Path: "api/Client.go", Tokens: 50, SizeBytes: 200, IsGenerated: true},
			{Path: "src/util/a.go", Tokens: 7, SizeBytes: 20},
		},
		Directories:   []string{"api", "src", "src/util"},
		TotalTokens:   13202,
		TotalFiles:    4,
		Skipped:       []schema.Skip{{Path: "logo.png", Reason: schema.SkipBinary}},
		ConfigSurface: map[string][]string{},
		Duplicates:    map[string][]string{},
		GitAvailable:  true,
		TodoSummary: schema.TodoSummary{
			TotalTodos:  2,
			ByDirectory: schema.DirCounts{{Dir: "src", Count: 2}},
		},
	}
}

func TestWriteReportTree(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeReportTree(&buf, sampleReport(), false))

	expected := strings.Join([]string{
		"demo/",
		"Scanner v" + schema.ScannerVersion + " | 2025-06-01T08:30:00.000000+00:00",
		"Total: 4 files, 13,202 tokens",
		"Git: available",
		"",
		"├── api/",
		"│   └── Client.go (50 tokens) [gen]",
		"├── src/",
		"│   ├── util/",
		"│   │   └── a.go (7 tokens)",
		"│   └── server.go (12,345 tokens) [churn:14]",
		"└── README.md (800 tokens)",
	}, "\n") + "\n"
	assert.Equal(t, expected, buf.String())
}

func TestWriteReportCompact(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeReportCompact(&buf, sampleReport(), false))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 8)
	assert.Equal(t, "# /work/demo", lines[0])
	assert.Equal(t, "# Total: 4 files, 13,202 tokens", lines[2])
	assert.Empty(t, lines[3])
	assert.Equal(t, "   12345 src/server.go [churn:14]", lines[4])
	assert.Equal(t, "     800 README.md [churn:2]", lines[5], "compact flags any churn")
	assert.Equal(t, "      50 api/Client.go [gen]", lines[6])
	assert.Equal(t, "       7 src/util/a.go", lines[7])
}

func TestWriteReportTable(t *testing.T) {
	cfg := &contract.Config{Width: 120}
	var buf bytes.Buffer
	require.NoError(t, writeReportTable(&buf, sampleReport(), cfg))

	out := buf.String()
	assert.Contains(t, strings.ToUpper(out), "COMMITS")
	assert.Contains(t, out, "src/server.go")
	assert.Contains(t, out, "12,345")
	assert.Contains(t, out, "[churn:14]")
	assert.Contains(t, out, "Showing 4 files (total tokens: 13,202, skipped: 1)")
	assert.Contains(t, out, "Git history: available")
}

func TestWriteReportTable_NoGit(t *testing.T) {
	report := sampleReport()
	report.GitAvailable = false
	var buf bytes.Buffer
	require.NoError(t, writeReportTable(&buf, report, &contract.Config{Width: 80}))
	assert.NotContains(t, strings.ToUpper(buf.String()), "COMMITS")
	assert.Contains(t, buf.String(), "Git history: unavailable")
}

func TestWriteReportCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeReportCSV(&buf, sampleReport().Files))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 5)
	assert.Equal(t, "rank", records[0][0])
	assert.Equal(t, []string{"1", "src/server.go", "12345", "40960", "abcd", "false", "0", "0", "14", ""}, records[1])
	assert.Equal(t, "true", records[3][5])
}

func TestWriteReport_JSONToFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "report.json")
	cfg := &contract.Config{Output: schema.JSONOut, OutputFile: out}
	require.NoError(t, WriteReport(sampleReport(), cfg))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "/work/demo", decoded["root"])
	assert.Equal(t, map[string]any{}, decoded["git_stats"], "history not loaded renders as an empty object")
	assert.True(t, strings.HasPrefix(string(data), "{\n  \"root\""), "JSON is indented by two spaces")
}

func TestWriteReport_YAMLToFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "report.yaml")
	cfg := &contract.Config{Output: schema.YAMLOut, OutputFile: out}
	require.NoError(t, WriteReport(sampleReport(), cfg))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal(data, &decoded))
	assert.Equal(t, 13202, decoded["total_tokens"])
	assert.Equal(t, map[string]any{"src": 2}, decoded["todo_summary"].(map[string]any)["by_directory"])
}

func TestWriteReport_Parquet(t *testing.T) {
	out := filepath.Join(t.TempDir(), "files.parquet")
	cfg := &contract.Config{Output: schema.ParquetOut, OutputFile: out}
	require.NoError(t, WriteReport(sampleReport(), cfg))

	rows, err := pq.ReadFile[parquet.FileRow](out)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "src/server.go", rows[0].Path)
	assert.Equal(t, int64(12345), rows[0].Tokens)
}

func TestWriteReport_ParquetNeedsFile(t *testing.T) {
	err := WriteReport(sampleReport(), &contract.Config{Output: schema.ParquetOut})
	assert.ErrorContains(t, err, "requires an output file")
}

func TestWriteReport_BadOutputFile(t *testing.T) {
	cfg := &contract.Config{Output: schema.CompactOut, OutputFile: filepath.Join(t.TempDir(), "missing", "out.txt")}
	assert.Error(t, WriteReport(sampleReport(), cfg))
}

func TestFileFlags(t *testing.T) {
	f := schema.FileEntry{IsGenerated: true, GitCommits90d: 10}
	assert.Equal(t, []string{"gen"}, fileFlags(f, treeChurnFlagMin), "tree flags churn strictly above ten")
	assert.Equal(t, []string{"gen", "churn:10"}, fileFlags(f, compactChurnFlagMin))
	assert.Nil(t, fileFlags(schema.FileEntry{}, compactChurnFlagMin))
	assert.Empty(t, renderFlags(nil, false))
}

func TestFormatCount(t *testing.T) {
	assert.Equal(t, "0", formatCount(0))
	assert.Equal(t, "999", formatCount(999))
	assert.Equal(t, "1,234,567", formatCount(int64(1234567)))
}

func TestGetMaxTablePathWidth(t *testing.T) {
	assert.Equal(t, 15, getMaxTablePathWidth(&contract.Config{Width: 40}, true))
	assert.Equal(t, 70, getMaxTablePathWidth(&contract.Config{Width: 300}, false))
	assert.Equal(t, 38, getMaxTablePathWidth(&contract.Config{Width: 100}, false))
	assert.Equal(t, 28, getMaxTablePathWidth(&contract.Config{Width: 100}, true))
}

func TestOutWriter_Facade(t *testing.T) {
	dir := t.TempDir()
	ow := NewOutWriter()
	require.NoError(t, ow.WriteReport(sampleReport(), &contract.Config{Output: schema.CSVOut, OutputFile: filepath.Join(dir, "r.csv")}))
	require.NoError(t, ow.WriteHistory(schema.GitStats{}, &contract.Config{Output: schema.JSONOut, OutputFile: filepath.Join(dir, "h.json")}))

	data, err := os.ReadFile(filepath.Join(dir, "h.json"))
	require.NoError(t, err)
	assert.Equal(t, "{}\n", string(data))
}

package parquet

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/recon/schema"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStructTags(t *testing.T) {
	tests := []struct {
		name    string
		schema  *parquet.Schema
		columns []string
	}{
		{"file row", parquet.SchemaOf(new(FileRow)), []string{
			"path", "tokens", "size_bytes", "content_hash", "is_generated",
			"todo_count", "fixme_count", "git_commits_90d", "git_last_commit",
		}},
		{"scan run", parquet.SchemaOf(new(ScanRun)), []string{
			"run_id", "root", "start_time", "end_time", "run_duration_ms",
			"total_files", "total_tokens", "git_available", "config_params",
		}},
		{"scan file", parquet.SchemaOf(new(ScanFile)), []string{"run_id", "path", "tokens"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, col := range tt.columns {
				_, ok := tt.schema.Lookup(col)
				assert.True(t, ok, "column %s should exist", col)
			}
		})
	}
}

func TestConvertFileEntries(t *testing.T) {
	rows := ConvertFileEntries([]schema.FileEntry{
		{Path: "a.go", Tokens: 10, SizeBytes: 40, ContentHash: "abc", TodoCount: 2, GitCommits90d: 3, GitLastCommit: "2024-01-01T00:00:00+00:00"},
		{Path: "b.go", Tokens: 5, IsGenerated: true},
	})

	require.Len(t, rows, 2)
	assert.Equal(t, int64(10), rows[0].Tokens)
	assert.Equal(t, int32(2), rows[0].TodoCount)
	require.NotNil(t, rows[0].GitLastCommit)
	assert.Equal(t, "2024-01-01T00:00:00+00:00", *rows[0].GitLastCommit)
	assert.Nil(t, rows[1].GitLastCommit, "empty last commit becomes null")
	assert.True(t, rows[1].IsGenerated)
}

func TestConvertScanRunRecords(t *testing.T) {
	end := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	files := 12
	records := []schema.ScanRunRecord{
		{RunID: 1, Root: "/repo", StartTime: end.Add(-time.Second), EndTime: &end, TotalFiles: &files, GitAvailable: true},
		{RunID: 2, Root: "/repo", StartTime: end},
	}

	runs := ConvertScanRunRecords(records)
	require.Len(t, runs, 2)
	require.NotNil(t, runs[0].TotalFiles)
	assert.Equal(t, int32(12), *runs[0].TotalFiles)
	assert.True(t, runs[0].GitAvailable)
	assert.Nil(t, runs[1].EndTime)
	assert.Nil(t, runs[1].TotalFiles)
}

func TestWriteAndReadBack(t *testing.T) {
	last := "2024-05-05T10:00:00+00:00"
	rows := []FileRow{
		{Path: "main.go", Tokens: 100, SizeBytes: 400, ContentHash: "h1", GitLastCommit: &last},
		{Path: "util.go", Tokens: 50, SizeBytes: 200, ContentHash: "h2"},
	}

	path := filepath.Join(t.TempDir(), "files.parquet")
	require.NoError(t, WriteFile(rows, path))

	got, err := parquet.ReadFile[FileRow](path)
	require.NoError(t, err)
	assert.Equal(t, rows, got)
}

func TestWrite_ToBuffer(t *testing.T) {
	var buf bytes.Buffer
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, Write(&buf, []ScanRun{{RunID: 1, Root: "/r", StartTime: start}}))

	got, err := parquet.Read[ScanRun](bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(1), got[0].RunID)
	assert.True(t, start.Equal(got[0].StartTime))
}

func TestWriteFile_BadPath(t *testing.T) {
	err := WriteFile([]FileRow{{Path: "x"}}, filepath.Join(t.TempDir(), "missing", "out.parquet"))
	assert.Error(t, err)
}

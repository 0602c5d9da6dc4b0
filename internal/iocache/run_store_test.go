package iocache

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/recon/internal/parquet"
	"github.com/huangsam/recon/schema"
	pq "github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleFiles() []schema.FileEntry {
	return []schema.FileEntry{
		{Path: "main.go", Tokens: 120, SizeBytes: 480, ContentHash: "aaaa", TodoCount: 1, GitCommits90d: 4, GitLastCommit: "2025-01-01T00:00:00+00:00"},
		{Path: "gen/api.go", Tokens: 40, SizeBytes: 160, ContentHash: "bbbb", IsGenerated: true},
	}
}

func TestRunStore_NoneBackend(t *testing.T) {
	store, err := NewRunStore(schema.NoneBackend, "")
	require.NoError(t, err)

	runID, err := store.BeginRun("/repo", time.Now(), map[string]any{"k": "v"})
	assert.NoError(t, err)
	assert.Equal(t, int64(0), runID)
	assert.NoError(t, store.RecordFiles(1, sampleFiles()))
	assert.NoError(t, store.EndRun(1, time.Now(), 2, 160, false))

	runs, err := store.GetAllRuns()
	assert.NoError(t, err)
	assert.Empty(t, runs)
	assert.NoError(t, store.Close())
}

func TestRunStore_UnsupportedBackend(t *testing.T) {
	_, err := NewRunStore(schema.BoltBackend, "")
	assert.ErrorContains(t, err, "unsupported runs backend")
}

func TestRunStore_SQLiteLifecycle(t *testing.T) {
	store, err := NewRunStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	start := time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC)
	runID, err := store.BeginRun("/repo", start, map[string]any{"top_n": 5, "sort_by": "tokens"})
	require.NoError(t, err)
	assert.Positive(t, runID)

	require.NoError(t, store.RecordFiles(runID, sampleFiles()))
	require.NoError(t, store.EndRun(runID, start.Add(1500*time.Millisecond), 2, 160, true))

	runs, err := store.GetAllRuns()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	run := runs[0]
	assert.Equal(t, runID, run.RunID)
	assert.Equal(t, "/repo", run.Root)
	assert.True(t, start.Equal(run.StartTime))
	require.NotNil(t, run.EndTime)
	require.NotNil(t, run.RunDuration)
	assert.Equal(t, int64(1500), *run.RunDuration)
	require.NotNil(t, run.TotalFiles)
	assert.Equal(t, 2, *run.TotalFiles)
	require.NotNil(t, run.TotalTokens)
	assert.Equal(t, int64(160), *run.TotalTokens)
	assert.True(t, run.GitAvailable)
	require.NotNil(t, run.ConfigParams)
	var params map[string]any
	require.NoError(t, json.Unmarshal([]byte(*run.ConfigParams), &params))
	assert.Equal(t, "tokens", params["sort_by"])

	files, err := store.GetAllFiles()
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "gen/api.go", files[0].FilePath, "ordered by path within a run")
	assert.True(t, files[0].IsGenerated)
	assert.Nil(t, files[0].GitLastCommit)
	assert.Equal(t, "main.go", files[1].FilePath)
	require.NotNil(t, files[1].GitLastCommit)
	assert.Equal(t, 4, files[1].GitCommits90d)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, 1, status.TotalRuns)
	assert.Equal(t, runID, status.LastRunID)
	assert.Equal(t, 2, status.TotalFilesSeen)
	assert.Equal(t, int64(160), status.TotalTokensSeen)
	assert.Equal(t, int64(2), status.TableSizes[scanFilesTable])
	assert.True(t, start.Equal(status.OldestRunTime))
}

func TestRunStore_RecordFilesDuplicatePathFails(t *testing.T) {
	store, err := NewRunStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	runID, err := store.BeginRun("/repo", time.Now(), nil)
	require.NoError(t, err)

	files := append(sampleFiles(), sampleFiles()[0])
	assert.Error(t, store.RecordFiles(runID, files))

	rows, err := store.GetAllFiles()
	require.NoError(t, err)
	assert.Empty(t, rows, "the failed batch is rolled back")
}

func TestRunStore_EndRunUnknownID(t *testing.T) {
	store, err := NewRunStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	assert.Error(t, store.EndRun(42, time.Now(), 0, 0, false))
}

func TestMigrateRuns(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "runs.db")
	var out bytes.Buffer

	require.NoError(t, MigrateRuns(schema.SQLiteBackend, dbPath, -1, &out))
	assert.Contains(t, out.String(), "to version 3")

	out.Reset()
	require.NoError(t, MigrateRuns(schema.SQLiteBackend, dbPath, -1, &out))
	assert.Contains(t, out.String(), "No migration needed")

	require.NoError(t, MigrateRuns(schema.SQLiteBackend, dbPath, 1, &out))
	require.NoError(t, MigrateRuns(schema.SQLiteBackend, dbPath, 0, &out))
	require.NoError(t, MigrateRuns(schema.SQLiteBackend, dbPath, -1, &out))

	store, err := NewRunStore(schema.SQLiteBackend, dbPath)
	require.NoError(t, err, "migrated schema is compatible with the store")
	require.NoError(t, store.Close())
}

func TestMigrateRuns_AfterStoreCreatedTables(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "runs.db")
	store, err := NewRunStore(schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	assert.NoError(t, MigrateRuns(schema.SQLiteBackend, dbPath, -1, &bytes.Buffer{}))
}

func TestMigrateRuns_Unsupported(t *testing.T) {
	assert.ErrorContains(t, MigrateRuns(schema.NoneBackend, "", -1, &bytes.Buffer{}), "not supported")
	assert.ErrorContains(t, MigrateRuns(schema.BoltBackend, "", -1, &bytes.Buffer{}), "not supported")
}

func TestClearRuns(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "runs.db")
	store, err := NewRunStore(schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	require.NoError(t, ClearRuns(schema.SQLiteBackend, dbPath, ""))
	assert.NoFileExists(t, dbPath)
	assert.NoError(t, ClearRuns(schema.NoneBackend, "", ""))
	assert.Error(t, ClearRuns(schema.BoltBackend, "", ""))
}

func TestExportRuns(t *testing.T) {
	store, err := NewRunStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	runID, err := store.BeginRun("/repo", time.Now(), nil)
	require.NoError(t, err)
	require.NoError(t, store.RecordFiles(runID, sampleFiles()))
	require.NoError(t, store.EndRun(runID, time.Now(), 2, 160, false))

	base := filepath.Join(t.TempDir(), "export")
	var out bytes.Buffer
	require.NoError(t, ExportRuns(store, base, &out))
	assert.Contains(t, out.String(), "Exported 1 scan runs")
	assert.Contains(t, out.String(), "Exported 2 file records")

	runs, err := pq.ReadFile[parquet.ScanRun](base + ".scan_runs.parquet")
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "/repo", runs[0].Root)

	files, err := pq.ReadFile[parquet.ScanFile](base + ".scan_files.parquet")
	require.NoError(t, err)
	assert.Len(t, files, 2)
}

func TestExportRuns_Errors(t *testing.T) {
	empty := new(MockRunStore)
	empty.On("GetStatus").Return(schema.RunStatus{Backend: "sqlite", Connected: true}, nil)

	assert.ErrorContains(t, ExportRuns(empty, "", &bytes.Buffer{}), "--output-file is required")
	assert.ErrorContains(t, ExportRuns(empty, "out", &bytes.Buffer{}), "no scan runs")

	failing := new(MockRunStore)
	failing.On("GetStatus").Return(schema.RunStatus{TotalRuns: 1}, nil)
	failing.On("GetAllRuns").Return(nil, assert.AnError)
	assert.ErrorIs(t, ExportRuns(failing, "out", &bytes.Buffer{}), assert.AnError)
	failing.AssertNotCalled(t, "GetAllFiles")
}

func TestPrintRunStatus(t *testing.T) {
	var buf bytes.Buffer
	PrintRunStatus(&buf, schema.RunStatus{
		Backend: "sqlite", Connected: true, TotalRuns: 2, LastRunID: 9, TotalFilesSeen: 10,
		TableSizes: map[string]int64{scanRunsTable: 2, scanFilesTable: 10},
	})
	out := buf.String()
	assert.Contains(t, out, "Total Runs: 2")
	assert.Contains(t, out, "Last Run ID: 9")
	assert.Less(t, bytes.Index(buf.Bytes(), []byte(scanFilesTable)), bytes.Index(buf.Bytes(), []byte(scanRunsTable)), "tables listed by name")
}

// Package parquet exports scan results and tracked runs to Parquet files
// using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/huangsam/recon/schema"
	"github.com/parquet-go/parquet-go"
)

// FileRow is one analyzed file of a report.
type FileRow struct {
	Path          string  `parquet:"path,snappy"`
	Tokens        int64   `parquet:"tokens,snappy"`
	SizeBytes     int64   `parquet:"size_bytes,snappy"`
	ContentHash   string  `parquet:"content_hash,snappy"`
	IsGenerated   bool    `parquet:"is_generated,snappy"`
	TodoCount     int32   `parquet:"todo_count,snappy"`
	FixmeCount    int32   `parquet:"fixme_count,snappy"`
	GitCommits90d int32   `parquet:"git_commits_90d,snappy"`
	GitLastCommit *string `parquet:"git_last_commit,optional,snappy"`
}

// ScanRun maps to the recon_scan_runs table.
type ScanRun struct {
	RunID int64  `parquet:"run_id,snappy"`
	Root  string `parquet:"root,snappy"`

	// Stored as TIMESTAMP with nanosecond precision
	StartTime time.Time  `parquet:"start_time,snappy"`
	EndTime   *time.Time `parquet:"end_time,optional,snappy"`

	RunDurationMs *int64  `parquet:"run_duration_ms,optional,snappy"`
	TotalFiles    *int32  `parquet:"total_files,optional,snappy"`
	TotalTokens   *int64  `parquet:"total_tokens,optional,snappy"`
	GitAvailable  bool    `parquet:"git_available,snappy"`
	ConfigParams  *string `parquet:"config_params,optional,snappy"`
}

// ScanFile maps to the recon_scan_files table.
type ScanFile struct {
	RunID         int64   `parquet:"run_id,snappy"`
	Path          string  `parquet:"path,snappy"`
	Tokens        int64   `parquet:"tokens,snappy"`
	SizeBytes     int64   `parquet:"size_bytes,snappy"`
	ContentHash   string  `parquet:"content_hash,snappy"`
	IsGenerated   bool    `parquet:"is_generated,snappy"`
	TodoCount     int32   `parquet:"todo_count,snappy"`
	FixmeCount    int32   `parquet:"fixme_count,snappy"`
	GitCommits90d int32   `parquet:"git_commits_90d,snappy"`
	GitLastCommit *string `parquet:"git_last_commit,optional,snappy"`
}

// Write encodes rows to w as a single Parquet file.
func Write[T any](w io.Writer, rows []T) error {
	writer := parquet.NewGenericWriter[T](w)
	if _, err := writer.Write(rows); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// WriteFile creates outputPath and writes rows to it.
func WriteFile[T any](rows []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := Write(file, rows); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

// ConvertFileEntries converts report files into Parquet rows.
func ConvertFileEntries(files []schema.FileEntry) []FileRow {
	rows := make([]FileRow, len(files))
	for i, f := range files {
		rows[i] = FileRow{
			Path:          f.Path,
			Tokens:        int64(f.Tokens),
			SizeBytes:     f.SizeBytes,
			ContentHash:   f.ContentHash,
			IsGenerated:   f.IsGenerated,
			TodoCount:     int32(f.TodoCount),
			FixmeCount:    int32(f.FixmeCount),
			GitCommits90d: int32(f.GitCommits90d),
			GitLastCommit: optionalString(f.GitLastCommit),
		}
	}
	return rows
}

// ConvertScanRunRecords converts stored runs for Parquet export.
func ConvertScanRunRecords(records []schema.ScanRunRecord) []ScanRun {
	result := make([]ScanRun, len(records))
	for i, r := range records {
		run := ScanRun{
			RunID:         r.RunID,
			Root:          r.Root,
			StartTime:     r.StartTime,
			EndTime:       r.EndTime,
			RunDurationMs: r.RunDuration,
			TotalTokens:   r.TotalTokens,
			GitAvailable:  r.GitAvailable,
			ConfigParams:  r.ConfigParams,
		}
		if r.TotalFiles != nil {
			n := int32(*r.TotalFiles)
			run.TotalFiles = &n
		}
		result[i] = run
	}
	return result
}

// ConvertScanFileRecords converts stored file rows for Parquet export.
func ConvertScanFileRecords(records []schema.ScanFileRecord) []ScanFile {
	result := make([]ScanFile, len(records))
	for i, r := range records {
		result[i] = ScanFile{
			RunID:         r.RunID,
			Path:          r.FilePath,
			Tokens:        int64(r.Tokens),
			SizeBytes:     r.SizeBytes,
			ContentHash:   r.ContentHash,
			IsGenerated:   r.IsGenerated,
			TodoCount:     int32(r.TodoCount),
			FixmeCount:    int32(r.FixmeCount),
			GitCommits90d: int32(r.GitCommits90d),
			GitLastCommit: r.GitLastCommit,
		}
	}
	return result
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

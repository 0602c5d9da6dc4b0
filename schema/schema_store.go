package schema

import "time"

// ScanRunRecord represents a row from the recon_scan_runs table.
type ScanRunRecord struct {
	RunID        int64
	Root         string
	StartTime    time.Time
	EndTime      *time.Time
	RunDuration  *int64
	TotalFiles   *int
	TotalTokens  *int64
	GitAvailable bool
	ConfigParams *string
}

// ScanFileRecord represents a row from the recon_scan_files table.
type ScanFileRecord struct {
	RunID         int64
	FilePath      string
	Tokens        int
	SizeBytes     int64
	ContentHash   string
	IsGenerated   bool
	TodoCount     int
	FixmeCount    int
	GitCommits90d int
	GitLastCommit *string
}

// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/huangsam/recon/schema"
)

// GitClient defines the read-only history queries the scanner needs.
// This allows the history logic to be tested without needing a real git executable.
type GitClient interface {
	// --- Generic / Low-Level ---

	// Run executes a git command and returns its standard output.
	// Its use should be minimized in favor of the explicit methods below.
	Run(ctx context.Context, repoPath string, args ...string) ([]byte, error)

	// --- Repository State ---

	// IsInsideWorkTree reports whether repoPath is inside a git work tree.
	IsInsideWorkTree(ctx context.Context, repoPath string) (bool, error)

	// GetRepoHash returns the current HEAD commit hash of the repository.
	GetRepoHash(ctx context.Context, repoPath string) (string, error)

	// --- History Logs ---
	// File paths in every log are relative to repoPath, so scanning a
	// subdirectory of a work tree only sees history below it.

	// GetChurnLog lists the files touched by every commit since the given day,
	// one path per line with no commit decoration.
	GetChurnLog(ctx context.Context, repoPath string, since time.Time) ([]byte, error)

	// GetStalenessLog returns the full history as "<hash> <iso date>" header lines
	// each followed by the files added, copied, modified or renamed in that commit.
	GetStalenessLog(ctx context.Context, repoPath string) ([]byte, error)

	// GetCommitFilesLog returns the full history with a literal delimiter line
	// before each commit's file list.
	GetCommitFilesLog(ctx context.Context, repoPath string) ([]byte, error)
}

// CacheManager defines the interface for managing persistence stores.
// This allows the cache layer to be mocked for testing.
type CacheManager interface {
	GetHistoryStore() CacheStore
	GetRunStore() RunStore
}

// CacheStore defines the interface for cache data storage.
// This allows mocking the store for testing.
type CacheStore interface {
	Get(key string) ([]byte, int, int64, error)
	Set(key string, value []byte, version int, timestamp int64) error
	GetStatus() (schema.CacheStatus, error)
	Close() error
}

// RunStore defines the interface for tracking scan runs and their per-file metrics.
type RunStore interface {
	// BeginRun creates a new scan run and returns its unique ID
	BeginRun(root string, startTime time.Time, configParams map[string]any) (int64, error)

	// EndRun updates the scan run with completion data
	EndRun(runID int64, endTime time.Time, totalFiles int, totalTokens int64, gitAvailable bool) error

	// RecordFiles stores the analyzed files of a run
	RecordFiles(runID int64, files []schema.FileEntry) error

	// GetStatus returns status information about the run store
	GetStatus() (schema.RunStatus, error)

	// GetAllRuns returns every recorded run, oldest first
	GetAllRuns() ([]schema.ScanRunRecord, error)

	// GetAllFiles returns every recorded file row ordered by run and path
	GetAllFiles() ([]schema.ScanFileRecord, error)

	// Close closes the underlying connection
	Close() error
}

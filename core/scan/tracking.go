package scan

import (
	"time"

	"github.com/huangsam/recon/internal/contract"
	"github.com/huangsam/recon/schema"
)

// runTracker records one scan in the run store. A zero tracker is a no-op.
type runTracker struct {
	store contract.RunStore
	runID int64
}

// beginRun opens a run record when a run store is configured.
// Failures are logged and tracking is skipped for this scan.
func (s *Scanner) beginRun(started time.Time) runTracker {
	if s.mgr == nil {
		return runTracker{}
	}
	store := s.mgr.GetRunStore()
	if store == nil {
		return runTracker{}
	}
	configParams := map[string]any{
		"root":            s.cfg.RootPath,
		"max_file_tokens": s.cfg.MaxFileTokens,
		"encoding":        s.cfg.Encoding,
		"sort_by":         string(s.cfg.SortBy),
		"top_n":           s.cfg.TopN,
		"extensions":      s.cfg.Extensions,
		"include":         s.cfg.IncludePatterns,
		"exclude":         s.cfg.ExcludePatterns,
		"churn_days":      s.cfg.ChurnDays,
		"workers":         s.cfg.Workers,
		"no_git":          s.cfg.NoGit,
	}
	runID, err := store.BeginRun(s.cfg.RootPath, started, configParams)
	if err != nil {
		contract.LogWarn("Scan run tracking initialization failed", err)
		return runTracker{}
	}
	return runTracker{store: store, runID: runID}
}

func (t runTracker) active() bool {
	return t.store != nil && t.runID > 0
}

func (t runTracker) record(files []schema.FileEntry) {
	if !t.active() || len(files) == 0 {
		return
	}
	if err := t.store.RecordFiles(t.runID, files); err != nil {
		contract.LogWarn("Failed to record scanned files", err)
	}
}

func (t runTracker) end(ended time.Time, totalFiles int, totalTokens int64, gitAvailable bool) {
	if !t.active() {
		return
	}
	if err := t.store.EndRun(t.runID, ended, totalFiles, totalTokens, gitAvailable); err != nil {
		contract.LogWarn("Failed to finalize scan run tracking", err)
	}
}

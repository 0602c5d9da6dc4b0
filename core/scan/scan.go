// Package scan assembles the codebase report: it walks the tree, analyzes
// every included file, gathers git history and folds it all together.
package scan

import (
	"context"
	"os"
	"time"

	"github.com/huangsam/recon/core/cochange"
	"github.com/huangsam/recon/core/entrypoint"
	"github.com/huangsam/recon/core/history"
	"github.com/huangsam/recon/internal/contract"
	"github.com/huangsam/recon/internal/ignore"
	"github.com/huangsam/recon/internal/tokens"
	"github.com/huangsam/recon/internal/walker"
	"github.com/huangsam/recon/schema"
	"github.com/sirupsen/logrus"
)

// TimestampLayout renders report timestamps with microseconds and a numeric offset.
const TimestampLayout = "2006-01-02T15:04:05.000000-07:00"

// Scanner produces reports for one validated configuration.
type Scanner struct {
	cfg     *contract.Config
	client  contract.GitClient
	mgr     contract.CacheManager
	counter *tokens.Counter
	now     func() time.Time
}

// NewScanner prepares a scanner. It fails when the tokenizer encoding is unknown.
// mgr may be nil, which disables the history cache and run tracking.
func NewScanner(cfg *contract.Config, client contract.GitClient, mgr contract.CacheManager) (*Scanner, error) {
	counter, err := tokens.New(cfg.Encoding)
	if err != nil {
		return nil, err
	}
	return &Scanner{cfg: cfg, client: client, mgr: mgr, counter: counter, now: time.Now}, nil
}

// HistoryOptions derives the history query options from the configuration.
func HistoryOptions(cfg *contract.Config) history.Options {
	return history.Options{
		ChurnDays: cfg.ChurnDays,
		CoChange: cochange.Options{
			MinCommits: cfg.MinCoChangeCommits,
			MinRatio:   cfg.MinCoChangeRatio,
			Limit:      cochange.DefaultLimit,
		},
	}
}

// Run scans the configured root. Only context cancellation makes it fail;
// every other problem is recorded in the skip log or empties its section.
func (s *Scanner) Run(ctx context.Context) (*schema.Report, error) {
	started := s.now()
	tracker := s.beginRun(started)

	walked := walker.Walk(s.cfg.RootPath, ignore.Load(s.cfg.RootPath))
	hist := s.loadHistory(ctx)

	filter := Filter{Extensions: s.cfg.Extensions, Include: s.cfg.IncludePatterns, Exclude: s.cfg.ExcludePatterns}
	var candidates []string
	for _, rel := range walked.Files() {
		if filter.Allows(rel) {
			candidates = append(candidates, rel)
		}
	}
	contract.LogDebug("walk finished", logrus.Fields{
		"files": len(candidates), "dirs": len(walked.Dirs()), "skipped": len(walked.Skipped),
	})

	results, err := s.analyzeAll(ctx, candidates)
	if err != nil {
		return nil, err
	}
	f := fold(results, hist)

	sortFiles(f.files, s.cfg.SortBy, hist.Available)
	tracker.record(f.files)
	files := limitFiles(f.files, s.cfg.TopN)

	dirs := walked.Dirs()
	if dirs == nil {
		dirs = []string{}
	}
	report := &schema.Report{
		Root:           s.cfg.RootPath,
		ScannerVersion: schema.ScannerVersion,
		Timestamp:      started.UTC().Format(TimestampLayout),
		Args:           s.args(),
		Files:          files,
		Directories:    dirs,
		TotalTokens:    f.totalTokens,
		TotalFiles:     len(files),
		Skipped:        append(walked.Skipped, f.skipped...),
		Entrypoints:    entrypoint.Detect(os.DirFS(s.cfg.RootPath)),
		ConfigSurface:  f.configSurface,
		Duplicates:     f.duplicates,
		GitAvailable:   hist.Available,
		GitStats:       hist.Stats(started),
		GeneratedFiles: f.generatedFiles,
		TodoSummary:    f.todos,
	}

	tracker.end(s.now(), len(f.files), int64(f.totalTokens), hist.Available)
	return report, nil
}

// loadHistory returns history output, or an unavailable one when git is disabled.
func (s *Scanner) loadHistory(ctx context.Context) *history.Output {
	return LoadHistory(ctx, s.cfg, s.client, s.mgr)
}

// LoadHistory runs the history queries for cfg.RootPath, served from the
// manager's history cache when one is configured. mgr may be nil.
func LoadHistory(ctx context.Context, cfg *contract.Config, client contract.GitClient, mgr contract.CacheManager) *history.Output {
	if cfg.NoGit || client == nil {
		return &history.Output{}
	}
	var store contract.CacheStore
	if mgr != nil {
		store = mgr.GetHistoryStore()
	}
	return history.NewReader(client).Load(ctx, cfg.RootPath, store, HistoryOptions(cfg))
}

// args echoes the scan arguments; unset filters and caps render as null.
func (s *Scanner) args() schema.ScanArgs {
	args := schema.ScanArgs{
		MaxFileTokens:   s.cfg.MaxFileTokens,
		IncludePatterns: s.cfg.IncludePatterns,
		ExcludePatterns: s.cfg.ExcludePatterns,
		Extensions:      s.cfg.Extensions,
		SortBy:          s.cfg.SortBy,
		Encoding:        s.counter.Encoding(),
		ChurnDays:       s.cfg.ChurnDays,
	}
	if s.cfg.TopN > 0 {
		top := s.cfg.TopN
		args.TopN = &top
	}
	return args
}

package cmd

import (
	"errors"
	"time"

	"github.com/huangsam/recon/core/scan"
	"github.com/huangsam/recon/internal/contract"
	"github.com/huangsam/recon/internal/outwriter"
	"github.com/huangsam/recon/schema"
	"github.com/spf13/cobra"
)

// historyCmd prints only the git section of a scan.
var historyCmd = &cobra.Command{
	Use:   "history [path]",
	Short: "Show hotspots, stale files and co-change clusters from git history.",
	Long: `Read git history below a directory without walking or tokenizing files.

Reports:
- Hotspots: files with at least 5 commits in the churn window
- Stale files: files whose last commit is more than 180 days old
- Co-change clusters: file pairs that usually change in the same commit

Results are cached per HEAD commit in the history cache.

Examples:
  # Tables for the current repository
  recon history --format table

  # Last 30 days, stricter coupling
  recon history --churn-days 30 --min-commits 10 --min-ratio 0.8 --format table

  # JSON for another tool
  recon history ../service --format json`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if cfg.Output == schema.ParquetOut {
			contract.LogFatal("Cannot write history", errors.New("parquet output is only available for scan"))
		}
		stats := scan.LoadHistory(rootCtx, cfg, contract.NewLocalGitClient(), cacheManager).Stats(time.Now())
		if err := outwriter.NewOutWriter().WriteHistory(stats, cfg); err != nil {
			contract.LogFatal("Cannot write history", err)
		}
	},
}

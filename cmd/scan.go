package cmd

import (
	"github.com/huangsam/recon/core/scan"
	"github.com/huangsam/recon/internal/contract"
	"github.com/huangsam/recon/internal/outwriter"
	"github.com/spf13/cobra"
)

// scanCmd produces the full codebase report.
var scanCmd = &cobra.Command{
	Use:   "scan [path]",
	Short: "Scan a directory and report its files, structure and git signals.",
	Long: `Walk a source tree, honoring .gitignore rules at every level, and report
what an agent needs before reading the code:

- Every included file with its token count, size and content hash
- Directories, entrypoints and the configuration surface
- Duplicate files, generated files and TODO/FIXME counts
- Churn, staleness and co-change clusters when the tree is in a git work tree

Files that are binary, too large or over the token budget are listed in the
skip log with a reason instead of being analyzed.

Examples:
  # Full JSON report of the current directory
  recon scan

  # Human-readable tree of the 30 largest files
  recon scan --format tree --top 30

  # Busiest Go files by recent churn
  recon scan --ext .go --sort churn --format table

  # Export per-file metrics for DuckDB or pandas
  recon scan --format parquet --output-file files.parquet`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		scanner, err := scan.NewScanner(cfg, contract.NewLocalGitClient(), cacheManager)
		if err != nil {
			contract.LogFatal("Cannot prepare scanner", err)
		}
		report, err := scanner.Run(rootCtx)
		if err != nil {
			contract.LogFatal("Cannot scan codebase", err)
		}
		if err := outwriter.NewOutWriter().WriteReport(report, cfg); err != nil {
			contract.LogFatal("Cannot write report", err)
		}
	},
}

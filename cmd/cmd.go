// Package cmd defines the command-line interface for recon.
package cmd

import (
	"github.com/huangsam/recon/internal/contract"
	"github.com/huangsam/recon/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(runsCmd)

	// Add the cache subcommands to the parent cache command
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheStatusCmd)

	// Add the runs subcommands to the parent runs command
	runsCmd.AddCommand(runsClearCmd)
	runsCmd.AddCommand(runsStatusCmd)
	runsCmd.AddCommand(runsExportCmd)
	runsCmd.AddCommand(runsMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("format", string(schema.JSONOut), "Output format: json or yaml or tree or compact or table or csv or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored flags in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().Int("workers", contract.DefaultWorkers, "Number of concurrent file analysis workers")
	rootCmd.PersistentFlags().Int("churn-days", contract.DefaultChurnDays, "Churn window in days")
	rootCmd.PersistentFlags().Int("min-commits", contract.DefaultMinCoChangeCommits, "Minimum shared commits for a co-change cluster")
	rootCmd.PersistentFlags().Float64("min-ratio", contract.DefaultMinCoChangeRatio, "Minimum co-change ratio for a cluster, in (0, 1]")
	rootCmd.PersistentFlags().String("cache-backend", string(schema.SQLiteBackend), "History cache backend: sqlite or mysql or postgresql or bolt or none")
	rootCmd.PersistentFlags().String("cache-db-connect", "", "Connection string or file path for the history cache (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("runs-backend", "", "Scan-run tracking backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("runs-db-connect", "", "Connection string or file path for scan-run tracking (must differ from cache-db-connect)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log skip decisions and degraded history queries to stderr")
	rootCmd.PersistentFlags().String("profile", "", "Enable profiling and write profiles to files with this prefix")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of scanCmd to Viper
	scanCmd.Flags().Int("max-tokens", contract.DefaultMaxFileTokens, "Skip files with more tokens than this")
	scanCmd.Flags().String("encoding", contract.DefaultEncoding, "Tokenizer encoding (e.g., cl100k_base, o200k_base)")
	scanCmd.Flags().Int("top", 0, "Show only the top N files (0 = all)")
	scanCmd.Flags().String("sort", string(schema.SortByTokens), "Sort files by tokens or churn")
	scanCmd.Flags().String("ext", "", "Comma-separated extensions to keep (e.g., '.ts,.tsx')")
	scanCmd.Flags().String("include", "", "Comma-separated glob patterns a path must match (e.g., 'src/**')")
	scanCmd.Flags().String("exclude", "", "Comma-separated glob patterns that drop a path (e.g., 'test/**')")
	scanCmd.Flags().Bool("no-git", false, "Skip git history even inside a work tree")
	if err := viper.BindPFlags(scanCmd.Flags()); err != nil {
		contract.LogFatal("Error binding scan flags", err)
	}

	// Bind all flags of runsMigrateCmd to Viper
	runsMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(runsMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding runs migrate flags", err)
	}
}

package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/huangsam/recon/internal/contract"
	"github.com/huangsam/recon/internal/iocache"
	"github.com/huangsam/recon/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// runsConfig loads the scan-run store settings. An empty backend means none.
// It does not open the store, so migrations can run on a fresh database.
func runsConfig() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	backend := schema.DatabaseBackend(strings.ToLower(viper.GetString("runs-backend")))
	if backend == "" {
		backend = schema.NoneBackend
	}
	if _, ok := schema.ValidRunBackends[backend]; !ok {
		return fmt.Errorf("invalid runs backend '%s'. must be sqlite, mysql, postgresql, none", backend)
	}
	connStr := viper.GetString("runs-db-connect")
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	cfg.RunBackend = backend
	cfg.RunDBConnect = connStr
	cfg.OutputFile = viper.GetString("output-file")
	return nil
}

// runsSetup loads the run store settings and opens the store.
func runsSetup(_ *cobra.Command, _ []string) error {
	if err := runsConfig(); err != nil {
		return err
	}
	// Initialize stores with the loaded config (no history cache for runs commands)
	if err := iocache.InitStores("", "", cfg.RunBackend, cfg.RunDBConnect); err != nil {
		return fmt.Errorf("failed to initialize run store: %w", err)
	}
	return nil
}

// runsFilePath resolves the SQLite file behind the run store.
func runsFilePath() string {
	if cfg.RunDBConnect != "" {
		return cfg.RunDBConnect
	}
	return iocache.GetRunsDBFilePath()
}

// runsCmd focused on scan-run tracking data.
//
// Note: Runs subcommands use minimal initialization instead of the full
// sharedSetup used by scan commands.
var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Manage scan-run tracking and exports",
	Long: `Manage the history of scans recorded with --runs-backend.

When enabled, every scan stores:
- Run metadata (root, timestamps, configuration, duration, totals)
- Per-file metrics (tokens, size, hash, markers, churn)

This enables trend tracking across scans and data export for BI tools.

Supported backends: SQLite, MySQL, PostgreSQL, or None (disabled, default)

Subcommands:
  status  - Show run tracking statistics
  export  - Export data to Parquet for analytics
  clear   - Remove all tracking data
  migrate - Run database schema migrations

Examples:
  # Record a scan
  recon scan --runs-backend sqlite

  # Export for analysis in pandas/DuckDB
  recon runs export --runs-backend sqlite --output-file runs`,
}

// runsClearCmd clears the run data.
var runsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all recorded scan runs",
	Long: `Delete all stored scan runs and per-file metrics.

WARNING: This action cannot be undone. Consider exporting data first.

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Drops the run, file and migration tables

Examples:
  # Export before clearing
  recon runs export --output-file backup
  recon runs clear`,
	PreRunE: func(_ *cobra.Command, _ []string) error {
		return runsConfig()
	},
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ClearRuns(cfg.RunBackend, runsFilePath(), cfg.RunDBConnect); err != nil {
			contract.LogFatal("Failed to clear run data", err)
		}
		fmt.Println("Run data cleared successfully.")
	},
}

// runsStatusCmd shows run store status.
var runsStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display run tracking statistics and connection details",
	Long: `Show detailed information about scan-run tracking.

Displays:
- Backend type and connection status
- Total number of runs and file rows stored
- Last and oldest run timestamps
- Database table sizes

Examples:
  recon runs status --runs-backend sqlite`,
	PreRunE: runsSetup,
	Run: func(_ *cobra.Command, _ []string) {
		store := iocache.Manager.GetRunStore()
		if store == nil {
			contract.LogFatal("Failed to get run status", fmt.Errorf("run tracking is not enabled. Set --runs-backend"))
		}
		status, err := store.GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get run status", err)
		}
		iocache.PrintRunStatus(os.Stdout, status)
	},
}

// runsExportCmd exports run data to Parquet files.
var runsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export recorded scan runs to Parquet files",
	Long: `Write every recorded run and file row to two Parquet files:

  <output-file>.scan_runs.parquet
  <output-file>.scan_files.parquet

Examples:
  recon runs export --runs-backend sqlite --output-file runs`,
	PreRunE: runsSetup,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ExecuteRunExport(cfg.OutputFile); err != nil {
			contract.LogFatal("Failed to export run data", err)
		}
	},
}

// runsMigrateCmd runs schema migrations for the run store.
var runsMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations for scan-run tracking",
	Long: `Apply or roll back the versioned schema of the run store.

Migrations are embedded in the binary and tracked in the
recon_schema_migrations table.

Examples:
  # Migrate to the latest version
  recon runs migrate --runs-backend postgresql --runs-db-connect "host=... dbname=..."

  # Roll back everything
  recon runs migrate --runs-backend sqlite --target-version 0`,
	PreRunE: func(_ *cobra.Command, _ []string) error {
		return runsConfig()
	},
	Run: func(_ *cobra.Command, _ []string) {
		target := viper.GetInt("target-version")
		if err := iocache.MigrateRuns(cfg.RunBackend, cfg.RunDBConnect, target, os.Stdout); err != nil {
			contract.LogFatal("Failed to migrate run store", err)
		}
	},
}

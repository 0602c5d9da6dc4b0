package iocache

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/huangsam/recon/internal/contract"
	"github.com/huangsam/recon/internal/parquet"
)

// ExecuteRunExport exports the global run store to Parquet files.
func ExecuteRunExport(outputFile string) error {
	store := Manager.GetRunStore()
	if store == nil {
		return errors.New("run tracking is not enabled. Set --runs-backend")
	}
	return ExportRuns(store, outputFile, os.Stdout)
}

// ExportRuns writes every run and file row of store next to outputFile,
// as <outputFile>.scan_runs.parquet and <outputFile>.scan_files.parquet.
func ExportRuns(store contract.RunStore, outputFile string, w io.Writer) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get run store status: %w", err)
	}
	if status.TotalRuns == 0 {
		return errors.New("no scan runs found to export")
	}

	_, _ = fmt.Fprintf(w, "Exporting data from %s backend...\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Total scan runs: %d\n", status.TotalRuns)
	_, _ = fmt.Fprintf(w, "Total file records: %d\n", status.TableSizes[scanFilesTable])

	runs, err := store.GetAllRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve scan runs: %w", err)
	}
	files, err := store.GetAllFiles()
	if err != nil {
		return fmt.Errorf("failed to retrieve scan files: %w", err)
	}

	runsFile := outputFile + ".scan_runs.parquet"
	if err := parquet.WriteFile(parquet.ConvertScanRunRecords(runs), runsFile); err != nil {
		return fmt.Errorf("failed to write scan runs: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d scan runs to: %s\n", len(runs), runsFile)

	filesFile := outputFile + ".scan_files.parquet"
	if err := parquet.WriteFile(parquet.ConvertScanFileRecords(files), filesFile); err != nil {
		return fmt.Errorf("failed to write scan files: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d file records to: %s\n", len(files), filesFile)
	return nil
}

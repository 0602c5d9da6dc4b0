package outwriter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/huangsam/recon/internal/contract"
	"github.com/huangsam/recon/schema"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"
)

// Churn thresholds above which a file gets a churn flag.
const (
	treeChurnFlagMin    = 10
	compactChurnFlagMin = 0
)

// printer groups digits the way the human-readable views expect, e.g. 12,345.
var printer = message.NewPrinter(language.English)

// writeWithFile handles the common pattern of opening a file, writing to it, and cleaning up.
// It accepts a writer function that takes an io.Writer and returns an error.
func writeWithFile(outputFile string, writer func(io.Writer) error, successMsg string) error {
	file, err := contract.SelectOutputFile(outputFile)
	if err != nil {
		return err
	}
	// Only close if it's not stdout
	if file != os.Stdout {
		defer func() { _ = file.Close() }()
	}

	if err := writer(file); err != nil {
		return err
	}

	if file != os.Stdout {
		fmt.Fprintf(os.Stderr, "💾 %s to %s\n", successMsg, outputFile)
	}
	return nil
}

// writeJSON is a generic JSON encoder that handles indentation consistently.
func writeJSON(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// writeYAML mirrors writeJSON for YAML documents.
func writeYAML(w io.Writer, data any) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	return nil
}

// writeCSVWithHeader handles the common pattern of creating a CSV writer,
// writing a header, and writing data rows.
func writeCSVWithHeader(w io.Writer, header []string, writeRows func(*csv.Writer) error) error {
	csvWriter := csv.NewWriter(w)

	if err := csvWriter.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	if err := writeRows(csvWriter); err != nil {
		return err
	}

	csvWriter.Flush()
	return csvWriter.Error()
}

// formatCount renders n with thousands separators.
func formatCount[T int | int64](n T) string {
	return printer.Sprintf("%d", n)
}

// fileFlags returns the display flags of a file. Churn is flagged only
// above churnMin commits.
func fileFlags(f schema.FileEntry, churnMin int) []string {
	var flags []string
	if f.IsGenerated {
		flags = append(flags, contract.GeneratedFlag)
	}
	if f.GitCommits90d > churnMin {
		flags = append(flags, fmt.Sprintf("%s:%d", contract.ChurnFlag, f.GitCommits90d))
	}
	return flags
}

// renderFlags formats flags for display, coloring each one when enabled.
func renderFlags(flags []string, useColors bool) string {
	if !useColors {
		return contract.FormatFlags(flags)
	}
	colored := make([]string, len(flags))
	for i, flag := range flags {
		colored[i] = contract.ColorFlag(flag)
	}
	return contract.FormatFlags(colored)
}

// reportHeader returns the summary lines shared by the tree and compact views.
func reportHeader(report *schema.Report) []string {
	return []string{
		fmt.Sprintf("Scanner v%s | %s", report.ScannerVersion, report.Timestamp),
		fmt.Sprintf("Total: %d files, %s tokens", report.TotalFiles, formatCount(report.TotalTokens)),
	}
}

// writeLines writes each line followed by a newline.
func writeLines(w io.Writer, lines []string) error {
	_, err := io.WriteString(w, strings.Join(lines, "\n")+"\n")
	return err
}

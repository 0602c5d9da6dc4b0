package outwriter

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/huangsam/recon/internal/contract"
	"github.com/huangsam/recon/internal/parquet"
	"github.com/huangsam/recon/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// WriteReport outputs a scan report, dispatching based on the output format configured.
func WriteReport(report *schema.Report, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.YAMLOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeYAML(w, report)
		}, "Wrote YAML"); err != nil {
			return fmt.Errorf("error writing YAML output: %w", err)
		}
	case schema.TreeOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeReportTree(w, report, cfg.UseColors)
		}, "Wrote tree")
	case schema.CompactOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeReportCompact(w, report, cfg.UseColors)
		}, "Wrote compact listing")
	case schema.TableOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeReportTable(w, report, cfg)
		}, "Wrote table")
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeReportCSV(w, report.Files)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		if err := writeReportParquet(report.Files, cfg.OutputFile); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
	default:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, report)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	}
	return nil
}

// treeNode is a directory in the rendered tree. Leaf files are kept separately.
type treeNode struct {
	dirs  map[string]*treeNode
	files []schema.FileEntry
}

func newTreeNode() *treeNode {
	return &treeNode{dirs: map[string]*treeNode{}}
}

// buildTree groups report files by their slash-separated directories.
func buildTree(files []schema.FileEntry) *treeNode {
	root := newTreeNode()
	for _, f := range files {
		node := root
		parts := strings.Split(f.Path, "/")
		for _, part := range parts[:len(parts)-1] {
			child, ok := node.dirs[part]
			if !ok {
				child = newTreeNode()
				node.dirs[part] = child
			}
			node = child
		}
		node.files = append(node.files, f)
	}
	return root
}

// compareNames orders names case-insensitively with a byte-wise tie break.
func compareNames(a, b string) int {
	if c := strings.Compare(strings.ToLower(a), strings.ToLower(b)); c != 0 {
		return c
	}
	return strings.Compare(a, b)
}

// writeReportTree renders the file list as an indented tree, directories first.
func writeReportTree(w io.Writer, report *schema.Report, useColors bool) error {
	lines := []string{filepath.Base(report.Root) + "/"}
	lines = append(lines, reportHeader(report)...)
	if report.GitAvailable {
		lines = append(lines, "Git: available")
	}
	lines = append(lines, "")
	lines = appendTree(lines, buildTree(report.Files), "", useColors)
	return writeLines(w, lines)
}

func appendTree(lines []string, node *treeNode, prefix string, useColors bool) []string {
	dirNames := make([]string, 0, len(node.dirs))
	for name := range node.dirs {
		dirNames = append(dirNames, name)
	}
	slices.SortFunc(dirNames, compareNames)

	files := slices.Clone(node.files)
	slices.SortFunc(files, func(a, b schema.FileEntry) int {
		return compareNames(path.Base(a.Path), path.Base(b.Path))
	})

	total := len(dirNames) + len(files)
	for i, name := range dirNames {
		connector, extension := treeBranch(i == total-1)
		label := name + "/"
		if useColors {
			label = contract.DirColor.Sprint(label)
		}
		lines = append(lines, prefix+connector+label)
		lines = appendTree(lines, node.dirs[name], prefix+extension, useColors)
	}
	for i, f := range files {
		connector, _ := treeBranch(len(dirNames)+i == total-1)
		line := fmt.Sprintf("%s%s%s (%s tokens)", prefix, connector, path.Base(f.Path), formatCount(f.Tokens))
		if flags := fileFlags(f, treeChurnFlagMin); len(flags) > 0 {
			line += " " + renderFlags(flags, useColors)
		}
		lines = append(lines, line)
	}
	return lines
}

func treeBranch(last bool) (connector, extension string) {
	if last {
		return "└── ", "    "
	}
	return "├── ", "│   "
}

// writeReportCompact renders a flat listing in report order.
func writeReportCompact(w io.Writer, report *schema.Report, useColors bool) error {
	lines := []string{"# " + report.Root}
	for _, h := range reportHeader(report) {
		lines = append(lines, "# "+h)
	}
	lines = append(lines, "")
	for _, f := range report.Files {
		line := fmt.Sprintf("%8d %s", f.Tokens, f.Path)
		if flags := fileFlags(f, compactChurnFlagMin); len(flags) > 0 {
			line += " " + renderFlags(flags, useColors)
		}
		lines = append(lines, line)
	}
	return writeLines(w, lines)
}

// writeReportTable generates and writes the human-readable ranked table.
func writeReportTable(w io.Writer, report *schema.Report, cfg *contract.Config) error {
	table := tablewriter.NewWriter(w)

	headers := []string{"Rank", "Path", "Tokens", "Size"}
	if report.GitAvailable {
		headers = append(headers, "Commits")
	}
	headers = append(headers, "Flags")
	table.Header(headers)

	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	maxWidth := getMaxTablePathWidth(cfg, report.GitAvailable)
	var data [][]string
	for i, f := range report.Files {
		row := []string{
			strconv.Itoa(i + 1),
			contract.TruncatePath(f.Path, maxWidth),
			formatCount(f.Tokens),
			formatCount(f.SizeBytes),
		}
		if report.GitAvailable {
			row = append(row, strconv.Itoa(f.GitCommits90d))
		}
		row = append(row, renderFlags(fileFlags(f, compactChurnFlagMin), cfg.UseColors))
		data = append(data, row)
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Showing %d files (total tokens: %s, skipped: %d)\n",
		report.TotalFiles, formatCount(report.TotalTokens), len(report.Skipped)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Scanned %s at %s. Git history: %s\n",
		report.Root, report.Timestamp, availability(report.GitAvailable)); err != nil {
		return err
	}
	return nil
}

func availability(ok bool) string {
	if ok {
		return "available"
	}
	return "unavailable"
}

// writeReportCSV writes one row per reported file.
func writeReportCSV(w io.Writer, files []schema.FileEntry) error {
	header := []string{
		"rank",
		"path",
		"tokens",
		"size_bytes",
		"content_hash",
		"is_generated",
		"todo_count",
		"fixme_count",
		"git_commits_90d",
		"git_last_commit",
	}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for i, f := range files {
			rec := []string{
				strconv.Itoa(i + 1),
				f.Path,
				strconv.Itoa(f.Tokens),
				strconv.FormatInt(f.SizeBytes, 10),
				f.ContentHash,
				strconv.FormatBool(f.IsGenerated),
				strconv.Itoa(f.TodoCount),
				strconv.Itoa(f.FixmeCount),
				strconv.Itoa(f.GitCommits90d),
				f.GitLastCommit,
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

// writeReportParquet writes the file list to outputFile.
func writeReportParquet(files []schema.FileEntry, outputFile string) error {
	if outputFile == "" {
		return errors.New("parquet output requires an output file")
	}
	if err := parquet.WriteFile(parquet.ConvertFileEntries(files), outputFile); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "💾 Wrote Parquet to %s\n", outputFile)
	return nil
}

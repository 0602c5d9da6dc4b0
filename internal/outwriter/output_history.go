package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/huangsam/recon/internal/contract"
	"github.com/huangsam/recon/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// WriteHistory outputs the git section of a scan. Formats without a natural
// history rendering fall back to tables.
func WriteHistory(stats schema.GitStats, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, stats)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.YAMLOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeYAML(w, stats)
		}, "Wrote YAML"); err != nil {
			return fmt.Errorf("error writing YAML output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeHistoryCSV(w, stats)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeHistoryTables(w, stats, cfg)
		}, "Wrote table")
	}
	return nil
}

// writeHistoryTables renders hotspots, stale files and co-change clusters as separate tables.
func writeHistoryTables(w io.Writer, stats schema.GitStats, cfg *contract.Config) error {
	if !stats.Available {
		_, err := fmt.Fprintf(w, "Git history is unavailable for %s\n", cfg.RootPath)
		return err
	}

	hotspots := make([][]string, 0, len(stats.Hotspots))
	for i, h := range stats.Hotspots {
		hotspots = append(hotspots, []string{strconv.Itoa(i + 1), h.Path, strconv.Itoa(h.Commits90d)})
	}
	title := fmt.Sprintf("🔥 HOTSPOTS (commits in the last %d days)", cfg.ChurnDays)
	if err := renderSection(w, title, []string{"Rank", "Path", "Commits"}, hotspots); err != nil {
		return err
	}

	stale := make([][]string, 0, len(stats.StaleFiles))
	for i, s := range stats.StaleFiles {
		stale = append(stale, []string{strconv.Itoa(i + 1), s.Path, s.LastCommit, strconv.Itoa(s.DaysStale)})
	}
	if err := renderSection(w, "🕰️  STALE FILES", []string{"Rank", "Path", "Last Commit", "Days"}, stale); err != nil {
		return err
	}

	clusters := make([][]string, 0, len(stats.CoChangeClusters))
	for i, c := range stats.CoChangeClusters {
		clusters = append(clusters, []string{
			strconv.Itoa(i + 1), c.Files[0], c.Files[1], strconv.Itoa(c.Commits), fmt.Sprintf("%.2f", c.Ratio),
		})
	}
	return renderSection(w, "🔗 CO-CHANGE CLUSTERS", []string{"Rank", "File A", "File B", "Commits", "Ratio"}, clusters)
}

// renderSection prints a title followed by a table, or a placeholder line when empty.
func renderSection(w io.Writer, title string, headers []string, rows [][]string) error {
	if _, err := fmt.Fprintln(w, title); err != nil {
		return err
	}
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "  (none)")
		return err
	}
	table := tablewriter.NewWriter(w)
	table.Header(headers)
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})
	if err := table.Bulk(rows); err != nil {
		return err
	}
	return table.Render()
}

// writeHistoryCSV flattens all three sections into one CSV with a section column.
func writeHistoryCSV(w io.Writer, stats schema.GitStats) error {
	header := []string{"section", "path", "other_path", "commits", "ratio", "last_commit", "days_stale"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, h := range stats.Hotspots {
			if err := cw.Write([]string{"hotspot", h.Path, "", strconv.Itoa(h.Commits90d), "", "", ""}); err != nil {
				return err
			}
		}
		for _, s := range stats.StaleFiles {
			if err := cw.Write([]string{"stale", s.Path, "", "", "", s.LastCommit, strconv.Itoa(s.DaysStale)}); err != nil {
				return err
			}
		}
		for _, c := range stats.CoChangeClusters {
			rec := []string{"cochange", c.Files[0], c.Files[1], strconv.Itoa(c.Commits), strconv.FormatFloat(c.Ratio, 'f', 4, 64), "", ""}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

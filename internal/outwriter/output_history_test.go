package outwriter

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/huangsam/recon/internal/contract"
	"github.com/huangsam/recon/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleStats() schema.GitStats {
	return schema.GitStats{
		Available: true,
		Hotspots:  []schema.Hotspot{{Path: "core/engine.go", Commits90d: 9}},
		StaleFiles: []schema.StaleFile{
			{Path: "docs/old.md", LastCommit: "2023-01-02T10:00:00+00:00", DaysStale: 400},
		},
	}
}

func TestWriteHistoryTables(t *testing.T) {
	cfg := &contract.Config{RootPath: "/work/demo", ChurnDays: 30}
	var buf bytes.Buffer
	require.NoError(t, writeHistoryTables(&buf, sampleStats(), cfg))

	out := buf.String()
	assert.Contains(t, out, "HOTSPOTS (commits in the last 30 days)")
	assert.Contains(t, out, "core/engine.go")
	assert.Contains(t, out, "docs/old.md")
	assert.Contains(t, out, "400")
	assert.Contains(t, out, "CO-CHANGE CLUSTERS\n  (none)")
}

func TestWriteHistoryTables_Unavailable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeHistoryTables(&buf, schema.GitStats{}, &contract.Config{RootPath: "/work/demo"}))
	assert.Equal(t, "Git history is unavailable for /work/demo\n", buf.String())
}

func TestWriteHistoryCSV(t *testing.T) {
	stats := sampleStats()
	stats.CoChangeClusters = []schema.CoChangeCluster{
		{Files: [2]string{"a.go", "b.go"}, Commits: 8, Ratio: 0.75},
	}
	var buf bytes.Buffer
	require.NoError(t, writeHistoryCSV(&buf, stats))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, []string{"hotspot", "core/engine.go", "", "9", "", "", ""}, records[1])
	assert.Equal(t, []string{"stale", "docs/old.md", "", "", "", "2023-01-02T10:00:00+00:00", "400"}, records[2])
	assert.Equal(t, []string{"cochange", "a.go", "b.go", "8", "0.7500", "", ""}, records[3])
}

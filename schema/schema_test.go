package schema_test

import (
	"encoding/json"
	"testing"

	"github.com/huangsam/recon/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestGitStats_MarshalJSON(t *testing.T) {
	t.Run("unavailable renders empty object", func(t *testing.T) {
		data, err := json.Marshal(schema.GitStats{})
		require.NoError(t, err)
		assert.Equal(t, "{}", string(data))
	})

	t.Run("available renders all sections", func(t *testing.T) {
		stats := schema.GitStats{
			Available:        true,
			Hotspots:         []schema.Hotspot{{Path: "a.go", Commits90d: 7}},
			StaleFiles:       []schema.StaleFile{},
			CoChangeClusters: []schema.CoChangeCluster{{Files: [2]string{"a.go", "b.go"}, Commits: 9, Ratio: 0.75}},
		}
		data, err := json.Marshal(stats)
		require.NoError(t, err)
		assert.JSONEq(t, `{
			"hotspots": [{"path": "a.go", "commits_90d": 7}],
			"stale_files": [],
			"cochange_clusters": [{"files": ["a.go", "b.go"], "commits": 9, "ratio": 0.75}]
		}`, string(data))
	})
}

func TestDirCounts_KeepsOrder(t *testing.T) {
	counts := schema.DirCounts{{Dir: "src", Count: 9}, {Dir: "a", Count: 3}, {Dir: "docs", Count: 1}}

	data, err := json.Marshal(counts)
	require.NoError(t, err)
	assert.Equal(t, `{"src":9,"a":3,"docs":1}`, string(data))

	out, err := yaml.Marshal(struct {
		ByDirectory schema.DirCounts `yaml:"by_directory"`
	}{counts})
	require.NoError(t, err)
	assert.Equal(t, "by_directory:\n    src: 9\n    a: 3\n    docs: 1\n", string(out))

	n, ok := counts.Lookup("a")
	assert.True(t, ok)
	assert.Equal(t, 3, n)
	_, ok = counts.Lookup("missing")
	assert.False(t, ok)
}

func TestDirCounts_Empty(t *testing.T) {
	data, err := json.Marshal(schema.DirCounts(nil))
	require.NoError(t, err)
	assert.Equal(t, "{}", string(data))
}

func TestFileEntry_OmitsZeroMetrics(t *testing.T) {
	data, err := json.Marshal(schema.FileEntry{Path: "main.go", Tokens: 10, SizeBytes: 40, ContentHash: "abc"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"path":"main.go","tokens":10,"size_bytes":40,"content_hash":"abc"}`, string(data))
}

func TestSkip_OptionalFields(t *testing.T) {
	size := int64(2_000_000)
	data, err := json.Marshal(schema.Skip{Path: "big.txt", Reason: schema.SkipTooLarge, SizeBytes: &size})
	require.NoError(t, err)
	assert.JSONEq(t, `{"path":"big.txt","reason":"too_large","size_bytes":2000000}`, string(data))
}

func TestDirCounts_UnmarshalJSON(t *testing.T) {
	var d schema.DirCounts
	require.NoError(t, json.Unmarshal([]byte(`{"src":3,".":1}`), &d))
	assert.Equal(t, schema.DirCounts{{Dir: "src", Count: 3}, {Dir: ".", Count: 1}}, d)

	require.NoError(t, json.Unmarshal([]byte(`{}`), &d))
	assert.Equal(t, schema.DirCounts{}, d)

	assert.Error(t, json.Unmarshal([]byte(`[1,2]`), &d))
	assert.Error(t, json.Unmarshal([]byte(`{"src":"many"}`), &d))
}

package history

import (
	"slices"
	"strings"
	"time"

	"github.com/huangsam/recon/schema"
)

// Thresholds for the summary lists.
const (
	HotspotMinCommits = 5
	StaleAfter        = 180 * 24 * time.Hour
	SummaryLimit      = 20
)

// Stats summarizes the output into hotspots, stale files and co-change clusters.
func (o *Output) Stats(now time.Time) schema.GitStats {
	if o == nil || !o.Available {
		return schema.GitStats{}
	}
	clusters := o.CoChange
	if clusters == nil {
		clusters = []schema.CoChangeCluster{}
	}
	return schema.GitStats{
		Available:        true,
		Hotspots:         Hotspots(o.Churn),
		StaleFiles:       StaleFiles(o.Staleness, now),
		CoChangeClusters: clusters,
	}
}

// Hotspots lists paths with at least HotspotMinCommits commits, busiest first.
func Hotspots(churn ChurnMap) []schema.Hotspot {
	hotspots := []schema.Hotspot{}
	for p, c := range churn {
		if c >= HotspotMinCommits {
			hotspots = append(hotspots, schema.Hotspot{Path: p, Commits90d: c})
		}
	}
	slices.SortFunc(hotspots, func(a, b schema.Hotspot) int {
		if a.Commits90d != b.Commits90d {
			return b.Commits90d - a.Commits90d
		}
		return strings.Compare(a.Path, b.Path)
	})
	if len(hotspots) > SummaryLimit {
		hotspots = hotspots[:SummaryLimit]
	}
	return hotspots
}

// StaleFiles lists paths whose newest commit is older than StaleAfter, stalest first.
// Unparseable dates are ignored.
func StaleFiles(staleness StalenessMap, now time.Time) []schema.StaleFile {
	cutoff := now.Add(-StaleAfter)
	stale := []schema.StaleFile{}
	for p, date := range staleness {
		last, err := time.Parse(time.RFC3339, date)
		if err != nil || !last.Before(cutoff) {
			continue
		}
		stale = append(stale, schema.StaleFile{
			Path:       p,
			LastCommit: date,
			DaysStale:  int(now.Sub(last) / (24 * time.Hour)),
		})
	}
	slices.SortFunc(stale, func(a, b schema.StaleFile) int {
		if a.DaysStale != b.DaysStale {
			return b.DaysStale - a.DaysStale
		}
		return strings.Compare(a.Path, b.Path)
	})
	if len(stale) > SummaryLimit {
		stale = stale[:SummaryLimit]
	}
	return stale
}

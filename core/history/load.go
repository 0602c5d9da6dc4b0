package history

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"

	"github.com/huangsam/recon/core/cochange"
	"github.com/huangsam/recon/internal/contract"
	"github.com/huangsam/recon/schema"
	"github.com/sirupsen/logrus"
)

// currentCacheVersion defines the version of the cached Output layout.
const currentCacheVersion = 1

// cacheTTL bounds how long a cached Output is trusted.
const cacheTTL = 24 * time.Hour

// Options selects the churn window and co-change thresholds.
type Options struct {
	ChurnDays int
	CoChange  cochange.Options
}

// DefaultOptions returns a 90-day churn window with default co-change thresholds.
func DefaultOptions() Options {
	return Options{ChurnDays: contract.DefaultChurnDays, CoChange: cochange.DefaultOptions()}
}

// Output bundles every history-derived signal for one root.
type Output struct {
	Available bool                     `json:"available"`
	Churn     ChurnMap                 `json:"churn"`
	Staleness StalenessMap             `json:"staleness"`
	CoChange  []schema.CoChangeCluster `json:"cochange"`
}

// Load runs all history queries for root. When store is non-nil, results are
// served from and written to it, keyed by the current HEAD.
func (r *Reader) Load(ctx context.Context, root string, store contract.CacheStore, opts Options) *Output {
	if !r.IsRepository(ctx, root) {
		return &Output{}
	}
	if store == nil {
		result, _ := r.compute(ctx, root, opts)
		return result
	}

	key := r.generateCacheKey(ctx, root, opts)
	if result := checkCacheHit(store, key); result != nil {
		contract.LogDebug("history cache hit", logrus.Fields{"root": root})
		return result
	}
	return r.computeAndStore(ctx, root, opts, store, key)
}

// compute runs every query. complete is false when any query failed, in which
// case the failed sections are empty for this scan only.
func (r *Reader) compute(ctx context.Context, root string, opts Options) (result *Output, complete bool) {
	churn, churnOK := r.Churn(ctx, root, opts.ChurnDays)
	staleness, stalenessOK := r.Staleness(ctx, root)
	records, logOK := r.FullLog(ctx, root)
	result = &Output{
		Available: true,
		Churn:     churn,
		Staleness: staleness,
		CoChange:  cochange.Cluster(records, opts.CoChange),
	}
	return result, churnOK && stalenessOK && logOK
}

// checkCacheHit attempts to retrieve and validate a cached result
func checkCacheHit(store contract.CacheStore, key string) *Output {
	data, version, ts, err := store.Get(key)
	if err != nil {
		return nil // Cache miss
	}
	if version != currentCacheVersion || time.Since(time.Unix(ts, 0)) > cacheTTL {
		return nil
	}
	var result Output
	if err := json.Unmarshal(data, &result); err != nil || !result.Available {
		return nil
	}
	return &result
}

// computeAndStore computes the result and stores it in cache.
// Degraded results are never stored.
func (r *Reader) computeAndStore(ctx context.Context, root string, opts Options, store contract.CacheStore, key string) *Output {
	result, complete := r.compute(ctx, root, opts)
	if !complete {
		contract.LogDebug("history degraded, not caching", logrus.Fields{"root": root})
		return result
	}
	if data, err := json.Marshal(result); err == nil {
		if err := store.Set(key, data, currentCacheVersion, r.now().Unix()); err != nil {
			contract.LogWarn("Failed to write history cache", err)
		}
	}
	return result
}

// generateCacheKey hashes everything that changes the history output. The day is
// part of the key because the churn window slides with the calendar.
func (r *Reader) generateCacheKey(ctx context.Context, root string, opts Options) string {
	repoHash, err := r.client.GetRepoHash(ctx, root)
	if err != nil {
		repoHash = ""
	}
	key := fmt.Sprintf("%s:%s:%d:%s:%d:%g:%d",
		root,
		repoHash,
		opts.ChurnDays,
		r.now().Format(time.DateOnly),
		opts.CoChange.MinCommits,
		opts.CoChange.MinRatio,
		opts.CoChange.Limit,
	)
	return fmt.Sprintf("%x", sha256.Sum256([]byte(key)))
}

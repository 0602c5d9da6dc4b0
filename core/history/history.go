// Package history runs read-only git queries and turns their output into
// churn, staleness and per-commit file sets.
package history

import (
	"context"
	"time"

	"github.com/huangsam/recon/internal/contract"
	"github.com/huangsam/recon/schema"
	"github.com/sirupsen/logrus"
)

// Reader issues history queries through a GitClient. Every query degrades to
// an empty result when git is missing, times out or exits non-zero, and
// reports false so the caller can tell a failure from an empty history.
type Reader struct {
	client contract.GitClient
	now    func() time.Time
}

// NewReader returns a Reader backed by client.
func NewReader(client contract.GitClient) *Reader {
	return &Reader{client: client, now: time.Now}
}

// IsRepository reports whether root is inside a git work tree.
func (r *Reader) IsRepository(ctx context.Context, root string) bool {
	inside, err := r.client.IsInsideWorkTree(ctx, root)
	if err != nil {
		contract.LogDebug("git unavailable", logrus.Fields{"root": root, "error": err})
		return false
	}
	return inside
}

// Churn counts commits per path over the trailing windowDays days.
func (r *Reader) Churn(ctx context.Context, root string, windowDays int) (ChurnMap, bool) {
	since := r.now().AddDate(0, 0, -windowDays)
	out, err := r.client.GetChurnLog(ctx, root, since)
	if err != nil {
		contract.LogDebug("churn query failed", logrus.Fields{"root": root, "error": err})
		return ChurnMap{}, false
	}
	return ParseChurnLog(out), true
}

// Staleness returns the most recent commit date for every path in history.
func (r *Reader) Staleness(ctx context.Context, root string) (StalenessMap, bool) {
	out, err := r.client.GetStalenessLog(ctx, root)
	if err != nil {
		contract.LogDebug("staleness query failed", logrus.Fields{"root": root, "error": err})
		return StalenessMap{}, false
	}
	return ParseStalenessLog(out), true
}

// FullLog returns the file set of every commit, newest first.
func (r *Reader) FullLog(ctx context.Context, root string) ([]schema.CommitRecord, bool) {
	out, err := r.client.GetCommitFilesLog(ctx, root)
	if err != nil {
		contract.LogDebug("commit log query failed", logrus.Fields{"root": root, "error": err})
		return nil, false
	}
	return ParseCommitLog(out), true
}

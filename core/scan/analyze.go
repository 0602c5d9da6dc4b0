package scan

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/huangsam/recon/core/classify"
	"github.com/huangsam/recon/schema"
	"golang.org/x/sync/errgroup"
)

// MaxFileBytes is the size ceiling above which files are skipped unread.
const MaxFileBytes = 1_000_000

// fileResult is the outcome of analyzing one file. Exactly one of entry and skip is set.
type fileResult struct {
	entry      *schema.FileEntry
	skip       *schema.Skip
	categories []classify.Category
}

// analyzeAll runs analyzeFile over paths on a bounded pool. Results are stored
// by input index so the caller can fold them in walk order.
func (s *Scanner) analyzeAll(ctx context.Context, paths []string) ([]fileResult, error) {
	results := make([]fileResult, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(s.cfg.Workers, 1))

	for i, rel := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = s.analyzeFile(rel)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// analyzeFile stats, reads, tokenizes and classifies one file.
func (s *Scanner) analyzeFile(rel string) fileResult {
	full := filepath.Join(s.cfg.RootPath, filepath.FromSlash(rel))

	info, err := os.Stat(full)
	if err != nil {
		return skipped(rel, schema.SkipStat)
	}
	size := info.Size()
	if size > MaxFileBytes {
		r := skipped(rel, schema.SkipTooLarge)
		r.skip.SizeBytes = &size
		return r
	}
	if !classify.IsText(full) {
		return skipped(rel, schema.SkipBinary)
	}

	data, err := os.ReadFile(full)
	if err != nil {
		return skipped(rel, schema.SkipReason(fmt.Sprintf("read_error: %v", err)))
	}
	// Invalid UTF-8 sequences are dropped rather than replaced.
	content := strings.ToValidUTF8(string(data), "")
	hash := classify.ContentHash(content)

	tokens := s.counter.Count(content, hash)
	if tokens > s.cfg.MaxFileTokens {
		r := skipped(rel, schema.SkipTooManyTokens)
		r.skip.Tokens = &tokens
		return r
	}

	categories := classify.Classify(rel, content)
	todos, fixmes := classify.CountTodos(content)
	return fileResult{
		entry: &schema.FileEntry{
			Path:        rel,
			Tokens:      tokens,
			SizeBytes:   size,
			ContentHash: hash,
			IsGenerated: slices.Contains(categories, classify.CategoryGenerated),
			TodoCount:   todos,
			FixmeCount:  fixmes,
		},
		categories: categories,
	}
}

func skipped(rel string, reason schema.SkipReason) fileResult {
	return fileResult{skip: &schema.Skip{Path: rel, Reason: reason}}
}

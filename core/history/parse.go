package history

import (
	"bufio"
	"bytes"
	"strings"

	"github.com/huangsam/recon/internal/contract"
	"github.com/huangsam/recon/schema"
)

// ChurnMap maps a path to the number of commits touching it in the window.
type ChurnMap map[string]int

// StalenessMap maps a path to the ISO-8601 author date of its newest commit.
type StalenessMap map[string]string

// eachLine yields every trimmed, non-empty line of out.
func eachLine(out []byte, fn func(line string)) {
	scanner := bufio.NewScanner(bytes.NewReader(out))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			fn(line)
		}
	}
}

// ParseChurnLog counts path occurrences in a decoration-free name-only log.
func ParseChurnLog(out []byte) ChurnMap {
	churn := make(ChurnMap)
	eachLine(out, func(line string) {
		churn[line]++
	})
	return churn
}

// parseHeader recognizes "<40-char hash> <timestamp>" lines.
func parseHeader(line string) (hash, date string, ok bool) {
	parts := strings.Split(line, " ")
	if len(parts) != 2 || len(parts[0]) != 40 {
		return "", "", false
	}
	return parts[0], parts[1], true
}

// logState is the position of the staleness parser within the log.
type logState int

const (
	awaitingHeader logState = iota
	collectingFiles
)

// ParseStalenessLog reads a newest-first log of header lines followed by file
// names and keeps the first (most recent) date seen for each path.
// File lines before the first header are ignored.
func ParseStalenessLog(out []byte) StalenessMap {
	staleness := make(StalenessMap)
	state := awaitingHeader
	var currentDate string

	eachLine(out, func(line string) {
		if _, date, ok := parseHeader(line); ok {
			currentDate = date
			state = collectingFiles
			return
		}
		if state != collectingFiles {
			return
		}
		if _, seen := staleness[line]; !seen {
			staleness[line] = currentDate
		}
	})
	return staleness
}

// parseCommitHeader recognizes the delimiter line, bare or followed by
// "<hash> <timestamp>".
func parseCommitHeader(line string) (rec schema.CommitRecord, ok bool) {
	if line == contract.CommitDelimiter {
		return rec, true
	}
	rest, found := strings.CutPrefix(line, contract.CommitDelimiter+" ")
	if !found {
		return rec, false
	}
	hash, date, ok := parseHeader(rest)
	if !ok {
		return rec, false
	}
	return schema.CommitRecord{Hash: hash, Timestamp: date}, true
}

// ParseCommitLog segments a log on the commit delimiter line into per-commit file sets.
// Commits that list no files are dropped.
func ParseCommitLog(out []byte) []schema.CommitRecord {
	var records []schema.CommitRecord
	var current schema.CommitRecord
	seen := make(map[string]struct{})

	flush := func() {
		if len(current.Files) > 0 {
			records = append(records, current)
		}
		current = schema.CommitRecord{}
		clear(seen)
	}

	eachLine(out, func(line string) {
		if header, ok := parseCommitHeader(line); ok {
			flush()
			current = header
			return
		}
		if _, dup := seen[line]; dup {
			return
		}
		seen[line] = struct{}{}
		current.Files = append(current.Files, line)
	})
	flush()
	return records
}

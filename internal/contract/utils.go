package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
)

// Flag labels attached to files in human-readable output.
const (
	GeneratedFlag = "gen"
	ChurnFlag     = "churn"
)

// Color variables for console output.
var (
	GeneratedColor = color.New(color.FgYellow)              // generated files are informational
	ChurnColor     = color.New(color.FgMagenta, color.Bold) // frequently changed files stand out
	DirColor       = color.New(color.FgCyan)                // directory names in tree output
)

// FormatFlags joins file flags for display, e.g. "[gen, churn:12]".
// It returns an empty string when there are no flags.
func FormatFlags(flags []string) string {
	if len(flags) == 0 {
		return ""
	}
	return "[" + strings.Join(flags, ", ") + "]"
}

// ColorFlag applies the color associated with a flag label.
func ColorFlag(flag string) string {
	switch {
	case flag == GeneratedFlag:
		return GeneratedColor.Sprint(flag)
	case strings.HasPrefix(flag, ChurnFlag):
		return ChurnColor.Sprint(flag)
	default:
		return flag
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. It returns os.Stdout when no path is given.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// ParseList splits a comma-separated flag value into trimmed, non-empty items.
// It returns nil when nothing remains so unset filters stay distinguishable.
func ParseList(s string) []string {
	var items []string
	for part := range strings.SplitSeq(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}

// GetCacheDBFilePath returns the path to the SQLite DB file for history caching.
func GetCacheDBFilePath() string {
	return homeFile(".recon_cache.db")
}

// GetBoltFilePath returns the path to the bbolt file for history caching.
func GetBoltFilePath() string {
	return homeFile(".recon_cache.bolt")
}

// GetRunsDBFilePath returns the path to the SQLite DB file for scan-run tracking.
func GetRunsDBFilePath() string {
	return homeFile(".recon_runs.db")
}

func homeFile(name string) string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return name
	}
	return filepath.Join(homeDir, name)
}

// TruncatePath truncates a file path to a maximum width with ellipsis prefix.
// Requires maxWidth > 3 to leave room for the "..." prefix and at least one character.
func TruncatePath(path string, maxWidth int) string {
	runes := []rune(path)
	if len(runes) > maxWidth && maxWidth > 3 {
		return "..." + string(runes[len(runes)-maxWidth+3:])
	}
	return path
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}

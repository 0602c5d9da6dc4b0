package classify

import (
	"strings"
	"unicode/utf8"

	"github.com/bmatcuk/doublestar/v4"
)

// headerLines is how many leading lines are searched for generator markers.
const headerLines = 10

// maxAvgLineLength flags minified output.
const maxAvgLineLength = 500

var generatedPathNames = toSet(
	"generated", "dist", "build", ".next", ".nuxt", "coverage", "__generated__",
	"node_modules", "vendor", ".cache", "out", "__pycache__", ".tox", ".eggs",
)

var generatedPathPatterns = []string{"*.egg-info"}

var generatedMarkers = []string{
	"generated",
	"do not edit",
	"auto-generated",
	"this file is generated",
	"@generated",
	"automatically generated",
	"autogenerated",
}

// GeneratedByPath reports whether any component of relPath names a generator output directory.
func GeneratedByPath(relPath string) bool {
	for part := range strings.SplitSeq(strings.ToLower(relPath), "/") {
		if _, ok := generatedPathNames[part]; ok {
			return true
		}
		for _, pattern := range generatedPathPatterns {
			if ok, _ := doublestar.Match(pattern, part); ok {
				return true
			}
		}
	}
	return false
}

// GeneratedByContent looks for generator markers in the first lines and for
// minified content whose leading lines average over 500 characters.
func GeneratedByContent(content string) bool {
	lines := strings.SplitN(content, "\n", headerLines+1)
	if len(lines) > headerLines {
		lines = lines[:headerLines]
	}

	header := strings.ToLower(strings.Join(lines, "\n"))
	for _, marker := range generatedMarkers {
		if strings.Contains(header, marker) {
			return true
		}
	}

	total := 0
	for _, line := range lines {
		total += utf8.RuneCountInString(line)
	}
	return float64(total)/float64(len(lines)) > maxAvgLineLength
}

// IsGenerated combines the path and content checks.
func IsGenerated(relPath, content string) bool {
	return GeneratedByPath(relPath) || GeneratedByContent(content)
}

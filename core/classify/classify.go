// Package classify holds the table-driven file classifiers: text detection,
// generated-code detection, config-surface categories and marker counts.
package classify

import (
	"crypto/sha256"
	"encoding/hex"
)

// Category is a label attached to a file by Classify.
type Category string

// CategoryGenerated marks generator output. Config categories use their table name.
const CategoryGenerated Category = "generated"

// Classify returns every category that applies to a file given its relative
// path and its decoded content.
func Classify(relPath, content string) []Category {
	var cats []Category
	if IsGenerated(relPath, content) {
		cats = append(cats, CategoryGenerated)
	}
	for _, c := range ConfigCategories(relPath) {
		cats = append(cats, Category(c))
	}
	return cats
}

// ContentHash returns the first 16 hex characters of the SHA-256 of content.
func ContentHash(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])[:16]
}

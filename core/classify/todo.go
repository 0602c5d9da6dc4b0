package classify

import "regexp"

var (
	todoPattern  = regexp.MustCompile(`(?i)\bTODO\b`)
	fixmePattern = regexp.MustCompile(`(?i)\bFIXME\b`)
)

// CountTodos counts whole-word TODO and FIXME markers, case-insensitively.
func CountTodos(content string) (todos, fixmes int) {
	return len(todoPattern.FindAllStringIndex(content, -1)), len(fixmePattern.FindAllStringIndex(content, -1))
}

package classify

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// sniffSize is how much of an unknown file is inspected for binary content.
const sniffSize = 8192

var textExtensions = toSet(
	".py", ".js", ".ts", ".jsx", ".tsx", ".vue", ".svelte", ".html", ".htm",
	".css", ".scss", ".sass", ".less", ".json", ".yaml", ".yml", ".toml", ".xml",
	".md", ".mdx", ".txt", ".rst", ".sh", ".bash", ".zsh", ".fish", ".ps1",
	".bat", ".cmd", ".sql", ".graphql", ".gql", ".proto", ".go", ".rs", ".rb",
	".php", ".java", ".kt", ".kts", ".scala", ".clj", ".cljs", ".edn", ".ex",
	".exs", ".erl", ".hrl", ".hs", ".lhs", ".ml", ".mli", ".fs", ".fsx", ".fsi",
	".cs", ".vb", ".swift", ".m", ".mm", ".h", ".hpp", ".c", ".cpp", ".cc",
	".cxx", ".r", ".jl", ".lua", ".vim", ".el", ".lisp", ".scm", ".rkt",
	".zig", ".nim", ".d", ".dart", ".v", ".sv", ".vhd", ".vhdl", ".tf", ".hcl",
	".dockerfile", ".containerfile", ".makefile", ".cmake", ".gradle", ".groovy",
	".rake", ".gemspec", ".podspec", ".cabal", ".nix", ".dhall", ".jsonc",
	".json5", ".cson", ".ini", ".cfg", ".conf", ".config", ".env", ".env.example",
	".env.local", ".env.development", ".env.production", ".gitignore", ".gitattributes",
	".editorconfig", ".prettierrc", ".eslintrc", ".stylelintrc", ".babelrc",
	".nvmrc", ".ruby-version", ".python-version", ".node-version", ".tool-versions",
)

var textNames = toSet(
	"readme", "license", "licence", "changelog", "authors", "contributors",
	"copying", "dockerfile", "containerfile", "makefile", "rakefile", "gemfile",
	"procfile", "brewfile", "vagrantfile", "justfile", "taskfile",
)

func toSet(items ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, it := range items {
		set[it] = struct{}{}
	}
	return set
}

// KnownText reports whether the name alone identifies a text file.
func KnownText(name string) bool {
	if _, ok := textExtensions[strings.ToLower(path.Ext(name))]; ok {
		return true
	}
	_, ok := textNames[strings.ToLower(name)]
	return ok
}

// LooksText reports whether a leading chunk of a file is NUL-free valid UTF-8.
// A multi-byte rune cut off at the end of the chunk still counts as text.
func LooksText(chunk []byte) bool {
	if bytes.IndexByte(chunk, 0) >= 0 {
		return false
	}
	if utf8.Valid(chunk) {
		return true
	}
	for cut := 1; cut < utf8.UTFMax && cut <= len(chunk); cut++ {
		if utf8.Valid(chunk[:len(chunk)-cut]) && !utf8.FullRune(chunk[len(chunk)-cut:]) {
			return len(chunk) == sniffSize
		}
	}
	return false
}

// IsText decides whether the file at fullPath should be analyzed as text.
// Unreadable files are treated as binary.
func IsText(fullPath string) bool {
	if KnownText(filepath.Base(fullPath)) {
		return true
	}
	f, err := os.Open(fullPath)
	if err != nil {
		return false
	}
	defer func() { _ = f.Close() }()

	buf := make([]byte, sniffSize)
	n, err := io.ReadFull(f, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return false
	}
	return LooksText(buf[:n])
}

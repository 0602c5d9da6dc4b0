package entrypoint

import (
	"fmt"
	"io/fs"
	"maps"
	"path"
	"regexp"
	"slices"
	"strings"

	"github.com/huangsam/recon/schema"
	"github.com/pelletier/go-toml/v2"
)

type pyprojectTOML struct {
	Project struct {
		Scripts map[string]any `toml:"scripts"`
	} `toml:"project"`
	Tool struct {
		Poetry struct {
			Scripts map[string]any `toml:"scripts"`
		} `toml:"poetry"`
	} `toml:"tool"`
}

// scriptTarget extracts "module:function" from a script value, which may be a
// plain string or a table with a "callable" key.
func scriptTarget(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case map[string]any:
		s, ok := t["callable"].(string)
		return s, ok
	}
	return "", false
}

func detectPyproject(fsys fs.FS, found []schema.Entrypoint) []schema.Entrypoint {
	const name = "pyproject.toml"
	data, ok := readManifest(fsys, name)
	if !ok {
		return found
	}
	var doc pyprojectTOML
	if err := toml.Unmarshal(data, &doc); err != nil {
		logParseError(name, err)
		return found
	}

	for _, scripts := range []map[string]any{doc.Project.Scripts, doc.Tool.Poetry.Scripts} {
		for _, script := range slices.Sorted(maps.Keys(scripts)) {
			target, ok := scriptTarget(scripts[script])
			if !ok {
				continue
			}
			module, _, hasFunc := strings.Cut(target, ":")
			if !hasFunc {
				continue
			}
			found = append(found, schema.Entrypoint{
				Path:     strings.ReplaceAll(strings.TrimSpace(module), ".", "/") + ".py",
				Type:     "pyproject.toml scripts",
				Evidence: fmt.Sprintf(`%s = "%s"`, script, target),
			})
		}
	}
	return found
}

type cargoTOML struct {
	Bin []struct {
		Name string `toml:"name"`
		Path string `toml:"path"`
	} `toml:"bin"`
	Lib *struct {
		Path string `toml:"path"`
	} `toml:"lib"`
}

func detectCargo(fsys fs.FS, found []schema.Entrypoint) []schema.Entrypoint {
	const name = "Cargo.toml"
	data, ok := readManifest(fsys, name)
	if !ok {
		return found
	}
	var doc cargoTOML
	if err := toml.Unmarshal(data, &doc); err != nil {
		logParseError(name, err)
		return found
	}

	if (len(doc.Bin) > 0 || strings.Contains(string(data), "src/main.rs")) && exists(fsys, "src/main.rs") {
		found = append(found, schema.Entrypoint{Path: "src/main.rs", Type: "Cargo.toml bin", Evidence: "Rust binary crate"})
	}
	for _, bin := range doc.Bin {
		if bin.Path == "" || bin.Path == "src/main.rs" || !exists(fsys, bin.Path) {
			continue
		}
		found = append(found, schema.Entrypoint{
			Path: bin.Path, Type: "Cargo.toml bin", Evidence: fmt.Sprintf(`[[bin]] name = "%s"`, bin.Name),
		})
	}

	if doc.Lib != nil || exists(fsys, "src/lib.rs") {
		libPath := "src/lib.rs"
		if doc.Lib != nil && doc.Lib.Path != "" {
			libPath = doc.Lib.Path
		}
		found = append(found, schema.Entrypoint{Path: libPath, Type: "Cargo.toml lib", Evidence: "Rust library crate"})
	}
	return found
}

func detectGo(fsys fs.FS, found []schema.Entrypoint) []schema.Entrypoint {
	if !exists(fsys, "go.mod") {
		return found
	}
	if entries, err := fs.ReadDir(fsys, "cmd"); err == nil {
		for _, e := range entries {
			if !e.IsDir() {
				continue
			}
			mainGo := path.Join("cmd", e.Name(), "main.go")
			if exists(fsys, mainGo) {
				found = append(found, schema.Entrypoint{Path: mainGo, Type: "go convention", Evidence: "cmd/*/main.go pattern"})
			}
		}
	}
	if exists(fsys, "main.go") {
		found = append(found, schema.Entrypoint{Path: "main.go", Type: "go convention", Evidence: "main.go in root"})
	}
	return found
}

// maxEvidence caps the Dockerfile instruction echoed as evidence.
const maxEvidence = 60

func detectDockerfile(fsys fs.FS, found []schema.Entrypoint) []schema.Entrypoint {
	data, ok := readManifest(fsys, "Dockerfile")
	if !ok {
		return found
	}
	for line := range strings.SplitSeq(string(data), "\n") {
		line = strings.TrimSpace(line)
		upper := strings.ToUpper(line)
		if !strings.HasPrefix(upper, "CMD ") && !strings.HasPrefix(upper, "ENTRYPOINT ") {
			continue
		}
		evidence := line
		if runes := []rune(line); len(runes) > maxEvidence {
			evidence = string(runes[:maxEvidence]) + "..."
		}
		return append(found, schema.Entrypoint{Path: "Dockerfile", Type: "Dockerfile", Evidence: evidence})
	}
	return found
}

var makeTargets = []struct {
	name    string
	pattern *regexp.Regexp
}{
	{"run", regexp.MustCompile(`(?m)^run\s*:`)},
	{"start", regexp.MustCompile(`(?m)^start\s*:`)},
	{"serve", regexp.MustCompile(`(?m)^serve\s*:`)},
	{"dev", regexp.MustCompile(`(?m)^dev\s*:`)},
}

func detectMakefile(fsys fs.FS, found []schema.Entrypoint) []schema.Entrypoint {
	data, ok := readManifest(fsys, "Makefile")
	if !ok {
		return found
	}
	for _, target := range makeTargets {
		if target.pattern.Match(data) {
			return append(found, schema.Entrypoint{Path: "Makefile", Type: "Makefile target", Evidence: "make " + target.name})
		}
	}
	return found
}

// conventionBases are probed in order; each base stops at its first existing extension.
var (
	conventionBases = []string{"src/index", "src/main", "index", "main", "app", "server"}
	conventionExts  = []string{".ts", ".js", ".tsx", ".jsx", ".py", ".go", ".rs"}
)

func detectConventions(fsys fs.FS, found []schema.Entrypoint) []schema.Entrypoint {
	for _, base := range conventionBases {
		for _, ext := range conventionExts {
			candidate := base + ext
			if !exists(fsys, candidate) || isDir(fsys, candidate) {
				continue
			}
			listed := slices.ContainsFunc(found, func(e schema.Entrypoint) bool { return e.Path == candidate })
			if !listed {
				found = append(found, schema.Entrypoint{
					Path: candidate, Type: "convention", Evidence: fmt.Sprintf("matches %s.* pattern", base),
				})
			}
			break
		}
	}
	return found
}

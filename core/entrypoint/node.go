package entrypoint

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/fs"
	"regexp"

	"github.com/huangsam/recon/schema"
)

var startScriptPattern = regexp.MustCompile(`(?:node|ts-node|tsx|bun)\s+(\S+)`)

// exportKeys are the export conditions treated as entrypoints.
var exportKeys = map[string]struct{}{
	".": {}, "./": {}, "import": {}, "require": {}, "default": {},
}

type packageJSON struct {
	Main    json.RawMessage            `json:"main"`
	Module  json.RawMessage            `json:"module"`
	Bin     json.RawMessage            `json:"bin"`
	Exports json.RawMessage            `json:"exports"`
	Scripts map[string]json.RawMessage `json:"scripts"`
}

// keyValue is one member of a JSON object, kept in document order.
type keyValue struct {
	key   string
	value json.RawMessage
}

// orderedObject decodes a JSON object into its members in document order.
// It returns false when raw is not an object.
func orderedObject(raw json.RawMessage) ([]keyValue, bool) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil || tok != json.Delim('{') {
		return nil, false
	}
	var members []keyValue
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, false
		}
		key, _ := keyTok.(string)
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, false
		}
		members = append(members, keyValue{key: key, value: value})
	}
	return members, true
}

// asString returns the JSON string in raw, if that is what it holds.
func asString(raw json.RawMessage) (string, bool) {
	var s string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil {
		return "", false
	}
	return s, true
}

func detectPackageJSON(fsys fs.FS, found []schema.Entrypoint) []schema.Entrypoint {
	const name = "package.json"
	data, ok := readManifest(fsys, name)
	if !ok {
		return found
	}
	var pkg packageJSON
	if err := json.Unmarshal(data, &pkg); err != nil {
		logParseError(name, err)
		return found
	}

	if main, ok := asString(pkg.Main); ok {
		found = append(found, schema.Entrypoint{
			Path: main, Type: "package.json main", Evidence: fmt.Sprintf(`"main": "%s"`, main),
		})
	}
	if module, ok := asString(pkg.Module); ok {
		found = append(found, schema.Entrypoint{
			Path: module, Type: "package.json module", Evidence: fmt.Sprintf(`"module": "%s"`, module),
		})
	}

	if bin, ok := asString(pkg.Bin); ok {
		found = append(found, schema.Entrypoint{
			Path: bin, Type: "package.json bin", Evidence: fmt.Sprintf(`"bin": "%s"`, bin),
		})
	} else if members, ok := orderedObject(pkg.Bin); ok {
		for _, m := range members {
			if target, ok := asString(m.value); ok {
				found = append(found, schema.Entrypoint{
					Path: target, Type: "package.json bin", Evidence: fmt.Sprintf(`"bin": {"%s": "%s"}`, m.key, target),
				})
			}
		}
	}

	if exports, ok := asString(pkg.Exports); ok {
		found = append(found, schema.Entrypoint{
			Path: exports, Type: "package.json exports", Evidence: fmt.Sprintf(`"exports": "%s"`, exports),
		})
	} else if members, ok := orderedObject(pkg.Exports); ok {
		for _, m := range members {
			if _, wanted := exportKeys[m.key]; !wanted {
				continue
			}
			if target, ok := asString(m.value); ok {
				found = append(found, schema.Entrypoint{
					Path: target, Type: "package.json exports", Evidence: fmt.Sprintf(`"exports": {"%s": ...}`, m.key),
				})
			}
		}
	}

	if start, ok := asString(pkg.Scripts["start"]); ok {
		if m := startScriptPattern.FindStringSubmatch(start); m != nil {
			found = append(found, schema.Entrypoint{
				Path: m[1], Type: "package.json scripts.start", Evidence: fmt.Sprintf(`"scripts.start": "%s"`, start),
			})
		}
	}
	return found
}

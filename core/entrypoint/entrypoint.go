// Package entrypoint guesses where to start reading a codebase from its
// manifests and from file naming conventions.
package entrypoint

import (
	"io/fs"

	"github.com/huangsam/recon/internal/contract"
	"github.com/huangsam/recon/schema"
	"github.com/sirupsen/logrus"
)

// detector inspects one manifest or convention and appends what it finds.
type detector func(fsys fs.FS, found []schema.Entrypoint) []schema.Entrypoint

// detectors run in order; conventions go last so they can skip paths already listed.
var detectors = []detector{
	detectPackageJSON,
	detectPyproject,
	detectCargo,
	detectGo,
	detectDockerfile,
	detectMakefile,
	detectConventions,
}

// Detect runs every detector against the root of fsys.
// Unreadable or malformed manifests contribute nothing.
func Detect(fsys fs.FS) []schema.Entrypoint {
	found := []schema.Entrypoint{}
	for _, d := range detectors {
		found = d(fsys, found)
	}
	return found
}

func exists(fsys fs.FS, name string) bool {
	_, err := fs.Stat(fsys, name)
	return err == nil
}

func isDir(fsys fs.FS, name string) bool {
	info, err := fs.Stat(fsys, name)
	return err == nil && info.IsDir()
}

// readManifest returns the file content, or false when it is absent or unreadable.
func readManifest(fsys fs.FS, name string) ([]byte, bool) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, false
	}
	return data, true
}

func logParseError(name string, err error) {
	contract.LogDebug("skipping malformed manifest", logrus.Fields{"file": name, "error": err})
}

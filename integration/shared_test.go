//go:build basic || database || integration

// Package integration contains end-to-end tests that drive the recon binary.
// These tests are excluded from normal test runs due to build tags.
// To run them: go test -tags basic,database,integration ./integration
package integration

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"testing"
)

var (
	// sharedReconPath holds the path to a shared recon binary built once for all tests.
	sharedReconPath string

	// buildOnce ensures we only build the binary once.
	buildOnce sync.Once

	// tempDir holds the temp directory for cleanup.
	tempDir string

	// buildEnv keeps the environment from before tests override HOME,
	// so the build reuses the regular module and build caches.
	buildEnv = os.Environ()
)

// TestMain handles setup and cleanup for all integration tests.
func TestMain(m *testing.M) {
	code := m.Run()

	// Cleanup the shared binary after all tests
	if tempDir != "" {
		_ = os.RemoveAll(tempDir)
	}

	os.Exit(code)
}

// getReconBinary returns the path to the recon binary, building it once if needed.
func getReconBinary() string {
	buildOnce.Do(func() {
		var err error
		tempDir, err = os.MkdirTemp("", "recon-integration-*")
		if err != nil {
			panic(fmt.Sprintf("failed to create temp dir: %v", err))
		}

		reconPath := filepath.Join(tempDir, "recon")
		buildCmd := exec.Command("go", "build", "-o", reconPath, ".")
		buildCmd.Dir = ".." // Build from parent directory (project root)
		buildCmd.Env = buildEnv
		if out, err := buildCmd.CombinedOutput(); err != nil {
			panic(fmt.Sprintf("failed to build recon: %v\n%s", err, out))
		}

		sharedReconPath = reconPath
	})

	return sharedReconPath
}

// isolateHome points HOME at a temp directory so default cache files never
// touch the real home.
func isolateHome(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
}

// runRecon runs the binary inside dir and returns its stdout.
func runRecon(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	cmd := exec.Command(getReconBinary(), args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	if err != nil {
		t.Logf("Command failed: %s\nStdout: %s\nStderr: %s", cmd.String(), stdout.String(), stderr.String())
	}
	return stdout.String(), err
}

// writeFixture writes files relative to root.
func writeFixture(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		full := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", rel, err)
		}
		if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", rel, err)
		}
	}
}

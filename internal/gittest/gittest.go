// Package gittest builds throwaway git repositories for tests.
package gittest

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"
)

// SkipIfGitNotAvailable skips the test if git binary is not found in PATH.
func SkipIfGitNotAvailable(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skipf("git binary not found in PATH: %v", err)
	}
}

// Repo is a git work tree rooted in a temp directory.
type Repo struct {
	t   *testing.T
	Dir string
}

// New initializes an empty repository under t.TempDir().
func New(t *testing.T) *Repo {
	t.Helper()
	SkipIfGitNotAvailable(t)
	r := &Repo{t: t, Dir: t.TempDir()}
	r.Git(time.Time{}, "init", "--quiet")
	r.Git(time.Time{}, "config", "user.email", "dev@example.com")
	r.Git(time.Time{}, "config", "user.name", "Dev")
	r.Git(time.Time{}, "config", "commit.gpgsign", "false")
	return r
}

// Write creates or overwrites a file relative to the repository root.
func (r *Repo) Write(rel, content string) {
	r.t.Helper()
	full := filepath.Join(r.Dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		r.t.Fatalf("mkdir for %s: %v", rel, err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		r.t.Fatalf("write %s: %v", rel, err)
	}
}

// Commit writes the given files, stages everything and commits at the given time.
// File contents are made unique per commit so every listed path counts as modified.
func (r *Repo) Commit(when time.Time, files ...string) {
	r.t.Helper()
	for _, f := range files {
		r.Write(f, f+"@"+when.Format(time.RFC3339Nano)+"\n")
	}
	r.Git(when, "add", "-A")
	r.Git(when, "commit", "--quiet", "--allow-empty", "-m", "change "+when.Format(time.DateOnly))
}

// Git runs a git command inside the repository, pinning author and committer dates
// when when is non-zero.
func (r *Repo) Git(when time.Time, args ...string) string {
	r.t.Helper()
	cmd := exec.Command("git", append([]string{"-C", r.Dir}, args...)...)
	cmd.Env = append(os.Environ(), "GIT_CONFIG_GLOBAL=/dev/null", "GIT_CONFIG_NOSYSTEM=1")
	if !when.IsZero() {
		stamp := when.Format(time.RFC3339)
		cmd.Env = append(cmd.Env, "GIT_AUTHOR_DATE="+stamp, "GIT_COMMITTER_DATE="+stamp)
	}
	out, err := cmd.CombinedOutput()
	if err != nil {
		r.t.Fatalf("git %v: %v\n%s", args, err, out)
	}
	return string(out)
}

package contract

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// GitTimeout bounds every git invocation. A query that runs longer is killed
// and treated as unavailable.
const GitTimeout = 30 * time.Second

// CommitDelimiter starts the header line GetCommitFilesLog emits before each
// commit, followed by the hash and the ISO-8601 author date.
const CommitDelimiter = "COMMIT"

// LocalGitClient implements the GitClient interface by executing the
// local 'git' binary installed on the machine.
type LocalGitClient struct {
	timeout time.Duration
}

var _ GitClient = &LocalGitClient{} // Compile-time check

// NewLocalGitClient creates a new instance of the local Git client.
func NewLocalGitClient() *LocalGitClient {
	return &LocalGitClient{timeout: GitTimeout}
}

// Run executes a git command and returns its stdout output.
func (c *LocalGitClient) Run(ctx context.Context, repoPath string, args ...string) ([]byte, error) {
	timeout := c.timeout
	if timeout <= 0 {
		timeout = GitTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	// Paths are printed verbatim instead of C-quoted so they line up with walked paths
	fullArgs := append([]string{"-c", "core.quotepath=off", "-C", repoPath}, args...)
	cmd := exec.CommandContext(ctx, "git", fullArgs...)
	out, err := cmd.Output()
	if ctx.Err() == context.DeadlineExceeded {
		return nil, fmt.Errorf("git %s timed out after %s in %q", strings.Join(args, " "), timeout, repoPath)
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		stderr := strings.TrimSpace(string(exitErr.Stderr))
		return nil, fmt.Errorf("git command failed in %q: %s. If this is not a Git repository, history sections are skipped", repoPath, stderr)
	} else if err != nil {
		return nil, fmt.Errorf("git command failed: %w. Ensure Git is installed and available on your PATH", err)
	}
	return out, nil
}

// IsInsideWorkTree implements the GitClient interface.
func (c *LocalGitClient) IsInsideWorkTree(ctx context.Context, repoPath string) (bool, error) {
	out, err := c.Run(ctx, repoPath, "rev-parse", "--is-inside-work-tree")
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(string(out)) == "true", nil
}

// GetRepoHash implements the GitClient interface.
func (c *LocalGitClient) GetRepoHash(ctx context.Context, repoPath string) (string, error) {
	out, err := c.Run(ctx, repoPath, "rev-parse", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// GetChurnLog implements the GitClient interface.
func (c *LocalGitClient) GetChurnLog(ctx context.Context, repoPath string, since time.Time) ([]byte, error) {
	args := []string{
		"log",
		"--since=" + since.Format(time.DateOnly),
		"--name-only",
		"--relative",
		"--pretty=format:",
	}
	return c.Run(ctx, repoPath, args...)
}

// GetStalenessLog implements the GitClient interface.
func (c *LocalGitClient) GetStalenessLog(ctx context.Context, repoPath string) ([]byte, error) {
	args := []string{
		"log",
		"--format=%H %aI",
		"--name-only",
		"--relative",
		"--diff-filter=ACMR",
	}
	return c.Run(ctx, repoPath, args...)
}

// GetCommitFilesLog implements the GitClient interface.
func (c *LocalGitClient) GetCommitFilesLog(ctx context.Context, repoPath string) ([]byte, error) {
	args := []string{
		"log",
		"--name-only",
		"--relative",
		"--pretty=format:" + CommitDelimiter + " %H %aI",
	}
	return c.Run(ctx, repoPath, args...)
}

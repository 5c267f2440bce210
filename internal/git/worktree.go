package git

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// execGit runs the system git binary with the given working directory and
// returns trimmed combined output. Callers wrap the error with their
// operation's message; the subprocess diagnostic rides along for the operator.
func execGit(dir string, args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	trimmed := strings.TrimSpace(string(out))
	if err != nil {
		if trimmed != "" {
			return trimmed, fmt.Errorf("%w: %s", err, trimmed)
		}
		return trimmed, err
	}
	return trimmed, nil
}

// ResetWorktreeDir discards and recreates the worktree directory and removes
// any stale registration left behind by an earlier run, so a following
// AddWorktree cannot fail on a dangling link.
func (c *Client) ResetWorktreeDir(dir string) error {
	abs := filepath.Join(c.repoDir, dir)
	if err := os.RemoveAll(abs); err != nil {
		return fmt.Errorf("failed to remove worktree directory: %w", err)
	}
	if err := os.MkdirAll(abs, 0o750); err != nil {
		return fmt.Errorf("failed to recreate worktree directory: %w", err)
	}

	if _, err := execGit(c.repoDir, "worktree", "prune"); err != nil {
		return fmt.Errorf("failed to prune worktrees: %w", err)
	}

	// Prune leaves the admin directory behind when the worktree was removed
	// moments ago; drop it explicitly.
	admin := filepath.Join(c.repoDir, ".git", "worktrees", filepath.Base(dir))
	if err := os.RemoveAll(admin); err != nil {
		return fmt.Errorf("failed to remove stale worktree registration: %w", err)
	}
	return nil
}

// AddWorktree attaches dir to the given branch as a linked worktree. When
// createBranch is true the branch is created (or reset) at HEAD; otherwise
// the existing branch is checked out into the directory.
func (c *Client) AddWorktree(dir, branch string, createBranch bool) error {
	var args []string
	if createBranch {
		args = []string{"worktree", "add", "-B", branch, dir}
	} else {
		args = []string{"worktree", "add", dir, branch}
	}
	if _, err := execGit(c.repoDir, args...); err != nil {
		return fmt.Errorf("failed to add worktree for branch %s: %w", branch, err)
	}
	return nil
}

// ClearWorktreeDir removes every entry in the worktree directory except the
// .git link file that binds it to the repository. The generator is not
// trusted to clean up output from deleted sources.
func (c *Client) ClearWorktreeDir(dir string) error {
	abs := filepath.Join(c.repoDir, dir)
	entries, err := os.ReadDir(abs)
	if err != nil {
		return fmt.Errorf("failed to read worktree directory: %w", err)
	}
	for _, entry := range entries {
		if entry.Name() == ".git" {
			continue
		}
		if err := os.RemoveAll(filepath.Join(abs, entry.Name())); err != nil {
			return fmt.Errorf("failed to clear %s: %w", entry.Name(), err)
		}
	}
	return nil
}

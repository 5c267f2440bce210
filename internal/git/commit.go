package git

import (
	"fmt"
	"path/filepath"
)

// Identity is the commit author/committer identity scoped to one operation.
// It is passed to git with -c flags so no ambient or global configuration is
// read or written.
type Identity struct {
	Name  string
	Email string
}

// WorktreeClean reports whether the linked worktree at dir has nothing to
// commit.
func (c *Client) WorktreeClean(dir string) (bool, error) {
	out, err := execGit(filepath.Join(c.repoDir, dir), "status", "--porcelain")
	if err != nil {
		return false, fmt.Errorf("failed to get worktree status: %w", err)
	}
	return out == "", nil
}

// CommitAll stages everything in the linked worktree and commits it with the
// given identity and message. When staging produces no changes the commit is
// skipped and committed=false is returned; republishing identical content is
// a no-op, not an error.
func (c *Client) CommitAll(dir string, id Identity, message string) (bool, error) {
	wt := filepath.Join(c.repoDir, dir)

	if _, err := execGit(wt, "add", "-A"); err != nil {
		return false, fmt.Errorf("failed to stage changes: %w", err)
	}

	clean, err := c.WorktreeClean(dir)
	if err != nil {
		return false, err
	}
	if clean {
		return false, nil
	}

	args := []string{
		"-c", "user.name=" + id.Name,
		"-c", "user.email=" + id.Email,
		"commit", "-m", message,
	}
	if _, err := execGit(wt, args...); err != nil {
		return false, fmt.Errorf("failed to commit: %w", err)
	}
	return true, nil
}

// WorktreeHead resolves the commit hash the linked worktree currently points
// at. Returns "" for a worktree without any commit yet.
func (c *Client) WorktreeHead(dir string) (string, error) {
	out, err := execGit(filepath.Join(c.repoDir, dir), "rev-parse", "--quiet", "--verify", "HEAD")
	if err != nil {
		// An unborn branch has no HEAD to resolve.
		return "", nil
	}
	return out, nil
}

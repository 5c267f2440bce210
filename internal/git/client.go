package git

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// Client handles Git operations for a single blog repository.
type Client struct {
	repoDir string
	ignored []string // repo-relative path prefixes excluded from the dirty check
}

// NewClient creates a new Git client rooted at the repository directory.
func NewClient(repoDir string) *Client { return &Client{repoDir: repoDir} }

// WithIgnoredPaths excludes repo-relative paths (and everything below them)
// from the cleanliness computation (fluent helper). The output directory and
// blogpub's own state directory live inside the repository and must not
// poison the publish precondition.
func (c *Client) WithIgnoredPaths(paths ...string) *Client {
	for _, p := range paths {
		p = strings.Trim(strings.TrimSpace(p), "/")
		if p != "" && p != "." {
			c.ignored = append(c.ignored, p)
		}
	}
	return c
}

// RepoDir returns the repository root the client operates on.
func (c *Client) RepoDir() string { return c.repoDir }

// EnsureRepository verifies the directory is a git repository.
func (c *Client) EnsureRepository() error {
	_, err := gogit.PlainOpen(c.repoDir)
	if err != nil {
		if errors.Is(err, gogit.ErrRepositoryNotExists) {
			return fmt.Errorf("%s is not a git repository", c.repoDir)
		}
		return fmt.Errorf("failed to open repository: %w", err)
	}
	return nil
}

// StatusSummary reports whether the authoring tree is clean, plus a short
// porcelain-style listing of dirty paths. Ignored paths are skipped.
func (c *Client) StatusSummary() (bool, string, error) {
	repo, err := gogit.PlainOpen(c.repoDir)
	if err != nil {
		return false, "", fmt.Errorf("failed to open repository: %w", err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return false, "", fmt.Errorf("failed to get worktree: %w", err)
	}

	status, err := worktree.Status()
	if err != nil {
		return false, "", fmt.Errorf("failed to get status: %w", err)
	}

	var dirty []string
	for path, st := range status {
		if c.isIgnored(path) {
			continue
		}
		if st.Staging == gogit.Unmodified && st.Worktree == gogit.Unmodified {
			continue
		}
		dirty = append(dirty, fmt.Sprintf("%c%c %s", st.Staging, st.Worktree, path))
	}
	if len(dirty) == 0 {
		return true, "", nil
	}

	sort.Strings(dirty)
	return false, strings.Join(dirty, "\n"), nil
}

// isIgnored reports whether a slash-separated repo-relative path falls under
// one of the excluded prefixes.
func (c *Client) isIgnored(path string) bool {
	for _, prefix := range c.ignored {
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return true
		}
	}
	return false
}

// CurrentBranch returns the short name of the checked-out branch, or "" when
// HEAD is detached.
func (c *Client) CurrentBranch() (string, error) {
	repo, err := gogit.PlainOpen(c.repoDir)
	if err != nil {
		return "", fmt.Errorf("failed to open repository: %w", err)
	}

	head, err := repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			// Unborn HEAD (fresh repository without commits)
			return "", nil
		}
		return "", fmt.Errorf("failed to resolve HEAD: %w", err)
	}
	if !head.Name().IsBranch() {
		return "", nil
	}
	return head.Name().Short(), nil
}

// BranchExists reports whether a local branch reference exists.
func (c *Client) BranchExists(name string) (bool, error) {
	repo, err := gogit.PlainOpen(c.repoDir)
	if err != nil {
		return false, fmt.Errorf("failed to open repository: %w", err)
	}

	_, err = repo.Reference(plumbing.NewBranchReferenceName(name), false)
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to look up branch %s: %w", name, err)
	}
	return true, nil
}

package commands

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"git.home.luguber.info/inful/blogpub/internal/config"
	"git.home.luguber.info/inful/blogpub/internal/content"
	"git.home.luguber.info/inful/blogpub/internal/git"
	"git.home.luguber.info/inful/blogpub/internal/history"
)

// StatusCmd implements the 'status' command.
type StatusCmd struct{}

func (s *StatusCmd) Run(_ *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return err
	}
	repoDir, err := RepoRoot(root.Config)
	if err != nil {
		return fmt.Errorf("resolve repository root: %w", err)
	}
	return RunStatus(context.Background(), cfg, repoDir)
}

func RunStatus(ctx context.Context, cfg *config.Config, repoDir string) error {
	client := git.NewClient(repoDir).WithIgnoredPaths(cfg.Generator.OutputDir, config.StateDir)
	if err := client.EnsureRepository(); err != nil {
		return err
	}

	branch, err := client.CurrentBranch()
	if err != nil {
		return err
	}
	if branch == "" {
		branch = "(no checked-out branch)"
	}

	clean, summary, err := client.StatusSummary()
	if err != nil {
		return err
	}

	fmt.Printf("Repository:     %s\n", repoDir)
	fmt.Printf("Branch:         %s\n", branch)
	if clean {
		fmt.Println("Working tree:   clean")
	} else {
		fmt.Println("Working tree:   dirty (publish will refuse)")
		fmt.Println(indent(summary, "  "))
	}

	exists, err := client.BranchExists(cfg.Git.TargetBranch)
	if err != nil {
		return err
	}
	if exists {
		fmt.Printf("Target branch:  %s\n", cfg.Git.TargetBranch)
	} else {
		fmt.Printf("Target branch:  %s (will be created on first publish)\n", cfg.Git.TargetBranch)
	}

	if _, err := exec.LookPath(cfg.Generator.Command); err != nil {
		fmt.Printf("Generator:      %s (not found in PATH)\n", cfg.Generator.Command)
	} else {
		fmt.Printf("Generator:      %s\n", cfg.Generator.Command)
	}

	posts, err := content.ScanPosts(repoDir, cfg.Content.Dir)
	if err != nil {
		fmt.Printf("Content:        unreadable (%v)\n", err)
	} else {
		fmt.Printf("Content:        %d posts under %s/\n", len(posts), cfg.Content.Dir)
	}

	printLastPublish(ctx, cfg, repoDir)
	return nil
}

// printLastPublish shows the most recent history entry. Status is a read-only
// command, so a missing database is reported rather than created.
func printLastPublish(ctx context.Context, cfg *config.Config, repoDir string) {
	if cfg.History.Disabled {
		return
	}
	dbPath := cfg.History.ResolvePath(repoDir)
	if _, err := os.Stat(dbPath); err != nil {
		fmt.Println("Last publish:   none recorded")
		return
	}
	store, err := history.NewStore(dbPath)
	if err != nil {
		fmt.Printf("Last publish:   history unreadable (%v)\n", err)
		return
	}
	defer func() { _ = store.Close() }()

	entries, err := store.Recent(ctx, 1)
	if err != nil || len(entries) == 0 {
		fmt.Println("Last publish:   none recorded")
		return
	}
	e := entries[0]
	hash := shortHash(e.CommitHash)
	if hash == "" {
		hash = "-"
	}
	fmt.Printf("Last publish:   %s (%s, %s) at %s\n",
		e.Outcome, e.Trigger, hash, e.StartedAt.Format(time.RFC3339))
}

func indent(s, prefix string) string {
	return prefix + strings.ReplaceAll(s, "\n", "\n"+prefix)
}

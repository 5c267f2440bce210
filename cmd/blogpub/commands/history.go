package commands

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"git.home.luguber.info/inful/blogpub/internal/config"
	"git.home.luguber.info/inful/blogpub/internal/history"
)

// HistoryCmd implements the 'history' command.
type HistoryCmd struct {
	Limit int    `short:"n" default:"10" help:"Number of entries to show"`
	ID    string `arg:"" optional:"" help:"Show full detail for one publish by ID"`
}

func (h *HistoryCmd) Run(_ *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return err
	}
	repoDir, err := RepoRoot(root.Config)
	if err != nil {
		return fmt.Errorf("resolve repository root: %w", err)
	}

	if cfg.History.Disabled {
		fmt.Println("Publish history is disabled in the configuration")
		return nil
	}
	dbPath := cfg.History.ResolvePath(repoDir)
	if _, err := os.Stat(dbPath); err != nil {
		fmt.Println("No publish history recorded yet")
		return nil
	}

	store, err := history.NewStore(dbPath)
	if err != nil {
		return fmt.Errorf("open history store: %w", err)
	}
	defer func() { _ = store.Close() }()

	ctx := context.Background()
	if h.ID != "" {
		entry, err := store.ByID(ctx, h.ID)
		if err != nil {
			return err
		}
		printEntryDetail(entry)
		return nil
	}

	entries, err := store.Recent(ctx, h.Limit)
	if err != nil {
		return fmt.Errorf("read history: %w", err)
	}
	if len(entries) == 0 {
		fmt.Println("No publish history recorded yet")
		return nil
	}
	for _, e := range entries {
		printEntryLine(e)
	}
	return nil
}

func printEntryLine(e history.Entry) {
	hash := shortHash(e.CommitHash)
	if hash == "" {
		hash = "-"
	}
	fmt.Printf("%s  %-10s %-9s %-12s %s\n",
		e.StartedAt.Format(time.RFC3339), e.Outcome, e.Trigger, hash, e.ID)
	if e.Error != "" {
		fmt.Printf("%26s error: %s\n", "", e.Error)
	}
}

func printEntryDetail(e *history.Entry) {
	fmt.Printf("ID:       %s\n", e.ID)
	fmt.Printf("Started:  %s\n", e.StartedAt.Format(time.RFC3339))
	fmt.Printf("Trigger:  %s\n", e.Trigger)
	fmt.Printf("Outcome:  %s\n", e.Outcome)
	fmt.Printf("Branch:   %s\n", e.Branch)
	if e.CommitHash != "" {
		fmt.Printf("Commit:   %s\n", e.CommitHash)
	}
	if e.Message != "" {
		fmt.Printf("Message:  %s\n", e.Message)
	}
	if e.Error != "" {
		fmt.Printf("Error:    %s\n", e.Error)
	}
	fmt.Printf("Duration: %s\n", e.Duration.Round(time.Millisecond))
	if len(e.StepDurations) > 0 {
		steps := make([]string, 0, len(e.StepDurations))
		for name := range e.StepDurations {
			steps = append(steps, name)
		}
		sort.Strings(steps)
		fmt.Println("Steps:")
		for _, name := range steps {
			fmt.Printf("  %-18s %s\n", name, e.StepDurations[name].Round(time.Millisecond))
		}
	}
}

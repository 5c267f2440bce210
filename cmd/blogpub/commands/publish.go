package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/blogpub/internal/config"
	"git.home.luguber.info/inful/blogpub/internal/history"
	"git.home.luguber.info/inful/blogpub/internal/logfields"
	"git.home.luguber.info/inful/blogpub/internal/notify"
	"git.home.luguber.info/inful/blogpub/internal/publish"
)

// PublishCmd implements the 'publish' command.
type PublishCmd struct {
	Message string `arg:"" optional:"" help:"Commit message (defaults to a timestamped message)"`
}

func (p *PublishCmd) Run(_ *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return err
	}
	repoDir, err := RepoRoot(root.Config)
	if err != nil {
		return fmt.Errorf("resolve repository root: %w", err)
	}
	return RunPublish(context.Background(), cfg, repoDir, p.Message)
}

func RunPublish(ctx context.Context, cfg *config.Config, repoDir, message string) error {
	// Provide friendly user-facing messages on stdout; diagnostics go to the
	// logger on stderr.
	fmt.Println("Publishing site")

	pub := publish.New(cfg, repoDir)

	if !cfg.History.Disabled {
		store, err := history.NewStore(cfg.History.ResolvePath(repoDir))
		if err != nil {
			slog.Warn("Publish history disabled", logfields.Error(err))
		} else {
			defer func() { _ = store.Close() }()
			pub = pub.WithHistory(store)
		}
	}

	if cfg.Notify != nil && cfg.Notify.NATSURL != "" {
		client, err := notify.NewClient(cfg.Notify)
		if err != nil {
			slog.Warn("Notifications disabled", logfields.Error(err))
		} else {
			defer client.Close()
			pub = pub.WithNotifier(client)
		}
	}

	report, err := pub.Run(ctx, publish.Options{
		Message: message,
		Trigger: publish.TriggerManual,
	})
	if err != nil {
		return err
	}

	switch report.Outcome {
	case publish.OutcomeNoChanges:
		fmt.Printf("Nothing to publish: %s already matches the generated site\n", report.Branch)
	default:
		fmt.Printf("Published %s (commit %s) in %s\n", report.Branch, shortHash(report.CommitHash), report.Duration().Round(time.Millisecond))
	}
	return nil
}

func shortHash(hash string) string {
	if len(hash) > 12 {
		return hash[:12]
	}
	return hash
}

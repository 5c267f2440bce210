package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"path/filepath"
	"syscall"

	"git.home.luguber.info/inful/blogpub/internal/config"
	"git.home.luguber.info/inful/blogpub/internal/daemon"
)

// DaemonCmd implements the 'daemon' command.
type DaemonCmd struct{}

func (d *DaemonCmd) Run(g *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	repoDir, err := RepoRoot(root.Config)
	if err != nil {
		return fmt.Errorf("resolve repository root: %w", err)
	}
	configPath, err := filepath.Abs(root.Config)
	if err != nil {
		return fmt.Errorf("resolve config path: %w", err)
	}
	return RunDaemon(cfg, repoDir, configPath, g.Logger)
}

// RunDaemon blocks until SIGINT or SIGTERM, then lets the daemon drain any
// in-flight publish before returning.
func RunDaemon(cfg *config.Config, repoDir, configPath string, logger *slog.Logger) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	dm, err := daemon.New(cfg, repoDir, configPath, logger)
	if err != nil {
		return fmt.Errorf("failed to create daemon: %w", err)
	}
	return dm.Run(ctx)
}

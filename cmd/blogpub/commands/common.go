package commands

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
)

// Global context passed to subcommands if we need to share global state later.
type Global struct {
	Logger *slog.Logger
}

// CLI definition & global flags - used by commands that need access to root config.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"blogpub.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Publish PublishCmd `cmd:"" help:"Generate the site and push it to the target branch"`
	Init    InitCmd    `cmd:"" help:"Initialize a new configuration file"`
	Status  StatusCmd  `cmd:"" help:"Show repository and publish state"`
	Audit   AuditCmd   `cmd:"" help:"Audit content front matter and links without publishing"`
	History HistoryCmd `cmd:"" help:"Show recent publish attempts"`
	Daemon  DaemonCmd  `cmd:"" help:"Run the publishing daemon (webhook listener and scheduler)"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

// RepoRoot returns the authoring repository root for a config path: the
// directory that holds the configuration file.
func RepoRoot(configPath string) (string, error) {
	abs, err := filepath.Abs(configPath)
	if err != nil {
		return "", err
	}
	return filepath.Dir(abs), nil
}

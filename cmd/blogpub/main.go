package main

import (
	"fmt"
	"log/slog"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/blogpub/cmd/blogpub/commands"
	"git.home.luguber.info/inful/blogpub/internal/errors"
	"git.home.luguber.info/inful/blogpub/internal/version"
)

func main() {
	var cli commands.CLI
	ctx := kong.Parse(&cli,
		kong.Name("blogpub"),
		kong.Description("Publish a static blog to a git branch via a linked worktree"),
		kong.UsageOnError(),
		kong.Vars{
			"version": fmt.Sprintf("blogpub %s (commit %s, built %s)",
				version.Version, version.GitCommit, version.BuildTime),
		},
	)

	err := ctx.Run(&commands.Global{Logger: slog.Default()})

	// HandleError is a no-op for nil errors; otherwise it prints the
	// classified message and exits with the category's code.
	adapter := errors.NewCLIErrorAdapter(cli.Verbose, slog.Default())
	adapter.HandleError(err)
}

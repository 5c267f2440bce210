package commands

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alecthomas/kong"
	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/blogpub/internal/config"
	"git.home.luguber.info/inful/blogpub/internal/content"
)

func newParser(t *testing.T, cli *CLI) *kong.Kong {
	t.Helper()
	parser, err := kong.New(cli, kong.Vars{"version": "test"})
	require.NoError(t, err)
	return parser
}

func TestCLIParsesCommands(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		command string
	}{
		{name: "publish", args: []string{"publish"}, command: "publish"},
		{name: "publish with message", args: []string{"publish", "weekly update"}, command: "publish"},
		{name: "init", args: []string{"init", "--force"}, command: "init"},
		{name: "status", args: []string{"status"}, command: "status"},
		{name: "audit", args: []string{"audit", "--output", "--strict", "-q"}, command: "audit"},
		{name: "history", args: []string{"history", "-n", "5"}, command: "history"},
		{name: "daemon", args: []string{"daemon"}, command: "daemon"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cli CLI
			parser := newParser(t, &cli)
			ctx, err := parser.Parse(tt.args)
			require.NoError(t, err)
			require.Equal(t, tt.command, strings.Fields(ctx.Command())[0])
		})
	}
}

func TestCLIFlagValues(t *testing.T) {
	var cli CLI
	parser := newParser(t, &cli)
	_, err := parser.Parse([]string{"-c", "custom.yaml", "-v", "publish", "weekly update"})
	require.NoError(t, err)
	require.Equal(t, "custom.yaml", cli.Config)
	require.True(t, cli.Verbose)
	require.Equal(t, "weekly update", cli.Publish.Message)

	var cli2 CLI
	parser = newParser(t, &cli2)
	_, err = parser.Parse([]string{"history", "-n", "25", "some-id"})
	require.NoError(t, err)
	require.Equal(t, 25, cli2.History.Limit)
	require.Equal(t, "some-id", cli2.History.ID)
}

func TestCLIDefaults(t *testing.T) {
	var cli CLI
	parser := newParser(t, &cli)
	_, err := parser.Parse([]string{"history"})
	require.NoError(t, err)
	require.Equal(t, "blogpub.yaml", cli.Config)
	require.Equal(t, 10, cli.History.Limit)
	require.False(t, cli.Verbose)
}

func TestRepoRoot(t *testing.T) {
	dir := t.TempDir()
	root, err := RepoRoot(filepath.Join(dir, "blogpub.yaml"))
	require.NoError(t, err)
	require.Equal(t, dir, root)
}

func TestRunInit(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "blogpub.yaml")

	require.NoError(t, RunInit(cfgPath, false))

	cfg, err := config.Load(cfgPath)
	require.NoError(t, err)
	require.Equal(t, "1", cfg.Version)

	ignore, err := os.ReadFile(filepath.Join(dir, ".gitignore"))
	require.NoError(t, err)
	require.Contains(t, string(ignore), cfg.Generator.OutputDir)

	// A second init refuses to clobber unless forced.
	require.Error(t, RunInit(cfgPath, false))
	require.NoError(t, RunInit(cfgPath, true))
}

func TestRunStatus(t *testing.T) {
	repoDir := initCommandRepo(t)
	cfg := commandConfig()

	require.NoError(t, RunStatus(context.Background(), cfg, repoDir))
}

func TestRunStatusOutsideRepository(t *testing.T) {
	require.Error(t, RunStatus(context.Background(), commandConfig(), t.TempDir()))
}

func TestReportFindings(t *testing.T) {
	findings := []content.Finding{
		{File: "a.md", Rule: "front-matter", Severity: content.SeverityError, Message: "missing title"},
		{File: "b.md", Rule: "slug", Severity: content.SeverityWarning, Message: "filename differs from slug"},
		{File: "c.md", Rule: "link", Severity: content.SeverityWarning, Message: "dangling destination"},
	}

	errs, warns := reportFindings(findings, false)
	require.Equal(t, 1, errs)
	require.Equal(t, 2, warns)

	// Quiet mode suppresses warning output but still counts them.
	errs, warns = reportFindings(findings, true)
	require.Equal(t, 1, errs)
	require.Equal(t, 2, warns)
}

func TestShortHash(t *testing.T) {
	require.Equal(t, "abc", shortHash("abc"))
	require.Equal(t, "0123456789ab", shortHash("0123456789abcdef0123"))
	require.Equal(t, "", shortHash(""))
}

func TestIndent(t *testing.T) {
	require.Equal(t, "  a\n  b", indent("a\nb", "  "))
}

func initCommandRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	repo, err := gogit.PlainInit(dir, false)
	require.NoError(t, err)

	post := filepath.Join(dir, "content", "hello.md")
	require.NoError(t, os.MkdirAll(filepath.Dir(post), 0o750))
	require.NoError(t, os.WriteFile(post, []byte("---\ntitle: Hello\ndate: 2026-01-02\n---\n\nHi.\n"), 0o600))

	wt, err := repo.Worktree()
	require.NoError(t, err)
	require.NoError(t, wt.AddWithOptions(&gogit.AddOptions{All: true}))
	_, err = wt.Commit("seed", &gogit.CommitOptions{
		Author: &object.Signature{Name: "Test User", Email: "test@example.com", When: time.Now()},
	})
	require.NoError(t, err)
	return dir
}

func commandConfig() *config.Config {
	return &config.Config{
		Version: "1",
		Site:    config.SiteConfig{Title: "Test Blog"},
		Content: config.ContentConfig{Dir: "content"},
		Generator: config.GeneratorConfig{
			Command:   "true",
			OutputDir: "public",
		},
		Git: config.GitConfig{
			TargetBranch: "gh-pages",
			Remote:       "origin",
			Name:         "Blog Publisher",
			Email:        "publisher@example.com",
		},
	}
}

package daemon

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/blogpub/internal/config"
	"git.home.luguber.info/inful/blogpub/internal/publish"
)

// initAuthoringRepo creates a repository with one commit using go-git only,
// so these tests run without a git binary on PATH.
func initAuthoringRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	repo, err := gogit.PlainInit(dir, false)
	require.NoError(t, err)

	path := filepath.Join(dir, "content", "hello.md")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte("# hello\n"), 0o600))

	wt, err := repo.Worktree()
	require.NoError(t, err)
	require.NoError(t, wt.AddWithOptions(&gogit.AddOptions{All: true}))
	_, err = wt.Commit("seed", &gogit.CommitOptions{
		Author: &object.Signature{Name: "Test User", Email: "test@example.com", When: time.Now()},
	})
	require.NoError(t, err)
	return dir
}

func daemonConfig(listen string) *config.Config {
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
		Daemon: &config.DaemonConfig{
			Listen:    listen,
			QueueSize: 4,
			Metrics:   config.MetricsConfig{Enabled: true, Path: "/metrics"},
		},
	}
}

func newTestDaemon(t *testing.T, cfg *config.Config, repoDir string) *Daemon {
	t.Helper()
	d, err := New(cfg, repoDir, "", discardLogger())
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = d.scheduler.Stop()
		if d.historyStore != nil {
			_ = d.historyStore.Close()
		}
	})
	return d
}

func TestNew_AppliesDaemonDefaults(t *testing.T) {
	cfg := daemonConfig("")
	cfg.Daemon = nil

	d := newTestDaemon(t, cfg, t.TempDir())

	require.NotNil(t, d.cfg.Daemon)
	require.Equal(t, ":8153", d.cfg.Daemon.Listen)
	require.Equal(t, 16, d.cfg.Daemon.QueueSize)
	require.NotNil(t, d.historyStore, "history store should open by default")
	require.Nil(t, d.notifier)
}

func TestNew_RespectsHistoryDisabled(t *testing.T) {
	cfg := daemonConfig(":0")
	cfg.History.Disabled = true

	d := newTestDaemon(t, cfg, t.TempDir())
	require.Nil(t, d.historyStore)
}

func TestNew_RejectsBadInterval(t *testing.T) {
	cfg := daemonConfig(":0")
	cfg.Daemon.PublishInterval = "often"

	_, err := New(cfg, t.TempDir(), "", discardLogger())
	require.Error(t, err)
}

func TestDaemon_AuthoringBranch(t *testing.T) {
	t.Run("resolves checked-out branch", func(t *testing.T) {
		repoDir := initAuthoringRepo(t)
		d := newTestDaemon(t, daemonConfig(":0"), repoDir)

		branch, err := d.AuthoringBranch()
		require.NoError(t, err)
		require.Equal(t, "master", branch)
	})

	t.Run("fails outside a repository", func(t *testing.T) {
		d := newTestDaemon(t, daemonConfig(":0"), t.TempDir())

		_, err := d.AuthoringBranch()
		require.Error(t, err)
	})
}

func TestDaemon_EnqueuePublish(t *testing.T) {
	d := newTestDaemon(t, daemonConfig(":0"), t.TempDir())

	job, err := d.EnqueuePublish(publish.TriggerManual, "hello")
	require.NoError(t, err)
	require.NotEmpty(t, job.ID)
	require.Equal(t, publish.TriggerManual, job.Trigger)
	require.Equal(t, 1, d.queue.Length())
}

func TestDaemon_RunServesAndShutsDown(t *testing.T) {
	repoDir := initAuthoringRepo(t)
	cfg := daemonConfig("127.0.0.1:0")

	d, err := New(cfg, repoDir, "", discardLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	runDone := make(chan error, 1)
	go func() { runDone <- d.Run(ctx) }()

	var baseURL string
	require.Eventually(t, func() bool {
		addr := d.ServerAddr()
		if addr == "" || addr == "127.0.0.1:0" {
			return false
		}
		baseURL = "http://" + addr
		resp, herr := http.Get(baseURL + "/healthz")
		if herr != nil {
			return false
		}
		defer resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 10*time.Second, 25*time.Millisecond)

	resp, err := http.Get(baseURL + "/status")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(baseURL + "/metrics")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-runDone:
		require.NoError(t, err)
	case <-time.After(15 * time.Second):
		t.Fatal("daemon did not shut down")
	}
}

func TestDaemon_ApplyConfig(t *testing.T) {
	repoDir := initAuthoringRepo(t)
	d := newTestDaemon(t, daemonConfig(":0"), repoDir)
	ctx := context.Background()

	t.Run("identical config is a no-op", func(t *testing.T) {
		before := d.publisher
		require.NoError(t, d.applyConfig(ctx, daemonConfig(":0")))
		require.Same(t, before, d.publisher)
	})

	t.Run("publish settings swap the publisher", func(t *testing.T) {
		before := d.publisher
		next := daemonConfig(":0")
		next.Git.TargetBranch = "deploy"

		require.NoError(t, d.applyConfig(ctx, next))
		require.NotSame(t, before, d.publisher)
		require.Equal(t, "deploy", d.cfg.Git.TargetBranch)
	})

	t.Run("listen change is reverted", func(t *testing.T) {
		next := daemonConfig(":9999")
		require.NoError(t, d.applyConfig(ctx, next))
		require.Equal(t, ":0", d.cfg.Daemon.Listen)
	})

	t.Run("interval change reschedules", func(t *testing.T) {
		next := daemonConfig(":0")
		next.Daemon.PublishInterval = "2m"
		require.NoError(t, d.applyConfig(ctx, next))
		require.Equal(t, 2*time.Minute, d.interval)

		next = daemonConfig(":0")
		require.NoError(t, d.applyConfig(ctx, next))
		require.Equal(t, time.Duration(0), d.interval)
	})

	t.Run("missing daemon section keeps current settings", func(t *testing.T) {
		next := daemonConfig(":0")
		next.Daemon = nil
		next.Site.Title = "Renamed"

		require.NoError(t, d.applyConfig(ctx, next))
		require.Equal(t, ":0", d.cfg.Daemon.Listen)
		require.Equal(t, "Renamed", d.cfg.Site.Title)
	})
}

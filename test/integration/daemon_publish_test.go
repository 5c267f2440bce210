package integration

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/blogpub/internal/config"
	"git.home.luguber.info/inful/blogpub/internal/daemon"
	"git.home.luguber.info/inful/blogpub/internal/history"
	"git.home.luguber.info/inful/blogpub/internal/publish"
)

const webhookSecret = "integration-secret"

// TestDaemonWebhookPublishFlow drives the full daemon path: a signed push
// event is accepted, queued, published through the real git pipeline to a
// bare remote, and surfaces in status, history and metrics.
func TestDaemonWebhookPublishFlow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	requireTools(t, "git", "git-receive-pack", "sh")

	repoDir, bare, branch := initPublishFixture(t)

	cfg := publishConfig()
	cfg.Daemon = &config.DaemonConfig{
		Listen:        "127.0.0.1:0",
		WebhookSecret: webhookSecret,
		QueueSize:     4,
		Metrics:       config.MetricsConfig{Enabled: true, Path: "/metrics"},
	}

	d, err := daemon.New(cfg, repoDir, "", discardLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()

	var baseURL string
	require.Eventually(t, func() bool {
		addr := d.ServerAddr()
		if addr == "" {
			return false
		}
		baseURL = "http://" + addr
		resp, err := http.Get(baseURL + "/healthz")
		if err != nil {
			return false
		}
		defer func() { _ = resp.Body.Close() }()
		return resp.StatusCode == http.StatusOK
	}, 10*time.Second, 50*time.Millisecond, "daemon never became healthy")

	payload, err := json.Marshal(daemon.PushEvent{
		Ref:     "refs/heads/" + branch,
		Message: "integration publish",
	})
	require.NoError(t, err)

	t.Run("unsigned push is rejected", func(t *testing.T) {
		status, body := postPush(t, baseURL+"/hooks/push", "", payload)
		require.Equal(t, http.StatusUnauthorized, status)
		require.Contains(t, body["error"], "signature")
	})

	t.Run("foreign ref is ignored", func(t *testing.T) {
		foreign, err := json.Marshal(daemon.PushEvent{Ref: "refs/heads/feature"})
		require.NoError(t, err)
		status, body := postPush(t, baseURL+"/hooks/push", signPayload(webhookSecret, foreign), foreign)
		require.Equal(t, http.StatusOK, status)
		require.Equal(t, "ignored", body["status"])
	})

	t.Run("signed push publishes to the remote", func(t *testing.T) {
		status, body := postPush(t, baseURL+"/hooks/push", signPayload(webhookSecret, payload), payload)
		require.Equal(t, http.StatusAccepted, status)
		require.Equal(t, "queued", body["status"])
		require.NotEmpty(t, body["job_id"])

		// No require inside the condition: Eventually runs it on another
		// goroutine.
		var st daemon.StatusResponse
		require.Eventually(t, func() bool {
			client := &http.Client{Timeout: 2 * time.Second}
			resp, err := client.Get(baseURL + "/status")
			if err != nil {
				return false
			}
			defer func() { _ = resp.Body.Close() }()
			if resp.StatusCode != http.StatusOK {
				return false
			}
			st = daemon.StatusResponse{}
			if json.NewDecoder(resp.Body).Decode(&st) != nil {
				return false
			}
			return st.LastPublish != nil && st.LastPublish.Outcome == string(publish.OutcomePublished)
		}, 30*time.Second, 100*time.Millisecond, "publish never completed")

		require.Equal(t, string(publish.TriggerWebhook), st.LastPublish.Trigger)
		require.Equal(t, cfg.Git.TargetBranch, st.LastPublish.Branch)
		require.Equal(t, 0, st.QueueDepth)

		require.True(t, gitSucceeds(bare, "rev-parse", "--verify", "refs/heads/gh-pages"))
		require.Equal(t, st.LastPublish.CommitHash, runGit(t, bare, "rev-parse", "gh-pages"))
		require.Equal(t, "integration publish", runGit(t, bare, "log", "-1", "--format=%s", "gh-pages"))
	})

	t.Run("history records the attempt", func(t *testing.T) {
		store, err := history.NewStore(cfg.History.ResolvePath(repoDir))
		require.NoError(t, err)
		defer func() { _ = store.Close() }()

		entries, err := store.Recent(context.Background(), 5)
		require.NoError(t, err)
		require.NotEmpty(t, entries)
		require.Equal(t, string(publish.TriggerWebhook), entries[0].Trigger)
		require.Equal(t, string(publish.OutcomePublished), entries[0].Outcome)
	})

	t.Run("metrics expose publish counters", func(t *testing.T) {
		status, body := getBody(t, baseURL+"/metrics")
		require.Equal(t, http.StatusOK, status)
		require.Contains(t, body, "blogpub_publish_outcomes_total")
		require.Contains(t, body, "blogpub_webhook_requests_total")
	})

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(15 * time.Second):
		t.Fatal("daemon did not shut down in time")
	}
}

package integration

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/blogpub/internal/config"
)

// requireTools skips the test when an external binary is not installed.
func requireTools(t *testing.T, names ...string) {
	t.Helper()
	for _, name := range names {
		if _, err := exec.LookPath(name); err != nil {
			t.Skipf("%s not found in PATH, skipping integration test", name)
		}
	}
}

// initPublishFixture creates an authoring repository with one committed post
// and a bare "origin" remote. Returns the repository path, the bare remote
// path and the checked-out branch name.
func initPublishFixture(t *testing.T) (repoDir, bare, branch string) {
	t.Helper()

	repoDir = t.TempDir()
	runGit(t, repoDir, "init")
	runGit(t, repoDir, "config", "user.name", "Test User")
	runGit(t, repoDir, "config", "user.email", "test@example.com")

	post := filepath.Join(repoDir, "content", "hello.md")
	require.NoError(t, os.MkdirAll(filepath.Dir(post), 0o750))
	require.NoError(t, os.WriteFile(post, []byte("---\ntitle: Hello\ndate: 2026-01-02\n---\n\nHi.\n"), 0o600))
	runGit(t, repoDir, "add", ".")
	runGit(t, repoDir, "commit", "-m", "seed")

	bareParent := t.TempDir()
	bare = filepath.Join(bareParent, "remote.git")
	runGit(t, bareParent, "init", "--bare", "remote.git")
	runGit(t, repoDir, "remote", "add", "origin", bare)

	// Default branch name depends on the host git configuration.
	branch = runGit(t, repoDir, "branch", "--show-current")
	require.NotEmpty(t, branch)
	return repoDir, bare, branch
}

// publishConfig returns a config whose generator copies the post into the
// output directory, so publishes produce real content without a site builder.
func publishConfig() *config.Config {
	return &config.Config{
		Version: "1",
		Site:    config.SiteConfig{Title: "Integration Blog", BaseURL: "https://blog.example.com"},
		Content: config.ContentConfig{Dir: "content"},
		Generator: config.GeneratorConfig{
			Command:   "sh",
			Args:      []string{"-c", "mkdir -p public && cp content/hello.md public/index.html"},
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

func runGit(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %s: %s", strings.Join(args, " "), out)
	return strings.TrimSpace(string(out))
}

func gitSucceeds(dir string, args ...string) bool {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	return cmd.Run() == nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func signPayload(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

// postPush sends a push event and returns the response status with the
// decoded JSON body.
func postPush(t *testing.T, url, signature string, payload []byte) (int, map[string]string) {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(payload))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if signature != "" {
		req.Header.Set("X-Blogpub-Signature", signature)
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	body := map[string]string{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

// getBody fetches a URL and returns the raw response body.
func getBody(t *testing.T, url string) (int, string) {
	t.Helper()
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get(url)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(data)
}

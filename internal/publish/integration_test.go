package publish

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"git.home.luguber.info/inful/blogpub/internal/config"
	apperrors "git.home.luguber.info/inful/blogpub/internal/errors"
)

type recordingSink struct {
	reports []*Report
}

func (s *recordingSink) Record(_ context.Context, r *Report) error {
	s.reports = append(s.reports, r)
	return nil
}

// TestIntegrationPublishRun drives complete publish attempts against a real
// git repository and a shell generator: dirty-tree abort, first publish,
// idempotent republish, generator failure, convergence after failure and
// stale-output removal.
func TestIntegrationPublishRun(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	for _, bin := range []string{"git", "git-receive-pack", "sh"} {
		if _, err := exec.LookPath(bin); err != nil {
			t.Skipf("%s not found in PATH, skipping integration test", bin)
		}
	}

	ctx := context.Background()
	repoDir := t.TempDir()
	initAuthoringRepo(t, repoDir)

	bareParent := t.TempDir()
	bare := filepath.Join(bareParent, "remote.git")
	runGit(t, bareParent, "init", "--bare", "remote.git")
	runGit(t, repoDir, "remote", "add", "origin", bare)

	cfg := testConfig("sh", "-c", "mkdir -p public && cp content/hello.md public/index.html")
	sink := &recordingSink{}
	pub := New(cfg, repoDir).WithHistory(sink).WithLogger(testLogger())

	attempts := 0

	t.Run("dirty tree aborts", func(t *testing.T) {
		draft := filepath.Join(repoDir, "content", "draft.md")
		if err := os.WriteFile(draft, []byte("wip\n"), 0o600); err != nil {
			t.Fatalf("write draft: %v", err)
		}
		rep, err := pub.Run(ctx, Options{})
		attempts++
		if err == nil {
			t.Fatal("expected dirty working tree error")
		}
		if !apperrors.IsCategory(err, apperrors.CategoryValidation) {
			t.Errorf("expected validation category, got %v", err)
		}
		if rep.Outcome != OutcomeFailed {
			t.Errorf("outcome = %s, want failed", rep.Outcome)
		}
		if gitSucceeds(bare, "rev-parse", "--verify", "refs/heads/gh-pages") {
			t.Error("nothing should reach the remote on a dirty tree")
		}
		if err := os.Remove(draft); err != nil {
			t.Fatalf("remove draft: %v", err)
		}
	})

	var firstHash string
	t.Run("first publish creates branch and pushes", func(t *testing.T) {
		rep, err := pub.Run(ctx, Options{Message: "release v1"})
		attempts++
		if err != nil {
			t.Fatalf("publish: %v", err)
		}
		if rep.Outcome != OutcomePublished || !rep.Committed {
			t.Fatalf("unexpected report %+v", rep)
		}
		if rep.CommitHash == "" {
			t.Fatal("expected a commit hash in the report")
		}
		firstHash = rep.CommitHash

		if got := runGit(t, bare, "rev-parse", "gh-pages"); got != firstHash {
			t.Errorf("remote gh-pages = %s, want %s", got, firstHash)
		}
		if got := runGit(t, repoDir, "log", "-1", "--format=%s", "gh-pages"); got != "release v1" {
			t.Errorf("commit subject = %q, want release v1", got)
		}
		body, err := os.ReadFile(filepath.Join(repoDir, "public", "index.html"))
		if err != nil {
			t.Fatalf("read generated output: %v", err)
		}
		if !strings.Contains(string(body), "hello") {
			t.Errorf("generated output missing content: %q", body)
		}
	})

	t.Run("republish identical content is no_changes", func(t *testing.T) {
		rep, err := pub.Run(ctx, Options{})
		attempts++
		if err != nil {
			t.Fatalf("republish: %v", err)
		}
		if rep.Outcome != OutcomeNoChanges || rep.Committed {
			t.Fatalf("unexpected report %+v", rep)
		}
		if rep.CommitHash != firstHash {
			t.Errorf("no-op republish moved the head: %s -> %s", firstHash, rep.CommitHash)
		}
		if got := runGit(t, bare, "rev-parse", "gh-pages"); got != firstHash {
			t.Errorf("remote moved on a no-op republish: %s", got)
		}
	})

	t.Run("changed content publishes with timestamped message", func(t *testing.T) {
		writeAndCommit(t, repoDir, "content/hello.md", "# hello again\n")
		rep, err := pub.Run(ctx, Options{})
		attempts++
		if err != nil {
			t.Fatalf("publish: %v", err)
		}
		if rep.Outcome != OutcomePublished {
			t.Fatalf("outcome = %s, want published", rep.Outcome)
		}
		if rep.CommitHash == firstHash {
			t.Error("expected a new commit for changed content")
		}
		subject := runGit(t, repoDir, "log", "-1", "--format=%s", "gh-pages")
		if !strings.HasPrefix(subject, "Publish at ") {
			t.Errorf("default subject = %q, want timestamp message", subject)
		}
		if got := runGit(t, bare, "rev-parse", "gh-pages"); got != rep.CommitHash {
			t.Errorf("remote gh-pages = %s, want %s", got, rep.CommitHash)
		}
	})

	var lastGood string
	t.Run("generator failure aborts before commit", func(t *testing.T) {
		lastGood = runGit(t, bare, "rev-parse", "gh-pages")
		failing := New(testConfig("sh", "-c", "echo broken template >&2; exit 7"), repoDir).
			WithHistory(sink).WithLogger(testLogger())
		rep, err := failing.Run(ctx, Options{})
		attempts++
		if err == nil {
			t.Fatal("expected generation failure")
		}
		if !apperrors.IsCategory(err, apperrors.CategoryGenerator) {
			t.Errorf("expected generator category, got %v", err)
		}
		if rep.Outcome != OutcomeFailed {
			t.Errorf("outcome = %s, want failed", rep.Outcome)
		}
		if got := runGit(t, bare, "rev-parse", "gh-pages"); got != lastGood {
			t.Errorf("remote changed on generation failure: %s", got)
		}
	})

	t.Run("re-run after failure converges", func(t *testing.T) {
		rep, err := pub.Run(ctx, Options{})
		attempts++
		if err != nil {
			t.Fatalf("recovery publish: %v", err)
		}
		if !rep.Success() {
			t.Fatalf("outcome = %s, want success", rep.Outcome)
		}
		if got := runGit(t, bare, "rev-parse", "gh-pages"); got != lastGood {
			t.Errorf("remote diverged after recovery: %s, want %s", got, lastGood)
		}
	})

	t.Run("stale output does not survive a regenerate", func(t *testing.T) {
		reduced := New(testConfig("sh", "-c", "mkdir -p public && cp content/hello.md public/only.html"), repoDir).
			WithHistory(sink).WithLogger(testLogger())
		rep, err := reduced.Run(ctx, Options{})
		attempts++
		if err != nil {
			t.Fatalf("publish with reduced output: %v", err)
		}
		if rep.Outcome != OutcomePublished {
			t.Fatalf("outcome = %s, want published", rep.Outcome)
		}
		if _, err := os.Stat(filepath.Join(repoDir, "public", "index.html")); !os.IsNotExist(err) {
			t.Error("previous run's index.html must not survive regeneration")
		}
		if tree := runGit(t, repoDir, "ls-tree", "--name-only", "gh-pages"); tree != "only.html" {
			t.Errorf("published tree = %q, want only only.html", tree)
		}
	})

	if len(sink.reports) != attempts {
		t.Errorf("history recorded %d attempts, want %d", len(sink.reports), attempts)
	}
	seen := map[string]bool{}
	for _, r := range sink.reports {
		if seen[r.ID] {
			t.Errorf("duplicate report ID %s", r.ID)
		}
		seen[r.ID] = true
	}
}

// TestPublishRejectsCheckedOutBranch ensures a publish cannot target the
// branch the authoring tree itself has checked out.
func TestPublishRejectsCheckedOutBranch(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	for _, bin := range []string{"git", "sh"} {
		if _, err := exec.LookPath(bin); err != nil {
			t.Skipf("%s not found in PATH, skipping integration test", bin)
		}
	}

	repoDir := t.TempDir()
	initAuthoringRepo(t, repoDir)
	current := runGit(t, repoDir, "branch", "--show-current")
	head := runGit(t, repoDir, "rev-parse", current)

	cfg := testConfig("sh", "-c", "true")
	cfg.Git.TargetBranch = current
	pub := New(cfg, repoDir).WithLogger(testLogger())

	rep, err := pub.Run(context.Background(), Options{})
	if err == nil {
		t.Fatal("expected publish onto the checked-out branch to fail")
	}
	if !apperrors.IsCategory(err, apperrors.CategoryValidation) {
		t.Errorf("expected validation category, got %v", err)
	}
	if !strings.Contains(err.Error(), current) {
		t.Errorf("error should name the offending branch: %v", err)
	}
	if rep.Outcome != OutcomeFailed {
		t.Errorf("outcome = %s, want failed", rep.Outcome)
	}
	if got := runGit(t, repoDir, "rev-parse", current); got != head {
		t.Errorf("refusal moved the branch head: %s -> %s", head, got)
	}
}

func testConfig(command string, args ...string) *config.Config {
	return &config.Config{
		Version: "1",
		Site:    config.SiteConfig{Title: "Test Blog", BaseURL: "https://blog.example.com"},
		Content: config.ContentConfig{Dir: "content"},
		Generator: config.GeneratorConfig{
			Command:   command,
			Args:      args,
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

func initAuthoringRepo(t *testing.T, dir string) {
	t.Helper()
	runGit(t, dir, "init")
	runGit(t, dir, "config", "user.name", "Test User")
	runGit(t, dir, "config", "user.email", "test@example.com")
	writeAndCommit(t, dir, "content/hello.md", "# hello\n")
}

func writeAndCommit(t *testing.T, dir, rel, body string) {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatalf("mkdir for %s: %v", rel, err)
	}
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write %s: %v", rel, err)
	}
	runGit(t, dir, "add", ".")
	runGit(t, dir, "commit", "-m", "update "+rel)
}

func runGit(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("git %s: %v: %s", strings.Join(args, " "), err, out)
	}
	return strings.TrimSpace(string(out))
}

func gitSucceeds(dir string, args ...string) bool {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	return cmd.Run() == nil
}

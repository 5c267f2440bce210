package generator

import (
	"context"
	"errors"
	"os/exec"
	"strings"
	"testing"
)

func requireShell(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not found in PATH, skipping runner test")
	}
}

func TestBinaryRunnerSuccess(t *testing.T) {
	requireShell(t)
	r := &BinaryRunner{Command: "sh", Args: []string{"-c", "exit 0"}}
	if err := r.Run(context.Background(), t.TempDir()); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
}

func TestBinaryRunnerFailureCarriesOutput(t *testing.T) {
	requireShell(t)
	r := &BinaryRunner{Command: "sh", Args: []string{"-c", "echo boom >&2; exit 3"}}
	err := r.Run(context.Background(), t.TempDir())
	if err == nil {
		t.Fatal("expected error for non-zero exit")
	}
	if !errors.Is(err, ErrGeneratorFailed) {
		t.Errorf("expected ErrGeneratorFailed, got %v", err)
	}
	if !strings.Contains(err.Error(), "boom") {
		t.Errorf("error should carry generator stderr, got %v", err)
	}
}

func TestBinaryRunnerMissingBinary(t *testing.T) {
	r := &BinaryRunner{Command: "definitely-not-a-real-generator-binary"}
	err := r.Run(context.Background(), t.TempDir())
	if !errors.Is(err, ErrGeneratorNotFound) {
		t.Fatalf("expected ErrGeneratorNotFound, got %v", err)
	}
}

func TestBinaryRunnerHonorsContext(t *testing.T) {
	requireShell(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := &BinaryRunner{Command: "sh", Args: []string{"-c", "sleep 30"}}
	if err := r.Run(ctx, t.TempDir()); err == nil {
		t.Fatal("expected error when context is already canceled")
	}
}

func TestNewRunnerSkipGate(t *testing.T) {
	t.Setenv(EnvSkipGenerator, "1")
	if _, ok := NewRunner("hugo", nil).(*NoopRunner); !ok {
		t.Fatal("expected NoopRunner when skip gate is set")
	}

	t.Setenv(EnvSkipGenerator, "")
	if _, ok := NewRunner("hugo", nil).(*BinaryRunner); !ok {
		t.Fatal("expected BinaryRunner by default")
	}
}

func TestNoopRunner(t *testing.T) {
	if err := (&NoopRunner{}).Run(context.Background(), t.TempDir()); err != nil {
		t.Fatalf("noop runner must not fail: %v", err)
	}
}

func TestTail(t *testing.T) {
	cases := []struct {
		name string
		in   string
		n    int
		want string
	}{
		{"short", "a\nb", 5, "a\nb"},
		{"exact", "a\nb\nc", 3, "a\nb\nc"},
		{"truncated", "a\nb\nc\nd", 2, "c\nd"},
		{"trailing newline", "a\nb\n", 1, "b"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tail(tc.in, tc.n); got != tc.want {
				t.Errorf("tail(%q, %d) = %q, want %q", tc.in, tc.n, got, tc.want)
			}
		})
	}
}

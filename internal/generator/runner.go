// Package generator invokes the external static site generator that turns the
// authoring tree into publishable output. The generator is treated as an
// opaque build step: blogpub prepares the output directory, runs the
// configured command and judges success purely by its exit status.
package generator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
)

// EnvSkipGenerator disables the external generator when set to "1". Intended
// for tests and dry runs where the output directory is prepared by hand.
const EnvSkipGenerator = "BLOGPUB_SKIP_GENERATOR"

// outputTailLines bounds how much generator output is carried into an error.
const outputTailLines = 20

var (
	// ErrGeneratorNotFound indicates the configured command is not on PATH.
	ErrGeneratorNotFound = errors.New("generator binary not found")
	// ErrGeneratorFailed indicates the generator ran and exited non-zero.
	ErrGeneratorFailed = errors.New("generator execution failed")
)

// Runner abstracts how the site generation step is performed. This allows
// swapping the external binary (BinaryRunner) for a no-op in tests without
// changing publish orchestration.
type Runner interface {
	Run(ctx context.Context, dir string) error
}

// NewRunner selects the runner for the configured command, honoring the
// skip gate.
func NewRunner(command string, args []string) Runner {
	if os.Getenv(EnvSkipGenerator) == "1" {
		return &NoopRunner{}
	}
	return &BinaryRunner{Command: command, Args: args}
}

// BinaryRunner invokes the configured generator binary from PATH.
type BinaryRunner struct {
	Command string
	Args    []string
}

func (b *BinaryRunner) Run(ctx context.Context, dir string) error {
	if _, err := exec.LookPath(b.Command); err != nil {
		return fmt.Errorf("%w: %w", ErrGeneratorNotFound, err)
	}

	cmd := exec.CommandContext(ctx, b.Command, b.Args...)
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	slog.Debug("Running site generator", "command", b.Command, "dir", dir)

	err := cmd.Run()

	outStr := stdout.String()
	errStr := stderr.String()
	if outStr != "" {
		slog.Debug("generator stdout", "output", outStr)
	}
	if errStr != "" {
		slog.Warn("generator stderr", "error_output", errStr)
	}

	if err != nil {
		// The generator may report the actual problem on either stream.
		output := errStr
		if output == "" {
			output = outStr
		}
		if output != "" {
			return fmt.Errorf("%w: %w: %s", ErrGeneratorFailed, err, tail(output, outputTailLines))
		}
		return fmt.Errorf("%w: %w", ErrGeneratorFailed, err)
	}
	return nil
}

// NoopRunner performs no generation; the output directory is published as-is.
type NoopRunner struct{}

func (n *NoopRunner) Run(ctx context.Context, dir string) error {
	slog.Debug("Generator skipped", "dir", dir)
	return nil
}

// tail returns the last n lines of s, trimmed.
func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	lines := strings.Split(s, "\n")
	if len(lines) <= n {
		return s
	}
	return strings.Join(lines[len(lines)-n:], "\n")
}

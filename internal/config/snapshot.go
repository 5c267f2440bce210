package config

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
)

// Snapshot computes a stable hash of publish-affecting normalized configuration
// fields. The daemon compares snapshots on config reload to skip no-op swaps.
// Callers SHOULD run normalization + defaults before computing a snapshot so
// canonical field values are hashed. Token and remote URL overrides are
// environment-derived and deliberately excluded.
func (c *Config) Snapshot() string {
	if c == nil {
		return ""
	}
	h := sha256.New()
	w := func(parts ...string) { h.Write([]byte(strings.Join(parts, "="))); h.Write([]byte{0}) }

	w("site.title", c.Site.Title)
	w("site.base_url", c.Site.BaseURL)
	w("content.dir", c.Content.Dir)

	w("generator.command", c.Generator.Command)
	w("generator.args", strings.Join(c.Generator.Args, "\x1f"))
	w("generator.output_dir", c.Generator.OutputDir)

	w("git.target_branch", c.Git.TargetBranch)
	w("git.remote", c.Git.Remote)
	w("git.name", c.Git.Name)
	w("git.email", c.Git.Email)

	w("history.disabled", strconv.FormatBool(c.History.Disabled))
	w("history.path", c.History.Path)

	if c.Daemon != nil {
		w("daemon.listen", c.Daemon.Listen)
		w("daemon.publish_interval", c.Daemon.PublishInterval)
		w("daemon.queue_size", strconv.Itoa(c.Daemon.QueueSize))
		w("daemon.metrics.enabled", strconv.FormatBool(c.Daemon.Metrics.Enabled))
		w("daemon.metrics.path", c.Daemon.Metrics.Path)
	}
	if c.Notify != nil {
		w("notify.nats_url", c.Notify.NATSURL)
		w("notify.subject", c.Notify.Subject)
		w("notify.stream", c.Notify.Stream)
	}

	return hex.EncodeToString(h.Sum(nil))
}

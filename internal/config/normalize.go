package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

// NormalizeResult carries non-fatal findings from the normalization pass.
type NormalizeResult struct {
	Warnings []string
}

func (r *NormalizeResult) warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// NormalizeConfig canonicalizes user input before defaults and validation run:
// trims surrounding whitespace, cleans relative paths, and bounds numeric
// fields. It never fails; suspicious values become warnings and validation
// decides whether they are fatal.
func NormalizeConfig(cfg *Config) *NormalizeResult {
	res := &NormalizeResult{}

	cfg.Site.Title = strings.TrimSpace(cfg.Site.Title)
	cfg.Site.BaseURL = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(cfg.Site.BaseURL), "/"))

	cfg.Content.Dir = normalizeRelPath(cfg.Content.Dir)
	cfg.Generator.Command = strings.TrimSpace(cfg.Generator.Command)
	cfg.Generator.OutputDir = normalizeRelPath(cfg.Generator.OutputDir)

	cfg.Git.TargetBranch = strings.TrimSpace(cfg.Git.TargetBranch)
	cfg.Git.Remote = strings.TrimSpace(cfg.Git.Remote)
	cfg.Git.Name = strings.TrimSpace(cfg.Git.Name)
	cfg.Git.Email = strings.TrimSpace(cfg.Git.Email)

	cfg.History.Path = normalizeRelPath(cfg.History.Path)

	if cfg.Daemon != nil {
		cfg.Daemon.Listen = strings.TrimSpace(cfg.Daemon.Listen)
		cfg.Daemon.PublishInterval = strings.TrimSpace(cfg.Daemon.PublishInterval)
		if cfg.Daemon.QueueSize < 0 {
			res.warnf("daemon.queue_size %d is negative; using default", cfg.Daemon.QueueSize)
			cfg.Daemon.QueueSize = 0
		}
		cfg.Daemon.Metrics.Path = strings.TrimSpace(cfg.Daemon.Metrics.Path)
	}

	if cfg.Notify != nil {
		cfg.Notify.NATSURL = strings.TrimSpace(cfg.Notify.NATSURL)
		cfg.Notify.Subject = strings.TrimSpace(cfg.Notify.Subject)
		cfg.Notify.Stream = strings.TrimSpace(cfg.Notify.Stream)
	}

	return res
}

// normalizeRelPath trims and cleans a path, preserving "" for "use default".
func normalizeRelPath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return ""
	}
	return filepath.Clean(p)
}

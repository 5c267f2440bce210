package config

import "fmt"

// ConfigDefaultApplier applies defaults for a specific configuration domain.
type ConfigDefaultApplier interface {
	ApplyDefaults(cfg *Config) error
	Domain() string
}

// SiteDefaultApplier handles site configuration defaults.
type SiteDefaultApplier struct{}

func (s *SiteDefaultApplier) Domain() string { return "site" }

func (s *SiteDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Site.Title == "" {
		cfg.Site.Title = "Blog"
	}
	return nil
}

// ContentDefaultApplier handles content configuration defaults.
type ContentDefaultApplier struct{}

func (c *ContentDefaultApplier) Domain() string { return "content" }

func (c *ContentDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Content.Dir == "" {
		cfg.Content.Dir = "content"
	}
	return nil
}

// GeneratorDefaultApplier handles generator configuration defaults.
type GeneratorDefaultApplier struct{}

func (g *GeneratorDefaultApplier) Domain() string { return "generator" }

func (g *GeneratorDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Generator.Command == "" {
		cfg.Generator.Command = "hugo"
	}
	if cfg.Generator.OutputDir == "" {
		cfg.Generator.OutputDir = "public"
	}
	return nil
}

// GitDefaultApplier handles git configuration defaults.
type GitDefaultApplier struct{}

func (g *GitDefaultApplier) Domain() string { return "git" }

func (g *GitDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Git.TargetBranch == "" {
		cfg.Git.TargetBranch = "gh-pages"
	}
	if cfg.Git.Remote == "" {
		cfg.Git.Remote = "origin"
	}
	if cfg.Git.Name == "" {
		cfg.Git.Name = "blogpub"
	}
	if cfg.Git.Email == "" {
		cfg.Git.Email = "blogpub@localhost"
	}
	return nil
}

// HistoryDefaultApplier handles history configuration defaults.
type HistoryDefaultApplier struct{}

func (h *HistoryDefaultApplier) Domain() string { return "history" }

func (h *HistoryDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.History.Path == "" {
		cfg.History.Path = ".blogpub/history.db"
	}
	return nil
}

// DaemonDefaultApplier handles daemon configuration defaults.
type DaemonDefaultApplier struct{}

func (d *DaemonDefaultApplier) Domain() string { return "daemon" }

func (d *DaemonDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Daemon == nil {
		return nil // No daemon config to apply defaults to
	}

	if cfg.Daemon.Listen == "" {
		cfg.Daemon.Listen = ":8153"
	}
	if cfg.Daemon.QueueSize == 0 {
		cfg.Daemon.QueueSize = 16
	}
	if cfg.Daemon.Metrics.Path == "" {
		cfg.Daemon.Metrics.Path = "/metrics"
	}

	return nil
}

// NotifyDefaultApplier handles notification configuration defaults.
type NotifyDefaultApplier struct{}

func (n *NotifyDefaultApplier) Domain() string { return "notify" }

func (n *NotifyDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Notify == nil || cfg.Notify.NATSURL == "" {
		return nil
	}

	if cfg.Notify.Subject == "" {
		cfg.Notify.Subject = "blogpub.publishes"
	}
	if cfg.Notify.Stream == "" {
		cfg.Notify.Stream = "BLOGPUB"
	}

	return nil
}

// CompositeDefaultApplier applies defaults across all configuration domains.
type CompositeDefaultApplier struct {
	appliers []ConfigDefaultApplier
}

// NewDefaultApplier creates a composite default applier with all domain appliers.
func NewDefaultApplier() *CompositeDefaultApplier {
	return &CompositeDefaultApplier{
		appliers: []ConfigDefaultApplier{
			&SiteDefaultApplier{},
			&ContentDefaultApplier{},
			&GeneratorDefaultApplier{},
			&GitDefaultApplier{},
			&HistoryDefaultApplier{},
			&DaemonDefaultApplier{},
			&NotifyDefaultApplier{},
		},
	}
}

// ApplyDefaults applies defaults for all configuration domains.
func (c *CompositeDefaultApplier) ApplyDefaults(cfg *Config) error {
	for _, applier := range c.appliers {
		if err := applier.ApplyDefaults(cfg); err != nil {
			return fmt.Errorf("applying defaults for %s: %w", applier.Domain(), err)
		}
	}
	return nil
}

package config

import "path/filepath"

// SiteConfig describes the blog itself. BaseURL lets the audit distinguish
// internal links from external ones.
type SiteConfig struct {
	Title   string `yaml:"title"`
	BaseURL string `yaml:"base_url,omitempty"`
}

// ContentConfig locates the authored Markdown sources.
type ContentConfig struct {
	Dir string `yaml:"dir,omitempty"` // defaults to "content"
}

// GeneratorConfig describes the external static-site generator invocation.
// The generator runs with the repository root as working directory and is
// expected to populate OutputDir.
type GeneratorConfig struct {
	Command   string   `yaml:"command,omitempty"` // defaults to "hugo"
	Args      []string `yaml:"args,omitempty"`
	OutputDir string   `yaml:"output_dir,omitempty"` // defaults to "public"
}

// GitConfig describes the deployment side: which branch carries the generated
// site, which remote receives it, and the commit identity used when the
// environment supplies none. RemoteURL and Token are environment-only and never
// round-trip through the config file.
type GitConfig struct {
	TargetBranch string `yaml:"target_branch,omitempty"` // defaults to "gh-pages"
	Remote       string `yaml:"remote,omitempty"`        // defaults to "origin"
	Name         string `yaml:"name,omitempty"`
	Email        string `yaml:"email,omitempty"`

	RemoteURL string `yaml:"-"`
	Token     string `yaml:"-"`
}

// HistoryConfig controls the local publish-history store.
type HistoryConfig struct {
	Disabled bool   `yaml:"disabled,omitempty"`
	Path     string `yaml:"path,omitempty"` // defaults to ".blogpub/history.db"
}

// ResolvePath returns the history database path anchored at the repository
// root. Relative paths are kept inside the repository so cloned checkouts get
// independent histories.
func (h HistoryConfig) ResolvePath(repoDir string) string {
	path := h.Path
	if path == "" {
		path = filepath.Join(StateDir, "history.db")
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(repoDir, path)
	}
	return path
}

// DaemonConfig represents daemon-specific configuration.
type DaemonConfig struct {
	Listen          string        `yaml:"listen,omitempty"` // defaults to ":8153"
	WebhookSecret   string        `yaml:"webhook_secret,omitempty"`
	PublishInterval string        `yaml:"publish_interval,omitempty"` // duration string; empty disables the scheduler
	QueueSize       int           `yaml:"queue_size,omitempty"`
	Metrics         MetricsConfig `yaml:"metrics,omitempty"`
}

// MetricsConfig represents the Prometheus endpoint configuration.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled,omitempty"`
	Path    string `yaml:"path,omitempty"` // defaults to "/metrics"
}

// NotifyConfig configures optional NATS publish-outcome notifications.
// Leaving NATSURL empty disables notifications entirely.
type NotifyConfig struct {
	NATSURL string `yaml:"nats_url,omitempty"`
	Subject string `yaml:"subject,omitempty"` // defaults to "blogpub.publishes"
	Stream  string `yaml:"stream,omitempty"`  // defaults to "BLOGPUB"
}

// Identity is the commit author identity resolved from environment and config.
type Identity struct {
	Name  string
	Email string
}

// Identity resolves the effective commit identity: environment overrides were
// already folded into Name/Email during Load, so this is a plain read.
func (g GitConfig) Identity() Identity {
	return Identity{Name: g.Name, Email: g.Email}
}

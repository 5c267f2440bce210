package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the config filename looked up in the repository root.
const DefaultConfigFile = "blogpub.yaml"

// StateDir is the repository-relative directory holding blogpub state such as
// the publish history database. It is excluded from the cleanliness check and
// gitignored by Init.
const StateDir = ".blogpub"

// Config represents the blogpub configuration (version 1).
type Config struct {
	Version   string          `yaml:"version"`
	Site      SiteConfig      `yaml:"site"`
	Content   ContentConfig   `yaml:"content,omitempty"`
	Generator GeneratorConfig `yaml:"generator,omitempty"`
	Git       GitConfig       `yaml:"git,omitempty"`
	History   HistoryConfig   `yaml:"history,omitempty"`
	Daemon    *DaemonConfig   `yaml:"daemon,omitempty"`
	Notify    *NotifyConfig   `yaml:"notify,omitempty"`
}

// Load loads a configuration file (version 1).
func Load(configPath string) (*Config, error) {
	// Load .env file if it exists
	if err := loadEnvFiles(); err != nil {
		// Don't fail if .env doesn't exist, just log it
		fmt.Fprintf(os.Stderr, "Note: .env file not found or couldn't be loaded: %v\n", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found: %s", configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))

	var config Config
	if err := yaml.Unmarshal([]byte(expandedData), &config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if strings.TrimSpace(config.Version) != "1" {
		return nil, fmt.Errorf("unsupported configuration version: %s (expected 1)", config.Version)
	}

	// Normalization pass (trim strings, clean paths, bound numerics)
	if nres := NormalizeConfig(&config); nres != nil && len(nres.Warnings) > 0 {
		for _, w := range nres.Warnings {
			fmt.Fprintf(os.Stderr, "config normalization: %s\n", w)
		}
	}
	// Apply defaults (after normalization so canonical values drive defaults)
	if err := applyDefaults(&config); err != nil {
		return nil, fmt.Errorf("failed to apply defaults: %w", err)
	}
	// Environment wins over file values for identity and remote override
	applyEnvOverrides(&config)

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

// applyDefaults applies default values to configuration
func applyDefaults(config *Config) error {
	applier := NewDefaultApplier()
	return applier.ApplyDefaults(config)
}

// validateConfig validates the configuration
func validateConfig(config *Config) error {
	return ValidateConfig(config)
}

// Init writes an example configuration file and makes sure the output
// directory is git-ignored so the worktree checkout cannot dirty the
// authoring tree.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}

	exampleConfig := Config{
		Version: "1",
		Site: SiteConfig{
			Title:   "My Blog",
			BaseURL: "https://blog.example.com",
		},
		Content: ContentConfig{
			Dir: "content",
		},
		Generator: GeneratorConfig{
			Command:   "hugo",
			OutputDir: "public",
		},
		Git: GitConfig{
			TargetBranch: "gh-pages",
			Remote:       "origin",
			Name:         "blogpub",
			Email:        "blogpub@localhost",
		},
		History: HistoryConfig{
			Path: ".blogpub/history.db",
		},
		Daemon: &DaemonConfig{
			Listen:        ":8153",
			WebhookSecret: "${BLOGPUB_WEBHOOK_SECRET}",
			QueueSize:     16,
			Metrics: MetricsConfig{
				Enabled: true,
				Path:    "/metrics",
			},
		},
	}

	data, err := yaml.Marshal(&exampleConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return ensureIgnored(filepath.Dir(configPath), exampleConfig.Generator.OutputDir, StateDir+"/")
}

// ensureIgnored appends the given entries to .gitignore next to the config
// file unless they are already present. Missing .gitignore is created.
func ensureIgnored(dir string, entries ...string) error {
	ignorePath := filepath.Join(dir, ".gitignore")

	existing := map[string]bool{}
	if data, err := os.ReadFile(ignorePath); err == nil {
		for _, line := range strings.Split(string(data), "\n") {
			existing[strings.TrimSpace(line)] = true
		}
	}

	var missing []string
	for _, e := range entries {
		e = strings.TrimSpace(e)
		if e == "" || existing[e] || existing[strings.TrimSuffix(e, "/")] || existing[e+"/"] {
			continue
		}
		missing = append(missing, e)
	}
	if len(missing) == 0 {
		return nil
	}

	f, err := os.OpenFile(ignorePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("failed to update .gitignore: %w", err)
	}
	defer f.Close()

	if _, err := fmt.Fprintf(f, "\n# blogpub\n%s\n", strings.Join(missing, "\n")); err != nil {
		return fmt.Errorf("failed to update .gitignore: %w", err)
	}
	return nil
}

package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// ValidateConfig validates the complete configuration structure.
func ValidateConfig(cfg *Config) error {
	validator := newConfigurationValidator(cfg)
	return validator.validate()
}

// configurationValidator coordinates validation across all configuration domains.
type configurationValidator struct {
	config *Config
}

func newConfigurationValidator(config *Config) *configurationValidator {
	return &configurationValidator{config: config}
}

// validate performs configuration validation using domain-specific methods.
func (cv *configurationValidator) validate() error {
	if err := cv.validatePaths(); err != nil {
		return err
	}
	if err := cv.validateGit(); err != nil {
		return err
	}
	if err := cv.validateGenerator(); err != nil {
		return err
	}
	if err := cv.validateDaemon(); err != nil {
		return err
	}
	return cv.validateNotify()
}

// validatePaths ensures directories stay inside the repository.
func (cv *configurationValidator) validatePaths() error {
	for name, p := range map[string]string{
		"content.dir":          cv.config.Content.Dir,
		"generator.output_dir": cv.config.Generator.OutputDir,
		"history.path":         cv.config.History.Path,
	} {
		if p == "" {
			return fmt.Errorf("%s cannot be empty", name)
		}
		if filepath.IsAbs(p) {
			return fmt.Errorf("%s must be relative to the repository root: %s", name, p)
		}
		if p == "." || strings.HasPrefix(p, "..") {
			return fmt.Errorf("%s must point inside the repository: %s", name, p)
		}
	}

	if cv.config.Generator.OutputDir == cv.config.Content.Dir {
		return fmt.Errorf("generator.output_dir and content.dir cannot be the same directory: %s", cv.config.Content.Dir)
	}

	return nil
}

// validateGit checks branch, remote, and identity fields.
func (cv *configurationValidator) validateGit() error {
	branch := cv.config.Git.TargetBranch
	if branch == "" {
		return errors.New("git.target_branch cannot be empty")
	}
	if strings.ContainsAny(branch, " \t~^:?*[\\") || strings.Contains(branch, "..") {
		return fmt.Errorf("git.target_branch is not a valid branch name: %q", branch)
	}

	if cv.config.Git.Remote == "" && cv.config.Git.RemoteURL == "" {
		return errors.New("git.remote cannot be empty without a remote URL override")
	}

	if cv.config.Git.Name == "" || cv.config.Git.Email == "" {
		return errors.New("git commit identity is incomplete (set git.name/git.email or the environment overrides)")
	}
	if !strings.Contains(cv.config.Git.Email, "@") {
		return fmt.Errorf("git.email does not look like an address: %q", cv.config.Git.Email)
	}

	return nil
}

// validateGenerator checks the generator invocation.
func (cv *configurationValidator) validateGenerator() error {
	if cv.config.Generator.Command == "" {
		return errors.New("generator.command cannot be empty")
	}
	return nil
}

// validateDaemon checks daemon-specific settings.
func (cv *configurationValidator) validateDaemon() error {
	d := cv.config.Daemon
	if d == nil {
		return nil
	}

	if d.Listen == "" {
		return errors.New("daemon.listen cannot be empty")
	}
	if d.QueueSize < 1 {
		return fmt.Errorf("daemon.queue_size must be at least 1, got %d", d.QueueSize)
	}
	if d.PublishInterval != "" {
		iv, err := time.ParseDuration(d.PublishInterval)
		if err != nil {
			return fmt.Errorf("daemon.publish_interval is not a duration: %w", err)
		}
		if iv < time.Minute {
			return fmt.Errorf("daemon.publish_interval must be at least 1m, got %s", iv)
		}
	}
	if d.Metrics.Enabled && !strings.HasPrefix(d.Metrics.Path, "/") {
		return fmt.Errorf("daemon.metrics.path must start with /: %q", d.Metrics.Path)
	}

	return nil
}

// validateNotify checks the notification settings when enabled.
func (cv *configurationValidator) validateNotify() error {
	n := cv.config.Notify
	if n == nil || n.NATSURL == "" {
		return nil
	}

	if n.Subject == "" {
		return errors.New("notify.subject cannot be empty when nats_url is set")
	}
	if strings.ContainsAny(n.Subject, " \t") {
		return fmt.Errorf("notify.subject contains whitespace: %q", n.Subject)
	}

	return nil
}

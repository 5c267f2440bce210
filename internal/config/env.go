package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Environment variable names read at invocation time. Identity and remote
// override always win over file configuration; the token never appears in a
// config file at all.
const (
	EnvGitName   = "BLOGPUB_GIT_NAME"
	EnvGitEmail  = "BLOGPUB_GIT_EMAIL"
	EnvRemoteURL = "BLOGPUB_REMOTE_URL"
	EnvGitToken  = "BLOGPUB_GIT_TOKEN"
)

// loadEnvFiles loads environment variables from .env/.env.local files.
// It attempts each supported filename in order and stops at the first
// successfully loaded file. Existing process environment variables are
// not overwritten (godotenv.Load semantics).
func loadEnvFiles() error {
	envPaths := []string{".env", ".env.local"}
	for _, envPath := range envPaths {
		if _, err := os.Stat(envPath); err != nil {
			continue
		}
		if err := godotenv.Load(envPath); err != nil {
			return fmt.Errorf("failed to load %s: %w", envPath, err)
		}
		fmt.Fprintf(os.Stderr, "Loaded environment variables from %s\n", envPath)
		return nil
	}
	return fmt.Errorf("no .env file found")
}

// applyEnvOverrides folds the environment contract into the loaded config.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv(EnvGitName); v != "" {
		cfg.Git.Name = v
	}
	if v := os.Getenv(EnvGitEmail); v != "" {
		cfg.Git.Email = v
	}
	if v := os.Getenv(EnvRemoteURL); v != "" {
		cfg.Git.RemoteURL = v
	}
	if v := os.Getenv(EnvGitToken); v != "" {
		cfg.Git.Token = v
	}
}

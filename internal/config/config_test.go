package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("GITHUB_OWNER", "family")
	t.Setenv("GITHUB_REPO", "meal-planner")
	t.Setenv(ConfigFileEnv, "")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	config, err := Load()
	if err != nil {
		t.Fatalf("loading config: %v", err)
	}
	if config.GitHubBranch != "main" {
		t.Errorf("expected branch 'main', got %q", config.GitHubBranch)
	}
	if config.GitHubAPIURL != "https://api.github.com" {
		t.Errorf("unexpected api url %q", config.GitHubAPIURL)
	}
	if config.Port != "8080" || config.LogLevel != "info" {
		t.Errorf("unexpected defaults: %+v", config)
	}
	if !errors.Is(config.RequireSessionSecret(), ErrSessionSecretRequired) {
		t.Error("expected session secret to be required")
	}
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("GITHUB_BRANCH", "meals")
	t.Setenv("WORKFLOW_FILE", "mailer.yml")
	t.Setenv("SESSION_SECRET", "secret")
	t.Setenv("LOG_LEVEL", "DEBUG")

	config, err := Load()
	if err != nil {
		t.Fatalf("loading config: %v", err)
	}
	if config.GitHubBranch != "meals" || config.WorkflowFile != "mailer.yml" {
		t.Errorf("expected env overrides, got %+v", config)
	}
	if config.LogLevel != "debug" {
		t.Errorf("expected lowercased log level, got %q", config.LogLevel)
	}
	if err := config.RequireSessionSecret(); err != nil {
		t.Errorf("expected session secret present: %v", err)
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	setRequired(t)
	path := filepath.Join(t.TempDir(), "meal-planner.yaml")
	content := "github_branch: weekly\nport: \"9090\"\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing config file: %v", err)
	}
	t.Setenv(ConfigFileEnv, path)

	config, err := Load()
	if err != nil {
		t.Fatalf("loading config: %v", err)
	}
	if config.GitHubBranch != "weekly" || config.Port != "9090" {
		t.Errorf("expected file values, got %+v", config)
	}
}

func TestLoad_RequiresRepository(t *testing.T) {
	t.Setenv("GITHUB_OWNER", "")
	t.Setenv("GITHUB_REPO", "")
	t.Setenv(ConfigFileEnv, "")

	if _, err := Load(); err == nil {
		t.Error("expected an error without a repository")
	}
}

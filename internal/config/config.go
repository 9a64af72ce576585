package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// ConfigFileEnv names an optional YAML or TOML file. Environment variables
// take precedence over values in the file.
const ConfigFileEnv = "MEAL_PLANNER_CONFIG"

var ErrSessionSecretRequired = errors.New("SESSION_SECRET is required")

type Config struct {
	DatabasePath  string
	GitHubOwner   string
	GitHubRepo    string
	GitHubBranch  string
	GitHubAPIURL  string
	WorkflowFile  string
	SessionSecret string
	LogLevel      string
	Port          string
}

func Load() (Config, error) {
	v := viper.New()
	v.SetDefault("database_path", "./data/meal-planner.db")
	v.SetDefault("github_owner", "")
	v.SetDefault("github_repo", "")
	v.SetDefault("github_branch", "main")
	v.SetDefault("github_api_url", "https://api.github.com")
	v.SetDefault("workflow_file", "daily_meal.yml")
	v.SetDefault("session_secret", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("port", "8080")
	v.AutomaticEnv()

	if path := os.Getenv(ConfigFileEnv); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config file %s: %w", path, err)
		}
	}

	config := Config{
		DatabasePath:  v.GetString("database_path"),
		GitHubOwner:   v.GetString("github_owner"),
		GitHubRepo:    v.GetString("github_repo"),
		GitHubBranch:  v.GetString("github_branch"),
		GitHubAPIURL:  v.GetString("github_api_url"),
		WorkflowFile:  v.GetString("workflow_file"),
		SessionSecret: v.GetString("session_secret"),
		LogLevel:      strings.ToLower(v.GetString("log_level")),
		Port:          v.GetString("port"),
	}

	if config.GitHubOwner == "" || config.GitHubRepo == "" {
		return Config{}, fmt.Errorf("GITHUB_OWNER and GITHUB_REPO are required")
	}

	return config, nil
}

// RequireSessionSecret reports whether the server can sign session cookies.
func (config Config) RequireSessionSecret() error {
	if config.SessionSecret == "" {
		return ErrSessionSecretRequired
	}
	return nil
}

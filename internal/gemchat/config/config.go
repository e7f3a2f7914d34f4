package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/longkey1/gemchat/internal/gemini"
	"github.com/longkey1/gemchat/internal/storage"
	"github.com/spf13/viper"
)

// Config holds the configuration for the chat client
type Config struct {
	Model    string `toml:"model" mapstructure:"model"`       // Gemini model name (e.g., "gemini-2.0-flash")
	BaseURL  string `toml:"base_url" mapstructure:"base_url"` // API base URL
	Token    string `toml:"token" mapstructure:"token"`       // API key, or "$VAR" / "${VAR}" reference
	Storage  string `toml:"storage" mapstructure:"storage"`   // History backend: "file", "sqlite" or "memory"
	DataDir  string `toml:"data_dir" mapstructure:"data_dir"` // Directory for the history file or database
	LogLevel string `toml:"log_level" mapstructure:"log_level"`
}

// GetModel returns the model name without any "models/" or "gemini:" prefix
func (c *Config) GetModel() string {
	model := strings.TrimSpace(c.Model)
	model = strings.TrimPrefix(model, "gemini:")
	return strings.TrimPrefix(model, "models/")
}

// GetBaseURL returns the API base URL
func (c *Config) GetBaseURL() (string, error) {
	if c.BaseURL == "" {
		return "", fmt.Errorf("base URL is not configured. Set it in config file (base_url) or environment variable (GEMCHAT_BASE_URL)")
	}
	return c.BaseURL, nil
}

// GetToken returns the API key.
// Environment variables are already expanded during LoadConfig()
func (c *Config) GetToken() (string, error) {
	if c.Token == "" {
		return "", fmt.Errorf("token is not configured. Set it in config file (token) or environment variable (GEMCHAT_TOKEN or GEMINI_API_KEY)")
	}
	return c.Token, nil
}

// Validate checks that the configuration can be used to ask questions
func (c *Config) Validate() error {
	if c.GetModel() == "" {
		return fmt.Errorf("model is not configured")
	}
	if _, err := c.GetBaseURL(); err != nil {
		return err
	}
	if _, err := c.GetToken(); err != nil {
		return err
	}
	switch c.Storage {
	case storage.BackendFile, storage.BackendSQLite, storage.BackendMemory:
	default:
		return fmt.Errorf("unsupported storage backend: %q (expected file, sqlite or memory)", c.Storage)
	}
	return nil
}

// NewDefaultConfig returns a new Config with default values
func NewDefaultConfig(dataDir string) *Config {
	return &Config{
		Model:    gemini.DefaultModel,
		BaseURL:  gemini.DefaultBaseURL,
		Token:    "$GEMINI_API_KEY", // Default to env var
		Storage:  storage.BackendFile,
		DataDir:  dataDir,
		LogLevel: "info",
	}
}

// DefaultConfigDir returns $HOME/.config/gemchat
func DefaultConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(home, ".config", "gemchat"), nil
}

// LoadConfig loads configuration from viper
func LoadConfig() (*Config, error) {
	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	var err error
	if config.Token, err = expandEnvVar(config.Token); err != nil {
		return nil, fmt.Errorf("error expanding token: %w", err)
	}
	if config.BaseURL, err = expandEnvVar(config.BaseURL); err != nil {
		return nil, fmt.Errorf("error expanding base URL: %w", err)
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	config.Storage = strings.ToLower(strings.TrimSpace(config.Storage))

	if config.DataDir == "" {
		config.DataDir, err = defaultDataDir()
		if err != nil {
			return nil, err
		}
	}
	config.DataDir, err = ResolvePath(config.DataDir)
	if err != nil {
		return nil, fmt.Errorf("error resolving data directory path '%s': %w", config.DataDir, err)
	}

	return config, nil
}

// defaultDataDir is the config file directory, or $HOME/.config/gemchat
// when no config file is used.
func defaultDataDir() (string, error) {
	if configFile := viper.ConfigFileUsed(); configFile != "" {
		return filepath.Dir(configFile), nil
	}
	return DefaultConfigDir()
}

package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"secretai/pkg/secretai"

	"gopkg.in/yaml.v3"
)

// Config represents the secretai.yaml file
type Config struct {
	APIKey         string            `yaml:"api_key"`
	ChainID        string            `yaml:"chain_id"`
	NodeURL        string            `yaml:"node_url"`
	WorkerContract string            `yaml:"worker_contract"`
	LogLevel       string            `yaml:"log_level"`
	Chat           ChatConfig        `yaml:"chat"`
	Headers        map[string]string `yaml:"headers"` // Extra request headers with ${VAR} support
}

// ChatConfig holds defaults for the chat command
type ChatConfig struct {
	Model       string  `yaml:"model"`
	Host        string  `yaml:"host"` // Skip endpoint discovery when set
	Temperature float32 `yaml:"temperature"`
	Width       int     `yaml:"width"`
}

// Load reads and parses the YAML config file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// LoadWithDefaults loads config with fallback to default locations
// Checks: ./secretai.yaml, ./configs/secretai.yaml, ~/.config/secretai/secretai.yaml, /etc/secretai/secretai.yaml
func LoadWithDefaults() (*Config, error) {
	cfg, _, err := Find()
	return cfg, err
}

// Find is LoadWithDefaults that also reports which file was loaded.
// The path is empty when no file exists.
func Find() (*Config, string, error) {
	locations := []string{
		"./secretai.yaml",
		"./configs/secretai.yaml",
	}

	if home, err := os.UserHomeDir(); err == nil {
		locations = append(locations, filepath.Join(home, ".config", "secretai", "secretai.yaml"))
	}

	locations = append(locations, "/etc/secretai/secretai.yaml")

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			cfg, err := Load(loc)
			return cfg, loc, err
		}
	}

	// No config found - return empty config (not an error)
	return &Config{}, "", nil
}

// Validate checks config correctness
func (c *Config) Validate() error {
	if c.NodeURL != "" {
		if err := validateURL(c.NodeURL); err != nil {
			return fmt.Errorf("node_url: %w", err)
		}
	}
	if c.Chat.Host != "" {
		if err := validateURL(c.Chat.Host); err != nil {
			return fmt.Errorf("chat.host: %w", err)
		}
	}
	if c.Chat.Width < 0 {
		return fmt.Errorf("chat.width must be positive, got %d", c.Chat.Width)
	}
	if c.Chat.Temperature < 0 {
		return fmt.Errorf("chat.temperature must not be negative, got %v", c.Chat.Temperature)
	}

	for name := range c.Headers {
		if strings.TrimSpace(name) == "" || strings.ContainsAny(name, " :\t\r\n") {
			return fmt.Errorf("invalid header name %q", name)
		}
	}

	return nil
}

// SDK returns the file's SDK settings. Header values are expanded.
func (c *Config) SDK() secretai.Config {
	return secretai.Config{
		APIKey:         ExpandEnv(c.APIKey),
		ChainID:        c.ChainID,
		NodeURL:        c.NodeURL,
		WorkerContract: c.WorkerContract,
		LogLevel:       c.LogLevel,
	}
}

// ExpandedHeaders returns the configured headers with environment variables expanded.
func (c *Config) ExpandedHeaders() map[string]string {
	return ExpandEnvMap(c.Headers)
}

func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme %q (only http and https are supported)", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("missing host in %q", raw)
	}
	return nil
}

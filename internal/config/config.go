// Package config provides environment-variable-first configuration loading
// with optional YAML file fallback for the sgkit tool.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the complete application configuration.
type Config struct {
	Defaults DefaultsConfig `yaml:"defaults"`
	SES      SESConfig      `yaml:"ses"`
	Output   OutputConfig   `yaml:"output"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// DefaultsConfig holds values applied to drafts that do not set them.
type DefaultsConfig struct {
	From       string   `yaml:"from"`
	FromName   string   `yaml:"from_name"`
	ReplyTo    string   `yaml:"reply_to"`
	Sandbox    bool     `yaml:"sandbox"`
	IPPoolName string   `yaml:"ip_pool_name"`
	Categories []string `yaml:"categories"`
}

// SESConfig holds settings for the SES request mapping.
type SESConfig struct {
	ConfigurationSet string `yaml:"configuration_set"`
}

// OutputConfig holds output formatting options.
type OutputConfig struct {
	Pretty bool `yaml:"pretty"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Load loads configuration from environment variables with sensible defaults.
// Environment variables always take precedence.
func Load() (*Config, error) {
	cfg := &Config{}
	cfg.applyDefaults()
	cfg.applyEnvVars()
	return cfg, nil
}

// LoadFromFile loads configuration from a YAML file as the base layer,
// then overrides with environment variables. Returns an error if the
// specified file path does not exist.
func LoadFromFile(path string) (*Config, error) {
	cfg := &Config{}
	cfg.applyDefaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Environment variables always override YAML values
	cfg.applyEnvVars()

	return cfg, nil
}

// HasDefaultSender returns true if a default from address is configured.
func (c *Config) HasDefaultSender() bool {
	return c.Defaults.From != ""
}

// applyDefaults sets sensible default values for all configuration fields.
func (c *Config) applyDefaults() {
	c.Output.Pretty = true
	c.Logging.Level = "info"
}

// applyEnvVars overrides configuration with environment variable values.
// Only non-empty environment variables override existing values.
func (c *Config) applyEnvVars() {
	if v := os.Getenv("SENDGRID_DEFAULT_FROM"); v != "" {
		c.Defaults.From = v
	}
	if v := os.Getenv("SENDGRID_DEFAULT_FROM_NAME"); v != "" {
		c.Defaults.FromName = v
	}
	if v := os.Getenv("SENDGRID_REPLY_TO"); v != "" {
		c.Defaults.ReplyTo = v
	}
	if v := os.Getenv("SENDGRID_SANDBOX"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Defaults.Sandbox = b
		}
	}
	if v := os.Getenv("SENDGRID_IP_POOL"); v != "" {
		c.Defaults.IPPoolName = v
	}
	if v := os.Getenv("SENDGRID_CATEGORIES"); v != "" {
		c.Defaults.Categories = splitList(v)
	}

	if v := os.Getenv("SES_CONFIGURATION_SET"); v != "" {
		c.SES.ConfigurationSet = v
	}

	if v := os.Getenv("OUTPUT_PRETTY"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Output.Pretty = b
		}
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = strings.ToLower(v)
	}
}

// splitList splits a comma-separated value, dropping empty items.
func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds scraper configuration loaded from a YAML file. CLI flags
// override individual values.
type Config struct {
	Fetch    FetchConfig    `yaml:"fetch"`
	Crawl    CrawlConfig    `yaml:"crawl"`
	Filters  FilterConfig   `yaml:"filters"`
	Output   OutputConfig   `yaml:"output"`
	Database DatabaseConfig `yaml:"database"`
	Log      LogConfig      `yaml:"log"`
}

// FetchConfig holds per-request defaults for the fetcher.
type FetchConfig struct {
	UserAgent      string `yaml:"user_agent"`
	Proxy          string `yaml:"proxy"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	MaxRetries     int    `yaml:"max_retries"`
}

// CrawlConfig bounds a paginated crawl.
type CrawlConfig struct {
	MaxPages int `yaml:"max_pages"`
}

// FilterConfig holds the record filter criteria.
type FilterConfig struct {
	MinTextLength      int      `yaml:"min_text_length"`
	RequiredAttributes []string `yaml:"required_attributes"`
}

// OutputConfig selects the output format and file base name.
type OutputConfig struct {
	Format   string `yaml:"format"`
	Basename string `yaml:"basename"`
}

// DatabaseConfig selects the relational store. An empty driver disables
// database persistence.
type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// LogConfig configures the logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// Default returns the default configuration.
func Default() *Config {
	cfg := &Config{}
	cfg.Fetch.TimeoutSeconds = 10
	cfg.Fetch.MaxRetries = 3
	cfg.Crawl.MaxPages = 10
	cfg.Output.Format = "json"
	cfg.Output.Basename = "output"
	cfg.Log.Level = "info"
	return cfg
}

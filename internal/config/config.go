package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/michaelscutari/lsp/internal/entry"
	"github.com/michaelscutari/lsp/internal/scan"
)

// Config holds user defaults read from config.yaml. Command-line flags that
// are set explicitly take precedence.
type Config struct {
	Workers    int      `yaml:"workers"`
	Threshold  int      `yaml:"threshold"`
	ShowHidden bool     `yaml:"show_hidden"`
	ShowInode  bool     `yaml:"show_inode"`
	Sort       string   `yaml:"sort"`
	Reverse    bool     `yaml:"reverse"`
	Exclude    []string `yaml:"exclude"`
	Color      bool     `yaml:"color"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Workers:   scan.DefaultWorkers,
		Threshold: scan.DefaultThreshold,
		Sort:      entry.SortByTime.String(),
		Color:     true,
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/lsp/config.yaml, falling back to
// ~/.config/lsp/config.yaml.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate config directory: %w", err)
	}
	return filepath.Join(dir, "lsp", "config.yaml"), nil
}

// Load reads path over the defaults. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("workers must be >= 0, got %d", c.Workers)
	}
	if c.Threshold < 1 {
		return fmt.Errorf("threshold must be >= 1, got %d", c.Threshold)
	}
	if _, err := entry.ParseSortKey(c.Sort); err != nil {
		return err
	}
	return nil
}

// ScanOptions converts the config into collector options.
func (c *Config) ScanOptions() (*scan.Options, error) {
	opts := scan.DefaultOptions().
		WithWorkers(c.Workers).
		WithThreshold(c.Threshold).
		WithHidden(c.ShowHidden).
		WithInode(c.ShowInode)
	for _, pattern := range c.Exclude {
		if err := opts.AddExcludePattern(pattern); err != nil {
			return nil, err
		}
	}
	return opts, nil
}

// SortOptions converts the config into sort options.
func (c *Config) SortOptions() (entry.SortOptions, error) {
	key, err := entry.ParseSortKey(c.Sort)
	if err != nil {
		return entry.SortOptions{}, err
	}
	return entry.SortOptions{Key: key, Reverse: c.Reverse}, nil
}

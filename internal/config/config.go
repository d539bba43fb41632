// Package config loads gobrowser.yml: window geometry, scroll step and
// the default start URL, patterned directly on umputun-newscope's
// pkg/config/config.go (yaml.Unmarshal into a struct, then fill defaults
// for anything left zero).
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds gobrowser's ambient settings, per SPEC_FULL.md §3's
// "Configuration" entry.
type Config struct {
	Window struct {
		Width  int `yaml:"width"`
		Height int `yaml:"height"`
	} `yaml:"window"`

	ScrollStep int    `yaml:"scroll_step"`
	StartURL   string `yaml:"start_url"`
	Debug      bool   `yaml:"debug"`

	FormServer struct {
		Listen string `yaml:"listen"`
	} `yaml:"form_server"`
}

// Default returns a Config with every field at its fallback value, for
// callers that can't find a config file and would rather run with
// sensible defaults than fail outright.
func Default() *Config {
	cfg := &Config{}
	cfg.setDefaults()
	return cfg
}

// Load reads path and fills in defaults for any zero-valued field, the
// way config.Load's server/feed defaulting does.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from a CLI flag
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.setDefaults()
	return &cfg, nil
}

func (c *Config) setDefaults() {
	if c.Window.Width == 0 {
		c.Window.Width = 800
	}
	if c.Window.Height == 0 {
		c.Window.Height = 600
	}
	if c.ScrollStep == 0 {
		c.ScrollStep = 35
	}
	if c.StartURL == "" {
		c.StartURL = "file:///home/"
	}
	if c.FormServer.Listen == "" {
		c.FormServer.Listen = ":8000"
	}
}

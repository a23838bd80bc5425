// Package config loads viewer settings from a YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	DefaultViewportHeight = 20
	DefaultTopTools       = 3
	DefaultMarkdown       = true
	DefaultHighlight      = true
	DefaultLogsDir        = "logs"

	EnvConfigPath = "AGENTLENS_CONFIG"
	EnvLogsDir    = "AGENTLENS_LOGS_DIR"
	EnvNoColor    = "NO_COLOR"
)

var (
	userHomeDir = os.UserHomeDir
	lookupEnv   = os.LookupEnv
)

// RawConfig mirrors the config file. Nil fields were not set.
type RawConfig struct {
	ViewportHeight *int    `yaml:"viewport_height,omitempty"`
	TopTools       *int    `yaml:"top_tools,omitempty"`
	Markdown       *bool   `yaml:"markdown,omitempty"`
	Highlight      *bool   `yaml:"highlight,omitempty"`
	LogsDir        *string `yaml:"logs_dir,omitempty"`
}

// Config is the resolved configuration.
type Config struct {
	ViewportHeight int    `yaml:"viewport_height"`
	TopTools       int    `yaml:"top_tools"`
	Markdown       bool   `yaml:"markdown"`
	Highlight      bool   `yaml:"highlight"`
	LogsDir        string `yaml:"logs_dir"`
	// NoColor is set from the NO_COLOR environment variable only.
	NoColor bool `yaml:"-"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		ViewportHeight: DefaultViewportHeight,
		TopTools:       DefaultTopTools,
		Markdown:       DefaultMarkdown,
		Highlight:      DefaultHighlight,
		LogsDir:        DefaultLogsDir,
	}
}

// Path returns the config file location: $AGENTLENS_CONFIG, else
// $XDG_CONFIG_HOME/agentlens/config.yaml, else ~/.config/agentlens/config.yaml.
// An empty string means no location could be determined.
func Path() string {
	if p, ok := lookupEnv(EnvConfigPath); ok && p != "" {
		return p
	}
	if xdg, ok := lookupEnv("XDG_CONFIG_HOME"); ok && xdg != "" {
		return filepath.Join(xdg, "agentlens", "config.yaml")
	}
	home, err := userHomeDir()
	if err != nil || home == "" {
		return ""
	}
	return filepath.Join(home, ".config", "agentlens", "config.yaml")
}

// Load reads the config file at Path and applies environment overrides.
func Load() (Config, error) {
	return LoadFile(Path())
}

// LoadFile reads the config file at path and applies environment overrides.
// A missing file yields the defaults.
func LoadFile(path string) (Config, error) {
	raw, _, err := loadConfigFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg := Resolve(raw)
	applyEnv(&cfg)
	return cfg, nil
}

func loadConfigFile(path string) (RawConfig, bool, error) {
	if path == "" {
		return RawConfig{}, false, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return RawConfig{}, false, nil
		}
		return RawConfig{}, false, fmt.Errorf("read config %s: %w", path, err)
	}

	var raw RawConfig
	if err := yaml.Unmarshal(b, &raw); err != nil {
		return RawConfig{}, false, fmt.Errorf("parse config %s: %w", path, err)
	}
	return raw, true, nil
}

// Resolve fills unset or out-of-range values with defaults.
func Resolve(raw RawConfig) Config {
	cfg := Default()
	cfg.ViewportHeight = resolvePositive(raw.ViewportHeight, cfg.ViewportHeight)
	cfg.TopTools = resolvePositive(raw.TopTools, cfg.TopTools)
	if raw.Markdown != nil {
		cfg.Markdown = *raw.Markdown
	}
	if raw.Highlight != nil {
		cfg.Highlight = *raw.Highlight
	}
	if raw.LogsDir != nil && *raw.LogsDir != "" {
		cfg.LogsDir = *raw.LogsDir
	}
	return cfg
}

func resolvePositive(v *int, fallback int) int {
	if v == nil || *v <= 0 {
		return fallback
	}
	return *v
}

func applyEnv(cfg *Config) {
	if dir, ok := lookupEnv(EnvLogsDir); ok && dir != "" {
		cfg.LogsDir = dir
	}
	// https://no-color.org: any non-empty value disables color.
	if v, ok := lookupEnv(EnvNoColor); ok && v != "" {
		cfg.NoColor = true
	}
}

// Package config loads shell configuration from a file, keyed by extension.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds runtime parameters for the shell. Zero values mean
// "unspecified" and are replaced by Default values.
type Config struct {
	PluginDir string `json:"plugin_dir" yaml:"plugin_dir" toml:"plugin_dir"`
	OutputDir string `json:"output_dir" yaml:"output_dir" toml:"output_dir"`
	Cache     bool   `json:"cache" yaml:"cache" toml:"cache"`
	Workers   int    `json:"workers" yaml:"workers" toml:"workers"`
	Offline   bool   `json:"offline" yaml:"offline" toml:"offline"`
	LogLevel  string `json:"log_level" yaml:"log_level" toml:"log_level"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		PluginDir: "plugins",
		OutputDir: ".",
		Cache:     true,
		Workers:   0, // one per CPU
		LogLevel:  "info",
	}
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}

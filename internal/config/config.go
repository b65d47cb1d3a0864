// Package config loads rawncc settings from an optional YAML file, a .env file and the
// environment, in increasing order of precedence. Command-line flags override all three.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"rawncc/internal/naming"
)

// DefaultPath is the configuration file looked up in the working directory.
const DefaultPath = "rawncc.yaml"

type Config struct {
	Language string   `yaml:"language"`
	Std      string   `yaml:"std"`
	Includes []string `yaml:"includes"`
	Args     []string `yaml:"args"`    // extra parser arguments
	Jobs     int      `yaml:"jobs"`    // translation units audited in parallel
	Headers  bool     `yaml:"headers"` // also audit headers found while crawling
	Log      struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	Naming naming.Config `yaml:"naming"`
}

// Default returns the settings used when nothing is configured.
func Default() *Config {
	cfg := &Config{Language: "c++", Jobs: 1}
	cfg.Log.Level = "INFO"
	cfg.Log.Format = "CONSOLE"
	return cfg
}

// LoadConfig reads path on top of the defaults. A missing file is not an error.
func LoadConfig(path string) (*Config, error) {
	// 1. Load .env if exists
	_ = godotenv.Load()

	// 2. Load YAML config
	cfg := Default()
	if path != "" {
		file, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(file, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		case errors.Is(err, fs.ErrNotExist):
		default:
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	// 3. Override with Environment Variables if present
	cfg.applyEnv()

	if cfg.Jobs < 1 {
		cfg.Jobs = 1
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if level := os.Getenv("RAWNCC_LOG_LEVEL"); level != "" {
		c.Log.Level = level
	}
	if format := os.Getenv("RAWNCC_LOG_FORMAT"); format != "" {
		c.Log.Format = format
	}
	if policy := os.Getenv("RAWNCC_POLICY"); policy != "" {
		c.Naming.Preset = policy
	}
	if include := os.Getenv("RAWNCC_INCLUDE"); include != "" {
		c.Includes = append(c.Includes, filepath.SplitList(include)...)
	}
}

// Policy builds the naming table described by the naming section.
func (c *Config) Policy() (*naming.Policy, error) {
	table, err := c.Naming.Table()
	if err != nil {
		return nil, fmt.Errorf("invalid naming configuration: %w", err)
	}
	return naming.New(table)
}

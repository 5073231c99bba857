// Package config holds the embedded HTTP service configuration.
//
// Defaults match the mobile build (fixed port 5600 on loopback). A YAML file
// can override individual fields; unknown keys are rejected so typos surface
// instead of being silently ignored.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// Ports used by the service.
const (
	DefaultPort = 5600
	TestingPort = 5666
)

// FileName is the optional override file looked up in the data directory.
const FileName = "aw-server.yaml"

// AWConfig configures the embedded service.
type AWConfig struct {
	Address string   `yaml:"address"`
	Port    int      `yaml:"port"`
	Testing bool     `yaml:"testing"`
	CORS    []string `yaml:"cors"`
	// AssetDir serves the web UI when set and present on disk.
	AssetDir string `yaml:"asset_dir"`
}

// Default returns built-in defaults.
func Default() AWConfig {
	return AWConfig{
		Address: "127.0.0.1",
		Port:    DefaultPort,
	}
}

// DefaultTesting returns defaults for testing mode.
func DefaultTesting() AWConfig {
	cfg := Default()
	cfg.Port = TestingPort
	cfg.Testing = true
	return cfg
}

// Addr returns the listen address.
func (c AWConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Address, c.Port)
}

// Validate checks field ranges.
func (c AWConfig) Validate() error {
	if c.Address == "" {
		return errors.New("address is required")
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	return nil
}

// Load reads overrides from a YAML file on top of base.
// A missing file is not an error and returns base unchanged.
func Load(path string, base AWConfig) (AWConfig, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return base, nil
	}
	if err != nil {
		return AWConfig{}, fmt.Errorf("read config: %w", err)
	}

	cfg := base
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return AWConfig{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return AWConfig{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

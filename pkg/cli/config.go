package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
)

// Config is the bz2p configuration file.
type Config struct {
	// Algorithm is the default codec for compress.
	Algorithm string `json:"algorithm" yaml:"algorithm"`

	// Level is the default compression level, 0 for the codec default.
	Level int `json:"level" yaml:"level"`

	// Capacity is the buffer channel capacity in bytes.
	Capacity int `json:"capacity" yaml:"capacity"`

	// Store is where archives are written.
	Store StoreConfig `json:"store" yaml:"store"`

	// Manifest is where archive records are kept.
	Manifest ManifestConfig `json:"manifest" yaml:"manifest"`

	path string
}

// StoreConfig selects a storage backend.
type StoreConfig struct {
	Type     string `json:"type" yaml:"type"`
	Dir      string `json:"dir,omitempty" yaml:"dir,omitempty"`
	Bucket   string `json:"bucket,omitempty" yaml:"bucket,omitempty"`
	Prefix   string `json:"prefix,omitempty" yaml:"prefix,omitempty"`
	Region   string `json:"region,omitempty" yaml:"region,omitempty"`
	Endpoint string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
}

// ManifestConfig locates the manifest database.
type ManifestConfig struct {
	Dir      string `json:"dir,omitempty" yaml:"dir,omitempty"`
	InMemory bool   `json:"in_memory,omitempty" yaml:"in_memory,omitempty"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Algorithm: "bzip2",
		Capacity:  64 << 10,
		Store:     StoreConfig{Type: "local", Dir: "."},
	}
}

// Load reads the config from the default location.
func Load() (*Config, error) {
	paths, err := NewPaths()
	if err != nil {
		return nil, fmt.Errorf("cli: locate config: %w", err)
	}
	return LoadFrom(paths.ConfigFile())
}

// LoadFrom reads the config at path. A missing file yields DefaultConfig;
// fields absent from the file keep their defaults. An on-disk manifest
// without a dir gets the user-level manifest directory.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.path = path

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		cfg.defaultManifestDir()
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cli: read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("cli: parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("cli: config %s: %w", path, err)
	}
	cfg.defaultManifestDir()
	return cfg, nil
}

// defaultManifestDir fills Manifest.Dir for on-disk manifests. Without a
// user config dir the manifest sits next to the config file.
func (c *Config) defaultManifestDir() {
	if c.Manifest.Dir != "" || c.Manifest.InMemory {
		return
	}
	if paths, err := NewPaths(); err == nil {
		c.Manifest.Dir = paths.ManifestDir()
		return
	}
	c.Manifest.Dir = filepath.Join(filepath.Dir(c.path), "manifest")
}

// Validate checks field values.
func (c *Config) Validate() error {
	if c.Level < 0 || c.Level > 9 {
		return fmt.Errorf("level %d out of range 0..9", c.Level)
	}
	if c.Capacity < 0 {
		return fmt.Errorf("capacity %d must not be negative", c.Capacity)
	}
	switch c.Store.Type {
	case "", "local":
	case "s3":
		if c.Store.Bucket == "" {
			return errors.New("store.bucket is required for s3")
		}
	default:
		return fmt.Errorf("unknown store.type %q", c.Store.Type)
	}
	return nil
}

// Save writes the config back to its path, creating the directory.
func (c *Config) Save() error {
	if c.path == "" {
		return errors.New("cli: config has no path")
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("cli: marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("cli: create config directory: %w", err)
	}
	if err := os.WriteFile(c.path, data, 0o600); err != nil {
		return fmt.Errorf("cli: write config: %w", err)
	}
	return nil
}

// Path returns the file the config was loaded from.
func (c *Config) Path() string {
	return c.path
}

// StoreURL renders Store as a URL understood by storage.OpenURL.
func (c *Config) StoreURL() string {
	if c.Store.Type == "s3" {
		u := "s3://" + c.Store.Bucket
		if p := strings.Trim(c.Store.Prefix, "/"); p != "" {
			u += "/" + p
		}
		return u
	}
	if c.Store.Dir == "" {
		return "."
	}
	return c.Store.Dir
}

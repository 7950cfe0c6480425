// internal/config/config.go
//
// This package handles configuration and the .lodestar directory structure.
// Every project that uses Lodestar gets a .lodestar/ folder created in its root.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// LodestarDir is the name of the directory we create in each project
	LodestarDir = ".lodestar"

	defaultLinkOrigin = "https://app.lodestar.dev"
)

const defaultProjectConfigYAML = `# lodestar project configuration
version: 1

# Remote document store holding generated assessment instruments.
docstore:
  url: https://docs.lodestar.dev

# Origin used when composing shareable instrument links.
links:
  origin: https://app.lodestar.dev

# Trait taxonomy file, relative to .lodestar/ unless absolute.
taxonomy: taxonomy/traits.yaml

# Local HTTP receiver for instrument completion signals.
signals:
  enabled: true
  host: 127.0.0.1
  port: 8466
`

// DocstoreConfig declares how to reach the remote document store.
type DocstoreConfig struct {
	URL string `yaml:"url"`
}

// LinksConfig controls how shareable instrument links are composed.
type LinksConfig struct {
	Origin string `yaml:"origin"`
}

// SignalsConfig controls the local completion-signal receiver. Pointers
// distinguish "absent" from explicit zero values.
type SignalsConfig struct {
	Enabled *bool  `yaml:"enabled"`
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
}

// ProjectConfig models .lodestar/config.yaml.
type ProjectConfig struct {
	Version  int            `yaml:"version"`
	Docstore DocstoreConfig `yaml:"docstore"`
	Links    LinksConfig    `yaml:"links"`
	Taxonomy string         `yaml:"taxonomy"`
	Signals  SignalsConfig  `yaml:"signals"`
}

// Config holds the runtime configuration for Lodestar.
type Config struct {
	// ProjectDir is the directory where the user ran `lodestar` from
	ProjectDir string

	// LodestarProjectDir is ProjectDir/.lodestar
	LodestarProjectDir string

	Project ProjectConfig
}

// InitLodestarDir creates the .lodestar directory structure in the given
// project directory. Called on startup before anything reads state.
//
// Structure created:
// .lodestar/
// ├── logs/       <- journey log
// ├── state/      <- persisted record store (records.json)
// └── taxonomy/   <- trait/statement configuration
func InitLodestarDir(projectDir string) error {
	lodestarDir := filepath.Join(projectDir, LodestarDir)

	dirs := []string{
		filepath.Join(lodestarDir, "logs"),
		filepath.Join(lodestarDir, "state"),
		filepath.Join(lodestarDir, "taxonomy"),
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	return ensureProjectConfig(filepath.Join(lodestarDir, "config.yaml"))
}

// NewConfig creates a Config populated from .lodestar/config.yaml plus
// environment overrides.
func NewConfig(projectDir string) (*Config, error) {
	cfg := &Config{
		ProjectDir:         projectDir,
		LodestarProjectDir: filepath.Join(projectDir, LodestarDir),
		Project:            defaultProjectConfig(),
	}

	if err := cfg.loadProjectConfig(); err != nil {
		return nil, err
	}

	// LODESTAR_DOCSTORE_URL overrides the configured document store,
	// mainly so a local store can be pointed at during development.
	if url := strings.TrimSpace(os.Getenv("LODESTAR_DOCSTORE_URL")); url != "" {
		cfg.Project.Docstore.URL = url
	}

	return cfg, nil
}

// LogsDir returns the path to the logs directory
func (c *Config) LogsDir() string {
	return filepath.Join(c.LodestarProjectDir, "logs")
}

// StateDir returns the path to the state directory
func (c *Config) StateDir() string {
	return filepath.Join(c.LodestarProjectDir, "state")
}

// ReportsDir returns the directory exported insights reports land in.
func (c *Config) ReportsDir() string {
	return filepath.Join(c.LodestarProjectDir, "reports")
}

// RecordsPath returns the path to the persisted record store file.
func (c *Config) RecordsPath() string {
	return filepath.Join(c.StateDir(), "records.json")
}

// JourneyLogPath returns the path to the journey log file.
func (c *Config) JourneyLogPath() string {
	return filepath.Join(c.LogsDir(), "journey.log")
}

// TaxonomyPath returns the resolved path to the trait taxonomy file.
func (c *Config) TaxonomyPath() string {
	candidate := strings.TrimSpace(c.Project.Taxonomy)
	if candidate == "" {
		candidate = "taxonomy/traits.yaml"
	}
	if filepath.IsAbs(candidate) {
		return filepath.Clean(candidate)
	}
	return filepath.Join(c.LodestarProjectDir, candidate)
}

// DocstoreURL returns the configured document store base URL.
func (c *Config) DocstoreURL() string {
	return strings.TrimRight(strings.TrimSpace(c.Project.Docstore.URL), "/")
}

// LinkOrigin returns the origin used for shareable instrument links.
func (c *Config) LinkOrigin() string {
	origin := strings.TrimRight(strings.TrimSpace(c.Project.Links.Origin), "/")
	if origin == "" {
		return defaultLinkOrigin
	}
	return origin
}

// ProjectConfigPath returns the on-disk location for the project config file.
func (c *Config) ProjectConfigPath() string {
	return filepath.Join(c.LodestarProjectDir, "config.yaml")
}

func (c *Config) loadProjectConfig() error {
	path := c.ProjectConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	var parsed ProjectConfig
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}

	parsed.applyDefaults()
	if err := parsed.validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	c.Project = parsed
	return nil
}

func defaultProjectConfig() ProjectConfig {
	return ProjectConfig{
		Version:  1,
		Docstore: DocstoreConfig{URL: "https://docs.lodestar.dev"},
		Links:    LinksConfig{Origin: defaultLinkOrigin},
		Taxonomy: "taxonomy/traits.yaml",
	}
}

func (pc *ProjectConfig) applyDefaults() {
	if pc.Version == 0 {
		pc.Version = 1
	}
	if strings.TrimSpace(pc.Docstore.URL) == "" {
		pc.Docstore.URL = "https://docs.lodestar.dev"
	}
	if strings.TrimSpace(pc.Links.Origin) == "" {
		pc.Links.Origin = defaultLinkOrigin
	}
	if strings.TrimSpace(pc.Taxonomy) == "" {
		pc.Taxonomy = "taxonomy/traits.yaml"
	}
}

func (pc *ProjectConfig) validate() error {
	if pc.Version < 1 {
		return fmt.Errorf("config version must be >= 1")
	}
	if !strings.HasPrefix(pc.Docstore.URL, "http://") && !strings.HasPrefix(pc.Docstore.URL, "https://") {
		return fmt.Errorf("docstore.url must be an http(s) URL")
	}
	return nil
}

func ensureProjectConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.WriteFile(path, []byte(defaultProjectConfigYAML), 0o644)
}

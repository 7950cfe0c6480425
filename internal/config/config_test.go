package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInitLodestarDirCreatesStructure(t *testing.T) {
	projectDir := t.TempDir()
	if err := InitLodestarDir(projectDir); err != nil {
		t.Fatalf("init: %v", err)
	}
	for _, rel := range []string{"logs", "state", "taxonomy"} {
		path := filepath.Join(projectDir, LodestarDir, rel)
		info, err := os.Stat(path)
		if err != nil || !info.IsDir() {
			t.Fatalf("expected directory %s: %v", path, err)
		}
	}
	data, err := os.ReadFile(filepath.Join(projectDir, LodestarDir, "config.yaml"))
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	if !strings.Contains(string(data), "docstore:") {
		t.Fatalf("default config missing docstore section: %s", data)
	}
}

func TestNewConfigDefaultsWithoutFile(t *testing.T) {
	cfg, err := NewConfig(t.TempDir())
	if err != nil {
		t.Fatalf("new config: %v", err)
	}
	if cfg.DocstoreURL() == "" {
		t.Fatalf("expected default docstore url")
	}
	if !strings.HasSuffix(cfg.RecordsPath(), filepath.Join("state", "records.json")) {
		t.Fatalf("unexpected records path: %s", cfg.RecordsPath())
	}
	if !strings.HasSuffix(cfg.TaxonomyPath(), filepath.Join("taxonomy", "traits.yaml")) {
		t.Fatalf("unexpected taxonomy path: %s", cfg.TaxonomyPath())
	}
}

func TestNewConfigReadsProjectFile(t *testing.T) {
	projectDir := t.TempDir()
	if err := InitLodestarDir(projectDir); err != nil {
		t.Fatalf("init: %v", err)
	}
	custom := `version: 1
docstore:
  url: http://localhost:9090/
links:
  origin: http://localhost:3000/
taxonomy: taxonomy/custom.yaml
`
	path := filepath.Join(projectDir, LodestarDir, "config.yaml")
	if err := os.WriteFile(path, []byte(custom), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := NewConfig(projectDir)
	if err != nil {
		t.Fatalf("new config: %v", err)
	}
	if cfg.DocstoreURL() != "http://localhost:9090" {
		t.Fatalf("docstore url not trimmed: %q", cfg.DocstoreURL())
	}
	if cfg.LinkOrigin() != "http://localhost:3000" {
		t.Fatalf("link origin not trimmed: %q", cfg.LinkOrigin())
	}
	if !strings.HasSuffix(cfg.TaxonomyPath(), filepath.Join("taxonomy", "custom.yaml")) {
		t.Fatalf("unexpected taxonomy path: %s", cfg.TaxonomyPath())
	}
}

func TestNewConfigEnvOverride(t *testing.T) {
	t.Setenv("LODESTAR_DOCSTORE_URL", "http://127.0.0.1:4000")
	cfg, err := NewConfig(t.TempDir())
	if err != nil {
		t.Fatalf("new config: %v", err)
	}
	if cfg.DocstoreURL() != "http://127.0.0.1:4000" {
		t.Fatalf("env override ignored: %q", cfg.DocstoreURL())
	}
}

func TestNewConfigRejectsBadDocstoreURL(t *testing.T) {
	projectDir := t.TempDir()
	if err := InitLodestarDir(projectDir); err != nil {
		t.Fatalf("init: %v", err)
	}
	path := filepath.Join(projectDir, LodestarDir, "config.yaml")
	if err := os.WriteFile(path, []byte("version: 1\ndocstore:\n  url: ftp://nope\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := NewConfig(projectDir); err == nil {
		t.Fatalf("expected error for non-http docstore url")
	}
}

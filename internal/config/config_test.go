package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Storage.Driver != "sqlite" {
		t.Errorf("driver = %q, want sqlite", cfg.Storage.Driver)
	}
	if cfg.Generator.Backend != "stub" {
		t.Errorf("backend = %q, want stub", cfg.Generator.Backend)
	}
	if cfg.Interview.MaxSessions != 1024 {
		t.Errorf("maxsessions = %d, want 1024", cfg.Interview.MaxSessions)
	}
	if cfg.Interview.GenerateTimeout != 30*time.Second {
		t.Errorf("timeout = %s, want 30s", cfg.Interview.GenerateTimeout)
	}
}

func TestLoadMissingFileIsNotAnError(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err != nil {
		t.Fatalf("Load with missing file: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	doc := `
server:
  port: 9090
storage:
  driver: memory
generator:
  backend: openai
  model: gpt-4o
interview:
  maxsessions: 64
  timeout: 10s
`
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Storage.Driver != "memory" {
		t.Errorf("driver = %q, want memory", cfg.Storage.Driver)
	}
	if cfg.Generator.Backend != "openai" || cfg.Generator.Model != "gpt-4o" {
		t.Errorf("generator = %+v", cfg.Generator)
	}
	if cfg.Interview.MaxSessions != 64 {
		t.Errorf("maxsessions = %d, want 64", cfg.Interview.MaxSessions)
	}
	if cfg.Interview.GenerateTimeout != 10*time.Second {
		t.Errorf("timeout = %s, want 10s", cfg.Interview.GenerateTimeout)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 9090\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("TB_SERVER_PORT", "7070")
	t.Setenv("TB_GENERATOR_APIKEY", "sk-test")
	t.Setenv("TB_GENERATOR_BACKEND", "gemini")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("port = %d, want env override 7070", cfg.Server.Port)
	}
	if cfg.Generator.APIKey != "sk-test" {
		t.Errorf("apikey = %q, want sk-test", cfg.Generator.APIKey)
	}
	if cfg.Generator.Backend != "gemini" {
		t.Errorf("backend = %q, want gemini", cfg.Generator.Backend)
	}
}

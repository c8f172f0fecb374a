// Package config loads application configuration from an optional YAML file
// overlaid with TB_-prefixed environment variables.
package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Storage   StorageConfig   `koanf:"storage"`
	Generator GeneratorConfig `koanf:"generator"`
	Interview InterviewConfig `koanf:"interview"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
}

type ServerConfig struct {
	Port int `koanf:"port"`
}

type StorageConfig struct {
	// Driver is "sqlite" or "memory".
	Driver string `koanf:"driver"`
	Path   string `koanf:"path"`
}

type GeneratorConfig struct {
	// Backend is "openai", "gemini", or "stub". An empty API key always
	// falls back to the stub.
	Backend string `koanf:"backend"`
	APIKey  string `koanf:"apikey"`
	Model   string `koanf:"model"`
	BaseURL string `koanf:"baseurl"`
}

type InterviewConfig struct {
	MaxSessions     int           `koanf:"maxsessions"`
	GenerateTimeout time.Duration `koanf:"timeout"`
}

type TelemetryConfig struct {
	Enabled bool `koanf:"enabled"`
}

// Load reads the YAML file at path (if present) and overlays TB_ environment
// variables. Env keys map underscores to dots, so TB_SERVER_PORT sets
// server.port and TB_GENERATOR_APIKEY sets generator.apikey.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	if err := k.Load(env.Provider("TB_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, "TB_")), "_", ".", -1)
	}), nil); err != nil {
		return nil, err
	}

	// Default values
	if !k.Exists("server.port") {
		k.Set("server.port", 8080)
	}
	if !k.Exists("storage.driver") {
		k.Set("storage.driver", "sqlite")
	}
	if !k.Exists("storage.path") {
		k.Set("storage.path", "./data/talentbridge.db")
	}
	if !k.Exists("generator.backend") {
		k.Set("generator.backend", "stub")
	}
	if !k.Exists("interview.maxsessions") {
		k.Set("interview.maxsessions", 1024)
	}
	if !k.Exists("interview.timeout") {
		k.Set("interview.timeout", "30s")
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

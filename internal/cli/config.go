// Package cli loads configuration for the votw command.
package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/couchcryptid/volcano-data-kit/gvp"
)

// DefaultConfigPaths lists the paths searched for a config file, in order.
// The first file found wins.
var DefaultConfigPaths = []string{
	"votw.yaml",
	"votw.yml",
}

// ConfigPathEnvVar overrides the config file search path when set.
const ConfigPathEnvVar = "VOTW_CONFIG"

// envPrefix namespaces the environment variables read by Load.
const envPrefix = "votw_"

// Config holds all votw settings.
type Config struct {
	CacheDir  string        `koanf:"cache_dir"`
	BaseURL   string        `koanf:"base_url"`
	Timeout   time.Duration `koanf:"timeout"`
	LogLevel  string        `koanf:"log_level"`
	LogFormat string        `koanf:"log_format"`
}

func defaultConfig() *Config {
	return &Config{
		CacheDir:  gvp.DefaultCacheDir,
		BaseURL:   gvp.DefaultBaseURL,
		Timeout:   60 * time.Second,
		LogLevel:  "info",
		LogFormat: "text",
	}
}

// Load builds the configuration from three layers: built-in defaults, an
// optional YAML config file, and VOTW_* environment variables. Later layers
// override earlier ones.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return errors.New("base_url is required")
	}
	if c.Timeout <= 0 {
		return errors.New("timeout must be positive")
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("log_format must be %q or %q, got %q", "text", "json", c.LogFormat)
	}
	return nil
}

// findConfigFile returns the path named by VOTW_CONFIG when that file exists,
// otherwise the first default path that exists, otherwise "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// envTransform maps VOTW_CACHE_DIR to cache_dir and so on. Variables outside
// the VOTW_ namespace, and VOTW_CONFIG itself, are skipped.
func envTransform(key string) string {
	key = strings.ToLower(key)
	if !strings.HasPrefix(key, envPrefix) {
		return ""
	}
	key = strings.TrimPrefix(key, envPrefix)
	if key == "config" {
		return ""
	}
	return key
}

// Package config loads SDK configuration from layered sources: built-in
// defaults, an optional YAML file, inline YAML in the FIREADMIN_CONFIG
// environment variable, and FIREADMIN_-prefixed environment variables,
// in increasing priority.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	envprovider "github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const (
	// EnvPrefix namespaces the environment variables read by Load.
	EnvPrefix = "FIREADMIN_"

	// InlineConfigVar may hold a full YAML document, layered above any
	// config file.
	InlineConfigVar = "FIREADMIN_CONFIG"

	// DefaultConfigFile is consulted when no explicit path is given.
	DefaultConfigFile = "fireadmin.yaml"
)

// Load assembles the configuration from all sources. The path argument
// names a YAML file; pass "" to fall back to DefaultConfigFile, which is
// optional.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := loadDefaults(k); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	explicit := path != ""
	if !explicit {
		path = DefaultConfigFile
	}
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		// The default file is optional; an explicitly named one is not.
		if explicit {
			return nil, fmt.Errorf("failed to load config file %q: %w", path, err)
		}
	}

	if inline := os.Getenv(InlineConfigVar); inline != "" {
		if err := k.Load(rawbytes.Provider([]byte(inline)), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", InlineConfigVar, err)
		}
	}

	if err := k.Load(envprovider.Provider(".", envprovider.Opt{
		Prefix: EnvPrefix,
		TransformFunc: func(key, value string) (string, any) {
			if key == InlineConfigVar {
				return "", nil
			}
			key = strings.TrimPrefix(key, EnvPrefix)
			return strings.ReplaceAll(strings.ToLower(key), "_", "."), value
		},
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.k = k

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func loadDefaults(k *koanf.Koanf) error {
	defaults := map[string]any{
		"project.id":              "",
		"project.credentialsfile": "",

		"http.timeout":             "120s",
		"http.retry.disabled":      false,
		"http.retry.maxretries":    4,
		"http.retry.maxdelay":      "60s",
		"http.retry.backofffactor": 0.5,
		"http.ratelimit":           0,
		"http.rateburst":           0,

		"log.level":  "info",
		"log.pretty": false,
	}

	return k.Load(confmap.Provider(defaults, "."), nil)
}

// Validate checks structural constraints via struct tags plus the few
// cross-field rules the tags cannot express.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return err
	}

	if !cfg.HTTP.Retry.Disabled && cfg.HTTP.Retry.MaxDelay <= 0 {
		return fmt.Errorf("retry max delay must be positive when retries are enabled")
	}

	return nil
}

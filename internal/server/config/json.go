package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Duration unmarshals from either a string such as "90s" or integer nanoseconds.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch value := v.(type) {
	case float64:
		d.Duration = time.Duration(value)
		return nil
	case string:
		var err error
		d.Duration, err = time.ParseDuration(value)
		return err
	default:
		return errors.New("invalid duration")
	}
}

// JsonConfig is the on-disk shape of the config file, in JSON, YAML or TOML.
// Absent fields leave the current values untouched.
type JsonConfig struct {
	DatabaseDriver        string    `json:"database_driver" yaml:"database_driver" toml:"database_driver"`
	DatabaseDSN           string    `json:"database_dsn" yaml:"database_dsn" toml:"database_dsn"`
	TokenSecret           string    `json:"token_secret" yaml:"token_secret" toml:"token_secret"`
	TokenValidity         *Duration `json:"token_validity" yaml:"token_validity" toml:"token_validity"`
	DefaultPageSize       int       `json:"default_page_size" yaml:"default_page_size" toml:"default_page_size"`
	AllowedPageSizes      []int     `json:"allowed_page_sizes" yaml:"allowed_page_sizes" toml:"allowed_page_sizes"`
	HashVisibilitySecrets *bool     `json:"hash_visibility_secrets" yaml:"hash_visibility_secrets" toml:"hash_visibility_secrets"`
	LogLevel              string    `json:"log_level" yaml:"log_level" toml:"log_level"`
}

// parseConfigFile overlays the file at path onto config, choosing the format
// by extension. Unknown extensions are read as JSON.
func parseConfigFile(config *Config, path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return parseYAMLFile(config, path)
	case ".toml":
		return parseTOMLFile(config, path)
	default:
		return parseJSONFile(config, path)
	}
}

// parseJSONFile overlays the JSON file at path onto config.
func parseJSONFile(config *Config, path string) error {
	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	c.apply(config)
	return nil
}

func (c *JsonConfig) apply(config *Config) {
	if c.DatabaseDriver != "" {
		config.DatabaseDriver = c.DatabaseDriver
	}
	if c.DatabaseDSN != "" {
		config.DatabaseDSN = c.DatabaseDSN
	}
	if c.TokenSecret != "" {
		config.TokenSecret = c.TokenSecret
	}
	if c.TokenValidity != nil {
		config.TokenValidity = c.TokenValidity.Duration
	}
	if c.DefaultPageSize != 0 {
		config.DefaultPageSize = c.DefaultPageSize
	}
	if len(c.AllowedPageSizes) > 0 {
		config.AllowedPageSizes = c.AllowedPageSizes
	}
	if c.HashVisibilitySecrets != nil {
		config.HashVisibilitySecrets = *c.HashVisibilitySecrets
	}
	if c.LogLevel != "" {
		config.LogLevel = c.LogLevel
	}
}

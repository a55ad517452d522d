package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// UnmarshalYAML accepts the same forms as UnmarshalJSON.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("invalid duration at line %d", value.Line)
	}
	if value.Tag == "!!int" {
		var n int64
		if err := value.Decode(&n); err != nil {
			return err
		}
		d.Duration = time.Duration(n)
		return nil
	}

	var err error
	d.Duration, err = time.ParseDuration(value.Value)
	return err
}

// parseYAMLFile overlays the YAML file at path onto config.
func parseYAMLFile(config *Config, path string) error {
	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	c := &JsonConfig{}
	if err := yaml.Unmarshal(file, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	c.apply(config)
	return nil
}

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Environment variables read by Load. They override the config file and are
// overridden by explicit flags.
const (
	EnvDriver        = "BLOG_DATABASE_DRIVER"
	EnvDSN           = "BLOG_DATABASE_DSN"
	EnvTokenSecret   = "BLOG_TOKEN_SECRET"
	EnvTokenValidity = "BLOG_TOKEN_VALIDITY"
	EnvHashSecrets   = "BLOG_HASH_SECRETS"
	EnvLogLevel      = "BLOG_LOG_LEVEL"
)

type lookupFunc func(key string) (string, bool)

// envLookup resolves variables from the process environment first and then
// from the dotenv file at path. A missing file is not an error.
func envLookup(path string) (lookupFunc, error) {
	file := map[string]string{}
	if path != "" {
		vals, err := godotenv.Read(path)
		switch {
		case err == nil:
			file = vals
		case errors.Is(err, fs.ErrNotExist):
		default:
			return nil, fmt.Errorf("read env file %s: %w", path, err)
		}
	}

	return func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := file[key]
		return v, ok
	}, nil
}

// applyEnv overlays non-empty variables onto config.
func applyEnv(config *Config, lookup lookupFunc) error {
	get := func(key string) (string, bool) {
		v, ok := lookup(key)
		return v, ok && v != ""
	}

	if v, ok := get(EnvDriver); ok {
		config.DatabaseDriver = v
	}
	if v, ok := get(EnvDSN); ok {
		config.DatabaseDSN = v
	}
	if v, ok := get(EnvTokenSecret); ok {
		config.TokenSecret = v
	}
	if v, ok := get(EnvLogLevel); ok {
		config.LogLevel = v
	}
	if v, ok := get(EnvTokenValidity); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid value for %s: %q: %w", EnvTokenValidity, v, err)
		}
		config.TokenValidity = d
	}
	if v, ok := get(EnvHashSecrets); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid value for %s: %q: %w", EnvHashSecrets, v, err)
		}
		config.HashVisibilitySecrets = b
	}
	return nil
}

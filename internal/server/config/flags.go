package config

import (
	"github.com/spf13/pflag"
)

// Flag names.
const (
	FlagConfig        = "config"
	FlagEnvFile       = "env-file"
	FlagDriver        = "driver"
	FlagDSN           = "dsn"
	FlagTokenSecret   = "token-secret"
	FlagTokenValidity = "token-validity"
	FlagPageSize      = "page-size"
	FlagPageSizes     = "page-sizes"
	FlagHashSecrets   = "hash-secrets"
	FlagLogLevel      = "log-level"
)

// RegisterFlags defines the configuration flags on fs with the default values
// shown in help output.
//
//	-c, --config string           JSON, YAML or TOML config file
//	    --env-file string         dotenv file with BLOG_* variables
//	-r, --driver string           database driver (pgx or sqlite)
//	-d, --dsn string              database DSN
//	-s, --token-secret string     viewer token HMAC secret
//	-t, --token-validity duration viewer token lifetime
//	    --page-size int           default page size
//	    --page-sizes ints         allowed page sizes
//	    --hash-secrets            store visibility secrets as bcrypt hashes
//	-l, --log-level string        log level
func RegisterFlags(fs *pflag.FlagSet) {
	var d Config
	d.LoadDefaults()

	fs.StringP(FlagConfig, "c", "", "path to JSON, YAML or TOML config file")
	fs.String(FlagEnvFile, ".env", "dotenv file with BLOG_* variables; ignored when missing")
	fs.StringP(FlagDriver, "r", d.DatabaseDriver, "database driver (pgx or sqlite)")
	fs.StringP(FlagDSN, "d", d.DatabaseDSN, "database DSN")
	fs.StringP(FlagTokenSecret, "s", d.TokenSecret, "viewer token HMAC secret")
	fs.DurationP(FlagTokenValidity, "t", d.TokenValidity, "viewer token lifetime")
	fs.Int(FlagPageSize, d.DefaultPageSize, "default page size")
	fs.IntSlice(FlagPageSizes, d.AllowedPageSizes, "allowed page sizes")
	fs.Bool(FlagHashSecrets, d.HashVisibilitySecrets, "store visibility secrets as bcrypt hashes")
	fs.StringP(FlagLogLevel, "l", d.LogLevel, "log level (debug, info, warn, error)")
}

// applyFlags copies every flag the user set explicitly into config, so
// unset flags never clobber values loaded from JSON.
func applyFlags(config *Config, fs *pflag.FlagSet) error {
	var err error

	str := func(name string, dst *string) {
		if err == nil && fs.Changed(name) {
			*dst, err = fs.GetString(name)
		}
	}

	str(FlagDriver, &config.DatabaseDriver)
	str(FlagDSN, &config.DatabaseDSN)
	str(FlagTokenSecret, &config.TokenSecret)
	str(FlagLogLevel, &config.LogLevel)

	if err == nil && fs.Changed(FlagTokenValidity) {
		config.TokenValidity, err = fs.GetDuration(FlagTokenValidity)
	}
	if err == nil && fs.Changed(FlagPageSize) {
		config.DefaultPageSize, err = fs.GetInt(FlagPageSize)
	}
	if err == nil && fs.Changed(FlagPageSizes) {
		config.AllowedPageSizes, err = fs.GetIntSlice(FlagPageSizes)
	}
	if err == nil && fs.Changed(FlagHashSecrets) {
		config.HashVisibilitySecrets, err = fs.GetBool(FlagHashSecrets)
	}

	return err
}

// Package config loads service settings from a TOML file with one section
// per environment, then applies environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

type Config struct {
	Addr   string `toml:"addr"`
	WebDir string `toml:"web_dir"`
	// empty selects the in-memory store
	DatabaseURL string `toml:"database_url"`
	// sessions go to Redis when set, otherwise to the main store
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"-"`
	// day boundaries for the food ledger, e.g. "Europe/Berlin"
	Timezone string `toml:"timezone"`

	// logging
	LogLevel      string `toml:"log_level"`
	LogsPath      string `toml:"logs_path"`
	LogToStdout   bool   `toml:"log_to_stdout"`
	LogFormatJSON bool   `toml:"log_format_json"`
	SentryDSN     string `toml:"-"`

	// metrics
	MetricsNamespace string `toml:"metrics_namespace"`

	// auth
	DisableAuth     bool   `toml:"disable_auth"`
	InitialUser     string `toml:"initial_user"`
	InitialPassword string `toml:"-"`
	OIDC            OIDC   `toml:"oidc"`
}

// OIDC configures single sign-on. SSO is off while Issuer is empty.
type OIDC struct {
	Issuer       string `toml:"issuer"`
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"-"`
	RedirectURL  string `toml:"redirect_url"`
}

// Enabled reports whether SSO is configured.
func (o OIDC) Enabled() bool {
	return o.Issuer != "" && o.ClientID != ""
}

type Toml struct {
	Development *Config
	Production  *Config
}

func (t *Toml) Get(env string) (*Config, error) {
	switch strings.ToLower(env) {
	case "dev", "development":
		return t.Development, nil
	case "prod", "production":
		return t.Production, nil
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}
}

// Default returns the settings used when no config file exists.
func Default() *Config {
	return &Config{
		Addr:             ":8080",
		WebDir:           "web",
		LogLevel:         "info",
		LogToStdout:      true,
		MetricsNamespace: "fitcore",
	}
}

// Load reads the env section of the TOML file at path, loading .env files
// first. A missing config or .env file is not an error. Environment
// variables win over file values.
func Load(env, path string, dotenvFiles ...string) (*Config, error) {
	for _, f := range dotenvFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	cfg := Default()
	if path != "" {
		var t Toml
		_, err := toml.DecodeFile(path, &t)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("decode %s: %w", path, err)
		default:
			section, err := t.Get(env)
			if err != nil {
				return nil, err
			}
			if section == nil {
				return nil, fmt.Errorf("config %s has no [%s] section", path, strings.ToLower(env))
			}
			cfg = mergeDefaults(section)
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

func mergeDefaults(c *Config) *Config {
	d := Default()
	if c.Addr == "" {
		c.Addr = d.Addr
	}
	if c.WebDir == "" {
		c.WebDir = d.WebDir
	}
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
	if c.MetricsNamespace == "" {
		c.MetricsNamespace = d.MetricsNamespace
	}
	return c
}

func applyEnv(c *Config) {
	set := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	set(&c.Addr, "ADDR")
	set(&c.WebDir, "WEB_DIR")
	set(&c.DatabaseURL, "DATABASE_URL")
	set(&c.RedisAddr, "REDIS_ADDR")
	set(&c.RedisPassword, "REDIS_PASSWORD")
	set(&c.SentryDSN, "SENTRY_DSN")
	set(&c.Timezone, "TZ_NAME")
	set(&c.LogLevel, "LOG_LEVEL")
	set(&c.LogsPath, "LOGS_PATH")
	set(&c.InitialUser, "INITIAL_USER")
	set(&c.InitialPassword, "INITIAL_PASSWORD")
	set(&c.OIDC.Issuer, "OIDC_ISSUER")
	set(&c.OIDC.ClientID, "OIDC_CLIENT_ID")
	set(&c.OIDC.ClientSecret, "OIDC_CLIENT_SECRET")
	set(&c.OIDC.RedirectURL, "OIDC_REDIRECT_URL")
	if os.Getenv("DISABLE_AUTH") == "true" {
		c.DisableAuth = true
	}
}

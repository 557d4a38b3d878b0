// Package config loads the nexusboard server configuration: built-in
// defaults, then an optional YAML file, then NEXUSBOARD_* environment
// overrides.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/nexusboard/nexusboard/pkg/format"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "NEXUSBOARD_"

// Config is the full server configuration.
type Config struct {
	Server   Server   `yaml:"server"`
	Backend  Backend  `yaml:"backend"`
	Auth     Auth     `yaml:"auth"`
	Charts   Charts   `yaml:"charts"`
	Sessions Sessions `yaml:"sessions"`
	Log      Log      `yaml:"log"`
	Dataset  Dataset  `yaml:"dataset"`
	Format   Format   `yaml:"format"`
}

type Server struct {
	Addr     string `yaml:"addr"`
	BasePath string `yaml:"base_path"`
	// Transport selects the HTTP stack: "fiber" (go-router) or "http".
	Transport string `yaml:"transport"`
}

type Backend struct {
	BaseURL string `yaml:"base_url"`
}

type Auth struct {
	Enabled    bool   `yaml:"enabled"`
	LoginPath  string `yaml:"login_path"`
	UserPath   string `yaml:"user_path"`
	LogoutPath string `yaml:"logout_path"`
}

type Charts struct {
	Theme      string        `yaml:"theme"`
	AssetsHost string        `yaml:"assets_host"`
	CacheTTL   time.Duration `yaml:"cache_ttl"`
}

type Sessions struct {
	TTL time.Duration `yaml:"ttl"`
}

type Log struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

type Dataset struct {
	Path string `yaml:"path"`
}

type Format struct {
	Location string `yaml:"location"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		Server:   Server{Addr: ":8080", Transport: "fiber"},
		Auth:     Auth{LoginPath: "/login", UserPath: "/api/user", LogoutPath: "/api/logout"},
		Charts:   Charts{Theme: "westeros", CacheTTL: 5 * time.Minute},
		Sessions: Sessions{TTL: 30 * time.Minute},
		Log:      Log{Level: "info"},
		Format:   Format{Location: "Asia/Kolkata"},
	}
}

// Load reads path over the defaults and applies environment overrides. An
// empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		f, err := os.Open(path) //nolint:gosec
		if err != nil {
			return Config{}, fmt.Errorf("config: open %s: %w", path, err)
		}
		defer f.Close()
		if err := Decode(f, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: %s: %w", path, err)
		}
	}
	if err := ApplyEnv(&cfg, os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Decode merges a YAML document into cfg, rejecting unknown keys.
func Decode(r io.Reader, cfg *Config) error {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse yaml: %w", err)
	}
	return nil
}

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// ApplyEnv overrides cfg from NEXUSBOARD_<SECTION>_<KEY> variables, e.g.
// NEXUSBOARD_SERVER_ADDR or NEXUSBOARD_CHARTS_CACHE_TTL.
func ApplyEnv(cfg *Config, lookup LookupFunc) error {
	var errs []error
	str := func(key string, dst *string) {
		if v, ok := lookup(EnvPrefix + key); ok {
			*dst = v
		}
	}
	boolean := func(key string, dst *bool) {
		if v, ok := lookup(EnvPrefix + key); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("config: %s%s: %w", EnvPrefix, key, err))
				return
			}
			*dst = b
		}
	}
	duration := func(key string, dst *time.Duration) {
		if v, ok := lookup(EnvPrefix + key); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("config: %s%s: %w", EnvPrefix, key, err))
				return
			}
			*dst = d
		}
	}

	str("SERVER_ADDR", &cfg.Server.Addr)
	str("SERVER_BASE_PATH", &cfg.Server.BasePath)
	str("SERVER_TRANSPORT", &cfg.Server.Transport)
	str("BACKEND_BASE_URL", &cfg.Backend.BaseURL)
	boolean("AUTH_ENABLED", &cfg.Auth.Enabled)
	str("AUTH_LOGIN_PATH", &cfg.Auth.LoginPath)
	str("AUTH_USER_PATH", &cfg.Auth.UserPath)
	str("AUTH_LOGOUT_PATH", &cfg.Auth.LogoutPath)
	str("CHARTS_THEME", &cfg.Charts.Theme)
	str("CHARTS_ASSETS_HOST", &cfg.Charts.AssetsHost)
	duration("CHARTS_CACHE_TTL", &cfg.Charts.CacheTTL)
	duration("SESSIONS_TTL", &cfg.Sessions.TTL)
	str("LOG_LEVEL", &cfg.Log.Level)
	boolean("LOG_DEVELOPMENT", &cfg.Log.Development)
	str("DATASET_PATH", &cfg.Dataset.Path)
	str("FORMAT_LOCATION", &cfg.Format.Location)
	return errors.Join(errs...)
}

// Validate checks the values the server cannot start without.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Server.Addr) == "" {
		errs = append(errs, errors.New("config: server.addr is required"))
	}
	switch c.Server.Transport {
	case "fiber", "http":
	default:
		errs = append(errs, fmt.Errorf("config: server.transport %q must be fiber or http", c.Server.Transport))
	}
	if c.Auth.Enabled && c.Backend.BaseURL == "" {
		errs = append(errs, errors.New("config: backend.base_url is required when auth is enabled"))
	}
	if c.Sessions.TTL < 0 {
		errs = append(errs, errors.New("config: sessions.ttl must not be negative"))
	}
	if _, err := c.Location(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Location resolves format.location. Empty or Asia/Kolkata fall back to a
// fixed +05:30 zone when the tz database is missing.
func (c Config) Location() (*time.Location, error) {
	switch c.Format.Location {
	case "", "Asia/Kolkata":
		return format.IndiaLocation(), nil
	}
	loc, err := time.LoadLocation(c.Format.Location)
	if err != nil {
		return nil, fmt.Errorf("config: format.location: %w", err)
	}
	return loc, nil
}

// Package config loads tada settings from defaults, TOML files, .env,
// environment variables and command-line overrides, in that order.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

const (
	DefaultAPIURL      = "http://localhost:8080"
	DefaultTimeout     = 10 * time.Second
	DefaultTheme       = "classic"
	DefaultLogLevel    = "info"
	DefaultLogFormat   = "text"
	DefaultServerAddr  = ":8080"
	DefaultStore       = "json"
	DefaultOrigin      = "http://localhost:3000"
	ConfigFileName     = "config.toml"
	ProjectConfigFile  = "tada.toml"
	DefaultLogFileName = "tada.log"
	DefaultDataFile    = "todos.json"
)

// Config is the full set of settings shared by the client and the server.
type Config struct {
	API    APIConfig    `toml:"api"`
	UI     UIConfig     `toml:"ui"`
	Log    LogConfig    `toml:"log"`
	Server ServerConfig `toml:"server"`

	// Home is the per-user directory holding config, credentials and logs.
	Home string `toml:"-"`
}

type APIConfig struct {
	URL     string        `toml:"url"`
	Timeout time.Duration `toml:"timeout"`
}

type UIConfig struct {
	Theme string `toml:"theme"`
	Group bool   `toml:"group"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
	// File receives logs from the interactive view; empty means <home>/tada.log.
	File string `toml:"file"`
}

type ServerConfig struct {
	Addr           string   `toml:"addr"`
	Store          string   `toml:"store"` // json | sqlite | mysql
	DSN            string   `toml:"dsn"`
	AllowedOrigins []string `toml:"allowed_origins"`
}

// Overrides carries values set on the command line. Empty fields are ignored.
type Overrides struct {
	ConfigFile string
	APIURL     string
	Theme      string
	LogLevel   string

	ServerAddr string
	Store      string
	DSN        string
}

// Default returns a Config populated with built-in defaults.
func Default() *Config {
	return &Config{
		API: APIConfig{URL: DefaultAPIURL, Timeout: DefaultTimeout},
		UI:  UIConfig{Theme: DefaultTheme},
		Log: LogConfig{Level: DefaultLogLevel, Format: DefaultLogFormat},
		Server: ServerConfig{
			Addr:           DefaultServerAddr,
			Store:          DefaultStore,
			AllowedOrigins: []string{DefaultOrigin},
		},
	}
}

// Load builds the effective configuration.
//  1. Defaults
//  2. <home>/config.toml
//  3. ./tada.toml, or the file named by ov.ConfigFile
//  4. ./.env (never overrides variables already set)
//  5. TADA_* environment variables
//  6. Overrides
func Load(ov Overrides) (*Config, error) {
	cfg := Default()

	home, err := HomeDir()
	if err != nil {
		return nil, err
	}
	cfg.Home = home

	if err := decodeIfExists(cfg, filepath.Join(home, ConfigFileName)); err != nil {
		return nil, err
	}

	if ov.ConfigFile != "" {
		if _, err := toml.DecodeFile(ov.ConfigFile, cfg); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", ov.ConfigFile, err)
		}
	} else if err := decodeIfExists(cfg, ProjectConfigFile); err != nil {
		return nil, err
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}
	if err := loadFromEnv(cfg); err != nil {
		return nil, err
	}

	applyOverrides(cfg, ov)

	if err := cfg.finalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// HomeDir returns TADA_HOME, or ~/.tada.
func HomeDir() (string, error) {
	if v := strings.TrimSpace(os.Getenv("TADA_HOME")); v != "" {
		return expandHome(v), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home: %w", err)
	}
	return filepath.Join(home, ".tada"), nil
}

// LogFile returns the resolved log file path for the interactive view.
func (c *Config) LogFile() string {
	if c.Log.File != "" {
		return c.Log.File
	}
	return filepath.Join(c.Home, DefaultLogFileName)
}

func decodeIfExists(cfg *Config, path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("loading config file %s: %w", path, err)
	}
	return nil
}

func loadFromEnv(cfg *Config) error {
	if v := os.Getenv("TADA_API_URL"); v != "" {
		cfg.API.URL = v
	}
	if v := os.Getenv("TADA_API_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("TADA_API_TIMEOUT: %w", err)
		}
		cfg.API.Timeout = d
	}
	if v := os.Getenv("TADA_THEME"); v != "" {
		cfg.UI.Theme = v
	}
	if v := os.Getenv("TADA_GROUP"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("TADA_GROUP: %w", err)
		}
		cfg.UI.Group = b
	}
	if v := os.Getenv("TADA_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("TADA_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("TADA_LOG_FILE"); v != "" {
		cfg.Log.File = v
	}
	if v := os.Getenv("TADA_SERVER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("TADA_STORE"); v != "" {
		cfg.Server.Store = v
	}
	if v := os.Getenv("TADA_DSN"); v != "" {
		cfg.Server.DSN = v
	}
	if v := os.Getenv("TADA_ALLOWED_ORIGINS"); v != "" {
		cfg.Server.AllowedOrigins = splitList(v)
	}
	return nil
}

func applyOverrides(cfg *Config, ov Overrides) {
	if ov.APIURL != "" {
		cfg.API.URL = ov.APIURL
	}
	if ov.Theme != "" {
		cfg.UI.Theme = ov.Theme
	}
	if ov.LogLevel != "" {
		cfg.Log.Level = ov.LogLevel
	}
	if ov.ServerAddr != "" {
		cfg.Server.Addr = ov.ServerAddr
	}
	if ov.Store != "" {
		cfg.Server.Store = ov.Store
	}
	if ov.DSN != "" {
		cfg.Server.DSN = ov.DSN
	}
}

func (c *Config) finalize() error {
	c.API.URL = strings.TrimRight(strings.TrimSpace(c.API.URL), "/")
	u, err := url.Parse(c.API.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid api url %q", c.API.URL)
	}
	if c.API.Timeout <= 0 {
		c.API.Timeout = DefaultTimeout
	}
	c.Log.File = expandHome(c.Log.File)

	c.Server.Store = strings.ToLower(strings.TrimSpace(c.Server.Store))
	switch c.Server.Store {
	case "json":
		if c.Server.DSN == "" {
			c.Server.DSN = filepath.Join(c.Home, DefaultDataFile)
		}
	case "sqlite", "mysql":
		if c.Server.DSN == "" {
			return fmt.Errorf("store %q needs a dsn", c.Server.Store)
		}
	default:
		return fmt.Errorf("unknown store %q (want json, sqlite or mysql)", c.Server.Store)
	}
	if c.Server.Store != "mysql" {
		c.Server.DSN = expandHome(c.Server.DSN)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return p
		}
		return filepath.Join(home, p[1:])
	}
	return p
}

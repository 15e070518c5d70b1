// Package config loads forts.toml, .env files and FORTS_* environment
// overrides into one Config.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/amterp/forts/internal/discovery"
	fortserr "github.com/amterp/forts/internal/errors"
	"github.com/amterp/forts/internal/version"
)

const (
	ConfigFileName = "forts.toml"
	EnvFileName    = ".env"
)

// Environment variables that override the file.
const (
	EnvDatabaseURL = "FORTS_DATABASE_URL"
	EnvStoreDriver = "FORTS_STORE_DRIVER"
	EnvPort        = "FORTS_PORT"
	EnvLogLevel    = "FORTS_LOG_LEVEL"
	EnvRevalidate  = "FORTS_REVALIDATE"
)

// DefaultImageHosts are the hosts whose images the pages will render.
var DefaultImageHosts = []string{"upload.wikimedia.org", "lh3.googleusercontent.com"}

// Config is the whole application configuration.
type Config struct {
	FortsSchema string        `toml:"forts_schema"`
	Server      ServerConfig  `toml:"server"`
	Store       StoreConfig   `toml:"store"`
	Catalog     CatalogConfig `toml:"catalog"`
	Images      ImagesConfig  `toml:"images"`
	Export      ExportConfig  `toml:"export"`
	Log         LogConfig     `toml:"log"`

	// path is where the config was read from, empty for defaults.
	path string
}

type ServerConfig struct {
	Port         int      `toml:"port"`
	ReadTimeout  Duration `toml:"read_timeout"`
	WriteTimeout Duration `toml:"write_timeout"`
	Dev          bool     `toml:"dev"`
}

type StoreConfig struct {
	Driver string `toml:"driver"` // postgres, sqlite or memory
	DSN    string `toml:"dsn"`
	Path   string `toml:"path"`
}

type CatalogConfig struct {
	Revalidate Duration `toml:"revalidate"`
}

type ImagesConfig struct {
	AllowedHosts []string `toml:"allowed_hosts"`
}

type ExportConfig struct {
	S3Region    string `toml:"s3_region"`
	S3Endpoint  string `toml:"s3_endpoint"`
	S3PathStyle bool   `toml:"s3_path_style"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

// Duration is a time.Duration that reads from TOML strings like "90s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		FortsSchema: version.CurrentConfigSchema(),
		Server: ServerConfig{
			Port:         5260,
			ReadTimeout:  Duration{15 * time.Second},
			WriteTimeout: Duration{30 * time.Second},
		},
		Store: StoreConfig{
			Driver: "sqlite",
			Path:   "forts.db",
		},
		Catalog: CatalogConfig{Revalidate: Duration{time.Hour}},
		Images:  ImagesConfig{AllowedHosts: append([]string(nil), DefaultImageHosts...)},
		Export:  ExportConfig{S3Region: "us-east-1"},
		Log:     LogConfig{Level: "info"},
	}
}

// Path returns the file the config was loaded from.
func (c *Config) Path() string { return c.path }

// Load reads the config. An empty path means the nearest forts.toml in the
// working directory or its parents, and a missing default file is not an error. An explicit path
// must exist. .env is loaded first and never overrides variables that are
// already set; FORTS_* variables then override the file.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()
	return load(path, os.Getenv)
}

func load(path string, getenv func(string) string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = ConfigFileName
		if found, err := discovery.FindUp(ConfigFileName); err == nil && found != "" {
			path = found
		}
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := decode(data, path, cfg); err != nil {
			return nil, err
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
		// Defaults plus environment.
	default:
		return nil, &fortserr.ConfigError{Path: path, Message: err.Error()}
	}

	if err := cfg.applyEnv(getenv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(data []byte, path string, cfg *Config) error {
	// Clear the default stamp so a file without one is caught.
	cfg.FortsSchema = ""
	if err := toml.Unmarshal(data, cfg); err != nil {
		return &fortserr.ConfigError{Path: path, Message: err.Error()}
	}
	if err := version.CheckConfigSchema(path, cfg.FortsSchema); err != nil {
		return err
	}
	cfg.path = path
	// A relative SQLite path is relative to the file that names it.
	if cfg.Store.Path != "" && !filepath.IsAbs(cfg.Store.Path) {
		cfg.Store.Path = filepath.Join(filepath.Dir(path), cfg.Store.Path)
	}
	return nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	if v := getenv(EnvDatabaseURL); v != "" {
		c.Store.DSN = v
		if getenv(EnvStoreDriver) == "" {
			c.Store.Driver = "postgres"
		}
	}
	if v := getenv(EnvStoreDriver); v != "" {
		c.Store.Driver = v
	}
	if v := getenv(EnvPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return &fortserr.ConfigError{Message: fmt.Sprintf("%s: %q is not a port", EnvPort, v)}
		}
		c.Server.Port = port
	}
	if v := getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
	if v := getenv(EnvRevalidate); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return &fortserr.ConfigError{Message: fmt.Sprintf("%s: %v", EnvRevalidate, err)}
		}
		c.Catalog.Revalidate = Duration{d}
	}
	return nil
}

// Validate checks values that cannot be caught by decoding.
func (c *Config) Validate() error {
	fail := func(msg string) error {
		return &fortserr.ConfigError{Path: c.path, Message: msg}
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fail(fmt.Sprintf("server.port %d out of range", c.Server.Port))
	}
	switch c.Store.Driver {
	case "postgres", "sqlite", "memory":
	default:
		return fail(fmt.Sprintf("store.driver %q must be postgres, sqlite or memory", c.Store.Driver))
	}
	if c.Catalog.Revalidate.Duration < 0 {
		return fail("catalog.revalidate must not be negative")
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fail(fmt.Sprintf("log.level %q must be debug, info, warn or error", c.Log.Level))
	}
	return nil
}

// ImageHosts returns a copy of the image host allow-list.
func (c *Config) ImageHosts() []string {
	return append([]string(nil), c.Images.AllowedHosts...)
}

// WriteDefault writes a default forts.toml to path. It refuses to overwrite.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return &fortserr.ConfigError{Path: path, Message: "already exists"}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(Default()); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}

// Package config loads gateway settings from an optional YAML file overlaid
// with environment variables.
package config

import (
	"crypto/tls"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"gopkg.in/yaml.v3"
)

const (
	DriverPostgres = "postgres"
	DriverTables   = "tables"

	DefaultListenAddr      = ":3000"
	DefaultTasksURL        = "http://localhost:8080"
	DefaultStatusesURL     = "http://localhost:5000"
	DefaultTimeout         = 5 * time.Second
	DefaultDedupeTTL       = 24 * time.Hour
	DefaultCategoriesTable = "categories"
)

// Server holds HTTP listener settings.
type Server struct {
	Addr  string `yaml:"addr"`
	Debug bool   `yaml:"debug"`
	Pprof bool   `yaml:"pprof"`
}

// Store selects and configures the category store backend.
type Store struct {
	Driver           string `yaml:"driver"`
	DSN              string `yaml:"dsn"`
	ConnectionString string `yaml:"connection_string"`
	Table            string `yaml:"table"`
}

// Notifications configures the optional category events queue. It shares
// the store's storage account connection string unless one is given.
type Notifications struct {
	ConnectionString string `yaml:"connection_string"`
	Queue            string `yaml:"queue"`
}

// Redis configures the idempotency key store for category creation.
type Redis struct {
	URL       string        `yaml:"url"`
	DedupeTTL time.Duration `yaml:"dedupe_ttl"`
}

// Upstream describes one remote JSON source.
type Upstream struct {
	Name    string        `yaml:"name"`
	BaseURL string        `yaml:"base_url"`
	Path    string        `yaml:"path"`
	Timeout time.Duration `yaml:"timeout"`
}

// Aggregation tunes the todo aggregator.
type Aggregation struct {
	Parallel      bool   `yaml:"parallel"`
	CategoryLabel string `yaml:"category_label"`
}

// Config is the full gateway configuration.
type Config struct {
	Server        Server        `yaml:"server"`
	Store         Store         `yaml:"store"`
	Notifications Notifications `yaml:"notifications"`
	Redis         Redis         `yaml:"redis"`
	Tasks         Upstream      `yaml:"tasks"`
	Statuses      Upstream      `yaml:"statuses"`
	Aggregation   Aggregation   `yaml:"aggregation"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Server: Server{Addr: DefaultListenAddr},
		Store:  Store{Driver: DriverPostgres, Table: DefaultCategoriesTable},
		Redis:  Redis{DedupeTTL: DefaultDedupeTTL},
		Tasks: Upstream{
			Name:    "task-service",
			BaseURL: DefaultTasksURL,
			Path:    "/api/tasks",
			Timeout: DefaultTimeout,
		},
		Statuses: Upstream{
			Name:    "status-service",
			BaseURL: DefaultStatusesURL,
			Path:    "/api/statuses",
			Timeout: DefaultTimeout,
		},
		Aggregation: Aggregation{Parallel: true, CategoryLabel: "category-store"},
	}
}

// Load reads path over the defaults, applies environment overrides and
// validates the result. An empty path skips the file.
func Load(path string) (Config, error) {
	return load(path, os.LookupEnv)
}

func load(path string, lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read configuration file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse configuration file %s: %w", path, err)
		}
	}
	if err := cfg.ApplyEnv(lookup); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// ApplyEnv overrides settings from environment variables found by lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	if v, ok := lookup("PORT"); ok && v != "" {
		c.Server.Addr = ":" + strings.TrimPrefix(v, ":")
	}
	if v, ok := lookup("DEBUG"); ok && v != "" {
		dbg, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid DEBUG: %w", err)
		}
		c.Server.Debug = dbg
	}
	str("CATEGORY_STORE", &c.Store.Driver)
	str("DATABASE_URL", &c.Store.DSN)
	str("STORAGE_CONNECTION_STRING", &c.Store.ConnectionString)
	str("CATEGORIES_TABLE", &c.Store.Table)
	str("CATEGORY_EVENTS_QUEUE", &c.Notifications.Queue)
	str("REDIS_CONNECTION_STRING", &c.Redis.URL)
	str("JAVA_SERVICE_URL", &c.Tasks.BaseURL)
	str("PYTHON_SERVICE_URL", &c.Statuses.BaseURL)
	if v, ok := lookup("DEDUPER_TTL"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return fmt.Errorf("invalid DEDUPER_TTL: %q", v)
		}
		c.Redis.DedupeTTL = d
	}
	if v, ok := lookup("UPSTREAM_TIMEOUT"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return fmt.Errorf("invalid UPSTREAM_TIMEOUT: %q", v)
		}
		c.Tasks.Timeout = d
		c.Statuses.Timeout = d
	}
	if v, ok := lookup("AGGREGATION_PARALLEL"); ok && v != "" {
		p, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid AGGREGATION_PARALLEL: %w", err)
		}
		c.Aggregation.Parallel = p
	}
	return nil
}

// Validate reports the first inconsistency in c.
func (c Config) Validate() error {
	if c.Server.Addr == "" {
		return errors.New("server.addr is required")
	}
	switch c.Store.Driver {
	case DriverPostgres:
		if c.Store.DSN == "" {
			return errors.New("store.dsn is required for the postgres driver")
		}
	case DriverTables:
		if c.Store.ConnectionString == "" || c.Store.Table == "" {
			return errors.New("store.connection_string and store.table are required for the tables driver")
		}
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	if c.Notifications.Queue != "" && c.NotificationsConnectionString() == "" {
		return errors.New("notifications.queue requires a storage connection string")
	}
	for name, u := range map[string]Upstream{"tasks": c.Tasks, "statuses": c.Statuses} {
		if err := u.validate(); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	if c.Redis.URL != "" && c.Redis.DedupeTTL <= 0 {
		return errors.New("redis.dedupe_ttl must be greater than zero")
	}
	return nil
}

func (u Upstream) validate() error {
	parsed, err := url.Parse(u.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base_url: %w", err)
	}
	if (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return fmt.Errorf("invalid base_url %q", u.BaseURL)
	}
	if u.Timeout <= 0 {
		return errors.New("timeout must be greater than zero")
	}
	return nil
}

// NotificationsConnectionString falls back to the store connection string.
func (c Config) NotificationsConnectionString() string {
	if c.Notifications.ConnectionString != "" {
		return c.Notifications.ConnectionString
	}
	return c.Store.ConnectionString
}

// RedisOptions parses Redis.URL. Both redis:// URLs and the
// "host:port,password=...,ssl=true" form are accepted.
func (c Config) RedisOptions() (*redis.Options, error) {
	if c.Redis.URL == "" {
		return nil, errors.New("redis is not configured")
	}
	if opts, err := redis.ParseURL(c.Redis.URL); err == nil {
		return opts, nil
	}
	parts := strings.Split(c.Redis.URL, ",")
	opts := &redis.Options{Addr: strings.TrimSpace(parts[0])}
	for _, p := range parts[1:] {
		kv := strings.SplitN(p, "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch strings.ToLower(strings.TrimSpace(kv[0])) {
		case "password":
			opts.Password = kv[1]
		case "ssl":
			if strings.EqualFold(kv[1], "true") {
				opts.TLSConfig = &tls.Config{}
			}
		}
	}
	if opts.Addr == "" {
		return nil, fmt.Errorf("invalid redis connection string")
	}
	return opts, nil
}

// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package config handles application configuration loading. Values come
// from built-in defaults, then an optional YAML file named by
// BLOGDESK_CONFIG, then environment variables (a .env file is loaded
// first when present). It provides a centralized Config struct used
// across the application.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Asset backends.
const (
	AssetBackendAPI = "api"
	AssetBackendS3  = "s3"
)

// FileEnv names the environment variable holding the YAML config path.
const FileEnv = "BLOGDESK_CONFIG"

// Config holds all application configuration values.
type Config struct {
	// Server settings
	Host         string `yaml:"host"`
	Port         string `yaml:"port"`
	Env          string `yaml:"env"` // "development", "production", "testing"
	LogLevel     string `yaml:"log_level"`
	CookieSecure bool   `yaml:"cookie_secure"`

	// Blog REST backend
	APIBaseURL string        `yaml:"api_base_url"`
	APITimeout time.Duration `yaml:"api_timeout"`

	// PostgreSQL connection. An empty DBHost disables the orphan ledger.
	DBHost     string `yaml:"db_host"`
	DBPort     string `yaml:"db_port"`
	DBUser     string `yaml:"db_user"`
	DBPassword string `yaml:"db_password"`
	DBName     string `yaml:"db_name"`

	// Valkey (Redis-compatible cache)
	ValkeyHost     string `yaml:"valkey_host"`
	ValkeyPort     string `yaml:"valkey_port"`
	ValkeyPassword string `yaml:"valkey_password"`
	ValkeyDB       int    `yaml:"valkey_db"`

	// Remote assets
	AssetBackend  string   `yaml:"asset_backend"`
	AssetHosts    []string `yaml:"asset_hosts"`
	AssetPrefixes []string `yaml:"asset_prefixes"`

	// S3-compatible object storage, used when AssetBackend is "s3"
	S3Endpoint  string `yaml:"s3_endpoint"`
	S3Region    string `yaml:"s3_region"`
	S3AccessKey string `yaml:"s3_access_key"`
	S3SecretKey string `yaml:"s3_secret_key"`
	S3Bucket    string `yaml:"s3_bucket"`
	S3PublicURL string `yaml:"s3_public_url"`

	// Lifetimes
	SessionTTL       time.Duration `yaml:"session_ttl"`
	EditorSessionTTL time.Duration `yaml:"editor_session_ttl"`
	StagingTTL       time.Duration `yaml:"staging_ttl"`
	CacheTTL         time.Duration `yaml:"cache_ttl"`

	// Save workflow
	CleanupConcurrency int           `yaml:"cleanup_concurrency"`
	DetachedTimeout    time.Duration `yaml:"detached_timeout"`

	// Rate limits
	LoginRateLimit   int           `yaml:"login_rate_limit"`
	LoginRateWindow  time.Duration `yaml:"login_rate_window"`
	UploadRateLimit  int           `yaml:"upload_rate_limit"`
	UploadRateWindow time.Duration `yaml:"upload_rate_window"`
}

// DefaultAssetHost is where the blog backend's asset service stores uploads
// unless ASSET_HOSTS says otherwise.
const DefaultAssetHost = "res.cloudinary.com"

// Defaults returns the development defaults.
func Defaults() *Config {
	return &Config{
		Host:     "0.0.0.0",
		Port:     "8080",
		Env:      "development",
		LogLevel: "info",

		APIBaseURL: "http://localhost:5000/api/v1",
		APITimeout: 30 * time.Second,

		DBPort:     "5432",
		DBUser:     "blogdesk",
		DBPassword: "changeme",
		DBName:     "blogdesk",

		ValkeyHost: "localhost",
		ValkeyPort: "6379",

		AssetBackend: AssetBackendAPI,
		AssetHosts:   []string{DefaultAssetHost},
		S3Region:     "us-east-1",

		SessionTTL:       12 * time.Hour,
		EditorSessionTTL: 2 * time.Hour,
		StagingTTL:       6 * time.Hour,
		CacheTTL:         30 * time.Second,

		CleanupConcurrency: 4,
		DetachedTimeout:    30 * time.Second,

		LoginRateLimit:   10,
		LoginRateWindow:  time.Minute,
		UploadRateLimit:  60,
		UploadRateWindow: time.Minute,
	}
}

// Load builds the configuration from defaults, the optional YAML file and
// the environment, then validates it.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := Defaults()

	if path := os.Getenv(FileEnv); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// loadFile overlays the YAML file at path. ${VAR} references are expanded
// before parsing.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	c.Host = envOrDefault("APP_HOST", c.Host)
	c.Port = envOrDefault("APP_PORT", c.Port)
	c.Env = envOrDefault("APP_ENV", c.Env)
	c.LogLevel = envOrDefault("LOG_LEVEL", c.LogLevel)

	c.APIBaseURL = strings.TrimRight(envOrDefault("BLOG_API_URL", c.APIBaseURL), "/")

	c.DBHost = envOrDefault("POSTGRES_HOST", c.DBHost)
	c.DBPort = envOrDefault("POSTGRES_PORT", c.DBPort)
	c.DBUser = envOrDefault("POSTGRES_USER", c.DBUser)
	c.DBPassword = envOrDefault("POSTGRES_PASSWORD", c.DBPassword)
	c.DBName = envOrDefault("POSTGRES_DB", c.DBName)

	c.ValkeyHost = envOrDefault("VALKEY_HOST", c.ValkeyHost)
	c.ValkeyPort = envOrDefault("VALKEY_PORT", c.ValkeyPort)
	c.ValkeyPassword = envOrDefault("VALKEY_PASSWORD", c.ValkeyPassword)

	c.AssetBackend = envOrDefault("ASSET_BACKEND", c.AssetBackend)
	c.AssetHosts = listOrDefault("ASSET_HOSTS", c.AssetHosts)
	c.AssetPrefixes = listOrDefault("ASSET_URL_PREFIXES", c.AssetPrefixes)

	c.S3Endpoint = envOrDefault("S3_ENDPOINT", c.S3Endpoint)
	c.S3Region = envOrDefault("S3_REGION", c.S3Region)
	c.S3AccessKey = envOrDefault("S3_ACCESS_KEY", c.S3AccessKey)
	c.S3SecretKey = envOrDefault("S3_SECRET_KEY", c.S3SecretKey)
	c.S3Bucket = envOrDefault("S3_BUCKET", c.S3Bucket)
	c.S3PublicURL = envOrDefault("S3_PUBLIC_URL", c.S3PublicURL)

	var err error
	if c.CookieSecure, err = boolOrDefault("COOKIE_SECURE", c.CookieSecure); err != nil {
		return err
	}
	if c.ValkeyDB, err = intOrDefault("VALKEY_DB", c.ValkeyDB); err != nil {
		return err
	}
	if c.CleanupConcurrency, err = intOrDefault("CLEANUP_CONCURRENCY", c.CleanupConcurrency); err != nil {
		return err
	}
	if c.LoginRateLimit, err = intOrDefault("LOGIN_RATE_LIMIT", c.LoginRateLimit); err != nil {
		return err
	}
	if c.UploadRateLimit, err = intOrDefault("UPLOAD_RATE_LIMIT", c.UploadRateLimit); err != nil {
		return err
	}

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"BLOG_API_TIMEOUT", &c.APITimeout},
		{"SESSION_TTL", &c.SessionTTL},
		{"EDITOR_SESSION_TTL", &c.EditorSessionTTL},
		{"STAGING_TTL", &c.StagingTTL},
		{"QUERY_CACHE_TTL", &c.CacheTTL},
		{"DETACHED_TIMEOUT", &c.DetachedTimeout},
		{"LOGIN_RATE_WINDOW", &c.LoginRateWindow},
		{"UPLOAD_RATE_WINDOW", &c.UploadRateWindow},
	}
	for _, d := range durations {
		if *d.dst, err = durationOrDefault(d.key, *d.dst); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks the configuration. Production refuses the default
// database password and a loopback API base URL.
func (c *Config) Validate() error {
	err := validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, is.Port),
		validation.Field(&c.Env, validation.Required, validation.In("development", "production", "testing")),
		validation.Field(&c.LogLevel, validation.In("debug", "info", "warn", "error")),
		validation.Field(&c.APIBaseURL, validation.Required, is.URL),
		validation.Field(&c.APITimeout, validation.Min(time.Second)),
		validation.Field(&c.ValkeyHost, validation.Required),
		validation.Field(&c.ValkeyPort, validation.Required, is.Port),
		validation.Field(&c.ValkeyDB, validation.Min(0), validation.Max(15)),
		validation.Field(&c.AssetBackend, validation.Required, validation.In(AssetBackendAPI, AssetBackendS3)),
		validation.Field(&c.S3Bucket, validation.When(c.AssetBackend == AssetBackendS3, validation.Required)),
		validation.Field(&c.S3AccessKey, validation.When(c.AssetBackend == AssetBackendS3, validation.Required)),
		validation.Field(&c.S3SecretKey, validation.When(c.AssetBackend == AssetBackendS3, validation.Required)),
		validation.Field(&c.S3PublicURL, is.URL),
		validation.Field(&c.SessionTTL, validation.Min(time.Minute)),
		validation.Field(&c.EditorSessionTTL, validation.Min(time.Minute)),
		validation.Field(&c.StagingTTL, validation.Min(time.Minute)),
		validation.Field(&c.CacheTTL, validation.Min(time.Duration(0))),
		validation.Field(&c.CleanupConcurrency, validation.Min(1)),
		validation.Field(&c.DetachedTimeout, validation.Min(time.Second)),
		validation.Field(&c.LoginRateLimit, validation.Min(1)),
		validation.Field(&c.LoginRateWindow, validation.Min(time.Second)),
		validation.Field(&c.UploadRateLimit, validation.Min(1)),
		validation.Field(&c.UploadRateWindow, validation.Min(time.Second)),
	)
	if err != nil {
		return err
	}

	// Without a host or prefix no stored URL is recognised, so edits would
	// never clean up replaced assets.
	if c.AssetBackend == AssetBackendAPI && len(c.AssetHosts) == 0 && len(c.AssetPrefixes) == 0 {
		return fmt.Errorf("ASSET_HOSTS or ASSET_URL_PREFIXES must be set when ASSET_BACKEND is %q", AssetBackendAPI)
	}

	if c.Env == "production" {
		if c.HasDB() && c.DBPassword == "changeme" {
			return fmt.Errorf("POSTGRES_PASSWORD must be set in production")
		}
		if strings.Contains(c.APIBaseURL, "://localhost") {
			return fmt.Errorf("BLOG_API_URL must be set in production")
		}
	}
	return nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName,
	)
}

// HasDB reports whether the orphan ledger database is configured.
func (c *Config) HasDB() bool {
	return c.DBHost != ""
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// SlogLevel maps LogLevel to a slog.Level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return l
}

// envOrDefault reads an environment variable, returning a fallback if unset or empty.
func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// listOrDefault reads a comma-separated list.
func listOrDefault(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func intOrDefault(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func boolOrDefault(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

func durationOrDefault(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	apperrors "scribblehub-to-epub/pkg/errors"
)

const appName = "scribblehub-to-epub"

// Supported cache backends
const (
	BackendSQLite   = "sqlite"
	BackendMemcache = "memcache"
	BackendRedis    = "redis"
	BackendNone     = "none"
)

type Config struct {
	OutputDir string `yaml:"output_dir" env:"SH2EPUB_OUTPUT_DIR"`
	BaseURL   string `yaml:"base_url" env:"SH2EPUB_BASE_URL"`
	LogLevel  string `yaml:"log_level" env:"SH2EPUB_LOG_LEVEL"`

	UserAgent         string        `yaml:"user_agent" env:"SH2EPUB_USER_AGENT"`
	RequestsPerMinute int           `yaml:"requests_per_minute" env:"SH2EPUB_REQUESTS_PER_MINUTE"`
	RetryCount        int           `yaml:"retry_count" env:"SH2EPUB_RETRY_COUNT"`
	RetryWait         time.Duration `yaml:"retry_wait" env:"SH2EPUB_RETRY_WAIT"`
	Timeout           time.Duration `yaml:"timeout" env:"SH2EPUB_TIMEOUT"`

	CacheBackend string        `yaml:"cache_backend" env:"SH2EPUB_CACHE_BACKEND"`
	CacheDir     string        `yaml:"cache_dir" env:"SH2EPUB_CACHE_DIR"`
	CacheTTL     time.Duration `yaml:"cache_ttl" env:"SH2EPUB_CACHE_TTL"`
	MemcacheAddr string        `yaml:"memcache_addr" env:"SH2EPUB_MEMCACHE_ADDR"`
	RedisAddr    string        `yaml:"redis_addr" env:"SH2EPUB_REDIS_ADDR"`
	RedisDB      int           `yaml:"redis_db" env:"SH2EPUB_REDIS_DB"`

	Images           bool `yaml:"images" env:"SH2EPUB_IMAGES"`
	StraightenQuotes bool `yaml:"straighten_quotes" env:"SH2EPUB_STRAIGHTEN_QUOTES"`
	// Stylesheet is a CSS file that replaces the built-in one
	Stylesheet string `yaml:"stylesheet,omitempty" env:"SH2EPUB_STYLESHEET"`
}

func DefaultConfig() *Config {
	return &Config{
		OutputDir:         ".",
		BaseURL:           "https://www.scribblehub.com",
		LogLevel:          "info",
		UserAgent:         "node",
		RequestsPerMinute: 60,
		RetryCount:        5,
		RetryWait:         3 * time.Second,
		Timeout:           30 * time.Second,
		CacheBackend:      BackendSQLite,
		CacheDir:          defaultCacheDir(),
		CacheTTL:          7 * 24 * time.Hour,
		MemcacheAddr:      "localhost:11211",
		RedisAddr:         "localhost:6379",
		RedisDB:           0,
		Images:            true,
		StraightenQuotes:  true,
	}
}

func defaultCacheDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(".cache", appName)
	}
	return filepath.Join(dir, appName)
}

// DefaultPath returns the per-user config file location.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(dir, appName, "config.yaml")
}

// Load builds the effective configuration: defaults, then the YAML file at
// path (DefaultPath when empty; a missing file is not an error), then .env,
// then SH2EPUB_* environment variables. The returned string is the config
// file actually read, or "" when none was.
func Load(path string) (*Config, string, error) {
	if path == "" {
		path = DefaultPath()
	}

	cfg := DefaultConfig()
	used := path
	if err := loadYAML(path, cfg); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, "", apperrors.NewConfiguration(fmt.Sprintf("failed to load config %s", path), err)
		}
		used = ""
	}

	_ = godotenv.Load()
	if err := env.Parse(cfg); err != nil {
		return nil, "", apperrors.NewConfiguration("failed to parse environment", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return cfg, used, nil
}

func loadYAML(path string, cfg *Config) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(b, cfg)
}

// SaveYAML writes cfg to path, creating parent directories.
func SaveYAML(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	switch c.CacheBackend {
	case BackendSQLite, BackendMemcache, BackendRedis, BackendNone:
	default:
		return apperrors.NewConfiguration(fmt.Sprintf("unknown cache_backend %q", c.CacheBackend), nil)
	}

	if c.RequestsPerMinute < 1 {
		return apperrors.NewConfiguration("requests_per_minute must be at least 1", nil)
	}
	if c.RetryCount < 0 {
		return apperrors.NewConfiguration("retry_count cannot be negative", nil)
	}
	if c.CacheTTL < 0 {
		return apperrors.NewConfiguration("cache_ttl cannot be negative", nil)
	}
	if c.Timeout <= 0 {
		return apperrors.NewConfiguration("timeout must be positive", nil)
	}

	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return apperrors.NewConfiguration(fmt.Sprintf("invalid base_url %q", c.BaseURL), err)
	}

	if c.CacheBackend == BackendSQLite && c.CacheDir == "" {
		return apperrors.NewConfiguration("cache_dir is required for the sqlite backend", nil)
	}
	return nil
}

func (c *Config) Print(w io.Writer) {
	fmt.Fprintf(w, " -output_dir: %s\n", c.OutputDir)
	fmt.Fprintf(w, " -base_url: %s\n", c.BaseURL)
	fmt.Fprintf(w, " -log_level: %s\n", c.LogLevel)
	fmt.Fprintf(w, " -user_agent: %s\n", c.UserAgent)
	fmt.Fprintf(w, " -requests_per_minute: %d\n", c.RequestsPerMinute)
	fmt.Fprintf(w, " -retry_count: %d\n", c.RetryCount)
	fmt.Fprintf(w, " -retry_wait: %s\n", c.RetryWait)
	fmt.Fprintf(w, " -timeout: %s\n", c.Timeout)
	fmt.Fprintf(w, " -cache_backend: %s\n", c.CacheBackend)
	switch c.CacheBackend {
	case BackendSQLite:
		fmt.Fprintf(w, " -cache_dir: %s\n", c.CacheDir)
	case BackendMemcache:
		fmt.Fprintf(w, " -memcache_addr: %s\n", c.MemcacheAddr)
	case BackendRedis:
		fmt.Fprintf(w, " -redis_addr: %s\n", c.RedisAddr)
		fmt.Fprintf(w, " -redis_db: %d\n", c.RedisDB)
	}
	fmt.Fprintf(w, " -cache_ttl: %s\n", c.CacheTTL)
	fmt.Fprintf(w, " -images: %t\n", c.Images)
	fmt.Fprintf(w, " -straighten_quotes: %t\n", c.StraightenQuotes)
	if c.Stylesheet != "" {
		fmt.Fprintf(w, " -stylesheet: %s\n", c.Stylesheet)
	}
}

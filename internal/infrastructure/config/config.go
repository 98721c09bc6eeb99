package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App          AppConfig
	Log          LogConfig
	HTTP         HTTPConfig
	Redis        RedisConfig
	Cache        CacheConfig
	InventoryAPI InventoryAPIConfig
	Session      SessionConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	IdleTimeout      time.Duration
	MaxHeaderBytes   int
	RequestTimeout   time.Duration
	CORSAllowOrigins []string
	CORSAllowMethods []string
	CORSAllowHeaders []string
	TrustedProxies   []string
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// Addr returns the host:port address for the Redis client
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// CacheConfig holds summary cache settings
type CacheConfig struct {
	Backend    string // redis, memory
	SummaryTTL time.Duration
}

// InventoryAPIConfig holds settings for the upstream inventory-count service
type InventoryAPIConfig struct {
	BaseURL        string
	APIKey         string
	RequestTimeout time.Duration
	MaxRetries     int
}

// SessionConfig holds scan session lifecycle settings
type SessionConfig struct {
	IdleExpiration time.Duration // sessions untouched this long are evicted
	SweepInterval  time.Duration // how often the janitor scans for idle sessions
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with SCANGW_ prefix (e.g., SCANGW_INVENTORYAPI_APIKEY)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("SCANGW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:      v.GetDuration("http.read_timeout"),
			WriteTimeout:     v.GetDuration("http.write_timeout"),
			IdleTimeout:      v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes:   v.GetInt("http.max_header_bytes"),
			RequestTimeout:   v.GetDuration("http.request_timeout"),
			CORSAllowOrigins: v.GetStringSlice("http.cors_allow_origins"),
			CORSAllowMethods: v.GetStringSlice("http.cors_allow_methods"),
			CORSAllowHeaders: v.GetStringSlice("http.cors_allow_headers"),
			TrustedProxies:   v.GetStringSlice("http.trusted_proxies"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Cache: CacheConfig{
			Backend:    v.GetString("cache.backend"),
			SummaryTTL: v.GetDuration("cache.summary_ttl"),
		},
		InventoryAPI: InventoryAPIConfig{
			BaseURL:        v.GetString("inventoryapi.base_url"),
			APIKey:         v.GetString("inventoryapi.api_key"),
			RequestTimeout: v.GetDuration("inventoryapi.request_timeout"),
			MaxRetries:     v.GetInt("inventoryapi.max_retries"),
		},
		Session: SessionConfig{
			IdleExpiration: v.GetDuration("session.idle_expiration"),
			SweepInterval:  v.GetDuration("session.sweep_interval"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "scan-gateway"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 15 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.HTTP.RequestTimeout == 0 {
		cfg.HTTP.RequestTimeout = 30 * time.Second
	}
	// NOTE: CORS origins are intentionally not given a default fallback to "*".
	// An empty list means no cross-origin requests are allowed until explicitly configured.
	if len(cfg.HTTP.CORSAllowMethods) == 0 {
		cfg.HTTP.CORSAllowMethods = []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"}
	}
	if len(cfg.HTTP.CORSAllowHeaders) == 0 {
		cfg.HTTP.CORSAllowHeaders = []string{"Content-Type", "X-Request-ID", "X-Tenant-ID"}
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Cache.Backend == "" {
		cfg.Cache.Backend = "memory"
	}
	if cfg.Cache.SummaryTTL == 0 {
		cfg.Cache.SummaryTTL = 30 * time.Second
	}
	if cfg.InventoryAPI.BaseURL == "" {
		cfg.InventoryAPI.BaseURL = "http://localhost:9090"
	}
	if cfg.InventoryAPI.RequestTimeout == 0 {
		cfg.InventoryAPI.RequestTimeout = 10 * time.Second
	}
	if cfg.Session.IdleExpiration == 0 {
		cfg.Session.IdleExpiration = 2 * time.Hour
	}
	if cfg.Session.SweepInterval == 0 {
		cfg.Session.SweepInterval = 5 * time.Minute
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.Cache.Backend != "redis" && c.Cache.Backend != "memory" {
		return fmt.Errorf("cache.backend must be 'redis' or 'memory', got %q", c.Cache.Backend)
	}

	if _, err := url.Parse(c.InventoryAPI.BaseURL); err != nil {
		return fmt.Errorf("inventoryapi.base_url is not a valid URL: %w", err)
	}
	if c.InventoryAPI.MaxRetries < 0 {
		return fmt.Errorf("inventoryapi.max_retries cannot be negative")
	}

	if c.Session.SweepInterval > c.Session.IdleExpiration {
		return fmt.Errorf("session.sweep_interval (%s) cannot exceed session.idle_expiration (%s)",
			c.Session.SweepInterval, c.Session.IdleExpiration)
	}

	// Production-specific validations
	if c.App.Env == "production" {
		if c.InventoryAPI.APIKey == "" {
			return fmt.Errorf("inventoryapi.api_key is required in production")
		}
		if !strings.HasPrefix(c.InventoryAPI.BaseURL, "https://") {
			return fmt.Errorf("inventoryapi.base_url must use https in production")
		}
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
	}

	return nil
}

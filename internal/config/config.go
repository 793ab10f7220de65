package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

type Config struct {
	Client    ClientConfig    `mapstructure:"client"`
	Session   SessionConfig   `mapstructure:"session"`
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Seed      SeedConfig      `mapstructure:"seed"`
	Log       LogConfig       `mapstructure:"log"`
}

// ClientConfig drives the console's HTTP adapter and page controllers. Every
// field can be overridden with a CONSOLE_* environment variable.
type ClientConfig struct {
	BaseURL        string        `mapstructure:"base_url" split_words:"true"`
	Hostname       string        `mapstructure:"hostname" split_words:"true"`
	Tenant         string        `mapstructure:"tenant" split_words:"true"`
	Token          string        `mapstructure:"token" split_words:"true"`
	Timeout        time.Duration `mapstructure:"timeout" split_words:"true"`
	PageSize       int           `mapstructure:"page_size" split_words:"true"`
	SearchDebounce time.Duration `mapstructure:"search_debounce" split_words:"true"`
	FetchTimeout   time.Duration `mapstructure:"fetch_timeout" split_words:"true"`
	NavigateDelay  time.Duration `mapstructure:"navigate_delay" split_words:"true"`
	// BreakerFailures consecutive backend faults suspend calls for
	// BreakerCooldown. Zero turns the breaker off.
	BreakerFailures int           `mapstructure:"breaker_failures" split_words:"true"`
	BreakerCooldown time.Duration `mapstructure:"breaker_cooldown" split_words:"true"`
}

type SessionConfig struct {
	Backend   string        `mapstructure:"backend"`
	Path      string        `mapstructure:"path"`
	RedisURL  string        `mapstructure:"redis_url"`
	KeyPrefix string        `mapstructure:"key_prefix"`
	TTL       time.Duration `mapstructure:"ttl"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

type JWTConfig struct {
	Secret      string `mapstructure:"secret"`
	ExpiryHours int    `mapstructure:"expiry_hours"`
}

type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

type SeedConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	Tenant        string `mapstructure:"tenant"`
	Count         int    `mapstructure:"count"`
	Random        uint64 `mapstructure:"random"`
	AdminEmail    string `mapstructure:"admin_email"`
	AdminPassword string `mapstructure:"admin_password"`
}

type LogConfig struct {
	Level   string `mapstructure:"level"`
	Console bool   `mapstructure:"console"`
}

const (
	SessionBackendFile  = "file"
	SessionBackendRedis = "redis"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("client.base_url", "http://localhost:8080")
	v.SetDefault("client.hostname", "demo.localhost")
	v.SetDefault("client.timeout", 30*time.Second)
	v.SetDefault("client.page_size", 10)
	v.SetDefault("client.search_debounce", 500*time.Millisecond)
	v.SetDefault("client.fetch_timeout", 15*time.Second)
	v.SetDefault("client.navigate_delay", time.Second)
	v.SetDefault("client.breaker_failures", 5)
	v.SetDefault("client.breaker_cooldown", 30*time.Second)

	v.SetDefault("session.backend", SessionBackendFile)
	v.SetDefault("session.key_prefix", "admin-console:session:")
	v.SetDefault("session.ttl", 24*time.Hour)

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.shutdown_timeout", 5*time.Second)

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "file:admin-console?mode=memory&cache=shared")

	v.SetDefault("jwt.expiry_hours", 24)

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests_per_second", 50.0)
	v.SetDefault("rate_limit.burst", 100)

	v.SetDefault("seed.enabled", true)
	v.SetDefault("seed.tenant", "demo")
	v.SetDefault("seed.count", 25)
	v.SetDefault("seed.random", 42)
	v.SetDefault("seed.admin_email", "admin@example.com")
	v.SetDefault("seed.admin_password", "admin123")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.console", true)
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	v := viper.New()
	setDefaults(v)

	var cfg Config
	// Defaults always decode.
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// LoadConfig reads config.yml from the usual locations (or path when given),
// then applies CONSOLE_* environment overrides. A missing file is not an error.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix("console")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := envconfig.Process("console", &config.Client); err != nil {
		return nil, fmt.Errorf("failed to apply client environment: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate rejects values the console cannot work with.
func (c *Config) Validate() error {
	if c.Client.BaseURL == "" {
		return fmt.Errorf("client.base_url is required")
	}
	if c.Client.PageSize <= 0 {
		return fmt.Errorf("client.page_size must be greater than 0")
	}
	if c.Client.SearchDebounce < 0 {
		return fmt.Errorf("client.search_debounce must not be negative")
	}
	switch c.Session.Backend {
	case SessionBackendFile:
	case SessionBackendRedis:
		if c.Session.RedisURL == "" {
			return fmt.Errorf("session.redis_url is required for the redis backend")
		}
	default:
		return fmt.Errorf("unknown session backend %q", c.Session.Backend)
	}
	return nil
}

// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type HTTPConfig struct {
	Port        int    `yaml:"port"`
	AdminSecret string `yaml:"admin_secret"` // HS256 secret for the ops endpoints
}

type DatabaseConfig struct {
	URL      string `yaml:"url"`
	MaxConns int    `yaml:"max_conns"`
}

type RedisConfig struct {
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	OrderTTL time.Duration `yaml:"order_ttl"` // pending-order retention while the PIN prompt is open
}

// GatewayConfig covers the hosted-checkout/status endpoint for top-ups.
type GatewayConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
}

// RemoteConfig points at the account/order/pin backend services.
type RemoteConfig struct {
	AccountBaseURL string `yaml:"account_base_url"`
	OrderBaseURL   string `yaml:"order_base_url"`
	PinBaseURL     string `yaml:"pin_base_url"`
	APIKey         string `yaml:"api_key"`
}

type PollerConfig struct {
	Interval    time.Duration `yaml:"interval"`     // between status checks
	MaxAttempts int           `yaml:"max_attempts"` // automatic ticks before giving up
}

type ReconcilerConfig struct {
	Interval   time.Duration `yaml:"interval"`    // how often to scan the journal
	StaleAfter time.Duration `yaml:"stale_after"` // how old an unresolved row must be to re-check
	Workers    int           `yaml:"workers"`
}

type Config struct {
	Log        LogConfig        `yaml:"log"`
	HTTP       HTTPConfig       `yaml:"http"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Gateway    GatewayConfig    `yaml:"gateway"`
	Remote     RemoteConfig     `yaml:"remote"`
	Poller     PollerConfig     `yaml:"poller"`
	Reconciler ReconcilerConfig `yaml:"reconciler"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(configPath string, dev bool) (*Config, error) {
	b, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// defaults
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.HTTP.Port <= 0 {
		cfg.HTTP.Port = 8080
	}
	if cfg.Database.MaxConns <= 0 {
		cfg.Database.MaxConns = 10
	}
	if cfg.Redis.OrderTTL <= 0 {
		cfg.Redis.OrderTTL = 15 * time.Minute
	}
	if cfg.Poller.Interval <= 0 {
		cfg.Poller.Interval = 3 * time.Second
	}
	if cfg.Poller.MaxAttempts <= 0 {
		cfg.Poller.MaxAttempts = 40
	}
	if cfg.Reconciler.Interval <= 0 {
		cfg.Reconciler.Interval = time.Minute
	}
	if cfg.Reconciler.StaleAfter <= 0 {
		cfg.Reconciler.StaleAfter = 10 * time.Minute
	}
	if cfg.Reconciler.Workers <= 0 {
		cfg.Reconciler.Workers = 4
	}

	// Minimal validation
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	if cfg.Redis.URL == "" {
		return nil, errors.New("redis.url is required")
	}
	if cfg.Gateway.BaseURL == "" {
		return nil, errors.New("gateway.base_url is required")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}

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

type ServerConfig struct {
	Port int `yaml:"port"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type DatabaseConfig struct {
	URL      string `yaml:"url"`
	MaxConns int    `yaml:"max_conns"`
}

type RedisConfig struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type PaymentConfig struct {
	Razorpay struct {
		KeyID     string `yaml:"key_id"`
		KeySecret string `yaml:"key_secret"`
	} `yaml:"razorpay"`
	RateLimit       int           `yaml:"rate_limit"` // verify calls per user per window
	RateLimitWindow time.Duration `yaml:"rate_limit_window"`
}

type SchedulerConfig struct {
	// FireAt lists wall-clock "HH:MM" points (daily sweep plus a few checks
	// during business hours).
	FireAt       []string      `yaml:"fire_at"`
	PollInterval time.Duration `yaml:"poll_interval"`
}

type AdminConfig struct {
	APIKey        string        `yaml:"api_key"`
	SessionSecret string        `yaml:"session_secret"`
	SessionTTL    time.Duration `yaml:"session_ttl"`
}

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Payment   PaymentConfig   `yaml:"payment"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Admin     AdminConfig     `yaml:"admin"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	// defaults
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Database.MaxConns <= 0 {
		cfg.Database.MaxConns = 10
	}
	if len(cfg.Scheduler.FireAt) == 0 {
		cfg.Scheduler.FireAt = []string{"00:05", "10:00", "14:00", "18:00"}
	}
	if cfg.Scheduler.PollInterval <= 0 {
		cfg.Scheduler.PollInterval = time.Minute
	}
	if cfg.Payment.RateLimit <= 0 {
		cfg.Payment.RateLimit = 10
	}
	if cfg.Payment.RateLimitWindow <= 0 {
		cfg.Payment.RateLimitWindow = time.Minute
	}
	if cfg.Admin.SessionTTL <= 0 {
		cfg.Admin.SessionTTL = 30 * time.Minute
	}

	// Minimal validation
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	if !dev && cfg.Payment.Razorpay.KeySecret == "" {
		return nil, errors.New("payment.razorpay.key_secret is required")
	}
	if cfg.Admin.SessionSecret == "" {
		return nil, errors.New("admin.session_secret is required")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}

package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/ignite/dealthread-monitor/internal/lifecycle"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	CRM      CRMConfig      `yaml:"crm"`
	Postgres PostgresConfig `yaml:"postgres"`
	Redis    RedisConfig    `yaml:"redis"`
	Notify   NotifyConfig   `yaml:"notify"`
	Polling  PollingConfig  `yaml:"polling"`
	Throttle ThrottleConfig `yaml:"throttle"`
	Velocity VelocityConfig `yaml:"velocity"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port int    `yaml:"port"`
	Host string `yaml:"host"`
}

// GetHost returns the server host, with ECS detection
func (c ServerConfig) GetHost() string {
	// On ECS/container, listen on all interfaces
	if os.Getenv("ECS_CONTAINER_METADATA_URI") != "" || os.Getenv("AWS_EXECUTION_ENV") != "" {
		return "0.0.0.0"
	}
	// Allow override via environment
	if host := os.Getenv("SERVER_HOST"); host != "" {
		return host
	}
	return c.Host
}

// CRMConfig holds CRM API configuration
type CRMConfig struct {
	APIKey         string   `yaml:"api_key"`
	BaseURL        string   `yaml:"base_url"`
	TimeoutSeconds int      `yaml:"timeout_seconds"`
	PipelineStages []string `yaml:"pipeline_stages"` // Deal stages to monitor; empty = all open stages
	DealIDs        []string `yaml:"deal_ids"`        // Explicit watchlist; empty = discover by stage
	PageSize       int      `yaml:"page_size"`
}

// Timeout returns the configured timeout as a duration
func (c CRMConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// PostgresConfig holds snapshot database configuration
type PostgresConfig struct {
	URL     string `yaml:"url"`
	Enabled bool   `yaml:"enabled"`
}

// RedisConfig holds Redis configuration for the distributed alert throttle
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Enabled  bool   `yaml:"enabled"`
}

// NotifyConfig holds alert delivery configuration
type NotifyConfig struct {
	WebhookURL     string   `yaml:"webhook_url"`
	EmailEnabled   bool     `yaml:"email_enabled"`
	EmailFrom      string   `yaml:"email_from"`
	EmailTo        []string `yaml:"email_to"`
	AWSRegion      string   `yaml:"aws_region"`
	TimeoutSeconds int      `yaml:"timeout_seconds"`
}

// Timeout returns the configured timeout as a duration
func (c NotifyConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// PollingConfig holds monitor loop configuration
type PollingConfig struct {
	IntervalSeconds int `yaml:"interval_seconds"`
	MaxConcurrent   int `yaml:"max_concurrent"`
	HistoryDays     int `yaml:"history_days"`
}

// Interval returns the polling interval as a duration
func (c PollingConfig) Interval() time.Duration {
	return time.Duration(c.IntervalSeconds) * time.Second
}

// ThrottleConfig holds per-alert-type cool-down overrides, in minutes.
// Types left out keep their built-in cool-down.
type ThrottleConfig struct {
	CooldownMinutes map[string]int `yaml:"cooldown_minutes"`
}

// Overrides converts the configured minutes into the throttle's override map,
// dropping unknown alert types.
func (c ThrottleConfig) Overrides() map[lifecycle.AlertType]time.Duration {
	if len(c.CooldownMinutes) == 0 {
		return nil
	}
	known := make(map[lifecycle.AlertType]bool)
	for _, t := range lifecycle.AllAlertTypes() {
		known[t] = true
	}
	overrides := make(map[lifecycle.AlertType]time.Duration)
	for name, mins := range c.CooldownMinutes {
		t := lifecycle.AlertType(name)
		if known[t] && mins > 0 {
			overrides[t] = time.Duration(mins) * time.Minute
		}
	}
	return overrides
}

// VelocityConfig holds per-stage velocity benchmark overrides, in days.
type VelocityConfig struct {
	Stages map[string]StageVelocity `yaml:"stages"`
}

// StageVelocity is one stage's expected/max days-in-stage pair.
type StageVelocity struct {
	ExpectedDays int `yaml:"expected_days"`
	MaxDays      int `yaml:"max_days"`
}

// Load reads and parses the configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	// Set defaults
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.CRM.BaseURL == "" {
		cfg.CRM.BaseURL = "https://api.hubapi.com"
	}
	if cfg.CRM.TimeoutSeconds == 0 {
		cfg.CRM.TimeoutSeconds = 30
	}
	if cfg.CRM.PageSize == 0 {
		cfg.CRM.PageSize = 100
	}
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = "localhost:6379"
	}
	if cfg.Notify.TimeoutSeconds == 0 {
		cfg.Notify.TimeoutSeconds = 15
	}
	if cfg.Notify.AWSRegion == "" {
		cfg.Notify.AWSRegion = "us-west-2"
	}
	if cfg.Polling.IntervalSeconds == 0 {
		cfg.Polling.IntervalSeconds = 900
	}
	if cfg.Polling.MaxConcurrent == 0 {
		cfg.Polling.MaxConcurrent = 4
	}
	if cfg.Polling.HistoryDays == 0 {
		cfg.Polling.HistoryDays = 90
	}

	return &cfg, nil
}

// LoadFromEnv loads configuration with environment variable overrides.
// It automatically loads a .env file (if present) before reading env vars,
// so secrets can live in .env locally and in real env vars on ECS.
func LoadFromEnv(path string) (*Config, error) {
	// Load .env file if it exists (no error if missing)
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	// Override with environment variables if present
	if apiKey := os.Getenv("CRM_API_KEY"); apiKey != "" {
		cfg.CRM.APIKey = apiKey
	}
	if baseURL := os.Getenv("CRM_BASE_URL"); baseURL != "" {
		cfg.CRM.BaseURL = baseURL
	}
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		cfg.Postgres.URL = dbURL
		if !cfg.Postgres.Enabled {
			cfg.Postgres.Enabled = true
		}
	}
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.Redis.Addr = addr
		if !cfg.Redis.Enabled {
			cfg.Redis.Enabled = true
		}
	}
	if pass := os.Getenv("REDIS_PASSWORD"); pass != "" {
		cfg.Redis.Password = pass
	}
	if url := os.Getenv("NOTIFY_WEBHOOK_URL"); url != "" {
		cfg.Notify.WebhookURL = url
	}
	if from := os.Getenv("NOTIFY_EMAIL_FROM"); from != "" {
		cfg.Notify.EmailFrom = from
	}
	if region := os.Getenv("AWS_SES_REGION"); region != "" {
		cfg.Notify.AWSRegion = region
	}

	return cfg, nil
}

// Package config provides configuration management for the claim service.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Default configuration values.
const (
	defaultServerPort        = 8070
	defaultReadTimeout       = 30 * time.Second
	defaultWriteTimeout      = 30 * time.Second
	defaultIdleTimeout       = 60 * time.Second
	defaultFetchTimeout      = 15 * time.Second
	defaultFetchMaxBodyBytes = 2 * 1024 * 1024
	defaultUserAgent         = "CertifiedSlidersBot/1.0 (+https://certifiedsliders.com)"
	defaultDBHost            = "localhost"
	defaultDBPort            = 5432
	defaultDBUser            = "postgres"
	defaultDBName            = "resultclaims"
	defaultDBSSLMode         = "disable"
	defaultRedisAddr         = "localhost:6379"
	defaultTokenTTL          = 2 * time.Minute
	defaultAcceptThreshold   = 0.7
	defaultLogLevel          = "info"
)

// Config is the unified service configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Fetcher  FetcherConfig  `mapstructure:"fetcher"`
	Review   ReviewConfig   `mapstructure:"review"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Address      string        `mapstructure:"address"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// ListenAddr returns the host:port the server binds to.
func (c ServerConfig) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Address, c.Port)
}

// DatabaseConfig holds PostgreSQL settings.
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
	SSLMode  string `mapstructure:"sslmode"`
}

// RedisConfig holds the session store connection settings.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// FetcherConfig bounds the safe page fetcher.
type FetcherConfig struct {
	Timeout      time.Duration `mapstructure:"timeout"`
	MaxBodyBytes int64         `mapstructure:"max_body_bytes"`
	UserAgent    string        `mapstructure:"user_agent"`
	// AllowedHosts lists host suffixes the fetcher may contact.
	AllowedHosts []string `mapstructure:"allowed_hosts"`
}

// ReviewConfig holds review policy knobs.
type ReviewConfig struct {
	// AcceptThreshold is the minimum parse confidence for automatic
	// acceptance; below it a nominally successful claim lands in
	// needs_review.
	AcceptThreshold float64 `mapstructure:"accept_threshold"`
	// ContextMatchPenalty is subtracted from confidence when the
	// cross-reference only matched on the optional context page.
	ContextMatchPenalty float64 `mapstructure:"context_match_penalty"`
	// TokenTTL bounds how long a minted claim token stays valid.
	TokenTTL time.Duration `mapstructure:"token_ttl"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// Load builds the configuration from viper's merged sources (config file,
// environment, defaults).
func Load() (*Config, error) {
	setDefaults()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("server.address", "")
	viper.SetDefault("server.port", defaultServerPort)
	viper.SetDefault("server.read_timeout", defaultReadTimeout)
	viper.SetDefault("server.write_timeout", defaultWriteTimeout)
	viper.SetDefault("server.idle_timeout", defaultIdleTimeout)

	viper.SetDefault("database.host", defaultDBHost)
	viper.SetDefault("database.port", defaultDBPort)
	viper.SetDefault("database.user", defaultDBUser)
	viper.SetDefault("database.database", defaultDBName)
	viper.SetDefault("database.sslmode", defaultDBSSLMode)

	viper.SetDefault("redis.addr", defaultRedisAddr)
	viper.SetDefault("redis.db", 0)

	viper.SetDefault("fetcher.timeout", defaultFetchTimeout)
	viper.SetDefault("fetcher.max_body_bytes", defaultFetchMaxBodyBytes)
	viper.SetDefault("fetcher.user_agent", defaultUserAgent)
	viper.SetDefault("fetcher.allowed_hosts", []string{"athletic.net", "milesplit.com"})

	viper.SetDefault("review.accept_threshold", defaultAcceptThreshold)
	viper.SetDefault("review.context_match_penalty", 0.0)
	viper.SetDefault("review.token_ttl", defaultTokenTTL)

	viper.SetDefault("logging.level", defaultLogLevel)
	viper.SetDefault("logging.development", false)
}

// Validate checks the configuration for values the service cannot run with.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Database.Host == "" {
		return errors.New("database host must be specified")
	}

	if c.Fetcher.Timeout <= 0 {
		return errors.New("fetcher timeout must be positive")
	}

	if c.Fetcher.MaxBodyBytes <= 0 {
		return errors.New("fetcher max body bytes must be positive")
	}

	if len(c.Fetcher.AllowedHosts) == 0 {
		return errors.New("fetcher allowed hosts must not be empty")
	}

	if c.Review.AcceptThreshold < 0 || c.Review.AcceptThreshold > 1 {
		return fmt.Errorf("review accept threshold out of range: %f", c.Review.AcceptThreshold)
	}

	if c.Review.TokenTTL <= 0 {
		return errors.New("review token ttl must be positive")
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error", "fatal":
	default:
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	return nil
}

// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"

	identityservice "credential-lifecycle/internal/identity/service"
	"credential-lifecycle/internal/security"
)

// EnvProduction is the APP_ENV value that enables the production checks.
const EnvProduction = "production"

// Config holds application configuration loaded from the environment.
type Config struct {
	// GRPCAddr is the address the gRPC server listens on (e.g. :8080).
	GRPCAddr string `mapstructure:"GRPC_ADDR"`
	// DatabaseURL is the Postgres DSN. Empty selects in-memory repositories (development only).
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// Env is the application environment (e.g. "development", "production").
	Env string `mapstructure:"APP_ENV"`
	// LogLevel is debug, info, warn or error.
	LogLevel string `mapstructure:"LOG_LEVEL"`

	// JWTSecret is the HS256 signing key, inline or a path to a file holding it.
	JWTSecret string `mapstructure:"JWT_SECRET"`
	// JWTAccessTTL is the access token lifetime.
	JWTAccessTTL time.Duration `mapstructure:"JWT_ACCESS_TTL"`
	// JWTRefreshTTL is the refresh secret lifetime; never longer than the session.
	JWTRefreshTTL time.Duration `mapstructure:"JWT_REFRESH_TTL"`
	// SessionLifetime is the absolute session lifetime; activity does not extend it.
	SessionLifetime time.Duration `mapstructure:"SESSION_LIFETIME"`
	// RefreshGraceWindow lets the previous refresh secret be retried once within the window. 0 disables it.
	RefreshGraceWindow time.Duration `mapstructure:"REFRESH_GRACE_WINDOW"`
	// BcryptCost is the bcrypt cost factor (4–31); default 12.
	BcryptCost int `mapstructure:"BCRYPT_COST"`
	// HashConcurrency caps simultaneous bcrypt operations; 0 means the number of CPUs.
	HashConcurrency int `mapstructure:"HASH_CONCURRENCY"`
	// LockoutThreshold is the number of failed logins that locks an account.
	LockoutThreshold int `mapstructure:"LOCKOUT_THRESHOLD"`
	// LockoutWindow is how long a lock lasts.
	LockoutWindow time.Duration `mapstructure:"LOCKOUT_WINDOW"`

	// OTLPEndpoint is the OpenTelemetry collector; empty disables export.
	OTLPEndpoint string `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	// OTLPInsecure forces plaintext to the collector.
	OTLPInsecure bool `mapstructure:"OTEL_EXPORTER_OTLP_INSECURE"`
	// ServiceName is the OTel service.name and the logger's service field.
	ServiceName string `mapstructure:"OTEL_SERVICE_NAME"`
}

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Missing .env is ignored (e.g. in CI). Env vars override .env. Returns an error if required fields are invalid.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("GRPC_ADDR", ":8080")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("APP_ENV", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_ACCESS_TTL", "10m")
	v.SetDefault("JWT_REFRESH_TTL", "720h") // 30d
	v.SetDefault("SESSION_LIFETIME", "8h")
	v.SetDefault("REFRESH_GRACE_WINDOW", "0s")
	v.SetDefault("BCRYPT_COST", 12)
	v.SetDefault("HASH_CONCURRENCY", 0)
	v.SetDefault("LOCKOUT_THRESHOLD", 4)
	v.SetDefault("LOCKOUT_WINDOW", "15m")
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	v.SetDefault("OTEL_EXPORTER_OTLP_INSECURE", false)
	v.SetDefault("OTEL_SERVICE_NAME", "credential-lifecycle")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.GRPCAddr == "" {
		return errors.New("config: GRPC_ADDR must be set")
	}
	if c.BcryptCost == 0 {
		c.BcryptCost = 12
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return errors.New("config: BCRYPT_COST must be between 4 and 31")
	}
	if c.HashConcurrency < 0 {
		return errors.New("config: HASH_CONCURRENCY must not be negative")
	}
	if c.LockoutThreshold < 1 {
		return errors.New("config: LOCKOUT_THRESHOLD must be at least 1")
	}
	for _, d := range []struct {
		name string
		val  time.Duration
	}{
		{"JWT_ACCESS_TTL", c.JWTAccessTTL},
		{"JWT_REFRESH_TTL", c.JWTRefreshTTL},
		{"SESSION_LIFETIME", c.SessionLifetime},
		{"LOCKOUT_WINDOW", c.LockoutWindow},
	} {
		if d.val <= 0 {
			return fmt.Errorf("config: %s must be positive", d.name)
		}
	}
	if c.RefreshGraceWindow < 0 {
		return errors.New("config: REFRESH_GRACE_WINDOW must not be negative")
	}
	if c.IsProduction() {
		if c.DatabaseURL == "" {
			return errors.New("config: DATABASE_URL must be set when APP_ENV=production")
		}
		if c.JWTSecret == "" {
			return errors.New("config: JWT_SECRET must be set when APP_ENV=production")
		}
	}
	return nil
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// SigningKey loads JWT_SECRET. It returns (nil, nil) when the secret is unset outside
// production; callers then use an ephemeral key.
func (c *Config) SigningKey() ([]byte, error) {
	if c.JWTSecret == "" && !c.IsProduction() {
		return nil, nil
	}
	key, err := security.LoadKey(c.JWTSecret)
	if err != nil {
		return nil, fmt.Errorf("config: JWT_SECRET: %w", err)
	}
	if len(key) < security.MinKeyLength {
		return nil, fmt.Errorf("config: JWT_SECRET must be at least %d bytes", security.MinKeyLength)
	}
	return key, nil
}

// AuthSettings returns the authenticator settings. The clock is left to the default.
func (c *Config) AuthSettings() identityservice.Settings {
	return identityservice.Settings{
		AccessTTL:          c.JWTAccessTTL,
		RefreshTTL:         c.JWTRefreshTTL,
		SessionLifetime:    c.SessionLifetime,
		RefreshGraceWindow: c.RefreshGraceWindow,
		BcryptCost:         c.BcryptCost,
		HashConcurrency:    c.HashConcurrency,
		LockoutThreshold:   c.LockoutThreshold,
		LockoutWindow:      c.LockoutWindow,
	}
}

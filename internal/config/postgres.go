package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/trongtien/page-builder-cms-sub000/pkg/config"
)

// PostgresConfig holds the relational store connection parameters.
type PostgresConfig struct {
	Host           string        `mapstructure:"host"`
	Port           int           `mapstructure:"port"`
	Database       string        `mapstructure:"database"`
	User           string        `mapstructure:"user"`
	Password       string        `mapstructure:"password"`
	SSLMode        string        `mapstructure:"sslmode"`
	PoolMin        int32         `mapstructure:"poolmin"`
	PoolMax        int32         `mapstructure:"poolmax"`
	IdleTimeout    time.Duration `mapstructure:"idletimeout"`
	AcquireTimeout time.Duration `mapstructure:"acquiretimeout"`
	MigrationsPath string        `mapstructure:"migrationspath"`
}

// PostgresOption overrides one field of a PostgresConfig.
type PostgresOption func(*PostgresConfig)

// WithPostgresHost overrides the host.
func WithPostgresHost(host string) PostgresOption {
	return func(c *PostgresConfig) { c.Host = host }
}

// WithPostgresPort overrides the port.
func WithPostgresPort(port int) PostgresOption {
	return func(c *PostgresConfig) { c.Port = port }
}

// WithPostgresDatabase overrides the database name.
func WithPostgresDatabase(name string) PostgresOption {
	return func(c *PostgresConfig) { c.Database = name }
}

// WithPostgresCredentials overrides user and password.
func WithPostgresCredentials(user, password string) PostgresOption {
	return func(c *PostgresConfig) { c.User = user; c.Password = password }
}

// WithPostgresPool overrides the pool bounds.
func WithPostgresPool(min, max int32) PostgresOption {
	return func(c *PostgresConfig) { c.PoolMin = min; c.PoolMax = max }
}

// WithMigrationsPath overrides the migrations directory.
func WithMigrationsPath(path string) PostgresOption {
	return func(c *PostgresConfig) { c.MigrationsPath = path }
}

func defaultPostgres() PostgresConfig {
	return PostgresConfig{
		Host:           "localhost",
		Port:           5432,
		Database:       "cms",
		User:           "postgres",
		SSLMode:        "disable",
		PoolMin:        2,
		PoolMax:        10,
		IdleTimeout:    5 * time.Minute,
		AcquireTimeout: 30 * time.Second,
	}
}

// LoadPostgres builds a validated PostgresConfig by layering CMS_DB_*
// environment variables over defaults and applying overrides last.
func LoadPostgres(opts ...PostgresOption) (PostgresConfig, error) {
	cfg := defaultPostgres()
	var env struct {
		DB PostgresConfig `mapstructure:"db"`
	}
	env.DB = cfg
	if err := config.Load("CMS_", &env); err != nil {
		return PostgresConfig{}, err
	}
	cfg = env.DB
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.Validate(); err != nil {
		return PostgresConfig{}, err
	}
	return cfg, nil
}

// Validate checks the configuration bounds.
func (c PostgresConfig) Validate() error {
	if c.Host == "" {
		return invalid("db.host", "must not be empty")
	}
	if c.Port < 1 || c.Port > 65535 {
		return invalid("db.port", "must be in range 1-65535")
	}
	if c.Database == "" {
		return invalid("db.database", "must not be empty")
	}
	if c.PoolMin < 0 {
		return invalid("db.poolmin", "must not be negative")
	}
	if c.PoolMax < 1 {
		return invalid("db.poolmax", "must be at least 1")
	}
	if c.PoolMin > c.PoolMax {
		return invalid("db.poolmin", "must not exceed db.poolmax")
	}
	return nil
}

// DSN returns the connection string. The password is URL-encoded to
// handle special characters (/, +, =, etc.).
func (c PostgresConfig) DSN() string {
	encodedPassword := url.QueryEscape(c.Password)
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, encodedPassword, c.Host, c.Port, c.Database, c.SSLMode)
}

// Redacted returns a loggable target description without the password.
func (c PostgresConfig) Redacted() string {
	return fmt.Sprintf("postgres://%s:***@%s:%d/%s", c.User, c.Host, c.Port, c.Database)
}

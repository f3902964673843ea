package config

import (
	"fmt"

	"github.com/trongtien/page-builder-cms-sub000/pkg/config"
)

// RedisConfig holds the key-value store connection parameters.
type RedisConfig struct {
	Host      string `mapstructure:"host"`
	Port      int    `mapstructure:"port"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	TLS       bool   `mapstructure:"tls"`
	KeyPrefix string `mapstructure:"keyprefix"`
}

// RedisOption overrides one field of a RedisConfig.
type RedisOption func(*RedisConfig)

// WithRedisHost overrides the host.
func WithRedisHost(host string) RedisOption {
	return func(c *RedisConfig) { c.Host = host }
}

// WithRedisPort overrides the port.
func WithRedisPort(port int) RedisOption {
	return func(c *RedisConfig) { c.Port = port }
}

// WithRedisPassword overrides the password.
func WithRedisPassword(password string) RedisOption {
	return func(c *RedisConfig) { c.Password = password }
}

// WithRedisDB overrides the database index.
func WithRedisDB(db int) RedisOption {
	return func(c *RedisConfig) { c.DB = db }
}

// WithRedisKeyPrefix overrides the key prefix.
func WithRedisKeyPrefix(prefix string) RedisOption {
	return func(c *RedisConfig) { c.KeyPrefix = prefix }
}

func defaultRedis() RedisConfig {
	return RedisConfig{
		Host: "localhost",
		Port: 6379,
	}
}

// LoadRedis builds a validated RedisConfig by layering CMS_REDIS_*
// environment variables over defaults and applying overrides last.
func LoadRedis(opts ...RedisOption) (RedisConfig, error) {
	cfg := defaultRedis()
	var env struct {
		Redis RedisConfig `mapstructure:"redis"`
	}
	env.Redis = cfg
	if err := config.Load("CMS_", &env); err != nil {
		return RedisConfig{}, err
	}
	cfg = env.Redis
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.Validate(); err != nil {
		return RedisConfig{}, err
	}
	return cfg, nil
}

// Validate checks the configuration bounds.
func (c RedisConfig) Validate() error {
	if c.Host == "" {
		return invalid("redis.host", "must not be empty")
	}
	if c.Port < 1 || c.Port > 65535 {
		return invalid("redis.port", "must be in range 1-65535")
	}
	if c.DB < 0 || c.DB > 15 {
		return invalid("redis.db", "must be in range 0-15")
	}
	return nil
}

// Addr returns the host:port dial target.
func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Redacted returns a loggable target description without the password.
func (c RedisConfig) Redacted() string {
	return fmt.Sprintf("redis://%s:%d/%d", c.Host, c.Port, c.DB)
}

// Package kv wraps the Redis connection for the persistence layer: scalar
// convenience operations, pipelined and atomic batch execution, and a
// liveness probe.
package kv

import (
	"context"
	"crypto/tls"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/trongtien/page-builder-cms-sub000/internal/config"
	"github.com/trongtien/page-builder-cms-sub000/pkg/logger"
)

const probeTimeout = 5 * time.Second

// Client owns the pooled Redis connection. Constructed once by the
// composition root; consumers receive it by reference.
type Client struct {
	cfg config.RedisConfig
	log *logger.DB

	mu        sync.Mutex
	rdb       *redis.Client
	connected atomic.Bool
}

// NewClient creates a disconnected client for the given configuration.
func NewClient(cfg config.RedisConfig, log *logger.DB) *Client {
	return &Client{cfg: cfg, log: log}
}

// Connect opens the connection, wires the event hooks and verifies the
// target with a PING before returning. A probe failure closes the client
// and returns a *ConnectionError naming the redacted target.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.rdb != nil && c.connected.Load() {
		return nil
	}

	opts := &redis.Options{
		Addr:     c.cfg.Addr(),
		Password: c.cfg.Password,
		DB:       c.cfg.DB,
		OnConnect: func(ctx context.Context, cn *redis.Conn) error {
			wasConnected := c.connected.Swap(true)
			event := "connected"
			if wasConnected {
				event = "reconnected"
			}
			c.log.Connection(event, "target", c.cfg.Redacted())
			return nil
		},
	}
	if c.cfg.TLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	rdb := redis.NewClient(opts)
	rdb.AddHook(&eventHook{client: c})

	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()
	if err := rdb.Ping(probeCtx).Err(); err != nil {
		_ = rdb.Close()
		c.connected.Store(false)
		c.log.Error("redis connect failed", "target", c.cfg.Redacted(), "error", err.Error())
		return &ConnectionError{Target: c.cfg.Redacted(), Err: err}
	}

	c.rdb = rdb
	c.connected.Store(true)
	return nil
}

// Disconnect closes the connection. Idempotent; repeated calls never fail.
func (c *Client) Disconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.rdb == nil {
		return nil
	}
	err := c.rdb.Close()
	c.rdb = nil
	c.connected.Store(false)
	c.log.Connection("closed", "target", c.cfg.Redacted())
	if err != nil {
		c.log.Error("redis close failed", "error", err.Error())
	}
	return nil
}

// IsConnected reports the connection flag maintained by the event hooks.
func (c *Client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rdb != nil && c.connected.Load()
}

// Redis returns the underlying client, or ErrNotInitialized before Connect.
func (c *Client) Redis() (*redis.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.rdb == nil {
		return nil, ErrNotInitialized
	}
	return c.rdb, nil
}

// Key applies the configured key prefix.
func (c *Client) Key(k string) string {
	return c.cfg.KeyPrefix + k
}

// Get returns the value for key, or nil when the key is not set.
func (c *Client) Get(ctx context.Context, key string) ([]byte, error) {
	rdb, err := c.Redis()
	if err != nil {
		return nil, err
	}
	val, err := rdb.Get(ctx, c.Key(key)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		c.log.Error("redis get failed", "key", key, "error", err.Error())
		return nil, err
	}
	return val, nil
}

// Set stores value under key. A positive ttl makes it an atomic
// set-with-expiry; zero means no expiration.
func (c *Client) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	rdb, err := c.Redis()
	if err != nil {
		return err
	}
	if err := rdb.Set(ctx, c.Key(key), value, ttl).Err(); err != nil {
		c.log.Error("redis set failed", "key", key, "error", err.Error())
		return err
	}
	return nil
}

// Del removes key, reporting whether it was present.
func (c *Client) Del(ctx context.Context, key string) (bool, error) {
	rdb, err := c.Redis()
	if err != nil {
		return false, err
	}
	n, err := rdb.Del(ctx, c.Key(key)).Result()
	if err != nil {
		c.log.Error("redis del failed", "key", key, "error", err.Error())
		return false, err
	}
	return n > 0, nil
}

// Exists reports whether key exists.
func (c *Client) Exists(ctx context.Context, key string) (bool, error) {
	rdb, err := c.Redis()
	if err != nil {
		return false, err
	}
	n, err := rdb.Exists(ctx, c.Key(key)).Result()
	if err != nil {
		c.log.Error("redis exists failed", "key", key, "error", err.Error())
		return false, err
	}
	return n > 0, nil
}

// Pipeline returns a batch command buffer, or ErrNotInitialized before
// Connect.
func (c *Client) Pipeline() (redis.Pipeliner, error) {
	rdb, err := c.Redis()
	if err != nil {
		return nil, err
	}
	return rdb.Pipeline(), nil
}

// Ping issues the liveness probe.
func (c *Client) Ping(ctx context.Context) error {
	rdb, err := c.Redis()
	if err != nil {
		return err
	}
	return rdb.Ping(ctx).Err()
}

// eventHook tracks connection-level failures so the connected flag follows
// what the transport observes.
type eventHook struct {
	client *Client
}

func (h *eventHook) DialHook(next redis.DialHook) redis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		conn, err := next(ctx, network, addr)
		if err != nil {
			h.client.connected.Store(false)
			h.client.log.Connection("error", "target", h.client.cfg.Redacted(), "error", err.Error())
		}
		return conn, err
	}
}

func (h *eventHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		err := next(ctx, cmd)
		if err != nil && err != redis.Nil {
			if _, ok := err.(net.Error); ok {
				h.client.connected.Store(false)
				h.client.log.Connection("error", "target", h.client.cfg.Redacted(), "error", err.Error())
			}
		}
		return err
	}
}

func (h *eventHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		err := next(ctx, cmds)
		if err != nil && err != redis.Nil {
			if _, ok := err.(net.Error); ok {
				h.client.connected.Store(false)
				h.client.log.Connection("error", "target", h.client.cfg.Redacted(), "error", err.Error())
			}
		}
		return err
	}
}

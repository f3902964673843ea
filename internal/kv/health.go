package kv

import (
	"context"
	"time"
)

// HealthResult is a well-formed key-value probe outcome.
type HealthResult struct {
	Connected bool
	Latency   time.Duration
	LastCheck time.Time
	Err       string
}

// HealthMonitor probes the key-value client.
type HealthMonitor struct{}

// NewHealthMonitor creates a key-value health monitor.
func NewHealthMonitor() *HealthMonitor {
	return &HealthMonitor{}
}

// Check reports the client state. A disconnected client short-circuits
// without probing; probe failures are reported in the result, never
// returned as errors.
func (h *HealthMonitor) Check(ctx context.Context, c *Client) HealthResult {
	now := time.Now()
	if !c.IsConnected() {
		return HealthResult{
			Connected: false,
			LastCheck: now,
			Err:       "redis client not connected",
		}
	}

	start := time.Now()
	if err := c.Ping(ctx); err != nil {
		return HealthResult{
			Connected: false,
			Latency:   time.Since(start),
			LastCheck: time.Now(),
			Err:       err.Error(),
		}
	}
	return HealthResult{
		Connected: true,
		Latency:   time.Since(start),
		LastCheck: time.Now(),
	}
}

package database

import (
	"context"
	"time"

	"github.com/trongtien/page-builder-cms-sub000/pkg/logger"
)

// Status is the outcome of a health probe.
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusUnhealthy Status = "unhealthy"
)

// HealthResult is a well-formed probe outcome. Probe failures are reported
// here, never raised to the caller.
type HealthResult struct {
	Status    Status
	Latency   time.Duration
	CheckedAt time.Time
	Err       string
}

// Pinger is the probe surface the monitor needs; *Manager satisfies it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthMonitor issues liveness probes against the connection manager and
// gates startup with a bounded fixed-delay retry loop.
type HealthMonitor struct {
	pinger Pinger
	log    *logger.DB
	sleep  func(time.Duration)
}

// NewHealthMonitor creates a monitor probing through p.
func NewHealthMonitor(p Pinger, log *logger.DB) *HealthMonitor {
	return &HealthMonitor{pinger: p, log: log, sleep: time.Sleep}
}

// Check runs one probe and measures wall-clock latency. It never returns an
// error; failures map to StatusUnhealthy with the error message.
func (h *HealthMonitor) Check(ctx context.Context) HealthResult {
	start := time.Now()
	err := h.pinger.Ping(ctx)
	res := HealthResult{
		Status:    StatusHealthy,
		Latency:   time.Since(start),
		CheckedAt: time.Now(),
	}
	if err != nil {
		res.Status = StatusUnhealthy
		res.Err = err.Error()
	}
	return res
}

// WaitUntilReady probes up to maxRetries times with a fixed delay between
// attempts, stopping on the first healthy result. It returns the final probe
// result so callers need not probe again, and whether that result was
// healthy. This is the only retry policy in the persistence core; there is
// no backoff growth and no jitter.
func (h *HealthMonitor) WaitUntilReady(ctx context.Context, maxRetries int, delay time.Duration) (HealthResult, bool) {
	var res HealthResult
	for attempt := 1; attempt <= maxRetries; attempt++ {
		res = h.Check(ctx)
		if res.Status == StatusHealthy {
			return res, true
		}
		h.log.Warn("database not ready",
			"attempt", attempt,
			"maxRetries", maxRetries,
			"error", res.Err,
		)
		if attempt < maxRetries {
			h.sleep(delay)
		}
	}
	h.log.Error("database failed to become ready", "maxRetries", maxRetries)
	return res, false
}

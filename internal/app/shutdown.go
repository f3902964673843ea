// Package app holds the composition-root plumbing: the ordered graceful
// shutdown of process resources.
package app

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/trongtien/page-builder-cms-sub000/pkg/logger"
)

// CloseFunc releases one resource.
type CloseFunc func(ctx context.Context) error

type closer struct {
	name  string
	close CloseFunc
}

// Shutdown collects resource closers and runs them exactly once, in
// reverse registration order, on demand or on SIGINT/SIGTERM. Close
// errors are logged, never propagated; shutdown is never blocked.
type Shutdown struct {
	log *logger.DB

	mu      sync.Mutex
	closers []closer
	once    sync.Once
}

// NewShutdown creates an empty registry.
func NewShutdown(log *logger.DB) *Shutdown {
	return &Shutdown{log: log}
}

// Register adds a named closer. Registration order is construction order,
// so dependents close before their dependencies.
func (s *Shutdown) Register(name string, fn CloseFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closers = append(s.closers, closer{name: name, close: fn})
}

// Listen installs the signal handler. The first SIGINT or SIGTERM triggers
// CloseAll and then done is called (typically os.Exit).
func (s *Shutdown) Listen(done func()) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-ch
		s.log.Info("shutdown signal received", "signal", sig.String())
		s.CloseAll(context.Background())
		if done != nil {
			done()
		}
	}()
}

// CloseAll runs every closer once, in reverse registration order.
// Repeated calls are no-ops.
func (s *Shutdown) CloseAll(ctx context.Context) {
	s.once.Do(func() {
		s.mu.Lock()
		closers := make([]closer, len(s.closers))
		copy(closers, s.closers)
		s.mu.Unlock()

		for i := len(closers) - 1; i >= 0; i-- {
			c := closers[i]
			if err := c.close(ctx); err != nil {
				s.log.Error("close failed during shutdown", "resource", c.name, "error", err.Error())
				continue
			}
			s.log.Info("resource closed", "resource", c.name)
		}
	})
}

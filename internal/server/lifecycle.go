// Package server runs the binaries' long-lived pieces (engine processes,
// matches) with signal-aware startup and shutdown.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// DefaultStopGrace bounds how long Run waits for Start calls to return once
// every service has been stopped.
const DefaultStopGrace = 5 * time.Second

// Service is a long-running component. Start blocks until the work is done,
// Stop is called, or an error occurs; returning nil means the work finished.
type Service interface {
	Start() error
	Stop()
}

// FuncService adapts a start/stop function pair into the Service interface.
type FuncService struct {
	StartFn func() error
	StopFn  func()
}

// Start calls the underlying start function.
func (f *FuncService) Start() error { return f.StartFn() }

// Stop calls the underlying stop function.
func (f *FuncService) Stop() { f.StopFn() }

// Lifecycle starts services in registration order, waits for the first of a
// signal, a cancelled context, or a service returning, then stops them in
// reverse order.
type Lifecycle struct {
	logger *zap.Logger
	// StopGrace is the wait for Start calls to return after shutdown.
	StopGrace time.Duration

	mu       sync.Mutex
	services []namedService
}

type namedService struct {
	name    string
	service Service
}

// NewLifecycle creates a Lifecycle with DefaultStopGrace.
//
// Precondition: logger must be non-nil.
func NewLifecycle(logger *zap.Logger) *Lifecycle {
	if logger == nil {
		panic("server.NewLifecycle: logger must not be nil")
	}
	return &Lifecycle{logger: logger, StopGrace: DefaultStopGrace}
}

// Add registers a named service.
//
// Precondition: name must be non-empty; svc must be non-nil.
func (l *Lifecycle) Add(name string, svc Service) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.services = append(l.services, namedService{name: name, service: svc})
}

// Run starts every service and blocks until shutdown is triggered.
//
// Postcondition: every service has been stopped, and every Start call has
// returned unless it outlived StopGrace. The returned error is the first
// service failure, if any.
func (l *Lifecycle) Run(ctx context.Context) error {
	began := time.Now()
	l.mu.Lock()
	services := append([]namedService(nil), l.services...)
	l.mu.Unlock()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	doneCh := make(chan error, len(services))
	var running sync.WaitGroup
	for _, ns := range services {
		running.Add(1)
		go func() {
			defer running.Done()
			doneCh <- l.runOne(ns)
		}()
	}
	l.logger.Info("services started", zap.Int("count", len(services)))

	var runErr error
	select {
	case sig := <-sigCh:
		l.logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
	case runErr = <-doneCh:
		if runErr != nil {
			l.logger.Error("service error, shutting down", zap.Error(runErr))
		}
	case <-ctx.Done():
		l.logger.Info("context cancelled, shutting down")
	}

	for i := len(services) - 1; i >= 0; i-- {
		ns := services[i]
		stopStart := time.Now()
		ns.service.Stop()
		l.logger.Info("service stopped",
			zap.String("service", ns.name),
			zap.Duration("elapsed", time.Since(stopStart)),
		)
	}

	exited := make(chan struct{})
	go func() {
		running.Wait()
		close(exited)
	}()
	select {
	case <-exited:
	case <-time.After(l.StopGrace):
		l.logger.Warn("services still running after stop", zap.Duration("grace", l.StopGrace))
	}

	l.logger.Info("shutdown complete", zap.Duration("uptime", time.Since(began)))
	return runErr
}

func (l *Lifecycle) runOne(ns namedService) error {
	started := time.Now()
	l.logger.Info("starting service", zap.String("service", ns.name))
	if err := ns.service.Start(); err != nil {
		l.logger.Error("service failed",
			zap.String("service", ns.name),
			zap.Error(err),
			zap.Duration("uptime", time.Since(started)),
		)
		return fmt.Errorf("service %s: %w", ns.name, err)
	}
	l.logger.Info("service finished",
		zap.String("service", ns.name),
		zap.Duration("uptime", time.Since(started)),
	)
	return nil
}

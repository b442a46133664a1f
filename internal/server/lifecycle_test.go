package server

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

// blockingService runs until Stop, or returns result immediately when set.
type blockingService struct {
	started atomic.Bool
	stopped atomic.Bool
	exited  atomic.Bool
	stop    chan struct{}
	result  func() error
}

func newBlocking() *blockingService { return &blockingService{stop: make(chan struct{})} }

func (b *blockingService) Start() error {
	b.started.Store(true)
	defer b.exited.Store(true)
	if b.result != nil {
		return b.result()
	}
	<-b.stop
	return nil
}

func (b *blockingService) Stop() {
	if b.stopped.CompareAndSwap(false, true) {
		close(b.stop)
	}
}

func TestLifecycle_ContextCancelStopsEverything(t *testing.T) {
	lc := NewLifecycle(zaptest.NewLogger(t))
	engine, match := newBlocking(), newBlocking()
	lc.Add("engine", engine)
	lc.Add("match", match)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- lc.Run(ctx) }()

	require.Eventually(t, func() bool { return engine.started.Load() && match.started.Load() },
		2*time.Second, 10*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("lifecycle did not shut down")
	}
	assert.True(t, engine.stopped.Load())
	assert.True(t, match.stopped.Load())
	assert.True(t, engine.exited.Load(), "Run returns only after Start has returned")
	assert.True(t, match.exited.Load())
}

func TestFuncService(t *testing.T) {
	var started, stopped bool
	svc := &FuncService{
		StartFn: func() error { started = true; return nil },
		StopFn:  func() { stopped = true },
	}
	assert.NoError(t, svc.Start())
	svc.Stop()
	assert.True(t, started)
	assert.True(t, stopped)
}

func TestLifecycle_FinishedServiceEndsRun(t *testing.T) {
	lc := NewLifecycle(zaptest.NewLogger(t))
	engine := newBlocking()
	match := newBlocking()
	match.result = func() error { return nil }
	lc.Add("engine", engine)
	lc.Add("match", match)

	done := make(chan error, 1)
	go func() { done <- lc.Run(context.Background()) }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("lifecycle did not finish")
	}
	assert.True(t, engine.stopped.Load())
	assert.True(t, match.stopped.Load())
}

func TestLifecycle_ReturnsServiceError(t *testing.T) {
	lc := NewLifecycle(zaptest.NewLogger(t))
	boom := errors.New("engine exited")
	svc := newBlocking()
	svc.result = func() error { return boom }
	lc.Add("match", svc)

	err := lc.Run(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "service match")
}

func TestLifecycle_WarnsWhenStartOutlivesGrace(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	lc := NewLifecycle(zap.New(core))
	lc.StopGrace = 20 * time.Millisecond

	release := make(chan struct{})
	defer close(release)
	lc.Add("stuck", &FuncService{
		StartFn: func() error { <-release; return nil },
		StopFn:  func() {},
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, lc.Run(ctx))
	assert.Equal(t, 1, logs.FilterMessage("services still running after stop").Len())
}

func TestNewLifecycle_PanicsOnNilLogger(t *testing.T) {
	assert.Panics(t, func() { NewLifecycle(nil) })
}

package transport

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrNotStarted is returned when the child process has not been started.
	ErrNotStarted = errors.New("transport: process not started")
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("transport: process closed")
)

const (
	// DefaultCloseGrace is how long Close waits after SIGTERM before killing.
	DefaultCloseGrace = 2 * time.Second
	// DefaultStderrLines is the size of the stderr ring.
	DefaultStderrLines = 50

	lineBuffer = 1024
	maxLine    = 1 << 20
)

// ExitError reports that the child exited while a read was waiting on it.
type ExitError struct {
	Code       int
	StderrTail []string
}

func (e *ExitError) Error() string {
	if len(e.StderrTail) == 0 {
		return fmt.Sprintf("transport: engine exited with code %d", e.Code)
	}
	return fmt.Sprintf("transport: engine exited with code %d: %s",
		e.Code, strings.Join(e.StderrTail, " | "))
}

// Options configures a child engine process.
type Options struct {
	// Command is the argv used to launch the engine.
	Command []string
	// Dir is the working directory of the child.
	Dir string
	// CloseGrace bounds the wait between SIGTERM and SIGKILL.
	CloseGrace time.Duration
	// StderrLines is the number of stderr lines kept for diagnostics.
	StderrLines int
}

// Process owns a child engine and its pipes. Reads are single in-flight:
// ReadBlock must not be called concurrently with itself.
type Process struct {
	opts   Options
	logger *zap.Logger

	cmd    *exec.Cmd
	stdin  io.WriteCloser
	lines  chan string
	stderr *ring
	frame  framer

	readers sync.WaitGroup
	done    chan struct{}
	code    int

	closing   chan struct{}
	closeOnce sync.Once
	closeErr  error
	mu        sync.Mutex
	closed    bool
}

// NewProcess returns an unstarted Process.
//
// Precondition: opts.Command must be non-empty; logger must not be nil.
func NewProcess(opts Options, logger *zap.Logger) *Process {
	if logger == nil {
		panic("transport.NewProcess: logger must not be nil")
	}
	if opts.CloseGrace <= 0 {
		opts.CloseGrace = DefaultCloseGrace
	}
	if opts.StderrLines <= 0 {
		opts.StderrLines = DefaultStderrLines
	}
	return &Process{
		opts:    opts,
		logger:  logger,
		stderr:  newRing(opts.StderrLines),
		closing: make(chan struct{}),
	}
}

// Start launches the child and its pipe readers.
//
// Postcondition: on success the stdout and stderr readers are running.
func (p *Process) Start() error {
	if len(p.opts.Command) == 0 {
		return errors.New("transport: empty engine command")
	}
	if p.cmd != nil {
		return errors.New("transport: process already started")
	}
	cmd := exec.Command(p.opts.Command[0], p.opts.Command[1:]...)
	cmd.Dir = p.opts.Dir
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("transport: stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("transport: stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("transport: stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("transport: starting %q: %w", p.opts.Command[0], err)
	}

	p.cmd = cmd
	p.stdin = stdin
	p.lines = make(chan string, lineBuffer)
	p.done = make(chan struct{})

	p.readers.Add(2)
	go p.readStdout(stdout)
	go p.readStderr(stderr)
	go p.wait()

	p.logger.Info("engine started",
		zap.Strings("command", p.opts.Command),
		zap.Int("pid", cmd.Process.Pid),
	)
	return nil
}

func (p *Process) readStdout(r io.Reader) {
	defer p.readers.Done()
	defer close(p.lines)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLine)
	for sc.Scan() {
		select {
		case p.lines <- sc.Text():
		case <-p.closing:
			// Keep draining so the child never blocks on a full pipe.
		}
	}
}

func (p *Process) readStderr(r io.Reader) {
	defer p.readers.Done()
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLine)
	for sc.Scan() {
		line := sc.Text()
		p.stderr.add(line)
		p.logger.Debug("engine stderr", zap.String("line", line))
	}
}

// wait reaps the child once both pipes have reached EOF.
func (p *Process) wait() {
	p.readers.Wait()
	err := p.cmd.Wait()
	code := p.cmd.ProcessState.ExitCode()
	if err != nil && code == 0 {
		code = -1
	}
	p.code = code
	p.logger.Info("engine exited", zap.Int("code", code))
	close(p.done)
}

// WriteLines writes each line to the child's stdin, appending a newline
// when absent. The write is issued immediately.
func (p *Process) WriteLines(lines ...string) error {
	if err := p.usable(); err != nil {
		return err
	}
	var sb strings.Builder
	for _, l := range lines {
		sb.WriteString(l)
		if !strings.HasSuffix(l, "\n") {
			sb.WriteByte('\n')
		}
	}
	if _, err := io.WriteString(p.stdin, sb.String()); err != nil {
		return fmt.Errorf("transport: writing to engine: %w", err)
	}
	for _, l := range lines {
		p.logger.Debug("engine <", zap.String("line", strings.TrimRight(l, "\n")))
	}
	return nil
}

// ReadBlock waits up to timeout for the next complete block. It returns
// (nil, nil) when no block was completed in time; lines already received
// are retained for the next call. A child exit while waiting returns an
// *ExitError. A child that closes stdout but keeps running yields (nil, nil)
// at the timeout; Poll tells the two apart.
func (p *Process) ReadBlock(timeout time.Duration) (*Block, error) {
	if err := p.usable(); err != nil {
		return nil, err
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	// exited stays nil until stdout is drained, so buffered lines are never
	// skipped in favour of the exit.
	lines, exited := p.lines, (<-chan struct{})(nil)
	for {
		select {
		case line, ok := <-lines:
			if !ok {
				lines, exited = nil, p.done
				continue
			}
			p.logger.Debug("engine >", zap.String("line", line))
			if b := p.frame.feed(line); b != nil {
				return b, nil
			}
		case <-exited:
			return nil, &ExitError{Code: p.code, StderrTail: p.stderr.snapshot()}
		case <-timer.C:
			return nil, nil
		}
	}
}

// Poll reports whether the child has exited and, if so, its exit code.
func (p *Process) Poll() (exited bool, code int) {
	if p.done == nil {
		return false, 0
	}
	select {
	case <-p.done:
		return true, p.code
	default:
		return false, 0
	}
}

// StderrTail returns the retained stderr lines, oldest first.
func (p *Process) StderrTail() []string {
	return p.stderr.snapshot()
}

func (p *Process) usable() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}
	if p.cmd == nil {
		return ErrNotStarted
	}
	return nil
}

// Close closes stdin, asks the child to terminate and kills it if it has not
// exited within the grace period. It is safe to call more than once and in
// any reader state.
func (p *Process) Close() error {
	p.closeOnce.Do(func() {
		p.mu.Lock()
		p.closed = true
		p.mu.Unlock()
		close(p.closing)
		if p.cmd == nil {
			return
		}
		_ = p.stdin.Close()
		if exited, _ := p.Poll(); exited {
			return
		}
		if err := p.cmd.Process.Signal(syscall.SIGTERM); err != nil {
			p.logger.Debug("engine SIGTERM", zap.Error(err))
		}
		select {
		case <-p.done:
			return
		case <-time.After(p.opts.CloseGrace):
		}
		p.logger.Warn("engine ignored SIGTERM; killing",
			zap.Duration("grace", p.opts.CloseGrace))
		if err := p.cmd.Process.Kill(); err != nil {
			p.closeErr = fmt.Errorf("transport: killing engine: %w", err)
			return
		}
		select {
		case <-p.done:
		case <-time.After(p.opts.CloseGrace):
			p.closeErr = errors.New("transport: engine pipes still open after kill")
		}
	})
	return p.closeErr
}

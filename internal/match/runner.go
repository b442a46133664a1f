// Package match drives an authoritative child engine: it registers both
// players, fans the framed output out to one tracker per perspective, and
// exchanges choices turn by turn.
package match

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/battlesim/internal/game/battle"
	"github.com/cory-johannsen/battlesim/internal/game/sim"
	"github.com/cory-johannsen/battlesim/internal/protocol"
	"github.com/cory-johannsen/battlesim/internal/transport"
)

var (
	// ErrStartupTimeout is returned when the engine produced no opening
	// requests within the startup budget.
	ErrStartupTimeout = errors.New("match: engine did not start in time")
	// ErrStepTimeout is returned when a turn produced no follow-up requests
	// within the step budget.
	ErrStepTimeout = errors.New("match: engine stalled mid-battle")
)

// Engine is the framed block transport a Runner drives.
type Engine interface {
	WriteLines(lines ...string) error
	ReadBlock(timeout time.Duration) (*transport.Block, error)
	Poll() (exited bool, code int)
	StderrTail() []string
	Close() error
}

var _ Engine = (*transport.Process)(nil)

// Player registers one side.
type Player struct {
	Name string
	// Team is a packed team; empty lets the engine generate one.
	Team string
}

// Options configures a Runner.
type Options struct {
	Format      string
	Players     [2]Player
	ReadTimeout time.Duration
	// StartupBudget is the number of empty reads tolerated before the
	// opening requests arrive.
	StartupBudget int
	// StepBudget is the number of empty reads tolerated per turn.
	StepBudget int
	MaxTurns   int
}

// Result summarises a finished or truncated match. Winner, Tie and Turns are
// derived from public events only.
type Result struct {
	Winner    string
	Tie       bool
	Turns     int
	Truncated bool
}

// Runner exchanges choices with one engine process. It is not safe for
// concurrent use.
type Runner struct {
	engine  Engine
	opts    Options
	logger  *zap.Logger
	track   *trackers
	log     []string
	fresh   map[string]bool
	started bool
}

// NewRunner wraps engine.
//
// Precondition: engine and logger must not be nil.
func NewRunner(engine Engine, opts Options, logger *zap.Logger) *Runner {
	if engine == nil || logger == nil {
		panic("match.NewRunner: engine and logger must not be nil")
	}
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = time.Second
	}
	if opts.StartupBudget <= 0 {
		opts.StartupBudget = 10
	}
	if opts.StepBudget <= 0 {
		opts.StepBudget = 30
	}
	return &Runner{
		engine: engine,
		opts:   opts,
		logger: logger,
		track:  newTrackers(logger),
		fresh:  map[string]bool{},
	}
}

// State returns the snapshot from side's perspective.
func (r *Runner) State(side string) *battle.State { return r.track.states[side] }

// ProtocolLog returns every block received so far, in framed form.
func (r *Runner) ProtocolLog() []string { return slices.Clone(r.log) }

// Result reports the outcome as seen by the public stream.
func (r *Runner) Result() Result {
	s := r.track.states["p1"]
	return Result{
		Winner:    s.Winner,
		Tie:       s.Tie,
		Turns:     s.Turn,
		Truncated: !s.Finished && r.opts.MaxTurns > 0 && s.Turn >= r.opts.MaxTurns,
	}
}

// Finished reports whether a win or tie line has been seen.
func (r *Runner) Finished() bool { return r.track.states["p1"].Finished }

// Close shuts the engine down.
func (r *Runner) Close() error { return r.engine.Close() }

// Start sends the start and player directives and waits for the opening
// requests.
func (r *Runner) Start(ctx context.Context) error {
	if r.started {
		return errors.New("match: already started")
	}
	lines := make([]string, 0, 3)
	start, err := protocol.StartDirective(r.opts.Format)
	if err != nil {
		return err
	}
	lines = append(lines, start)
	for i, p := range r.opts.Players {
		d, err := protocol.PlayerDirective(sides[i], p.Name, p.Team)
		if err != nil {
			return err
		}
		lines = append(lines, d)
	}
	if err := r.engine.WriteLines(lines...); err != nil {
		return fmt.Errorf("match: starting battle: %w", err)
	}
	r.started = true
	r.logger.Info("match starting", zap.String("format", r.opts.Format))
	return r.drain(ctx, r.opts.StartupBudget, ErrStartupTimeout)
}

// Step sends one choice per side that has a request to answer and waits for
// the engine's next requests. Sides whose request says wait are skipped.
func (r *Runner) Step(ctx context.Context, choices map[string]battle.Action) error {
	if !r.started {
		return errors.New("match: not started")
	}
	var lines []string
	for _, side := range sides {
		req := r.track.states[side].Request
		if req == nil || req.Wait {
			continue
		}
		a, ok := choices[side]
		if !ok {
			a = battle.Default
		}
		lines = append(lines, protocol.ChoiceDirective(side, a.Choice()))
	}
	r.fresh = map[string]bool{}
	if len(lines) > 0 {
		if err := r.engine.WriteLines(lines...); err != nil {
			return fmt.Errorf("match: sending choices: %w", err)
		}
	}
	return r.drain(ctx, r.opts.StepBudget, ErrStepTimeout)
}

// drain reads blocks until both sides hold a fresh request and a public
// update has arrived, or until the battle ends.
func (r *Runner) drain(ctx context.Context, budget int, timeoutErr error) error {
	empty := 0
	sawUpdate := false
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		b, err := r.engine.ReadBlock(r.opts.ReadTimeout)
		if err != nil {
			var exit *transport.ExitError
			if errors.As(err, &exit) {
				r.logger.Error("engine exited mid-match",
					zap.Int("code", exit.Code),
					zap.Strings("stderr", exit.StderrTail),
				)
			}
			return fmt.Errorf("match: reading engine output: %w", err)
		}
		if b == nil {
			empty++
			r.logger.Debug("no block yet", zap.Int("empty_reads", empty), zap.Int("budget", budget))
			if exited, code := r.engine.Poll(); exited {
				return fmt.Errorf("match: reading engine output: %w",
					&transport.ExitError{Code: code, StderrTail: r.engine.StderrTail()})
			}
			if empty >= budget {
				return timeoutErr
			}
			continue
		}
		r.log = append(r.log, b.Encode()...)
		requests, errs := r.track.deliver(b)
		for _, side := range requests {
			r.fresh[side] = true
		}
		if b.Kind == transport.BlockUpdate {
			sawUpdate = true
		}
		if len(errs) > 0 {
			if err := r.resendDefault(errs); err != nil {
				return err
			}
		}
		if r.Finished() {
			return nil
		}
		if sawUpdate && r.fresh["p1"] && r.fresh["p2"] {
			return nil
		}
	}
}

// resendDefault answers a rejected choice with "default".
func (r *Runner) resendDefault(sides []string) error {
	lines := make([]string, 0, len(sides))
	for _, side := range sides {
		r.logger.Warn("engine rejected choice, sending default", zap.String("side", side))
		lines = append(lines, protocol.ChoiceDirective(side, protocol.ChoiceDefault))
	}
	if err := r.engine.WriteLines(lines...); err != nil {
		return fmt.Errorf("match: resending default: %w", err)
	}
	return nil
}

// Choices asks each chooser for an action legal under its side's latest
// request. An action outside the legal set becomes "default".
func (r *Runner) Choices(ctx context.Context, p1, p2 sim.Chooser) map[string]battle.Action {
	out := make(map[string]battle.Action, len(sides))
	for i, c := range [...]sim.Chooser{p1, p2} {
		side := sides[i]
		out[side] = r.choose(ctx, side, c)
	}
	return out
}

func (r *Runner) choose(ctx context.Context, side string, c sim.Chooser) battle.Action {
	st := r.track.states[side]
	req := st.Request
	if req == nil || req.TeamPreview || c == nil {
		return battle.Default
	}
	actions := battle.LegalActions(req)
	if req.ForcedSwitch() {
		actions = battle.SwitchActions(req)
	}
	if len(actions) == 0 {
		return battle.Default
	}
	a, err := c.Choose(ctx, st, side, actions)
	if err != nil {
		r.logger.Warn("chooser failed, using default", zap.String("side", side), zap.Error(err))
		return battle.Default
	}
	if a.Kind != battle.ActionDefault && !slices.Contains(actions, a) {
		r.logger.Warn("chooser picked an illegal action, using default",
			zap.String("side", side), zap.String("choice", a.Choice()))
		return battle.Default
	}
	return a
}

// Run starts the match and plays it to completion or to MaxTurns.
func (r *Runner) Run(ctx context.Context, p1, p2 sim.Chooser) (Result, error) {
	if err := r.Start(ctx); err != nil {
		return r.Result(), err
	}
	for !r.Finished() {
		if r.opts.MaxTurns > 0 && r.track.states["p1"].Turn >= r.opts.MaxTurns {
			r.logger.Info("match truncated", zap.Int("turns", r.opts.MaxTurns))
			break
		}
		if err := r.Step(ctx, r.Choices(ctx, p1, p2)); err != nil {
			return r.Result(), err
		}
	}
	res := r.Result()
	r.logger.Info("match finished",
		zap.String("winner", res.Winner),
		zap.Bool("tie", res.Tie),
		zap.Int("turns", res.Turns),
		zap.Bool("truncated", res.Truncated),
	)
	return res, nil
}

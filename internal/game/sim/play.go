package sim

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/battlesim/internal/game/battle"
)

// Chooser picks one of the legal actions for side.
type Chooser interface {
	Choose(ctx context.Context, s *battle.State, side string, actions []battle.Action) (battle.Action, error)
}

// Result summarises a finished or truncated battle.
type Result struct {
	Winner    string
	Tie       bool
	Turns     int
	Truncated bool
	Log       []string
}

// Play starts s and runs turns until a side wins, the battle ties, or
// maxTurns turns have been played. A chooser error or an action the engine
// rejects falls back to the default action.
//
// Precondition: both sides seeded; maxTurns > 0.
func (e *Engine) Play(ctx context.Context, s *battle.State, p1, p2 Chooser, maxTurns int) (*Result, error) {
	lines, err := e.Start(s)
	if err != nil {
		return nil, err
	}
	res := &Result{Log: lines}

	for !s.Finished {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if s.Turn >= maxTurns {
			res.Truncated = true
			break
		}
		a1 := e.choose(ctx, s, "p1", p1)
		a2 := e.choose(ctx, s, "p2", p2)
		tr, err := e.RunTurn(s, a1, a2)
		if err != nil {
			e.logger.Warn("choice rejected, using default",
				zap.Int("turn", s.Turn+1),
				zap.Error(err),
			)
			tr, err = e.RunTurn(s, battle.Default, battle.Default)
			if err != nil {
				return res, fmt.Errorf("sim: running turn %d: %w", s.Turn+1, err)
			}
		}
		res.Log = append(res.Log, tr.Lines...)
	}

	res.Winner, res.Tie, res.Turns = s.Winner, s.Tie, s.Turn
	return res, nil
}

func (e *Engine) choose(ctx context.Context, s *battle.State, side string, c Chooser) battle.Action {
	actions := battle.LegalActions(s.RequestFor(side))
	if len(actions) == 0 || c == nil {
		return battle.Default
	}
	a, err := c.Choose(ctx, s, side, actions)
	if err != nil {
		e.logger.Warn("chooser failed, using default", zap.String("side", side), zap.Error(err))
		return battle.Default
	}
	return a
}

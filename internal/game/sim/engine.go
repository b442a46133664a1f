// Package sim runs deterministic battles: it resolves turn order, executes
// moves through the damage engine, fires ability hooks and handles faints,
// residual damage and replacements, recording every change as protocol lines.
package sim

import (
	"errors"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/cory-johannsen/battlesim/internal/game/battle"
	"github.com/cory-johannsen/battlesim/internal/game/dice"
)

var (
	// ErrBattleOver is returned when a turn is requested after the result.
	ErrBattleOver = errors.New("sim: battle is over")
	// ErrNotStarted is returned by RunTurn before Start.
	ErrNotStarted = errors.New("sim: battle not started")
)

// Struggle is used when the active Pokémon has no move with PP left.
var Struggle = battle.Move{
	ID: "struggle", Name: "Struggle", Type: "???", Category: battle.Physical,
	BasePower: 50, Accuracy: battle.AlwaysHits, Target: "randomNormal", Recoil: [2]int{1, 4},
}

// Engine executes turns against a battle.State. It holds no battle state of
// its own; one Engine may drive many battles sequentially.
type Engine struct {
	roller    *dice.Roller
	abilities *AbilityRegistry
	logger    *zap.Logger
}

// NewEngine builds an Engine. A nil abilities uses the built-in table only.
//
// Precondition: roller and logger must be non-nil.
func NewEngine(roller *dice.Roller, abilities *AbilityRegistry, logger *zap.Logger) *Engine {
	if abilities == nil {
		abilities = NewAbilityRegistry(nil, logger)
	}
	return &Engine{roller: roller, abilities: abilities, logger: logger}
}

// TurnResult is everything one turn produced.
type TurnResult struct {
	Turn     int
	Lines    []string
	Outcomes []Outcome
}

// Outcome describes one executed choice.
type Outcome struct {
	Side          string
	Move          string // empty for switches
	Switched      bool
	Prevented     string // status or volatile that stopped the move
	Missed        bool
	Failed        bool
	Damage        int
	Critical      bool
	Effectiveness float64
	Boosts        []BoostChange
}

// BoostChange records one requested stage change and what actually applied.
// Capped is the "already at the limit" signal: Applied is 0 and nothing moved.
type BoostChange struct {
	Side      string
	Stat      battle.Stat
	Requested int
	Applied   int
	Capped    bool
}

// Start announces both sides and their leads and fires the leads' switch-in
// hooks in speed order.
//
// Precondition: both sides have been seeded with SeedTeam.
// Postcondition: s.Started is true.
func (e *Engine) Start(s *battle.State) ([]string, error) {
	if s.Started {
		return nil, errors.New("sim: battle already started")
	}
	sides := [2]*battle.Side{}
	for i, id := range []string{"p1", "p2"} {
		sd, _ := s.Side(id)
		if sd.ActivePokemon() == nil {
			return nil, fmt.Errorf("sim: side %s has no active pokemon", id)
		}
		sides[i] = sd
	}

	l := &turnLog{}
	for _, sd := range sides {
		l.add("player", sd.ID, username(sd))
		l.add("teamsize", sd.ID, strconv.Itoa(len(sd.Team)))
	}
	l.add("gametype", "singles")
	if s.Gen > 0 {
		l.add("gen", strconv.Itoa(s.Gen))
	}
	l.add("start")
	for _, sd := range sides {
		p := sd.ActivePokemon()
		l.add("switch", ident(sd.ID, p), p.Details().String(), p.Condition().String())
	}
	e.switchInHooks(s, l)
	s.Started = true

	e.logger.Info("battle started", zap.String("battle", s.ID.String()))
	return l.lines, nil
}

// RunTurn executes one turn with the given choices for p1 and p2.
//
// Precondition: Start has been called.
// Postcondition: on error the state is unchanged.
func (e *Engine) RunTurn(s *battle.State, p1, p2 battle.Action) (*TurnResult, error) {
	if !s.Started {
		return nil, ErrNotStarted
	}
	if s.Finished {
		return nil, ErrBattleOver
	}
	c1, err := e.resolve(s, "p1", p1)
	if err != nil {
		return nil, err
	}
	c2, err := e.resolve(s, "p2", p2)
	if err != nil {
		return nil, err
	}

	s.Turn++
	l := &turnLog{}
	l.add("turn", strconv.Itoa(s.Turn))
	res := &TurnResult{Turn: s.Turn}

	first, second := e.order(s, c1, c2)
	for _, c := range []*choice{first, second} {
		if out, ok := e.execute(s, l, c); ok {
			res.Outcomes = append(res.Outcomes, out)
		}
	}

	e.endOfTurn(s, l)
	res.Lines = l.lines

	e.logger.Debug("turn resolved",
		zap.String("battle", s.ID.String()),
		zap.Int("turn", s.Turn),
		zap.Int("lines", len(res.Lines)),
	)
	return res, nil
}

// resolve validates an action for side and binds it to concrete data.
func (e *Engine) resolve(s *battle.State, side string, a battle.Action) (*choice, error) {
	sd, _ := s.Side(side)
	actor := sd.ActivePokemon()
	if actor == nil {
		return nil, fmt.Errorf("sim: %s has no active pokemon", side)
	}
	c := &choice{side: side, kind: a.Kind, actor: actor, slot: -1}

	switch a.Kind {
	case battle.ActionDefault:
		c.kind = battle.ActionMove
		c.move = Struggle
		for i, m := range actor.Moves {
			if m.PP > 0 {
				c.move, c.slot = m, i
				break
			}
		}
	case battle.ActionMove:
		i := a.Slot - 1
		if i < 0 || i >= len(actor.Moves) {
			return nil, fmt.Errorf("sim: %s move slot %d out of range", side, a.Slot)
		}
		if actor.Moves[i].PP <= 0 {
			return nil, fmt.Errorf("sim: %s move %s has no PP left", side, actor.Moves[i].ID)
		}
		c.move, c.slot = actor.Moves[i], i
	case battle.ActionSwitch:
		i := a.Slot - 1
		if i < 0 || i >= len(sd.Team) {
			return nil, fmt.Errorf("sim: %s switch slot %d out of range", side, a.Slot)
		}
		target := sd.Team[i]
		if !target.Alive() || target.Active {
			return nil, fmt.Errorf("sim: %s cannot switch to %s", side, target.Name)
		}
		if actor.HasVolatile("trapped") || actor.HasVolatile("partiallytrapped") {
			return nil, fmt.Errorf("sim: %s is trapped", actor.Name)
		}
		c.target = i
	default:
		return nil, fmt.Errorf("sim: unknown action kind %d", a.Kind)
	}
	return c, nil
}

// execute carries out one choice. It reports false when the actor fainted
// before its turn came.
func (e *Engine) execute(s *battle.State, l *turnLog, c *choice) (Outcome, bool) {
	if !c.actor.Alive() || !c.actor.Active {
		return Outcome{}, false
	}
	if c.kind == battle.ActionSwitch {
		e.switchIn(s, l, c.side, c.target)
		e.switchInHooks(s, l)
		return Outcome{Side: c.side, Switched: true}, true
	}
	return e.useMove(s, l, c), true
}

// switchIn puts team member idx on the field and applies entry hazards.
func (e *Engine) switchIn(s *battle.State, l *turnLog, side string, idx int) {
	sd, _ := s.Side(side)
	if err := s.SwitchTo(side, idx); err != nil {
		e.logger.Warn("switch rejected", zap.String("side", side), zap.Error(err))
		return
	}
	p := sd.Team[idx]
	l.add("switch", ident(side, p), p.Details().String(), p.Condition().String())
	e.entryHazards(l, sd, p)
}

// switchInHooks fires the switch-in ability of every Pokémon that entered
// since the last call, fastest first, and consumes their SwitchedIn flag.
func (e *Engine) switchInHooks(s *battle.State, l *turnLog) {
	var pending []*choice
	for _, id := range []string{"p1", "p2"} {
		if p := s.Active(id); p != nil && p.SwitchedIn && p.Alive() {
			pending = append(pending, &choice{side: id, actor: p})
		}
	}
	if len(pending) == 2 && compareSpeed(s, pending[0], pending[1]) < 0 {
		pending[0], pending[1] = pending[1], pending[0]
	}
	for _, c := range pending {
		c.actor.SwitchedIn = false
		foeSide := battle.OtherSide(c.side)
		foe := s.Active(foeSide)
		if foe != nil && !foe.Alive() {
			foe = nil
		}
		effects := e.abilities.SwitchIn(c.actor, foe)
		if len(effects) == 0 {
			continue
		}
		l.add("-ability", ident(c.side, c.actor), c.actor.Ability, "boost")
		for _, fx := range effects {
			if fx.OnFoe {
				if foe != nil {
					e.boost(l, foeSide, foe, fx.Stat, fx.Delta)
				}
				continue
			}
			e.boost(l, c.side, c.actor, fx.Stat, fx.Delta)
		}
	}
}

// boost applies a stage change and emits the matching line. A change that
// hits the cap emits a zero-amount line instead of a change.
func (e *Engine) boost(l *turnLog, side string, p *battle.Pokemon, st battle.Stat, delta int) BoostChange {
	applied := p.BoostBy(st, delta)
	bc := BoostChange{Side: side, Stat: st, Requested: delta, Applied: applied, Capped: applied == 0 && delta != 0}
	kind := "-boost"
	if delta < 0 {
		kind = "-unboost"
	}
	amount := applied
	if amount < 0 {
		amount = -amount
	}
	l.add(kind, ident(side, p), st.String(), strconv.Itoa(amount))
	return bc
}

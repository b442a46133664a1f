package agent

import (
	"context"

	"go.uber.org/zap"

	"github.com/cory-johannsen/battlesim/internal/game/battle"
	"github.com/cory-johannsen/battlesim/internal/game/damage"
	"github.com/cory-johannsen/battlesim/internal/game/dex"
	"github.com/cory-johannsen/battlesim/internal/game/sim"
)

const (
	// switchBelowPercent is the HP share under which the heuristic retreats.
	switchBelowPercent = 20
	// stabNum/stabDen is the same-type bonus used for scoring.
	stabNum, stabDen = 3, 2
	// unknownPower scores a foe whose moves are hidden by its types alone.
	unknownPower = 80
)

// Heuristic picks the move with the highest power x effectiveness x STAB
// score against the foe's active Pokémon, and switches into the best matchup
// when its active falls below 20% HP.
type Heuristic struct {
	dex    *dex.Dex
	logger *zap.Logger
}

var _ sim.Chooser = (*Heuristic)(nil)

// NewHeuristic returns a Heuristic. d may be nil.
//
// Precondition: logger must not be nil.
func NewHeuristic(d *dex.Dex, logger *zap.Logger) *Heuristic {
	if logger == nil {
		panic("agent.NewHeuristic: logger must not be nil")
	}
	return &Heuristic{dex: d, logger: logger}
}

// Choose implements sim.Chooser.
//
// Postcondition: returns one of actions, or Default when actions is empty.
func (h *Heuristic) Choose(_ context.Context, s *battle.State, side string, actions []battle.Action) (battle.Action, error) {
	if len(actions) == 0 {
		return battle.Default, nil
	}
	own, okOwn := s.Side(side)
	foeSide, okFoe := s.Side(battle.OtherSide(side))
	if !okOwn || !okFoe {
		return actions[0], nil
	}
	user := own.ActivePokemon()
	foe := foeSide.ActivePokemon()
	if foe == nil {
		return actions[0], nil
	}

	var moves, switches []battle.Action
	for _, a := range actions {
		switch a.Kind {
		case battle.ActionMove:
			moves = append(moves, a)
		case battle.ActionSwitch:
			switches = append(switches, a)
		}
	}

	retreat := user == nil || !user.Alive() ||
		(user.MaxHP > 0 && user.HP*100 < user.MaxHP*switchBelowPercent)
	if len(switches) > 0 && (retreat || len(moves) == 0) {
		best, score := h.bestSwitch(own, foe, switches)
		h.logger.Debug("heuristic switch",
			zap.String("side", side),
			zap.String("target", best.Label),
			zap.Float64("score", score),
		)
		return best, nil
	}
	if len(moves) == 0 || user == nil {
		return actions[0], nil
	}

	best, bestScore := moves[0], -1.0
	for _, a := range moves {
		m, ok := moveFor(user, a)
		if !ok {
			continue
		}
		if score := h.moveScore(user, foe, m); score > bestScore {
			best, bestScore = a, score
		}
	}
	return best, nil
}

// moveScore estimates the damage weight of m from user against foe. Status
// moves score zero.
func (h *Heuristic) moveScore(user, foe *battle.Pokemon, m battle.Move) float64 {
	m = resolveMove(h.dex, m)
	if m.IsStatus() || m.BasePower <= 0 {
		return 0
	}
	score := float64(m.BasePower) * damage.Effectiveness(m.Type, typesOf(h.dex, foe))
	for _, t := range typesOf(h.dex, user) {
		if t == m.Type {
			score = score * stabNum / stabDen
			break
		}
	}
	return score
}

// offense is p's best move score against target. When p's moves are unknown
// its own types stand in as STAB attacks of unknownPower.
func (h *Heuristic) offense(p, target *battle.Pokemon) float64 {
	best := 0.0
	for _, m := range p.Moves {
		best = max(best, h.moveScore(p, target, m))
	}
	if len(p.Moves) > 0 {
		return best
	}
	for _, t := range typesOf(h.dex, p) {
		stab := battle.Move{Type: t, BasePower: unknownPower, Category: battle.Physical}
		best = max(best, h.moveScore(p, target, stab))
	}
	return best
}

func (h *Heuristic) bestSwitch(own *battle.Side, foe *battle.Pokemon, switches []battle.Action) (battle.Action, float64) {
	best, bestScore, found := switches[0], 0.0, false
	for _, a := range switches {
		idx := own.Find(a.Label)
		if idx < 0 {
			continue
		}
		cand := own.Team[idx]
		score := h.offense(cand, foe) - h.offense(foe, cand)
		if !found || score > bestScore {
			best, bestScore, found = a, score, true
		}
	}
	return best, bestScore
}

// moveFor returns the move an action refers to, by ID first and slot second.
func moveFor(p *battle.Pokemon, a battle.Action) (battle.Move, bool) {
	if i := p.FindMove(a.Label); i >= 0 {
		return p.Moves[i], true
	}
	if a.Slot >= 1 && a.Slot <= len(p.Moves) {
		return p.Moves[a.Slot-1], true
	}
	return battle.Move{}, false
}

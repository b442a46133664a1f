package sim

import (
	"github.com/cory-johannsen/battlesim/internal/game/battle"
	"github.com/cory-johannsen/battlesim/internal/game/damage"
)

// choice is a validated action bound to the Pokémon that will carry it out.
type choice struct {
	side   string
	kind   battle.ActionKind
	actor  *battle.Pokemon
	move   battle.Move
	slot   int // move index, -1 for struggle
	target int // team index for switches
}

// Speed returns p's effective speed: boosted, halved by paralysis, doubled
// by tailwind on its side.
func Speed(s *battle.State, side string, p *battle.Pokemon) int {
	spe := damage.ApplyStage(p.Stats[battle.StatSpe], p.Boosts.Get(battle.StatSpe))
	if p.Status == battle.StatusParalysis {
		spe /= 2
	}
	if sd, ok := s.Side(side); ok && sd.Conditions.Tailwind > 0 {
		spe *= 2
	}
	return spe
}

// compareSpeed is positive when a acts before b. Trick room inverts it.
func compareSpeed(s *battle.State, a, b *choice) int {
	d := Speed(s, a.side, a.actor) - Speed(s, b.side, b.actor)
	if s.Field.TrickRoom {
		d = -d
	}
	return d
}

// order resolves which choice goes first: switches before moves, then move
// priority, then effective speed, then a coin flip. Trick room never changes
// the priority comparison.
func (e *Engine) order(s *battle.State, a, b *choice) (first, second *choice) {
	aSwitch, bSwitch := a.kind == battle.ActionSwitch, b.kind == battle.ActionSwitch
	switch {
	case aSwitch && !bSwitch:
		return a, b
	case bSwitch && !aSwitch:
		return b, a
	case !aSwitch && a.move.Priority != b.move.Priority:
		if a.move.Priority > b.move.Priority {
			return a, b
		}
		return b, a
	}
	if d := compareSpeed(s, a, b); d != 0 {
		if d > 0 {
			return a, b
		}
		return b, a
	}
	if e.roller.CoinFlip() {
		return a, b
	}
	return b, a
}

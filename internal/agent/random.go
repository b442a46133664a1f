package agent

import (
	"context"

	"github.com/cory-johannsen/battlesim/internal/game/battle"
	"github.com/cory-johannsen/battlesim/internal/game/dice"
	"github.com/cory-johannsen/battlesim/internal/game/sim"
)

// Random picks uniformly among the legal actions.
type Random struct {
	roller *dice.Roller
}

var _ sim.Chooser = (*Random)(nil)

// NewRandom returns a Random chooser.
//
// Precondition: roller must not be nil.
func NewRandom(roller *dice.Roller) *Random {
	if roller == nil {
		panic("agent.NewRandom: roller must not be nil")
	}
	return &Random{roller: roller}
}

// Choose implements sim.Chooser.
func (r *Random) Choose(_ context.Context, _ *battle.State, _ string, actions []battle.Action) (battle.Action, error) {
	if len(actions) == 0 {
		return battle.Default, nil
	}
	return actions[r.roller.Between(0, len(actions)-1)], nil
}

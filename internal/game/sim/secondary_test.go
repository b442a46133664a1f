package sim_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cory-johannsen/battlesim/internal/game/battle"
	"github.com/cory-johannsen/battlesim/internal/game/dice"
	"github.com/cory-johannsen/battlesim/internal/game/sim"
)

// recordingSrc behaves like fixedSrc and remembers the die size of every roll.
type recordingSrc struct {
	v     int
	sides []int
}

func (r *recordingSrc) Intn(n int) int {
	r.sides = append(r.sides, n)
	return r.v % n
}

func recordingEngine(v int) (*sim.Engine, *recordingSrc) {
	src := &recordingSrc{v: v}
	logger := zap.NewNop()
	return sim.NewEngine(dice.NewLoggedRoller(src, logger), nil, logger), src
}

func withSecondary(m battle.Move, sec battle.Secondary) battle.Move {
	m.Secondary = &sec
	return m
}

var zapCannon = battle.Move{ID: "zapcannon", Name: "Zap Cannon", Type: "Electric", Category: battle.Special,
	BasePower: 120, Accuracy: 50, Target: "normal", PP: 5, MaxPP: 5,
	Secondary: &battle.Secondary{Chance: 100, Status: battle.StatusParalysis}}

func TestSecondary_SkippedOnMiss(t *testing.T) {
	e := newEngine(t, highRolls) // Percent() = 96 misses a 50% move
	att := mon("Magnezone", []string{"Electric", "Steel"}, quick, zapCannon)
	def := mon("Snorlax", []string{"Normal"}, bulky, swordsDance)
	s := newBattle(t, []*battle.Pokemon{att}, []*battle.Pokemon{def})
	started(t, e, s)

	res, err := e.RunTurn(s, move(1), move(1))
	require.NoError(t, err)
	assert.True(t, res.Outcomes[0].Missed)
	assert.Equal(t, battle.StatusNone, def.Status)
	assert.Equal(t, def.MaxHP, def.HP)
}

func TestSecondary_SkippedOnImmunity(t *testing.T) {
	e := newEngine(t, highRolls)
	thunder := withSecondary(battle.Move{ID: "thunderbolt", Name: "Thunderbolt", Type: "Electric",
		Category: battle.Special, BasePower: 90, Accuracy: 100, Target: "normal", PP: 15, MaxPP: 15},
		battle.Secondary{Chance: 100, Status: battle.StatusParalysis})
	att := mon("Jolteon", []string{"Electric"}, quick, thunder)
	def := mon("Garchomp", []string{"Dragon", "Ground"}, bulky, swordsDance)
	s := newBattle(t, []*battle.Pokemon{att}, []*battle.Pokemon{def})
	started(t, e, s)

	res, err := e.RunTurn(s, move(1), move(1))
	require.NoError(t, err)
	assert.Zero(t, res.Outcomes[0].Effectiveness)
	assert.Zero(t, res.Outcomes[0].Damage)
	assert.Equal(t, battle.StatusNone, def.Status)
	assert.Contains(t, res.Lines, "|-immune|p2a: Garchomp")
}

func TestSecondary_PartialChanceRollsOnceAndCanFail(t *testing.T) {
	e, src := recordingEngine(highRolls)
	ember := withSecondary(battle.Move{ID: "ember", Name: "Ember", Type: "Fire",
		Category: battle.Special, BasePower: 40, Accuracy: 100, Target: "normal", PP: 25, MaxPP: 25},
		battle.Secondary{Chance: 30, Status: battle.StatusBurn})
	att := mon("Arcanine", []string{"Fire"}, quick, ember)
	def := mon("Snorlax", []string{"Normal"}, bulky, swordsDance)
	s := newBattle(t, []*battle.Pokemon{att}, []*battle.Pokemon{def})
	started(t, e, s)
	src.sides = nil

	res, err := e.RunTurn(s, move(1), move(1))
	require.NoError(t, err)
	require.Positive(t, res.Outcomes[0].Damage)
	// accuracy, critical, damage spread, then exactly one secondary roll (96 > 30)
	assert.Equal(t, []int{100, 24, 16, 100}, src.sides)
	assert.Equal(t, battle.StatusNone, def.Status)
}

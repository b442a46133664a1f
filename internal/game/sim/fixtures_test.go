package sim_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cory-johannsen/battlesim/internal/game/battle"
	"github.com/cory-johannsen/battlesim/internal/game/dice"
	"github.com/cory-johannsen/battlesim/internal/game/sim"
)

// fixedSrc always returns v mod n. With v = 95: Percent() = 96, no critical
// hit, damage spread 100, CoinFlip() false, Between(1, 3) = 3.
type fixedSrc struct{ v int }

func (f fixedSrc) Intn(n int) int { return f.v % n }

const (
	highRolls = 95
	lowRolls  = 10 // Percent() = 11, CoinFlip() true
)

var (
	tackle = battle.Move{ID: "tackle", Name: "Tackle", Type: "Normal", Category: battle.Physical,
		BasePower: 40, Accuracy: 100, Target: "normal", PP: 35, MaxPP: 35}
	quickAttack = battle.Move{ID: "quickattack", Name: "Quick Attack", Type: "Normal", Category: battle.Physical,
		BasePower: 40, Accuracy: 100, Priority: 1, Target: "normal", PP: 30, MaxPP: 30}
	swordsDance = battle.Move{ID: "swordsdance", Name: "Swords Dance", Type: "Normal", Category: battle.StatusCategory,
		Accuracy: battle.AlwaysHits, Target: "self", Boosts: []battle.BoostDelta{{Stat: battle.StatAtk, Delta: 2}}, PP: 20, MaxPP: 20}
	thunderWave = battle.Move{ID: "thunderwave", Name: "Thunder Wave", Type: "Electric", Category: battle.StatusCategory,
		Accuracy: 90, Target: "normal", Status: battle.StatusParalysis, PP: 20, MaxPP: 20}
	flamethrower = battle.Move{ID: "flamethrower", Name: "Flamethrower", Type: "Fire", Category: battle.Special,
		BasePower: 90, Accuracy: 100, Target: "normal", PP: 15, MaxPP: 15,
		Secondary: &battle.Secondary{Chance: 100, Status: battle.StatusBurn}}
	shadowBall = battle.Move{ID: "shadowball", Name: "Shadow Ball", Type: "Ghost", Category: battle.Special,
		BasePower: 80, Accuracy: 100, Target: "normal", PP: 15, MaxPP: 15}
	doubleEdge = battle.Move{ID: "doubleedge", Name: "Double-Edge", Type: "Normal", Category: battle.Physical,
		BasePower: 120, Accuracy: 100, Target: "normal", PP: 15, MaxPP: 15, Recoil: [2]int{33, 100}}
	rainDance = battle.Move{ID: "raindance", Name: "Rain Dance", Type: "Water", Category: battle.StatusCategory,
		Accuracy: battle.AlwaysHits, Target: "all", Weather: "raindance", PP: 5, MaxPP: 5}
	hypnosis = battle.Move{ID: "hypnosis", Name: "Hypnosis", Type: "Psychic", Category: battle.StatusCategory,
		Accuracy: 100, Target: "normal", Status: battle.StatusSleep, PP: 20, MaxPP: 20}
)

func mon(name string, types []string, stats battle.StatTable, moves ...battle.Move) *battle.Pokemon {
	return &battle.Pokemon{
		Name: name, Species: name, Level: 50, Types: types, Stats: stats,
		HP: stats[battle.StatHP], MaxHP: stats[battle.StatHP],
		Moves: append([]battle.Move(nil), moves...),
	}
}

func newEngine(t testing.TB, v int) *sim.Engine {
	t.Helper()
	logger := zap.NewNop()
	return sim.NewEngine(dice.NewLoggedRoller(fixedSrc{v: v}, logger), nil, logger)
}

func newBattle(t testing.TB, p1, p2 []*battle.Pokemon) *battle.State {
	t.Helper()
	s := battle.NewState("p1", zap.NewNop())
	require.NoError(t, s.SeedTeam("p1", p1))
	require.NoError(t, s.SeedTeam("p2", p2))
	return s
}

func started(t testing.TB, e *sim.Engine, s *battle.State) []string {
	t.Helper()
	lines, err := e.Start(s)
	require.NoError(t, err)
	return lines
}

func move(slot int) battle.Action { return battle.Action{Kind: battle.ActionMove, Slot: slot} }

func switchTo(slot int) battle.Action { return battle.Action{Kind: battle.ActionSwitch, Slot: slot} }

func indexOf(lines []string, prefix string) int {
	for i, l := range lines {
		if len(l) >= len(prefix) && l[:len(prefix)] == prefix {
			return i
		}
	}
	return -1
}

package damage

import (
	"slices"

	"github.com/cory-johannsen/battlesim/internal/game/battle"
)

// Hooks lets abilities adjust the effective attack and defense values
// feeding the base damage formula.
type Hooks interface {
	ModifyAttack(attacker, defender *battle.Pokemon, move battle.Move, value int) int
	ModifyDefense(attacker, defender *battle.Pokemon, move battle.Move, value int) int
}

// Input carries the per-hit inputs that are not part of either Pokémon.
type Input struct {
	Weather  string
	Critical bool
	Random   int // 85..100
}

// Result describes one damage computation.
type Result struct {
	Damage        int
	Effectiveness float64
	Critical      bool
	Attack        int
	Defense       int
}

// Calculate computes the damage move deals from attacker to defender. Status
// moves, zero-power moves, immunities, and a non-positive effective defense
// all produce zero damage.
//
// Precondition: in.Random in [85, 100].
func Calculate(attacker, defender *battle.Pokemon, move battle.Move, in Input, hooks Hooks) Result {
	res := Result{Critical: in.Critical}
	if move.IsStatus() || move.BasePower <= 0 {
		res.Effectiveness = 1
		return res
	}
	res.Effectiveness = Effectiveness(move.Type, defender.Types)
	if res.Effectiveness == 0 {
		return res
	}

	atkStat, defStat := battle.StatAtk, battle.StatDef
	if move.Category == battle.Special {
		atkStat, defStat = battle.StatSpA, battle.StatSpD
	}
	res.Attack = EffectiveStat(attacker, atkStat, Offense, in.Critical)
	res.Defense = EffectiveStat(defender, defStat, Defense, in.Critical)
	if hooks != nil {
		res.Attack = hooks.ModifyAttack(attacker, defender, move, res.Attack)
		res.Defense = hooks.ModifyDefense(attacker, defender, move, res.Defense)
	}
	if res.Defense <= 0 {
		return res
	}

	base := BaseDamage(attacker.Level, move.BasePower, res.Attack, res.Defense)
	res.Damage = ApplyModifiers(base, Modifiers{
		MoveType:      move.Type,
		Weather:       in.Weather,
		Critical:      in.Critical,
		Random:        in.Random,
		STAB:          move.Type != "???" && slices.Contains(attacker.Types, move.Type),
		Effectiveness: res.Effectiveness,
		Burned:        attacker.Status == battle.StatusBurn && move.Category == battle.Physical,
	})
	return res
}

// Range returns the minimum and maximum non-critical damage, for heuristics.
func Range(attacker, defender *battle.Pokemon, move battle.Move, weather string, hooks Hooks) (lo, hi int) {
	lo = Calculate(attacker, defender, move, Input{Weather: weather, Random: 85}, hooks).Damage
	hi = Calculate(attacker, defender, move, Input{Weather: weather, Random: 100}, hooks).Damage
	return lo, hi
}

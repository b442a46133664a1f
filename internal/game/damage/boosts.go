package damage

import "github.com/cory-johannsen/battlesim/internal/game/battle"

// boostTable maps |stage| to a multiplier numerator over 2:
// [1.0, 1.5, 2.0, 2.5, 3.0, 3.5, 4.0].
var boostTable = [7]int{2, 3, 4, 5, 6, 7, 8}

// BoostMultiplier returns the multiplier for a stage as a float, for display
// and heuristics. Damage math uses ApplyStage.
func BoostMultiplier(stage int) float64 {
	stage = max(battle.MinStage, min(battle.MaxStage, stage))
	if stage >= 0 {
		return float64(boostTable[stage]) / 2
	}
	return 2 / float64(boostTable[-stage])
}

// ApplyStage multiplies value by the stage multiplier for positive stages and
// divides by it for negative ones, truncating.
func ApplyStage(value, stage int) int {
	stage = max(battle.MinStage, min(battle.MaxStage, stage))
	if stage >= 0 {
		return value * boostTable[stage] / 2
	}
	return value * 2 / boostTable[-stage]
}

// Role says which side of the formula a stat feeds.
type Role int

const (
	Offense Role = iota
	Defense
)

// EffectiveStat reads p's stat with its boost stage applied. On a critical
// hit a negative offensive stage and a positive defensive stage both count as
// zero.
func EffectiveStat(p *battle.Pokemon, stat battle.Stat, role Role, critical bool) int {
	stage := p.Boosts.Get(stat)
	if critical {
		if role == Offense && stage < 0 {
			stage = 0
		}
		if role == Defense && stage > 0 {
			stage = 0
		}
	}
	return ApplyStage(p.Stats[stat], stage)
}

// AccuracyMultiplier returns the hit-chance multiplier for the net stage
// (attacker accuracy minus defender evasion) as num/den: (3+s)/3 or 3/(3-s).
func AccuracyMultiplier(stage int) (num, den int) {
	stage = max(battle.MinStage, min(battle.MaxStage, stage))
	if stage >= 0 {
		return 3 + stage, 3
	}
	return 3, 3 - stage
}

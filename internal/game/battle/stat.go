// Package battle holds the battle data model and the state tracker that folds
// protocol events, or direct mutations from the simulator, into a snapshot.
package battle

import "fmt"

// Stat identifies a derived stat or a boostable stat.
type Stat int

const (
	StatHP Stat = iota
	StatAtk
	StatDef
	StatSpA
	StatSpD
	StatSpe
	StatAccuracy
	StatEvasion
	numStats
)

// MinStage and MaxStage bound every boost stage.
const (
	MinStage = -6
	MaxStage = 6
)

var statIDs = [numStats]string{"hp", "atk", "def", "spa", "spd", "spe", "accuracy", "evasion"}

// String returns the engine's short stat identifier.
func (s Stat) String() string {
	if s < 0 || s >= numStats {
		return fmt.Sprintf("Stat(%d)", int(s))
	}
	return statIDs[s]
}

// ParseStat maps a short identifier such as "spa" to a Stat.
func ParseStat(id string) (Stat, bool) {
	for i, s := range statIDs {
		if s == id {
			return Stat(i), true
		}
	}
	return 0, false
}

// BoostableStats lists the seven stats that carry a boost stage.
var BoostableStats = []Stat{StatAtk, StatDef, StatSpA, StatSpD, StatSpe, StatAccuracy, StatEvasion}

// StatTable holds the six base or derived stats, indexed StatHP..StatSpe.
type StatTable [6]int

// Boosts holds a boost stage per stat. The StatHP entry is always zero.
type Boosts [numStats]int

// Get returns the stage for s.
func (b Boosts) Get(s Stat) int { return b[s] }

func clampStage(v int) int {
	return max(MinStage, min(MaxStage, v))
}

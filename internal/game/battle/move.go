package battle

// Category is a move's damage class.
type Category int

const (
	Physical Category = iota
	Special
	StatusCategory
)

// String returns the category name as the dex spells it.
func (c Category) String() string {
	switch c {
	case Physical:
		return "physical"
	case Special:
		return "special"
	default:
		return "status"
	}
}

// ParseCategory reads "physical", "special" or "status".
func ParseCategory(s string) (Category, bool) {
	switch s {
	case "physical", "Physical":
		return Physical, true
	case "special", "Special":
		return Special, true
	case "status", "Status":
		return StatusCategory, true
	}
	return Physical, false
}

// AlwaysHits is the Accuracy sentinel for moves that skip the accuracy check.
const AlwaysHits = -1

// BoostDelta is one stage change in a move's boost payload.
type BoostDelta struct {
	Stat  Stat
	Delta int
}

// Secondary is the optional extra effect rolled after a damaging hit.
type Secondary struct {
	Chance     int // percent; 100 means guaranteed
	Status     Status
	Volatile   string
	Boosts     []BoostDelta // applied to the defender
	SelfBoosts []BoostDelta // applied to the attacker
}

// Move is a move's static data plus remaining PP for one user.
type Move struct {
	ID        string
	Name      string
	Type      string
	Category  Category
	BasePower int
	Accuracy  int // percent, or AlwaysHits
	Priority  int
	// Target is the engine target identifier: "normal", "self", "allAdjacentFoes" ...
	Target string
	// Boosts is the stage payload of a status move, applied to Target.
	Boosts []BoostDelta
	// Status is inflicted on Target by a status move.
	Status Status
	// Weather is started by the move, e.g. "raindance".
	Weather string
	// SideCondition is started on the user's side when Target is "allySide",
	// otherwise on the foe's side.
	SideCondition string
	Secondary     *Secondary
	// Recoil is the fraction of damage dealt returned to the user, as num/den.
	Recoil [2]int
	Drain  [2]int
	PP     int
	MaxPP  int
}

// IsStatus reports whether the move deals no direct damage.
func (m Move) IsStatus() bool { return m.Category == StatusCategory }

// TargetsSelf reports whether the move's payload lands on its user.
func (m Move) TargetsSelf() bool {
	return m.Target == "self" || m.Target == "adjacentAllyOrSelf" || m.Target == "allySide"
}

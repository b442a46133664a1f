package damage

// MaxDamage is the 16-bit ceiling on a single hit.
const MaxDamage = 0xFFFF

// Weather groups that change fire and water damage.
var (
	sunWeathers  = map[string]bool{"sunnyday": true, "desolateland": true}
	rainWeathers = map[string]bool{"raindance": true, "primordialsea": true}
)

// BaseDamage is floor(floor(floor(floor(2*level/5 + 2) * power * attack) / defense) / 50).
// Every step truncates.
//
// Postcondition: returns 0 when power or defense is not positive.
func BaseDamage(level, power, attack, defense int) int {
	if power <= 0 || defense <= 0 || attack <= 0 {
		return 0
	}
	return (2*level/5 + 2) * power * attack / defense / 50
}

// Modifiers are the inputs to ApplyModifiers.
type Modifiers struct {
	MoveType      string
	Weather       string
	Critical      bool
	Random        int // 85..100
	STAB          bool
	Effectiveness float64
	Burned        bool // attacker burned and the move is physical
}

// ApplyModifiers runs the modifier pipeline over base damage in its fixed
// order, truncating after each step: +2, weather, critical, random factor,
// STAB, effectiveness doublings/halvings, burn, then 16-bit truncation and a
// floor of 1.
//
// Postcondition: returns 0 iff Effectiveness == 0; otherwise 1..MaxDamage.
func ApplyModifiers(base int, m Modifiers) int {
	if m.Effectiveness == 0 {
		return 0
	}
	d := base + 2

	switch {
	case sunWeathers[m.Weather] && m.MoveType == "Fire", rainWeathers[m.Weather] && m.MoveType == "Water":
		d = d * 3 / 2
	case sunWeathers[m.Weather] && m.MoveType == "Water", rainWeathers[m.Weather] && m.MoveType == "Fire":
		d = d / 2
	}

	if m.Critical {
		d = d * 3 / 2
	}

	d = d * m.Random / 100

	if m.STAB {
		d = d * 3 / 2
	}

	steps := EffectivenessSteps(m.Effectiveness)
	for ; steps > 0; steps-- {
		d *= 2
	}
	for ; steps < 0; steps++ {
		d /= 2
	}

	if m.Burned {
		d /= 2
	}

	d &= MaxDamage
	return max(1, d)
}

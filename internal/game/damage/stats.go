// Package damage reproduces the battle damage formula with integer
// truncation at every step: stat derivation, boost multipliers, type
// effectiveness, base damage, and the ordered modifier pipeline.
package damage

// Nature is a stat multiplier expressed in tenths so that the final floor is
// exact: NatureNeutral is 1.0, NatureBoosting 1.1, NatureHindering 0.9.
type Nature int

const (
	NatureHindering Nature = 9
	NatureNeutral   Nature = 10
	NatureBoosting  Nature = 11
)

// Default stat inputs.
const (
	DefaultIV = 31
	DefaultEV = 0
)

// CalcStat derives a non-HP stat:
// floor((floor((2*base + iv + floor(ev/4)) * level / 100) + 5) * nature).
//
// Postcondition: result >= 1.
func CalcStat(base, level, iv, ev int, nature Nature) int {
	raw := (2*base+iv+ev/4)*level/100 + 5
	return max(1, raw*int(nature)/10)
}

// CalcHP derives the HP stat: floor((2*base + iv + floor(ev/4)) * level / 100) + level + 10.
//
// Postcondition: result >= 1.
func CalcHP(base, level, iv, ev int) int {
	return max(1, (2*base+iv+ev/4)*level/100+level+10)
}

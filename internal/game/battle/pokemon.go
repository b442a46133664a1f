package battle

import (
	"slices"

	"github.com/cory-johannsen/battlesim/internal/protocol"
)

// SourceRef points at the Pokémon that caused a volatile effect. It is an
// index into the owning side's team, never a live pointer, so the effect can
// outlive the source switching out or fainting.
type SourceRef struct {
	Side  string
	Index int
}

// Volatile is a temporary effect cleared when its holder switches out.
type Volatile struct {
	ID     string
	Turns  int // remaining turns; 0 means no counter
	Source *SourceRef
}

// Pokemon is one team member.
//
// Invariant: Fainted == (HP == 0) once MaxHP is known; every boost stage is in
// [MinStage, MaxStage]; Stats is never recomputed mid-battle.
type Pokemon struct {
	Name    string // the name shown in identifiers; usually the species
	Species string
	Level   int
	Gender  string
	Shiny   bool
	Types   []string
	Base    StatTable
	Stats   StatTable

	HP    int
	MaxHP int

	Status Status
	// StatusTurns counts sleep turns remaining or toxic turns elapsed.
	StatusTurns int

	Boosts    Boosts
	Volatiles []Volatile
	Ability   string
	Item      string
	Moves     []Move
	Fainted   bool
	Active    bool
	// SwitchedIn is set when the Pokémon entered this turn; switch-in hooks
	// consume it so they fire once per entry.
	SwitchedIn bool
}

// Alive reports whether the Pokémon can still battle.
func (p *Pokemon) Alive() bool { return !p.Fainted && p.HP > 0 }

// HasType reports whether t is one of the Pokémon's types.
func (p *Pokemon) HasType(t string) bool {
	return slices.Contains(p.Types, t)
}

// BoostBy adds delta to the stage of s, clamping to [MinStage, MaxStage].
//
// Precondition: s is a boostable stat (not StatHP).
// Postcondition: returns the delta actually applied; 0 means the stage was
// already at its cap in the requested direction.
func (p *Pokemon) BoostBy(s Stat, delta int) int {
	if s <= StatHP || s >= numStats {
		return 0
	}
	before := p.Boosts[s]
	p.Boosts[s] = clampStage(before + delta)
	return p.Boosts[s] - before
}

// SetBoost sets the stage of s, clamped.
func (p *Pokemon) SetBoost(s Stat, stage int) {
	if s <= StatHP || s >= numStats {
		return
	}
	p.Boosts[s] = clampStage(stage)
}

// ClearBoosts resets every stage to zero.
func (p *Pokemon) ClearBoosts() { p.Boosts = Boosts{} }

// SetHP sets current HP and maintains the fainted invariant.
//
// Postcondition: 0 <= HP <= MaxHP; Fainted == (HP == 0).
func (p *Pokemon) SetHP(hp int) {
	p.HP = max(0, min(hp, p.MaxHP))
	if p.HP == 0 {
		p.Faint()
		return
	}
	p.Fainted = false
	if p.Status == StatusFainted {
		p.Status = StatusNone
	}
}

// Damage removes up to n HP and returns the amount removed.
func (p *Pokemon) Damage(n int) int {
	n = max(0, min(n, p.HP))
	p.SetHP(p.HP - n)
	return n
}

// Heal restores up to n HP and returns the amount restored.
func (p *Pokemon) Heal(n int) int {
	if p.Fainted {
		return 0
	}
	n = max(0, min(n, p.MaxHP-p.HP))
	p.SetHP(p.HP + n)
	return n
}

// Faint zeroes HP and marks the Pokémon fainted.
func (p *Pokemon) Faint() {
	p.HP = 0
	p.Fainted = true
	p.Status = StatusFainted
	p.StatusTurns = 0
}

// SetStatus replaces the primary status. It refuses to overwrite the fainted marker.
func (p *Pokemon) SetStatus(s Status) {
	if p.Fainted {
		return
	}
	p.Status = s
	p.StatusTurns = 0
}

// AddVolatile attaches v, replacing any existing effect with the same ID.
func (p *Pokemon) AddVolatile(v Volatile) {
	p.RemoveVolatile(v.ID)
	p.Volatiles = append(p.Volatiles, v)
}

// RemoveVolatile detaches the effect with the given ID and reports whether it was present.
func (p *Pokemon) RemoveVolatile(id string) bool {
	i := slices.IndexFunc(p.Volatiles, func(v Volatile) bool { return v.ID == id })
	if i < 0 {
		return false
	}
	p.Volatiles = slices.Delete(p.Volatiles, i, i+1)
	return true
}

// HasVolatile reports whether an effect with the given ID is attached.
func (p *Pokemon) HasVolatile(id string) bool {
	return slices.ContainsFunc(p.Volatiles, func(v Volatile) bool { return v.ID == id })
}

// SwitchOut clears everything that does not persist off the field.
func (p *Pokemon) SwitchOut() {
	p.Active = false
	p.SwitchedIn = false
	p.ClearBoosts()
	p.Volatiles = nil
	if p.Status == StatusToxic {
		p.StatusTurns = 0
	}
}

// FindMove returns the index of the move with the given ID, or -1.
func (p *Pokemon) FindMove(id string) int {
	return slices.IndexFunc(p.Moves, func(m Move) bool { return m.ID == id })
}

// Details renders the Pokémon's details string.
func (p *Pokemon) Details() protocol.Details {
	return protocol.Details{Species: p.Species, Level: p.Level, Gender: p.Gender, Shiny: p.Shiny}
}

// Condition renders the Pokémon's condition string.
func (p *Pokemon) Condition() protocol.Condition {
	c := protocol.Condition{HP: p.HP, MaxHP: p.MaxHP}
	if p.Status != StatusNone && p.Status != StatusFainted {
		c.Status = p.Status.String()
	}
	return c
}

package battle

import (
	"slices"

	"github.com/cory-johannsen/battlesim/internal/protocol"
)

// MaxTeamSize is the largest roster a side may hold.
const MaxTeamSize = 6

// Hazard layer caps.
const (
	MaxSpikes      = 3
	MaxToxicSpikes = 2
)

// Turn counts set when a timed side condition starts.
const (
	ScreenTurns   = 5
	TailwindTurns = 4
)

// SideConditions are the side-wide hazards and screens.
type SideConditions struct {
	Spikes      int
	ToxicSpikes int
	StealthRock bool
	StickyWeb   bool
	Reflect     int
	LightScreen int
	AuroraVeil  int
	Tailwind    int
}

// Side is one player's roster plus side-wide counters.
//
// Invariant: len(Team) <= MaxTeamSize; Team never shrinks; every entry of
// Active indexes Team.
type Side struct {
	ID         string
	Username   string
	TeamSize   int
	Team       []*Pokemon
	Active     []int
	Conditions SideConditions
}

// NewSide returns an empty side with one active slot unassigned.
func NewSide(id string) *Side {
	return &Side{ID: id}
}

// ActivePokemon returns the Pokémon in the first active slot, or nil.
func (s *Side) ActivePokemon() *Pokemon {
	if len(s.Active) == 0 {
		return nil
	}
	i := s.Active[0]
	if i < 0 || i >= len(s.Team) {
		return nil
	}
	return s.Team[i]
}

// ActiveIndex returns the team index in the first active slot, or -1.
func (s *Side) ActiveIndex() int {
	if len(s.Active) == 0 {
		return -1
	}
	return s.Active[0]
}

// Find returns the team index of the member named name, or -1.
func (s *Side) Find(name string) int {
	return slices.IndexFunc(s.Team, func(p *Pokemon) bool { return p.Name == name })
}

// Add appends p to the team.
//
// Postcondition: returns the new index, or -1 when the team is full.
func (s *Side) Add(p *Pokemon) int {
	if len(s.Team) >= MaxTeamSize {
		return -1
	}
	s.Team = append(s.Team, p)
	return len(s.Team) - 1
}

// Bench returns the indices of living members that are not active.
func (s *Side) Bench() []int {
	var out []int
	for i, p := range s.Team {
		if p.Alive() && !slices.Contains(s.Active, i) {
			out = append(out, i)
		}
	}
	return out
}

// AllFainted reports whether the side has no Pokémon left to battle.
// A side with no known members has not lost.
func (s *Side) AllFainted() bool {
	if len(s.Team) == 0 {
		return false
	}
	for _, p := range s.Team {
		if p.Alive() {
			return false
		}
	}
	return true
}

// SwitchIn places team member idx in the given active slot, switching out
// whoever held it.
//
// Precondition: 0 <= idx < len(Team); slot >= 0.
func (s *Side) SwitchIn(slot, idx int) {
	for len(s.Active) <= slot {
		s.Active = append(s.Active, -1)
	}
	if prev := s.Active[slot]; prev >= 0 && prev < len(s.Team) && prev != idx {
		s.Team[prev].SwitchOut()
	}
	s.Active[slot] = idx
	p := s.Team[idx]
	p.Active = true
	p.SwitchedIn = true
}

// StartCondition applies a side condition by its display or ID form.
// It reports whether the condition was recognised.
func (s *Side) StartCondition(name string) bool {
	c := &s.Conditions
	switch protocol.EffectID(name) {
	case "spikes":
		c.Spikes = min(MaxSpikes, c.Spikes+1)
	case "toxicspikes":
		c.ToxicSpikes = min(MaxToxicSpikes, c.ToxicSpikes+1)
	case "stealthrock":
		c.StealthRock = true
	case "stickyweb":
		c.StickyWeb = true
	case "reflect":
		c.Reflect = ScreenTurns
	case "lightscreen":
		c.LightScreen = ScreenTurns
	case "auroraveil":
		c.AuroraVeil = ScreenTurns
	case "tailwind":
		c.Tailwind = TailwindTurns
	default:
		return false
	}
	return true
}

// EndCondition clears a side condition.
func (s *Side) EndCondition(name string) bool {
	c := &s.Conditions
	switch protocol.EffectID(name) {
	case "spikes":
		c.Spikes = 0
	case "toxicspikes":
		c.ToxicSpikes = 0
	case "stealthrock":
		c.StealthRock = false
	case "stickyweb":
		c.StickyWeb = false
	case "reflect":
		c.Reflect = 0
	case "lightscreen":
		c.LightScreen = 0
	case "auroraveil":
		c.AuroraVeil = 0
	case "tailwind":
		c.Tailwind = 0
	default:
		return false
	}
	return true
}

// Tick counts down the timed side conditions by one turn.
func (s *Side) Tick() {
	c := &s.Conditions
	for _, n := range []*int{&c.Reflect, &c.LightScreen, &c.AuroraVeil, &c.Tailwind} {
		if *n > 0 {
			*n--
		}
	}
}

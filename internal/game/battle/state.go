package battle

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/battlesim/internal/protocol"
)

// State is one perspective's snapshot of a battle. It is not safe for
// concurrent use; a match owns each State exclusively.
type State struct {
	ID       uuid.UUID
	OurSide  string
	Us       *Side
	Opponent *Side
	Field    Field

	Turn     int
	Started  bool
	Finished bool
	Winner   string
	Tie      bool

	Format   string
	GameType string
	Gen      int
	Rated    bool
	Rules    []string

	// Request is the most recent legal-action payload for OurSide, if any.
	Request *protocol.Request

	logger *zap.Logger
}

// NewState builds an empty snapshot from the perspective of ourSide ("p1" or "p2").
//
// Precondition: ourSide is "p1" or "p2"; logger is non-nil.
func NewState(ourSide string, logger *zap.Logger) *State {
	return &State{
		ID:       uuid.New(),
		OurSide:  ourSide,
		Us:       NewSide(ourSide),
		Opponent: NewSide(OtherSide(ourSide)),
		logger:   logger.With(zap.String("perspective", ourSide)),
	}
}

// OtherSide returns the opposing side identifier.
func OtherSide(side string) string {
	if side == "p1" {
		return "p2"
	}
	return "p1"
}

// Side returns the side with the given identifier.
func (s *State) Side(id string) (*Side, bool) {
	switch id {
	case s.Us.ID:
		return s.Us, true
	case s.Opponent.ID:
		return s.Opponent, true
	}
	return nil, false
}

// Active returns the active Pokémon of the given side, or nil.
func (s *State) Active(side string) *Pokemon {
	sd, ok := s.Side(side)
	if !ok {
		return nil
	}
	return sd.ActivePokemon()
}

// SeedTeam installs a full roster on a side for the deterministic path.
// The first member becomes active.
//
// Precondition: 1 <= len(team) <= MaxTeamSize.
func (s *State) SeedTeam(side string, team []*Pokemon) error {
	sd, ok := s.Side(side)
	if !ok {
		return fmt.Errorf("battle: unknown side %q", side)
	}
	if len(team) == 0 || len(team) > MaxTeamSize {
		return fmt.Errorf("battle: team size %d out of range", len(team))
	}
	sd.Team = append(sd.Team[:0], team...)
	sd.TeamSize = len(team)
	sd.Active = nil
	sd.SwitchIn(0, 0)
	return nil
}

// SwitchTo moves team member idx into the first active slot.
func (s *State) SwitchTo(side string, idx int) error {
	sd, ok := s.Side(side)
	if !ok {
		return fmt.Errorf("battle: unknown side %q", side)
	}
	if idx < 0 || idx >= len(sd.Team) {
		return fmt.Errorf("battle: switch index %d out of range for %s", idx, side)
	}
	if !sd.Team[idx].Alive() {
		return fmt.Errorf("battle: %s cannot switch to fainted %s", side, sd.Team[idx].Name)
	}
	sd.SwitchIn(0, idx)
	return nil
}

// SetWeather sets the field weather.
func (s *State) SetWeather(name string, turns int) { s.Field.SetWeather(name, turns) }

// StartSideCondition starts a side condition on the given side.
func (s *State) StartSideCondition(side, cond string) bool {
	sd, ok := s.Side(side)
	return ok && sd.StartCondition(cond)
}

// Finish marks the battle over. An empty winner with tie set records a tie.
func (s *State) Finish(winner string, tie bool) {
	s.Finished = true
	s.Winner = winner
	s.Tie = tie
}

// RequestFor builds the legal-action payload the engine would send to side,
// from the snapshot's own knowledge. The deterministic path uses it so both
// paths answer LegalActions the same way.
func (s *State) RequestFor(side string) *protocol.Request {
	sd, ok := s.Side(side)
	if !ok || s.Finished {
		return nil
	}
	req := &protocol.Request{Side: protocol.RequestSide{ID: sd.ID, Name: sd.Username}}
	for _, p := range sd.Team {
		rp := protocol.RequestPokemon{
			Ident:     fmt.Sprintf("%s: %s", sd.ID, p.Name),
			Details:   p.Details().String(),
			Condition: p.Condition().String(),
			Active:    p.Active,
			Stats: map[string]int{
				"atk": p.Stats[StatAtk], "def": p.Stats[StatDef], "spa": p.Stats[StatSpA],
				"spd": p.Stats[StatSpD], "spe": p.Stats[StatSpe],
			},
			BaseAbility: p.Ability,
			Ability:     p.Ability,
			Item:        p.Item,
		}
		for _, m := range p.Moves {
			rp.Moves = append(rp.Moves, m.ID)
		}
		req.Side.Pokemon = append(req.Side.Pokemon, rp)
	}

	active := sd.ActivePokemon()
	switch {
	case active == nil:
		req.Wait = true
	case !active.Alive():
		if len(sd.Bench()) == 0 {
			req.Wait = true
		} else {
			req.ForceSwitch = []bool{true}
		}
	default:
		ar := protocol.ActiveRequest{Trapped: active.HasVolatile("trapped") || active.HasVolatile("partiallytrapped")}
		for _, m := range active.Moves {
			ar.Moves = append(ar.Moves, protocol.RequestMove{
				Move: m.Name, ID: m.ID, PP: m.PP, MaxPP: m.MaxPP, Target: m.Target,
				Disabled: protocol.FlexBool(m.PP <= 0),
			})
		}
		req.Active = []protocol.ActiveRequest{ar}
	}
	return req
}

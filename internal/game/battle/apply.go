package battle

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/battlesim/internal/protocol"
)

// ApplyLine decodes one protocol line and applies it.
func (s *State) ApplyLine(line string) {
	s.Apply(protocol.Decode(line))
}

// Apply folds one event into the snapshot. Events that address an unknown
// side or Pokémon are logged and dropped, leaving the snapshot unchanged;
// unrecognised events are no-ops.
func (s *State) Apply(ev protocol.Event) {
	switch e := ev.(type) {
	case *protocol.PlayerEvent:
		if sd, ok := s.side(e.Side, e); ok {
			sd.Username = e.Username
		}
	case *protocol.TeamSizeEvent:
		if sd, ok := s.side(e.Side, e); ok {
			sd.TeamSize = min(e.Size, MaxTeamSize)
		}
	case *protocol.GameTypeEvent:
		s.GameType = e.GameType
	case *protocol.GenEvent:
		s.Gen = e.Gen
	case *protocol.TierEvent:
		s.Format = e.Tier
	case *protocol.RatedEvent:
		s.Rated = true
	case *protocol.RuleEvent:
		s.Rules = append(s.Rules, e.Rule)
	case *protocol.PokeEvent:
		s.applyPoke(e)
	case *protocol.StartEvent:
		s.Started = true
	case *protocol.TurnEvent:
		s.Turn = e.Turn
	case *protocol.MoveEvent:
		s.applyMove(e)
	case *protocol.SwitchEvent:
		s.applySwitch(e)
	case *protocol.DetailsChangeEvent:
		if p, ok := s.resolve(e.Ident, e); ok {
			p.Species, p.Level = e.Details.Species, e.Details.Level
			if e.Condition.MaxHP > 0 {
				p.MaxHP = e.Condition.MaxHP
				p.SetHP(e.Condition.HP)
			}
		}
	case *protocol.FaintEvent:
		if p, ok := s.resolve(e.Ident, e); ok {
			p.Faint()
		}
	case *protocol.DamageEvent:
		if p, ok := s.resolve(e.Ident, e); ok {
			s.applyCondition(p, e.Condition)
		}
	case *protocol.HealEvent:
		if p, ok := s.resolve(e.Ident, e); ok {
			s.applyCondition(p, e.Condition)
		}
	case *protocol.StatusEvent:
		if p, ok := s.resolve(e.Ident, e); ok {
			st, known := ParseStatus(e.Status)
			if !known {
				s.drop("unknown status", e)
				return
			}
			p.SetStatus(st)
		}
	case *protocol.CureStatusEvent:
		if p, ok := s.resolve(e.Ident, e); ok {
			p.SetStatus(StatusNone)
		}
	case *protocol.BoostEvent:
		if p, ok := s.resolve(e.Ident, e); ok {
			if st, known := ParseStat(e.Stat); known {
				p.BoostBy(st, e.Amount)
			}
		}
	case *protocol.SetBoostEvent:
		if p, ok := s.resolve(e.Ident, e); ok {
			if st, known := ParseStat(e.Stat); known {
				p.SetBoost(st, e.Stage)
			}
		}
	case *protocol.ClearAllBoostEvent:
		for _, sd := range []*Side{s.Us, s.Opponent} {
			if p := sd.ActivePokemon(); p != nil {
				p.ClearBoosts()
			}
		}
	case *protocol.WeatherEvent:
		switch {
		case e.Upkeep:
			if s.Field.WeatherTurns > 1 {
				s.Field.WeatherTurns--
			}
		default:
			s.Field.SetWeather(e.Weather, WeatherTurns)
		}
	case *protocol.FieldStartEvent:
		s.Field.StartEffect(e.Condition)
	case *protocol.FieldEndEvent:
		s.Field.EndEffect(e.Condition)
	case *protocol.SideStartEvent:
		if sd, ok := s.side(e.Side, e); ok {
			sd.StartCondition(e.Condition)
		}
	case *protocol.SideEndEvent:
		if sd, ok := s.side(e.Side, e); ok {
			sd.EndCondition(e.Condition)
		}
	case *protocol.VolatileStartEvent:
		if p, ok := s.resolve(e.Ident, e); ok {
			v := Volatile{ID: protocol.EffectID(e.Effect)}
			if e.Of.Side != "" {
				if sd, ok := s.Side(e.Of.Side); ok {
					if idx := sd.Find(e.Of.Name); idx >= 0 {
						v.Source = &SourceRef{Side: sd.ID, Index: idx}
					}
				}
			}
			p.AddVolatile(v)
		}
	case *protocol.VolatileEndEvent:
		if p, ok := s.resolve(e.Ident, e); ok {
			p.RemoveVolatile(protocol.EffectID(e.Effect))
		}
	case *protocol.AbilityEvent:
		if p, ok := s.resolve(e.Ident, e); ok {
			p.Ability = protocol.ToID(e.Ability)
		}
	case *protocol.ItemEvent:
		if p, ok := s.resolve(e.Ident, e); ok {
			if e.Ended {
				p.Item = ""
			} else {
				p.Item = protocol.ToID(e.Item)
			}
		}
	case *protocol.WinEvent:
		s.Finish(e.Winner, false)
	case *protocol.TieEvent:
		s.Finish("", true)
	case *protocol.RequestEvent:
		s.applyRequest(e)
	case *protocol.UnknownEvent:
		s.logger.Debug("unrecognised protocol line", zap.String("raw", e.Raw))
	}
}

func (s *State) drop(reason string, ev protocol.Event) {
	s.logger.Warn("dropping protocol event",
		zap.String("reason", reason),
		zap.String("kind", ev.Kind()),
	)
}

func (s *State) side(id string, ev protocol.Event) (*Side, bool) {
	sd, ok := s.Side(id)
	if !ok {
		s.drop("unknown side "+id, ev)
	}
	return sd, ok
}

// resolve maps "p1a: Name" to a team member: by name first, then by the
// Pokémon currently in the addressed active slot.
func (s *State) resolve(id protocol.Ident, ev protocol.Event) (*Pokemon, bool) {
	sd, ok := s.side(id.Side, ev)
	if !ok {
		return nil, false
	}
	if idx := sd.Find(id.Name); idx >= 0 {
		return sd.Team[idx], true
	}
	if id.Slot >= 0 && id.Slot < len(sd.Active) {
		if idx := sd.Active[id.Slot]; idx >= 0 && idx < len(sd.Team) {
			return sd.Team[idx], true
		}
	}
	s.drop("unresolved pokemon "+id.Raw, ev)
	return nil, false
}

func (s *State) applyCondition(p *Pokemon, c protocol.Condition) {
	if c.MaxHP > 0 {
		p.MaxHP = c.MaxHP
	}
	if c.Fainted() {
		p.Faint()
		return
	}
	p.SetHP(c.HP)
	if c.Status != "" {
		if st, ok := ParseStatus(c.Status); ok {
			p.SetStatus(st)
		}
	}
}

func (s *State) applyPoke(e *protocol.PokeEvent) {
	sd, ok := s.side(e.Side, e)
	if !ok {
		return
	}
	p := &Pokemon{Species: e.Details.Species, Level: e.Details.Level, Gender: e.Details.Gender, Shiny: e.Details.Shiny, HP: 100, MaxHP: 100}
	if sd.Add(p) < 0 {
		s.drop("team full", e)
	}
}

func (s *State) applySwitch(e *protocol.SwitchEvent) {
	sd, ok := s.side(e.Ident.Side, e)
	if !ok {
		return
	}
	idx := sd.Find(e.Ident.Name)
	if idx < 0 {
		// A preview-only entry has a species but no name yet.
		for i, p := range sd.Team {
			if p.Name == "" && p.Species == e.Details.Species {
				idx = i
				break
			}
		}
	}
	if idx < 0 {
		idx = sd.Add(&Pokemon{})
		if idx < 0 {
			s.drop("team full", e)
			return
		}
	}
	p := sd.Team[idx]
	p.Name = e.Ident.Name
	p.Species = e.Details.Species
	p.Level = e.Details.Level
	p.Gender = e.Details.Gender
	p.Shiny = e.Details.Shiny
	p.Fainted = false
	if p.Status == StatusFainted {
		p.Status = StatusNone
	}

	sd.SwitchIn(max(e.Ident.Slot, 0), idx)
	s.applyCondition(p, e.Condition)
}

func (s *State) applyMove(e *protocol.MoveEvent) {
	sd, ok := s.Side(e.Source.Side)
	if !ok {
		s.drop("unknown side "+e.Source.Side, e)
		return
	}
	idx := sd.Find(e.Source.Name)
	if idx < 0 {
		return
	}
	p := sd.Team[idx]
	id := protocol.ToID(e.Move)
	if p.FindMove(id) < 0 && len(p.Moves) < 4 {
		p.Moves = append(p.Moves, Move{ID: id, Name: e.Move})
	}
}

// applyRequest stores the payload and rebuilds our side from it, since our
// own stats, moves, ability, and item are otherwise unknown until revealed.
func (s *State) applyRequest(e *protocol.RequestEvent) {
	req, err := protocol.ParseRequest(e.Raw)
	if err != nil {
		s.logger.Warn("dropping malformed request", zap.Error(err))
		return
	}
	if req.Side.ID != "" && req.Side.ID != s.OurSide {
		s.drop("request for other side "+req.Side.ID, e)
		return
	}
	s.Request = req
	if req.Side.Name != "" {
		s.Us.Username = req.Side.Name
	}

	for _, rp := range req.Side.Pokemon {
		name := protocol.ParseIdent(rp.Ident).Name
		details := protocol.ParseDetails(rp.Details)
		idx := s.Us.Find(name)
		if idx < 0 {
			for i, p := range s.Us.Team {
				if p.Name == "" && p.Species == details.Species {
					idx = i
					break
				}
			}
		}
		if idx < 0 {
			if idx = s.Us.Add(&Pokemon{}); idx < 0 {
				s.drop("team full", e)
				continue
			}
		}
		p := s.Us.Team[idx]
		p.Name = name
		p.Species, p.Level, p.Gender, p.Shiny = details.Species, details.Level, details.Gender, details.Shiny

		if c, err := protocol.ParseCondition(rp.Condition); err == nil {
			s.applyCondition(p, c)
			// No status token in a request condition means cured.
			if c.Status == "" && !p.Fainted {
				p.SetStatus(StatusNone)
			}
		}
		if rp.Active {
			if s.Us.ActiveIndex() != idx {
				s.Us.SwitchIn(0, idx)
			}
		}
		p.Active = rp.Active

		if len(rp.Stats) > 0 {
			p.Stats[StatHP] = p.MaxHP
			for id, v := range rp.Stats {
				if st, ok := ParseStat(id); ok && st <= StatSpe {
					p.Stats[st] = v
				}
			}
		}
		if len(rp.Moves) > 0 {
			moves := make([]Move, 0, len(rp.Moves))
			for _, id := range rp.Moves {
				if i := p.FindMove(id); i >= 0 {
					moves = append(moves, p.Moves[i])
				} else {
					moves = append(moves, Move{ID: id})
				}
			}
			p.Moves = moves
		}
		if rp.Ability != "" {
			p.Ability = rp.Ability
		} else if rp.BaseAbility != "" {
			p.Ability = rp.BaseAbility
		}
		if rp.Item != "" || p.Item != "" {
			p.Item = rp.Item
		}
	}
}

package sim

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/battlesim/internal/game/battle"
)

// endOfTurn applies residual damage, counts down the field and both sides,
// decides the result, and replaces fainted actives.
func (e *Engine) endOfTurn(s *battle.State, l *turnLog) {
	for _, id := range residualOrder(s) {
		e.residual(s, l, id)
	}

	if s.Field.Weather != "" {
		weather := s.Field.Weather
		if s.Field.Tick() {
			l.add("-weather", "none")
		} else {
			l.add("-weather", weather, "[upkeep]")
		}
	}
	for _, id := range []string{"p1", "p2"} {
		sd, _ := s.Side(id)
		e.tickSide(l, sd)
		if p := sd.ActivePokemon(); p != nil {
			p.RemoveVolatile("flinch")
		}
	}
	l.add("upkeep")

	if e.decide(s, l) {
		return
	}
	for _, id := range []string{"p1", "p2"} {
		sd, _ := s.Side(id)
		if p := sd.ActivePokemon(); p != nil && p.Alive() {
			continue
		}
		if bench := sd.Bench(); len(bench) > 0 {
			e.switchIn(s, l, id, bench[0])
		}
	}
	e.switchInHooks(s, l)
	// Hazards on replacement can end the battle.
	e.decide(s, l)
}

// residualOrder lists the sides with a living active, fastest first.
func residualOrder(s *battle.State) []string {
	var out []*choice
	for _, id := range []string{"p1", "p2"} {
		if p := s.Active(id); p != nil && p.Alive() {
			out = append(out, &choice{side: id, actor: p})
		}
	}
	if len(out) == 2 && compareSpeed(s, out[0], out[1]) < 0 {
		out[0], out[1] = out[1], out[0]
	}
	ids := make([]string, len(out))
	for i, c := range out {
		ids[i] = c.side
	}
	return ids
}

// residual applies burn, poison and toxic damage to side's active.
func (e *Engine) residual(s *battle.State, l *turnLog, side string) {
	p := s.Active(side)
	var n int
	switch p.Status {
	case battle.StatusBurn:
		n = p.MaxHP / 16
	case battle.StatusPoison:
		n = p.MaxHP / 8
	case battle.StatusToxic:
		p.StatusTurns++
		n = p.MaxHP * min(p.StatusTurns, 15) / 16
	default:
		return
	}
	p.Damage(max(1, n))
	l.add("-damage", ident(side, p), p.Condition().String(), "[from] "+p.Status.String())
	if !p.Alive() {
		l.add("faint", ident(side, p))
	}
}

// tickSide counts down timed side conditions and announces the ones that end.
func (e *Engine) tickSide(l *turnLog, sd *battle.Side) {
	before := sd.Conditions
	sd.Tick()
	after := sd.Conditions
	ended := []struct {
		name          string
		before, after int
	}{
		{"Reflect", before.Reflect, after.Reflect},
		{"Light Screen", before.LightScreen, after.LightScreen},
		{"Aurora Veil", before.AuroraVeil, after.AuroraVeil},
		{"Tailwind", before.Tailwind, after.Tailwind},
	}
	for _, c := range ended {
		if c.before > 0 && c.after == 0 {
			l.add("-sideend", sideLabel(sd), c.name)
		}
	}
}

// decide records a win or tie once a side has nothing left to battle.
func (e *Engine) decide(s *battle.State, l *turnLog) bool {
	if s.Finished {
		return true
	}
	p1, _ := s.Side("p1")
	p2, _ := s.Side("p2")
	p1Out, p2Out := p1.AllFainted(), p2.AllFainted()
	switch {
	case p1Out && p2Out:
		l.add("tie")
		s.Finish("", true)
	case p1Out:
		l.add("win", username(p2))
		s.Finish(username(p2), false)
	case p2Out:
		l.add("win", username(p1))
		s.Finish(username(p1), false)
	default:
		return false
	}
	e.logger.Info("battle finished",
		zap.String("battle", s.ID.String()),
		zap.Int("turn", s.Turn),
		zap.String("winner", s.Winner),
		zap.Bool("tie", s.Tie),
	)
	return true
}

package sim

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/battlesim/internal/game/battle"
	"github.com/cory-johannsen/battlesim/internal/game/damage"
)

const (
	paralysisSkipChance = 25
	thawChance          = 20
	minSleepTurns       = 1
	maxSleepTurns       = 3
)

// statusImmunities lists types that cannot receive a status.
var statusImmunities = map[battle.Status][]string{
	battle.StatusBurn:      {"Fire"},
	battle.StatusParalysis: {"Electric"},
	battle.StatusPoison:    {"Poison", "Steel"},
	battle.StatusToxic:     {"Poison", "Steel"},
	battle.StatusFreeze:    {"Ice"},
}

// useMove runs the full move pipeline for one actor: status prevention,
// PP, accuracy, then the status or damage branch.
func (e *Engine) useMove(s *battle.State, l *turnLog, c *choice) Outcome {
	att := c.actor
	out := Outcome{Side: c.side, Move: c.move.ID, Effectiveness: 1}
	src := ident(c.side, att)

	if reason := e.prevented(l, c.side, att); reason != "" {
		l.add("cant", src, reason)
		out.Prevented = reason
		return out
	}

	if c.slot >= 0 {
		att.Moves[c.slot].PP--
	}
	foeSide := battle.OtherSide(c.side)
	def := s.Active(foeSide)

	if !needsTarget(c.move) {
		l.add("move", src, c.move.Name)
	} else {
		if def == nil || !def.Alive() {
			l.add("move", src, c.move.Name)
			l.add("-fail", src)
			out.Failed = true
			return out
		}
		l.add("move", src, c.move.Name, ident(foeSide, def))
		if !e.hits(att, def, c.move) {
			l.add("-miss", src, ident(foeSide, def))
			out.Missed = true
			return out
		}
	}

	if c.move.IsStatus() {
		e.statusMove(s, l, c, def, &out)
		return out
	}
	e.damagingMove(s, l, c, def, &out)
	return out
}

// prevented applies the pre-move status checks and returns the reason the
// actor cannot move, or "".
func (e *Engine) prevented(l *turnLog, side string, p *battle.Pokemon) string {
	switch p.Status {
	case battle.StatusSleep:
		if p.StatusTurns > 0 {
			p.StatusTurns--
			return battle.StatusSleep.String()
		}
		p.SetStatus(battle.StatusNone)
		l.add("-curestatus", ident(side, p), battle.StatusSleep.String(), "[msg]")
	case battle.StatusFreeze:
		if !e.roller.Chance(thawChance) {
			return battle.StatusFreeze.String()
		}
		p.SetStatus(battle.StatusNone)
		l.add("-curestatus", ident(side, p), battle.StatusFreeze.String(), "[msg]")
	case battle.StatusParalysis:
		if e.roller.Chance(paralysisSkipChance) {
			return battle.StatusParalysis.String()
		}
	}
	if p.HasVolatile("flinch") {
		return "flinch"
	}
	return ""
}

// hits performs the accuracy check. Moves with AlwaysHits skip it.
func (e *Engine) hits(att, def *battle.Pokemon, m battle.Move) bool {
	if m.Accuracy == battle.AlwaysHits {
		return true
	}
	stage := att.Boosts.Get(battle.StatAccuracy) - def.Boosts.Get(battle.StatEvasion)
	stage = max(battle.MinStage, min(battle.MaxStage, stage))
	num, den := damage.AccuracyMultiplier(stage)
	return e.roller.Percent() <= m.Accuracy*num/den
}

func (e *Engine) statusMove(s *battle.State, l *turnLog, c *choice, def *battle.Pokemon, out *Outcome) {
	targetSide, target := battle.OtherSide(c.side), def
	if c.move.TargetsSelf() {
		targetSide, target = c.side, c.actor
	}
	did := false

	for _, b := range c.move.Boosts {
		if target == nil {
			break
		}
		bc := e.boost(l, targetSide, target, b.Stat, b.Delta)
		out.Boosts = append(out.Boosts, bc)
		did = true
	}
	if c.move.Status != battle.StatusNone && target != nil {
		if e.inflict(l, targetSide, target, c.move.Status) {
			did = true
		} else {
			l.add("-fail", ident(targetSide, target))
			out.Failed = true
		}
	}
	if c.move.Weather != "" {
		s.SetWeather(c.move.Weather, battle.WeatherTurns)
		l.add("-weather", s.Field.Weather)
		did = true
	}
	if c.move.SideCondition != "" {
		condSide := battle.OtherSide(c.side)
		if c.move.Target == "allySide" {
			condSide = c.side
		}
		sd, _ := s.Side(condSide)
		if sd.StartCondition(c.move.SideCondition) {
			l.add("-sidestart", sideLabel(sd), "move: "+c.move.Name)
			did = true
		}
	}
	if !did && !out.Failed {
		l.add("-fail", ident(c.side, c.actor))
		out.Failed = true
	}
}

func (e *Engine) damagingMove(s *battle.State, l *turnLog, c *choice, def *battle.Pokemon, out *Outcome) {
	att := c.actor
	foeSide := battle.OtherSide(c.side)
	src, tgt := ident(c.side, att), ident(foeSide, def)

	crit := e.roller.Critical()
	random := e.roller.DamageSpread()
	res := damage.Calculate(att, def, c.move, damage.Input{
		Weather:  s.Field.Weather,
		Critical: crit,
		Random:   random,
	}, e.abilities.InWeather(s.Field.Weather))

	out.Effectiveness = res.Effectiveness
	if res.Effectiveness == 0 {
		l.add("-immune", tgt)
		return
	}
	out.Critical = crit
	if crit {
		l.add("-crit", tgt)
	}
	switch {
	case res.Effectiveness > 1:
		l.add("-supereffective", tgt)
	case res.Effectiveness < 1:
		l.add("-resisted", tgt)
	}
	dealt := def.Damage(res.Damage)
	out.Damage = dealt
	l.add("-damage", tgt, def.Condition().String())

	e.logger.Debug("move hit",
		zap.String("move", c.move.ID),
		zap.String("attacker", att.Name),
		zap.String("defender", def.Name),
		zap.Int("damage", dealt),
		zap.Int("attack", res.Attack),
		zap.Int("defense", res.Defense),
		zap.Bool("critical", crit),
	)

	if dealt > 0 {
		e.secondary(s, l, c, def, out)
		if r := c.move.Recoil; r[1] > 0 && att.Alive() {
			att.Damage(max(1, dealt*r[0]/r[1]))
			l.add("-damage", src, att.Condition().String(), "[from] Recoil")
		}
		if d := c.move.Drain; d[1] > 0 && att.Alive() && att.HP < att.MaxHP {
			att.Heal(max(1, dealt*d[0]/d[1]))
			l.add("-heal", src, att.Condition().String(), "[from] drain", "[of] "+tgt)
		}
	}
	if !def.Alive() {
		l.add("faint", tgt)
	}
	if !att.Alive() {
		l.add("faint", src)
	}
}

// secondary rolls the move's secondary effect once.
func (e *Engine) secondary(s *battle.State, l *turnLog, c *choice, def *battle.Pokemon, out *Outcome) {
	sec := c.move.Secondary
	if sec == nil || !e.roller.Chance(sec.Chance) {
		return
	}
	foeSide := battle.OtherSide(c.side)
	if def.Alive() {
		if sec.Status != battle.StatusNone {
			e.inflict(l, foeSide, def, sec.Status)
		}
		if sec.Volatile != "" && !def.HasVolatile(sec.Volatile) {
			sd, _ := s.Side(c.side)
			def.AddVolatile(battle.Volatile{ID: sec.Volatile, Source: &battle.SourceRef{Side: c.side, Index: sd.ActiveIndex()}})
			if sec.Volatile != "flinch" {
				l.add("-start", ident(foeSide, def), sec.Volatile)
			}
		}
		for _, b := range sec.Boosts {
			out.Boosts = append(out.Boosts, e.boost(l, foeSide, def, b.Stat, b.Delta))
		}
	}
	if c.actor.Alive() {
		for _, b := range sec.SelfBoosts {
			out.Boosts = append(out.Boosts, e.boost(l, c.side, c.actor, b.Stat, b.Delta))
		}
	}
}

// needsTarget reports whether the move is aimed at the opposing Pokémon and
// so needs a living target and an accuracy check.
func needsTarget(m battle.Move) bool {
	return !m.TargetsSelf() && m.Target != "foeSide" && m.Target != "all"
}

// inflict gives p a primary status unless it already has one or its type
// is immune.
func (e *Engine) inflict(l *turnLog, side string, p *battle.Pokemon, st battle.Status) bool {
	if !p.Alive() || p.Status != battle.StatusNone {
		return false
	}
	for _, t := range statusImmunities[st] {
		if p.HasType(t) {
			return false
		}
	}
	p.SetStatus(st)
	if st == battle.StatusSleep {
		p.StatusTurns = e.roller.Between(minSleepTurns, maxSleepTurns)
	}
	l.add("-status", ident(side, p), st.String())
	return true
}

// entryHazards applies stealth rock and spikes to a Pokémon entering sd.
func (e *Engine) entryHazards(l *turnLog, sd *battle.Side, p *battle.Pokemon) {
	c := sd.Conditions
	if c.StealthRock && p.Alive() {
		eff := damage.Effectiveness("Rock", p.Types)
		if n := int(float64(p.MaxHP) * eff / 8); n > 0 {
			p.Damage(n)
			l.add("-damage", ident(sd.ID, p), p.Condition().String(), "[from] Stealth Rock")
		}
	}
	if c.Spikes > 0 && p.Alive() && !p.HasType("Flying") {
		dens := [...]int{0, 8, 6, 4}
		p.Damage(max(1, p.MaxHP/dens[c.Spikes]))
		l.add("-damage", ident(sd.ID, p), p.Condition().String(), "[from] Spikes")
	}
	if !p.Alive() {
		l.add("faint", ident(sd.ID, p))
	}
}

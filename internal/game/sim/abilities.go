package sim

import (
	"slices"

	"go.uber.org/zap"

	"github.com/cory-johannsen/battlesim/internal/game/battle"
	"github.com/cory-johannsen/battlesim/internal/game/damage"
	"github.com/cory-johannsen/battlesim/internal/protocol"
	"github.com/cory-johannsen/battlesim/internal/scripting"
)

// StatHook adjusts an effective attack or defense value before it enters the
// base damage formula.
type StatHook func(attacker, defender *battle.Pokemon, move battle.Move, value int) int

// BoostEffect is one stage change produced by a switch-in hook.
type BoostEffect struct {
	OnFoe bool
	Stat  battle.Stat
	Delta int
}

// SwitchInHook runs once when its holder enters the field.
type SwitchInHook func(self, foe *battle.Pokemon) []BoostEffect

// Ability is an identifier plus the hooks it contributes. Nil hooks are skipped.
type Ability struct {
	ID            string
	ModifyAttack  StatHook
	ModifyDefense StatHook
	OnSwitchIn    SwitchInHook
}

// AbilityRegistry resolves abilities by identifier. Built-in abilities come
// from a lookup table; anything else falls through to Lua hooks named
// <id>_modify_attack, <id>_modify_defense and <id>_on_switch_in.
//
// AbilityRegistry implements damage.Hooks.
type AbilityRegistry struct {
	table   map[string]Ability
	scripts *scripting.Manager
	logger  *zap.Logger
}

var _ damage.Hooks = (*AbilityRegistry)(nil)

// NewAbilityRegistry returns a registry holding the built-in abilities.
// scripts may be nil, in which case unknown abilities do nothing.
//
// Precondition: logger must be non-nil.
func NewAbilityRegistry(scripts *scripting.Manager, logger *zap.Logger) *AbilityRegistry {
	r := &AbilityRegistry{table: make(map[string]Ability), scripts: scripts, logger: logger}
	for _, a := range builtinAbilities() {
		r.Register(a)
	}
	return r
}

// Register adds or replaces an ability.
func (r *AbilityRegistry) Register(a Ability) {
	a.ID = protocol.ToID(a.ID)
	r.table[a.ID] = a
}

// Lookup returns the built-in or registered ability with the given id.
func (r *AbilityRegistry) Lookup(id string) (Ability, bool) {
	a, ok := r.table[protocol.ToID(id)]
	return a, ok
}

// ModifyAttack applies the attacker's ability to its offensive stat with no
// weather in effect.
func (r *AbilityRegistry) ModifyAttack(attacker, defender *battle.Pokemon, move battle.Move, value int) int {
	return r.modifyAttack("", attacker, defender, move, value)
}

// ModifyDefense applies the defender's ability to its defensive stat with no
// weather in effect.
func (r *AbilityRegistry) ModifyDefense(attacker, defender *battle.Pokemon, move battle.Move, value int) int {
	return r.modifyDefense("", attacker, defender, move, value)
}

// InWeather returns hooks that expose weather to scripted abilities as
// move.weather.
func (r *AbilityRegistry) InWeather(weather string) damage.Hooks {
	return weatherHooks{registry: r, weather: protocol.ToID(weather)}
}

type weatherHooks struct {
	registry *AbilityRegistry
	weather  string
}

func (h weatherHooks) ModifyAttack(attacker, defender *battle.Pokemon, move battle.Move, value int) int {
	return h.registry.modifyAttack(h.weather, attacker, defender, move, value)
}

func (h weatherHooks) ModifyDefense(attacker, defender *battle.Pokemon, move battle.Move, value int) int {
	return h.registry.modifyDefense(h.weather, attacker, defender, move, value)
}

func (r *AbilityRegistry) modifyAttack(weather string, attacker, defender *battle.Pokemon, move battle.Move, value int) int {
	id := protocol.ToID(attacker.Ability)
	if a, ok := r.table[id]; ok {
		if a.ModifyAttack == nil {
			return value
		}
		return a.ModifyAttack(attacker, defender, move, value)
	}
	return r.scriptedStat(id+"_modify_attack", weather, attacker, defender, move, value)
}

func (r *AbilityRegistry) modifyDefense(weather string, attacker, defender *battle.Pokemon, move battle.Move, value int) int {
	id := protocol.ToID(defender.Ability)
	if a, ok := r.table[id]; ok {
		if a.ModifyDefense == nil {
			return value
		}
		return a.ModifyDefense(attacker, defender, move, value)
	}
	return r.scriptedStat(id+"_modify_defense", weather, defender, attacker, move, value)
}

// SwitchIn returns the boosts self's ability produces on entry.
func (r *AbilityRegistry) SwitchIn(self, foe *battle.Pokemon) []BoostEffect {
	id := protocol.ToID(self.Ability)
	if a, ok := r.table[id]; ok {
		if a.OnSwitchIn == nil || foe == nil {
			return nil
		}
		return a.OnSwitchIn(self, foe)
	}
	if r.scripts == nil || id == "" {
		return nil
	}
	var foeTable any
	if foe != nil {
		foeTable = pokemonTable(foe)
	}
	ret, err := r.scripts.CallHook(id+"_on_switch_in", pokemonTable(self), foeTable)
	if err != nil {
		return nil
	}
	var out []BoostEffect
	out = appendScripted(out, false, scripting.IntMap(scripting.Field(ret, "self")))
	out = appendScripted(out, true, scripting.IntMap(scripting.Field(ret, "foe")))
	return out
}

func appendScripted(out []BoostEffect, onFoe bool, m map[string]int) []BoostEffect {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		if st, ok := battle.ParseStat(k); ok && st != battle.StatHP {
			out = append(out, BoostEffect{OnFoe: onFoe, Stat: st, Delta: m[k]})
		}
	}
	return out
}

// scriptedStat calls a Lua stat hook. The hook receives the holder first.
func (r *AbilityRegistry) scriptedStat(hook, weather string, holder, other *battle.Pokemon, move battle.Move, value int) int {
	if r.scripts == nil || hook[0] == '_' {
		return value
	}
	ret, err := r.scripts.CallHook(hook, pokemonTable(holder), pokemonTable(other), moveTable(move, weather), value)
	if err != nil {
		return value
	}
	n, ok := scripting.Number(ret)
	if !ok {
		return value
	}
	return int(n)
}

func pokemonTable(p *battle.Pokemon) map[string]any {
	return map[string]any{
		"species": p.Species,
		"ability": protocol.ToID(p.Ability),
		"item":    p.Item,
		"types":   p.Types,
		"level":   p.Level,
		"hp":      p.HP,
		"maxhp":   p.MaxHP,
		"status":  p.Status.String(),
	}
}

func moveTable(m battle.Move, weather string) map[string]any {
	return map[string]any{
		"id":       m.ID,
		"type":     m.Type,
		"category": m.Category.String(),
		"power":    m.BasePower,
		"weather":  weather,
	}
}

func statused(p *battle.Pokemon) bool {
	return p.Status != battle.StatusNone && p.Status != battle.StatusFainted
}

func pinch(moveType string) StatHook {
	return func(attacker, _ *battle.Pokemon, move battle.Move, value int) int {
		if move.Type == moveType && attacker.HP*3 <= attacker.MaxHP {
			return value * 3 / 2
		}
		return value
	}
}

func doublePhysical(_, _ *battle.Pokemon, move battle.Move, value int) int {
	if move.Category == battle.Physical {
		return value * 2
	}
	return value
}

func builtinAbilities() []Ability {
	return []Ability{
		{ID: "intimidate", OnSwitchIn: func(_, _ *battle.Pokemon) []BoostEffect {
			return []BoostEffect{{OnFoe: true, Stat: battle.StatAtk, Delta: -1}}
		}},
		{ID: "download", OnSwitchIn: func(_, foe *battle.Pokemon) []BoostEffect {
			def := damage.EffectiveStat(foe, battle.StatDef, damage.Defense, false)
			spd := damage.EffectiveStat(foe, battle.StatSpD, damage.Defense, false)
			if def < spd {
				return []BoostEffect{{Stat: battle.StatAtk, Delta: 1}}
			}
			return []BoostEffect{{Stat: battle.StatSpA, Delta: 1}}
		}},
		{ID: "hugepower", ModifyAttack: doublePhysical},
		{ID: "purepower", ModifyAttack: doublePhysical},
		{ID: "guts", ModifyAttack: func(attacker, _ *battle.Pokemon, move battle.Move, value int) int {
			if statused(attacker) && move.Category == battle.Physical {
				return value * 3 / 2
			}
			return value
		}},
		{ID: "overgrow", ModifyAttack: pinch("Grass")},
		{ID: "blaze", ModifyAttack: pinch("Fire")},
		{ID: "torrent", ModifyAttack: pinch("Water")},
		{ID: "swarm", ModifyAttack: pinch("Bug")},
		{ID: "thickfat", ModifyDefense: func(_, _ *battle.Pokemon, move battle.Move, value int) int {
			if move.Type == "Fire" || move.Type == "Ice" {
				return value * 2
			}
			return value
		}},
		{ID: "marvelscale", ModifyDefense: func(_, defender *battle.Pokemon, move battle.Move, value int) int {
			if statused(defender) && move.Category == battle.Physical {
				return value * 3 / 2
			}
			return value
		}},
	}
}

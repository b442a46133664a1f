package showdown

import (
	"slices"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/cory-johannsen/battlesim/internal/game/dex"
	"github.com/cory-johannsen/battlesim/internal/protocol"
)

// abilitySlots is the order Showdown lists ability slots in.
var abilitySlots = []string{"0", "1", "H", "S"}

// standard reports whether an entry is usable in regular play. Entries from
// past generations are kept.
func standard(v gjson.Result) bool {
	ns := v.Get("isNonstandard").String()
	return ns == "" || ns == "Past"
}

// ParsePokedex converts a pokedex export into species. Nonstandard entries
// and battle-only formes are dropped.
func ParsePokedex(doc gjson.Result) []*dex.Species {
	var out []*dex.Species
	doc.ForEach(func(key, v gjson.Result) bool {
		if !standard(v) || v.Get("battleOnly").Exists() {
			return true
		}
		sp := &dex.Species{
			ID:   protocol.ToID(key.String()),
			Name: v.Get("name").String(),
			BaseStats: dex.BaseStats{
				HP:  int(v.Get("baseStats.hp").Int()),
				Atk: int(v.Get("baseStats.atk").Int()),
				Def: int(v.Get("baseStats.def").Int()),
				SpA: int(v.Get("baseStats.spa").Int()),
				SpD: int(v.Get("baseStats.spd").Int()),
				Spe: int(v.Get("baseStats.spe").Int()),
			},
		}
		for _, t := range v.Get("types").Array() {
			sp.Types = append(sp.Types, t.String())
		}
		abilities := v.Get("abilities")
		for _, slot := range abilitySlots {
			if a := abilities.Get(slot).String(); a != "" {
				sp.Abilities = append(sp.Abilities, a)
			}
		}
		out = append(out, sp)
		return true
	})
	return out
}

// ParseMoves converts a moves export into move definitions. Nonstandard,
// Z and Max moves are dropped. An accuracy of true becomes a nil Accuracy.
func ParseMoves(doc gjson.Result) []*dex.MoveDef {
	var out []*dex.MoveDef
	doc.ForEach(func(key, v gjson.Result) bool {
		if !standard(v) || v.Get("isZ").Exists() || v.Get("isMax").Exists() {
			return true
		}
		m := &dex.MoveDef{
			ID:            protocol.ToID(key.String()),
			Name:          v.Get("name").String(),
			Type:          v.Get("type").String(),
			Category:      strings.ToLower(v.Get("category").String()),
			Power:         int(v.Get("basePower").Int()),
			Priority:      int(v.Get("priority").Int()),
			Target:        v.Get("target").String(),
			PP:            int(v.Get("pp").Int()),
			Boosts:        boosts(v.Get("boosts")),
			Status:        v.Get("status").String(),
			Weather:       protocol.ToID(v.Get("weather").String()),
			SideCondition: protocol.ToID(v.Get("sideCondition").String()),
			Recoil:        pair(v.Get("recoil")),
			Drain:         pair(v.Get("drain")),
		}
		if acc := v.Get("accuracy"); acc.Type == gjson.Number {
			n := int(acc.Int())
			m.Accuracy = &n
		}
		m.Secondary = secondary(v)
		out = append(out, m)
		return true
	})
	return out
}

// secondary merges the first secondary effect with the move's own self
// boosts, which always apply.
func secondary(v gjson.Result) *dex.SecondaryDef {
	sec := v.Get("secondary")
	if !sec.IsObject() {
		sec = v.Get("secondaries.0")
	}
	self := boosts(v.Get("self.boosts"))
	if !sec.IsObject() {
		if self == nil {
			return nil
		}
		return &dex.SecondaryDef{Chance: 100, SelfBoosts: self}
	}
	out := &dex.SecondaryDef{
		Chance:     int(sec.Get("chance").Int()),
		Status:     sec.Get("status").String(),
		Volatile:   sec.Get("volatileStatus").String(),
		Boosts:     boosts(sec.Get("boosts")),
		SelfBoosts: boosts(sec.Get("self.boosts")),
	}
	if out.Chance == 0 {
		out.Chance = 100
	}
	if out.SelfBoosts == nil {
		out.SelfBoosts = self
	}
	return out
}

func boosts(v gjson.Result) map[string]int {
	if !v.IsObject() {
		return nil
	}
	out := map[string]int{}
	v.ForEach(func(k, n gjson.Result) bool {
		out[k.String()] = int(n.Int())
		return true
	})
	return out
}

func pair(v gjson.Result) []int {
	arr := v.Array()
	if len(arr) != 2 {
		return nil
	}
	return []int{int(arr[0].Int()), int(arr[1].Int())}
}

// ParseLearnsets maps species ID to sorted move IDs. With gen > 0 only moves
// with a source code from that generation (e.g. "9L1", "9M") are kept.
func ParseLearnsets(doc gjson.Result, gen int) map[string][]string {
	out := map[string][]string{}
	prefix := strconv.Itoa(gen)
	doc.ForEach(func(key, v gjson.Result) bool {
		var moves []string
		v.Get("learnset").ForEach(func(move, sources gjson.Result) bool {
			if gen > 0 && !slices.ContainsFunc(sources.Array(), func(src gjson.Result) bool {
				return strings.HasPrefix(src.String(), prefix)
			}) {
				return true
			}
			moves = append(moves, protocol.ToID(move.String()))
			return true
		})
		if len(moves) > 0 {
			slices.Sort(moves)
			out[protocol.ToID(key.String())] = moves
		}
		return true
	})
	return out
}

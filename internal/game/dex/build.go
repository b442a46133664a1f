package dex

import (
	"fmt"
	"strings"

	"github.com/cory-johannsen/battlesim/internal/game/battle"
	"github.com/cory-johannsen/battlesim/internal/game/damage"
)

// MaxMoves is the number of moves a Pokémon can know.
const MaxMoves = 4

// Set describes one team member before it is built.
type Set struct {
	Name    string   `yaml:"name"`
	Species string   `yaml:"species"`
	Ability string   `yaml:"ability"`
	Item    string   `yaml:"item"`
	Level   int      `yaml:"level"`
	Moves   []string `yaml:"moves"`
}

// NewPokemon derives stats for set at level and returns a full-HP Pokémon.
// A set level of 0 uses level; an empty name uses the species name; an
// empty ability uses the species' first ability.
//
// Precondition: 1 <= level <= 100.
func (d *Dex) NewPokemon(set Set, level int) (*battle.Pokemon, error) {
	sp, err := d.Species(set.Species)
	if err != nil {
		return nil, err
	}
	if set.Level > 0 {
		level = set.Level
	}
	if level < 1 || level > 100 {
		return nil, fmt.Errorf("dex: level %d out of range for %s", level, sp.ID)
	}
	if len(set.Moves) == 0 || len(set.Moves) > MaxMoves {
		return nil, fmt.Errorf("dex: %s needs 1-%d moves, has %d", sp.ID, MaxMoves, len(set.Moves))
	}

	base := sp.BaseStats.Table()
	p := &battle.Pokemon{
		Name:    set.Name,
		Species: sp.Name,
		Level:   level,
		Types:   append([]string(nil), sp.Types...),
		Base:    base,
		Ability: set.Ability,
		Item:    set.Item,
	}
	if p.Name == "" {
		p.Name = sp.Name
	}
	if p.Ability == "" && len(sp.Abilities) > 0 {
		p.Ability = sp.Abilities[0]
	}
	p.Stats[battle.StatHP] = damage.CalcHP(base[battle.StatHP], level, damage.DefaultIV, damage.DefaultEV)
	for st := battle.StatAtk; st <= battle.StatSpe; st++ {
		p.Stats[st] = damage.CalcStat(base[st], level, damage.DefaultIV, damage.DefaultEV, damage.NatureNeutral)
	}
	p.MaxHP = p.Stats[battle.StatHP]
	p.HP = p.MaxHP

	for _, id := range set.Moves {
		def, err := d.Move(id)
		if err != nil {
			return nil, err
		}
		m, err := def.Move()
		if err != nil {
			return nil, err
		}
		p.Moves = append(p.Moves, m)
	}
	return p, nil
}

// NewTeam builds every set in order.
func (d *Dex) NewTeam(sets []Set, level int) ([]*battle.Pokemon, error) {
	if len(sets) == 0 || len(sets) > battle.MaxTeamSize {
		return nil, fmt.Errorf("dex: team size %d out of range", len(sets))
	}
	team := make([]*battle.Pokemon, 0, len(sets))
	for i, set := range sets {
		p, err := d.NewPokemon(set, level)
		if err != nil {
			return nil, fmt.Errorf("team member %d: %w", i+1, err)
		}
		team = append(team, p)
	}
	return team, nil
}

// ExportTeam renders sets in the human-readable export format the external
// engine packs with its pack-team command.
func (d *Dex) ExportTeam(sets []Set) string {
	var b strings.Builder
	for _, set := range sets {
		species := set.Species
		if sp, err := d.Species(set.Species); err == nil {
			species = sp.Name
		}
		if set.Name != "" && set.Name != species {
			fmt.Fprintf(&b, "%s (%s)", set.Name, species)
		} else {
			b.WriteString(species)
		}
		if set.Item != "" {
			fmt.Fprintf(&b, " @ %s", set.Item)
		}
		b.WriteString("\n")
		if set.Ability != "" {
			fmt.Fprintf(&b, "Ability: %s\n", set.Ability)
		}
		if set.Level > 0 && set.Level != 100 {
			fmt.Fprintf(&b, "Level: %d\n", set.Level)
		}
		for _, m := range set.Moves {
			name := m
			if def, err := d.Move(m); err == nil && def.Name != "" {
				name = def.Name
			}
			fmt.Fprintf(&b, "- %s\n", name)
		}
		b.WriteString("\n")
	}
	return b.String()
}

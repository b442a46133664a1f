// Package dex holds static species and move data and builds battle-ready
// Pokémon from it.
package dex

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/cory-johannsen/battlesim/internal/game/battle"
	"github.com/cory-johannsen/battlesim/internal/game/damage"
	"github.com/cory-johannsen/battlesim/internal/protocol"
)

var (
	// ErrUnknownSpecies is returned when a species ID is not in the dex.
	ErrUnknownSpecies = errors.New("unknown species")
	// ErrUnknownMove is returned when a move ID is not in the dex.
	ErrUnknownMove = errors.New("unknown move")
)

// BaseStats is a species' six base stats.
type BaseStats struct {
	HP  int `yaml:"hp"`
	Atk int `yaml:"atk"`
	Def int `yaml:"def"`
	SpA int `yaml:"spa"`
	SpD int `yaml:"spd"`
	Spe int `yaml:"spe"`
}

// Table returns the stats in battle.Stat order.
func (b BaseStats) Table() battle.StatTable {
	return battle.StatTable{b.HP, b.Atk, b.Def, b.SpA, b.SpD, b.Spe}
}

// Species is the static definition of a species.
type Species struct {
	ID        string    `yaml:"id"`
	Name      string    `yaml:"name"`
	Types     []string  `yaml:"types"`
	BaseStats BaseStats `yaml:"base_stats"`
	Abilities []string  `yaml:"abilities,omitempty"`
	// Learnset is the pool random teams draw moves from.
	Learnset []string `yaml:"learnset,omitempty"`
}

// SecondaryDef is a move's secondary effect as written in YAML. An omitted
// chance means the effect always applies.
type SecondaryDef struct {
	Chance     int            `yaml:"chance" json:"chance"`
	Status     string         `yaml:"status,omitempty" json:"status,omitempty"`
	Volatile   string         `yaml:"volatile,omitempty" json:"volatile,omitempty"`
	Boosts     map[string]int `yaml:"boosts,omitempty" json:"boosts,omitempty"`
	SelfBoosts map[string]int `yaml:"self_boosts,omitempty" json:"self_boosts,omitempty"`
}

// MoveDef is the static definition of a move. A nil Accuracy never misses.
type MoveDef struct {
	ID            string         `yaml:"id"`
	Name          string         `yaml:"name"`
	Type          string         `yaml:"type"`
	Category      string         `yaml:"category"`
	Power         int            `yaml:"power,omitempty"`
	Accuracy      *int           `yaml:"accuracy,omitempty"`
	Priority      int            `yaml:"priority,omitempty"`
	Target        string         `yaml:"target,omitempty"`
	PP            int            `yaml:"pp,omitempty"`
	Boosts        map[string]int `yaml:"boosts,omitempty"`
	Status        string         `yaml:"status,omitempty"`
	Weather       string         `yaml:"weather,omitempty"`
	SideCondition string         `yaml:"side_condition,omitempty"`
	Secondary     *SecondaryDef  `yaml:"secondary,omitempty"`
	Recoil        []int          `yaml:"recoil,omitempty"`
	Drain         []int          `yaml:"drain,omitempty"`
}

// Dex indexes species and moves by normalised ID.
type Dex struct {
	species map[string]*Species
	moves   map[string]*MoveDef
}

// New creates an empty Dex.
func New() *Dex {
	return &Dex{species: make(map[string]*Species), moves: make(map[string]*MoveDef)}
}

// AddSpecies validates and registers sp, replacing any entry with the same ID.
// An empty ID is derived from the name.
func (d *Dex) AddSpecies(sp *Species) error {
	if sp.ID == "" {
		sp.ID = protocol.ToID(sp.Name)
	}
	sp.ID = protocol.ToID(sp.ID)
	if sp.ID == "" {
		return errors.New("dex: species without id or name")
	}
	if len(sp.Types) < 1 || len(sp.Types) > 2 {
		return fmt.Errorf("dex: species %s must have one or two types, has %d", sp.ID, len(sp.Types))
	}
	for _, t := range sp.Types {
		if !slices.Contains(damage.Types(), t) {
			return fmt.Errorf("dex: species %s has unknown type %q", sp.ID, t)
		}
	}
	for i, v := range sp.BaseStats.Table() {
		if v <= 0 {
			return fmt.Errorf("dex: species %s has non-positive %s", sp.ID, battle.Stat(i))
		}
	}
	for i, m := range sp.Learnset {
		sp.Learnset[i] = protocol.ToID(m)
	}
	d.species[sp.ID] = sp
	return nil
}

// AddMove validates and registers m, replacing any entry with the same ID.
func (d *Dex) AddMove(m *MoveDef) error {
	if m.ID == "" {
		m.ID = protocol.ToID(m.Name)
	}
	m.ID = protocol.ToID(m.ID)
	if m.ID == "" {
		return errors.New("dex: move without id or name")
	}
	if _, err := m.Move(); err != nil {
		return err
	}
	d.moves[m.ID] = m
	return nil
}

// Species looks up a species by name or ID.
func (d *Dex) Species(name string) (*Species, error) {
	sp, ok := d.species[protocol.ToID(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSpecies, name)
	}
	return sp, nil
}

// Move looks up a move by name or ID.
func (d *Dex) Move(name string) (*MoveDef, error) {
	m, ok := d.moves[protocol.ToID(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMove, name)
	}
	return m, nil
}

// AllSpecies returns every species sorted by ID.
func (d *Dex) AllSpecies() []*Species {
	out := make([]*Species, 0, len(d.species))
	for _, sp := range d.species {
		out = append(out, sp)
	}
	slices.SortFunc(out, func(a, b *Species) int { return strings.Compare(a.ID, b.ID) })
	return out
}

// AllMoves returns every move sorted by ID.
func (d *Dex) AllMoves() []*MoveDef {
	out := make([]*MoveDef, 0, len(d.moves))
	for _, m := range d.moves {
		out = append(out, m)
	}
	slices.SortFunc(out, func(a, b *MoveDef) int { return strings.Compare(a.ID, b.ID) })
	return out
}

// Move converts the definition to a battle.Move with full PP.
func (m *MoveDef) Move() (battle.Move, error) {
	cat, ok := battle.ParseCategory(m.Category)
	if !ok {
		return battle.Move{}, fmt.Errorf("dex: move %s has unknown category %q", m.ID, m.Category)
	}
	if !slices.Contains(damage.Types(), m.Type) {
		return battle.Move{}, fmt.Errorf("dex: move %s has unknown type %q", m.ID, m.Type)
	}
	out := battle.Move{
		ID: m.ID, Name: m.Name, Type: m.Type, Category: cat,
		BasePower: m.Power, Accuracy: battle.AlwaysHits, Priority: m.Priority,
		Target: m.Target, Weather: m.Weather, SideCondition: m.SideCondition,
		PP: m.PP, MaxPP: m.PP,
	}
	if out.Name == "" {
		out.Name = m.ID
	}
	if out.Target == "" {
		out.Target = "normal"
	}
	if m.Accuracy != nil {
		out.Accuracy = *m.Accuracy
	}
	var err error
	if out.Boosts, err = boostDeltas(m.ID, m.Boosts); err != nil {
		return battle.Move{}, err
	}
	if out.Status, err = status(m.ID, m.Status); err != nil {
		return battle.Move{}, err
	}
	if out.Recoil, err = fraction(m.ID, "recoil", m.Recoil); err != nil {
		return battle.Move{}, err
	}
	if out.Drain, err = fraction(m.ID, "drain", m.Drain); err != nil {
		return battle.Move{}, err
	}
	if sec := m.Secondary; sec != nil {
		chance := sec.Chance
		if chance == 0 {
			chance = 100
		}
		if chance < 0 || chance > 100 {
			return battle.Move{}, fmt.Errorf("dex: move %s secondary chance %d out of range", m.ID, sec.Chance)
		}
		bs := &battle.Secondary{Chance: chance, Volatile: sec.Volatile}
		if bs.Status, err = status(m.ID, sec.Status); err != nil {
			return battle.Move{}, err
		}
		if bs.Boosts, err = boostDeltas(m.ID, sec.Boosts); err != nil {
			return battle.Move{}, err
		}
		if bs.SelfBoosts, err = boostDeltas(m.ID, sec.SelfBoosts); err != nil {
			return battle.Move{}, err
		}
		out.Secondary = bs
	}
	return out, nil
}

func boostDeltas(id string, m map[string]int) ([]battle.BoostDelta, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	var out []battle.BoostDelta
	for _, k := range keys {
		st, ok := battle.ParseStat(k)
		if !ok || st == battle.StatHP {
			return nil, fmt.Errorf("dex: move %s boosts unknown stat %q", id, k)
		}
		out = append(out, battle.BoostDelta{Stat: st, Delta: m[k]})
	}
	return out, nil
}

func status(id, s string) (battle.Status, error) {
	st, ok := battle.ParseStatus(s)
	if !ok || st == battle.StatusFainted {
		return battle.StatusNone, fmt.Errorf("dex: move %s has unknown status %q", id, s)
	}
	return st, nil
}

func fraction(id, field string, v []int) ([2]int, error) {
	switch {
	case len(v) == 0:
		return [2]int{}, nil
	case len(v) == 2 && v[0] > 0 && v[1] > 0:
		return [2]int{v[0], v[1]}, nil
	}
	return [2]int{}, fmt.Errorf("dex: move %s %s must be [num, den]", id, field)
}

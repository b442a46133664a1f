package dex

import (
	"fmt"

	"github.com/cory-johannsen/battlesim/internal/game/battle"
	"github.com/cory-johannsen/battlesim/internal/game/dice"
)

// RandomSets draws size distinct species, each with up to four distinct
// moves from its learnset that exist in the dex.
//
// Precondition: 1 <= size <= battle.MaxTeamSize.
func (d *Dex) RandomSets(roller *dice.Roller, size int) ([]Set, error) {
	if size < 1 || size > battle.MaxTeamSize {
		return nil, fmt.Errorf("dex: team size %d out of range", size)
	}
	var pool []*Species
	for _, sp := range d.AllSpecies() {
		if len(d.knownMoves(sp)) > 0 {
			pool = append(pool, sp)
		}
	}
	if len(pool) < size {
		return nil, fmt.Errorf("dex: need %d species with moves, have %d", size, len(pool))
	}

	sets := make([]Set, 0, size)
	for range size {
		i := roller.Between(0, len(pool)-1)
		sp := pool[i]
		pool = append(pool[:i], pool[i+1:]...)

		moves := d.knownMoves(sp)
		var picked []string
		for len(picked) < MaxMoves && len(moves) > 0 {
			j := roller.Between(0, len(moves)-1)
			picked = append(picked, moves[j])
			moves = append(moves[:j], moves[j+1:]...)
		}
		set := Set{Species: sp.ID, Moves: picked}
		if len(sp.Abilities) > 0 {
			set.Ability = sp.Abilities[roller.Between(0, len(sp.Abilities)-1)]
		}
		sets = append(sets, set)
	}
	return sets, nil
}

// RandomTeam draws and builds a random team at level.
func (d *Dex) RandomTeam(roller *dice.Roller, size, level int) ([]*battle.Pokemon, error) {
	sets, err := d.RandomSets(roller, size)
	if err != nil {
		return nil, err
	}
	return d.NewTeam(sets, level)
}

func (d *Dex) knownMoves(sp *Species) []string {
	var out []string
	for _, id := range sp.Learnset {
		if _, ok := d.moves[id]; ok {
			out = append(out, id)
		}
	}
	return out
}

// SidesSets returns one team per side: read from the two team files in paths,
// or drawn at random with size members each when paths is empty.
func (d *Dex) SidesSets(paths []string, roller *dice.Roller, size int) ([2][]Set, error) {
	var out [2][]Set
	if len(paths) != 0 && len(paths) != 2 {
		return out, fmt.Errorf("dex: want 0 or 2 team files, got %d", len(paths))
	}
	for i := range out {
		var err error
		if len(paths) == 2 {
			out[i], err = LoadSets(paths[i])
		} else {
			out[i], err = d.RandomSets(roller, size)
		}
		if err != nil {
			return out, err
		}
	}
	return out, nil
}

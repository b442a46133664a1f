// Package showdown reads the JSON data exports of a Pokémon Showdown checkout
// (pokedex.json, moves.json and optionally learnsets.json).
package showdown

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/tidwall/gjson"

	"github.com/cory-johannsen/battlesim/internal/importer"
)

var _ importer.Source = (*Source)(nil)

// File names expected in the source directory.
const (
	PokedexFile   = "pokedex.json"
	MovesFile     = "moves.json"
	LearnsetsFile = "learnsets.json"
)

// Source implements importer.Source for the layout:
//
//	sourceDir/
//	  pokedex.json    <- object keyed by species ID
//	  moves.json      <- object keyed by move ID
//	  learnsets.json  <- optional; object keyed by species ID
type Source struct {
	gen int
}

// NewSource constructs a Source. A positive gen keeps only learnset entries
// available in that generation; zero keeps every entry.
func NewSource(gen int) *Source { return &Source{gen: gen} }

// Load reads the three exports and converts every standard entry.
//
// Precondition: sourceDir must contain pokedex.json and moves.json.
// Postcondition: returns non-nil DexData or a non-nil error.
func (s *Source) Load(sourceDir string) (*importer.DexData, error) {
	dexDoc, err := readJSON(filepath.Join(sourceDir, PokedexFile))
	if err != nil {
		return nil, err
	}
	movesDoc, err := readJSON(filepath.Join(sourceDir, MovesFile))
	if err != nil {
		return nil, err
	}
	learnDoc := gjson.Result{}
	if _, statErr := os.Stat(filepath.Join(sourceDir, LearnsetsFile)); statErr == nil {
		if learnDoc, err = readJSON(filepath.Join(sourceDir, LearnsetsFile)); err != nil {
			return nil, err
		}
	}

	out := &importer.DexData{Moves: ParseMoves(movesDoc)}
	learnsets := ParseLearnsets(learnDoc, s.gen)
	for _, sp := range ParsePokedex(dexDoc) {
		sp.Learnset = learnsets[sp.ID]
		out.Species = append(out.Species, sp)
	}
	return out, nil
}

func readJSON(path string) (gjson.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("reading %s: %w", path, err)
	}
	if !gjson.ValidBytes(data) {
		return gjson.Result{}, fmt.Errorf("parsing %s: invalid JSON", path)
	}
	doc := gjson.ParseBytes(data)
	if !doc.IsObject() {
		return gjson.Result{}, fmt.Errorf("parsing %s: top level must be an object", path)
	}
	return doc, nil
}

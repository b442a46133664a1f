package dex

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/battlesim/internal/game/battle"
)

// file is the shape of one dex YAML document.
type file struct {
	Species []*Species `yaml:"species"`
	Moves   []*MoveDef `yaml:"moves"`
}

// LoadDirectory reads every *.yaml file in dir into a new Dex. Unknown keys
// are rejected so typos in content surface at load time.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns a populated Dex, or an error naming the first bad file.
func LoadDirectory(dir string) (*Dex, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading dex dir %q: %w", dir, err)
	}
	d := New()
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		if err := d.Load(bytes.NewReader(data)); err != nil {
			return nil, fmt.Errorf("parsing %q: %w", path, err)
		}
	}
	return d, nil
}

// Load decodes one or more YAML documents from r into d.
func (d *Dex) Load(r io.Reader) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	for {
		var f file
		err := dec.Decode(&f)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		for _, sp := range f.Species {
			if err := d.AddSpecies(sp); err != nil {
				return err
			}
		}
		for _, m := range f.Moves {
			if err := d.AddMove(m); err != nil {
				return err
			}
		}
	}
}

// teamFile is the shape of a team YAML document.
type teamFile struct {
	Team []Set `yaml:"team"`
}

// LoadSets reads a team file holding a "team" list of sets.
//
// Postcondition: Returns between 1 and battle.MaxTeamSize sets, or an error.
func LoadSets(path string) ([]Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading team %q: %w", path, err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var f teamFile
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("parsing team %q: %w", path, err)
	}
	if len(f.Team) == 0 || len(f.Team) > battle.MaxTeamSize {
		return nil, fmt.Errorf("team %q has %d members, want 1-%d", path, len(f.Team), battle.MaxTeamSize)
	}
	return f.Team, nil
}

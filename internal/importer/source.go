package importer

import "github.com/cory-johannsen/battlesim/internal/game/dex"

// DexData is the common intermediate form produced by every Source. Entries
// use the dex YAML schema so they can be written and reloaded unchanged.
type DexData struct {
	Species []*dex.Species
	Moves   []*dex.MoveDef
}

// Source loads species and move data from a format-specific source directory.
//
// Precondition: sourceDir must exist and contain the expected layout for the format.
// Postcondition: returns non-nil DexData, or a non-nil error.
type Source interface {
	Load(sourceDir string) (*DexData, error)
}

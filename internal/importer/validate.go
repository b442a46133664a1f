package importer

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/battlesim/internal/game/dex"
)

// Validate returns the entries of data the dex accepts. Rejected entries are
// logged at Debug and dropped, and surviving learnsets lose moves that were
// dropped or never present.
//
// Postcondition: every returned entry passes dex.AddSpecies or dex.AddMove.
func Validate(data *DexData, logger *zap.Logger) *DexData {
	d := dex.New()
	out := &DexData{}
	for _, m := range data.Moves {
		if err := d.AddMove(m); err != nil {
			logger.Debug("skipping move", zap.String("move", m.ID), zap.Error(err))
			continue
		}
		out.Moves = append(out.Moves, m)
	}
	for _, sp := range data.Species {
		if err := d.AddSpecies(sp); err != nil {
			logger.Debug("skipping species", zap.String("species", sp.ID), zap.Error(err))
			continue
		}
		learn := sp.Learnset[:0]
		for _, id := range sp.Learnset {
			if _, err := d.Move(id); err == nil {
				learn = append(learn, id)
			}
		}
		sp.Learnset = learn
		out.Species = append(out.Species, sp)
	}
	return out
}

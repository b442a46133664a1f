// Package importer converts third-party species and move data into the dex
// YAML layout read by dex.LoadDirectory.
package importer

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/battlesim/internal/game/dex"
)

// Output file names written by Run.
const (
	SpeciesFile = "species.yaml"
	MovesFile   = "moves.yaml"
)

// Importer orchestrates content import from a Source to an output directory.
type Importer struct {
	source Source
	logger *zap.Logger
}

// New constructs an Importer backed by the given Source.
//
// Precondition: source and logger must be non-nil.
// Postcondition: returns a non-nil Importer.
func New(source Source, logger *zap.Logger) *Importer {
	if source == nil || logger == nil {
		panic("importer.New: source and logger must be non-nil")
	}
	return &Importer{source: source, logger: logger}
}

// Summary counts what Run kept and skipped.
type Summary struct {
	Species        int
	Moves          int
	SkippedSpecies int
	SkippedMoves   int
}

// Run loads sourceDir, drops entries the dex rejects, and writes
// species.yaml and moves.yaml into outputDir. Learnsets are trimmed to the
// moves that survived.
//
// Precondition: sourceDir must satisfy the source's layout requirements;
// outputDir must exist or be creatable.
// Postcondition: outputDir loads cleanly with dex.LoadDirectory, or an error
// is returned.
func (imp *Importer) Run(sourceDir, outputDir string) (Summary, error) {
	overall := time.Now()
	var sum Summary

	data, err := imp.source.Load(sourceDir)
	if err != nil {
		return sum, fmt.Errorf("loading source: %w", err)
	}
	imp.logger.Info("source loaded",
		zap.Int("species", len(data.Species)),
		zap.Int("moves", len(data.Moves)),
		zap.Duration("elapsed", time.Since(overall)),
	)

	kept := Validate(data, imp.logger)
	sum.Species, sum.Moves = len(kept.Species), len(kept.Moves)
	sum.SkippedSpecies = len(data.Species) - sum.Species
	sum.SkippedMoves = len(data.Moves) - sum.Moves

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return sum, fmt.Errorf("creating output directory %s: %w", outputDir, err)
	}

	docs := []struct {
		name string
		body any
	}{
		{MovesFile, map[string]any{"moves": kept.Moves}},
		{SpeciesFile, map[string]any{"species": kept.Species}},
	}
	check := dex.New()
	for _, doc := range docs {
		out, err := yaml.Marshal(doc.body)
		if err != nil {
			return sum, fmt.Errorf("serialising %s: %w", doc.name, err)
		}
		// Reload before writing so a bad file never lands on disk.
		if err := check.Load(bytes.NewReader(out)); err != nil {
			return sum, fmt.Errorf("%s failed validation: %w", doc.name, err)
		}
		path := filepath.Join(outputDir, doc.name)
		if err := os.WriteFile(path, out, 0o644); err != nil {
			return sum, fmt.Errorf("writing %s: %w", path, err)
		}
		imp.logger.Info("wrote dex file", zap.String("path", path), zap.Int("bytes", len(out)))
	}

	imp.logger.Info("import complete",
		zap.Int("species", sum.Species),
		zap.Int("moves", sum.Moves),
		zap.Int("skipped_species", sum.SkippedSpecies),
		zap.Int("skipped_moves", sum.SkippedMoves),
		zap.Duration("elapsed", time.Since(overall)),
	)
	return sum, nil
}

package main

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/battlesim/internal/config"
	"github.com/cory-johannsen/battlesim/internal/game/dex"
	"github.com/cory-johannsen/battlesim/internal/game/dice"
	"github.com/cory-johannsen/battlesim/internal/game/sim"
	"github.com/cory-johannsen/battlesim/internal/scripting"
)

// app is the object graph a simulation needs.
type app struct {
	roller *dice.Roller
	dex    *dex.Dex
	engine *sim.Engine
}

// provideSource seeds the dice when simulation.seed is set, so a run can be
// replayed exactly.
func provideSource(cfg config.SimulationConfig) dice.Source {
	if cfg.Seed != 0 {
		return dice.NewSeededSource(uint64(cfg.Seed))
	}
	return dice.NewCryptoSource()
}

func provideDex(cfg config.SimulationConfig, logger *zap.Logger) (*dex.Dex, error) {
	d, err := dex.LoadDirectory(cfg.DexDir)
	if err != nil {
		return nil, err
	}
	logger.Info("dex loaded",
		zap.Int("species", len(d.AllSpecies())),
		zap.Int("moves", len(d.AllMoves())),
	)
	return d, nil
}

func provideScripts(cfg config.SimulationConfig, roller *dice.Roller, logger *zap.Logger) (*scripting.Manager, func(), error) {
	m := scripting.NewManager(roller, logger)
	if cfg.ScriptDir != "" {
		if err := m.Load(cfg.ScriptDir, cfg.InstructionLimit); err != nil {
			m.Close()
			return nil, nil, err
		}
	}
	return m, m.Close, nil
}

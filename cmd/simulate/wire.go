//go:build wireinject

package main

import (
	"github.com/google/wire"
	"go.uber.org/zap"

	"github.com/cory-johannsen/battlesim/internal/config"
	"github.com/cory-johannsen/battlesim/internal/game/dice"
	"github.com/cory-johannsen/battlesim/internal/game/sim"
)

func initializeApp(cfg config.SimulationConfig, logger *zap.Logger) (*app, func(), error) {
	wire.Build(
		provideSource,
		dice.NewLoggedRoller,
		provideDex,
		provideScripts,
		sim.NewAbilityRegistry,
		sim.NewEngine,
		wire.Struct(new(app), "*"),
	)
	return nil, nil, nil
}

// Package agent provides the choosers that play a side: uniformly random,
// a type-matchup heuristic, and a language-model-backed chooser.
package agent

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/battlesim/internal/config"
	"github.com/cory-johannsen/battlesim/internal/game/battle"
	"github.com/cory-johannsen/battlesim/internal/game/dex"
	"github.com/cory-johannsen/battlesim/internal/game/dice"
	"github.com/cory-johannsen/battlesim/internal/game/sim"
)

// Agent kinds accepted by New.
const (
	KindRandom    = "random"
	KindHeuristic = "heuristic"
	KindClaude    = "claude"
)

// New builds the chooser cfg names. d may be nil; the heuristic then relies
// on what the snapshot already knows about moves and types.
//
// Precondition: roller and logger must not be nil.
func New(cfg config.AgentConfig, roller *dice.Roller, d *dex.Dex, logger *zap.Logger) (sim.Chooser, error) {
	switch cfg.Kind {
	case KindRandom:
		return NewRandom(roller), nil
	case KindHeuristic:
		return NewHeuristic(d, logger), nil
	case KindClaude:
		return NewClaude(cfg, NewHeuristic(d, logger), logger), nil
	}
	return nil, fmt.Errorf("agent: unknown kind %q", cfg.Kind)
}

// resolveMove fills in static data for a move the snapshot knows only by ID,
// as happens for our own moves learned from a request payload.
func resolveMove(d *dex.Dex, m battle.Move) battle.Move {
	if d == nil || m.Type != "" {
		return m
	}
	def, err := d.Move(m.ID)
	if err != nil {
		return m
	}
	full, err := def.Move()
	if err != nil {
		return m
	}
	full.PP, full.MaxPP = m.PP, m.MaxPP
	return full
}

// typesOf returns p's types, from the dex when the snapshot has none.
func typesOf(d *dex.Dex, p *battle.Pokemon) []string {
	if len(p.Types) > 0 || d == nil {
		return p.Types
	}
	sp, err := d.Species(p.Species)
	if err != nil {
		return nil
	}
	return sp.Types
}

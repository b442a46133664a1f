// Package main runs a deterministic offline battle between two agents with
// the in-process simulator and prints the protocol log.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/battlesim/internal/agent"
	"github.com/cory-johannsen/battlesim/internal/config"
	"github.com/cory-johannsen/battlesim/internal/game/battle"
	"github.com/cory-johannsen/battlesim/internal/observability"
	"github.com/cory-johannsen/battlesim/internal/storage/postgres"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	seed := flag.Int64("seed", 0, "override simulation.seed; 0 keeps the configured value")
	outPath := flag.String("out", "", "write the protocol log to this file instead of stdout")
	store := flag.Bool("store", false, "persist the protocol log to the database")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	if *seed != 0 {
		cfg.Simulation.Seed = *seed
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	matchID := uuid.New()
	logger = observability.ForMatch(logger, matchID)

	a, cleanup, err := initializeApp(cfg.Simulation, logger)
	if err != nil {
		logger.Fatal("building simulator", zap.Error(err))
	}
	defer cleanup()
	roller, d := a.roller, a.dex

	sets, err := d.SidesSets(cfg.Simulation.Teams, roller, cfg.Simulation.TeamSize)
	if err != nil {
		logger.Fatal("building teams", zap.Error(err))
	}
	state := battle.NewState("p1", logger)
	for i, side := range []string{"p1", "p2"} {
		team, err := d.NewTeam(sets[i], cfg.Simulation.Level)
		if err != nil {
			logger.Fatal("building team", zap.String("side", side), zap.Error(err))
		}
		if err := state.SeedTeam(side, team); err != nil {
			logger.Fatal("seeding team", zap.String("side", side), zap.Error(err))
		}
	}
	state.Us.Username = cfg.Agents.P1.Name
	state.Opponent.Username = cfg.Agents.P2.Name

	p1, err := agent.New(cfg.Agents.P1, roller, d, logger)
	if err != nil {
		logger.Fatal("creating p1 agent", zap.Error(err))
	}
	p2, err := agent.New(cfg.Agents.P2, roller, d, logger)
	if err != nil {
		logger.Fatal("creating p2 agent", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	res, err := a.engine.Play(ctx, state, p1, p2, cfg.Simulation.MaxTurns)
	if err != nil {
		logger.Fatal("battle failed", zap.Error(err))
	}

	out := os.Stdout
	if *outPath != "" {
		f, err := os.Create(*outPath)
		if err != nil {
			logger.Fatal("creating log file", zap.Error(err))
		}
		defer f.Close()
		out = f
	}
	fmt.Fprintln(out, strings.Join(res.Log, "\n"))

	if *store {
		saveLog(ctx, cfg, logger, postgres.BattleLog{
			ID: matchID, Format: "simulation", Winner: res.Winner, Tie: res.Tie,
			Turns: res.Turns, Truncated: res.Truncated, Lines: res.Log,
		})
	}

	logger.Info("battle complete",
		zap.String("winner", res.Winner),
		zap.Bool("tie", res.Tie),
		zap.Int("turns", res.Turns),
		zap.Bool("truncated", res.Truncated),
		zap.Duration("elapsed", time.Since(start)),
	)
}

func saveLog(ctx context.Context, cfg config.Config, logger *zap.Logger, bl postgres.BattleLog) {
	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("connecting to database", zap.Error(err))
	}
	defer pool.Close()
	saved, err := postgres.NewBattleLogRepository(pool.DB()).Save(ctx, bl)
	if err != nil {
		logger.Fatal("saving battle log", zap.Error(err))
	}
	logger.Info("battle log stored", zap.String("id", saved.ID.String()), zap.Int("lines", len(saved.Lines)))
}

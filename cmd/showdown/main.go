// Package main plays one match against a Pokémon Showdown simulator child
// process, driving both sides with the configured agents.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/battlesim/internal/agent"
	"github.com/cory-johannsen/battlesim/internal/config"
	"github.com/cory-johannsen/battlesim/internal/game/dex"
	"github.com/cory-johannsen/battlesim/internal/game/dice"
	"github.com/cory-johannsen/battlesim/internal/match"
	"github.com/cory-johannsen/battlesim/internal/observability"
	"github.com/cory-johannsen/battlesim/internal/server"
	"github.com/cory-johannsen/battlesim/internal/storage/postgres"
	"github.com/cory-johannsen/battlesim/internal/transport"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	outPath := flag.String("out", "", "write the protocol log to this file instead of stdout")
	store := flag.Bool("store", false, "persist the protocol log to the database")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	matchID := uuid.New()
	logger = observability.ForMatch(logger, matchID)

	var src dice.Source
	if cfg.Simulation.Seed != 0 {
		src = dice.NewSeededSource(uint64(cfg.Simulation.Seed))
	} else {
		src = dice.NewCryptoSource()
	}
	roller := dice.NewLoggedRoller(src, logger)

	d, err := dex.LoadDirectory(cfg.Simulation.DexDir)
	if err != nil {
		logger.Fatal("loading dex", zap.Error(err))
	}

	// Teams: engine.teams when set, else random sets from the local dex.
	sets, err := d.SidesSets(cfg.Engine.Teams, roller, cfg.Simulation.TeamSize)
	if err != nil {
		logger.Fatal("building teams", zap.Error(err))
	}
	agentCfgs := [2]config.AgentConfig{cfg.Agents.P1, cfg.Agents.P2}
	var players [2]match.Player
	for i := range players {
		packed, err := transport.PackTeam(ctx, cfg.Engine.PackCommand, cfg.Engine.Dir, d.ExportTeam(sets[i]))
		if err != nil {
			logger.Fatal("packing team", zap.Int("player", i+1), zap.Error(err))
		}
		players[i] = match.Player{Name: agentCfgs[i].Name, Team: packed}
	}

	p1, err := agent.New(cfg.Agents.P1, roller, d, logger)
	if err != nil {
		logger.Fatal("creating p1 agent", zap.Error(err))
	}
	p2, err := agent.New(cfg.Agents.P2, roller, d, logger)
	if err != nil {
		logger.Fatal("creating p2 agent", zap.Error(err))
	}

	proc := transport.NewProcess(transport.Options{
		Command:     cfg.Engine.Command,
		Dir:         cfg.Engine.Dir,
		CloseGrace:  cfg.Engine.CloseGrace,
		StderrLines: cfg.Engine.StderrLines,
	}, logger)
	if err := proc.Start(); err != nil {
		logger.Fatal("starting engine", zap.Strings("command", cfg.Engine.Command), zap.Error(err))
	}
	logger.Info("engine started",
		zap.Strings("command", cfg.Engine.Command),
		zap.Duration("elapsed", time.Since(start)),
	)

	runner := match.NewRunner(proc, match.Options{
		Format:        cfg.Engine.Format,
		Players:       players,
		ReadTimeout:   cfg.Engine.ReadTimeout,
		StartupBudget: cfg.Engine.StartupBudget,
		StepBudget:    cfg.Engine.StepBudget,
		MaxTurns:      cfg.Engine.MaxTurns,
	}, logger)

	matchCtx, cancel := context.WithCancel(ctx)
	results := make(chan match.Result, 1)
	lifecycle := server.NewLifecycle(logger)
	lifecycle.Add("match", &server.FuncService{
		StartFn: func() error {
			res, err := runner.Run(matchCtx, p1, p2)
			results <- res
			return err
		},
		StopFn: func() {
			cancel()
			if err := runner.Close(); err != nil {
				logger.Warn("closing engine", zap.Error(err))
			}
		},
	})
	runErr := lifecycle.Run(ctx)
	// Stop cancels the match, so its Start has returned or is about to.
	res := <-results

	lines := runner.ProtocolLog()
	out := os.Stdout
	if *outPath != "" {
		f, err := os.Create(*outPath)
		if err != nil {
			logger.Fatal("creating log file", zap.Error(err))
		}
		defer f.Close()
		out = f
	}
	fmt.Fprintln(out, strings.Join(lines, "\n"))

	if runErr != nil {
		logger.Fatal("match failed", zap.Error(runErr), zap.Strings("stderr", proc.StderrTail()))
	}

	if *store {
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			logger.Fatal("connecting to database", zap.Error(err))
		}
		defer pool.Close()
		saved, err := postgres.NewBattleLogRepository(pool.DB()).Save(ctx, postgres.BattleLog{
			ID: matchID, Format: cfg.Engine.Format, Winner: res.Winner, Tie: res.Tie,
			Turns: res.Turns, Truncated: res.Truncated, Lines: lines,
		})
		if err != nil {
			logger.Fatal("saving battle log", zap.Error(err))
		}
		logger.Info("battle log stored", zap.String("id", saved.ID.String()))
	}

	logger.Info("match complete",
		zap.String("winner", res.Winner),
		zap.Bool("tie", res.Tie),
		zap.Int("turns", res.Turns),
		zap.Bool("truncated", res.Truncated),
		zap.Duration("elapsed", time.Since(start)),
	)
}

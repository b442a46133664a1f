// Package main converts Showdown data exports into dex YAML and loads a dex
// directory into Postgres.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/battlesim/internal/config"
	"github.com/cory-johannsen/battlesim/internal/game/dex"
	"github.com/cory-johannsen/battlesim/internal/importer"
	"github.com/cory-johannsen/battlesim/internal/importer/showdown"
	"github.com/cory-johannsen/battlesim/internal/observability"
	"github.com/cory-johannsen/battlesim/internal/storage/postgres"
)

func main() {
	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	format := flag.String("format", "", "convert source data first; supported: showdown")
	sourceDir := flag.String("source", "", "directory holding the source data exports")
	gen := flag.Int("gen", 9, "keep learnset entries from this generation; 0 keeps all")
	outputDir := flag.String("output", "", "dex directory to write; defaults to simulation.dex_dir")
	store := flag.Bool("store", false, "upsert the dex directory into the database")
	flag.Parse()

	if *format == "" && !*store {
		fmt.Fprintln(os.Stderr, "usage: import-dex [-format showdown -source <dir>] [-output <dir>] [-store]")
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	dir := cfg.Simulation.DexDir
	if *outputDir != "" {
		dir = *outputDir
	}

	if *format != "" {
		var src importer.Source
		switch *format {
		case "showdown":
			src = showdown.NewSource(*gen)
		default:
			logger.Fatal("unknown format", zap.String("format", *format), zap.Strings("supported", []string{"showdown"}))
		}
		if *sourceDir == "" {
			logger.Fatal("-source is required with -format")
		}
		if _, err := importer.New(src, logger).Run(*sourceDir, dir); err != nil {
			logger.Fatal("import failed", zap.Error(err))
		}
	}

	if !*store {
		return
	}

	start := time.Now()
	d, err := dex.LoadDirectory(dir)
	if err != nil {
		logger.Fatal("loading dex", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("connecting to database", zap.Error(err))
	}
	defer pool.Close()

	species, moves, err := postgres.NewDexRepository(pool.DB()).Import(ctx, d)
	if err != nil {
		logger.Fatal("storing dex", zap.Error(err))
	}
	logger.Info("dex stored",
		zap.String("dir", dir),
		zap.Int("species", species),
		zap.Int("moves", moves),
		zap.Duration("elapsed", time.Since(start)),
	)
}

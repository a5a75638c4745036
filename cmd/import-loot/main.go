// Package main imports YAML loot pools into PostgreSQL.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/dianahille/pyphoria/internal/config"
	"github.com/dianahille/pyphoria/internal/game/inventory"
	"github.com/dianahille/pyphoria/internal/game/loot"
	"github.com/dianahille/pyphoria/internal/observability"
	"github.com/dianahille/pyphoria/internal/storage/postgres"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	envFile := flag.String("env", ".env", "optional dotenv file with PYPHORIA_ overrides")
	poolsDir := flag.String("pools", "", "loot pool YAML directory (default: loot.pools_dir)")
	itemsDir := flag.String("items", "", "item template YAML directory (default: loot.items_dir)")
	dryRun := flag.Bool("dry-run", false, "validate content without writing to the database")
	flag.Parse()

	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Fatalf("loading %s: %v", *envFile, err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	if *poolsDir == "" {
		*poolsDir = cfg.Loot.PoolsDir
	}
	if *itemsDir == "" {
		*itemsDir = cfg.Loot.ItemsDir
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	pools, err := loot.LoadPools(*poolsDir)
	if err != nil {
		logger.Fatal("loading loot pools", zap.Error(err))
	}
	registry, err := loot.NewRegistry(pools)
	if err != nil {
		logger.Fatal("indexing loot pools", zap.Error(err))
	}
	items, err := inventory.LoadRegistry(*itemsDir)
	if err != nil {
		logger.Fatal("loading item templates", zap.Error(err))
	}
	if err := registry.CheckTemplates(items.Has); err != nil {
		logger.Fatal("validating loot pools", zap.Error(err))
	}
	logger.Info("loot content validated",
		zap.Int("pools", registry.Len()),
		zap.Int("items", items.Len()),
	)
	if *dryRun {
		fmt.Printf("validated %d pools in %s\n", registry.Len(), time.Since(start).Round(time.Millisecond))
		return
	}

	ctx := context.Background()
	db, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("connecting to database", zap.Error(err))
	}
	defer db.Close()

	repo := postgres.NewLootPoolRepository(db.DB())
	for _, p := range registry.All() {
		if err := repo.ReplacePool(ctx, p); err != nil {
			logger.Fatal("storing loot pool", zap.String("pool", p.Key()), zap.Error(err))
		}
		logger.Debug("stored loot pool", zap.String("pool", p.Key()), zap.Int("entries", len(p.Entries)))
	}
	fmt.Printf("imported %d pools in %s\n", registry.Len(), time.Since(start).Round(time.Millisecond))
}

// Package main runs loot sessions from the command line and prints the drops.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"maps"
	"slices"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/dianahille/pyphoria/internal/config"
	"github.com/dianahille/pyphoria/internal/game/dice"
	"github.com/dianahille/pyphoria/internal/game/inventory"
	"github.com/dianahille/pyphoria/internal/game/loot"
	"github.com/dianahille/pyphoria/internal/observability"
	"github.com/dianahille/pyphoria/internal/storage/postgres"
)

// fixedProfile serves one character profile from flags when no database is used.
type fixedProfile loot.CharacterProfile

func (f fixedProfile) LootProfile(_ context.Context, characterID string) (loot.CharacterProfile, error) {
	if characterID != f.ID {
		return loot.CharacterProfile{}, fmt.Errorf("%w: %s", postgres.ErrCharacterNotFound, characterID)
	}
	return loot.CharacterProfile(f), nil
}

func main() {
	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	envFile := flag.String("env", ".env", "optional dotenv file with PYPHORIA_ overrides")
	source := flag.String("source", "yaml", "pool and character source: yaml or postgres")
	planet := flag.String("planet", "", "planet id of the encounter")
	area := flag.String("area", "", "area id of the encounter")
	monster := flag.String("monster", "", "monster type id")
	monsterLevel := flag.Int("monster-level", 1, "level of the defeated monster")
	characterID := flag.String("character", "sim", "character id (looked up in postgres mode)")
	level := flag.Int("level", 1, "character level (yaml mode)")
	chance := flag.Float64("chance", 0, "loot chance modifier (yaml mode)")
	quality := flag.Float64("quality", 0, "loot quality modifier (yaml mode)")
	runs := flag.Int("runs", 1, "number of encounters to simulate")
	seed := flag.Int64("seed", 0, "random seed (0 = loot.seed from config)")
	randomSeed := flag.Bool("random-seed", false, "draw and print a fresh replayable seed")
	preview := flag.Bool("preview", false, "store drops in an in-memory inventory and print it")
	grant := flag.Bool("grant", false, "persist drops into the character's inventory (postgres mode)")
	flag.Parse()

	if *planet == "" || *area == "" || *monster == "" {
		fmt.Fprintln(os.Stderr, "usage: lootsim -planet <id> -area <id> -monster <id> [-monster-level n] [-runs n]")
		os.Exit(1)
	}
	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Fatalf("loading %s: %v", *envFile, err)
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

	s := cfg.Loot.Seed
	if *seed != 0 {
		s = *seed
	}
	if *randomSeed {
		if s, err = dice.NewSeed(); err != nil {
			logger.Fatal("drawing seed", zap.Error(err))
		}
		fmt.Printf("seed %d\n", s)
	}
	roller := dice.NewLoggedRoller(dice.SourceFor(s), logger)

	tiers, err := loot.LoadTierTable(cfg.Loot.TiersFile)
	if err != nil {
		logger.Fatal("loading tier table", zap.Error(err))
	}
	items, err := inventory.LoadRegistry(cfg.Loot.ItemsDir)
	if err != nil {
		logger.Fatal("loading item templates", zap.Error(err))
	}
	sampler, err := loot.NewSamplerFromConfig(cfg.Loot, roller)
	if err != nil {
		logger.Fatal("configuring drop count sampler", zap.Error(err))
	}

	ctx := context.Background()
	var (
		pools       loot.PoolSource
		characters  loot.CharacterSource
		inventories *postgres.InventoryRepository
	)
	switch *source {
	case "yaml":
		registry, err := loadRegistry(cfg.Loot.PoolsDir, items)
		if err != nil {
			logger.Fatal("loading loot pools", zap.Error(err))
		}
		pools = registry
		characters = fixedProfile{
			ID:        *characterID,
			Level:     *level,
			Modifiers: loot.Modifiers{Chance: *chance, Quality: *quality},
		}
	case "postgres":
		db, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			logger.Fatal("connecting to database", zap.Error(err))
		}
		defer db.Close()
		pools = postgres.NewLootPoolRepository(db.DB())
		characters = postgres.NewCharacterRepository(db.DB())
		inventories = postgres.NewInventoryRepository(db.DB(), items)
	default:
		logger.Fatal("unknown source", zap.String("source", *source))
	}
	if *grant && inventories == nil {
		logger.Fatal("-grant requires -source postgres")
	}

	svc := loot.NewService(pools, characters,
		sampler, loot.NewItemRoller(tiers, cfg.Loot.TierSkew, roller),
		loot.Bounds{Min: cfg.Loot.Modifiers.Min, Max: cfg.Loot.Modifiers.Max},
		logger,
	)

	var bag *inventory.Inventory
	if *preview {
		bag = inventory.New(*characterID, inventory.DefaultSlots)
	}
	enc := loot.Encounter{
		PlanetID:      *planet,
		AreaID:        *area,
		CharacterID:   *characterID,
		MonsterTypeID: *monster,
		MonsterLevel:  *monsterLevel,
	}
	total := 0
	for i := 1; i <= *runs; i++ {
		res, err := svc.Generate(ctx, enc)
		if err != nil {
			logger.Fatal("generating loot", zap.Int("run", i), zap.Error(err))
		}
		total += len(res.Drops)
		printResult(os.Stdout, i, res)

		if bag != nil {
			_, rejected := bag.AddDrops(res.Drops, items)
			for _, r := range rejected {
				fmt.Printf("    not stored: %s (%v)\n", r.Drop.ItemTemplateID, r.Err)
			}
		}
		if *grant {
			stored, rejected, err := inventories.Grant(ctx, *characterID, res.Drops)
			if err != nil {
				logger.Fatal("granting loot", zap.Error(err))
			}
			fmt.Printf("    granted %d, rejected %d\n", stored, len(rejected))
		}
	}
	fmt.Printf("%d drops over %d runs\n", total, *runs)

	if bag != nil {
		printInventory(os.Stdout, bag, items)
	}
}

func loadRegistry(dir string, items *inventory.Registry) (*loot.Registry, error) {
	pools, err := loot.LoadPools(dir)
	if err != nil {
		return nil, err
	}
	registry, err := loot.NewRegistry(pools)
	if err != nil {
		return nil, err
	}
	if err := registry.CheckTemplates(items.Has); err != nil {
		return nil, err
	}
	return registry, nil
}

func printResult(w io.Writer, run int, res loot.Result) {
	fmt.Fprintf(w, "run %d: %d sampled, %d dropped\n", run, res.Sampled, len(res.Drops))
	for _, d := range res.Drops {
		fmt.Fprintf(w, "  %-20s lvl %-3d tier %d %s\n", d.ItemTemplateID, d.ItemLevel, d.Tier, formatStats(d.Stats))
	}
}

func formatStats(stats map[string]int) string {
	parts := make([]string, 0, len(stats))
	for _, k := range slices.Sorted(maps.Keys(stats)) {
		parts = append(parts, fmt.Sprintf("%s=%d", k, stats[k]))
	}
	return strings.Join(parts, " ")
}

func printInventory(w io.Writer, inv *inventory.Inventory, items *inventory.Registry) {
	fmt.Fprintf(w, "inventory %d/%d slots\n", inv.UsedSlots(), inv.Slots)
	for _, s := range inv.Items() {
		name := s.ItemID
		if d, ok := items.Item(s.ItemID); ok {
			name = d.Name
		}
		fmt.Fprintf(w, "  %-24s x%d\n", name, s.Quantity)
	}
}

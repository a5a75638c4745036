package loot_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dianahille/pyphoria/internal/config"
	"github.com/dianahille/pyphoria/internal/game/inventory"
	"github.com/dianahille/pyphoria/internal/game/loot"
)

var contentDir = filepath.Join("..", "..", "..", "content")

func TestContent_PoolsReferenceKnownItems(t *testing.T) {
	pools, err := loot.LoadPools(filepath.Join(contentDir, "loot", "pools"))
	require.NoError(t, err)
	registry, err := loot.NewRegistry(pools)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, registry.Len(), 6)

	items, err := inventory.LoadRegistry(filepath.Join(contentDir, "items"))
	require.NoError(t, err)
	assert.NoError(t, registry.CheckTemplates(items.Has))
}

func TestContent_TierTableIsValid(t *testing.T) {
	tiers, err := loot.LoadTierTable(filepath.Join(contentDir, "loot", "tiers.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 2, tiers.TierCount(1))
	assert.Equal(t, 5, tiers.TierCount(80))
}

func TestContent_DefaultConfigGeneratesLoot(t *testing.T) {
	cfg, err := config.LoadFromViper(config.Defaults())
	require.NoError(t, err)
	cfg.Loot.Seed = 99

	pools, err := loot.LoadPools(filepath.Join(contentDir, "loot", "pools"))
	require.NoError(t, err)
	registry, err := loot.NewRegistry(pools)
	require.NoError(t, err)
	tiers, err := loot.LoadTierTable(filepath.Join(contentDir, "loot", "tiers.yaml"))
	require.NoError(t, err)

	roller := seededRoller(cfg.Loot.Seed)
	sampler, err := loot.NewSamplerFromConfig(cfg.Loot, roller)
	require.NoError(t, err)
	svc := loot.NewService(registry,
		stubCharacters{"hero": {ID: "hero", Level: 12}},
		sampler, loot.NewItemRoller(tiers, cfg.Loot.TierSkew, roller),
		loot.Bounds{Min: cfg.Loot.Modifiers.Min, Max: cfg.Loot.Modifiers.Max},
		zap.NewNop(),
	)

	dropped := 0
	for i := 0; i < 50; i++ {
		res, err := svc.Generate(context.Background(), loot.Encounter{
			PlanetID: "verdantis", AreaID: "deepwood", CharacterID: "hero",
			MonsterTypeID: "forest_troll", MonsterLevel: 14,
		})
		require.NoError(t, err)
		for _, d := range res.Drops {
			assert.NotEqual(t, "crown_of_the_deepwood", d.ItemTemplateID, "unique gated by monster level 15")
			assert.GreaterOrEqual(t, d.Tier, 1)
		}
		dropped += len(res.Drops)
	}
	assert.Positive(t, dropped)
}

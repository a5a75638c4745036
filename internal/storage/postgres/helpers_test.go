package postgres_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/dianahille/pyphoria/internal/game/dice"
	"github.com/dianahille/pyphoria/internal/game/loot"
)

// newLootService builds a loot service that always drops exactly count items.
func newLootService(t *testing.T, pools loot.PoolSource, chars loot.CharacterSource, count int) *loot.Service {
	t.Helper()
	logger := zaptest.NewLogger(t)
	roller := dice.NewLoggedRoller(dice.NewSeededSource(1), logger)

	weights := make([]float64, count+1)
	weights[count] = 1
	sampler, err := loot.NewSampler(
		loot.CountTable{Weights: weights},
		loot.Explosion{Odds: 1, MinMultiplier: 1, MaxMultiplier: 1},
		roller,
	)
	require.NoError(t, err)

	tiers := &loot.TierTable{Bands: []loot.Band{{MinItemLevel: 1, Tiers: 1}}}
	items := loot.NewItemRoller(tiers, 1, roller)
	return loot.NewService(pools, chars, sampler, items, loot.DefaultBounds, logger)
}

package loot_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"pgregory.net/rapid"

	"github.com/dianahille/pyphoria/internal/config"
	"github.com/dianahille/pyphoria/internal/game/dice"
	"github.com/dianahille/pyphoria/internal/game/loot"
)

var defaultTable = loot.CountTable{Weights: []float64{1, 2.5, 4, 4, 2.5, 1}}
var defaultExplosion = loot.Explosion{Odds: 100, MinMultiplier: 2, MaxMultiplier: 4}

func TestNewSampler_RejectsInvalidConfig(t *testing.T) {
	r := seededRoller(1)
	_, err := loot.NewSampler(loot.CountTable{}, defaultExplosion, r)
	assert.Error(t, err)
	_, err = loot.NewSampler(loot.CountTable{Weights: []float64{0, 0}}, defaultExplosion, r)
	assert.Error(t, err)
	_, err = loot.NewSampler(loot.CountTable{Weights: []float64{1, -1}}, defaultExplosion, r)
	assert.Error(t, err)
	_, err = loot.NewSampler(defaultTable, loot.Explosion{Odds: 0, MinMultiplier: 2, MaxMultiplier: 4}, r)
	assert.Error(t, err)
	_, err = loot.NewSampler(defaultTable, loot.Explosion{Odds: 100, MinMultiplier: 3, MaxMultiplier: 2}, r)
	assert.Error(t, err)
}

func TestNewSamplerFromConfig(t *testing.T) {
	cfg, err := config.LoadFromViper(config.Defaults())
	require.NoError(t, err)
	s, err := loot.NewSamplerFromConfig(cfg.Loot, seededRoller(1))
	require.NoError(t, err)
	assert.NotNil(t, s)
}

// The default table totals 15; a draw of 0.5 lands on count 3 and an
// explosion roll of 42 out of 100 misses.
func TestSampleCount_ScriptedDrawsGiveLiteralCount(t *testing.T) {
	for i := 0; i < 5; i++ {
		src := &scriptedSource{floats: []float64{0.5}, ints: []int{42}}
		s, err := loot.NewSampler(defaultTable, defaultExplosion, dice.NewLoggedRoller(src, zap.NewNop()))
		require.NoError(t, err)
		assert.Equal(t, 3, s.SampleCount(0))
	}
}

func TestSampleCount_FixedSeedIsReproducible(t *testing.T) {
	run := func() []int {
		s, err := loot.NewSampler(defaultTable, defaultExplosion, seededRoller(20240601))
		require.NoError(t, err)
		out := make([]int, 50)
		for i := range out {
			out[i] = s.SampleCount(0)
		}
		return out
	}
	first := run()
	assert.Equal(t, first, run())
	assert.Equal(t, first, run())
}

func TestSampleCount_Explosion(t *testing.T) {
	src := &scriptedSource{floats: []float64{0.0}, ints: []int{0}}
	s, err := loot.NewSampler(fixedCount(2), loot.Explosion{Odds: 1, MinMultiplier: 3, MaxMultiplier: 3}, dice.NewLoggedRoller(src, zap.NewNop()))
	require.NoError(t, err)
	assert.Equal(t, 6, s.SampleCount(0))
}

func TestSampleCount_ExplosionMultiplierWithinRange(t *testing.T) {
	s, err := loot.NewSampler(fixedCount(10), loot.Explosion{Odds: 1, MinMultiplier: 2, MaxMultiplier: 4}, seededRoller(3))
	require.NoError(t, err)
	for i := 0; i < 100; i++ {
		n := s.SampleCount(0)
		assert.GreaterOrEqual(t, n, 20)
		assert.LessOrEqual(t, n, 40)
	}
}

func TestSampleCount_ModifierScalesAndRounds(t *testing.T) {
	tests := []struct {
		base     int
		modifier float64
		want     int
	}{
		{3, 0, 3},
		{3, 0.5, 5},
		{3, 1, 6},
		{3, -0.9, 0},
		{3, -1, 0},
		{4, -0.5, 2},
		{0, 10, 0},
	}
	for _, tt := range tests {
		s, err := loot.NewSampler(fixedCount(tt.base), noExplosion, seededRoller(1))
		require.NoError(t, err)
		assert.Equal(t, tt.want, s.SampleCount(tt.modifier), "base=%d modifier=%v", tt.base, tt.modifier)
	}
}

func TestSampleCount_NonFiniteModifierIsNeutral(t *testing.T) {
	s, err := loot.NewSampler(fixedCount(2), noExplosion, seededRoller(1))
	require.NoError(t, err)
	assert.Equal(t, 2, s.SampleCount(math.NaN()))
	assert.Equal(t, 2, s.SampleCount(math.Inf(1)))
}

func TestSampleCount_ZeroWeightCountsNeverDrawn(t *testing.T) {
	s, err := loot.NewSampler(loot.CountTable{Weights: []float64{0, 1, 0, 1}}, noExplosion, seededRoller(9))
	require.NoError(t, err)
	for i := 0; i < 200; i++ {
		n := s.SampleCount(0)
		assert.True(t, n == 1 || n == 3, "got %d", n)
	}
}

func TestProperty_SampleCountNonNegative(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		mod := rapid.Float64Range(-5, 1000).Draw(rt, "modifier")
		seed := rapid.Int64().Draw(rt, "seed")
		s, err := loot.NewSampler(defaultTable, loot.Explosion{Odds: 2, MinMultiplier: 1, MaxMultiplier: 5}, seededRoller(seed))
		require.NoError(rt, err)
		assert.GreaterOrEqual(rt, s.SampleCount(mod), 0)
	})
}

func TestProperty_SampleCountBoundedWithoutExplosion(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		mod := rapid.Float64Range(-1, 10).Draw(rt, "modifier")
		s, err := loot.NewSampler(defaultTable, noExplosion, seededRoller(rapid.Int64().Draw(rt, "seed")))
		require.NoError(rt, err)
		n := s.SampleCount(mod)
		assert.LessOrEqual(rt, n, int(math.Round(5*(1+mod))))
	})
}

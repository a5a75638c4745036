package loot_test

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/dianahille/pyphoria/internal/game/dice"
	"github.com/dianahille/pyphoria/internal/game/loot"
)

// scriptedSource replays fixed values so tests can assert exact outcomes.
type scriptedSource struct {
	floats []float64
	ints   []int
}

func (s *scriptedSource) Intn(n int) int {
	v := s.ints[0] % n
	s.ints = s.ints[1:]
	return v
}

func (s *scriptedSource) Float64() float64 {
	v := s.floats[0]
	s.floats = s.floats[1:]
	return v
}

func seededRoller(seed int64) *dice.Roller {
	return dice.NewLoggedRoller(dice.NewSeededSource(seed), zap.NewNop())
}

// noExplosion always fires with a x1 multiplier so counts stay untouched.
var noExplosion = loot.Explosion{Odds: 1, MinMultiplier: 1, MaxMultiplier: 1}

func fixedCount(n int) loot.CountTable {
	weights := make([]float64, n+1)
	weights[n] = 1
	return loot.CountTable{Weights: weights}
}

func singleTierTable() *loot.TierTable {
	return &loot.TierTable{Bands: []loot.Band{{MinItemLevel: 1, Tiers: 1}}}
}

// countingPools is a PoolSource that records how often each lookup runs.
type countingPools struct {
	areas        map[string]*loot.Pool
	monsters     map[string]*loot.Pool
	areaCalls    int
	monsterCalls int
}

func (c *countingPools) AreaPool(ctx context.Context, planetID, areaID string) (*loot.Pool, error) {
	c.areaCalls++
	return lookup(c.areas, loot.AreaKey(planetID, areaID))
}

func (c *countingPools) MonsterPool(ctx context.Context, monsterTypeID string) (*loot.Pool, error) {
	c.monsterCalls++
	return lookup(c.monsters, loot.MonsterKey(monsterTypeID))
}

func lookup(m map[string]*loot.Pool, key string) (*loot.Pool, error) {
	if p, ok := m[key]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("%w: %s", loot.ErrPoolNotFound, key)
}

type stubCharacters map[string]loot.CharacterProfile

var errNoCharacter = errors.New("character not found")

func (s stubCharacters) LootProfile(_ context.Context, id string) (loot.CharacterProfile, error) {
	p, ok := s[id]
	if !ok {
		return loot.CharacterProfile{}, errNoCharacter
	}
	return p, nil
}

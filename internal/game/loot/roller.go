package loot

import (
	"errors"
	"maps"
	"math"
	"slices"

	"github.com/google/uuid"

	"github.com/dianahille/pyphoria/internal/game/dice"
)

// ErrNoEligibleEntry is returned when level gating leaves no candidate for a drop slot.
var ErrNoEligibleEntry = errors.New("no eligible loot entry")

// Drop is a single rolled item instance. Drops are not persisted by this package.
type Drop struct {
	InstanceID     string
	ItemTemplateID string
	ItemLevel      int
	Tier           int
	Stats          map[string]int
}

// ItemRoller selects item templates from a pool and rolls their tier and stats.
type ItemRoller struct {
	tiers  *TierTable
	skew   float64
	roller *dice.Roller
}

// NewItemRoller creates an ItemRoller.
//
// Precondition: tiers must have passed Validate; skew >= 0; roller must be non-nil.
func NewItemRoller(tiers *TierTable, skew float64, roller *dice.Roller) *ItemRoller {
	return &ItemRoller{tiers: tiers, skew: skew, roller: roller}
}

// RollOne picks one eligible entry from pool, weighted by Entry.Weight, then
// rolls its item level, tier and stats.
//
// The item level is drawn from [characterLevel, monsterLevel] (from the entry's
// MinLevel for unique entries), collapsed to monsterLevel when the lower bound
// exceeds it, and clamped into the entry's level range.
//
// Postcondition: Returns ErrNoEligibleEntry when no entry passes level gating;
// otherwise 1 <= Drop.Tier <= TierCount(Drop.ItemLevel).
func (r *ItemRoller) RollOne(pool *Pool, characterLevel, monsterLevel int, qualityModifier float64) (Drop, error) {
	weights := make([]float64, len(pool.Entries))
	for i, e := range pool.Entries {
		if e.Eligible(characterLevel, monsterLevel) {
			weights[i] = e.Weight
		}
	}
	idx := r.roller.Pick("loot entry", weights)
	if idx < 0 {
		return Drop{}, ErrNoEligibleEntry
	}
	entry := pool.Entries[idx]

	lo := characterLevel
	if entry.Unique {
		lo = entry.MinLevel
	}
	hi := monsterLevel
	if lo > hi {
		lo = hi
	}
	level := r.roller.IntRange("item level", lo, hi)
	level = max(level, entry.MinLevel)
	if entry.MaxLevel != 0 {
		level = min(level, entry.MaxLevel)
	}

	if math.IsNaN(qualityModifier) {
		qualityModifier = 0
	}
	qualityModifier = math.Max(-1, qualityModifier)
	n := r.tiers.TierCount(level)
	tier := r.roller.Pick("stat tier", TierWeights(n, r.skew, qualityModifier)) + 1

	stats := make(map[string]int, len(r.tiers.Stats))
	for _, name := range slices.Sorted(maps.Keys(r.tiers.Stats)) {
		rng := r.tiers.Stats[name][tier-1]
		stats[name] = r.roller.IntRange(name, rng.Min, rng.Max)
	}

	return Drop{
		InstanceID:     uuid.New().String(),
		ItemTemplateID: entry.ItemTemplateID,
		ItemLevel:      level,
		Tier:           tier,
		Stats:          stats,
	}, nil
}

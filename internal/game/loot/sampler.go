package loot

import (
	"errors"
	"fmt"
	"math"

	"github.com/dianahille/pyphoria/internal/config"
	"github.com/dianahille/pyphoria/internal/game/dice"
)

// CountTable is the base probability table for the number of drops.
// Weights[i] is the relative weight of dropping exactly i items.
type CountTable struct {
	Weights []float64
}

// Validate checks that the table has at least one positive weight and no negative ones.
func (t CountTable) Validate() error {
	if len(t.Weights) == 0 {
		return errors.New("count table must not be empty")
	}
	var total float64
	for i, w := range t.Weights {
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return fmt.Errorf("count table: weight[%d] must be a finite value >= 0, got %v", i, w)
		}
		total += w
	}
	if total <= 0 {
		return errors.New("count table: weights must have a positive total")
	}
	return nil
}

// Explosion is the rare multiplicative bonus applied to a non-zero drop count.
type Explosion struct {
	// Odds is N in a 1-in-N chance.
	Odds          int
	MinMultiplier float64
	MaxMultiplier float64
}

// Validate checks the explosion invariants.
func (e Explosion) Validate() error {
	if e.Odds < 1 {
		return fmt.Errorf("explosion: odds must be >= 1, got %d", e.Odds)
	}
	if e.MinMultiplier < 1 || e.MaxMultiplier < e.MinMultiplier {
		return fmt.Errorf("explosion: multiplier range [%v, %v] must satisfy 1 <= min <= max", e.MinMultiplier, e.MaxMultiplier)
	}
	return nil
}

// Sampler draws how many items an encounter drops.
type Sampler struct {
	table     CountTable
	explosion Explosion
	roller    *dice.Roller
}

// NewSampler creates a Sampler.
//
// Precondition: roller must be non-nil.
// Postcondition: Returns an error if table or explosion is invalid.
func NewSampler(table CountTable, explosion Explosion, roller *dice.Roller) (*Sampler, error) {
	if err := table.Validate(); err != nil {
		return nil, err
	}
	if err := explosion.Validate(); err != nil {
		return nil, err
	}
	weights := make([]float64, len(table.Weights))
	copy(weights, table.Weights)
	return &Sampler{table: CountTable{Weights: weights}, explosion: explosion, roller: roller}, nil
}

// NewSamplerFromConfig builds a Sampler from the loot configuration section.
func NewSamplerFromConfig(cfg config.LootConfig, roller *dice.Roller) (*Sampler, error) {
	return NewSampler(
		CountTable{Weights: cfg.Count.Weights},
		Explosion{
			Odds:          cfg.Explosion.Odds,
			MinMultiplier: cfg.Explosion.MinMultiplier,
			MaxMultiplier: cfg.Explosion.MaxMultiplier,
		},
		roller,
	)
}

// SampleCount picks a base count from the table, scales it by (1 + chanceModifier)
// rounded to the nearest integer, and applies the explosion roll when the scaled
// count is positive. A non-finite modifier is treated as 0.
//
// Postcondition: Returns a value >= 0.
func (s *Sampler) SampleCount(chanceModifier float64) int {
	if math.IsNaN(chanceModifier) || math.IsInf(chanceModifier, 0) {
		chanceModifier = 0
	}
	base := s.roller.Pick("drop count", s.table.Weights)
	count := roundNonNegative(float64(base) * (1 + chanceModifier))
	if count == 0 {
		return 0
	}
	if s.roller.Chance("explosion", s.explosion.Odds) {
		mult := s.roller.Uniform("explosion multiplier", s.explosion.MinMultiplier, s.explosion.MaxMultiplier)
		count = roundNonNegative(float64(count) * mult)
	}
	return count
}

// maxCount caps absurd scaled counts before float-to-int conversion.
const maxCount = math.MaxInt32

func roundNonNegative(v float64) int {
	r := math.Round(v)
	if r <= 0 {
		return 0
	}
	if r >= maxCount {
		return maxCount
	}
	return int(r)
}

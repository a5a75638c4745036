package loot

import (
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// Band maps an item level threshold to the number of stat tiers available.
type Band struct {
	MinItemLevel int `yaml:"min_item_level"`
	Tiers        int `yaml:"tiers"`
}

// StatRange is the inclusive value range a stat rolls within for one tier.
type StatRange struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

// TierTable is the external configuration mapping item level to stat tiers
// and tiers to stat ranges. Stats[name][t-1] is the range for tier t.
type TierTable struct {
	Bands []Band                 `yaml:"bands"`
	Stats map[string][]StatRange `yaml:"stats"`
}

// Validate checks the table invariants.
//
// Postcondition: Returns nil iff there is at least one band, bands are in
// strictly ascending MinItemLevel order with Tiers >= 1, and every stat
// defines a valid range for each tier any band can produce.
func (t *TierTable) Validate() error {
	if len(t.Bands) == 0 {
		return errors.New("tier table: at least one band is required")
	}
	maxTiers := 0
	for i, b := range t.Bands {
		if b.Tiers < 1 {
			return fmt.Errorf("tier table: band[%d] tiers must be >= 1, got %d", i, b.Tiers)
		}
		if i > 0 && b.MinItemLevel <= t.Bands[i-1].MinItemLevel {
			return fmt.Errorf("tier table: band[%d] min_item_level must be greater than band[%d]", i, i-1)
		}
		maxTiers = max(maxTiers, b.Tiers)
	}
	for name, ranges := range t.Stats {
		if len(ranges) < maxTiers {
			return fmt.Errorf("tier table: stat %q defines %d tiers, need %d", name, len(ranges), maxTiers)
		}
		for i, r := range ranges {
			if r.Min > r.Max {
				return fmt.Errorf("tier table: stat %q tier %d min (%d) must be <= max (%d)", name, i+1, r.Min, r.Max)
			}
		}
	}
	return nil
}

// TierCount returns the number of tiers available at itemLevel: the Tiers of
// the highest band whose MinItemLevel <= itemLevel, or 1 below the first band.
func (t *TierTable) TierCount(itemLevel int) int {
	n := 1
	for _, b := range t.Bands {
		if itemLevel < b.MinItemLevel {
			break
		}
		n = b.Tiers
	}
	return n
}

// TierWeights returns selection weights for tiers 1..n. Tier t weighs
// t^(skew*(1+quality)), so quality -1 is uniform and larger values move
// probability mass toward higher tiers.
//
// Precondition: n >= 1, skew >= 0, quality >= -1.
func TierWeights(n int, skew, quality float64) []float64 {
	exp := skew * (1 + quality)
	weights := make([]float64, n)
	for i := range weights {
		weights[i] = math.Pow(float64(i+1), exp)
	}
	return weights
}

// LoadTierTableFromBytes parses and validates a tier table.
func LoadTierTableFromBytes(data []byte) (*TierTable, error) {
	var file struct {
		Tiers TierTable `yaml:"tiers"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing tier table YAML: %w", err)
	}
	if err := file.Tiers.Validate(); err != nil {
		return nil, err
	}
	return &file.Tiers, nil
}

// LoadTierTable reads a tier table from a YAML file.
//
// Precondition: path must be a readable file.
// Postcondition: Returns a validated TierTable or a non-nil error.
func LoadTierTable(path string) (*TierTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading tier table %q: %w", path, err)
	}
	return LoadTierTableFromBytes(data)
}

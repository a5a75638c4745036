package loot

import "math"

// Modifiers are the character-sourced adjustments applied to loot generation.
type Modifiers struct {
	// Chance scales the sampled drop count by (1 + Chance).
	Chance float64
	// Quality shifts tier selection toward higher tiers.
	Quality float64
}

// Bounds limits modifier values.
type Bounds struct {
	Min float64
	Max float64
}

// DefaultBounds are used when no bounds are configured.
var DefaultBounds = Bounds{Min: -1, Max: 10}

// Clamp returns m with each value limited to b. NaN becomes 0 before clamping;
// infinities collapse to the nearest bound.
//
// Precondition: b.Min <= b.Max.
// Postcondition: b.Min <= result.Chance, result.Quality <= b.Max.
func (m Modifiers) Clamp(b Bounds) Modifiers {
	return Modifiers{
		Chance:  clamp(m.Chance, b.Min, b.Max),
		Quality: clamp(m.Quality, b.Min, b.Max),
	}
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		v = 0
	}
	return math.Max(lo, math.Min(hi, v))
}

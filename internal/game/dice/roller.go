package dice

import "go.uber.org/zap"

// Roller wraps a Source and logger to provide logged loot rolls.
// All draws are logged at debug level with a label describing what was rolled.
type Roller struct {
	src    Source
	logger *zap.Logger
}

// NewLoggedRoller creates a Roller that rolls with src and logs each roll to logger.
//
// Precondition: src and logger must be non-nil.
func NewLoggedRoller(src Source, logger *zap.Logger) *Roller {
	return &Roller{src: src, logger: logger}
}

// Source returns the underlying randomness provider.
func (r *Roller) Source() Source {
	return r.src
}

// Pick selects a weighted index and logs the outcome.
//
// Postcondition: Same contract as Weighted.
func (r *Roller) Pick(label string, weights []float64) int {
	idx := Weighted(r.src, weights)
	r.logger.Debug("weighted roll",
		zap.String("roll", label),
		zap.Float64s("weights", weights),
		zap.Int("index", idx),
	)
	return idx
}

// Chance reports whether a 1-in-odds event occurred.
//
// Precondition: odds >= 1.
func (r *Roller) Chance(label string, odds int) bool {
	hit := r.src.Intn(odds) == 0
	r.logger.Debug("chance roll",
		zap.String("roll", label),
		zap.Int("odds", odds),
		zap.Bool("hit", hit),
	)
	return hit
}

// Uniform draws a float from [lo, hi] and logs it.
func (r *Roller) Uniform(label string, lo, hi float64) float64 {
	v := Uniform(r.src, lo, hi)
	r.logger.Debug("uniform roll",
		zap.String("roll", label),
		zap.Float64("min", lo),
		zap.Float64("max", hi),
		zap.Float64("value", v),
	)
	return v
}

// IntRange draws an int from [lo, hi] and logs it.
func (r *Roller) IntRange(label string, lo, hi int) int {
	v := IntRange(r.src, lo, hi)
	r.logger.Debug("range roll",
		zap.String("roll", label),
		zap.Int("min", lo),
		zap.Int("max", hi),
		zap.Int("value", v),
	)
	return v
}

package dice

// Weighted picks an index from weights with probability proportional to its weight.
//
// Precondition: src must be non-nil.
// Postcondition: Returns -1 when no weight is positive; otherwise returns an
// index i with weights[i] > 0. Negative and zero weights are never chosen.
func Weighted(src Source, weights []float64) int {
	var total float64
	last := -1
	for i, w := range weights {
		if w > 0 {
			total += w
			last = i
		}
	}
	if last < 0 {
		return -1
	}

	target := src.Float64() * total
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		if target < w {
			return i
		}
		target -= w
	}
	// Floating point drift can leave a sliver past the final bucket.
	return last
}

// Uniform returns a float drawn uniformly from [lo, hi]. When hi <= lo it returns lo.
func Uniform(src Source, lo, hi float64) float64 {
	if hi <= lo {
		return lo
	}
	return lo + src.Float64()*(hi-lo)
}

// IntRange returns an int drawn uniformly from [lo, hi]. When hi <= lo it returns lo.
func IntRange(src Source, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + src.Intn(hi-lo+1)
}

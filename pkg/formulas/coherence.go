package formulas

// CoherenceRatio returns T2 / (2 * T1). Values above 1 violate the physical
// bound T2 <= 2*T1 and usually indicate a calibration problem rather than
// better-than-physics coherence.
func CoherenceRatio(t1, t2 float64) float64 {
	if t1 <= 0 {
		return 0
	}
	return t2 / (2 * t1)
}

// ExceedsCoherenceBound reports whether a T1/T2 pair violates T2 <= 2*T1.
func ExceedsCoherenceBound(t1, t2 float64) bool {
	return t1 > 0 && t2 > 2*t1
}

package rng

// Midpoint is a Provider that never advances. It answers every range request
// with the midpoint of the range and never rolls true, which lets scorers
// estimate expected outcomes without touching the real stream.
type Midpoint struct{}

var _ Provider = Midpoint{}

func (Midpoint) Reset(int64) {}

func (Midpoint) Seed() int64 { return 0 }

func (Midpoint) NextBool(float64) bool { return false }

func (Midpoint) NextFloat(min, maxExclusive float64) float64 {
	checkFloatRange("NextFloat", min, maxExclusive)
	return (min + maxExclusive) * 0.5
}

func (Midpoint) NextInt(minInclusive, maxExclusive int) int {
	checkIntRange("NextInt", minInclusive, maxExclusive)
	return minInclusive + (maxExclusive-minInclusive)/2
}

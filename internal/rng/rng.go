// Package rng provides the seedable random stream shared by every battle
// component. Nothing in the battle core constructs its own source: callers
// hand a Provider to the component that needs randomness, and the order of
// draws is part of the replay contract.
package rng

import (
	"fmt"
	"math"
	"math/bits"
	"math/rand/v2"
)

// Provider is the randomness capability consumed by the battle core.
//
// Every Next* call consumes exactly one unit of the underlying stream, so the
// value returned by the n-th call after Reset(seed) depends only on seed and n.
type Provider interface {
	Reset(seed int64)
	Seed() int64
	NextBool(probability float64) bool
	NextFloat(min, maxExclusive float64) float64
	NextInt(minInclusive, maxExclusive int) int
}

// streamIncrement selects the PCG stream. Changing it changes every golden log.
const streamIncrement = 0x9e3779b97f4a7c15

// Source is the default Provider backed by a PCG generator.
//
// Source is not safe for concurrent use. Each battle owns its own Source.
type Source struct {
	seed  int64
	pcg   *rand.PCG
	draws uint64
}

// New returns a Source seeded with seed.
func New(seed int64) *Source {
	s := &Source{}
	s.Reset(seed)
	return s
}

// Reset re-seeds the stream. The next draw is identical to the first draw
// after New(seed).
func (s *Source) Reset(seed int64) {
	s.seed = seed
	s.pcg = rand.NewPCG(uint64(seed), streamIncrement)
	s.draws = 0
}

// Seed returns the seed passed to the last Reset.
func (s *Source) Seed() int64 {
	return s.seed
}

// Draws reports how many units were consumed since the last Reset.
func (s *Source) Draws() uint64 {
	return s.draws
}

// NextBool returns true with the given probability. Probabilities outside
// (0, 1) force the result but still consume a draw.
func (s *Source) NextBool(probability float64) bool {
	roll := unit(s.next())
	if probability <= 0 {
		return false
	}
	if probability >= 1 {
		return true
	}
	return roll < probability
}

// NextFloat returns a value in [min, maxExclusive). It panics with a
// *RangeError when maxExclusive <= min.
func (s *Source) NextFloat(min, maxExclusive float64) float64 {
	checkFloatRange("NextFloat", min, maxExclusive)
	value := min + unit(s.next())*(maxExclusive-min)
	if value >= maxExclusive {
		value = math.Nextafter(maxExclusive, min)
	}
	return value
}

// NextInt returns a value in [minInclusive, maxExclusive). It panics with a
// *RangeError when maxExclusive <= minInclusive.
func (s *Source) NextInt(minInclusive, maxExclusive int) int {
	checkIntRange("NextInt", minInclusive, maxExclusive)
	span := uint64(int64(maxExclusive) - int64(minInclusive))
	hi, _ := bits.Mul64(s.next(), span)
	return minInclusive + int(hi)
}

func (s *Source) next() uint64 {
	if s.pcg == nil {
		s.Reset(s.seed)
	}
	s.draws++
	return s.pcg.Uint64()
}

// unit maps a 64-bit draw onto [0, 1) using the top 53 bits.
func unit(v uint64) float64 {
	return float64(v>>11) / (1 << 53)
}

// RangeError is the panic value raised when a caller requests an empty range.
type RangeError struct {
	Op  string
	Min float64
	Max float64
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("rng: %s requires max > min (min=%v max=%v)", e.Op, e.Min, e.Max)
}

func checkFloatRange(op string, min, max float64) {
	if !(max > min) {
		panic(&RangeError{Op: op, Min: min, Max: max})
	}
}

func checkIntRange(op string, min, max int) {
	if max <= min {
		panic(&RangeError{Op: op, Min: float64(min), Max: float64(max)})
	}
}

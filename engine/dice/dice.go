// Package dice is the single pseudo-random stream every rules operation draws
// from. A Dice is not safe for concurrent use; callers serialise draws.
package dice

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand"
)

// countingSource wraps a rand.Source64 and counts every value pulled from it,
// so a stream can be rebuilt at an exact position after a load.
type countingSource struct {
	src rand.Source64
	n   int64
}

func (s *countingSource) Int63() int64 {
	s.n++
	return s.src.Int63()
}

func (s *countingSource) Uint64() uint64 {
	s.n++
	return s.src.Uint64()
}

func (s *countingSource) Seed(seed int64) {
	s.n = 0
	s.src.Seed(seed)
}

// Dice wraps math/rand.Rand with deterministic position tracking.
type Dice struct {
	seed int64
	src  *countingSource
	rng  *rand.Rand
}

// New creates a deterministic stream from a fixed seed.
func New(seed int64) *Dice {
	src := &countingSource{src: rand.NewSource(seed).(rand.Source64)}
	return &Dice{
		seed: seed,
		src:  src,
		rng:  rand.New(src),
	}
}

// NewRandom seeds a stream from system entropy.
func NewRandom() (*Dice, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return nil, fmt.Errorf("read random seed: %w", err)
	}
	return New(int64(binary.LittleEndian.Uint64(b[:]))), nil
}

// MaxPosition bounds the positions Restore will replay to.
const MaxPosition int64 = 1 << 28

// Restore creates a stream from seed and advances it to position, which is
// clamped to [0, MaxPosition].
func Restore(seed int64, position int64) *Dice {
	d := New(seed)
	position = min(position, MaxPosition)
	for d.src.n < position {
		d.src.Int63()
	}
	return d
}

// Seed returns the seed the stream was created with.
func (d *Dice) Seed() int64 { return d.seed }

// Position returns the number of source values consumed since creation.
func (d *Dice) Position() int64 { return d.src.n }

// D sums multiple uniform draws from [1, base]. Non-positive arguments
// yield 0.
func (d *Dice) D(base, multiple int) int {
	if base <= 0 || multiple <= 0 {
		return 0
	}
	total := 0
	for i := 0; i < multiple; i++ {
		total += d.rng.Intn(base) + 1
	}
	return total
}

func (d *Dice) D2() int   { return d.D(2, 1) }
func (d *Dice) D3() int   { return d.D(3, 1) }
func (d *Dice) D4() int   { return d.D(4, 1) }
func (d *Dice) D5() int   { return d.D(5, 1) }
func (d *Dice) D6() int   { return d.D(6, 1) }
func (d *Dice) D8() int   { return d.D(8, 1) }
func (d *Dice) D10() int  { return d.D(10, 1) }
func (d *Dice) D12() int  { return d.D(12, 1) }
func (d *Dice) D20() int  { return d.D(20, 1) }
func (d *Dice) D100() int { return d.D(100, 1) }

func (d *Dice) D2N(multiple int) int   { return d.D(2, multiple) }
func (d *Dice) D3N(multiple int) int   { return d.D(3, multiple) }
func (d *Dice) D4N(multiple int) int   { return d.D(4, multiple) }
func (d *Dice) D5N(multiple int) int   { return d.D(5, multiple) }
func (d *Dice) D6N(multiple int) int   { return d.D(6, multiple) }
func (d *Dice) D8N(multiple int) int   { return d.D(8, multiple) }
func (d *Dice) D10N(multiple int) int  { return d.D(10, multiple) }
func (d *Dice) D12N(multiple int) int  { return d.D(12, multiple) }
func (d *Dice) D20N(multiple int) int  { return d.D(20, multiple) }
func (d *Dice) D100N(multiple int) int { return d.D(100, multiple) }

// Rand returns a uniform integer in [min, max]. Swapped bounds are
// normalised.
func (d *Dice) Rand(min, max int) int {
	if max < min {
		min, max = max, min
	}
	return min + d.rng.Intn(max-min+1)
}

// Chance reports whether a d100 draw lands at or below percent.
func (d *Dice) Chance(percent int) bool {
	return d.D100() <= percent
}

// Gaussian draws a normal variate with the given mean and standard deviation.
func (d *Dice) Gaussian(mean, stddev float64) float64 {
	return d.rng.NormFloat64()*stddev + mean
}

// Package tick defines the time-keeping contract consumed by the engine.
//
// A Source reports a free-running uint32 counter. The counter wraps at
// 2^32, so every difference between two readings is taken modulo 2^32
// with Since. Callers never subtract Ticks directly.
package tick

import (
	"math"
	"math/bits"
	"time"
)

// Tick is a raw counter reading.
type Tick uint32

// DefaultTicksPerSecond is the resolution used by NewMonotonic when none
// is given: one tick per microsecond.
const DefaultTicksPerSecond = 1_000_000

// Source is a monotonic (modulo wraparound) tick counter.
//
// Now must be cheap, non-blocking and free of side effects.
// TicksPerSecond is fixed for the lifetime of the source.
type Source interface {
	Now() Tick
	TicksPerSecond() uint32
}

// Since returns the ticks elapsed from start to now, wrapping at 2^32.
func Since(now, start Tick) Tick {
	return now - start
}

// ToMillis converts a tick count to milliseconds at the given rate.
func ToMillis(t Tick, ticksPerSecond uint32) float64 {
	if ticksPerSecond == 0 {
		return 0
	}
	return float64(t) * 1000.0 / float64(ticksPerSecond)
}

// FromMillis converts milliseconds to ticks at the given rate.
// Results that do not fit in a Tick saturate at math.MaxUint32.
func FromMillis(ms uint32, ticksPerSecond uint32) Tick {
	v := uint64(ms) * uint64(ticksPerSecond) / 1000
	if v > math.MaxUint32 {
		return Tick(math.MaxUint32)
	}
	return Tick(v)
}

// Monotonic is a Source backed by the Go runtime's monotonic clock.
//
// Readings are the elapsed time since construction, truncated to 32 bits,
// so the counter wraps like a hardware timer would. Safe for concurrent
// use; all fields are immutable after construction.
type Monotonic struct {
	epoch time.Time
	rate  uint32
}

// NewMonotonic creates a monotonic source at the given resolution.
// A rate of 0 selects DefaultTicksPerSecond. Rates above 1e9 are clamped
// to one tick per nanosecond.
func NewMonotonic(ticksPerSecond uint32) *Monotonic {
	if ticksPerSecond == 0 {
		ticksPerSecond = DefaultTicksPerSecond
	}
	if ticksPerSecond > uint32(time.Second) {
		ticksPerSecond = uint32(time.Second)
	}
	return &Monotonic{
		epoch: time.Now(),
		rate:  ticksPerSecond,
	}
}

// Now returns the elapsed ticks since construction.
func (m *Monotonic) Now() Tick {
	return ticksIn(time.Since(m.epoch), m.rate)
}

// ticksIn converts a duration to ticks at rate without rounding the tick
// length, so rates that do not divide 1e9 keep their nominal speed. The
// result is truncated to 32 bits.
func ticksIn(d time.Duration, rate uint32) Tick {
	if d <= 0 {
		return 0
	}
	// hi < 2^29 because d < 2^63 and rate <= 1e9, so Div64 cannot panic.
	hi, lo := bits.Mul64(uint64(d), uint64(rate))
	q, _ := bits.Div64(hi, lo, uint64(time.Second))
	return Tick(q)
}

// TicksPerSecond returns the configured resolution.
func (m *Monotonic) TicksPerSecond() uint32 {
	return m.rate
}

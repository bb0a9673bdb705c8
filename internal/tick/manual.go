package tick

import "sync/atomic"

// Manual is a Source whose counter only moves when told to.
//
// Rendering and tests drive it explicitly, which makes every Poll
// sequence reproducible. The counter wraps at 2^32 like Monotonic, so a
// Manual started near math.MaxUint32 exercises the wraparound path.
// Safe for concurrent use.
type Manual struct {
	now  atomic.Uint32
	rate uint32
}

// NewManual creates a manual source at 0 with the given resolution.
// A rate of 0 selects one tick per millisecond.
func NewManual(ticksPerSecond uint32) *Manual {
	return NewManualAt(0, ticksPerSecond)
}

// NewManualAt creates a manual source starting at a specific reading.
func NewManualAt(start Tick, ticksPerSecond uint32) *Manual {
	if ticksPerSecond == 0 {
		ticksPerSecond = 1000
	}
	m := &Manual{rate: ticksPerSecond}
	m.now.Store(uint32(start))
	return m
}

// Now returns the current reading without advancing it.
func (m *Manual) Now() Tick {
	return Tick(m.now.Load())
}

// TicksPerSecond returns the configured resolution.
func (m *Manual) TicksPerSecond() uint32 {
	return m.rate
}

// Set moves the counter to an absolute reading.
func (m *Manual) Set(t Tick) {
	m.now.Store(uint32(t))
}

// Advance moves the counter forward by n ticks, wrapping at 2^32.
func (m *Manual) Advance(n Tick) {
	m.now.Add(uint32(n))
}

// AdvanceMillis moves the counter forward by ms milliseconds.
func (m *Manual) AdvanceMillis(ms uint32) {
	m.Advance(FromMillis(ms, m.rate))
}

// Reset moves the counter back to 0.
func (m *Manual) Reset() {
	m.Set(0)
}

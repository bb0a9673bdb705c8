package engine

import (
	"github.com/roach88/choreo/internal/color"
	"github.com/roach88/choreo/internal/tick"
)

// State is the coarse state of a Sequence.
type State uint8

const (
	// Idle means no steps are loaded.
	Idle State = iota
	// Active means a step is running; see Sequence.Index.
	Active
	// Finished means the sequence ran out of steps and will not produce
	// another color until Set is called.
	Finished
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Active:
		return "active"
	case Finished:
		return "finished"
	default:
		return "unknown"
	}
}

type behaviorKind uint8

const (
	behaviorOneShot behaviorKind = iota
	behaviorLoopForever
	behaviorLoopTimes
)

// Behavior decides what happens after the last step. The zero value is
// OneShot.
type Behavior struct {
	kind  behaviorKind
	count uint32
}

var (
	// OneShot plays the step list once, then finishes.
	OneShot = Behavior{}
	// LoopForever restarts at step 0 after the last step, endlessly.
	LoopForever = Behavior{kind: behaviorLoopForever}
)

// LoopTimes plays the whole step list n times, then finishes.
// n < 1 is treated as 1.
func LoopTimes(n uint32) Behavior {
	if n < 1 {
		n = 1
	}
	return Behavior{kind: behaviorLoopTimes, count: n}
}

// Loops returns the number of passes, or 0 for LoopForever.
func (b Behavior) Loops() uint32 {
	switch b.kind {
	case behaviorLoopForever:
		return 0
	case behaviorLoopTimes:
		return b.count
	default:
		return 1
	}
}

// String renders the behavior in script syntax.
func (b Behavior) String() string {
	switch b.kind {
	case behaviorLoopForever:
		return "loop_forever"
	case behaviorLoopTimes:
		return "loop_times"
	default:
		return "one_shot"
	}
}

// Sequence is a fixed-capacity list of Steps plus the state needed to
// play them back.
//
// Step storage is allocated once by New and never grows. A Sequence is
// owned by a single caller; it does no locking.
type Sequence struct {
	src      tick.Source
	steps    []Step
	n        int
	behavior Behavior

	state   State
	index   int
	repeats uint32 // completed plays of the current step
	loops   uint32 // completed passes over the step list
	start   tick.Tick
	base    color.Color
	last    color.Color
	fresh   bool   // current step has not been emitted yet
	phase   uint32 // waveform phase of the current step, ms

	// latch holds the phase each PhaseAutoOnStart step took on its first
	// entry. Allocated with steps.
	latch []phaseLatch
}

type phaseLatch struct {
	set   bool
	phase uint32
}

// New creates an empty (Idle) sequence holding up to capacity steps.
// src must not be nil.
func New(capacity int, src tick.Source) *Sequence {
	if capacity < 0 {
		capacity = 0
	}
	return &Sequence{
		src:   src,
		steps: make([]Step, capacity),
		latch: make([]phaseLatch, capacity),
	}
}

// NewBank creates count independent sequences sharing one tick source,
// typically one per LED.
func NewBank(count, capacity int, src tick.Source) []*Sequence {
	if count < 0 {
		count = 0
	}
	bank := make([]*Sequence, count)
	for i := range bank {
		bank[i] = New(capacity, src)
	}
	return bank
}

// Set replaces the step list and behavior, resetting all runtime state.
//
// The first step starts at the tick read during this call. An empty list
// leaves the sequence Idle. If steps is longer than the capacity, Set
// returns a *CapacityError and the sequence is left untouched.
func (s *Sequence) Set(steps []Step, behavior Behavior) error {
	if len(steps) > len(s.steps) {
		return &CapacityError{Capacity: len(s.steps), Requested: len(steps)}
	}

	s.n = copy(s.steps, steps)
	for i := s.n; i < len(s.steps); i++ {
		s.steps[i] = Step{}
	}
	s.behavior = behavior
	s.reset()
	return nil
}

// Clear removes all steps, leaving the sequence Idle.
func (s *Sequence) Clear() {
	for i := 0; i < s.n; i++ {
		s.steps[i] = Step{}
	}
	s.n = 0
	s.reset()
}

func (s *Sequence) reset() {
	s.index = 0
	s.repeats = 0
	s.loops = 0
	s.base = color.Black
	s.last = color.Black
	s.fresh = true
	s.phase = 0
	clear(s.latch)
	if s.n == 0 {
		s.state = Idle
		return
	}
	s.state = Active
	s.start = s.src.Now()
	s.enter(s.steps[0].PhaseOffset)
}

// Poll returns the color to display now.
//
// ok is false once the sequence is complete (or was never loaded); the
// returned color is then black. Poll never fails, blocks or allocates,
// and moves to at most one new step per call.
func (s *Sequence) Poll() (c color.Color, ok bool) {
	if s.state != Active {
		return color.Black, false
	}

	now := s.src.Now()
	rate := s.src.TicksPerSecond()

	elapsed := tick.Since(now, s.start)
	if s.exhausted(&elapsed, rate) {
		if !s.advance(now) {
			return color.Black, false
		}
		elapsed = 0
	}

	st := s.steps[s.index]
	st.PhaseOffset = s.phase
	c = Evaluate(st, tick.ToMillis(elapsed, rate), s.base)
	s.last = c
	s.fresh = false
	return c, true
}

// exhausted reports whether the current step has used up its allotted
// time. For repeating steps it re-anchors start on the last whole-cycle
// boundary and folds elapsed into a single cycle.
func (s *Sequence) exhausted(elapsed *tick.Tick, rate uint32) bool {
	st := &s.steps[s.index]
	dur := tick.FromMillis(st.Duration, rate)

	if dur == 0 {
		return !st.Repeat.IsForever() && !s.fresh
	}

	switch st.Repeat.kind {
	case repeatForever, repeatTimes:
		if *elapsed >= dur {
			cycles := *elapsed / dur
			s.start += cycles * dur
			*elapsed -= cycles * dur
			s.repeats = addSaturating(s.repeats, uint32(cycles))
			if st.Phase == PhaseAuto {
				s.phase += uint32(cycles) * st.Duration
			}
		}
		return st.Repeat.kind == repeatTimes && s.repeats >= st.Repeat.count
	default:
		return *elapsed >= dur
	}
}

// advance moves to the next step, applying the behavior at the end of the
// list. It returns false when the sequence finished.
func (s *Sequence) advance(now tick.Tick) bool {
	endPhase := s.phase + s.steps[s.index].Duration

	s.base = s.last
	s.index++
	s.repeats = 0
	s.start = now
	s.fresh = true

	if s.index >= s.n {
		switch {
		case s.behavior.kind == behaviorLoopForever:
			s.index = 0
		case s.behavior.kind == behaviorLoopTimes && s.loops+1 < s.behavior.count:
			s.loops++
			s.index = 0
		default:
			s.index = s.n - 1
			s.state = Finished
			return false
		}
	}

	s.enter(endPhase)
	return true
}

// enter sets the phase of the step at s.index. prev is the phase the
// previous step ended on, or the step's own offset when the sequence
// starts.
func (s *Sequence) enter(prev uint32) {
	st := &s.steps[s.index]
	switch st.Phase {
	case PhaseAuto:
		s.phase = prev
	case PhaseAutoOnStart:
		l := &s.latch[s.index]
		if !l.set {
			l.set = true
			l.phase = prev
		}
		s.phase = l.phase
	default:
		s.phase = st.PhaseOffset
	}
}

func addSaturating(a, b uint32) uint32 {
	if sum := a + b; sum >= a {
		return sum
	}
	return ^uint32(0)
}

// Len returns the number of loaded steps.
func (s *Sequence) Len() int { return s.n }

// Cap returns the fixed step capacity.
func (s *Sequence) Cap() int { return len(s.steps) }

// State returns the current state.
func (s *Sequence) State() State { return s.state }

// Index returns the index of the running step. It is only meaningful in
// the Active state.
func (s *Sequence) Index() int { return s.index }

// Phase returns the waveform phase of the running step, in ms.
func (s *Sequence) Phase() uint32 { return s.phase }

// Repeats returns the number of completed plays of the running step.
func (s *Sequence) Repeats() uint32 { return s.repeats }

// Behavior returns the behavior given to the last Set.
func (s *Sequence) Behavior() Behavior { return s.behavior }

// Steps returns a copy of the loaded steps.
func (s *Sequence) Steps() []Step {
	out := make([]Step, s.n)
	copy(out, s.steps[:s.n])
	return out
}

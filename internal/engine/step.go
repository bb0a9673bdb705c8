package engine

import (
	"strconv"

	"github.com/roach88/choreo/internal/color"
)

// Action selects how a Step maps elapsed time to a color.
type Action uint8

const (
	// Solid holds the step color for the whole duration.
	Solid Action = iota
	// Sine rises from the base color to the step color and back once per
	// period: f = (1 - cos φ) / 2.
	Sine
	// Cosine is Sine shifted by half a period: it starts at the step color.
	Cosine
	// Seek fades linearly from the base color to the step color over the
	// duration.
	Seek
	// FadeUp rises from black to the step color over the duration along a
	// quarter sine.
	FadeUp
	// FadeDown falls from the step color to black over the duration along
	// a quarter cosine.
	FadeDown
)

var actionNames = [...]string{
	Solid:    "solid",
	Sine:     "sine",
	Cosine:   "cosine",
	Seek:     "seek",
	FadeUp:   "fade_up",
	FadeDown: "fade_down",
}

// String returns the script name of the action.
func (a Action) String() string {
	if int(a) < len(actionNames) {
		return actionNames[a]
	}
	return "unknown"
}

// Valid reports whether a is one of the defined actions.
func (a Action) Valid() bool {
	return int(a) < len(actionNames)
}

// Periodic reports whether the action uses Step.Period.
func (a Action) Periodic() bool {
	return a == Sine || a == Cosine
}

type repeatKind uint8

const (
	repeatOnce repeatKind = iota
	repeatTimes
	repeatForever
)

// Repeat controls how many times a single step plays before the sequence
// moves on. The zero value is Once.
type Repeat struct {
	kind  repeatKind
	count uint32
}

var (
	// Once plays the step a single time.
	Once = Repeat{}
	// Forever replays the step endlessly; it never exhausts.
	Forever = Repeat{kind: repeatForever}
)

// Times plays the step n times in total. n < 1 is treated as 1.
func Times(n uint32) Repeat {
	if n < 1 {
		n = 1
	}
	return Repeat{kind: repeatTimes, count: n}
}

// Count returns the number of plays, or 0 for Forever.
func (r Repeat) Count() uint32 {
	switch r.kind {
	case repeatForever:
		return 0
	case repeatTimes:
		return r.count
	default:
		return 1
	}
}

// IsForever reports whether the step never exhausts.
func (r Repeat) IsForever() bool {
	return r.kind == repeatForever
}

// String renders the repeat in script syntax.
func (r Repeat) String() string {
	switch r.kind {
	case repeatForever:
		return "forever"
	case repeatTimes:
		return "times(" + strconv.FormatUint(uint64(r.count), 10) + ")"
	default:
		return "once"
	}
}

// Phase controls where a periodic step's waveform starts.
type Phase uint8

const (
	// PhaseFixed starts the waveform at Step.PhaseOffset every time the
	// step is entered.
	PhaseFixed Phase = iota
	// PhaseAuto continues the waveform from where the previous step's
	// phase ended (its phase plus its duration), on every entry. Repeated
	// plays of the step advance the phase by one duration each.
	PhaseAuto
	// PhaseAutoOnStart takes the previous step's end phase on the first
	// entry only and keeps it for later entries.
	PhaseAutoOnStart
)

var phaseNames = [...]string{
	PhaseFixed:       "fixed",
	PhaseAuto:        "auto",
	PhaseAutoOnStart: "auto_on_start",
}

// String returns the script name of the phase mode.
func (p Phase) String() string {
	if int(p) < len(phaseNames) {
		return phaseNames[p]
	}
	return "unknown"
}

// Step is one timed phase of an animation. Steps are plain values and are
// copied into a Sequence on Set.
type Step struct {
	Action Action
	Color  color.Color

	// Duration of one play of the step, in milliseconds. Zero means the
	// step shows its color for a single poll and then advances.
	Duration uint32

	// Period of the waveform in milliseconds (Sine, Cosine). A period of
	// zero collapses the waveform to Solid.
	Period float64

	// PhaseOffset shifts the waveform, in milliseconds. With an auto
	// Phase it is the offset used until the step is first entered from
	// another step.
	PhaseOffset uint32
	Phase       Phase

	Repeat Repeat
}

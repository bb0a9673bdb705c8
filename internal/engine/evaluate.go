package engine

import (
	"math"

	"github.com/roach88/choreo/internal/color"
)

// Evaluate returns the color of st at step-local time e (milliseconds).
//
// base is the color that was on display immediately before the step
// began. Negative and NaN times are treated as 0. A step with zero
// duration is shown for a single poll, so it evaluates to its target
// color whatever its action. Evaluate has no side effects and is safe
// to call from any goroutine.
func Evaluate(st Step, e float64, base color.Color) color.Color {
	if math.IsNaN(e) || e < 0 {
		e = 0
	}

	if st.Duration == 0 {
		return st.Color
	}

	switch st.Action {
	case Sine:
		if st.Period <= 0 {
			return st.Color
		}
		phi := 2 * math.Pi * (e + float64(st.PhaseOffset)) / st.Period
		return color.Lerp(base, st.Color, (1-math.Cos(phi))/2)

	case Cosine:
		if st.Period <= 0 {
			return st.Color
		}
		phi := 2 * math.Pi * (e + float64(st.PhaseOffset)) / st.Period
		return color.Lerp(base, st.Color, (1+math.Cos(phi))/2)

	case Seek:
		return color.Lerp(base, st.Color, e/float64(st.Duration))

	case FadeUp:
		return color.Lerp(color.Black, st.Color, math.Sin(math.Pi/2*progress(e, st.Duration)))

	case FadeDown:
		return color.Lerp(color.Black, st.Color, math.Cos(math.Pi/2*progress(e, st.Duration)))

	default:
		return st.Color
	}
}

// progress is e/duration clamped to [0, 1].
func progress(e float64, duration uint32) float64 {
	p := e / float64(duration)
	if p > 1 {
		return 1
	}
	return p
}

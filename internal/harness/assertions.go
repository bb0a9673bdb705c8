package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/choreo/internal/color"
	"github.com/roach88/choreo/internal/trace"
)

// failureContext is the number of frames shown on each side of a failure.
const failureContext = 3

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Frames   trace.Frames // Full trace for debugging context
	At       int          // Index of the offending frame, or -1
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Frames) == 0 {
		return buf.String()
	}

	window := e.Frames
	if e.At >= 0 {
		lo := max(0, e.At-failureContext)
		hi := min(len(e.Frames), e.At+failureContext+1)
		window = e.Frames[lo:hi]
		fmt.Fprintf(&buf, "\nTrace near frame %d:\n", e.At)
	} else {
		fmt.Fprintf(&buf, "\nFull trace:\n")
	}
	_ = window.WriteText(&buf)

	return buf.String()
}

// assertColorAt checks the frame at or before AtMS.
func assertColorAt(frames trace.Frames, a Assertion) error {
	want, err := color.Parse(a.Color)
	if err != nil {
		return fmt.Errorf("color_at: %w", err)
	}

	f, ok := frames.At(a.AtMS)
	if !ok {
		return &AssertionError{
			Type:     AssertColorAt,
			Expected: fmt.Sprintf("a frame at %dms", a.AtMS),
			Actual:   "trace is empty",
			At:       -1,
		}
	}
	if f.Done {
		return &AssertionError{
			Type:     AssertColorAt,
			Expected: fmt.Sprintf("%s at %dms", want, a.AtMS),
			Actual:   fmt.Sprintf("sequence done at %dms", f.ElapsedMS),
			Frames:   frames,
			At:       f.Seq,
		}
	}
	if f.Color != want {
		return &AssertionError{
			Type:     AssertColorAt,
			Expected: fmt.Sprintf("%s at %dms", want, a.AtMS),
			Actual:   fmt.Sprintf("%s at %dms", f.Color, f.ElapsedMS),
			Frames:   frames,
			At:       f.Seq,
		}
	}
	if a.Step != nil && f.Index != *a.Step {
		return &AssertionError{
			Type:     AssertColorAt,
			Expected: fmt.Sprintf("step %d at %dms", *a.Step, a.AtMS),
			Actual:   fmt.Sprintf("step %d at %dms", f.Index, f.ElapsedMS),
			Frames:   frames,
			At:       f.Seq,
		}
	}
	return nil
}

// firstDone returns the first done frame.
func firstDone(frames trace.Frames) (trace.Frame, bool) {
	for _, f := range frames {
		if f.Done {
			return f, true
		}
	}
	return trace.Frame{}, false
}

// assertCompleteAt checks that the sequence is first seen done at AtMS.
func assertCompleteAt(frames trace.Frames, a Assertion) error {
	f, ok := firstDone(frames)
	if !ok {
		last := -1
		if len(frames) > 0 {
			last = len(frames) - 1
		}
		return &AssertionError{
			Type:     AssertCompleteAt,
			Expected: fmt.Sprintf("completion at %dms", a.AtMS),
			Actual:   "sequence never completed",
			Frames:   frames,
			At:       last,
		}
	}
	if f.ElapsedMS != a.AtMS {
		return &AssertionError{
			Type:     AssertCompleteAt,
			Expected: fmt.Sprintf("completion at %dms", a.AtMS),
			Actual:   fmt.Sprintf("completion at %dms", f.ElapsedMS),
			Frames:   frames,
			At:       f.Seq,
		}
	}
	return nil
}

// assertNoCompleteBefore checks that no frame before AtMS is done.
func assertNoCompleteBefore(frames trace.Frames, a Assertion) error {
	f, ok := firstDone(frames)
	if ok && f.ElapsedMS < a.AtMS {
		return &AssertionError{
			Type:     AssertNoCompleteBefore,
			Expected: fmt.Sprintf("no completion before %dms", a.AtMS),
			Actual:   fmt.Sprintf("completion at %dms", f.ElapsedMS),
			Frames:   frames,
			At:       f.Seq,
		}
	}
	return nil
}

// brightness is the channel sum of c.
func brightness(c color.Color) int {
	return int(c.R) + int(c.G) + int(c.B)
}

// assertMonotonic checks that brightness never moves against Direction
// between FromMS and ToMS. Done frames end the window.
func assertMonotonic(frames trace.Frames, a Assertion) error {
	var (
		prev    trace.Frame
		started bool
		checked int
	)
	for _, f := range frames {
		if f.ElapsedMS < a.FromMS {
			continue
		}
		if f.ElapsedMS > a.ToMS || f.Done {
			break
		}
		checked++
		if started {
			d := brightness(f.Color) - brightness(prev.Color)
			if (a.Direction == DirectionRising && d < 0) || (a.Direction == DirectionFalling && d > 0) {
				return &AssertionError{
					Type:     AssertMonotonic,
					Expected: fmt.Sprintf("%s brightness from %dms to %dms", a.Direction, a.FromMS, a.ToMS),
					Actual: fmt.Sprintf("%s at %dms then %s at %dms",
						prev.Color, prev.ElapsedMS, f.Color, f.ElapsedMS),
					Frames: frames,
					At:     f.Seq,
				}
			}
		}
		prev, started = f, true
	}

	if checked < 2 {
		return &AssertionError{
			Type:     AssertMonotonic,
			Expected: fmt.Sprintf("at least 2 frames from %dms to %dms", a.FromMS, a.ToMS),
			Actual:   fmt.Sprintf("%d frames", checked),
			Frames:   frames,
			At:       -1,
		}
	}
	return nil
}

// assertFrameCount checks the number of frames.
func assertFrameCount(frames trace.Frames, a Assertion) error {
	if len(frames) != a.Count {
		return &AssertionError{
			Type:     AssertFrameCount,
			Expected: fmt.Sprintf("%d frames", a.Count),
			Actual:   fmt.Sprintf("%d frames", len(frames)),
			At:       -1,
		}
	}
	return nil
}

// EvaluateAssertions evaluates all assertions against the frames.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(frames trace.Frames, assertions []Assertion) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertColorAt:
			err = assertColorAt(frames, assertion)
		case AssertCompleteAt:
			err = assertCompleteAt(frames, assertion)
		case AssertNoCompleteBefore:
			err = assertNoCompleteBefore(frames, assertion)
		case AssertMonotonic:
			err = assertMonotonic(frames, assertion)
		case AssertFrameCount:
			err = assertFrameCount(frames, assertion)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}

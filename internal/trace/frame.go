package trace

import (
	"fmt"
	"io"

	"github.com/roach88/choreo/internal/color"
	"github.com/roach88/choreo/internal/ir"
	"github.com/roach88/choreo/internal/tick"
)

// Frame is the result of one Poll.
type Frame struct {
	Seq       int         `json:"seq"`
	Tick      tick.Tick   `json:"tick"`
	ElapsedMS uint32      `json:"elapsed_ms"`
	Index     int         `json:"index"` // running step, -1 once done
	Color     color.Color `json:"color"`
	Done      bool        `json:"done"`
}

// ToIR converts the frame to its canonical object form.
func (f Frame) ToIR() ir.IRObject {
	return ir.IRObject{
		"seq":        ir.IRInt(f.Seq),
		"tick":       ir.IRInt(f.Tick),
		"elapsed_ms": ir.IRInt(f.ElapsedMS),
		"index":      ir.IRInt(f.Index),
		"color":      ir.IRString(f.Color.Hex()),
		"done":       ir.IRBool(f.Done),
	}
}

// Frames is an ordered trace.
type Frames []Frame

// ToIR converts the trace to its canonical array form.
func (fs Frames) ToIR() ir.IRArray {
	arr := make(ir.IRArray, len(fs))
	for i, f := range fs {
		arr[i] = f.ToIR()
	}
	return arr
}

// Canonical returns the canonical JSON encoding of the trace.
func (fs Frames) Canonical() ([]byte, error) {
	return ir.MarshalCanonical(fs.ToIR())
}

// Hash returns ir.TraceHash of the trace.
func (fs Frames) Hash() (string, error) {
	return ir.TraceHash(fs.ToIR())
}

// Completed reports whether the trace ends with a done frame.
func (fs Frames) Completed() bool {
	return len(fs) > 0 && fs[len(fs)-1].Done
}

// At returns the last frame at or before elapsed ms.
func (fs Frames) At(elapsedMS uint32) (Frame, bool) {
	var (
		found Frame
		ok    bool
	)
	for _, f := range fs {
		if f.ElapsedMS > elapsedMS {
			break
		}
		found, ok = f, true
	}
	return found, ok
}

// WriteText writes one line per frame:
//
//	   0     0ms step 0 #000000
//	 450  4500ms done
func (fs Frames) WriteText(w io.Writer) error {
	for _, f := range fs {
		var err error
		if f.Done {
			_, err = fmt.Fprintf(w, "%4d %6dms done\n", f.Seq, f.ElapsedMS)
		} else {
			_, err = fmt.Fprintf(w, "%4d %6dms step %d %s\n", f.Seq, f.ElapsedMS, f.Index, f.Color.Hex())
		}
		if err != nil {
			return err
		}
	}
	return nil
}

package harness

import (
	"github.com/roach88/choreo/internal/trace"
)

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if every assertion held and the replay matched.
	Pass bool `json:"pass"`

	// Frames is the rendered trace.
	Frames trace.Frames `json:"frames"`

	// ScriptHash identifies the compiled program.
	ScriptHash string `json:"script_hash"`

	// TraceHash is the content hash of Frames.
	TraceHash string `json:"trace_hash"`

	// Errors contains assertion failure messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Frames: trace.Frames{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

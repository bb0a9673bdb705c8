package store

import (
	"fmt"

	"github.com/roach88/choreo/internal/compiler"
	"github.com/roach88/choreo/internal/ir"
	"github.com/roach88/choreo/internal/tick"
	"github.com/roach88/choreo/internal/trace"
)

// Run is the metadata of one recorded trace.
type Run struct {
	Seq            int64     `json:"seq"` // Insertion order, assigned by the store
	ID             string    `json:"id"`
	ScriptName     string    `json:"script_name"`
	ScriptHash     string    `json:"script_hash"`
	CadenceMS      uint32    `json:"cadence_ms"`
	DurationMS     uint32    `json:"duration_ms"`
	StartTick      tick.Tick `json:"start_tick"`
	TicksPerSecond uint32    `json:"ticks_per_second"`
	FrameCount     int       `json:"frame_count"`
	Completed      bool      `json:"completed"`
	TraceHash      string    `json:"trace_hash"`
	IRVersion      string    `json:"ir_version"`
	EngineVersion  string    `json:"engine_version"`
}

// Options returns the render options the run was recorded with.
func (r Run) Options() trace.Options {
	return trace.Options{
		CadenceMS:      r.CadenceMS,
		DurationMS:     r.DurationMS,
		StartTick:      r.StartTick,
		TicksPerSecond: r.TicksPerSecond,
	}
}

// NewRun builds the metadata for frames rendered from p with opts.
//
// opts should be the resolved options (no zero defaults) so that a
// replay renders exactly the same frames.
func NewRun(id string, p *compiler.Program, opts trace.Options, frames trace.Frames) (Run, error) {
	traceHash, err := frames.Hash()
	if err != nil {
		return Run{}, fmt.Errorf("new run: %w", err)
	}
	return Run{
		ID:             id,
		ScriptName:     p.Name,
		ScriptHash:     p.Hash,
		CadenceMS:      opts.CadenceMS,
		DurationMS:     opts.DurationMS,
		StartTick:      opts.StartTick,
		TicksPerSecond: opts.TicksPerSecond,
		FrameCount:     len(frames),
		Completed:      frames.Completed(),
		TraceHash:      traceHash,
		IRVersion:      ir.IRVersion,
		EngineVersion:  ir.EngineVersion,
	}, nil
}

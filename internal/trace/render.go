package trace

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/roach88/choreo/internal/compiler"
	"github.com/roach88/choreo/internal/engine"
	"github.com/roach88/choreo/internal/tick"
)

// Render defaults.
const (
	DefaultCadenceMS     = 10
	DefaultMaxDurationMS = 60_000
	DefaultTicksPerSec   = 1000
)

// Options controls Render.
type Options struct {
	// CadenceMS is the polling interval. Zero selects DefaultCadenceMS.
	CadenceMS uint32

	// DurationMS bounds the trace. Zero renders until the program
	// completes, or for NominalDuration plus one cadence, capped at
	// DefaultMaxDurationMS.
	DurationMS uint32

	// StartTick is the tick counter reading when the program is loaded.
	// Values near math.MaxUint32 exercise counter wraparound.
	StartTick tick.Tick

	// TicksPerSecond is the simulated timer resolution. Zero selects
	// DefaultTicksPerSec.
	TicksPerSecond uint32
}

// Resolve returns o with every zero field replaced by the default
// Render would use for p.
func (o Options) Resolve(p *compiler.Program) Options {
	if o.CadenceMS == 0 {
		o.CadenceMS = DefaultCadenceMS
	}
	if o.TicksPerSecond == 0 {
		o.TicksPerSecond = DefaultTicksPerSec
	}
	if o.DurationMS == 0 {
		d := uint64(NominalDuration(p)) + uint64(o.CadenceMS)
		o.DurationMS = uint32(min(d, DefaultMaxDurationMS))
	}
	return o
}

// Render plays p against a simulated tick source and returns every frame.
//
// Frames are taken at elapsed 0, CadenceMS, 2*CadenceMS, ... up to and
// including DurationMS. Rendering stops early at the first done frame;
// after that a sequence never produces a color again.
func Render(p *compiler.Program, opts Options) (Frames, error) {
	opts = opts.Resolve(p)

	src := tick.NewManualAt(opts.StartTick, opts.TicksPerSecond)
	seq := p.NewSequence(src)
	if err := p.Load(seq); err != nil {
		return nil, fmt.Errorf("load %s: %w", p.Name, err)
	}

	frames := make(Frames, 0, opts.DurationMS/opts.CadenceMS+1)
	for elapsed := uint64(0); elapsed <= uint64(opts.DurationMS); elapsed += uint64(opts.CadenceMS) {
		f := poll(seq, src.Now(), len(frames), uint32(elapsed))
		frames = append(frames, f)
		if f.Done {
			break
		}
		src.AdvanceMillis(opts.CadenceMS)
	}

	slog.Debug("rendered trace",
		"script", p.Name,
		"frames", len(frames),
		"completed", frames.Completed(),
		"cadence_ms", opts.CadenceMS,
	)
	return frames, nil
}

func poll(seq *engine.Sequence, now tick.Tick, n int, elapsed uint32) Frame {
	c, ok := seq.Poll()
	f := Frame{
		Seq:       n,
		Tick:      now,
		ElapsedMS: elapsed,
		Index:     seq.Index(),
		Color:     c,
		Done:      !ok,
	}
	if !ok {
		f.Index = -1
	}
	return f
}

// NominalDuration is the time one OneShot pass of p takes, in ms, if
// polled continuously. Forever steps count one play. Loop behaviors
// multiply by their pass count; LoopForever counts one pass.
func NominalDuration(p *compiler.Program) uint32 {
	var pass uint64
	for _, st := range p.Steps {
		plays := uint64(st.Repeat.Count())
		if plays == 0 {
			plays = 1
		}
		pass += uint64(st.Duration) * plays
	}
	loops := uint64(p.Behavior.Loops())
	if loops == 0 {
		loops = 1
	}
	return uint32(min(pass*loops, math.MaxUint32))
}

// Play polls p against a live tick source every cadence and passes each
// frame to fn. It returns when the program completes, fn returns an
// error, or ctx is canceled.
func Play(ctx context.Context, p *compiler.Program, src tick.Source, cadence time.Duration, fn func(Frame) error) error {
	if cadence <= 0 {
		cadence = DefaultCadenceMS * time.Millisecond
	}

	seq := p.NewSequence(src)
	if err := p.Load(seq); err != nil {
		return fmt.Errorf("load %s: %w", p.Name, err)
	}
	start := src.Now()

	ticker := time.NewTicker(cadence)
	defer ticker.Stop()

	for n := 0; ; n++ {
		now := src.Now()
		elapsed := tick.ToMillis(tick.Since(now, start), src.TicksPerSecond())
		f := poll(seq, now, n, uint32(elapsed))
		if err := fn(f); err != nil {
			return err
		}
		if f.Done {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

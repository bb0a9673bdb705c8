package store

import (
	"context"
	"fmt"

	"github.com/roach88/choreo/internal/compiler"
	"github.com/roach88/choreo/internal/trace"
)

// ReplayResult compares a recorded run with a fresh render.
type ReplayResult struct {
	Run Run `json:"run"`

	// ScriptChanged is true when the program's hash differs from the one
	// recorded. The traces may still match.
	ScriptChanged bool `json:"script_changed"`

	ReplayHash string `json:"replay_hash"`
	Match      bool   `json:"match"`

	// FirstDiff is the index of the first differing frame, or -1 when the
	// traces match. If one trace is a prefix of the other it is the length
	// of the shorter one.
	FirstDiff int          `json:"first_diff"`
	Recorded  *trace.Frame `json:"recorded,omitempty"`
	Replayed  *trace.Frame `json:"replayed,omitempty"`
}

// Replay re-renders p with the options stored in run id and compares the
// result frame by frame against the recording.
//
// Rendering is deterministic, so a mismatch means the program or the
// engine changed since the run was recorded.
func (s *Store) Replay(ctx context.Context, id string, p *compiler.Program) (ReplayResult, error) {
	run, err := s.ReadRun(ctx, id)
	if err != nil {
		return ReplayResult{}, fmt.Errorf("replay %s: %w", id, err)
	}

	recorded, err := s.ReadFrames(ctx, id)
	if err != nil {
		return ReplayResult{}, fmt.Errorf("replay %s: %w", id, err)
	}

	replayed, err := trace.Render(p, run.Options())
	if err != nil {
		return ReplayResult{}, fmt.Errorf("replay %s: %w", id, err)
	}

	hash, err := replayed.Hash()
	if err != nil {
		return ReplayResult{}, fmt.Errorf("replay %s: %w", id, err)
	}

	result := ReplayResult{
		Run:           run,
		ScriptChanged: p.Hash != run.ScriptHash,
		ReplayHash:    hash,
		Match:         hash == run.TraceHash,
		FirstDiff:     firstDiff(recorded, replayed),
	}
	if result.FirstDiff >= 0 {
		if result.FirstDiff < len(recorded) {
			result.Recorded = &recorded[result.FirstDiff]
		}
		if result.FirstDiff < len(replayed) {
			result.Replayed = &replayed[result.FirstDiff]
		}
	}
	return result, nil
}

func firstDiff(a, b trace.Frames) int {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return i
		}
	}
	if len(a) != len(b) {
		return n
	}
	return -1
}

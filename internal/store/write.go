package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/choreo/internal/trace"
)

// ErrRunExists is returned by WriteRun when the run ID is already taken.
var ErrRunExists = errors.New("run already exists")

// WriteRun inserts a run and its frames in one transaction.
//
// The run's FrameCount, Completed and TraceHash must describe frames;
// NewRun fills them in. Returns ErrRunExists if run.ID is taken; in that
// case nothing is written.
func (s *Store) WriteRun(ctx context.Context, run Run, frames trace.Frames) error {
	if run.FrameCount != len(frames) {
		return fmt.Errorf("write run: frame_count %d does not match %d frames", run.FrameCount, len(frames))
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write run: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	result, err := tx.ExecContext(ctx, `
		INSERT INTO runs
		(id, script_name, script_hash, cadence_ms, duration_ms, start_tick,
		 ticks_per_second, frame_count, completed, trace_hash, ir_version, engine_version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		run.ID,
		run.ScriptName,
		run.ScriptHash,
		run.CadenceMS,
		run.DurationMS,
		int64(run.StartTick),
		run.TicksPerSecond,
		run.FrameCount,
		boolToInt(run.Completed),
		run.TraceHash,
		run.IRVersion,
		run.EngineVersion,
	)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("write run: rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("write run %s: %w", run.ID, ErrRunExists)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO frames (run_id, seq, tick, elapsed_ms, step_index, color, done)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("write run: prepare frames: %w", err)
	}
	defer stmt.Close()

	for _, f := range frames {
		if _, err := stmt.ExecContext(ctx,
			run.ID,
			f.Seq,
			int64(f.Tick),
			f.ElapsedMS,
			f.Index,
			marshalColor(f.Color),
			boolToInt(f.Done),
		); err != nil {
			return fmt.Errorf("write run: frame %d: %w", f.Seq, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write run: commit: %w", err)
	}
	return nil
}

// DeleteRun removes a run and, by cascade, its frames.
// Deleting a missing run is not an error.
func (s *Store) DeleteRun(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete run: %w", err)
	}
	return nil
}

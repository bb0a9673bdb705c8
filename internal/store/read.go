package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/choreo/internal/tick"
	"github.com/roach88/choreo/internal/trace"
)

const runColumns = `seq, id, script_name, script_hash, cadence_ms, duration_ms, start_tick,
	ticks_per_second, frame_count, completed, trace_hash, ir_version, engine_version`

// ReadRun retrieves a single run by ID.
// Returns sql.ErrNoRows if not found.
func (s *Store) ReadRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	return scanRun(row)
}

// LatestRun returns the most recently recorded run of a script.
// Returns sql.ErrNoRows if the script has no runs.
func (s *Store) LatestRun(ctx context.Context, scriptName string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+runColumns+`
		FROM runs
		WHERE script_name = ?
		ORDER BY seq DESC
		LIMIT 1
	`, scriptName)
	return scanRun(row)
}

// ListRuns returns runs in recording order. An empty scriptName lists
// every run.
//
// Returns an empty slice (not nil) if there are no runs.
func (s *Store) ListRuns(ctx context.Context, scriptName string) ([]Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs`
	var args []any
	if scriptName != "" {
		query += ` WHERE script_name = ?`
		args = append(args, scriptName)
	}
	query += ` ORDER BY seq ASC, id COLLATE BINARY ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// ReadFrames returns the frames of a run in order.
//
// Returns an empty slice (not nil) if the run has no frames or does
// not exist.
func (s *Store) ReadFrames(ctx context.Context, runID string) (trace.Frames, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, tick, elapsed_ms, step_index, color, done
		FROM frames
		WHERE run_id = ?
		ORDER BY seq ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query frames: %w", err)
	}
	defer rows.Close()

	frames := trace.Frames{}
	for rows.Next() {
		var (
			f        trace.Frame
			tickVal  int64
			colorHex string
			done     int
		)
		if err := rows.Scan(&f.Seq, &tickVal, &f.ElapsedMS, &f.Index, &colorHex, &done); err != nil {
			return nil, fmt.Errorf("scan frame: %w", err)
		}
		c, err := unmarshalColor(colorHex)
		if err != nil {
			return nil, fmt.Errorf("frame %d: %w", f.Seq, err)
		}
		f.Tick = tick.Tick(tickVal)
		f.Color = c
		f.Done = done != 0
		frames = append(frames, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate frames: %w", err)
	}
	return frames, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var (
		run       Run
		startTick int64
		completed int
	)
	err := row.Scan(
		&run.Seq,
		&run.ID,
		&run.ScriptName,
		&run.ScriptHash,
		&run.CadenceMS,
		&run.DurationMS,
		&startTick,
		&run.TicksPerSecond,
		&run.FrameCount,
		&completed,
		&run.TraceHash,
		&run.IRVersion,
		&run.EngineVersion,
	)
	if err == sql.ErrNoRows {
		return Run{}, err
	}
	if err != nil {
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	run.StartTick = tick.Tick(startTick)
	run.Completed = completed != 0
	return run, nil
}

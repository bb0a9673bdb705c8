package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/choreo/internal/store"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	DatabaseFlags
	RunID    string // optional - defaults to the latest run of the script
	Script   string
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay <script-or-dir>",
		Short: "Re-render a recorded run and verify it matches",
		Long: `Re-render a script with the options of a recorded run and compare
the new trace with the stored one frame by frame.

Exit codes:
  0 - The traces match
  1 - The traces differ
  2 - Command error (database not found, run not found, etc.)

Examples:
  choreo replay --db ./choreo.db breathe.yaml
  choreo replay --db ./choreo.db --run 0190a6c2-... breathe.yaml
  choreo replay --db ./choreo.db --format json breathe.yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, args[0], cmd)
		},
	}

	addDatabaseFlags(cmd, &opts.DatabaseFlags)
	cmd.Flags().StringVar(&opts.RunID, "run", "", "replay a specific run (default: latest run of the script)")
	cmd.Flags().StringVar(&opts.Script, "script", "", "script name (when the path holds several scripts)")

	return cmd
}

func runReplay(opts *ReplayOptions, path string, cmd *cobra.Command) error {
	configureLogging(opts.RootOptions, cmd.ErrOrStderr())
	formatter := newFormatter(opts.RootOptions, cmd)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	prog, err := loadProgram(path, opts.Script)
	if err != nil {
		return err
	}

	st, err := opts.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	runID := opts.RunID
	if runID == "" {
		latest, err := st.LatestRun(ctx, prog.Name)
		if errors.Is(err, sql.ErrNoRows) {
			return NewExitError(ExitCommandError, fmt.Sprintf("no recorded runs of %s", prog.Name))
		}
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to find latest run", err)
		}
		runID = latest.ID
	}

	result, err := st.Replay(ctx, runID, prog)
	if errors.Is(err, sql.ErrNoRows) {
		return NewExitError(ExitCommandError, fmt.Sprintf("run not found: %s", runID))
	}
	if err != nil {
		return WrapExitError(ExitCommandError, fmt.Sprintf("failed to replay run %s", runID), err)
	}

	if formatter.Format == "json" {
		return outputReplayJSON(formatter, result)
	}
	return outputReplayText(formatter, result)
}

// outputReplayJSON outputs the replay result as JSON.
func outputReplayJSON(formatter *OutputFormatter, result store.ReplayResult) error {
	response := CLIResponse{
		Status: "ok",
		Data:   result,
		RunID:  result.Run.ID,
	}

	if !result.Match {
		response.Status = "error"
		response.Error = &CLIError{
			Code:    "E_REPLAY_MISMATCH",
			Message: fmt.Sprintf("trace differs from recording at frame %d", result.FirstDiff),
		}
	}

	if err := formatter.JSON(response); err != nil {
		return err
	}

	if !result.Match {
		// Replay mismatch = exit code 1
		return NewExitError(ExitFailure, "replay does not match recording")
	}
	return nil
}

// outputReplayText outputs the replay result as text.
func outputReplayText(formatter *OutputFormatter, result store.ReplayResult) error {
	w := formatter.Writer

	fmt.Fprintf(w, "Replay of %s (run %s)\n", result.Run.ScriptName, result.Run.ID)
	fmt.Fprintf(w, "  Frames: %d recorded\n", result.Run.FrameCount)
	if result.ScriptChanged {
		fmt.Fprintln(w, "  Note: script changed since recording")
	}

	if result.Match {
		fmt.Fprintf(w, "✓ Trace matches recording (%s)\n", result.ReplayHash[:12])
		return nil
	}

	fmt.Fprintf(w, "✗ Trace differs at frame %d\n", result.FirstDiff)
	if result.Recorded != nil {
		fmt.Fprintf(w, "  Recorded: %dms step %d %s done=%v\n",
			result.Recorded.ElapsedMS, result.Recorded.Index, result.Recorded.Color, result.Recorded.Done)
	} else {
		fmt.Fprintln(w, "  Recorded: (trace ended)")
	}
	if result.Replayed != nil {
		fmt.Fprintf(w, "  Replayed: %dms step %d %s done=%v\n",
			result.Replayed.ElapsedMS, result.Replayed.Index, result.Replayed.Color, result.Replayed.Done)
	} else {
		fmt.Fprintln(w, "  Replayed: (trace ended)")
	}

	// Replay mismatch = exit code 1
	return NewExitError(ExitFailure, "replay does not match recording")
}

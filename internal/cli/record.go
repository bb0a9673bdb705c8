package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/choreo/internal/store"
	"github.com/roach88/choreo/internal/trace"
)

// RecordOptions holds flags for the record command.
type RecordOptions struct {
	*RootOptions
	RenderFlags
	DatabaseFlags

	// RunIDs allows overriding the run id generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	RunIDs store.RunIDGenerator
}

// NewRecordCommand creates the record command.
func NewRecordCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RecordOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "record <script-or-dir>",
		Short: "Render a script and store the trace",
		Long: `Render a script and store the trace in a SQLite database.

The recording keeps the render options, the script hash and every
frame, so 'choreo replay' can later prove the trace is unchanged.

Example:
  choreo record --db ./choreo.db breathe.yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecord(opts, args[0], cmd)
		},
	}

	addRenderFlags(cmd, &opts.RenderFlags)
	addDatabaseFlags(cmd, &opts.DatabaseFlags)

	return cmd
}

func runRecord(opts *RecordOptions, path string, cmd *cobra.Command) error {
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

	renderOpts := opts.Options().Resolve(prog)
	frames, err := trace.Render(prog, renderOpts)
	if err != nil {
		return WrapExitError(ExitCommandError, "render failed", err)
	}

	slog.Info("opening database", "path", opts.Database)
	st, err := opts.openStore()
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()

	runIDs := opts.RunIDs
	if runIDs == nil {
		runIDs = store.UUIDv7Generator{}
	}

	run, err := store.NewRun(runIDs.Generate(), prog, renderOpts, frames)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to build run", err)
	}
	if err := st.WriteRun(ctx, run, frames); err != nil {
		return WrapExitError(ExitCommandError, "failed to write run", err)
	}
	slog.Info("run recorded",
		"run", run.ID,
		"script", run.ScriptName,
		"frames", run.FrameCount,
		"trace_hash", run.TraceHash,
	)

	if formatter.Format == "json" {
		return formatter.JSON(CLIResponse{Status: "ok", Data: run, RunID: run.ID})
	}

	fmt.Fprintf(formatter.Writer, "✓ Recorded %s: %d frame(s)\n", run.ScriptName, run.FrameCount)
	fmt.Fprintf(formatter.Writer, "  Run: %s\n", run.ID)
	fmt.Fprintf(formatter.Writer, "  Trace hash: %s\n", run.TraceHash)
	return nil
}

package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/choreo/internal/tick"
	"github.com/roach88/choreo/internal/trace"
)

// PlayOptions holds flags for the play command.
type PlayOptions struct {
	*RootOptions
	RenderFlags

	// Source overrides the live tick source. Nil uses tick.NewMonotonic.
	Source tick.Source
}

// NewPlayCommand creates the play command.
func NewPlayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PlayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "play <script-or-dir>",
		Short: "Play a script against the wall clock",
		Long: `Play a script in real time, printing one frame per poll.

Frames are written as text lines, or as one JSON object per line with
--format json. Playback stops when the sequence completes or on
interrupt.

Examples:
  choreo play breathe.yaml
  choreo play ./scripts --script breathe --cadence 50
  choreo play breathe.yaml --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runPlay(ctx, opts, args[0], cmd)
		},
	}

	addRenderFlags(cmd, &opts.RenderFlags)

	return cmd
}

func runPlay(ctx context.Context, opts *PlayOptions, path string, cmd *cobra.Command) error {
	configureLogging(opts.RootOptions, cmd.ErrOrStderr())
	formatter := newFormatter(opts.RootOptions, cmd)

	prog, err := loadProgram(path, opts.Script)
	if err != nil {
		return err
	}

	src := opts.Source
	if src == nil {
		src = tick.NewMonotonic(opts.TicksPerSecond)
	}
	cadence := time.Duration(opts.CadenceMS) * time.Millisecond

	slog.Debug("playing", "script", prog.Name, "cadence", cadence, "tps", src.TicksPerSecond())

	var emit func(trace.Frame) error
	if formatter.Format == "json" {
		enc := json.NewEncoder(formatter.Writer)
		emit = func(f trace.Frame) error { return enc.Encode(f) }
	} else {
		emit = func(f trace.Frame) error { return trace.Frames{f}.WriteText(formatter.Writer) }
	}

	err = trace.Play(ctx, prog, src, cadence, emit)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.Canceled):
		formatter.VerboseLog("Playback interrupted")
		return nil
	default:
		return WrapExitError(ExitCommandError, fmt.Sprintf("play %s", prog.Name), err)
	}
}

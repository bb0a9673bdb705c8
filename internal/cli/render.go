package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/choreo/internal/trace"
)

// RenderOptions holds flags for the render command.
type RenderOptions struct {
	*RootOptions
	RenderFlags
}

// RenderResult is the JSON payload of the render command.
type RenderResult struct {
	Script     string       `json:"script"`
	ScriptHash string       `json:"script_hash"`
	TraceHash  string       `json:"trace_hash"`
	Completed  bool         `json:"completed"`
	Frames     trace.Frames `json:"frames"`
}

// NewRenderCommand creates the render command.
func NewRenderCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RenderOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "render <script-or-dir>",
		Short: "Render a script to a deterministic trace",
		Long: `Render a script against a simulated tick counter.

The sequence is polled every --cadence ms until it completes or
--duration ms have passed, and one frame is printed per poll.

Examples:
  choreo render breathe.yaml
  choreo render breathe.yaml --cadence 50 --start-tick 4294966000
  choreo render ./scripts --script breathe --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(opts, args[0], cmd)
		},
	}

	addRenderFlags(cmd, &opts.RenderFlags)

	return cmd
}

func runRender(opts *RenderOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	prog, err := loadProgram(path, opts.Script)
	if err != nil {
		return err
	}

	frames, err := trace.Render(prog, opts.Options())
	if err != nil {
		return WrapExitError(ExitCommandError, "render failed", err)
	}
	formatter.VerboseLog("Rendered %d frame(s) of %s", len(frames), prog.Name)

	if formatter.Format == "json" {
		hash, err := frames.Hash()
		if err != nil {
			return WrapExitError(ExitCommandError, "hashing trace", err)
		}
		return formatter.Success(RenderResult{
			Script:     prog.Name,
			ScriptHash: prog.Hash,
			TraceHash:  hash,
			Completed:  frames.Completed(),
			Frames:     frames,
		})
	}

	if err := frames.WriteText(formatter.Writer); err != nil {
		return err
	}
	if !frames.Completed() {
		fmt.Fprintln(formatter.Writer, "(still running)")
	}
	return nil
}

package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// RunsOptions holds flags for the runs command.
type RunsOptions struct {
	*RootOptions
	DatabaseFlags
	Script   string // optional filter
	Delete   string // run id to delete
}

// NewRunsCommand creates the runs command.
func NewRunsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List or delete recorded runs",
		Long: `List recorded runs in recording order, optionally for one script.

Examples:
  choreo runs --db ./choreo.db
  choreo runs --db ./choreo.db --script breathe
  choreo runs --db ./choreo.db --delete 0190a6c2-...`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRuns(opts, cmd)
		},
	}

	addDatabaseFlags(cmd, &opts.DatabaseFlags)
	cmd.Flags().StringVar(&opts.Script, "script", "", "only list runs of this script")
	cmd.Flags().StringVar(&opts.Delete, "delete", "", "delete the run with this id")

	return cmd
}

func runRuns(opts *RunsOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	st, err := opts.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	if opts.Delete != "" {
		if err := st.DeleteRun(ctx, opts.Delete); err != nil {
			return WrapExitError(ExitCommandError, "failed to delete run", err)
		}
		formatter.VerboseLog("Deleted run %s", opts.Delete)
	}

	runs, err := st.ListRuns(ctx, opts.Script)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list runs", err)
	}

	if formatter.Format == "json" {
		return formatter.Success(runs)
	}

	if len(runs) == 0 {
		fmt.Fprintln(formatter.Writer, "No runs found.")
		return nil
	}
	for _, r := range runs {
		status := "running"
		if r.Completed {
			status = "complete"
		}
		fmt.Fprintf(formatter.Writer, "%s  %-16s %5d frame(s)  %-8s %s\n",
			r.ID, r.ScriptName, r.FrameCount, status, r.TraceHash[:12])
	}
	return nil
}

package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/choreo/internal/compiler"
	"github.com/roach88/choreo/internal/store"
	"github.com/roach88/choreo/internal/tick"
	"github.com/roach88/choreo/internal/trace"
)

// RenderFlags holds the render options shared by render, record and play.
type RenderFlags struct {
	Script         string // script name, required when the path holds several
	CadenceMS      uint32
	DurationMS     uint32
	StartTick      uint32
	TicksPerSecond uint32
}

// addRenderFlags registers the render flags on cmd.
func addRenderFlags(cmd *cobra.Command, f *RenderFlags) {
	cmd.Flags().StringVar(&f.Script, "script", "", "script name (when the path holds several scripts)")
	cmd.Flags().Uint32Var(&f.CadenceMS, "cadence", trace.DefaultCadenceMS, "poll interval in ms")
	cmd.Flags().Uint32Var(&f.DurationMS, "duration", 0, "trace length in ms (0 = until done, capped)")
	cmd.Flags().Uint32Var(&f.StartTick, "start-tick", 0, "tick counter value at load (exercises wraparound)")
	cmd.Flags().Uint32Var(&f.TicksPerSecond, "tps", trace.DefaultTicksPerSec, "timer resolution in ticks per second")
}

// Options converts the flags to render options.
func (f *RenderFlags) Options() trace.Options {
	return trace.Options{
		CadenceMS:      f.CadenceMS,
		DurationMS:     f.DurationMS,
		StartTick:      tick.Tick(f.StartTick),
		TicksPerSecond: f.TicksPerSecond,
	}
}

// DatabaseFlags holds the recordings database flags shared by record,
// replay and runs.
type DatabaseFlags struct {
	Database    string
	BusyTimeout time.Duration
}

// addDatabaseFlags registers the database flags on cmd; --db is required.
func addDatabaseFlags(cmd *cobra.Command, f *DatabaseFlags) {
	cmd.Flags().StringVar(&f.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().DurationVar(&f.BusyTimeout, "busy-timeout", store.DefaultBusyTimeout, "how long to wait for a locked database")
}

// openStore opens the database named by the flags.
func (f *DatabaseFlags) openStore() (*store.Store, error) {
	st, err := store.Open(f.Database, store.WithBusyTimeout(f.BusyTimeout))
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	return st, nil
}

// loadProgram loads the scripts at path and compiles the one named name.
// An empty name is allowed when path holds exactly one script.
//
// Errors are *ExitError with ExitCommandError, except validation
// failures which use ExitFailure.
func loadProgram(path, name string) (*compiler.Program, error) {
	loadResult, loadErrors := LoadScripts(path, LoadModeFailFast)
	if len(loadErrors) > 0 {
		return nil, WrapExitError(ExitCommandError, "failed to load scripts", loadErrors[0])
	}

	var candidates []string
	for _, ls := range loadResult.Scripts {
		candidates = append(candidates, ls.Script.Name)
		if name != "" && ls.Script.Name != name {
			continue
		}
		if name == "" && len(loadResult.Scripts) > 1 {
			break
		}

		prog, err := compiler.Compile(ls.Script)
		if err != nil {
			var verrs compiler.ValidationErrors
			if errors.As(err, &verrs) {
				return nil, WrapExitError(ExitFailure, fmt.Sprintf("script %s is invalid", ls.Script.Name), err)
			}
			return nil, WrapExitError(ExitCommandError, fmt.Sprintf("failed to compile %s", ls.Script.Name), err)
		}
		return prog, nil
	}

	if name == "" {
		return nil, NewExitError(ExitCommandError,
			fmt.Sprintf("%s: %s holds %d scripts, choose one with --script", ErrCodeNoScript, path, len(loadResult.Scripts)))
	}
	return nil, NewExitError(ExitCommandError,
		fmt.Sprintf("%s: script %q not found (have: %s)", ErrCodeNoScript, name, strings.Join(candidates, ", ")))
}

package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/choreo/internal/compiler"
	"github.com/roach88/choreo/internal/ir"
	"github.com/roach88/choreo/internal/store"
	"github.com/roach88/choreo/internal/trace"
)

// scenarioRunID is the run id used for the in-memory recording.
const scenarioRunID = "scenario-run"

// Harness is the test execution engine.
// It renders scenarios deterministically and cross-checks each trace
// against a stored recording.
type Harness struct {
	store  *store.Store
	runIDs store.RunIDGenerator
	logger *slog.Logger
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
//
// Execution flow:
// 1. Load or build the script and apply scenario overrides
// 2. Compile the script
// 3. Render the trace with the scenario's options
// 4. Record the trace and replay it from the store
// 5. Evaluate assertions and return the result
//
// A non-nil error means the scenario could not be executed at all.
// Assertion failures are reported in Result.Errors.
func Run(scenario *Scenario) (*Result, error) {
	st, err := store.Open(store.Memory)
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	h := &Harness{
		store:  st,
		runIDs: store.NewFixedGenerator(scenarioRunID),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)), // Suppress logs in tests
	}
	return h.run(context.Background(), scenario)
}

func (h *Harness) run(ctx context.Context, scenario *Scenario) (*Result, error) {
	script, err := scenarioScript(scenario)
	if err != nil {
		return nil, err
	}

	prog, err := compiler.Compile(script)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}

	opts := scenario.Options()
	frames, err := trace.Render(prog, opts)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}

	result := NewResult()
	result.Frames = frames
	result.ScriptHash = prog.Hash

	if err := h.crossCheck(ctx, prog, opts, frames, result); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}

	for _, errMsg := range EvaluateAssertions(frames, scenario.Assertions) {
		result.AddError(errMsg)
	}

	h.logger.Info("scenario completed",
		"scenario", scenario.Name,
		"frames", len(frames),
		"pass", result.Pass,
	)
	return result, nil
}

// crossCheck records frames and replays them from the store. The
// recording uses resolved options so the replay renders the same window.
func (h *Harness) crossCheck(ctx context.Context, prog *compiler.Program, opts trace.Options, frames trace.Frames, result *Result) error {
	run, err := store.NewRun(h.runIDs.Generate(), prog, opts.Resolve(prog), frames)
	if err != nil {
		return err
	}
	result.TraceHash = run.TraceHash

	if err := h.store.WriteRun(ctx, run, frames); err != nil {
		return err
	}

	replay, err := h.store.Replay(ctx, run.ID, prog)
	if err != nil {
		return err
	}
	if !replay.Match {
		result.AddError(fmt.Sprintf("replay diverged at frame %d: trace hash %s, replay hash %s",
			replay.FirstDiff, run.TraceHash, replay.ReplayHash))
	}
	return nil
}

// scenarioScript loads the scenario's script and applies its overrides.
func scenarioScript(scenario *Scenario) (ir.Script, error) {
	var script ir.Script
	switch {
	case scenario.Script != "":
		loaded, err := compiler.LoadFile(scenario.Script)
		if err != nil {
			return ir.Script{}, fmt.Errorf("scenario %s: %w", scenario.Name, err)
		}
		script = loaded
	case scenario.Table != "":
		script = ir.Script{Name: scenario.Name, Table: scenario.Table}
	default:
		return ir.Script{}, fmt.Errorf("scenario %s: one of script or table is required", scenario.Name)
	}

	if scenario.Behavior != "" {
		script.Behavior = scenario.Behavior
		script.Loops = scenario.Loops
	} else if scenario.Loops != 0 {
		script.Loops = scenario.Loops
	}
	if scenario.Capacity != 0 {
		script.Capacity = scenario.Capacity
	}
	return script, nil
}

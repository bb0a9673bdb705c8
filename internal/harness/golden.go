package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/choreo/internal/ir"
	"github.com/roach88/choreo/internal/trace"
)

// TraceSnapshot captures the complete trace for a scenario execution.
// All fields use canonical JSON serialization for deterministic comparison.
type TraceSnapshot struct {
	ScenarioName string       `json:"scenario_name"`
	Frames       trace.Frames `json:"trace"`
}

// toIR converts a TraceSnapshot to its canonical object form.
func (s *TraceSnapshot) toIR() ir.IRObject {
	return ir.IRObject{
		"scenario_name": ir.IRString(s.ScenarioName),
		"trace":         s.Frames.ToIR(),
	}
}

// Snapshot returns the canonical JSON golden form of the result's trace.
func (r *Result) Snapshot(scenarioName string) ([]byte, error) {
	snapshot := TraceSnapshot{
		ScenarioName: scenarioName,
		Frames:       r.Frames,
	}
	return ir.MarshalCanonical(snapshot.toIR())
}

// RunWithGolden executes a scenario and compares the trace against a golden file.
// The golden file is stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the trace doesn't match the golden file.
// Assertion failures are left to the caller, which can inspect the result.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}

	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares the given result's trace against a golden file.
// This is useful when you've already run a scenario and want to compare
// the result against a golden file without re-running.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	traceJSON, err := result.Snapshot(scenarioName)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, traceJSON)

	return nil
}

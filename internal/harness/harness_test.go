package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const twoSolids = `
| action | color | duration_ms |
| solid  | red   | 20          |
| solid  | blue  | 20          |
`

func TestRun_MinimalScenario(t *testing.T) {
	scenario := &Scenario{
		Name:        "minimal",
		Description: "Minimal test scenario",
		Table:       twoSolids,
		CadenceMS:   10,
		Assertions: []Assertion{
			{Type: AssertCompleteAt, AtMS: 40},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.True(t, result.Pass)
	assert.Empty(t, result.Errors)
	assert.Len(t, result.Frames, 5)
	assert.Len(t, result.ScriptHash, 64)
	assert.Len(t, result.TraceHash, 64)

	h, err := result.Frames.Hash()
	require.NoError(t, err)
	assert.Equal(t, h, result.TraceHash)
}

func TestRun_AssertionFailure(t *testing.T) {
	scenario := &Scenario{
		Name:        "wrong_color",
		Description: "Expects the wrong color",
		Table:       twoSolids,
		CadenceMS:   10,
		Assertions: []Assertion{
			{Type: AssertColorAt, AtMS: 10, Color: "green"},
			{Type: AssertCompleteAt, AtMS: 40},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "color_at")
	assert.Contains(t, result.Errors[0], "#00ff00 at 10ms")
	assert.Contains(t, result.Errors[0], "#ff0000 at 10ms")
}

func TestRun_Deterministic(t *testing.T) {
	scenario := &Scenario{
		Name:        "breathe",
		Description: "Determinism",
		Script:      "testdata/scripts/breathe.yaml",
		Assertions:  []Assertion{{Type: AssertCompleteAt, AtMS: 4500}},
	}

	first, err := Run(scenario)
	require.NoError(t, err)
	second, err := Run(scenario)
	require.NoError(t, err)

	assert.True(t, first.Pass, first.Errors)
	assert.Equal(t, first.TraceHash, second.TraceHash)
	assert.Equal(t, first.Frames, second.Frames)
}

func TestRun_Overrides(t *testing.T) {
	scenario := &Scenario{
		Name:        "overrides",
		Description: "Behavior and loops from the scenario replace the script's",
		Table:       twoSolids,
		Behavior:    "loop_times",
		Loops:       3,
		CadenceMS:   10,
		Assertions:  []Assertion{{Type: AssertCompleteAt, AtMS: 120}},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, result.Errors)
}

func TestRun_CapacityOverrideTooSmall(t *testing.T) {
	scenario := &Scenario{
		Name:        "too_small",
		Description: "Capacity below the step count",
		Table:       twoSolids,
		Capacity:    1,
		Assertions:  []Assertion{{Type: AssertFrameCount, Count: 1}},
	}

	_, err := Run(scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too_small")
}

func TestRun_CompileError(t *testing.T) {
	scenario := &Scenario{
		Name:        "bad",
		Description: "Unknown action",
		Table:       "| action | color | duration_ms |\n| blink | red | 10 |\n",
		Assertions:  []Assertion{{Type: AssertFrameCount, Count: 1}},
	}

	_, err := Run(scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "E201")
}

func TestRun_MissingScript(t *testing.T) {
	scenario := &Scenario{
		Name:        "missing",
		Description: "Script file does not exist",
		Script:      "testdata/scripts/nope.yaml",
		Assertions:  []Assertion{{Type: AssertFrameCount, Count: 1}},
	}

	_, err := Run(scenario)
	require.Error(t, err)
}

func TestRun_NoSource(t *testing.T) {
	_, err := Run(&Scenario{Name: "empty"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "one of script or table is required")
}

func TestRun_TestdataScenarios(t *testing.T) {
	paths, err := FindScenarioFiles("testdata/scenarios")
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			scenario, err := LoadScenario(path)
			require.NoError(t, err)

			result, err := Run(scenario)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
		})
	}
}

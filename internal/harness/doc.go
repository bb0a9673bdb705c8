// Package harness provides conformance testing for choreo scripts.
//
// The harness compiles a script, renders it against a simulated tick
// source, and checks assertions about the resulting trace as executable
// contract tests.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	script: scripts/breathe.yaml   # or an inline table:
//	table: |
//	  | action | color | duration_ms |
//	  | solid  | red   | 20          |
//	behavior: one_shot
//	cadence_ms: 10
//	duration_ms: 0
//	start_tick: 4294967290
//	assertions:
//	  - type: color_at
//	    at_ms: 10
//	    color: red
//	  - type: complete_at
//	    at_ms: 20
//
// # Assertion Types
//
// The following assertion types are supported:
//
//   - color_at: The frame at at_ms has the given color (and step, if set)
//   - complete_at: The first done frame is at at_ms
//   - no_complete_before: No frame before at_ms is done
//   - monotonic: Brightness is rising or falling between from_ms and to_ms
//   - frame_count: The trace has exactly count frames
//
// # Deterministic Testing
//
// Rendering uses tick.Manual, so a scenario produces the same
// trace on every run. Each run is also recorded in an in-memory SQLite
// store and replayed; a replay that disagrees with the first render
// fails the scenario.
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/breathe.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(scenario)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if !result.Pass {
//	    for _, e := range result.Errors {
//	        log.Println(e)
//	    }
//	}
package harness

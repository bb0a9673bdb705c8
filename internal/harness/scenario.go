package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/choreo/internal/tick"
	"github.com/roach88/choreo/internal/trace"
)

// Scenario defines a conformance test scenario.
// A scenario renders one script and asserts on the resulting trace.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden
	// file and, for inline tables, the script.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Script is the path to a script file (.yaml, .cue or .tbl).
	// Relative paths are resolved against the scenario file.
	Script string `yaml:"script,omitempty"`

	// Table is an inline step table. Exactly one of Script and Table is set.
	Table string `yaml:"table,omitempty"`

	// Behavior, Loops and Capacity override the script's values when set.
	Behavior string `yaml:"behavior,omitempty"`
	Loops    uint32 `yaml:"loops,omitempty"`
	Capacity int    `yaml:"capacity,omitempty"`

	// Render options. Zero values select the trace package defaults.
	CadenceMS      uint32    `yaml:"cadence_ms,omitempty"`
	DurationMS     uint32    `yaml:"duration_ms,omitempty"`
	StartTick      tick.Tick `yaml:"start_tick,omitempty"`
	TicksPerSecond uint32    `yaml:"ticks_per_second,omitempty"`

	// Assertions validate the rendered trace.
	Assertions []Assertion `yaml:"assertions"`
}

// Options returns the render options for the scenario.
func (s *Scenario) Options() trace.Options {
	return trace.Options{
		CadenceMS:      s.CadenceMS,
		DurationMS:     s.DurationMS,
		StartTick:      s.StartTick,
		TicksPerSecond: s.TicksPerSecond,
	}
}

// Assertion validates the rendered trace.
type Assertion struct {
	// Type specifies the assertion type:
	// - "color_at": frame at AtMS has Color (and Step, if set)
	// - "complete_at": first done frame is at AtMS
	// - "no_complete_before": no done frame before AtMS
	// - "monotonic": brightness moves in Direction from FromMS to ToMS
	// - "frame_count": trace has exactly Count frames
	Type string `yaml:"type"`

	// AtMS is the elapsed time checked (color_at, complete_at, no_complete_before).
	AtMS uint32 `yaml:"at_ms,omitempty"`

	// Color is a palette name or hex string (color_at).
	Color string `yaml:"color,omitempty"`

	// Step is the expected running step index (color_at, optional).
	Step *int `yaml:"step,omitempty"`

	// FromMS and ToMS bound the window checked by monotonic, inclusive.
	FromMS uint32 `yaml:"from_ms,omitempty"`
	ToMS   uint32 `yaml:"to_ms,omitempty"`

	// Direction is "rising" or "falling" (monotonic).
	Direction string `yaml:"direction,omitempty"`

	// Count is the expected number of frames (frame_count).
	Count int `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertColorAt          = "color_at"
	AssertCompleteAt       = "complete_at"
	AssertNoCompleteBefore = "no_complete_before"
	AssertMonotonic        = "monotonic"
	AssertFrameCount       = "frame_count"
)

// Monotonic directions.
const (
	DirectionRising  = "rising"
	DirectionFalling = "falling"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
//
// A relative script path is resolved against the directory of path.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	if scenario.Script != "" && !filepath.IsAbs(scenario.Script) {
		scenario.Script = filepath.Join(filepath.Dir(path), scenario.Script)
	}

	if err := validateScenario(scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return scenario, nil
}

// ParseScenario parses a scenario document without validating it.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	switch {
	case s.Script == "" && s.Table == "":
		return fmt.Errorf("one of script or table is required")
	case s.Script != "" && s.Table != "":
		return fmt.Errorf("script and table are mutually exclusive")
	}

	if s.Script != "" {
		if _, err := os.Stat(s.Script); os.IsNotExist(err) {
			return fmt.Errorf("script file not found: %s", s.Script)
		}
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertColorAt:
		if a.Color == "" {
			return fmt.Errorf("assertions[%d]: color is required for color_at", index)
		}
	case AssertCompleteAt, AssertNoCompleteBefore:
		// at_ms 0 is meaningful for both
	case AssertMonotonic:
		if a.Direction != DirectionRising && a.Direction != DirectionFalling {
			return fmt.Errorf("assertions[%d]: direction must be %q or %q for monotonic", index, DirectionRising, DirectionFalling)
		}
		if a.ToMS <= a.FromMS {
			return fmt.Errorf("assertions[%d]: to_ms must be greater than from_ms for monotonic", index)
		}
	case AssertFrameCount:
		if a.Count < 1 {
			return fmt.Errorf("assertions[%d]: count must be positive for frame_count", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}

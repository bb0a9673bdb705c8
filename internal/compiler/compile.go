package compiler

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/choreo/internal/color"
	"github.com/roach88/choreo/internal/engine"
	"github.com/roach88/choreo/internal/ir"
	"github.com/roach88/choreo/internal/tick"
)

// Program is a compiled script, ready to load into a Sequence.
type Program struct {
	Name     string
	Capacity int
	Behavior engine.Behavior
	Steps    []engine.Step

	// Script is the source with any table rows expanded into Steps.
	Script ir.Script

	// Hash is ir.ScriptHash of the expanded Script.
	Hash string
}

// NewSequence allocates a Sequence sized for the program.
func (p *Program) NewSequence(src tick.Source) *engine.Sequence {
	return engine.New(p.Capacity, src)
}

// Load replaces the contents of seq with the program.
//
// Returns *engine.CapacityError if seq is smaller than the program.
func (p *Program) Load(seq *engine.Sequence) error {
	return seq.Set(p.Steps, p.Behavior)
}

// Compile validates a script and resolves it into engine steps.
//
// Validation errors are returned together as ValidationErrors.
func Compile(script ir.Script) (*Program, error) {
	if errs := Validate(script); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	specs, err := expandSteps(script)
	if err != nil {
		return nil, err
	}

	behavior, err := parseBehavior(script.Behavior, script.Loops)
	if err != nil {
		return nil, err
	}

	steps := make([]engine.Step, len(specs))
	for i, spec := range specs {
		st, err := resolveStep(spec)
		if err != nil {
			return nil, fmt.Errorf("steps[%d]: %w", i, err)
		}
		steps[i] = st
	}

	expanded := script
	expanded.Steps = specs
	expanded.Table = ""

	hash, err := ir.ScriptHash(expanded)
	if err != nil {
		return nil, err
	}

	capacity := script.Capacity
	if capacity == 0 {
		capacity = len(steps)
	}

	return &Program{
		Name:     script.Name,
		Capacity: capacity,
		Behavior: behavior,
		Steps:    steps,
		Script:   expanded,
		Hash:     hash,
	}, nil
}

// expandSteps returns the script's steps followed by its table rows.
func expandSteps(script ir.Script) ([]ir.StepSpec, error) {
	if strings.TrimSpace(script.Table) == "" {
		return script.Steps, nil
	}
	rows, err := ParseTable(script.Table)
	if err != nil {
		return nil, err
	}
	out := make([]ir.StepSpec, 0, len(script.Steps)+len(rows))
	out = append(out, script.Steps...)
	return append(out, rows...), nil
}

func resolveStep(spec ir.StepSpec) (engine.Step, error) {
	action, err := parseAction(spec.Action)
	if err != nil {
		return engine.Step{}, err
	}
	c, err := color.Parse(spec.Color)
	if err != nil {
		return engine.Step{}, err
	}
	repeat, err := parseRepeat(spec.Repeat)
	if err != nil {
		return engine.Step{}, err
	}
	phase, err := parsePhase(spec.Phase)
	if err != nil {
		return engine.Step{}, err
	}
	return engine.Step{
		Action:      action,
		Color:       c,
		Duration:    spec.DurationMS,
		Period:      spec.PeriodMS,
		PhaseOffset: spec.PhaseOffsetMS,
		Phase:       phase,
		Repeat:      repeat,
	}, nil
}

// actionAliases maps accepted spellings to actions.
var actionAliases = map[string]engine.Action{
	"solid":     engine.Solid,
	"stay":      engine.Solid,
	"sine":      engine.Sine,
	"sin":       engine.Sine,
	"cosine":    engine.Cosine,
	"cos":       engine.Cosine,
	"seek":      engine.Seek,
	"fade_up":   engine.FadeUp,
	"fade_down": engine.FadeDown,
}

func parseAction(name string) (engine.Action, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if a, ok := actionAliases[key]; ok {
		return a, nil
	}
	return 0, fmt.Errorf("unknown action %q", name)
}

// phaseAliases maps accepted spellings to phase modes.
var phaseAliases = map[string]engine.Phase{
	"":                engine.PhaseFixed,
	"fixed":           engine.PhaseFixed,
	"auto":            engine.PhaseAuto,
	"autoincr":        engine.PhaseAuto,
	"auto_on_start":   engine.PhaseAutoOnStart,
	"autoincronstart": engine.PhaseAutoOnStart,
}

func parsePhase(name string) (engine.Phase, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if p, ok := phaseAliases[key]; ok {
		return p, nil
	}
	return 0, fmt.Errorf("unknown phase mode %q: want fixed, auto or auto_on_start", name)
}

// parseRepeat accepts "", "once", "forever" and "times(n)" with n >= 1.
func parseRepeat(s string) (engine.Repeat, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	switch key {
	case "", "once":
		return engine.Once, nil
	case "forever":
		return engine.Forever, nil
	}

	inner, ok := strings.CutPrefix(key, "times(")
	if ok {
		inner, ok = strings.CutSuffix(inner, ")")
	}
	if !ok {
		return engine.Repeat{}, fmt.Errorf("invalid repeat %q: want once, forever or times(n)", s)
	}
	n, err := strconv.ParseUint(strings.TrimSpace(inner), 10, 32)
	if err != nil || n == 0 {
		return engine.Repeat{}, fmt.Errorf("invalid repeat count in %q: want a positive integer", s)
	}
	return engine.Times(uint32(n)), nil
}

// parseBehavior resolves the behavior name and loop count.
func parseBehavior(name string, loops uint32) (engine.Behavior, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", ir.BehaviorOneShot:
		if loops != 0 {
			return engine.Behavior{}, fmt.Errorf("loops is only valid with %s", ir.BehaviorLoopTimes)
		}
		return engine.OneShot, nil
	case ir.BehaviorLoopForever:
		if loops != 0 {
			return engine.Behavior{}, fmt.Errorf("loops is only valid with %s", ir.BehaviorLoopTimes)
		}
		return engine.LoopForever, nil
	case ir.BehaviorLoopTimes:
		if loops == 0 {
			return engine.Behavior{}, fmt.Errorf("%s requires loops >= 1", ir.BehaviorLoopTimes)
		}
		return engine.LoopTimes(loops), nil
	default:
		return engine.Behavior{}, fmt.Errorf("unknown behavior %q: want %s, %s or %s",
			name, ir.BehaviorOneShot, ir.BehaviorLoopForever, ir.BehaviorLoopTimes)
	}
}

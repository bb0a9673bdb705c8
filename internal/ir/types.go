package ir

// Behavior names accepted in Script.Behavior.
const (
	BehaviorOneShot     = "one_shot"
	BehaviorLoopForever = "loop_forever"
	BehaviorLoopTimes   = "loop_times"
)

// Script is an authored animation document, as loaded from YAML, CUE or
// a step table. Field values are unresolved strings; the compiler turns
// a Script into engine steps.
type Script struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// Capacity is the step capacity of the target sequence. Zero means
	// "exactly as many steps as the script has".
	Capacity int `json:"capacity,omitempty" yaml:"capacity,omitempty"`

	// Behavior is one of one_shot (default), loop_forever or loop_times.
	Behavior string `json:"behavior,omitempty" yaml:"behavior,omitempty"`

	// Loops is the pass count for loop_times.
	Loops uint32 `json:"loops,omitempty" yaml:"loops,omitempty"`

	Steps []StepSpec `json:"steps,omitempty" yaml:"steps,omitempty"`

	// Table is the tabular shorthand; its rows are appended after Steps.
	Table string `json:"table,omitempty" yaml:"table,omitempty"`
}

// StepSpec is one authored step.
type StepSpec struct {
	Action        string  `json:"action" yaml:"action"`
	Color         string  `json:"color" yaml:"color"`
	DurationMS    uint32  `json:"duration_ms" yaml:"duration_ms"`
	PeriodMS      float64 `json:"period_ms,omitempty" yaml:"period_ms,omitempty"`
	PhaseOffsetMS uint32  `json:"phase_offset_ms,omitempty" yaml:"phase_offset_ms,omitempty"`

	// Phase is fixed (default), auto or auto_on_start.
	Phase  string `json:"phase,omitempty" yaml:"phase,omitempty"`
	Repeat string `json:"repeat,omitempty" yaml:"repeat,omitempty"`
}

// ToIR converts the step to its canonical object form.
func (s StepSpec) ToIR() IRObject {
	obj := IRObject{
		"action":      IRString(s.Action),
		"color":       IRString(s.Color),
		"duration_ms": IRInt(s.DurationMS),
	}
	if s.PeriodMS != 0 {
		obj["period_ms"] = IRFloat(s.PeriodMS)
	}
	if s.PhaseOffsetMS != 0 {
		obj["phase_offset_ms"] = IRInt(s.PhaseOffsetMS)
	}
	if s.Phase != "" {
		obj["phase"] = IRString(s.Phase)
	}
	if s.Repeat != "" {
		obj["repeat"] = IRString(s.Repeat)
	}
	return obj
}

// ToIR converts the script to its canonical object form.
//
// Description is excluded: it does not affect playback, so editing it
// must not change the script hash.
func (s Script) ToIR() IRObject {
	steps := make(IRArray, len(s.Steps))
	for i, st := range s.Steps {
		steps[i] = st.ToIR()
	}
	obj := IRObject{
		"name":  IRString(s.Name),
		"steps": steps,
	}
	if s.Capacity != 0 {
		obj["capacity"] = IRInt(s.Capacity)
	}
	if s.Behavior != "" {
		obj["behavior"] = IRString(s.Behavior)
	}
	if s.Loops != 0 {
		obj["loops"] = IRInt(s.Loops)
	}
	if s.Table != "" {
		obj["table"] = IRString(s.Table)
	}
	return obj
}

package compiler

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/roach88/choreo/internal/color"
	"github.com/roach88/choreo/internal/ir"
)

// Validation error codes (E200-E299)
const (
	ErrUnknownAction     = "E201" // action name not recognized
	ErrInvalidColor      = "E202" // color is neither a palette name nor #rgb/#rrggbb
	ErrInvalidRepeat     = "E203" // repeat is not once, forever or times(n)
	ErrInvalidBehavior   = "E204" // behavior/loops combination invalid
	ErrCapacityExceeded  = "E205" // more steps than the declared capacity
	ErrNoSteps           = "E206" // script has neither steps nor table rows
	ErrUnreachableSteps  = "E207" // steps follow a forever step
	ErrTableParse        = "E208" // table shorthand is malformed
	ErrInvalidWaveform   = "E209" // negative or non-finite period
	ErrMissingScriptName = "E210" // script name is empty
	ErrInvalidPhase      = "E211" // phase is not fixed, auto or auto_on_start
)

// ValidationError represents a script validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks a script before it is compiled.
// Returns all errors found (does not fail-fast).
//
// A periodic step with period 0 is legal: it plays as a solid color.
func Validate(script ir.Script) []ValidationError {
	var errs []ValidationError

	if strings.TrimSpace(script.Name) == "" {
		errs = append(errs, ValidationError{
			Field:   "name",
			Message: "script name is required",
			Code:    ErrMissingScriptName,
		})
	}

	steps, tableErr := expandSteps(script)
	if tableErr != nil {
		ve := ValidationError{
			Field:   "table",
			Message: tableErr.Error(),
			Code:    ErrTableParse,
		}
		var te *TableError
		if errors.As(tableErr, &te) {
			ve.Message = te.Message
			ve.Line = te.Line
		}
		errs = append(errs, ve)
	}

	// E206: at least one step (only meaningful if the table parsed)
	if tableErr == nil && len(steps) == 0 {
		errs = append(errs, ValidationError{
			Field:   "steps",
			Message: "at least one step is required",
			Code:    ErrNoSteps,
		})
	}

	errs = append(errs, validateBehavior(script)...)

	// E205: capacity
	if script.Capacity < 0 {
		errs = append(errs, ValidationError{
			Field:   "capacity",
			Message: fmt.Sprintf("capacity must be non-negative, got %d", script.Capacity),
			Code:    ErrCapacityExceeded,
		})
	} else if script.Capacity > 0 && len(steps) > script.Capacity {
		errs = append(errs, ValidationError{
			Field:   "steps",
			Message: fmt.Sprintf("%d steps exceed capacity %d", len(steps), script.Capacity),
			Code:    ErrCapacityExceeded,
		})
	}

	forever := -1
	for i, st := range steps {
		errs = append(errs, validateStep(i, st)...)

		// E207: only the first forever step matters
		if forever >= 0 {
			continue
		}
		if r, err := parseRepeat(st.Repeat); err == nil && r.IsForever() && i < len(steps)-1 {
			forever = i
			errs = append(errs, ValidationError{
				Field: fmt.Sprintf("steps[%d].repeat", i),
				Message: fmt.Sprintf("step %d repeats forever; steps %d..%d are unreachable",
					i, i+1, len(steps)-1),
				Code: ErrUnreachableSteps,
			})
		}
	}

	return errs
}

func validateStep(i int, st ir.StepSpec) []ValidationError {
	var errs []ValidationError
	field := func(name string) string { return fmt.Sprintf("steps[%d].%s", i, name) }

	if _, err := parseAction(st.Action); err != nil {
		errs = append(errs, ValidationError{
			Field:   field("action"),
			Message: err.Error(),
			Code:    ErrUnknownAction,
		})
	}

	if _, err := color.Parse(st.Color); err != nil {
		errs = append(errs, ValidationError{
			Field:   field("color"),
			Message: err.Error(),
			Code:    ErrInvalidColor,
		})
	}

	if _, err := parseRepeat(st.Repeat); err != nil {
		errs = append(errs, ValidationError{
			Field:   field("repeat"),
			Message: err.Error(),
			Code:    ErrInvalidRepeat,
		})
	}

	if _, err := parsePhase(st.Phase); err != nil {
		errs = append(errs, ValidationError{
			Field:   field("phase"),
			Message: err.Error(),
			Code:    ErrInvalidPhase,
		})
	}

	if math.IsNaN(st.PeriodMS) || math.IsInf(st.PeriodMS, 0) || st.PeriodMS < 0 {
		errs = append(errs, ValidationError{
			Field:   field("period_ms"),
			Message: fmt.Sprintf("period must be a finite non-negative number, got %v", st.PeriodMS),
			Code:    ErrInvalidWaveform,
		})
	}

	return errs
}

func validateBehavior(script ir.Script) []ValidationError {
	if _, err := parseBehavior(script.Behavior, script.Loops); err != nil {
		return []ValidationError{{
			Field:   "behavior",
			Message: err.Error(),
			Code:    ErrInvalidBehavior,
		}}
	}
	return nil
}

package compiler

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/choreo/internal/ir"
)

// Table columns. period_ms_f is accepted as an alias of period_ms.
const (
	colAction      = "action"
	colColor       = "color"
	colDuration    = "duration_ms"
	colPeriod      = "period_ms"
	colPhaseOffset = "phase_offset_ms"
	colRepeat      = "repeat"
)

var columnAliases = map[string]string{
	"period_ms_f": colPeriod,
	"duration":    colDuration,
	"period":      colPeriod,
	"phase":       colPhaseOffset,
}

// ParseTable parses the tabular step shorthand:
//
//	| action | color | duration_ms | period_ms | phase_offset_ms | repeat |
//	|--------|-------|-------------|-----------|-----------------|--------|
//	| solid  | BLACK |        1000 |       0.0 |               0 |   once |
//	| sin    | WHITE |        2500 |    2500.0 |               0 |   once |
//
// The first non-blank row is the header and must name action, color and
// duration_ms; the other columns are optional and may appear in any
// order. Markdown separator rows, blank lines and lines starting with '#'
// are skipped. The phase_offset_ms cell also takes a phase mode (auto or
// auto_on_start) in place of a number. Cells are copied verbatim into
// StepSpec fields; action, color, phase and repeat names are resolved
// later by Compile.
func ParseTable(text string) ([]ir.StepSpec, error) {
	var (
		header []string
		steps  []ir.StepSpec
	)

	for i, raw := range strings.Split(text, "\n") {
		lineNo := i + 1
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") || isSeparatorRow(line) {
			continue
		}

		cells, err := splitRow(line)
		if err != nil {
			return nil, &TableError{Line: lineNo, Message: err.Error()}
		}

		if header == nil {
			header, err = parseHeader(cells)
			if err != nil {
				return nil, &TableError{Line: lineNo, Message: err.Error()}
			}
			continue
		}

		if len(cells) != len(header) {
			return nil, &TableError{
				Line:    lineNo,
				Message: fmt.Sprintf("expected %d cells, got %d", len(header), len(cells)),
			}
		}

		step, err := parseRow(header, cells)
		if err != nil {
			return nil, &TableError{Line: lineNo, Message: err.Error()}
		}
		steps = append(steps, step)
	}

	if header == nil {
		return nil, &TableError{Line: 1, Message: "missing header row"}
	}
	return steps, nil
}

// splitRow splits "| a | b |" into trimmed cells.
func splitRow(line string) ([]string, error) {
	if !strings.HasPrefix(line, "|") || !strings.HasSuffix(line, "|") || len(line) < 2 {
		return nil, fmt.Errorf("row must start and end with '|'")
	}
	parts := strings.Split(line[1:len(line)-1], "|")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts, nil
}

func isSeparatorRow(line string) bool {
	if !strings.HasPrefix(line, "|") {
		return false
	}
	return strings.Trim(line, "|-: \t") == "" && strings.Contains(line, "-")
}

func parseHeader(cells []string) ([]string, error) {
	header := make([]string, len(cells))
	seen := make(map[string]bool, len(cells))
	for i, c := range cells {
		name := strings.ToLower(c)
		if alias, ok := columnAliases[name]; ok {
			name = alias
		}
		switch name {
		case colAction, colColor, colDuration, colPeriod, colPhaseOffset, colRepeat:
		default:
			return nil, fmt.Errorf("unknown column %q", c)
		}
		if seen[name] {
			return nil, fmt.Errorf("duplicate column %q", c)
		}
		seen[name] = true
		header[i] = name
	}
	for _, required := range []string{colAction, colColor, colDuration} {
		if !seen[required] {
			return nil, fmt.Errorf("header is missing required column %q", required)
		}
	}
	return header, nil
}

func parseRow(header, cells []string) (ir.StepSpec, error) {
	var step ir.StepSpec
	for i, name := range header {
		cell := cells[i]
		switch name {
		case colAction:
			step.Action = cell
		case colColor:
			step.Color = cell
		case colRepeat:
			step.Repeat = cell
		case colDuration:
			v, err := parseUint32(cell)
			if err != nil {
				return step, fmt.Errorf("duration_ms: %v", err)
			}
			step.DurationMS = v
		case colPhaseOffset:
			// A phase mode name in place of an offset starts at 0.
			if _, err := parsePhase(cell); err == nil && cell != "" {
				step.Phase = cell
				continue
			}
			v, err := parseUint32(cell)
			if err != nil {
				return step, fmt.Errorf("phase_offset_ms: %v", err)
			}
			step.PhaseOffsetMS = v
		case colPeriod:
			if cell == "" {
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return step, fmt.Errorf("period_ms: invalid number %q", cell)
			}
			step.PeriodMS = v
		}
	}
	return step, nil
}

// parseUint32 accepts an empty cell as 0 and "1_000" style separators.
func parseUint32(cell string) (uint32, error) {
	if cell == "" {
		return 0, nil
	}
	v, err := strconv.ParseUint(strings.ReplaceAll(cell, "_", ""), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid non-negative integer %q", cell)
	}
	return uint32(v), nil
}

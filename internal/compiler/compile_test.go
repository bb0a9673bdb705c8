package compiler

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/choreo/internal/color"
	"github.com/roach88/choreo/internal/engine"
	"github.com/roach88/choreo/internal/ir"
	"github.com/roach88/choreo/internal/tick"
)

func breatheScript() ir.Script {
	return ir.Script{
		Name: "breathe",
		Steps: []ir.StepSpec{
			{Action: "solid", Color: "black", DurationMS: 1000},
			{Action: "sine", Color: "white", DurationMS: 2500, PeriodMS: 2500},
			{Action: "solid", Color: "black", DurationMS: 1000},
		},
	}
}

func TestCompile(t *testing.T) {
	prog, err := Compile(breatheScript())
	require.NoError(t, err)

	assert.Equal(t, "breathe", prog.Name)
	assert.Equal(t, 3, prog.Capacity)
	assert.Equal(t, engine.OneShot, prog.Behavior)
	assert.Equal(t, []engine.Step{
		{Action: engine.Solid, Color: color.Black, Duration: 1000},
		{Action: engine.Sine, Color: color.White, Duration: 2500, Period: 2500},
		{Action: engine.Solid, Color: color.Black, Duration: 1000},
	}, prog.Steps)
	assert.Len(t, prog.Hash, 64)
}

func TestCompile_TableMatchesSteps(t *testing.T) {
	fromTable, err := Compile(ir.Script{Name: "breathe", Table: `
| action | color | duration_ms | period_ms |
| solid  | black | 1000        |           |
| sine   | white | 2500        | 2500      |
| solid  | black | 1000        |           |
`})
	require.NoError(t, err)

	fromSteps, err := Compile(breatheScript())
	require.NoError(t, err)

	assert.Equal(t, fromSteps.Steps, fromTable.Steps)
	assert.Equal(t, fromSteps.Hash, fromTable.Hash)
	assert.Empty(t, fromTable.Script.Table)
}

func TestCompile_TableAppendsAfterSteps(t *testing.T) {
	prog, err := Compile(ir.Script{
		Name:  "mixed",
		Steps: []ir.StepSpec{{Action: "solid", Color: "red", DurationMS: 10}},
		Table: "| action | color | duration_ms |\n| solid | blue | 20 |",
	})
	require.NoError(t, err)
	require.Len(t, prog.Steps, 2)
	assert.Equal(t, color.Red, prog.Steps[0].Color)
	assert.Equal(t, color.Blue, prog.Steps[1].Color)
}

func TestCompile_Resolution(t *testing.T) {
	prog, err := Compile(ir.Script{
		Name:     "all",
		Capacity: 8,
		Behavior: "loop_times",
		Loops:    3,
		Steps: []ir.StepSpec{
			{Action: "STAY", Color: "#102030", DurationMS: 1, Repeat: "times(2)"},
			{Action: "cos", Color: "Orange", DurationMS: 1, PeriodMS: 4, PhaseOffsetMS: 2},
			{Action: "seek", Color: "#fff", DurationMS: 1},
			{Action: "fade_up", Color: "red", DurationMS: 1},
			{Action: "fade_down", Color: "red", DurationMS: 1, Repeat: "Forever"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 8, prog.Capacity)
	assert.Equal(t, engine.LoopTimes(3), prog.Behavior)
	assert.Equal(t, engine.Step{Action: engine.Solid, Color: color.Color{R: 0x10, G: 0x20, B: 0x30}, Duration: 1, Repeat: engine.Times(2)}, prog.Steps[0])
	assert.Equal(t, engine.Step{Action: engine.Cosine, Color: color.Orange, Duration: 1, Period: 4, PhaseOffset: 2}, prog.Steps[1])
	assert.Equal(t, color.White, prog.Steps[2].Color)
	assert.Equal(t, engine.FadeUp, prog.Steps[3].Action)
	assert.Equal(t, engine.Forever, prog.Steps[4].Repeat)
}

func TestCompile_ValidationErrors(t *testing.T) {
	_, err := Compile(ir.Script{
		Name:  "bad",
		Steps: []ir.StepSpec{{Action: "strobe", Color: "mauve", DurationMS: 10}},
	})
	require.Error(t, err)

	var verrs ValidationErrors
	require.True(t, errors.As(err, &verrs))
	require.Len(t, verrs, 2)
	assert.Equal(t, ErrUnknownAction, verrs[0].Code)
	assert.Equal(t, ErrInvalidColor, verrs[1].Code)
	assert.Contains(t, err.Error(), "[E201] steps[0].action")
}

func TestProgram_Load(t *testing.T) {
	prog, err := Compile(breatheScript())
	require.NoError(t, err)

	src := tick.NewManual(1000)
	seq := prog.NewSequence(src)
	require.NoError(t, prog.Load(seq))
	assert.Equal(t, 3, seq.Len())

	c, ok := seq.Poll()
	assert.True(t, ok)
	assert.Equal(t, color.Black, c)

	src.AdvanceMillis(1000)
	seq.Poll()
	src.AdvanceMillis(1250)
	c, _ = seq.Poll()
	assert.Equal(t, color.White, c)
}

func TestProgram_LoadTooSmall(t *testing.T) {
	prog, err := Compile(breatheScript())
	require.NoError(t, err)

	seq := engine.New(2, tick.NewManual(1000))
	err = prog.Load(seq)
	assert.ErrorIs(t, err, engine.ErrCapacityExceeded)
}

func TestParseRepeat(t *testing.T) {
	tests := []struct {
		in      string
		want    engine.Repeat
		wantErr bool
	}{
		{"", engine.Once, false},
		{"once", engine.Once, false},
		{" FOREVER ", engine.Forever, false},
		{"times(1)", engine.Times(1), false},
		{"times( 12 )", engine.Times(12), false},
		{"times(0)", engine.Repeat{}, true},
		{"times(x)", engine.Repeat{}, true},
		{"times(3", engine.Repeat{}, true},
		{"twice", engine.Repeat{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseRepeat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCompile_PhaseModes(t *testing.T) {
	prog, err := Compile(ir.Script{
		Name: "phases",
		Steps: []ir.StepSpec{
			{Action: "sine", Color: "white", DurationMS: 250, PeriodMS: 1000, PhaseOffsetMS: 100},
			{Action: "sine", Color: "white", DurationMS: 250, PeriodMS: 1000, Phase: "auto"},
		},
		Table: "| action | color | duration_ms | period_ms | phase |\n| cos | white | 250 | 1000 | auto_on_start |",
	})
	require.NoError(t, err)
	require.Len(t, prog.Steps, 3)
	assert.Equal(t, engine.PhaseFixed, prog.Steps[0].Phase)
	assert.Equal(t, uint32(100), prog.Steps[0].PhaseOffset)
	assert.Equal(t, engine.PhaseAuto, prog.Steps[1].Phase)
	assert.Equal(t, engine.PhaseAutoOnStart, prog.Steps[2].Phase)

	src := tick.NewManual(1000)
	seq := prog.NewSequence(src)
	require.NoError(t, prog.Load(seq))
	seq.Poll()
	src.AdvanceMillis(250)
	seq.Poll()
	assert.Equal(t, uint32(350), seq.Phase())
}

func TestParsePhase(t *testing.T) {
	tests := []struct {
		in      string
		want    engine.Phase
		wantErr bool
	}{
		{"", engine.PhaseFixed, false},
		{"fixed", engine.PhaseFixed, false},
		{"Auto", engine.PhaseAuto, false},
		{"AutoIncr", engine.PhaseAuto, false},
		{" auto_on_start ", engine.PhaseAutoOnStart, false},
		{"AutoIncrOnStart", engine.PhaseAutoOnStart, false},
		{"drift", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parsePhase(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseBehavior(t *testing.T) {
	tests := []struct {
		name    string
		loops   uint32
		want    engine.Behavior
		wantErr bool
	}{
		{"", 0, engine.OneShot, false},
		{"one_shot", 0, engine.OneShot, false},
		{"loop_forever", 0, engine.LoopForever, false},
		{"loop_times", 4, engine.LoopTimes(4), false},
		{"loop_times", 0, engine.Behavior{}, true},
		{"one_shot", 2, engine.Behavior{}, true},
		{"bounce", 0, engine.Behavior{}, true},
	}
	for _, tt := range tests {
		got, err := parseBehavior(tt.name, tt.loops)
		if tt.wantErr {
			assert.Error(t, err, "%q loops=%d", tt.name, tt.loops)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

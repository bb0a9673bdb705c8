package engine

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/choreo/internal/color"
	"github.com/roach88/choreo/internal/tick"
)

// millis is one tick per millisecond, so test tick values read as ms.
const millis = 1000

func newTestSequence(t *testing.T, capacity int) (*Sequence, *tick.Manual) {
	t.Helper()
	src := tick.NewManual(millis)
	return New(capacity, src), src
}

// threeStep is the fade-in/fade-out demo: dark, one white breath, dark.
func threeStep() []Step {
	return []Step{
		{Action: Solid, Color: color.Black, Duration: 1000},
		{Action: Sine, Color: color.White, Duration: 2500, Period: 2500},
		{Action: Solid, Color: color.Black, Duration: 1000},
	}
}

func TestSequence_EmptyIsComplete(t *testing.T) {
	for _, b := range []Behavior{OneShot, LoopForever, LoopTimes(3)} {
		t.Run(b.String(), func(t *testing.T) {
			seq, _ := newTestSequence(t, 4)
			require.NoError(t, seq.Set(nil, b))

			c, ok := seq.Poll()
			assert.False(t, ok)
			assert.Equal(t, color.Black, c)
			assert.Equal(t, Idle, seq.State())
		})
	}
}

func TestSequence_NeverSetIsComplete(t *testing.T) {
	seq, _ := newTestSequence(t, 4)

	_, ok := seq.Poll()
	assert.False(t, ok)
	assert.Equal(t, 0, seq.Len())
	assert.Equal(t, 4, seq.Cap())
}

func TestSequence_SolidOneShot(t *testing.T) {
	seq, src := newTestSequence(t, 4)
	require.NoError(t, seq.Set([]Step{{Action: Solid, Color: color.Red, Duration: 1000}}, OneShot))

	for ms := 0; ms < 1000; ms += 10 {
		c, ok := seq.Poll()
		require.True(t, ok, "complete too early at %dms", ms)
		require.Equal(t, color.Red, c, "at %dms", ms)
		src.AdvanceMillis(10)
	}

	_, ok := seq.Poll()
	assert.False(t, ok, "should be complete at 1000ms")
	assert.Equal(t, Finished, seq.State())

	for i := 0; i < 10; i++ {
		src.AdvanceMillis(10)
		c, ok := seq.Poll()
		assert.False(t, ok)
		assert.Equal(t, color.Black, c)
	}
}

func TestSequence_ThreeStepFade(t *testing.T) {
	seq, src := newTestSequence(t, 8)
	require.NoError(t, seq.Set(threeStep(), OneShot))

	var prev color.Color
	for ms := 0; ms < 4500; ms += 10 {
		c, ok := seq.Poll()
		require.True(t, ok, "complete too early at %dms", ms)

		switch {
		case ms < 1000:
			assert.Equal(t, color.Black, c, "at %dms", ms)
			assert.Equal(t, 0, seq.Index())
		case ms < 2250:
			assert.GreaterOrEqual(t, c.R, prev.R, "not rising at %dms", ms)
			assert.Equal(t, 1, seq.Index())
		case ms == 2250:
			assert.Equal(t, color.White, c)
		case ms < 3500:
			assert.LessOrEqual(t, c.R, prev.R, "not falling at %dms", ms)
		default:
			assert.Equal(t, color.Black, c, "at %dms", ms)
			assert.Equal(t, 2, seq.Index())
		}
		assert.Equal(t, c.R, c.G)
		assert.Equal(t, c.R, c.B)

		prev = c
		src.AdvanceMillis(10)
	}

	_, ok := seq.Poll()
	assert.False(t, ok, "should be complete at 4500ms")

	src.AdvanceMillis(60_000)
	_, ok = seq.Poll()
	assert.False(t, ok)
}

func TestSequence_SetRestarts(t *testing.T) {
	seq, src := newTestSequence(t, 8)
	require.NoError(t, seq.Set(threeStep(), OneShot))

	var first []color.Color
	for ms := 0; ms < 2000; ms += 50 {
		c, _ := seq.Poll()
		first = append(first, c)
		src.AdvanceMillis(50)
	}

	// Leave the sequence mid-step, then reload the same configuration.
	src.AdvanceMillis(777)
	seq.Poll()
	require.NoError(t, seq.Set(threeStep(), OneShot))
	assert.Equal(t, 0, seq.Index())
	assert.Equal(t, uint32(0), seq.Repeats())

	var second []color.Color
	for ms := 0; ms < 2000; ms += 50 {
		c, _ := seq.Poll()
		second = append(second, c)
		src.AdvanceMillis(50)
	}
	assert.Equal(t, first, second)
}

func TestSequence_SetAfterFinished(t *testing.T) {
	seq, src := newTestSequence(t, 2)
	steps := []Step{{Action: Solid, Color: color.Blue, Duration: 100}}
	require.NoError(t, seq.Set(steps, OneShot))

	src.AdvanceMillis(100)
	_, ok := seq.Poll()
	require.False(t, ok)

	require.NoError(t, seq.Set(steps, OneShot))
	c, ok := seq.Poll()
	assert.True(t, ok)
	assert.Equal(t, color.Blue, c)
	assert.Equal(t, Active, seq.State())
}

func TestSequence_Wraparound(t *testing.T) {
	src := tick.NewManualAt(tick.Tick(math.MaxUint32-1500), millis)
	seq := New(8, src)
	require.NoError(t, seq.Set(threeStep(), OneShot))

	ref, refSrc := newTestSequence(t, 8)
	require.NoError(t, ref.Set(threeStep(), OneShot))

	for ms := 0; ms <= 4600; ms += 10 {
		got, gotOK := seq.Poll()
		want, wantOK := ref.Poll()
		require.Equal(t, wantOK, gotOK, "at %dms", ms)
		require.Equal(t, want, got, "at %dms", ms)
		require.Equal(t, ref.Index(), seq.Index(), "at %dms", ms)

		src.AdvanceMillis(10)
		refSrc.AdvanceMillis(10)
	}
}

func TestSequence_CapacityExceeded(t *testing.T) {
	seq, _ := newTestSequence(t, 2)
	require.NoError(t, seq.Set([]Step{{Color: color.Red, Duration: 100}}, LoopForever))

	err := seq.Set(threeStep(), OneShot)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCapacityExceeded))

	var capErr *CapacityError
	require.ErrorAs(t, err, &capErr)
	assert.Equal(t, 2, capErr.Capacity)
	assert.Equal(t, 3, capErr.Requested)
	assert.Contains(t, err.Error(), "3 steps requested, capacity is 2")

	// Previous configuration is untouched.
	assert.Equal(t, 1, seq.Len())
	assert.Equal(t, LoopForever, seq.Behavior())
	c, ok := seq.Poll()
	assert.True(t, ok)
	assert.Equal(t, color.Red, c)
}

func TestSequence_FillsToCapacity(t *testing.T) {
	seq, _ := newTestSequence(t, 3)
	require.NoError(t, seq.Set(threeStep(), OneShot))
	assert.Equal(t, 3, seq.Len())
	assert.Equal(t, threeStep(), seq.Steps())
}

func TestSequence_SetCopiesSteps(t *testing.T) {
	seq, _ := newTestSequence(t, 3)
	steps := []Step{{Action: Solid, Color: color.Red, Duration: 100}}
	require.NoError(t, seq.Set(steps, OneShot))

	steps[0].Color = color.Green
	c, _ := seq.Poll()
	assert.Equal(t, color.Red, c)
}

func TestSequence_ZeroDurationStep(t *testing.T) {
	seq, src := newTestSequence(t, 4)
	require.NoError(t, seq.Set([]Step{
		{Action: Solid, Color: color.Red},
		{Action: Solid, Color: color.Green, Duration: 100},
	}, OneShot))

	c, ok := seq.Poll()
	require.True(t, ok)
	assert.Equal(t, color.Red, c, "zero-duration step is shown for one poll")

	c, ok = seq.Poll()
	require.True(t, ok)
	assert.Equal(t, color.Green, c)

	src.AdvanceMillis(100)
	_, ok = seq.Poll()
	assert.False(t, ok)
}

func TestSequence_ZeroDurationWaveformShowsTarget(t *testing.T) {
	seq, _ := newTestSequence(t, 4)
	require.NoError(t, seq.Set([]Step{
		{Action: Sine, Color: color.White, Period: 1000},
		{Action: Solid, Color: color.Red, Duration: 100},
	}, OneShot))

	c, ok := seq.Poll()
	require.True(t, ok)
	assert.Equal(t, color.White, c, "a zero-duration sine shows its target, not the base")
	assert.Equal(t, 0, seq.Index())

	c, ok = seq.Poll()
	require.True(t, ok)
	assert.Equal(t, color.Red, c)
	assert.Equal(t, 1, seq.Index())
}

func TestSequence_PhaseAutoContinuesWaveform(t *testing.T) {
	steps := []Step{
		{Action: Sine, Color: color.White, Duration: 250, Period: 500},
		{Action: Sine, Color: color.White, Duration: 250, Period: 500, Phase: PhaseAuto},
	}

	seq, src := newTestSequence(t, 4)
	require.NoError(t, seq.Set(steps, OneShot))
	c, _ := seq.Poll()
	assert.Equal(t, color.Black, c)

	src.AdvanceMillis(250)
	c, ok := seq.Poll()
	require.True(t, ok)
	assert.Equal(t, 1, seq.Index())
	assert.Equal(t, uint32(250), seq.Phase())
	// Half a period in: the wave is at its peak.
	assert.Equal(t, color.White, c)

	// Without PhaseAuto the second step restarts the wave at the base.
	steps[1].Phase = PhaseFixed
	require.NoError(t, seq.Set(steps, OneShot))
	seq.Poll()
	src.AdvanceMillis(250)
	c, _ = seq.Poll()
	assert.Equal(t, uint32(0), seq.Phase())
	assert.Equal(t, color.Black, c)
}

func TestSequence_PhaseAutoOnStartLatches(t *testing.T) {
	seq, src := newTestSequence(t, 4)
	require.NoError(t, seq.Set([]Step{
		{Action: Solid, Color: color.Red, Duration: 100, Phase: PhaseAuto},
		{Action: Sine, Color: color.White, Duration: 100, Period: 1000, Phase: PhaseAutoOnStart},
	}, LoopForever))

	wantPhases := []struct {
		index int
		phase uint32
	}{
		{0, 0},
		{1, 100}, // first entry latches 0 + 100
		{0, 200}, // auto: 100 + 100
		{1, 100}, // latched, not 300
		{0, 200},
	}
	for i, want := range wantPhases {
		_, ok := seq.Poll()
		require.True(t, ok)
		assert.Equal(t, want.index, seq.Index(), "poll %d", i)
		assert.Equal(t, want.phase, seq.Phase(), "poll %d", i)
		src.AdvanceMillis(100)
	}

	// Set forgets latched phases.
	require.NoError(t, seq.Set(seq.Steps(), LoopForever))
	assert.Equal(t, uint32(0), seq.Phase())
}

func TestSequence_PhaseAutoAdvancesOnRepeat(t *testing.T) {
	seq, src := newTestSequence(t, 4)
	require.NoError(t, seq.Set([]Step{
		{Action: Sine, Color: color.White, Duration: 100, Period: 1000, PhaseOffset: 50, Repeat: Times(3), Phase: PhaseAuto},
	}, OneShot))

	seq.Poll()
	assert.Equal(t, uint32(50), seq.Phase())

	src.AdvanceMillis(250)
	_, ok := seq.Poll()
	require.True(t, ok)
	assert.Equal(t, uint32(2), seq.Repeats())
	assert.Equal(t, uint32(250), seq.Phase())
}

func TestSequence_OneTransitionPerPoll(t *testing.T) {
	seq, src := newTestSequence(t, 4)
	require.NoError(t, seq.Set([]Step{
		{Color: color.Red, Duration: 10},
		{Color: color.Green, Duration: 10},
		{Color: color.Blue, Duration: 10},
	}, OneShot))

	seq.Poll()
	src.AdvanceMillis(1000)

	// A long gap still only moves one step; the next step starts now.
	c, ok := seq.Poll()
	require.True(t, ok)
	assert.Equal(t, color.Green, c)
	assert.Equal(t, 1, seq.Index())
}

func TestSequence_RepeatTimes(t *testing.T) {
	seq, src := newTestSequence(t, 4)
	require.NoError(t, seq.Set([]Step{
		{Action: Seek, Color: color.White, Duration: 100, Repeat: Times(3)},
		{Action: Solid, Color: color.Red, Duration: 100},
	}, OneShot))

	for play := uint32(0); play < 3; play++ {
		c, ok := seq.Poll()
		require.True(t, ok)
		assert.Equal(t, color.Black, c, "play %d starts at base", play)
		assert.Equal(t, play, seq.Repeats())
		assert.Equal(t, 0, seq.Index())

		src.AdvanceMillis(50)
		c, _ = seq.Poll()
		assert.Equal(t, color.Color{R: 128, G: 128, B: 128}, c)
		src.AdvanceMillis(50)
	}

	c, ok := seq.Poll()
	require.True(t, ok)
	assert.Equal(t, color.Red, c)
	assert.Equal(t, 1, seq.Index())
}

func TestSequence_RepeatForeverHolds(t *testing.T) {
	seq, src := newTestSequence(t, 4)
	require.NoError(t, seq.Set([]Step{
		{Action: Sine, Color: color.White, Duration: 1000, Period: 1000, Repeat: Forever},
		{Action: Solid, Color: color.Red, Duration: 100},
	}, OneShot))

	for i := 0; i < 50; i++ {
		c, ok := seq.Poll()
		require.True(t, ok)
		require.NotEqual(t, color.Red, c)
		src.AdvanceMillis(250)
	}
	assert.Equal(t, 0, seq.Index(), "steps after a forever step are unreachable")
	assert.Equal(t, Active, seq.State())
}

func TestSequence_ZeroDurationForeverHolds(t *testing.T) {
	seq, src := newTestSequence(t, 4)
	require.NoError(t, seq.Set([]Step{{Color: color.Cyan, Repeat: Forever}}, OneShot))

	for i := 0; i < 5; i++ {
		c, ok := seq.Poll()
		require.True(t, ok)
		assert.Equal(t, color.Cyan, c)
		src.AdvanceMillis(1000)
	}
}

func TestSequence_LoopForever(t *testing.T) {
	seq, src := newTestSequence(t, 4)
	require.NoError(t, seq.Set([]Step{
		{Color: color.Red, Duration: 100},
		{Color: color.Blue, Duration: 100},
	}, LoopForever))

	want := []color.Color{color.Red, color.Blue}
	for i := 0; i < 20; i++ {
		c, ok := seq.Poll()
		require.True(t, ok)
		assert.Equal(t, want[i%2], c, "poll %d", i)
		src.AdvanceMillis(100)
	}
}

func TestSequence_LoopCarriesBase(t *testing.T) {
	seq, src := newTestSequence(t, 4)
	require.NoError(t, seq.Set([]Step{
		{Action: Seek, Color: color.Red, Duration: 100},
		{Action: Solid, Color: color.Blue, Duration: 100},
	}, LoopForever))

	c, _ := seq.Poll()
	assert.Equal(t, color.Black, c, "first pass seeks from black")

	src.AdvanceMillis(100)
	seq.Poll()
	src.AdvanceMillis(100)

	c, _ = seq.Poll()
	assert.Equal(t, color.Blue, c, "second pass seeks from the last color shown")
}

func TestSequence_LoopTimes(t *testing.T) {
	seq, src := newTestSequence(t, 4)
	require.NoError(t, seq.Set([]Step{
		{Color: color.Red, Duration: 100},
		{Color: color.Blue, Duration: 100},
	}, LoopTimes(2)))

	for i := 0; i < 4; i++ {
		_, ok := seq.Poll()
		require.True(t, ok, "poll %d", i)
		src.AdvanceMillis(100)
	}
	_, ok := seq.Poll()
	assert.False(t, ok)
	assert.Equal(t, Finished, seq.State())
}

func TestSequence_Clear(t *testing.T) {
	seq, _ := newTestSequence(t, 4)
	require.NoError(t, seq.Set(threeStep(), LoopForever))

	seq.Clear()
	assert.Equal(t, 0, seq.Len())
	assert.Equal(t, Idle, seq.State())
	_, ok := seq.Poll()
	assert.False(t, ok)
}

func TestSequence_HighResolutionTicks(t *testing.T) {
	src := tick.NewManual(tick.DefaultTicksPerSecond)
	seq := New(2, src)
	require.NoError(t, seq.Set([]Step{{Color: color.Red, Duration: 1000}}, OneShot))

	src.AdvanceMillis(999)
	_, ok := seq.Poll()
	assert.True(t, ok)

	src.Advance(999)
	_, ok = seq.Poll()
	assert.True(t, ok)

	src.Advance(1)
	_, ok = seq.Poll()
	assert.False(t, ok)
}

func TestNewBank(t *testing.T) {
	src := tick.NewManual(millis)
	bank := NewBank(3, 4, src)
	require.Len(t, bank, 3)

	require.NoError(t, bank[0].Set([]Step{{Color: color.Red, Duration: 100}}, OneShot))
	require.NoError(t, bank[2].Set([]Step{{Color: color.Blue, Duration: 300}}, OneShot))

	src.AdvanceMillis(200)
	_, ok0 := bank[0].Poll()
	_, ok1 := bank[1].Poll()
	c2, ok2 := bank[2].Poll()
	assert.False(t, ok0)
	assert.False(t, ok1)
	assert.True(t, ok2)
	assert.Equal(t, color.Blue, c2)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "active", Active.String())
	assert.Equal(t, "finished", Finished.String())
	assert.Equal(t, "unknown", State(9).String())
}

func TestBehavior(t *testing.T) {
	assert.Equal(t, OneShot, Behavior{})
	assert.Equal(t, uint32(1), OneShot.Loops())
	assert.Equal(t, uint32(0), LoopForever.Loops())
	assert.Equal(t, uint32(4), LoopTimes(4).Loops())
	assert.Equal(t, uint32(1), LoopTimes(0).Loops())
}

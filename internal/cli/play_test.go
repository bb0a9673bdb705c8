package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/choreo/internal/tick"
)

// steppingTicks advances a manual source by a fixed amount on every read,
// so playback makes progress without depending on the wall clock.
type steppingTicks struct {
	*tick.Manual
	step uint32
}

func (s *steppingTicks) Now() tick.Tick {
	now := s.Manual.Now()
	s.AdvanceMillis(s.step)
	return now
}

func playFixture(t *testing.T, format string) string {
	t.Helper()
	path := writeFile(t, t.TempDir(), "flash.yaml", flashScript)

	opts := &PlayOptions{
		RootOptions: &RootOptions{Format: format},
		RenderFlags: RenderFlags{CadenceMS: 1, TicksPerSecond: 1000},
		Source:      &steppingTicks{Manual: tick.NewManual(1000), step: 5},
	}

	buf := &bytes.Buffer{}
	cmd := &cobra.Command{}
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, runPlay(ctx, opts, path, cmd))
	return buf.String()
}

func TestPlayText(t *testing.T) {
	out := playFixture(t, "text")

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.NotEmpty(t, lines)
	assert.Contains(t, lines[0], "step 0 #ff0000")
	assert.Contains(t, out, "step 1 #0000ff")
	assert.True(t, strings.HasSuffix(lines[len(lines)-1], "done"))
}

func TestPlayJSONLines(t *testing.T) {
	out := playFixture(t, "json")

	dec := json.NewDecoder(strings.NewReader(out))
	var last map[string]any
	n := 0
	for dec.More() {
		var frame map[string]any
		require.NoError(t, dec.Decode(&frame))
		if n == 0 {
			assert.Equal(t, "#ff0000", frame["color"])
		}
		last = frame
		n++
	}
	require.Greater(t, n, 1)
	assert.Equal(t, true, last["done"])
	assert.Equal(t, float64(-1), last["index"])
}

func TestPlayCanceled(t *testing.T) {
	path := writeFile(t, t.TempDir(), "glow.yaml", `name: glow
behavior: loop_forever
steps:
  - {action: sine, color: white, duration_ms: 1000, period_ms: 1000}
`)
	opts := &PlayOptions{
		RootOptions: &RootOptions{Format: "text"},
		RenderFlags: RenderFlags{CadenceMS: 1, TicksPerSecond: 1000},
	}

	cmd := &cobra.Command{}
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	time.AfterFunc(30*time.Millisecond, cancel)

	// Interrupted playback is a normal exit.
	err := runPlay(ctx, opts, path, cmd)
	assert.NoError(t, err)
}

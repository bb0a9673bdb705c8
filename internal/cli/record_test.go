package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/choreo/internal/store"
	"github.com/roach88/choreo/internal/testutil"
)

// recordFixture records path into db under runID.
func recordFixture(t *testing.T, db, path, runID string, format string) string {
	t.Helper()
	opts := &RecordOptions{
		RootOptions:   &RootOptions{Format: format},
		RenderFlags:   RenderFlags{CadenceMS: 10, TicksPerSecond: 1000},
		DatabaseFlags: DatabaseFlags{Database: db},
		RunIDs:        testutil.NewFixedRunID(runID),
	}

	buf := &bytes.Buffer{}
	cmd := &cobra.Command{}
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})

	require.NoError(t, runRecord(opts, path, cmd))
	return buf.String()
}

func TestRecordText(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "choreo.db")
	path := writeFile(t, dir, "flash.yaml", flashScript)

	out := recordFixture(t, db, path, "run-1", "text")
	assert.Contains(t, out, "✓ Recorded flash: 5 frame(s)")
	assert.Contains(t, out, "Run: run-1")
	assert.Contains(t, out, "Trace hash: ")

	st, err := store.Open(db)
	require.NoError(t, err)
	defer st.Close()

	run, err := st.ReadRun(t.Context(), "run-1")
	require.NoError(t, err)
	assert.Equal(t, "flash", run.ScriptName)
	assert.Equal(t, uint32(50), run.DurationMS)
	assert.True(t, run.Completed)

	frames, err := st.ReadFrames(t.Context(), "run-1")
	require.NoError(t, err)
	assert.Len(t, frames, 5)
}

func TestRecordJSON(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "choreo.db")
	path := writeFile(t, dir, "flash.yaml", flashScript)

	out := recordFixture(t, db, path, "run-json", "json")

	var resp struct {
		Status string    `json:"status"`
		RunID  string    `json:"run_id"`
		Data   store.Run `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "run-json", resp.RunID)
	assert.Equal(t, 5, resp.Data.FrameCount)
	assert.Equal(t, uint32(10), resp.Data.CadenceMS)
}

func TestRecordDuplicateRunID(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "choreo.db")
	path := writeFile(t, dir, "flash.yaml", flashScript)

	recordFixture(t, db, path, "same", "text")

	opts := &RecordOptions{
		RootOptions:   &RootOptions{Format: "text"},
		RenderFlags:   RenderFlags{CadenceMS: 10, TicksPerSecond: 1000},
		DatabaseFlags: DatabaseFlags{Database: db},
		RunIDs:        testutil.NewFixedRunID("same"),
	}
	cmd := &cobra.Command{}
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	err := runRecord(opts, path, cmd)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.ErrorIs(t, err, store.ErrRunExists)
}

func TestRecordRequiresDB(t *testing.T) {
	path := writeFile(t, t.TempDir(), "flash.yaml", flashScript)

	_, err := execute(NewRecordCommand(&RootOptions{Format: "text"}), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db")
}

func TestRecordCommandDefaultRunID(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "choreo.db")
	path := writeFile(t, dir, "flash.yaml", flashScript)

	out, err := execute(NewRecordCommand(&RootOptions{Format: "json"}), "--db", db, path)
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Len(t, resp.RunID, 36)
}

package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

// flashScript renders to red at 0 and 10ms, blue at 20 and 30ms and
// completes at 40ms with the default 10ms cadence.
const flashScript = `name: flash
description: red then blue
steps:
  - {action: solid, color: red, duration_ms: 20}
  - {action: solid, color: blue, duration_ms: 20}
`

const breatheScript = `name: breathe
steps:
  - {action: solid, color: black, duration_ms: 1000}
  - {action: sine, color: white, duration_ms: 2500, period_ms: 2500}
  - {action: solid, color: black, duration_ms: 1000}
`

const invalidScript = `name: broken
steps:
  - {action: strobe, color: red, duration_ms: 20}
  - {action: solid, color: notacolor, duration_ms: 20}
`

// writeFile writes content to dir/name and returns the path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// execute runs cmd with args and returns its stdout.
func execute(cmd *cobra.Command, args ...string) (string, error) {
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

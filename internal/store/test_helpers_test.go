package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/choreo/internal/compiler"
	"github.com/roach88/choreo/internal/ir"
	"github.com/roach88/choreo/internal/trace"
)

// createTestStore creates a new store in a temporary directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// compileTestProgram compiles a short two-step program.
func compileTestProgram(t *testing.T, name, second string) *compiler.Program {
	t.Helper()
	p, err := compiler.Compile(ir.Script{
		Name: name,
		Steps: []ir.StepSpec{
			{Action: "seek", Color: "white", DurationMS: 100},
			{Action: "solid", Color: second, DurationMS: 100},
		},
	})
	if err != nil {
		t.Fatalf("Compile() failed: %v", err)
	}
	return p
}

// recordTestRun renders p and writes it under id.
func recordTestRun(t *testing.T, s *Store, id string, p *compiler.Program) (Run, trace.Frames) {
	t.Helper()
	opts := trace.Options{CadenceMS: 25, DurationMS: 300, TicksPerSecond: 1000}
	frames, err := trace.Render(p, opts)
	if err != nil {
		t.Fatalf("Render() failed: %v", err)
	}
	run, err := NewRun(id, p, opts, frames)
	if err != nil {
		t.Fatalf("NewRun() failed: %v", err)
	}
	if err := s.WriteRun(t.Context(), run, frames); err != nil {
		t.Fatalf("WriteRun() failed: %v", err)
	}
	return run, frames
}

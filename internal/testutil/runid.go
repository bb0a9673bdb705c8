// Package testutil holds deterministic helpers for tests.
package testutil

// FixedRunID generates the same recording run ID every time.
//
// This enables deterministic recordings and golden snapshot comparison.
// The same scenario with the same FixedRunID produces byte-identical
// recordings.
//
// Thread-safety: FixedRunID is stateless and safe for concurrent use.
type FixedRunID struct {
	id string
}

// NewFixedRunID creates a new fixed run ID generator.
//
// If id is empty, Generate() returns "test-run-default".
func NewFixedRunID(id string) *FixedRunID {
	if id == "" {
		id = "test-run-default"
	}
	return &FixedRunID{id: id}
}

// Generate returns the fixed run ID.
//
// Implements store.RunIDGenerator.
func (g *FixedRunID) Generate() string {
	return g.id
}

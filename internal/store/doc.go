// Package store provides SQLite-backed storage for rendered traces.
//
// A recording is a Run (script hash, render options, trace hash) plus its
// Frames. Scripts are never stored; a run only remembers which script it
// was rendered from by name and content hash, so a later replay can tell
// whether the script changed.
//
// # Critical Patterns
//
// Logical ordering:
//   - Runs are ordered by seq INTEGER (insertion order), NEVER timestamps
//   - Frames are ordered by (run_id, seq)
//
// Deterministic query results:
//   - All list queries include ORDER BY seq ASC, id ASC COLLATE BINARY
//
// Content addressing:
//   - script_hash and trace_hash come from internal/ir/hash.go (canonical
//     JSON and SHA-256 with domain separation)
//
// # Database Configuration
//
// Connection settings travel in the go-sqlite3 DSN so each pooled
// connection gets them: WAL journaling, synchronous=NORMAL, foreign keys
// on (frames cascade with their run) and a busy timeout that defaults to
// DefaultBusyTimeout. The schema is schema.sql plus the migrations list,
// tracked in PRAGMA user_version.
package store

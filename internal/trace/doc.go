// Package trace renders compiled programs into frame traces.
//
// Render drives a Sequence with a manual tick source, polling at a fixed
// cadence, so the same program and options always produce the same
// frames. Play polls against a real tick source for live output.
//
// Traces are compared by canonical JSON and hashed with ir.TraceHash;
// recordings in the store and golden files in the harness both rely on
// this encoding.
package trace

// Package engine implements the choreo color sequencing engine.
//
// A Sequence holds a fixed-capacity list of Steps and, when polled,
// returns the color that should be on display at the current instant.
//
// ARCHITECTURE:
//
// Polling State Machine:
// The engine never runs on its own. The owner calls Sequence.Poll at
// whatever cadence suits its control loop; each call reads the tick
// source once, advances at most one step, and returns a color. This
// ensures:
//   - Bounded, constant work per call (no loops over elapsed time)
//   - No allocation, blocking or I/O on the hot path
//   - Identical output for identical tick readings
//
// States:
//   - Idle: no steps loaded
//   - Active(i): step i is running
//   - Finished: a OneShot (or exhausted LoopTimes) sequence ran out of steps
//
// Step Evaluation:
// Evaluate is a pure function of a Step, the step-local elapsed time in
// milliseconds and the base color (the color on display right before the
// step began). It has no hidden state, which makes it testable without a
// Sequence.
//
// Time:
// All time arithmetic goes through tick.Since, which wraps at 2^32. A
// sequence running across a counter overflow behaves exactly as one that
// does not.
//
// Forever Steps:
// A step with Repeat Forever never exhausts. If it is not the last step,
// the steps after it are unreachable and the sequence freezes on it. The
// engine accepts such lists; the script compiler reports them.
package engine

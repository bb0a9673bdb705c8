// Package ir provides the canonical intermediate representation for
// choreo scripts and rendered traces.
//
// This package contains document types and the canonical encoding used
// for content hashing. All other internal packages may import ir; ir
// imports nothing internal.
//
// Key design constraints:
//   - All JSON and YAML tags use snake_case
//   - Canonical JSON sorts keys by UTF-16 code units and NFC-normalizes strings
//   - Floats are allowed (waveform periods) but NaN and Inf are rejected
//   - Hashes are SHA-256 with a versioned domain prefix
package ir

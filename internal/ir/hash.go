package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// The version suffix enables future algorithm migration.
const (
	DomainScript = "choreo/script/v1"
	DomainTrace  = "choreo/trace/v1"
)

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
// The null byte separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// ScriptHash computes the content hash of a script.
//
// Two scripts with the same hash play back identically. Callers that
// accept table shorthand should hash the expanded form so that a table
// and the equivalent step list agree.
func ScriptHash(s Script) (string, error) {
	canonical, err := MarshalCanonical(s.ToIR())
	if err != nil {
		return "", fmt.Errorf("ScriptHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainScript, canonical), nil
}

// TraceHash computes the content hash of a rendered trace. frames is
// the canonical array form produced by the trace package.
func TraceHash(frames IRArray) (string, error) {
	canonical, err := MarshalCanonical(frames)
	if err != nil {
		return "", fmt.Errorf("TraceHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainTrace, canonical), nil
}

// MustScriptHash is like ScriptHash but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustScriptHash(s Script) string {
	h, err := ScriptHash(s)
	if err != nil {
		panic(err)
	}
	return h
}

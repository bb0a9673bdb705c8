package ir

// Version constants for script documents and the renderer.
const (
	// IRVersion is the script/trace schema version.
	IRVersion = "1"

	// EngineVersion is the choreo engine version.
	EngineVersion = "0.1.0"
)

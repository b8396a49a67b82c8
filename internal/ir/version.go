package ir

// Version constants recorded with every run.
const (
	// SchemaVersion is the run record schema version.
	SchemaVersion = "1"

	// EngineVersion is the gkquad engine version.
	EngineVersion = "0.1.0"
)

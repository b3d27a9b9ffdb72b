package model

// Version constants for the persisted document.
const (
	// SchemaVersion tags every match document written by this module.
	SchemaVersion = "2.0"

	// EngineVersion is the rules engine version.
	EngineVersion = "0.1.0"
)

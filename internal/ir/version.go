package ir

// Version constants for plan encoding and the catalog schema.
const (
	// PlanVersion is the plan encoding version. Bumping it changes every PlanID.
	PlanVersion = "1"

	// ToolVersion is the precompute tool version reported by --version.
	ToolVersion = "0.1.0"
)

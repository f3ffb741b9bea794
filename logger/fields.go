package logger

// Standard field names for consistent structured logging across codecgen.
// Use these constants instead of raw strings to ensure consistency.
const (
	// Identity and context
	FieldRunID     = "run_id"
	FieldComponent = "component"

	// Generation subjects
	FieldModule  = "module"
	FieldType    = "type"
	FieldVariant = "variant"
	FieldPackage = "package"

	// Files and paths
	FieldFile   = "file"
	FieldOutput = "output"
	FieldRoot   = "root"

	// Timing
	FieldDurationMS = "duration_ms"

	// Errors
	FieldError = "error"

	// Counts
	FieldCount     = "count"
	FieldGenerated = "generated"
	FieldSkipped   = "skipped"
	FieldFailed    = "failed"
)

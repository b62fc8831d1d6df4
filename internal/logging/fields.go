package logging

// Field name constants for structured logging.
const (
	// Common fields.
	FieldError  = "error"
	FieldPath   = "path"
	FieldInput  = "input"
	FieldOutput = "output"
	FieldFormat = "format"

	// Document fields.
	FieldVersion  = "version"
	FieldSections = "sections"
	FieldSection  = "section"
	FieldCard     = "card"
	FieldAtom     = "atom"
	FieldOffset   = "offset"

	// Editor fields.
	FieldScope     = "scope"
	FieldRecords   = "records"
	FieldRange     = "range"
	FieldUndoDepth = "undo_depth"
	FieldDirection = "direction"

	// CLI fields.
	FieldCommand = "command"
	FieldCommit  = "commit"
	FieldBuilt   = "built"

	// Configuration fields.
	FieldConfigSource = "config_source"
	FieldFlavor       = "flavor"
)

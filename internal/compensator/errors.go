package compensator

import "errors"

// Domain errors for model construction and preset loading.
var (
	// ErrUnknownBlockType indicates a block type name that is not registered.
	ErrUnknownBlockType = errors.New("compensator: unknown block type")

	// ErrInvalidPreset indicates a preset document that is not a mapping or
	// lacks the "blocks" key.
	ErrInvalidPreset = errors.New("compensator: invalid preset")
)

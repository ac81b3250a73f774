package source

import "errors"

var (
	// ErrUnknownFormat is returned for files that are neither YAML nor Lua.
	ErrUnknownFormat = errors.New("unknown sheet format")

	// ErrInvalidDefinition is returned when a definition fails validation.
	ErrInvalidDefinition = errors.New("invalid sheet definition")
)

package config

import "errors"

var (
	// ErrValidationFailed indicates a setting holds an unusable value.
	ErrValidationFailed = errors.New("validation failed")

	// ErrNoPath is returned when watching a manager that has no file.
	ErrNoPath = errors.New("no config file")
)

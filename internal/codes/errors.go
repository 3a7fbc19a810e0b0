package codes

import "errors"

// Domain errors for the codes package.
// All three are fatal to a batch run and are raised before any
// connection attempt. Check with errors.Is().
var (
	// ErrNotFound is returned when the code file does not exist.
	ErrNotFound = errors.New("codes: file not found")

	// ErrMalformed is returned when the code file is not valid JSON or
	// its root is not an object.
	ErrMalformed = errors.New("codes: malformed file")

	// ErrNoCommands is returned when the file has no commands object,
	// or the commands object is empty.
	ErrNoCommands = errors.New("codes: no commands")
)

package runner

import "errors"

// Domain errors for the runner package.
var (
	// ErrNoConnect is returned when no ConnectFunc is configured.
	ErrNoConnect = errors.New("runner: connect function is required")

	// ErrNoPrompter is returned when no Prompter is configured.
	ErrNoPrompter = errors.New("runner: prompter is required")

	// ErrNoCommands is returned when the flattened command table is
	// empty. Detected before any connection use.
	ErrNoCommands = errors.New("runner: no commands to send")
)

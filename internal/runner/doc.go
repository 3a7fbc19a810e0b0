// Package runner drives a flattened command table through a live
// transport connection for validation against real hardware.
//
// # Lifecycle
//
//	Idle → Connecting → Connected → Running → (Completed | Aborted)
//
// Connection establishment is the only step that can abort a run:
// it happens through an injected ConnectFunc after the command table
// is already loaded and verified non-empty, so a run that cannot do
// useful work never opens a connection, and a failed connection
// performs zero publishes. The teardown returned by ConnectFunc runs
// exactly once on every exit path.
//
// While Running, each command is published in table order. A failed
// publish is logged as a warning and recorded; the run continues.
// Between commands the operator is consulted through the Prompter
// capability: anything but the quit token continues, and quitting is
// a graceful early stop, not an error. The Prompter is an interface
// so the loop is testable without a terminal (see ScriptPrompter).
//
// Run outcomes flow to an optional Recorder (see internal/history);
// recorder failures are logged and never affect the run.
package runner

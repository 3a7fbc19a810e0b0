// Package history persists batch run outcomes in SQLite.
//
// Each run gets a row in runs plus one row per dispatched command in
// run_commands, so a validation session against real hardware leaves a
// queryable record of which codes worked. The Repository satisfies the
// runner's Recorder capability and is entirely optional: with history
// disabled the runner records nothing.
package history

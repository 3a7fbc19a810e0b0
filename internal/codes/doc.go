// Package codes loads device code files and flattens their nested
// command tables for batch replay.
//
// A code file is JSON: metadata keys plus a "commands" object mapping
// names to code strings, nested arbitrarily (e.g. operation mode →
// fan mode → temperature → code). The schema beyond that shape is the
// authoring pipeline's concern; this package treats code strings as
// opaque.
//
// Parsing uses gjson rather than encoding/json maps because replay
// order must follow document order, and Go map iteration would
// scramble it.
package codes

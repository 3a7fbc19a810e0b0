package codes

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/tidwall/gjson"
)

// Command is one replayable entry extracted from a command table: the
// dot-joined path of keys leading to a code string, and the code
// itself. The payload is opaque here; it is never decoded or validated
// beyond the encoding-compatibility check at controller resolution.
type Command struct {
	Path    string
	Payload string
}

// Table is a loaded device code file. The commands tree is kept as
// parsed JSON so flattening can follow document order; Go maps would
// lose it.
type Table struct {
	manufacturer        string
	supportedModels     []string
	supportedController string
	commandsEncoding    string
	commands            gjson.Result
}

// Load reads and parses a device code file.
//
// The file is JSON with a top-level "commands" key holding an
// arbitrarily nested object whose leaves are code strings. Metadata
// keys (manufacturer, supportedModels, supportedController,
// commandsEncoding) are carried through for reporting but not
// interpreted.
//
// Load is called once per run, before any connection attempt, so a bad
// file never costs a broker connection.
//
// Parameters:
//   - path: Filesystem path to the JSON code file
//
// Returns:
//   - *Table: Parsed table ready for flattening
//   - error: ErrNotFound, ErrMalformed, or ErrNoCommands (wrapped)
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("reading code file %s: %w", path, err)
	}

	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: %s is not valid JSON", ErrMalformed, path)
	}

	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, fmt.Errorf("%w: %s root is not an object", ErrMalformed, path)
	}

	commands := root.Get("commands")
	if !commands.Exists() || !commands.IsObject() {
		return nil, fmt.Errorf("%w: %s has no commands object", ErrNoCommands, path)
	}
	if len(commands.Map()) == 0 {
		return nil, fmt.Errorf("%w: %s commands object is empty", ErrNoCommands, path)
	}

	t := &Table{
		manufacturer:        root.Get("manufacturer").String(),
		supportedController: root.Get("supportedController").String(),
		commandsEncoding:    root.Get("commandsEncoding").String(),
		commands:            commands,
	}

	root.Get("supportedModels").ForEach(func(_, value gjson.Result) bool {
		t.supportedModels = append(t.supportedModels, value.String())
		return true
	})

	return t, nil
}

// Manufacturer returns the manufacturer metadata, if present.
func (t *Table) Manufacturer() string {
	return t.manufacturer
}

// SupportedModels returns the model list metadata, if present.
func (t *Table) SupportedModels() []string {
	return t.supportedModels
}

// SupportedController returns the controller metadata, if present.
func (t *Table) SupportedController() string {
	return t.supportedController
}

// CommandsEncoding returns the encoding metadata, if present.
func (t *Table) CommandsEncoding() string {
	return t.commandsEncoding
}

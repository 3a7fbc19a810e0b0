package codes

import "github.com/tidwall/gjson"

// Flatten converts the nested command table into an ordered flat list.
//
// The walk is pre-order depth-first. Sibling ordering follows the JSON
// document order of the code file; it is never re-sorted, so a run
// replays commands in the order the file declares them. A node is a
// leaf when its value is a string; nested objects are recursed into
// with their key appended to the dot-joined path. Any other value type
// carries no code strings and is skipped.
//
// The result is materialised eagerly so the total count is known
// before dispatch begins. Flatten is read-only and idempotent.
//
// Returns:
//   - []Command: All commands in replay order (empty for zero leaves, never nil)
func (t *Table) Flatten() []Command {
	out := []Command{}
	flattenInto(t.commands, "", &out)
	return out
}

// flattenInto walks one node, appending leaves to out.
func flattenInto(node gjson.Result, prefix string, out *[]Command) {
	node.ForEach(func(key, value gjson.Result) bool {
		path := key.String()
		if prefix != "" {
			path = prefix + "." + path
		}

		switch {
		case value.Type == gjson.String:
			*out = append(*out, Command{Path: path, Payload: value.String()})
		case value.IsObject():
			flattenInto(value, path, out)
		}

		return true
	})
}

package runner

import (
	"fmt"
	"strings"

	"github.com/chzyer/readline"
)

// quitToken is the input that stops a run early. Anything else,
// including an empty line, continues.
const quitToken = "q"

// ReadlinePrompter paces a run from an interactive terminal.
type ReadlinePrompter struct {
	rl *readline.Instance
}

// NewReadlinePrompter creates a terminal-backed prompter.
//
// Returns:
//   - *ReadlinePrompter: Ready for use; callers own Close
//   - error: If the terminal cannot be initialised
func NewReadlinePrompter() (*ReadlinePrompter, error) {
	rl, err := readline.New("")
	if err != nil {
		return nil, fmt.Errorf("initialising prompt: %w", err)
	}
	return &ReadlinePrompter{rl: rl}, nil
}

// Next implements Prompter. An interrupt or closed input surfaces as
// an error, which the runner treats as a graceful stop.
func (p *ReadlinePrompter) Next(label string) (bool, error) {
	p.rl.SetPrompt(fmt.Sprintf("press enter to send %q, or %q to quit: ", label, quitToken))

	line, err := p.rl.Readline()
	if err != nil {
		return false, err
	}

	return strings.TrimSpace(strings.ToLower(line)) != quitToken, nil
}

// Close releases the terminal.
func (p *ReadlinePrompter) Close() error {
	return p.rl.Close()
}

// ScriptPrompter replays a predetermined sequence of answers. It backs
// unattended runs (--yes style usage) and tests; when the script is
// exhausted it keeps answering true.
type ScriptPrompter struct {
	Answers []bool

	calls int
}

// Next implements Prompter.
func (p *ScriptPrompter) Next(string) (bool, error) {
	if p.calls >= len(p.Answers) {
		p.calls++
		return true, nil
	}
	answer := p.Answers[p.calls]
	p.calls++
	return answer, nil
}

// Calls returns how many times Next has been invoked.
func (p *ScriptPrompter) Calls() int {
	return p.calls
}

package runner

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nerrad567/smartir-dispatch/internal/codes"
)

// State is the batch run lifecycle state.
type State int

// Run states, in the order a healthy run passes through them.
const (
	StateIdle State = iota
	StateConnecting
	StateConnected
	StateRunning
	StateCompleted
	StateAborted
)

// String returns the lowercase state name for logs and persistence.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// Sender dispatches one command payload. controller.Controller
// satisfies it.
type Sender interface {
	Send(payload string) error
}

// CloseFunc tears down the transport connection behind a Sender.
type CloseFunc func() error

// ConnectFunc establishes the transport connection and resolves the
// Sender that publishes through it. It is called exactly once per run,
// after the command table is already loaded and non-empty, so a
// connection is never opened for a run that cannot do useful work.
type ConnectFunc func() (Sender, CloseFunc, error)

// Prompter is the operator-pacing capability between commands.
//
// Next is called after every command except the last; label names the
// upcoming command. Returning false stops the run early (graceful, not
// an error). An error from Next (closed input, interrupt) also stops
// the run gracefully.
type Prompter interface {
	Next(label string) (bool, error)
}

// Logger is the logging interface used by the Runner.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Recorder persists run outcomes. history.Repository satisfies it.
// Recorder failures are logged and never fatal to the run.
type Recorder interface {
	StartRun(ctx context.Context, runID, device string, total int) error
	RecordCommand(ctx context.Context, runID string, seq int, path string, sendErr error) error
	FinishRun(ctx context.Context, runID, state string, sent, failed int) error
}

// noopRecorder discards run outcomes.
type noopRecorder struct{}

func (noopRecorder) StartRun(context.Context, string, string, int) error           { return nil }
func (noopRecorder) RecordCommand(context.Context, string, int, string, error) error { return nil }
func (noopRecorder) FinishRun(context.Context, string, string, int, int) error     { return nil }

// Outcome is the result of one command dispatch.
type Outcome struct {
	Seq  int
	Path string
	Err  error
}

// Report summarises one batch run.
type Report struct {
	RunID      string
	Device     string
	State      State
	Total      int
	Sent       int
	Failed     int
	Skipped    int
	Outcomes   []Outcome
	StartedAt  time.Time
	FinishedAt time.Time
}

// Options configures a Runner.
type Options struct {
	// Connect establishes the transport and resolves the Sender.
	Connect ConnectFunc

	// Prompter paces the run between commands.
	Prompter Prompter

	// Commands is the flattened table, already in replay order.
	Commands []codes.Command

	// Device is a free-form label for logs and history (e.g. the code
	// file name).
	Device string

	// Delay is an optional pause applied after each command before the
	// prompt, taken from the controller spec's send delay.
	Delay time.Duration

	// Logger receives run diagnostics. Optional.
	Logger Logger

	// Recorder persists outcomes. Optional.
	Recorder Recorder
}

// Runner drives a full command table through a live transport
// connection with operator pacing and per-command fault isolation.
//
// A Runner owns exactly one connection for the duration of one Run and
// is single-threaded; it is not reusable across runs.
type Runner struct {
	connect  ConnectFunc
	prompter Prompter
	commands []codes.Command
	device   string
	delay    time.Duration
	logger   Logger
	recorder Recorder

	runID string
	state State
}

// New creates a Runner for one batch run.
//
// Returns:
//   - *Runner: Ready to Run
//   - error: ErrNoConnect, ErrNoPrompter, or ErrNoCommands for an
//     unusable configuration
func New(opts Options) (*Runner, error) {
	if opts.Connect == nil {
		return nil, ErrNoConnect
	}
	if opts.Prompter == nil {
		return nil, ErrNoPrompter
	}
	if len(opts.Commands) == 0 {
		return nil, ErrNoCommands
	}

	logger := opts.Logger
	if logger == nil {
		logger = noopLogger{}
	}
	recorder := opts.Recorder
	if recorder == nil {
		recorder = noopRecorder{}
	}

	return &Runner{
		connect:  opts.Connect,
		prompter: opts.Prompter,
		commands: opts.Commands,
		device:   opts.Device,
		delay:    opts.Delay,
		logger:   logger,
		recorder: recorder,
		runID:    uuid.NewString(),
		state:    StateIdle,
	}, nil
}

// RunID returns the identifier assigned to this run.
func (r *Runner) RunID() string {
	return r.runID
}

// State returns the current lifecycle state.
func (r *Runner) State() State {
	return r.state
}

// Run executes the batch: connect, replay every command in order with
// operator pacing, tear down.
//
// Per-command publish failures are logged as warnings and recorded;
// they never abort the run. Only connection establishment can fail the
// whole run, in which case zero publishes are attempted and the state
// is Aborted. Operator quit and context cancellation are graceful
// early stops (state Completed).
//
// The transport teardown returned by Connect executes exactly once on
// every exit path, including panics during the loop.
//
// Parameters:
//   - ctx: Cancels the run between commands (operator interrupt)
//
// Returns:
//   - *Report: Run summary (nil when the connection failed)
//   - error: Connection failure; nil otherwise
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	report := &Report{
		RunID:     r.runID,
		Device:    r.device,
		Total:     len(r.commands),
		StartedAt: time.Now().UTC(),
	}

	r.state = StateConnecting
	sender, closeConn, err := r.connect()
	if err != nil {
		r.state = StateAborted
		return nil, fmt.Errorf("establishing connection: %w", err)
	}

	var closeOnce sync.Once
	teardown := func() {
		closeOnce.Do(func() {
			if closeErr := closeConn(); closeErr != nil {
				r.logger.Error("closing connection", "error", closeErr)
			}
		})
	}
	defer teardown()

	r.state = StateConnected
	r.logger.Info("connected, starting batch run",
		"run_id", r.runID,
		"device", r.device,
		"commands", report.Total,
	)

	if recErr := r.recorder.StartRun(ctx, r.runID, r.device, report.Total); recErr != nil {
		r.logger.Warn("recording run start", "error", recErr)
	}

	r.state = StateRunning
	r.dispatch(ctx, sender, report)

	r.state = StateCompleted
	report.State = r.state
	report.Skipped = report.Total - report.Sent - report.Failed
	report.FinishedAt = time.Now().UTC()

	if recErr := r.recorder.FinishRun(ctx, r.runID, r.state.String(), report.Sent, report.Failed); recErr != nil {
		r.logger.Warn("recording run finish", "error", recErr)
	}

	r.logger.Info("batch run finished",
		"run_id", r.runID,
		"sent", report.Sent,
		"failed", report.Failed,
		"skipped", report.Skipped,
	)

	teardown()
	return report, nil
}

// dispatch replays the command sequence, pacing between commands.
func (r *Runner) dispatch(ctx context.Context, sender Sender, report *Report) {
	for i, cmd := range r.commands {
		select {
		case <-ctx.Done():
			r.logger.Info("run interrupted, stopping", "run_id", r.runID)
			return
		default:
		}

		r.logger.Info("sending command",
			"seq", i+1,
			"total", report.Total,
			"path", cmd.Path,
			"code", truncate(cmd.Payload, 50),
		)

		sendErr := sender.Send(cmd.Payload)
		if sendErr != nil {
			// Fault isolation: a single failed publish never aborts the
			// batch.
			r.logger.Warn("command failed", "path", cmd.Path, "error", sendErr)
			report.Failed++
		} else {
			report.Sent++
		}
		report.Outcomes = append(report.Outcomes, Outcome{Seq: i + 1, Path: cmd.Path, Err: sendErr})

		if recErr := r.recorder.RecordCommand(ctx, r.runID, i+1, cmd.Path, sendErr); recErr != nil {
			r.logger.Warn("recording command outcome", "path", cmd.Path, "error", recErr)
		}

		if i == len(r.commands)-1 {
			return
		}

		if !r.pause(ctx) {
			return
		}

		cont, promptErr := r.prompter.Next(r.commands[i+1].Path)
		if promptErr != nil {
			r.logger.Info("operator input closed, stopping", "error", promptErr)
			return
		}
		if !cont {
			r.logger.Info("operator requested stop", "run_id", r.runID)
			return
		}
	}
}

// pause sleeps the configured inter-command delay. Returns false when
// the context was cancelled during the pause.
func (r *Runner) pause(ctx context.Context) bool {
	if r.delay <= 0 {
		return true
	}

	timer := time.NewTimer(r.delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		r.logger.Info("run interrupted during pause", "run_id", r.runID)
		return false
	case <-timer.C:
		return true
	}
}

// truncate shortens long code strings for log output.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
